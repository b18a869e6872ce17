// Package checkpoint provides CheckpointStore implementations: a volatile
// in-memory store for tests and demos, and a Redis-backed store for durable
// cross-process continuity.
package checkpoint

import (
	"context"
	"sync"
	"time"

	"github.com/loreweave/loreweave/core"
)

// InMemoryStore keeps checkpoints in a process-local map. It is safe for
// concurrent access; returned checkpoints are clones so callers can never
// mutate internal state.
type InMemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*core.Checkpoint
}

// NewInMemoryStore constructs an empty in-memory checkpoint store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{checkpoints: make(map[string]*core.Checkpoint)}
}

// Get returns a clone of the checkpoint for id, or (nil, nil) when none
// exists.
func (s *InMemoryStore) Get(_ context.Context, id core.ThreadIdentity) (*core.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cp, ok := s.checkpoints[id.Key()]; ok {
		return cp.Clone(), nil
	}
	return nil, nil
}

// Append adds messages to the checkpoint for id, creating it lazily.
func (s *InMemoryStore) Append(_ context.Context, id core.ThreadIdentity, messages ...core.Message) error {
	if len(messages) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.getLocked(id)
	cp.Messages = append(cp.Messages, messages...)
	cp.Updated = time.Now().UTC()
	return nil
}

// MergeState merges delta into the checkpoint state, creating the checkpoint
// lazily.
func (s *InMemoryStore) MergeState(_ context.Context, id core.ThreadIdentity, delta map[string]any) error {
	if len(delta) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.getLocked(id)
	if cp.State == nil {
		cp.State = make(map[string]any, len(delta))
	}
	for k, v := range delta {
		cp.State[k] = v
	}
	cp.Updated = time.Now().UTC()
	return nil
}

// getLocked returns the stored checkpoint for id, allocating it when absent.
// Caller must hold the write lock.
func (s *InMemoryStore) getLocked(id core.ThreadIdentity) *core.Checkpoint {
	key := id.Key()
	cp, ok := s.checkpoints[key]
	if !ok {
		now := time.Now().UTC()
		cp = &core.Checkpoint{Key: key, Created: now, Updated: now}
		s.checkpoints[key] = cp
	}
	return cp
}
