package checkpoint

import (
	"context"
	"sync"
	"time"

	"github.com/loreweave/loreweave/core"
)

// InMemoryMessageStore is a core.MessageStore for tests and single-process
// deployments. Saved messages are grouped per thread in arrival order.
type InMemoryMessageStore struct {
	mu       sync.RWMutex
	byThread map[string][]*core.SavedMessage
}

// NewInMemoryMessageStore constructs an empty in-memory message store.
func NewInMemoryMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{byThread: make(map[string][]*core.SavedMessage)}
}

// Save implements core.MessageStore.
func (s *InMemoryMessageStore) Save(_ context.Context, threadID, content, role string, trace []core.TraceEntry) (*core.SavedMessage, error) {
	msg := &core.SavedMessage{
		ID:       core.NewID(),
		ThreadID: threadID,
		Role:     role,
		Content:  content,
		Trace:    trace,
		SavedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byThread[threadID] = append(s.byThread[threadID], msg)
	return msg, nil
}

// Messages returns the saved messages for threadID in arrival order.
func (s *InMemoryMessageStore) Messages(threadID string) []*core.SavedMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.SavedMessage, len(s.byThread[threadID]))
	copy(out, s.byThread[threadID])
	return out
}
