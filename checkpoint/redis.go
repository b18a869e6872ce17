package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/loreweave/loreweave/core"
)

// RedisOptions configures the Redis checkpoint store.
type RedisOptions struct {
	// Prefix namespaces checkpoint keys; defaults to "loreweave:checkpoint".
	Prefix string
	// TTL expires idle checkpoints; zero keeps them forever.
	TTL time.Duration
}

// RedisStore persists checkpoints as JSON documents in Redis, keyed by the
// composite thread identity under a configurable prefix.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore on an existing client.
func NewRedisStore(client redis.UniversalClient, optFns ...func(o *RedisOptions)) *RedisStore {
	opts := RedisOptions{Prefix: "loreweave:checkpoint"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RedisStore{client: client, prefix: opts.Prefix, ttl: opts.TTL}
}

// Get returns the checkpoint for id, or (nil, nil) when none exists.
func (s *RedisStore) Get(ctx context.Context, id core.ThreadIdentity) (*core.Checkpoint, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint get: %w", err)
	}

	var cp core.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, fmt.Errorf("checkpoint decode: %w", err)
	}
	return &cp, nil
}

// Append adds messages to the checkpoint for id, creating it when absent.
func (s *RedisStore) Append(ctx context.Context, id core.ThreadIdentity, messages ...core.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return s.update(ctx, id, func(cp *core.Checkpoint) {
		cp.Messages = append(cp.Messages, messages...)
	})
}

// MergeState merges delta into the checkpoint state.
func (s *RedisStore) MergeState(ctx context.Context, id core.ThreadIdentity, delta map[string]any) error {
	if len(delta) == 0 {
		return nil
	}
	return s.update(ctx, id, func(cp *core.Checkpoint) {
		if cp.State == nil {
			cp.State = make(map[string]any, len(delta))
		}
		for k, v := range delta {
			cp.State[k] = v
		}
	})
}

// update performs a read-modify-write of the checkpoint document under an
// optimistic WATCH transaction so concurrent writers do not lose updates.
func (s *RedisStore) update(ctx context.Context, id core.ThreadIdentity, mutate func(cp *core.Checkpoint)) error {
	key := s.key(id)

	txn := func(tx *redis.Tx) error {
		var cp core.Checkpoint

		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			now := time.Now().UTC()
			cp = core.Checkpoint{Key: id.Key(), Created: now, Updated: now}
		case err != nil:
			return fmt.Errorf("checkpoint get: %w", err)
		default:
			if err := json.Unmarshal(raw, &cp); err != nil {
				return fmt.Errorf("checkpoint decode: %w", err)
			}
		}

		mutate(&cp)
		cp.Updated = time.Now().UTC()

		encoded, err := json.Marshal(&cp)
		if err != nil {
			return fmt.Errorf("checkpoint encode: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < 3; i++ {
		err := s.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("checkpoint update: too many conflicting writers for %s", id.Key())
}

func (s *RedisStore) key(id core.ThreadIdentity) string {
	return s.prefix + ":" + id.Key()
}
