package checkpoint

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreweave/loreweave/core"
)

func newTestRedisStore(t *testing.T, optFns ...func(o *RedisOptions)) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, optFns...), srv
}

func TestRedisStore_GetAbsent(t *testing.T) {
	store, _ := newTestRedisStore(t)

	cp, err := store.Get(context.Background(), testIdentity("t1"))
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestRedisStore_AppendAndGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)
	id := testIdentity("t1")

	require.NoError(t, store.Append(ctx, id, core.NewUserMessage("hello")))
	require.NoError(t, store.Append(ctx, id, core.NewMessage(core.RoleAssistant, "scribe", "hi there")))

	cp, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, cp)
	require.Len(t, cp.Messages, 2)
	assert.Equal(t, "hello", cp.Messages[0].Content)
	assert.Equal(t, "hi there", cp.Messages[1].Content)
	assert.Equal(t, id.Key(), cp.Key)
	assert.False(t, cp.Updated.Before(cp.Created))
}

func TestRedisStore_MergeState(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)
	id := testIdentity("t1")

	require.NoError(t, store.MergeState(ctx, id, map[string]any{"scene": "tavern"}))
	require.NoError(t, store.MergeState(ctx, id, map[string]any{"scene": "forest", "act": "2"}))

	cp, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, "forest", cp.State["scene"])
	assert.Equal(t, "2", cp.State["act"])
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	ctx := context.Background()
	store, srv := newTestRedisStore(t, func(o *RedisOptions) {
		o.Prefix = "custom"
	})
	id := testIdentity("t1")

	require.NoError(t, store.Append(ctx, id, core.NewUserMessage("hello")))
	assert.True(t, srv.Exists("custom:"+id.Key()))
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, srv := newTestRedisStore(t, func(o *RedisOptions) {
		o.TTL = time.Minute
	})
	id := testIdentity("t1")

	require.NoError(t, store.Append(ctx, id, core.NewUserMessage("hello")))
	assert.Equal(t, time.Minute, srv.TTL(store.key(id)))

	srv.FastForward(2 * time.Minute)

	cp, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestRedisStore_IsolatesThreads(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	require.NoError(t, store.Append(ctx, testIdentity("t1"), core.NewUserMessage("one")))

	cp, err := store.Get(ctx, testIdentity("t2"))
	require.NoError(t, err)
	assert.Nil(t, cp)
}
