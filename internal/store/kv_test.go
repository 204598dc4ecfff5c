package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kvImplementations(t *testing.T) map[string]KV {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]KV{
		"redis":  NewRedisKV(client),
		"memory": NewMemoryKV(),
	}
}

func TestKV_GetSetDel(t *testing.T) {
	for name, kv := range kvImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := kv.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrMiss)

			require.NoError(t, kv.Set(ctx, "a", "1", 0))
			v, err := kv.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "1", v)

			require.NoError(t, kv.Del(ctx, "a", "never-set"))
			_, err = kv.Get(ctx, "a")
			assert.ErrorIs(t, err, ErrMiss)

			assert.NoError(t, kv.Del(ctx))
		})
	}
}

func TestKV_ScanKeysByPattern(t *testing.T) {
	for name, kv := range kvImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, kv.Set(ctx, "sleeplog:record:2026-10-16", "{}", 0))
			require.NoError(t, kv.Set(ctx, "sleeplog:record:2026-10-17", "{}", 0))
			require.NoError(t, kv.Set(ctx, "sleeplog:prefs:baby", "{}", 0))

			keys, err := kv.ScanKeys(ctx, "sleeplog:record:*")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"sleeplog:record:2026-10-16", "sleeplog:record:2026-10-17"}, keys)
		})
	}
}

func TestMemoryKV_TTLExpires(t *testing.T) {
	kv := NewMemoryKV()
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))

	_, err := kv.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	keys, err := kv.ScanKeys(ctx, "*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
