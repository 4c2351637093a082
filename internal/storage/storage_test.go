package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "users", `[{"id":"a"}]`))
	v, ok, err := kv.Get(ctx, "users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)

	require.NoError(t, kv.Set(ctx, "users", `[]`))
	v, _, err = kv.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	require.NoError(t, kv.Remove(ctx, "users"))
	require.NoError(t, kv.Remove(ctx, "users"))
	_, ok, err = kv.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	f, err := OpenFile(path)
	require.NoError(t, err)
	exerciseKV(t, f)

	require.NoError(t, f.Set(context.Background(), "currentUserId", "user_1"))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(context.Background(), "currentUserId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user_1", v)
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestWithPrefix(t *testing.T) {
	mem := NewMemory()
	a := WithPrefix(mem, "profile:a:")
	b := WithPrefix(mem, "profile:b:")

	exerciseKV(t, a)

	ctx := context.Background()
	require.NoError(t, a.Set(ctx, "cart", "[1]"))
	_, ok, err := b.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	raw, ok, err := mem.Get(ctx, "profile:a:cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1]", raw)
}
