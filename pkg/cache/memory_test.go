package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory(10, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "user:alice@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "user:alice@example.com", "usr_1"))

	value, ok, err := c.Get(ctx, "user:alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "usr_1", value)
}

func TestMemoryExpiresEntries(t *testing.T) {
	c := NewMemory(10, time.Minute)
	ctx := context.Background()

	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	require.NoError(t, c.Set(ctx, "key", "value"))

	current = current.Add(2 * time.Minute)

	_, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after the TTL")
}

func TestMemoryEvictsOldestWhenFull(t *testing.T) {
	c := NewMemory(3, time.Minute)
	ctx := context.Background()

	for i := range 4 {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("key-%d", i), "value"))
	}

	_, ok, err := c.Get(ctx, "key-0")
	require.NoError(t, err)
	assert.False(t, ok, "oldest entry should be evicted")

	_, ok, err = c.Get(ctx, "key-3")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryOverwriteDoesNotEvict(t *testing.T) {
	c := NewMemory(2, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1"))
	require.NoError(t, c.Set(ctx, "b", "2"))
	require.NoError(t, c.Set(ctx, "a", "3"))

	value, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", value)

	_, ok, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryDelete(t *testing.T) {
	c := NewMemory(10, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", "value"))
	require.NoError(t, c.Delete(ctx, "key"))

	_, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewSelectsBackend(t *testing.T) {
	c, err := New("", 10, time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	c, err = New("memory://", 10, time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New("mongodb://localhost", 10, time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported cache URL")
}
