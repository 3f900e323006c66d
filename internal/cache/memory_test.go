package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC)

	c := NewMemoryCache(0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))

	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCacheMaxEntries(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 2*time.Minute))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 3*time.Minute))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)

	for _, k := range []string{"b", "c"} {
		_, err := c.Get(ctx, k)
		assert.NoError(t, err, k)
	}
}
