package utils

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache map[string][]byte

func (m mapCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m[key] = raw
	return nil
}

func (m mapCache) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "file:original:hash:abc", BuildCacheKey(CacheKeyOriginalByHash, "abc"))
	assert.Equal(t, "p:1:x", BuildCacheKey("p", 1, "x"))
}

func TestHashIndexCache(t *testing.T) {
	ctx := context.Background()
	backing := mapCache{}
	c := NewHashIndexCache(backing, time.Minute)

	_, ok := c.Get(ctx, "h1")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "h1", "id-1"))
	id, ok := c.Get(ctx, "h1")
	assert.True(t, ok)
	assert.Equal(t, "id-1", id)

	require.NoError(t, c.Invalidate(ctx, "h1"))
	_, ok = c.Get(ctx, "h1")
	assert.False(t, ok)
}

func TestNilHashIndexCacheIsDisabled(t *testing.T) {
	ctx := context.Background()
	c := NewHashIndexCache(nil, time.Minute)
	assert.Nil(t, c)

	require.NoError(t, c.Set(ctx, "h", "id"))
	_, ok := c.Get(ctx, "h")
	assert.False(t, ok)
	require.NoError(t, c.Invalidate(ctx, "h"))
}
