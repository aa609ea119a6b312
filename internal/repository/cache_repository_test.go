package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

type cachedStats struct {
	Units int `json:"units"`
}

func TestMemoryCacheRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryCacheRepository(time.Minute)
	ctx := context.Background()

	var got cachedStats
	assert.ErrorIs(t, repo.Get(ctx, "dashboard:stats", &got), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "dashboard:stats", cachedStats{Units: 3}, time.Minute))
	require.NoError(t, repo.Get(ctx, "dashboard:stats", &got))
	assert.Equal(t, 3, got.Units)

	require.NoError(t, repo.Set(ctx, "reports:x", cachedStats{Units: 1}, time.Minute))
	require.NoError(t, repo.DeleteByPattern(ctx, "dashboard:*"))
	assert.ErrorIs(t, repo.Get(ctx, "dashboard:stats", &got), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Get(ctx, "reports:x", &got))
}

func TestRedisCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewRedisCacheRepository(nil)
	var got cachedStats
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &got), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", got, time.Second))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
}
