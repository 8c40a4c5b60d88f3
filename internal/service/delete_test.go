package service

import (
	"FileVault/internal/storage"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteOriginalWithDuplicatesIsRefused(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()

	orig := env.ingest(t, "shared", "o.txt")
	dup := env.ingest(t, "shared", "d.txt")

	err := env.svc.Delete(ctx, orig.ID)
	require.ErrorIs(t, err, ErrOriginalHasDependents)

	// nothing changed
	assert.Equal(t, []byte("shared"), env.read(t, dup.ID))
	n, err := env.svc.DependentCount(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, env.svc.Delete(ctx, dup.ID))
	require.NoError(t, env.svc.Delete(ctx, orig.ID))

	_, err = env.objects.StatObject(ctx, orig.ObjectName)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound, "original's content is removed with it")
}

func TestDeleteDuplicateKeepsOriginalContent(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()

	orig := env.ingest(t, "keep me", "o.txt")
	dup := env.ingest(t, "keep me", "d.txt")
	require.NoError(t, env.svc.Delete(ctx, dup.ID))

	assert.Equal(t, []byte("keep me"), env.read(t, orig.ID))
	savings, err := env.svc.ComputeSavings(ctx)
	require.NoError(t, err)
	assert.Zero(t, savings.DuplicateCount)
}

func TestDeleteMissing(t *testing.T) {
	env := newTestEnv(t, Options{})
	assert.ErrorIs(t, env.svc.Delete(context.Background(), "missing"), ErrNotFound)
}

func TestReingestAfterDeleteCreatesNewOriginal(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()

	first := env.ingest(t, "phoenix", "a.txt")
	require.NoError(t, env.svc.Delete(ctx, first.ID))

	second := env.ingest(t, "phoenix", "b.txt")
	assert.True(t, second.IsOriginal)
	assert.NotEqual(t, first.ObjectName, second.ObjectName)
	assert.Equal(t, []byte("phoenix"), env.read(t, second.ID))
}
