package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

func TestCredentialsStore_SaveAndGet(t *testing.T) {
	store := NewCredentialsStore()
	ctx := context.Background()

	creds := domain.Credentials{ID: "cred-1", SourceID: "src-1", PAT: &domain.PATCredentials{Token: "t"}}
	require.NoError(t, store.Save(ctx, creds))

	got, err := store.Get(ctx, "cred-1")
	require.NoError(t, err)
	assert.Equal(t, "src-1", got.SourceID)
}

func TestCredentialsStore_Get_NotFound(t *testing.T) {
	store := NewCredentialsStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCredentialsStore_GetBySourceID(t *testing.T) {
	store := NewCredentialsStore()
	ctx := context.Background()

	creds := domain.Credentials{ID: "cred-1", SourceID: "src-1"}
	require.NoError(t, store.Save(ctx, creds))

	got, err := store.GetBySourceID(ctx, "src-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "cred-1", got.ID)
}

func TestCredentialsStore_GetBySourceID_NoneFound(t *testing.T) {
	store := NewCredentialsStore()
	ctx := context.Background()

	got, err := store.GetBySourceID(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCredentialsStore_Delete(t *testing.T) {
	store := NewCredentialsStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Credentials{ID: "cred-1", SourceID: "src-1"}))
	require.NoError(t, store.Delete(ctx, "cred-1"))

	_, err := store.Get(ctx, "cred-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := store.GetBySourceID(ctx, "src-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
