package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

func TestReportStore_SaveAndGet(t *testing.T) {
	store := NewReportStore()
	ctx := context.Background()

	report := *domain.NewSyncReport("sess-1")
	require.NoError(t, store.Save(ctx, "cfg-1", report))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
}

func TestReportStore_Get_NotFound(t *testing.T) {
	store := NewReportStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportStore_List_NewestFirst(t *testing.T) {
	store := NewReportStore()
	ctx := context.Background()

	for _, id := range []string{"sess-1", "sess-2", "sess-3"} {
		require.NoError(t, store.Save(ctx, "cfg-1", *domain.NewSyncReport(id)))
	}

	got, err := store.List(ctx, "cfg-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "sess-3", got[0].SessionID)
	assert.Equal(t, "sess-1", got[2].SessionID)
}

func TestReportStore_List_Limit(t *testing.T) {
	store := NewReportStore()
	ctx := context.Background()

	for _, id := range []string{"sess-1", "sess-2", "sess-3"} {
		require.NoError(t, store.Save(ctx, "cfg-1", *domain.NewSyncReport(id)))
	}

	got, err := store.List(ctx, "cfg-1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "sess-3", got[0].SessionID)
	assert.Equal(t, "sess-2", got[1].SessionID)
}

func TestReportStore_List_DoesNotMixConfigs(t *testing.T) {
	store := NewReportStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cfg-1", *domain.NewSyncReport("sess-1")))
	require.NoError(t, store.Save(ctx, "cfg-2", *domain.NewSyncReport("sess-2")))

	got, err := store.List(ctx, "cfg-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sess-1", got[0].SessionID)
}

func TestReportStore_Save_OverwritesSameSession(t *testing.T) {
	store := NewReportStore()
	ctx := context.Background()

	report := domain.NewSyncReport("sess-1")
	report.Status = 200
	require.NoError(t, store.Save(ctx, "cfg-1", *report))

	report.Status = 508
	require.NoError(t, store.Save(ctx, "cfg-1", *report))

	got, err := store.List(ctx, "cfg-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 508, got[0].Status)
}
