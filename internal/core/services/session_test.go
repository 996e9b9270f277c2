package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncevo-core/syncevo-core/internal/connectors/filesystem"
	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

func newTestController(t *testing.T, sources map[string]string, modes map[string]domain.SyncMode, transport *scriptedTransport) *Controller {
	t.Helper()

	connectors := make(map[string]driven.SyncSource, len(sources))
	for name, dir := range sources {
		require.NoError(t, os.MkdirAll(dir, 0o755))
		connectors[name] = filesystem.New(name, &filesystem.Config{Path: dir})
	}

	tracker := NewTracker(newMemTrackerStore(), 0)
	engine := NewEngine(transport, &recordingSink{})
	return NewController("config-1", connectors, modes, domain.Filter{}, tracker, engine, newMemTrackerStore(), nil, &recordingSink{})
}

func TestController_Sync_CompletesAllSources(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contacts")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.vcf"), []byte("BEGIN:VCARD\nFN:Alice\nEND:VCARD"), 0o644))

	controller := newTestController(t, map[string]string{"contacts": dir}, map[string]domain.SyncMode{"contacts": domain.ModeTwoWay}, &scriptedTransport{})

	controller.Start(context.Background())
	report, err := controller.Sync(context.Background())

	require.NoError(t, err)
	require.Contains(t, report.Sources, "contacts")
	state, statuses := controller.GetStatus()
	assert.Equal(t, domain.SessionDone, state)
	require.Len(t, statuses, 1)
	assert.Equal(t, domain.SourceDone, statuses[0].State)
}

func TestController_Sync_DisabledSourceIsSkipped(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contacts")
	controller := newTestController(t, map[string]string{"contacts": dir}, map[string]domain.SyncMode{"contacts": domain.ModeDisabled}, &scriptedTransport{})

	controller.Start(context.Background())
	report, err := controller.Sync(context.Background())

	require.NoError(t, err)
	assert.NotContains(t, report.Sources, "contacts")
}

func TestController_Abort_FailsTheSessionAsAborted(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contacts")
	controller := newTestController(t, map[string]string{"contacts": dir}, map[string]domain.SyncMode{"contacts": domain.ModeTwoWay}, &scriptedTransport{})

	ctx, cancel := context.WithCancel(context.Background())
	controller.Start(ctx)
	require.NoError(t, controller.Abort(ctx))
	cancel()

	_, err := controller.Sync(context.Background())
	assert.Error(t, err)

	state, _ := controller.GetStatus()
	assert.Equal(t, domain.SessionAborted, state)
}

func TestController_Suspend_DoesNotAliasAbort(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contacts")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	controller := newTestController(t, map[string]string{"contacts": dir}, map[string]domain.SyncMode{"contacts": domain.ModeTwoWay}, &scriptedTransport{})

	require.NoError(t, controller.Suspend(context.Background()))
	controller.Start(context.Background())

	report, err := controller.Sync(context.Background())

	assert.ErrorIs(t, err, domain.ErrSessionSuspended)
	state, statuses := controller.GetStatus()
	assert.Equal(t, domain.SessionSuspended, state)
	require.Len(t, statuses, 1)
	assert.Equal(t, domain.SourceSuspended, statuses[0].State)
	_ = report
}

func TestController_Suspend_BeforeStartIsANoOp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contacts")
	controller := newTestController(t, map[string]string{"contacts": dir}, map[string]domain.SyncMode{"contacts": domain.ModeTwoWay}, &scriptedTransport{})

	assert.NoError(t, controller.Suspend(context.Background()))
	state, _ := controller.GetStatus()
	assert.Equal(t, domain.SessionQueued, state)
}

func TestController_Detach_NeverStopsTheSession(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contacts")
	controller := newTestController(t, map[string]string{"contacts": dir}, map[string]domain.SyncMode{"contacts": domain.ModeTwoWay}, &scriptedTransport{})

	controller.Start(context.Background())
	require.NoError(t, controller.Detach())

	_, err := controller.Sync(context.Background())
	require.NoError(t, err)
}

func TestController_ID_And_ConfigID(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contacts")
	controller := newTestController(t, map[string]string{"contacts": dir}, map[string]domain.SyncMode{"contacts": domain.ModeTwoWay}, &scriptedTransport{})

	assert.NotEmpty(t, controller.ID())
	assert.Equal(t, "config-1", controller.ConfigID())
}
