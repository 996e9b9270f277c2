package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driving"
)

// mockSessionManager implements driving.SessionManager for testing.
type mockSessionManager struct {
	startErr   error
	connectErr error
	sessionID  string
	control    *mockSessionControl
	databases  []domain.Source
	reports    []domain.SyncReport
	config     map[string]string
}

func (m *mockSessionManager) StartSession(
	_ context.Context, _ string, _ map[string]domain.SyncMode, _ domain.Filter,
) (string, error) {
	if m.startErr != nil {
		return "", m.startErr
	}
	return m.sessionID, nil
}

func (m *mockSessionManager) Connect(_ context.Context, _ string) (driving.SessionControl, error) {
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	return m.control, nil
}

func (m *mockSessionManager) GetConfig(_ context.Context, _ string) (map[string]string, error) {
	return m.config, nil
}

func (m *mockSessionManager) SetConfig(_ context.Context, _ string, props map[string]string) error {
	if m.config == nil {
		m.config = make(map[string]string)
	}
	for k, v := range props {
		m.config[k] = v
	}
	return nil
}

func (m *mockSessionManager) GetReports(_ context.Context, _ string, limit int) ([]domain.SyncReport, error) {
	if limit > 0 && limit < len(m.reports) {
		return m.reports[:limit], nil
	}
	return m.reports, nil
}

func (m *mockSessionManager) GetDatabases(_ context.Context, _ string) ([]domain.Source, error) {
	return m.databases, nil
}

func (m *mockSessionManager) CheckSource(_ context.Context, _, _ string) error {
	return nil
}

func (m *mockSessionManager) CheckPresence(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (m *mockSessionManager) Backup(_ context.Context, _, _ string) ([]domain.Item, error) {
	return nil, nil
}

func (m *mockSessionManager) Restore(_ context.Context, _, _ string, _ []domain.Item) error {
	return nil
}

// mockSessionControl implements driving.SessionControl for testing.
type mockSessionControl struct {
	report domain.SyncReport
	err    error
}

func (m *mockSessionControl) Detach() error { return nil }

func (m *mockSessionControl) Sync(_ context.Context) (domain.SyncReport, error) {
	return m.report, m.err
}

func (m *mockSessionControl) Abort(_ context.Context) error   { return nil }
func (m *mockSessionControl) Suspend(_ context.Context) error { return nil }

func (m *mockSessionControl) GetStatus() (domain.SessionState, []domain.SourceStatus) {
	return domain.SessionDone, nil
}

func (m *mockSessionControl) GetProgress() []domain.SourceProgress { return nil }

func setupSyncTest(mgr *mockSessionManager) func() {
	old := sessionManager
	sessionManager = mgr
	return func() {
		sessionManager = old
	}
}

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync [config-id]", syncCmd.Use)
}

func TestSyncCmd_Short(t *testing.T) {
	assert.Equal(t, "Synchronise sources against their remote peer", syncCmd.Short)
}

func TestSyncCmd_RequiresConfigID(t *testing.T) {
	cleanup := setupSyncTest(&mockSessionManager{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sync"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.Error(t, err)
}

func TestSyncCmd_ExecutesSuccessfully(t *testing.T) {
	report := domain.NewSyncReport("sess-1")
	report.Source("contacts").Add(domain.ItemLocal, domain.KindAdded, domain.StatTotal, 3)
	report.Status = 200

	mgr := &mockSessionManager{
		sessionID: "sess-1",
		control:   &mockSessionControl{report: *report},
	}
	cleanup := setupSyncTest(mgr)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sync", "default"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Starting sync for default")
	assert.Contains(t, buf.String(), "Sync completed successfully")
	assert.Contains(t, buf.String(), "contacts: +3")
}

func TestSyncCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupSyncTest(nil)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sync", "default"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "session manager not configured")
}

func TestSyncCmd_StartSessionError(t *testing.T) {
	mgr := &mockSessionManager{startErr: errors.New("boom")}
	cleanup := setupSyncTest(mgr)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sync", "default"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "start session")
}

func TestSyncCmd_SyncError(t *testing.T) {
	mgr := &mockSessionManager{
		sessionID: "sess-1",
		control:   &mockSessionControl{err: errors.New("transport failed")},
	}
	cleanup := setupSyncTest(mgr)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sync", "default"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sync failed")
}
