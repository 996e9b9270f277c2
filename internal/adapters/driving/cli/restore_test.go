package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

type backupRestoreSessionManager struct {
	mockSessionManager
	backupItems   []domain.Item
	backupErr     error
	restoreErr    error
	restoredItems []domain.Item
}

func (m *backupRestoreSessionManager) Backup(_ context.Context, _, _ string) ([]domain.Item, error) {
	return m.backupItems, m.backupErr
}

func (m *backupRestoreSessionManager) Restore(_ context.Context, _, _ string, items []domain.Item) error {
	m.restoredItems = items
	return m.restoreErr
}

func TestBackupCmd_WritesItemsToFile(t *testing.T) {
	mgr := &backupRestoreSessionManager{
		backupItems: []domain.Item{{SourceID: "contacts", LUID: "1", Content: []byte("BEGIN:VCARD")}},
	}
	cleanup := setupSyncTest(&mgr.mockSessionManager)
	defer cleanup()
	sessionManager = mgr

	path := filepath.Join(t.TempDir(), "contacts.json")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"backup", "default", "contacts", path})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Wrote 1 item(s)")
	assert.FileExists(t, path)
}

func TestRestoreCmd_ReadsItemsFromFile(t *testing.T) {
	mgr := &backupRestoreSessionManager{}
	cleanup := setupSyncTest(&mgr.mockSessionManager)
	defer cleanup()
	sessionManager = mgr

	path := filepath.Join(t.TempDir(), "contacts.json")
	writeTestBackup(t, path, []domain.Item{{SourceID: "contacts", LUID: "1", Content: []byte("BEGIN:VCARD")}})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"restore", "default", "contacts", path})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Restored 1 item(s)")
	require.Len(t, mgr.restoredItems, 1)
	assert.Equal(t, domain.LUID("1"), mgr.restoredItems[0].LUID)
}

func TestRestoreCmd_MissingFile(t *testing.T) {
	mgr := &backupRestoreSessionManager{}
	cleanup := setupSyncTest(&mgr.mockSessionManager)
	defer cleanup()
	sessionManager = mgr

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"restore", "default", "contacts", filepath.Join(t.TempDir(), "missing.json")})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read backup file")
}

func writeTestBackup(t *testing.T, path string, items []domain.Item) {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
