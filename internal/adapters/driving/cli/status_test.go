package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

func TestStatusCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupSyncTest(nil)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"status", "default"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "session manager not configured")
}

func TestStatusCmd_PrintsSourcesAndReports(t *testing.T) {
	report := domain.NewSyncReport("sess-1")
	report.Source("contacts").Add(domain.ItemLocal, domain.KindAdded, domain.StatTotal, 2)
	report.Finalize(200)

	mgr := &mockSessionManager{
		databases: []domain.Source{{ID: "contacts", Type: "vcard"}},
		reports:   []domain.SyncReport{*report},
	}
	cleanup := setupSyncTest(mgr)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status", "default"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Peer reachable: true")
	assert.Contains(t, out, "contacts (vcard)")
	assert.Contains(t, out, "contacts: +2")
}

func TestStatusCmd_NoReportsYet(t *testing.T) {
	mgr := &mockSessionManager{databases: []domain.Source{{ID: "contacts", Type: "vcard"}}}
	cleanup := setupSyncTest(mgr)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status", "default"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No sync reports yet.")
}
