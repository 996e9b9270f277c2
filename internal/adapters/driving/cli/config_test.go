package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCmd_PrintsResolvedProperties(t *testing.T) {
	mgr := &mockSessionManager{config: map[string]string{"syncURL": "https://example.com", "username": "alice"}}
	cleanup := setupSyncTest(mgr)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "default"})
	defer rootCmd.SetArgs(nil)
	defer resetConfigFlags()

	err := rootCmd.Execute()
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "syncURL = https://example.com")
	assert.Contains(t, out, "username = alice")
}

func TestConfigCmd_ConfigureSetsProperties(t *testing.T) {
	mgr := &mockSessionManager{}
	cleanup := setupSyncTest(mgr)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "default", "--configure", "syncURL=https://new.example.com"})
	defer rootCmd.SetArgs(nil)
	defer resetConfigFlags()

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Equal(t, "https://new.example.com", mgr.config["syncURL"])
	assert.Contains(t, buf.String(), "Updated 1 propert(ies)")
}

func TestConfigCmd_PrintConfigIgnoresProperties(t *testing.T) {
	mgr := &mockSessionManager{config: map[string]string{"syncURL": "https://example.com"}}
	cleanup := setupSyncTest(mgr)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "default", "--print-config", "syncURL=ignored"})
	defer rootCmd.SetArgs(nil)
	defer resetConfigFlags()

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "syncURL = https://example.com")
	assert.Equal(t, "https://example.com", mgr.config["syncURL"])
}

func TestConfigCmd_InvalidProperty(t *testing.T) {
	cleanup := setupSyncTest(&mockSessionManager{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "default", "--configure", "not-a-pair"})
	defer rootCmd.SetArgs(nil)
	defer resetConfigFlags()

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid property")
}

func resetConfigFlags() {
	configConfigure = false
	configPrintOnly = false
}
