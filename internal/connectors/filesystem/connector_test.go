package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

func writeVCard(t *testing.T, dir, luid, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, luid+vcardExt), []byte(content), 0o644))
}

func TestNew(t *testing.T) {
	t.Run("creates connector with valid parameters", func(t *testing.T) {
		connector := New("test-source", &Config{Path: "/tmp/test"})

		require.NotNil(t, connector)
		assert.Equal(t, "test-source", connector.ID())
	})

	t.Run("implements SyncSource interface", func(t *testing.T) {
		connector := New("test", &Config{Path: "/tmp"})
		var _ driven.SyncSource = connector
	})
}

func TestConnector_ID(t *testing.T) {
	connector := New("my-source", &Config{})
	assert.Equal(t, "my-source", connector.ID())
}

func TestConnector_SupportedContentTypes(t *testing.T) {
	connector := New("test", &Config{})
	assert.Equal(t, []domain.ContentType{domain.ContentTypeVCard}, connector.SupportedContentTypes())
}

func TestConnector_SetSessionID(t *testing.T) {
	connector := New("test", &Config{})
	connector.SetSessionID("session-1")
	assert.Equal(t, "session-1", connector.sessionID)
}

func TestConnector_BeginSync(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "contacts")
		connector := New("test", &Config{Path: dir})

		err := connector.BeginSync(context.Background(), "session-1", domain.EngineParams{})

		require.NoError(t, err)
		info, statErr := os.Stat(dir)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	})

	t.Run("fails on closed connector", func(t *testing.T) {
		connector := New("test", &Config{Path: t.TempDir()})
		require.NoError(t, connector.Close())

		err := connector.BeginSync(context.Background(), "session-1", domain.EngineParams{})

		assert.ErrorIs(t, err, domain.ErrConnectorClosed)
	})
}

func TestConnector_EndSync(t *testing.T) {
	connector := New("test", &Config{})
	assert.NoError(t, connector.EndSync(context.Background()))
}

func TestConnector_Changes(t *testing.T) {
	t.Run("reports a full census regardless of anchor", func(t *testing.T) {
		dir := t.TempDir()
		writeVCard(t, dir, "alice", "BEGIN:VCARD\nFN:Alice\nEND:VCARD")
		writeVCard(t, dir, "bob", "BEGIN:VCARD\nFN:Bob\nEND:VCARD")
		connector := New("test", &Config{Path: dir})

		changes, anchor, err := connector.Changes(context.Background(), domain.SyncAnchor{})

		require.NoError(t, err)
		assert.Len(t, changes, 2)
		for _, c := range changes {
			assert.Equal(t, domain.Unchanged, c.State)
			require.NotNil(t, c.Item)
			assert.NotEmpty(t, c.Item.Revision)
		}
		assert.NotEmpty(t, anchor.LastToken)
	})

	t.Run("census reflects the directory's current state, not the anchor", func(t *testing.T) {
		dir := t.TempDir()
		writeVCard(t, dir, "alice", "BEGIN:VCARD\nFN:Alice\nEND:VCARD")
		writeVCard(t, dir, "bob", "BEGIN:VCARD\nFN:Bob\nEND:VCARD")
		connector := New("test", &Config{Path: dir})

		_, anchor, err := connector.Changes(context.Background(), domain.SyncAnchor{})
		require.NoError(t, err)

		// Mutate: update alice, delete bob, add carol.
		writeVCard(t, dir, "alice", "BEGIN:VCARD\nFN:Alice Updated\nEND:VCARD")
		require.NoError(t, os.Remove(filepath.Join(dir, "bob"+vcardExt)))
		writeVCard(t, dir, "carol", "BEGIN:VCARD\nFN:Carol\nEND:VCARD")

		changes, _, err := connector.Changes(context.Background(), anchor)

		require.NoError(t, err)
		byLUID := make(map[domain.LUID]*domain.Item)
		for _, c := range changes {
			byLUID[c.LUID] = c.Item
		}
		require.Len(t, changes, 2)
		assert.Contains(t, string(byLUID["alice"].Content), "Updated")
		assert.Contains(t, string(byLUID["carol"].Content), "Carol")
		assert.NotContains(t, byLUID, domain.LUID("bob"))
	})
}

func TestConnector_ReadItem(t *testing.T) {
	t.Run("reads existing file", func(t *testing.T) {
		dir := t.TempDir()
		writeVCard(t, dir, "alice", "BEGIN:VCARD\nFN:Alice\nEND:VCARD")
		connector := New("test", &Config{Path: dir})

		item, err := connector.ReadItem(context.Background(), "alice")

		require.NoError(t, err)
		assert.Equal(t, domain.LUID("alice"), item.LUID)
		assert.Equal(t, domain.ContentTypeVCard, item.ContentType)
		assert.Contains(t, string(item.Content), "Alice")
	})

	t.Run("missing file", func(t *testing.T) {
		dir := t.TempDir()
		connector := New("test", &Config{Path: dir})

		item, err := connector.ReadItem(context.Background(), "missing")

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, item)
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		dir := t.TempDir()
		connector := New("test", &Config{Path: dir})

		item, err := connector.ReadItem(context.Background(), "../escape")

		assert.Error(t, err)
		assert.Nil(t, item)
	})
}

func TestConnector_InsertItem(t *testing.T) {
	t.Run("creates new item with generated LUID", func(t *testing.T) {
		dir := t.TempDir()
		connector := New("test", &Config{Path: dir})

		result, err := connector.InsertItem(context.Background(), domain.Item{
			ContentType: domain.ContentTypeVCard,
			Content:     []byte("BEGIN:VCARD\nFN:New\nEND:VCARD"),
		})

		require.NoError(t, err)
		assert.NotEmpty(t, result.LUID)
		_, statErr := os.Stat(filepath.Join(dir, result.LUID.String()+vcardExt))
		assert.NoError(t, statErr)
	})

	t.Run("updates existing item", func(t *testing.T) {
		dir := t.TempDir()
		writeVCard(t, dir, "alice", "BEGIN:VCARD\nFN:Alice\nEND:VCARD")
		connector := New("test", &Config{Path: dir})

		result, err := connector.InsertItem(context.Background(), domain.Item{
			LUID:        "alice",
			ContentType: domain.ContentTypeVCard,
			Content:     []byte("BEGIN:VCARD\nFN:Alice Updated\nEND:VCARD"),
		})

		require.NoError(t, err)
		assert.Equal(t, domain.LUID("alice"), result.LUID)
		content, readErr := os.ReadFile(filepath.Join(dir, "alice"+vcardExt))
		require.NoError(t, readErr)
		assert.Contains(t, string(content), "Updated")
	})
}

func TestConnector_DeleteItem(t *testing.T) {
	t.Run("removes existing file", func(t *testing.T) {
		dir := t.TempDir()
		writeVCard(t, dir, "alice", "BEGIN:VCARD\nFN:Alice\nEND:VCARD")
		connector := New("test", &Config{Path: dir})

		err := connector.DeleteItem(context.Background(), "alice")

		require.NoError(t, err)
		_, statErr := os.Stat(filepath.Join(dir, "alice"+vcardExt))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("missing file", func(t *testing.T) {
		dir := t.TempDir()
		connector := New("test", &Config{Path: dir})

		err := connector.DeleteItem(context.Background(), "missing")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestConnector_Backup_Restore(t *testing.T) {
	srcDir := t.TempDir()
	writeVCard(t, srcDir, "alice", "BEGIN:VCARD\nFN:Alice\nEND:VCARD")
	writeVCard(t, srcDir, "bob", "BEGIN:VCARD\nFN:Bob\nEND:VCARD")
	source := New("test", &Config{Path: srcDir})

	items, err := source.Backup(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	destDir := t.TempDir()
	dest := New("test", &Config{Path: destDir})
	require.NoError(t, dest.Restore(context.Background(), items))

	restored, err := dest.Backup(context.Background())
	require.NoError(t, err)
	assert.Len(t, restored, 2)
}

func TestConnector_Close(t *testing.T) {
	connector := New("test", &Config{})

	assert.NoError(t, connector.Close())
	assert.NoError(t, connector.Close())
}

func TestParseConfig(t *testing.T) {
	t.Run("parses path", func(t *testing.T) {
		source := domain.Source{Config: map[string]string{"path": "/home/user/contacts"}}

		cfg, err := ParseConfig(source)

		require.NoError(t, err)
		assert.Equal(t, "/home/user/contacts", cfg.Path)
	})

	t.Run("missing path", func(t *testing.T) {
		source := domain.Source{Config: map[string]string{}}

		cfg, err := ParseConfig(source)

		assert.ErrorIs(t, err, ErrMissingPath)
		assert.Nil(t, cfg)
	})
}
