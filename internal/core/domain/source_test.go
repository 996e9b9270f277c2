package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSource_Fields tests Source structure fields
func TestSource_Fields(t *testing.T) {
	source := Source{
		ID:             "source-123",
		Type:           "vcard",
		Name:           "My Address Book",
		Config:         map[string]string{"root_path": "/home/user/contacts"},
		AuthProviderID: "",
		CredentialsID:  "",
	}

	assert.Equal(t, "source-123", source.ID)
	assert.Equal(t, "vcard", source.Type)
	assert.Equal(t, "My Address Book", source.Name)
	assert.Equal(t, "/home/user/contacts", source.Config["root_path"])
}

// TestSource_EmptyConfig tests Source with empty config
func TestSource_EmptyConfig(t *testing.T) {
	source := Source{
		ID:     "source-123",
		Type:   "vcard",
		Name:   "Simple Source",
		Config: map[string]string{},
	}

	assert.NotNil(t, source.Config)
	assert.Empty(t, source.Config)
}

// TestSource_NilConfig tests Source with nil config
func TestSource_NilConfig(t *testing.T) {
	source := Source{
		ID:     "source-123",
		Type:   "vcard",
		Name:   "Simple Source",
		Config: nil,
	}

	assert.Nil(t, source.Config)
}

// TestSource_MultipleConfigKeys tests Source with multiple config values
func TestSource_MultipleConfigKeys(t *testing.T) {
	source := Source{
		ID:   "source-123",
		Type: "caldav",
		Name: "Work Calendar",
		Config: map[string]string{
			"url":           "https://caldav.example.com/calendars/work",
			"sync_mode":     "two-way",
			"include_tasks": "true",
			"resync":        "false",
		},
	}

	assert.Len(t, source.Config, 4)
	assert.Equal(t, "https://caldav.example.com/calendars/work", source.Config["url"])
	assert.Equal(t, "two-way", source.Config["sync_mode"])
	assert.Equal(t, "true", source.Config["include_tasks"])
	assert.Equal(t, "false", source.Config["resync"])
}

// TestSource_FilesystemVCardExample tests a filesystem-backed vCard source
func TestSource_FilesystemVCardExample(t *testing.T) {
	source := Source{
		ID:   "fs-source-1",
		Type: "vcard",
		Name: "Local Contacts",
		Config: map[string]string{
			"root_path":      "/home/user/contacts",
			"include_hidden": "false",
			"file_patterns":  "*.vcf",
		},
	}

	assert.Equal(t, "vcard", source.Type)
	assert.Equal(t, "/home/user/contacts", source.Config["root_path"])
	assert.Contains(t, source.Config, "include_hidden")
	assert.Contains(t, source.Config, "file_patterns")
}

// TestSource_GoogleCalendarExample tests Google Calendar source configuration
func TestSource_GoogleCalendarExample(t *testing.T) {
	source := Source{
		ID:   "gcal-source-1",
		Type: "google-calendar",
		Name: "My Google Calendar",
		Config: map[string]string{
			"calendar_id": "primary",
			"include_all": "true",
		},
		AuthProviderID: "google-provider-1",
		CredentialsID:  "google-cred-1",
	}

	assert.Equal(t, "google-calendar", source.Type)
	assert.Equal(t, "primary", source.Config["calendar_id"])
	assert.Equal(t, "google-provider-1", source.AuthProviderID)
	assert.Equal(t, "google-cred-1", source.CredentialsID)
}

// TestSource_EmptyStrings tests Source with empty string values
func TestSource_EmptyStrings(t *testing.T) {
	source := Source{
		ID:     "",
		Type:   "",
		Name:   "",
		Config: map[string]string{},
	}

	assert.Empty(t, source.ID)
	assert.Empty(t, source.Type)
	assert.Empty(t, source.Name)
	assert.Empty(t, source.AuthProviderID)
}

// TestSource_SpecialCharacters tests Source with special characters in config
func TestSource_SpecialCharacters(t *testing.T) {
	source := Source{
		ID:   "source-123",
		Type: "caldav",
		Name: "Source with Special Chars: @#$%",
		Config: map[string]string{
			"url":     "https://example.com?query=test&foo=bar",
			"pattern": "*.{vcf,ics}",
			"exclude": "[cache]|[tmp]",
		},
	}

	assert.Contains(t, source.Name, "@#$%")
	assert.Contains(t, source.Config["url"], "?")
	assert.Contains(t, source.Config["pattern"], "{")
	assert.Contains(t, source.Config["exclude"], "|")
}

// TestSource_UnicodeInName tests Source with Unicode characters
func TestSource_UnicodeInName(t *testing.T) {
	source := Source{
		ID:     "source-123",
		Type:   "vcard",
		Name:   "联系人目录",
		Config: map[string]string{"root_path": "/contacts"},
	}

	assert.Equal(t, "联系人目录", source.Name)
}

// TestSource_RequiredFields tests what fields are typically required
func TestSource_RequiredFields(t *testing.T) {
	// Minimal valid source
	source := Source{
		ID:   "source-123",
		Type: "vcard",
		Name: "Test Source",
	}

	assert.NotEmpty(t, source.ID)
	assert.NotEmpty(t, source.Type)
	assert.NotEmpty(t, source.Name)
}

// TestSource_ConfigStringValues tests that Config only stores strings
func TestSource_ConfigStringValues(t *testing.T) {
	source := Source{
		ID:   "source-123",
		Type: "custom",
		Name: "Test",
		Config: map[string]string{
			"string_val": "text",
			"bool_val":   "true", // Stored as string
			"int_val":    "42",   // Stored as string
			"float_val":  "3.14", // Stored as string
		},
	}

	// All values should be strings
	for _, v := range source.Config {
		assert.IsType(t, "", v)
	}
}

// TestSource_DisplayName tests DisplayName appends the account identifier
// only when it isn't already present in the name.
func TestSource_DisplayName(t *testing.T) {
	s := Source{Name: "Work Calendar"}
	assert.Equal(t, "Work Calendar - alice@example.com", s.DisplayName("alice@example.com"))

	s2 := Source{Name: "Work Calendar (alice@example.com)"}
	assert.Equal(t, "Work Calendar (alice@example.com)", s2.DisplayName("alice@example.com"))

	s3 := Source{Name: "Local Contacts"}
	assert.Equal(t, "Local Contacts", s3.DisplayName(""))
}
