package domain

// AuthMethod defines how a source authenticates.
type AuthMethod string

const (
	// AuthMethodNone requires no authentication (e.g., a local vcard file).
	AuthMethodNone AuthMethod = "none"
	// AuthMethodPAT uses a Personal Access Token.
	AuthMethodPAT AuthMethod = "pat"
	// AuthMethodOAuth uses OAuth 2.0 with PKCE.
	AuthMethodOAuth AuthMethod = "oauth"
)

// ProviderType identifies which auth provider a source type uses, letting
// one registered AuthProvider be shared across multiple sources (e.g. one
// Google OAuth app backing several Google Calendar sources).
type ProviderType string

// Recognised provider types.
const (
	ProviderLocal  ProviderType = "local"
	ProviderGoogle ProviderType = "google"
	ProviderGitHub ProviderType = "github"
	ProviderCalDAV ProviderType = "caldav"
)

// SourceType describes one pluggable Sync Source backend the Session
// Manager's SyncSourceFactory knows how to build (spec §3 "Sync Source").
type SourceType struct {
	// ID is the unique identifier (e.g., "vcard", "caldav", "google-calendar").
	ID string
	// Name is the human-readable display name.
	Name string
	// Description provides a brief explanation of the source type.
	Description string
	// ProviderType identifies which auth provider this source type uses.
	ProviderType ProviderType
	// AuthCapability specifies what authentication methods this source
	// type supports, for a CLI offering the user a choice.
	AuthCapability AuthCapability
	// AuthMethod is the source type's default auth method, derived from
	// AuthCapability when there is only one supported method.
	AuthMethod AuthMethod
	// ConfigKeys lists the configuration fields required by this source
	// type (spec's per-source config properties, e.g. database path).
	ConfigKeys []ConfigKey
}

// RequiresAuth returns true if this source type requires authentication.
func (t *SourceType) RequiresAuth() bool {
	return t.AuthCapability.RequiresAuth()
}

// ConfigKey describes a configuration field for a source type.
type ConfigKey struct {
	// Key is the configuration key name.
	Key string
	// Label is the human-readable label for UI display.
	Label string
	// Description explains what this field is for.
	Description string
	// Default is the default value for this field (shown in placeholder).
	Default string
	// Required indicates whether this field must be provided.
	Required bool
	// Secret indicates whether this field should be masked in UI (e.g., tokens).
	Secret bool
}
