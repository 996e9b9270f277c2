package services

import (
	"fmt"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driving"
)

// providerSourceTypes maps provider types to their compatible source type IDs.
var providerSourceTypes = map[domain.ProviderType][]string{
	domain.ProviderLocal:  {"vcard"},
	domain.ProviderGoogle: {"google-calendar"},
	domain.ProviderGitHub: {"github-tasks"},
	domain.ProviderCalDAV: {"caldav"},
}

// providerCapabilities maps provider types to their supported auth methods.
var providerCapabilities = map[domain.ProviderType]domain.AuthCapability{
	domain.ProviderLocal:  domain.AuthCapNone,
	domain.ProviderGitHub: domain.AuthCapPAT | domain.AuthCapOAuth, // GitHub supports both!
	domain.ProviderGoogle: domain.AuthCapOAuth,
	domain.ProviderCalDAV: domain.AuthCapPAT,
}

// sourceTypeProviders is the inverse mapping (source type -> provider).
var sourceTypeProviders map[string]domain.ProviderType

//nolint:gochecknoinits // Package-level static mapping initialization
func init() {
	sourceTypeProviders = make(map[string]domain.ProviderType)
	for provider, sourceTypes := range providerSourceTypes {
		for _, st := range sourceTypes {
			sourceTypeProviders[st] = provider
		}
	}
}

// ProviderRegistry provides information about providers and their compatible source types.
type ProviderRegistry struct{}

// Ensure ProviderRegistry implements the interface.
var _ driving.ProviderRegistry = (*ProviderRegistry)(nil)

// NewProviderRegistry creates a new ProviderRegistry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{}
}

// GetProviders returns all available provider types.
func (r *ProviderRegistry) GetProviders() []domain.ProviderType {
	providers := make([]domain.ProviderType, 0, len(providerSourceTypes))
	for provider := range providerSourceTypes {
		providers = append(providers, provider)
	}
	return providers
}

// GetConnectorsForProvider returns source type IDs compatible with a provider.
func (r *ProviderRegistry) GetConnectorsForProvider(provider domain.ProviderType) []string {
	if sourceTypes, ok := providerSourceTypes[provider]; ok {
		// Return a copy to prevent modification
		result := make([]string, len(sourceTypes))
		copy(result, sourceTypes)
		return result
	}
	return nil
}

// GetProviderForConnector returns the provider type for a source type ID.
func (r *ProviderRegistry) GetProviderForConnector(connectorType string) (domain.ProviderType, error) {
	if provider, ok := sourceTypeProviders[connectorType]; ok {
		return provider, nil
	}
	return "", fmt.Errorf("unknown connector type: %s", connectorType)
}

// IsCompatible checks if a source type can use a provider.
func (r *ProviderRegistry) IsCompatible(provider domain.ProviderType, connectorType string) bool {
	sourceTypes, ok := providerSourceTypes[provider]
	if !ok {
		return false
	}
	for _, st := range sourceTypes {
		if st == connectorType {
			return true
		}
	}
	return false
}

// GetDefaultAuthMethod returns the typical auth method for a provider.
// For providers supporting multiple methods, returns the recommended default.
func (r *ProviderRegistry) GetDefaultAuthMethod(provider domain.ProviderType) domain.AuthMethod {
	authCap := r.GetAuthCapability(provider)
	// PAT is simpler, so prefer it as default when available.
	if authCap.SupportsPAT() {
		return domain.AuthMethodPAT
	}
	if authCap.SupportsOAuth() {
		return domain.AuthMethodOAuth
	}
	return domain.AuthMethodNone
}

// GetAuthCapability returns the authentication capabilities for a provider.
func (r *ProviderRegistry) GetAuthCapability(provider domain.ProviderType) domain.AuthCapability {
	if authCap, ok := providerCapabilities[provider]; ok {
		return authCap
	}
	return domain.AuthCapNone
}

// GetSupportedAuthMethods returns all auth methods supported by a provider.
func (r *ProviderRegistry) GetSupportedAuthMethods(provider domain.ProviderType) []domain.AuthMethod {
	return r.GetAuthCapability(provider).SupportedMethods()
}

// SupportsMultipleAuthMethods returns true if the provider supports choosing between auth methods.
func (r *ProviderRegistry) SupportsMultipleAuthMethods(provider domain.ProviderType) bool {
	return r.GetAuthCapability(provider).SupportsMultipleMethods()
}

// HasMultipleConnectors returns true if the provider supports multiple distinct source
// types that can share an OAuth app. Every provider in this registry currently backs
// exactly one source type, so this always reports false; it stays part of the
// interface for a future provider (e.g. Google backing both calendar and contacts).
func (r *ProviderRegistry) HasMultipleConnectors(provider domain.ProviderType) bool {
	return false
}

// GetOAuthEndpoints returns the OAuth endpoints for a provider.
// These are the standard endpoints that users should use when creating an OAuth app.
func (r *ProviderRegistry) GetOAuthEndpoints(provider domain.ProviderType) *driving.OAuthEndpoints {
	switch provider { //nolint:exhaustive // Local/CalDAV providers don't have OAuth endpoints
	case domain.ProviderGitHub:
		return &driving.OAuthEndpoints{
			AuthURL:   "https://github.com/login/oauth/authorize",
			TokenURL:  "https://github.com/login/oauth/access_token",
			DeviceURL: "https://github.com/login/device/code",
			Scopes:    []string{"repo", "read:user"},
		}
	case domain.ProviderGoogle:
		return &driving.OAuthEndpoints{
			AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:  "https://oauth2.googleapis.com/token",
			DeviceURL: "",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/calendar",
			},
		}
	default:
		return nil
	}
}
