package sourcefactory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncevo-core/syncevo-core/internal/adapters/driven/storage/memory"
	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

func newFactory() (*Factory, *memory.CredentialsStore, *memory.AuthProviderStore) {
	credentialsStore := memory.NewCredentialsStore()
	authProviderStore := memory.NewAuthProviderStore()
	return New(credentialsStore, authProviderStore), credentialsStore, authProviderStore
}

func TestFactory_ImplementsSyncSourceFactory(t *testing.T) {
	f, _, _ := newFactory()
	var _ driven.SyncSourceFactory = f
}

func TestFactory_SupportedTypes(t *testing.T) {
	f, _, _ := newFactory()
	assert.ElementsMatch(t, []string{"vcard", "caldav", "google-calendar", "github-tasks"}, f.SupportedTypes())
}

func TestFactory_Build_Vcard(t *testing.T) {
	f, _, _ := newFactory()
	src := domain.Source{ID: "contacts", Type: "vcard", Config: map[string]string{"path": "/tmp/contacts"}}

	source, err := f.Build(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "contacts", source.ID())
}

func TestFactory_Build_CaldavWithNoAuth(t *testing.T) {
	f, _, _ := newFactory()
	src := domain.Source{ID: "cal", Type: "caldav", Config: map[string]string{"url": "https://example.com/cal"}}

	source, err := f.Build(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "cal", source.ID())
}

func TestFactory_Build_GithubWithPAT(t *testing.T) {
	f, credentialsStore, _ := newFactory()
	require.NoError(t, credentialsStore.Save(context.Background(), domain.Credentials{
		ID:       "creds-1",
		SourceID: "tasks",
		PAT:      &domain.PATCredentials{Token: "ghp_test"},
	}))

	src := domain.Source{
		ID:            "tasks",
		Type:          "github-tasks",
		Config:        map[string]string{"repository": "octocat/hello-world"},
		CredentialsID: "creds-1",
	}

	source, err := f.Build(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "tasks", source.ID())
}

func TestFactory_Build_GoogleCalendarWithOAuth(t *testing.T) {
	f, credentialsStore, authProviderStore := newFactory()
	require.NoError(t, authProviderStore.Save(context.Background(), domain.AuthProvider{
		ID:           "provider-1",
		ProviderType: domain.ProviderGoogle,
		AuthMethod:   domain.AuthMethodOAuth,
	}))
	require.NoError(t, credentialsStore.Save(context.Background(), domain.Credentials{
		ID:       "creds-2",
		SourceID: "calendar",
		OAuth:    &domain.OAuthCredentials{AccessToken: "token", TokenType: "Bearer"},
	}))

	src := domain.Source{
		ID:             "calendar",
		Type:           "google-calendar",
		CredentialsID:  "creds-2",
		AuthProviderID: "provider-1",
	}

	source, err := f.Build(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "calendar", source.ID())
}

func TestFactory_Build_UnknownType(t *testing.T) {
	f, _, _ := newFactory()
	_, err := f.Build(context.Background(), domain.Source{ID: "x", Type: "nope"})
	assert.Error(t, err)
}

func TestFactory_Build_MissingConfig(t *testing.T) {
	f, _, _ := newFactory()
	_, err := f.Build(context.Background(), domain.Source{ID: "x", Type: "vcard"})
	assert.Error(t, err)
}

func TestFactory_Build_CredentialsNotFound(t *testing.T) {
	f, _, _ := newFactory()
	src := domain.Source{
		ID:            "tasks",
		Type:          "github-tasks",
		Config:        map[string]string{"repository": "octocat/hello-world"},
		CredentialsID: "missing",
	}
	_, err := f.Build(context.Background(), src)
	assert.Error(t, err)
}
