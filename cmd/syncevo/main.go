// Command syncevo is the composition root: it wires the sqlite metadata
// store, the file-backed config store, the HTTP transport and the
// built-in source factory into the Session Manager and its sibling
// services, then hands the bundle to the cli package's command tree.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/syncevo-core/syncevo-core/internal/adapters/driven/config/file"
	"github.com/syncevo-core/syncevo-core/internal/adapters/driven/logging"
	"github.com/syncevo-core/syncevo-core/internal/adapters/driven/sourcefactory"
	"github.com/syncevo-core/syncevo-core/internal/adapters/driven/storage/sqlite"
	transport "github.com/syncevo-core/syncevo-core/internal/adapters/driven/transport/http"
	"github.com/syncevo-core/syncevo-core/internal/adapters/driving/cli"
	"github.com/syncevo-core/syncevo-core/internal/core/services"
)

// defaultSyncURLKey is the config property the Session Manager reads the
// peer's SyncML endpoint from, named after SyncEvolution's own "syncURL"
// profile property (spec.md §7).
const defaultSyncURLKey = "default.syncURL"

// maxLogDirs bounds how many past sessions' client.log directories the
// log sink keeps once a successful session triggers rotation (spec §7).
const maxLogDirs = 50

func main() {
	cli.SetBuilder(build)
	cli.Execute()
}

func build(dataDir, configDir string) (cli.Dependencies, func() error, error) {
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return cli.Dependencies{}, nil, fmt.Errorf("open metadata store: %w", err)
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		store.Close() //nolint:errcheck // best-effort on the error path
		return cli.Dependencies{}, nil, fmt.Errorf("open config store: %w", err)
	}

	logRoot, err := defaultLogRoot()
	if err != nil {
		store.Close() //nolint:errcheck
		return cli.Dependencies{}, nil, err
	}
	sink := logging.New(logRoot, maxLogDirs)

	syncURL := configStore.GetString(defaultSyncURLKey)
	xport := transport.New(syncURL)

	sourceStore := store.SourceStore()
	trackerStore := store.TrackerStore()
	reportStore := store.ReportStore()
	credentialsStore := store.CredentialsStore()
	authProviderStore := store.AuthProviderStore()

	factory := sourcefactory.New(credentialsStore, authProviderStore)

	manager := services.NewManager(factory, sourceStore, configStore, trackerStore, reportStore, xport, sink)
	sourceService := services.NewSourceService(sourceStore, trackerStore)
	credentialsService := services.NewCredentialsService(credentialsStore)
	authProviderService := services.NewAuthProviderService(authProviderStore, sourceStore)
	providerRegistry := services.NewProviderRegistry()

	cleanup := func() error {
		return store.Close()
	}

	return cli.Dependencies{
		SessionManager:      manager,
		SourceService:       sourceService,
		CredentialsService:  credentialsService,
		AuthProviderService: authProviderService,
		ProviderRegistry:    providerRegistry,
	}, cleanup, nil
}

// defaultLogRoot returns ~/.syncevo/logs, matching the config store's own
// ~/.syncevo default (internal/adapters/driven/config/file/configstore.go).
func defaultLogRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".syncevo", "logs"), nil
}
