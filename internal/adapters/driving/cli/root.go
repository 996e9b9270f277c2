// Package cli implements the command-line front end for the Session
// Manager (C6, spec §6): a cobra command tree that drives the
// SessionManager, SourceService, CredentialsService, AuthProviderService
// and ProviderRegistry ports. The package never talks to storage or
// transport directly; cmd/syncevo registers a Builder through SetBuilder
// before Execute, and the root command's PersistentPreRunE passes what it
// builds to Configure.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syncevo-core/syncevo-core/internal/core/ports/driving"
)

// version is set by cmd/syncevo at build time via -ldflags.
var version = "dev"

// Package-level service handles. Configure populates these with the
// concrete adapters the registered Builder returns, once flags are parsed; a nil
// handle means the corresponding command group reports "not configured"
// rather than panicking.
var (
	sessionManager      driving.SessionManager
	sourceService       driving.SourceService
	credentialsService  driving.CredentialsService
	authProviderService driving.AuthProviderService
	providerRegistry    driving.ProviderRegistry
)

var rootCmd = &cobra.Command{
	Use:   "syncevo",
	Short: "SyncML/OMA-DS synchronisation client",
	Long: `syncevo synchronises contacts, calendars, tasks and notes between
a local store and a remote SyncML peer (or a CalDAV/WebDAV/provider-native
server through one of its connectors).

Configure an auth provider before adding a source that needs OAuth:

  syncevo auth add --provider google
  syncevo sync contacts`,
	SilenceUsage: true,
}

// Dependencies bundles the driving-port implementations the CLI front end
// dispatches to. cmd/syncevo's Builder constructs one instance after wiring
// storage, transport and connectors; PersistentPreRunE passes it to Configure.
type Dependencies struct {
	SessionManager      driving.SessionManager
	SourceService       driving.SourceService
	CredentialsService  driving.CredentialsService
	AuthProviderService driving.AuthProviderService
	ProviderRegistry    driving.ProviderRegistry
}

// Configure injects the services the command tree dispatches to. The root
// command's PersistentPreRunE calls it with the registered Builder's result.
func Configure(deps Dependencies) {
	sessionManager = deps.SessionManager
	sourceService = deps.SourceService
	credentialsService = deps.CredentialsService
	authProviderService = deps.AuthProviderService
	providerRegistry = deps.ProviderRegistry
}

// Builder constructs Dependencies from the --data-dir/--config-dir flag
// values, returning a cleanup func to run once the command tree is done
// (closing the metadata database). cmd/syncevo registers one via
// SetBuilder so storage opens only once flags are parsed, instead of
// Configure being called eagerly with a fixed data directory.
type Builder func(dataDir, configDir string) (Dependencies, func() error, error)

var builder Builder

// SetBuilder registers the dependency builder Execute calls on startup.
// Must be called before Execute. Tests that set the package-level service
// vars directly (e.g. via setupSyncTest) never call this, so
// PersistentPreRunE below is a no-op for them.
func SetBuilder(b Builder) {
	builder = b
}

var (
	dataDirFlag   string
	configDirFlag string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "",
		"directory for the metadata database (default ~/.syncevo-core/data)")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "",
		"directory for config.toml (default ~/.syncevo)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if builder == nil {
			return nil
		}
		deps, cleanup, err := builder(dataDirFlag, configDirFlag)
		if err != nil {
			return err
		}
		Configure(deps)
		closeDeps = cleanup
		return nil
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if closeDeps == nil {
			return nil
		}
		return closeDeps()
	}
}

var closeDeps func() error

// Execute runs the command tree, writing usage errors to stderr.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
