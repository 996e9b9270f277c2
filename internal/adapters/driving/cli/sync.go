package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/syncevo-core/syncevo-core/internal/adapters/driving/tui"
	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driving"
)

var syncCmd = &cobra.Command{
	Use:   "sync [config-id]",
	Short: "Synchronise sources against their remote peer",
	Long: `Starts a sync session for config-id, blocking until it reaches a
terminal state and printing a summary of what changed.

Sources within a session sync with the mode they were configured with
(two-way by default); pass --slow to force a slow sync for every source.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

var (
	syncSlow bool
	syncTUI  bool
)

func init() {
	syncCmd.Flags().BoolVar(&syncSlow, "slow", false, "force a slow sync on every source")
	syncCmd.Flags().BoolVar(&syncTUI, "tui", false, "watch progress in the interactive monitor instead of plain log lines")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}

	configID := args[0]
	ctx := context.Background()

	modes, err := syncModesFor(ctx, configID)
	if err != nil {
		return err
	}

	cmd.Printf("Starting sync for %s...\n", configID)
	sessionID, err := sessionManager.StartSession(ctx, configID, modes, domain.Filter{})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	control, err := sessionManager.Connect(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("connect to session %s: %w", sessionID, err)
	}
	defer control.Detach() //nolint:errcheck // best-effort detach on the way out

	if syncTUI {
		report, err := tui.NewApp(control).Run()
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		printReport(cmd, report)
		return nil
	}

	type result struct {
		report domain.SyncReport
		err    error
	}
	resultCh := make(chan result, 1)
	go func() {
		report, syncErr := control.Sync(ctx)
		resultCh <- result{report, syncErr}
	}()

	watchProgress(ctx, cmd, control)

	res := <-resultCh
	if res.err != nil {
		return fmt.Errorf("sync failed: %w", res.err)
	}

	printReport(cmd, res.report)
	return nil
}

// syncModesFor builds the per-source mode map for a session. --slow forces
// a slow sync on every configured source; otherwise it returns a nil map,
// and the Session Manager runs every source two-way.
func syncModesFor(ctx context.Context, configID string) (map[string]domain.SyncMode, error) {
	if !syncSlow {
		return nil, nil
	}
	sources, err := sessionManager.GetDatabases(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("list sources for %s: %w", configID, err)
	}
	modes := make(map[string]domain.SyncMode, len(sources))
	for _, src := range sources {
		modes[src.ID] = domain.ModeSlow
	}
	return modes, nil
}

// watchProgress polls the session's progress counters every 500ms and
// prints a running line until the session reaches a terminal state, while
// control.Sync runs concurrently in the caller's goroutine waiting on the
// same terminal transition to deliver the final report.
func watchProgress(ctx context.Context, cmd *cobra.Command, control driving.SessionControl) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			state, _ := control.GetStatus()
			for _, p := range control.GetProgress() {
				cmd.Printf("\r%s: %s (sent %d/%d, received %d/%d)",
					p.SourceID, p.Phase, p.SendCount, p.SendTotal, p.ReceiveCount, p.ReceiveTotal)
			}
			if state.Terminal() {
				cmd.Println()
				return
			}
		}
	}
}

// printReport summarises a finished session's per-source counters.
func printReport(cmd *cobra.Command, report domain.SyncReport) {
	if report.Status == 200 {
		cmd.Println("Sync completed successfully.")
	} else {
		cmd.Printf("Sync completed with status %d.\n", report.Status)
	}
	for sourceID, src := range report.Sources {
		added := src.Get(domain.ItemLocal, domain.KindAdded, domain.StatTotal)
		updated := src.Get(domain.ItemLocal, domain.KindUpdated, domain.StatTotal)
		removed := src.Get(domain.ItemLocal, domain.KindRemoved, domain.StatTotal)
		cmd.Printf("  %s: +%d ~%d -%d (status %d)\n", sourceID, added, updated, removed, src.Status)
	}
}
