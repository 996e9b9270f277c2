package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [config-id]",
	Short: "Show the last sync report and configured sources for a configuration",
	Long: `Prints the most recent sync report for config-id plus the list of
sources it currently drives, mirroring the summary 'syncevo sync' prints
at the end of a session without starting a new one.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var statusLimit int

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 1, "number of past reports to show, most recent first")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	configID := args[0]
	ctx := context.Background()

	present, err := sessionManager.CheckPresence(ctx, configID)
	if err != nil {
		return fmt.Errorf("check presence: %w", err)
	}
	cmd.Printf("Peer reachable: %t\n", present)

	sources, err := sessionManager.GetDatabases(ctx, configID)
	if err != nil {
		return fmt.Errorf("list sources for %s: %w", configID, err)
	}
	cmd.Println("Sources:")
	for _, src := range sources {
		cmd.Printf("  %s (%s)\n", src.ID, src.Type)
	}

	reports, err := sessionManager.GetReports(ctx, configID, statusLimit)
	if err != nil {
		return fmt.Errorf("get reports for %s: %w", configID, err)
	}
	if len(reports) == 0 {
		cmd.Println("No sync reports yet.")
		return nil
	}

	for _, report := range reports {
		printReport(cmd, report)
	}
	return nil
}
