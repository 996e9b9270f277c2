package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [config-id] [key=value ...]",
	Short: "Print or update a configuration's property tree",
	Long: `With no key=value arguments, prints the resolved property tree for
config-id (the --print-config verb of spec.md §6). With one or more
key=value arguments, or --configure, persists those overrides instead
(the --configure verb).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConfig,
}

var (
	configConfigure bool
	configPrintOnly bool
)

func init() {
	configCmd.Flags().BoolVar(&configConfigure, "configure", false,
		"persist the given key=value properties instead of only printing them")
	configCmd.Flags().BoolVar(&configPrintOnly, "print-config", false,
		"print the resolved property tree, ignoring any key=value arguments")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	configID := args[0]
	ctx := context.Background()

	props, err := parseConfigProps(args[1:])
	if err != nil {
		return err
	}

	if configPrintOnly || (len(props) == 0 && !configConfigure) {
		return printConfig(cmd, ctx, configID)
	}
	if len(props) == 0 {
		return errors.New("--configure requires at least one key=value argument")
	}

	if err := sessionManager.SetConfig(ctx, configID, props); err != nil {
		return fmt.Errorf("configure %s: %w", configID, err)
	}
	cmd.Printf("Updated %d propert(ies) for %s.\n", len(props), configID)
	return nil
}

func printConfig(cmd *cobra.Command, ctx context.Context, configID string) error {
	props, err := sessionManager.GetConfig(ctx, configID)
	if err != nil {
		return fmt.Errorf("get config for %s: %w", configID, err)
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("%s = %s\n", k, props[k])
	}
	return nil
}

// parseConfigProps turns a list of "key=value" arguments into a property
// map, rejecting anything without an '='.
func parseConfigProps(args []string) (map[string]string, error) {
	props := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid property %q, want key=value", arg)
		}
		props[key] = value
	}
	return props, nil
}
