package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/21state/spacetoken/internal/config"
	"github.com/21state/spacetoken/internal/settings"
	"github.com/21state/spacetoken/internal/solc"
	"github.com/21state/spacetoken/internal/version"
)

var opts settings.Settings

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spacetoken",
		Short: "Inspect network profiles and verify token metadata",
		Long: `A CLI tool for the Space token project.
Resolves truffle-style network profiles and the solc compiler descriptor,
checks that profile endpoints are reachable, and verifies that a token
reports the name, symbol and decimals it was constructed with.`,
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: loadSettings,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringSliceP(settings.KeyConfig, "c", []string{settings.DefaultSource}, "Project configuration files or URLs, merged in order")
	flags.String(settings.KeyMergePolicy, config.LastWins.String(), "How to merge profiles defined in several sources: last-wins or reject")
	flags.Duration(settings.KeyTimeout, settings.DefaultTimeout, "Timeout for network operations")
	flags.Bool(settings.KeyDebug, false, "Enable debug mode with extra information")
	flags.Bool(settings.KeyJSON, false, "Print results as JSON")
	flags.String(settings.KeySolcBaseURL, solc.DefaultBaseURL, "Base URL of the solc binaries mirror")

	rootCmd.AddCommand(newNetworksCmd())
	rootCmd.AddCommand(newCompilerCmd())
	rootCmd.AddCommand(newTokenCmd())
	return rootCmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func loadSettings(cmd *cobra.Command, args []string) error {
	v := settings.New()
	if err := settings.Bind(v, cmd.Flags()); err != nil {
		return err
	}
	s, err := settings.Load(v)
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	opts = s
	debugPrint("Settings: sources=%v merge-policy=%s timeout=%s", opts.Sources, opts.MergePolicy, opts.Timeout)
	return nil
}

// loadProject builds the project configuration once per invocation; the
// result is handed explicitly to whatever needs it.
func loadProject(ctx context.Context) (*config.Config, error) {
	policy, err := opts.Policy()
	if err != nil {
		return nil, err
	}

	debugPrint("Loading configuration from %v (merge policy: %s)", opts.Sources, policy)
	cfg, err := config.NewLoader(opts.Timeout, debugPrint).Load(ctx, opts.Sources, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to load project configuration: %w", err)
	}
	debugPrint("Configuration loaded successfully with %d network profiles", len(cfg.Profiles()))
	return cfg, nil
}

func debugPrint(format string, a ...interface{}) {
	if opts.Debug {
		debugColor := color.New(color.FgYellow).SprintFunc()
		timestamp := time.Now().Format("15:04:05.000")
		fmt.Fprintf(color.Error, "%s %s %s\n", debugColor("[DEBUG]"), timestamp, fmt.Sprintf(format, a...))
	}
}

func printInfo(format string, a ...interface{}) {
	if opts.JSON {
		return
	}
	infoColor := color.New(color.FgCyan).SprintFunc()
	fmt.Printf("%s %s\n", infoColor("[INFO]"), fmt.Sprintf(format, a...))
}
