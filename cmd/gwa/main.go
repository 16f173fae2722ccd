package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Hazboun6/gwa/cmd/gwa/commands"
	"github.com/Hazboun6/gwa/config"
	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
)

var rootCmd = &cobra.Command{
	Use:   "gwa",
	Short: "gwa - Bayesian noise analysis for pulsar timing data",
	Long: `gwa - Bayesian noise analysis for pulsar timing data.

gwa loads par/tim/residual data products, composes noise models from
white, red, and dispersion-measure components, samples their posteriors
with an adaptive Metropolis-Hastings chain, and post-processes the
resulting chain files.

Available commands:
  pulsars  - List par/tim datasets in the data directory
  noise    - Show merged white-noise dictionaries
  run      - Sample a noise model posterior for one pulsar
  hyper    - Product-space sampling across competing models
  diag     - Summarize and plot a finished chain
  simulate - Generate a synthetic par/tim/residual dataset
  runs     - Manage the run catalog
  config   - Manage gwa configuration

Examples:
  gwa pulsars                                # List datasets under data.dir
  gwa run --pulsar J1713+0747 --model wn-rn  # Sample one noise model
  gwa diag chains/J1713+0747_wn-rn_a1b2c3d4  # Summarize a finished chain
  gwa runs                                   # Show cataloged runs`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize global logger before any command runs
		// Skip for commands whose stdout is meant to be piped (like 'config show')
		if cmd.Name() == "show" {
			return nil
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.InitializeWithVerbosity(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		// Apply the configured console theme; logging works on defaults if
		// config loading fails, so this is best-effort
		if cfg, err := config.Load(); err == nil {
			logger.SetTheme(cfg.GetLogTheme())
		}
		return nil
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON lines (for scheduler-launched batch runs)")

	// Add commands
	rootCmd.AddCommand(commands.PulsarsCmd)
	rootCmd.AddCommand(commands.NoiseCmd)
	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.HyperCmd)
	rootCmd.AddCommand(commands.DiagCmd)
	rootCmd.AddCommand(commands.SimulateCmd)
	rootCmd.AddCommand(commands.RunsCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		os.Exit(1)
	}
}
