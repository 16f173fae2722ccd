package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Hazboun6/gwa/chain"
	"github.com/Hazboun6/gwa/config"
	"github.com/Hazboun6/gwa/diag"
	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/sym"
)

// DiagCmd represents the diag command
var DiagCmd = &cobra.Command{
	Use:   "diag <run-dir>",
	Short: sym.Diag + " Summarize and plot a finished chain",
	Long: sym.Diag + ` Post-process a run directory.

Loads chain_1.txt with its pars.txt column listing, discards the
leading burn-in fraction, and prints marginal summaries per parameter
(median, 16th/84th percentiles, value at the maximum-posterior sample)
plus acceptance and an autocorrelation-time estimate for the posterior
trace.

Hypermodel chains additionally get the model-selection table: samples
and posterior fraction per model, and odds ratios against model 0 with
their Monte-Carlo counting uncertainty.

With --plots, histogram and trace PNGs per parameter plus an lnpost
trace are written into the run directory.

Examples:
  gwa diag chains/J1713+0747_wn-rn_4xKwm2Qp
  gwa diag chains/J1713+0747_wn-rn_4xKwm2Qp --burn 0.5
  gwa diag chains/J1713+0747_wn+wn-rn_9fQk2Mxa --plots`,
	Args: cobra.ExactArgs(1),
	RunE: runDiag,
}

func init() {
	DiagCmd.Flags().Float64("burn", 0, "Burn-in fraction to discard (overrides diag.burn_fraction)")
	DiagCmd.Flags().Bool("plots", false, "Write histogram and trace PNGs into the run directory")
	DiagCmd.Flags().Int("bins", 0, "Histogram bin count (overrides diag.bins)")
}

func runDiag(cmd *cobra.Command, args []string) error {
	dir := args[0]
	burn, _ := cmd.Flags().GetFloat64("burn")
	plots, _ := cmd.Flags().GetBool("plots")
	bins, _ := cmd.Flags().GetInt("bins")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dc := cfg.GetDiagConfig()
	if burn == 0 {
		burn = dc.BurnFraction
	}
	if bins == 0 {
		bins = dc.Bins
	}

	c, err := chain.Load(dir)
	if err != nil {
		return err
	}

	report := diag.BuildReport(c, burn)
	if err := report.Render(); err != nil {
		return err
	}

	// Model selection only applies to hypermodel chains; its absence is
	// the normal case, not a failure.
	models, err := diag.ModelSelection(c.Burn(burn))
	switch {
	case err == nil:
		if err := models.Render(); err != nil {
			return err
		}
	case !errors.Is(err, errors.ErrNoSuchParameter):
		return err
	}

	if plots {
		files, err := diag.PlotChain(c.Burn(burn), dir, bins)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("%d plots written to %s", len(files), dir)
	}
	return nil
}
