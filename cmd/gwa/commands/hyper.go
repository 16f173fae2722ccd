package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Hazboun6/gwa/chain"
	"github.com/Hazboun6/gwa/config"
	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/psr"
	"github.com/Hazboun6/gwa/pta"
	"github.com/Hazboun6/gwa/runid"
	"github.com/Hazboun6/gwa/signals"
	"github.com/Hazboun6/gwa/sym"
)

// DefaultPriorDrawWeight is the prior-redraw jump weight for hypermodel
// runs. Rounded model-index moves only happen through prior redraws, so
// the weight has to be substantial or the chain never switches models.
const DefaultPriorDrawWeight = 25

// HyperCmd represents the hyper command
var HyperCmd = &cobra.Command{
	Use:   "hyper",
	Short: sym.Hyper + " Product-space sampling across competing models",
	Long: sym.Hyper + ` Compare noise models for one pulsar by product-space sampling.

Composes each requested model, joins them into a hypermodel whose
sampled vector is the union of all model parameters plus a continuous
model index (nmodel, the last chain column), and samples the joint
posterior. Rounding nmodel selects the active model per step, so the
fraction of samples each model receives estimates its posterior
probability, and ratios of those fractions are posterior odds.

Model switching happens through prior-redraw jumps; their weight is
adjustable when chains stick in one model.

The chain lands in a run directory like any single-model run. Pass it
to gwa diag for the per-model tallies and odds table.

Examples:
  gwa hyper --pulsar J1713+0747                     # wn vs wn-rn
  gwa hyper --pulsar B1855+09 --models wn-rn,wn-rn-dm --noise
  gwa hyper --pulsar J1713+0747 --iterations 1000000
  gwa hyper --resume chains/J1713+0747_wn+wn-rn_9fQk2Mxa`,
	RunE: runHyper,
}

func init() {
	HyperCmd.Flags().StringP("pulsar", "p", "", "Pulsar to analyze (required unless --resume)")
	HyperCmd.Flags().StringSlice("models", []string{"wn", "wn-rn"}, "Models to compare (built-in names or recipe TOML paths)")
	HyperCmd.Flags().IntP("iterations", "N", 0, "Sampler iterations (overrides sampler.iterations)")
	HyperCmd.Flags().Bool("noise", false, "Pin parameters from the merged noise dictionaries")
	HyperCmd.Flags().String("resume", "", "Existing run directory to continue")
	HyperCmd.Flags().String("outdir", "", "Parent directory for the run (overrides output.dir)")
	HyperCmd.Flags().String("data", "", "Data directory (overrides data.dir)")
	HyperCmd.Flags().Int64("seed", 0, "RNG seed (0 = time-seeded)")
	HyperCmd.Flags().Int("prior-weight", DefaultPriorDrawWeight, "Relative weight of prior-redraw jumps")
}

func runHyper(cmd *cobra.Command, args []string) error {
	pulsarName, _ := cmd.Flags().GetString("pulsar")
	modelArgs, _ := cmd.Flags().GetStringSlice("models")
	iterations, _ := cmd.Flags().GetInt("iterations")
	applyNoise, _ := cmd.Flags().GetBool("noise")
	resumeDir, _ := cmd.Flags().GetString("resume")
	outParent, _ := cmd.Flags().GetString("outdir")
	dataDir, _ := cmd.Flags().GetString("data")
	seed, _ := cmd.Flags().GetInt64("seed")
	priorWeight, _ := cmd.Flags().GetInt("prior-weight")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir == "" {
		dataDir = cfg.Data.Dir
	}
	if outParent == "" {
		outParent = cfg.GetOutputDir()
	}

	if resumeDir != "" {
		m, err := chain.ReadManifest(resumeDir)
		if err != nil {
			return errors.Wrapf(err, "cannot resume %s", resumeDir)
		}
		if pulsarName == "" {
			pulsarName = m.Pulsar
		}
		if !cmd.Flags().Changed("models") && m.Model != "" {
			modelArgs = strings.Split(m.Model, "+")
		}
	}
	if pulsarName == "" {
		return errors.WithHint(
			errors.Wrap(errors.ErrInvalidRequest, "no pulsar selected"),
			"pass --pulsar, or --resume an existing run directory")
	}
	if len(modelArgs) < 2 {
		return errors.WithHint(
			errors.Wrapf(errors.ErrInvalidRequest, "hypermodel needs at least two models, got %d", len(modelArgs)),
			"pass --models wn,wn-rn or similar")
	}

	p, err := loadPulsar(dataDir, cfg.Data.Pulsars, pulsarName)
	if err != nil {
		return err
	}

	var noise map[string]float64
	if applyNoise {
		merged, err := psr.LoadNoiseDicts(cfg.GetNoiseDir())
		if err != nil {
			return err
		}
		noise = psr.NoiseForPulsar(merged, p.Name)
	}

	models := make([]*pta.Model, 0, len(modelArgs))
	labels := make([]string, 0, len(modelArgs))
	for _, arg := range modelArgs {
		recipe, err := signals.ResolveRecipe(arg)
		if err != nil {
			return err
		}
		m, err := pta.BuildModel(p, recipe)
		if err != nil {
			return err
		}
		if noise != nil {
			m.SetConstants(noise)
		}
		models = append(models, m)
		labels = append(labels, recipe.Name)
	}

	hyper, err := pta.NewHyperModel(models)
	if err != nil {
		return err
	}

	label := strings.Join(labels, "+")
	opts := samplerOptions(cfg, iterations, seed, cmd)
	opts.Pulsar = p.Name
	opts.Model = label
	opts.PriorDrawWeight = priorWeight
	if resumeDir != "" {
		opts.OutDir = resumeDir
		opts.Resume = true
	} else {
		opts.OutDir = filepath.Join(outParent, runid.New(p.Name, label))
	}

	return sampleAndCatalog(cmd.Context(), hyper, opts, cfg)
}
