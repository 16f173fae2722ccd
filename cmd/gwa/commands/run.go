package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Hazboun6/gwa/catalog"
	"github.com/Hazboun6/gwa/chain"
	"github.com/Hazboun6/gwa/config"
	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
	"github.com/Hazboun6/gwa/psr"
	"github.com/Hazboun6/gwa/pta"
	"github.com/Hazboun6/gwa/runid"
	"github.com/Hazboun6/gwa/sampler"
	"github.com/Hazboun6/gwa/signals"
	"github.com/Hazboun6/gwa/sym"
	"github.com/Hazboun6/gwa/version"
)

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: sym.Run + " Sample a noise model posterior for one pulsar",
	Long: sym.Run + ` Sample a noise model posterior for one pulsar.

Loads the pulsar's par/tim/residual products, composes the requested
noise model, and runs the adaptive Metropolis-Hastings chain for the
configured iteration count. The chain streams into a fresh run
directory under output.dir:

  chain_1.txt  samples: parameter columns, lnpost, lnlike, acceptance, swap
  pars.txt     parameter names in chain column order
  cov.txt      latest proposal covariance snapshot
  run.toml     manifest: version, seed, model, progress

Models are built-in recipe names (wn, wn-rn, wn-rn-dm) or paths to
recipe TOML files. With --noise, parameters named in the merged noise
dictionaries are pinned as constants instead of sampled — the usual
setup when white noise is already characterized and only the red
processes are of interest.

Ctrl+C checkpoints the chain and marks the run interrupted; pass the
run directory to --resume to continue it later. Resume restores the
position and proposal covariance from the directory and appends.

Examples:
  gwa run --pulsar J1713+0747                      # wn-rn model, config iterations
  gwa run --pulsar B1855+09 --model wn-rn-dm --noise
  gwa run --pulsar J1713+0747 --iterations 500000 --seed 42
  gwa run --resume chains/J1713+0747_wn-rn_4xKwm2Qp`,
	RunE: runRun,
}

func init() {
	RunCmd.Flags().StringP("pulsar", "p", "", "Pulsar to analyze (required unless --resume)")
	RunCmd.Flags().StringP("model", "m", "wn-rn", "Built-in model name or recipe TOML path")
	RunCmd.Flags().IntP("iterations", "N", 0, "Sampler iterations (overrides sampler.iterations)")
	RunCmd.Flags().Bool("noise", false, "Pin parameters from the merged noise dictionaries")
	RunCmd.Flags().String("resume", "", "Existing run directory to continue")
	RunCmd.Flags().String("outdir", "", "Parent directory for the run (overrides output.dir)")
	RunCmd.Flags().String("data", "", "Data directory (overrides data.dir)")
	RunCmd.Flags().Int64("seed", 0, "RNG seed (0 = time-seeded)")
}

func runRun(cmd *cobra.Command, args []string) error {
	pulsarName, _ := cmd.Flags().GetString("pulsar")
	modelArg, _ := cmd.Flags().GetString("model")
	iterations, _ := cmd.Flags().GetInt("iterations")
	applyNoise, _ := cmd.Flags().GetBool("noise")
	resumeDir, _ := cmd.Flags().GetString("resume")
	outParent, _ := cmd.Flags().GetString("outdir")
	dataDir, _ := cmd.Flags().GetString("data")
	seed, _ := cmd.Flags().GetInt64("seed")

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

	// A resumed run's manifest knows its pulsar and model; flags fill
	// gaps rather than restating them.
	if resumeDir != "" {
		m, err := chain.ReadManifest(resumeDir)
		if err != nil {
			return errors.Wrapf(err, "cannot resume %s", resumeDir)
		}
		if pulsarName == "" {
			pulsarName = m.Pulsar
		}
		if !cmd.Flags().Changed("model") && m.Model != "" {
			modelArg = m.Model
		}
	}
	if pulsarName == "" {
		return errors.WithHint(
			errors.Wrap(errors.ErrInvalidRequest, "no pulsar selected"),
			"pass --pulsar, or --resume an existing run directory")
	}

	p, err := loadPulsar(dataDir, cfg.Data.Pulsars, pulsarName)
	if err != nil {
		return err
	}

	recipe, err := signals.ResolveRecipe(modelArg)
	if err != nil {
		return err
	}
	model, err := pta.BuildModel(p, recipe)
	if err != nil {
		return err
	}

	if applyNoise {
		merged, err := psr.LoadNoiseDicts(cfg.GetNoiseDir())
		if err != nil {
			return err
		}
		model.SetConstants(psr.NoiseForPulsar(merged, p.Name))
	}
	if model.Dim() == 0 {
		return errors.WithHint(
			errors.Newf("model %s has no free parameters for %s", recipe.Name, p.Name),
			"the noise dictionary pinned everything; drop --noise or add a signal")
	}

	opts := samplerOptions(cfg, iterations, seed, cmd)
	opts.Pulsar = p.Name
	opts.Model = recipe.Name
	if resumeDir != "" {
		opts.OutDir = resumeDir
		opts.Resume = true
	} else {
		opts.OutDir = filepath.Join(outParent, runid.New(p.Name, recipe.Name))
	}

	return sampleAndCatalog(cmd.Context(), model, opts, cfg)
}

// loadPulsar discovers and loads one named pulsar, honoring the
// allow-list so a run cannot reach past the configured subset.
func loadPulsar(dataDir string, allow []string, name string) (*psr.Pulsar, error) {
	sets, err := psr.Discover(dataDir)
	if err != nil {
		return nil, err
	}
	sets = psr.Filter(sets, allow)
	for _, ds := range sets {
		if ds.Name == name {
			return psr.Load(ds)
		}
	}
	return nil, errors.WithHintf(
		errors.Wrapf(errors.ErrNotFound, "no dataset for pulsar %s under %s", name, dataDir),
		"gwa pulsars lists the datasets gwa can see")
}

// samplerOptions merges config defaults with command-line overrides.
func samplerOptions(cfg *config.Config, iterations int, seed int64, cmd *cobra.Command) sampler.Options {
	sc := cfg.GetSamplerConfig()
	opts := sampler.Options{
		Iterations: sc.Iterations,
		Thin:       sc.Thin,
		SaveEvery:  sc.SaveEvery,
		CovUpdate:  sc.CovUpdate,
		Seed:       sc.Seed,
		SCAMWeight: sc.SCAMWeight,
		AMWeight:   sc.AMWeight,
		DEWeight:   sc.DEWeight,
	}
	if iterations > 0 {
		opts.Iterations = iterations
	}
	if seed != 0 {
		opts.Seed = seed
	}
	if jsonLogs, _ := cmd.Flags().GetBool("log-json"); jsonLogs {
		opts.Progress = sampler.NewJSONEmitter()
	} else {
		opts.Progress = sampler.NewCLIEmitter()
	}
	return opts
}

// sampleAndCatalog runs the sampler to completion, cataloging the run
// before and after. Catalog trouble is logged, never fatal: the chain
// on disk is the product, the catalog is bookkeeping.
func sampleAndCatalog(parent context.Context, target sampler.Target, opts sampler.Options, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Printf("\n%s Checkpointing chain before exit...\n", sym.Run)
		cancel()
	}()

	stopWatch := watchConfig()
	defer stopWatch()

	store := openCatalog()
	if store != nil {
		defer store.Close()
	}

	id := filepath.Base(opts.OutDir)
	rec := &catalog.Record{
		ID:         id,
		Pulsar:     opts.Pulsar,
		Model:      opts.Model,
		NDim:       target.Dim(),
		Iterations: opts.Iterations,
		Status:     chain.StatusRunning,
		OutDir:     opts.OutDir,
		Version:    version.Version,
		DataCommit: catalog.DataCommit(cfg.Data.Dir),
	}
	if total, avail, err := catalog.MemorySnapshot(); err == nil {
		rec.HostMemTotal = total
		rec.HostMemAvailable = avail
	}
	saveRecord(store, rec)

	summary, runErr := sampler.New(target, opts).Run(ctx)
	if summary != nil {
		rec.Completed = summary.Iterations
		rec.Acceptance = summary.Acceptance
		rec.MaxLnPost = summary.MaxLnPost
		rec.Status = chain.StatusComplete
		if runErr != nil {
			rec.Status = chain.StatusInterrupted
		}
		saveRecord(store, rec)
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("%s Run %s complete: gwa diag %s\n", sym.OK, id, summary.Dir)
	return nil
}

// watchConfig follows the active config file for the duration of a sampling
// run so ambient settings track edits without restarting the chain. Model
// and sampler parameters are fixed at launch; a reload never touches a chain
// in flight. Returns a stop function, a no-op when no config file is in use.
func watchConfig() func() {
	path := config.ActiveConfigFile()
	if path == "" {
		logger.Debugw("No config file in use, skipping config watcher")
		return func() {}
	}

	cw, err := config.NewConfigWatcher(path)
	if err != nil {
		logger.Warnw("Failed to watch config file", "file", path, "error", err)
		return func() {}
	}

	config.SetGlobalWatcher(cw)
	cw.OnReload(func(cfg *config.Config) error {
		logger.SetTheme(cfg.GetLogTheme())
		return nil
	})
	cw.Start()
	logger.Debugw("Config watcher started", "file", path)

	return func() {
		if err := cw.Stop(); err != nil {
			logger.Debugw("Config watcher stop", "error", err)
		}
	}
}

// openCatalog opens the run catalog, returning nil when it cannot.
func openCatalog() *catalog.Store {
	path, err := config.GetCatalogPath()
	if err != nil {
		logger.Warnw("Run catalog unavailable", "error", err)
		return nil
	}
	store, err := catalog.Open(path, logger.Logger)
	if err != nil {
		logger.Warnw("Run catalog unavailable", "path", path, "error", err)
		return nil
	}
	return store
}

func saveRecord(store *catalog.Store, rec *catalog.Record) {
	if store == nil {
		return
	}
	if err := store.Save(rec); err != nil {
		logger.Warnw("Failed to catalog run", "id", rec.ID, "error", err)
	}
}
