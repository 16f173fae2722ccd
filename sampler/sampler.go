package sampler

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/Hazboun6/gwa/chain"
	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
	"github.com/Hazboun6/gwa/version"
)

// Defaults for zero-valued options.
const (
	DefaultIterations = 100_000
	DefaultThin       = 10
	DefaultSaveEvery  = 1000
	DefaultCovUpdate  = 1000

	DefaultSCAMWeight = 30
	DefaultAMWeight   = 15
	DefaultDEWeight   = 50
)

// initDrawAttempts bounds the search for a finite-posterior start.
const initDrawAttempts = 1000

// Options configures a sampling run. Zero values take the defaults.
type Options struct {
	Iterations int
	Thin       int
	SaveEvery  int
	CovUpdate  int

	// Seed fixes the random stream; 0 draws one from the clock. The
	// seed a fresh run resolves is recorded in its manifest.
	Seed int64

	SCAMWeight int
	AMWeight   int
	DEWeight   int
	// PriorDrawWeight is 0 unless the target benefits from prior
	// redraws, as hypermodel runs do for the model index.
	PriorDrawWeight int

	OutDir string
	Resume bool

	// Manifest metadata.
	Pulsar string
	Model  string

	Progress Progress
}

func (o Options) withDefaults() Options {
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.Thin == 0 {
		o.Thin = DefaultThin
	}
	if o.SaveEvery == 0 {
		o.SaveEvery = DefaultSaveEvery
	}
	if o.CovUpdate == 0 {
		o.CovUpdate = DefaultCovUpdate
	}
	if o.SCAMWeight == 0 && o.AMWeight == 0 && o.DEWeight == 0 {
		o.SCAMWeight = DefaultSCAMWeight
		o.AMWeight = DefaultAMWeight
		o.DEWeight = DefaultDEWeight
	}
	if o.Progress == nil {
		o.Progress = NopEmitter{}
	}
	return o
}

// Sampler runs adaptive Metropolis-Hastings over a Target and streams
// the chain to a run directory.
type Sampler struct {
	target Target
	opts   Options
}

// New prepares a sampler. No files are touched until Run.
func New(target Target, opts Options) *Sampler {
	return &Sampler{target: target, opts: opts.withDefaults()}
}

// Run samples until the configured iteration count, blocking. A
// cancelled context checkpoints the chain and returns the context
// error; the run can be resumed later.
func (s *Sampler) Run(ctx context.Context) (*Summary, error) {
	opts := s.opts
	ndim := s.target.Dim()
	names := s.target.ParamNames()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))

	cov := newCovEstimator(ndim)

	var (
		w     *chain.Writer
		x     []float64
		start int
		err   error
	)
	if opts.Resume {
		w, x, start, err = s.resume(cov, ndim, names)
	} else {
		w, err = chain.Create(opts.OutDir, names, &chain.Manifest{
			Version:    version.Version,
			Pulsar:     opts.Pulsar,
			Model:      opts.Model,
			Seed:       seed,
			Iterations: opts.Iterations,
		})
	}
	if err != nil {
		return nil, err
	}
	defer w.Close()

	if x == nil {
		x, err = s.initialPoint(rng)
		if err != nil {
			return nil, err
		}
	}
	if !cov.seeded {
		s.seedCovFromPrior(cov, rng)
	}

	lnpost, lnlike := s.target.LogPosterior(x)
	if math.IsInf(lnpost, -1) {
		// resumed point no longer valid, e.g. a changed noise dictionary
		x, err = s.initialPoint(rng)
		if err != nil {
			return nil, err
		}
		lnpost, lnlike = s.target.LogPosterior(x)
	}

	j := newJumper(s.target, cov, opts.SCAMWeight, opts.AMWeight, opts.DEWeight, opts.PriorDrawWeight)

	logger.Infow("Sampling",
		"pulsar", opts.Pulsar,
		"model", opts.Model,
		"dir", w.Dir,
		"params", ndim,
		"iter", opts.Iterations-start,
		"lnpost", lnpost)
	opts.Progress.Start(opts.Iterations, start)

	var (
		began     = time.Now()
		accepted  = 0
		session   = 0
		samples   = 0
		maxLnPost = lnpost
		limiter   = rate.NewLimiter(rate.Limit(8), 1)
		status    = chain.StatusComplete
	)

loop:
	for iter := start; iter < opts.Iterations; iter++ {
		select {
		case <-ctx.Done():
			status = chain.StatusInterrupted
			break loop
		default:
		}
		session++

		prop := j.propose(x, rng)
		propPost, propLike := s.target.LogPosterior(prop.y)
		logAlpha := propPost - lnpost + prop.lqxy
		if logAlpha >= 0 || math.Log(rng.Float64()) < logAlpha {
			x = prop.y
			lnpost, lnlike = propPost, propLike
			accepted++
			if lnpost > maxLnPost {
				maxLnPost = lnpost
			}
		}

		j.remember(x)
		cov.add(x)
		acc := float64(accepted) / float64(session)

		if iter%opts.Thin == 0 {
			if err := w.Record(x, lnpost, lnlike, acc, 0.0); err != nil {
				return nil, err
			}
			samples++
		}

		if (iter+1)%opts.CovUpdate == 0 {
			if cov.refresh() {
				if c := cov.cov(); c != nil {
					if err := w.WriteCov(c); err != nil {
						logger.Warnw("Covariance snapshot failed", "dir", w.Dir, "error", err)
					}
				}
			}
		}

		if (iter+1)%opts.SaveEvery == 0 {
			if err := w.Checkpoint(iter+1, chain.StatusRunning); err != nil {
				return nil, err
			}
			logger.Debugw("Checkpoint",
				"iter", iter+1,
				"accept", acc,
				"lnpost", lnpost)
		}

		if limiter.Allow() {
			opts.Progress.Update(Status{
				Iteration:  iter + 1,
				Total:      opts.Iterations,
				Acceptance: acc,
				LnPost:     lnpost,
			})
		}
	}

	completed := start + session
	if err := w.Checkpoint(completed, status); err != nil {
		return nil, err
	}

	summary := &Summary{
		Dir:        w.Dir,
		Iterations: completed,
		Samples:    samples,
		Acceptance: float64(accepted) / math.Max(float64(session), 1),
		MaxLnPost:  maxLnPost,
		Duration:   time.Since(began),
		Resumed:    opts.Resume,
	}
	opts.Progress.Finish(*summary)
	logger.Infow("Sampling done",
		"dir", w.Dir,
		"iter", completed,
		"accept", summary.Acceptance,
		"lnpost", maxLnPost,
		"duration", summary.Duration)

	if status == chain.StatusInterrupted {
		return summary, errors.Wrapf(ctx.Err(), "sampling interrupted at iteration %d", completed)
	}
	return summary, nil
}

// resume reopens an existing run directory, restoring position and
// proposal covariance.
func (s *Sampler) resume(cov *covEstimator, ndim int, names []string) (*chain.Writer, []float64, int, error) {
	w, err := chain.Append(s.opts.OutDir, names)
	if err != nil {
		return nil, nil, 0, err
	}
	m := w.Manifest()
	if err := version.CompatibleWith(m.Version); err != nil {
		w.Close()
		return nil, nil, 0, errors.Wrapf(err, "run directory %s", s.opts.OutDir)
	}
	if m.Completed >= s.opts.Iterations {
		w.Close()
		return nil, nil, 0, errors.WithHintf(
			errors.Newf("run already has %d of %d iterations", m.Completed, s.opts.Iterations),
			"raise --iterations beyond %d to extend this chain", m.Completed)
	}
	m.Iterations = s.opts.Iterations

	x, err := chain.LastSample(s.opts.OutDir, ndim)
	if err != nil {
		if !errors.Is(err, errors.ErrChainMissing) {
			w.Close()
			return nil, nil, 0, err
		}
		// directory exists but never produced samples; start fresh
		x = nil
	}

	if c, err := chain.ReadCov(s.opts.OutDir, ndim); err == nil {
		if cov.seedFrom(c) {
			logger.Debugw("Restored proposal covariance", "dir", s.opts.OutDir)
		}
	}

	logger.Infow("Resuming run",
		"dir", s.opts.OutDir,
		"iter", m.Completed,
		"model", m.Model)
	return w, x, m.Completed, nil
}

// initialPoint draws from the priors until the posterior is finite.
func (s *Sampler) initialPoint(rng *rand.Rand) ([]float64, error) {
	for i := 0; i < initDrawAttempts; i++ {
		x := s.target.InitialSample(rng)
		if lnpost, _ := s.target.LogPosterior(x); !math.IsInf(lnpost, -1) && !math.IsNaN(lnpost) {
			return x, nil
		}
	}
	return nil, errors.WithHint(
		errors.Newf("no finite-posterior starting point in %d prior draws", initDrawAttempts),
		"the model may be degenerate for this dataset; check the residual product and noise dictionary")
}

// seedCovFromPrior sizes the initial proposal covariance from the
// spread of prior draws.
func (s *Sampler) seedCovFromPrior(cov *covEstimator, rng *rand.Rand) {
	const draws = 64
	ndim := s.target.Dim()
	mean := make([]float64, ndim)
	m2 := make([]float64, ndim)
	for n := 1; n <= draws; n++ {
		x := s.target.InitialSample(rng)
		for i, v := range x {
			d := v - mean[i]
			mean[i] += d / float64(n)
			m2[i] += d * (v - mean[i])
		}
	}
	diag := make([]float64, ndim)
	for i := range diag {
		diag[i] = m2[i] / float64(draws-1)
	}
	cov.seed(diag)
}
