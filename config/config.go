package config

// Config represents the core gwa configuration
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Sampler SamplerConfig `mapstructure:"sampler"`
	Output  OutputConfig  `mapstructure:"output"`
	Diag    DiagConfig    `mapstructure:"diag"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Log     LogConfig     `mapstructure:"log"`
}

// DataConfig locates the timing data products
type DataConfig struct {
	Dir       string   `mapstructure:"dir"`       // Directory holding .par/.tim/.resid files
	NoiseDir  string   `mapstructure:"noise_dir"` // Directory holding noise JSON files (empty = data.dir)
	Pulsars   []string `mapstructure:"pulsars"`   // Allow-list of pulsar names; empty = all discovered
	Ephemeris string   `mapstructure:"ephemeris"` // Solar system ephemeris label recorded in run manifests (e.g., "DE436")
	Clock     string   `mapstructure:"clock"`     // Clock standard label recorded in run manifests (e.g., "TT(BIPM2017)")
}

// SamplerConfig controls the MCMC sampler
type SamplerConfig struct {
	Iterations int   `mapstructure:"iterations"`  // Total iterations per run
	Thin       int   `mapstructure:"thin"`        // Keep every thin-th sample (default: 10)
	SaveEvery  int   `mapstructure:"save_every"`  // Buffered samples between chain flushes (default: 1000)
	CovUpdate  int   `mapstructure:"cov_update"`  // Iterations between covariance recomputations (default: 1000)
	Seed       int64 `mapstructure:"seed"`        // RNG seed: 0 = time-seeded
	SCAMWeight int   `mapstructure:"scam_weight"` // Relative weight of single-component adaptive jumps (default: 30)
	AMWeight   int   `mapstructure:"am_weight"`   // Relative weight of full adaptive-metropolis jumps (default: 15)
	DEWeight   int   `mapstructure:"de_weight"`   // Relative weight of differential-evolution jumps (default: 50)
}

// OutputConfig controls where run directories are written
type OutputConfig struct {
	Dir string `mapstructure:"dir"` // Parent directory for run output (default: "chains")
}

// DiagConfig controls chain post-processing defaults
type DiagConfig struct {
	BurnFraction float64 `mapstructure:"burn_fraction"` // Leading fraction of samples discarded (default: 0.25)
	Bins         int     `mapstructure:"bins"`          // Histogram bin count (default: 40)
}

// CatalogConfig configures the SQLite run catalog
type CatalogConfig struct {
	Path string `mapstructure:"path"` // Catalog database path (default: ~/.gwa/runs.db)
}

// LogConfig configures console output
type LogConfig struct {
	Theme string `mapstructure:"theme"` // Color theme: gruvbox, everforest
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
