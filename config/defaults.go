package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Data defaults
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.noise_dir", "")
	v.SetDefault("data.ephemeris", "DE436")
	v.SetDefault("data.clock", "TT(BIPM2017)")

	// Sampler defaults
	v.SetDefault("sampler.iterations", 100_000)
	v.SetDefault("sampler.thin", 10)
	v.SetDefault("sampler.save_every", 1000)
	v.SetDefault("sampler.cov_update", 1000)
	v.SetDefault("sampler.seed", 0) // time-seeded
	v.SetDefault("sampler.scam_weight", 30)
	v.SetDefault("sampler.am_weight", 15)
	v.SetDefault("sampler.de_weight", 50)

	// Output defaults
	v.SetDefault("output.dir", "chains")

	// Diag defaults
	v.SetDefault("diag.burn_fraction", 0.25)
	v.SetDefault("diag.bins", 40)

	// Catalog defaults
	v.SetDefault("catalog.path", DefaultCatalogPath())

	// Log defaults
	v.SetDefault("log.theme", "gruvbox")
}

// BindSensitiveEnvVars explicitly binds machine-specific configuration to
// environment variables so cluster job scripts can override per-node paths
// without editing config files.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("data.dir", "GWA_DATA_DIR")
	v.BindEnv("data.noise_dir", "GWA_NOISE_DIR")
	v.BindEnv("output.dir", "GWA_OUTPUT_DIR")
	v.BindEnv("catalog.path", "GWA_CATALOG_PATH")
}

// DefaultCatalogPath returns the default run catalog location in ~/.gwa
func DefaultCatalogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "runs.db"
	}
	return filepath.Join(home, ".gwa", "runs.db")
}

// GetNoiseDir returns the noise JSON directory, falling back to the data dir
func (c *Config) GetNoiseDir() string {
	if c.Data.NoiseDir == "" {
		return c.Data.Dir
	}
	return c.Data.NoiseDir
}

// GetLogTheme returns the log theme (default: gruvbox)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return "gruvbox"
	}
	return c.Log.Theme
}

// GetOutputDir returns the run output parent directory
func (c *Config) GetOutputDir() string {
	if c.Output.Dir == "" {
		return "chains"
	}
	return c.Output.Dir
}

// GetSamplerConfig returns the sampler configuration with defaults applied
// for zero values, so partially specified [sampler] tables behave sensibly.
func (c *Config) GetSamplerConfig() SamplerConfig {
	cfg := c.Sampler

	if cfg.Iterations == 0 {
		cfg.Iterations = 100_000
	}
	if cfg.Thin == 0 {
		cfg.Thin = 10
	}
	if cfg.SaveEvery == 0 {
		cfg.SaveEvery = 1000
	}
	if cfg.CovUpdate == 0 {
		cfg.CovUpdate = 1000
	}
	if cfg.SCAMWeight == 0 && cfg.AMWeight == 0 && cfg.DEWeight == 0 {
		cfg.SCAMWeight = 30
		cfg.AMWeight = 15
		cfg.DEWeight = 50
	}

	return cfg
}

// GetDiagConfig returns the diagnostics configuration with defaults applied
func (c *Config) GetDiagConfig() DiagConfig {
	cfg := c.Diag
	if cfg.BurnFraction == 0 {
		cfg.BurnFraction = 0.25
	}
	if cfg.Bins == 0 {
		cfg.Bins = 40
	}
	return cfg
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Data: %s, Output: %s, Sampler: {Iterations: %d}}",
		c.Data.Dir, c.Output.Dir, c.Sampler.Iterations)
}
