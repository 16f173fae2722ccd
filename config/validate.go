package config

import "github.com/Hazboun6/gwa/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Sampler iterations: 0 = use default, negative = invalid
	if c.Sampler.Iterations < 0 {
		return errors.Newf("sampler.iterations must be >= 0, got %d", c.Sampler.Iterations)
	}

	// Thin: 0 = use default, 1 = keep everything, negative = invalid
	if c.Sampler.Thin < 0 {
		return errors.Newf("sampler.thin must be >= 0, got %d", c.Sampler.Thin)
	}

	if c.Sampler.SaveEvery < 0 {
		return errors.Newf("sampler.save_every must be >= 0, got %d", c.Sampler.SaveEvery)
	}

	if c.Sampler.CovUpdate < 0 {
		return errors.Newf("sampler.cov_update must be >= 0, got %d", c.Sampler.CovUpdate)
	}

	// Proposal weights: all-zero falls back to defaults, negative = invalid
	if c.Sampler.SCAMWeight < 0 {
		return errors.Newf("sampler.scam_weight must be >= 0, got %d", c.Sampler.SCAMWeight)
	}
	if c.Sampler.AMWeight < 0 {
		return errors.Newf("sampler.am_weight must be >= 0, got %d", c.Sampler.AMWeight)
	}
	if c.Sampler.DEWeight < 0 {
		return errors.Newf("sampler.de_weight must be >= 0, got %d", c.Sampler.DEWeight)
	}

	// Burn fraction must leave samples behind
	if c.Diag.BurnFraction < 0 || c.Diag.BurnFraction >= 1 {
		return errors.Newf("diag.burn_fraction must be in [0, 1), got %g", c.Diag.BurnFraction)
	}

	if c.Diag.Bins < 0 {
		return errors.Newf("diag.bins must be >= 0, got %d", c.Diag.Bins)
	}

	return nil
}
