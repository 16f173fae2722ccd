// Package sym defines canonical glyphs for gwa commands and output markers.
// These symbols are stable across CLI output and documentation.
package sym

// Command glyphs — one per top-level gwa command.
const (
	Psr     = "✶" // pulsars — par/tim/residual datasets on disk
	Noise   = "σ" // noise — white-noise dictionaries
	Run     = "∿" // run — single-model posterior sampling
	Hyper   = "⊗" // hyper — product-space model comparison
	Diag    = "∫" // diag — chain summaries and plots
	Sim     = "≋" // simulate — synthetic datasets
	Catalog = "⊔" // runs — the run catalog
	Config  = "≡" // config — layered configuration
)

// Status markers.
const (
	OK   = "✓"
	Fail = "✗"
)
