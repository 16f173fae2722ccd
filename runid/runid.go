// Package runid mints identifiers for sampling runs.
//
// A run ID names the directory a chain is written into. It carries enough
// of the run's identity to be recognizable in a file listing (pulsar and
// model recipe) plus a short random suffix so repeated runs of the same
// setup never collide:
//
//	J1713+0747_wn-rn-dm_4xKwm2Qp
package runid

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// SuffixLen is the length of the random suffix in characters.
const SuffixLen = 8

// New returns a fresh run identifier for the given pulsar and model label.
// Empty components are dropped rather than leaving doubled separators.
func New(pulsar, model string) string {
	parts := make([]string, 0, 3)
	if p := Sanitize(pulsar); p != "" {
		parts = append(parts, p)
	}
	if m := Sanitize(model); m != "" {
		parts = append(parts, m)
	}
	parts = append(parts, Suffix())
	return strings.Join(parts, "_")
}

// Suffix returns a short base58 string drawn from UUID entropy.
func Suffix() string {
	u := uuid.New()
	s := base58.Encode(u[:])
	if len(s) > SuffixLen {
		s = s[:SuffixLen]
	}
	return s
}

// Sanitize strips characters that are hostile in directory names while
// keeping the runes pulsar names actually use: J1713+0747 stays intact.
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '/' || r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
