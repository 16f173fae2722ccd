package version

import (
	"github.com/Masterminds/semver/v3"

	"github.com/Hazboun6/gwa/errors"
)

// CompatibleWith reports whether a run directory written by binary version
// `written` can be resumed by this binary. Chain layout and manifest fields
// are stable within a major version, so resume is allowed when the major
// versions match and the writer is not newer than this binary.
//
// A "dev" writer version is always accepted: local builds carry no tag and
// are assumed current.
func CompatibleWith(written string) error {
	if written == "" || written == "dev" {
		return nil
	}

	w, err := semver.NewVersion(written)
	if err != nil {
		return errors.Wrapf(err, "parsing run version %q", written)
	}

	current, err := semver.NewVersion(Version)
	if err != nil {
		// Untagged local build, accept anything
		return nil
	}

	if w.Major() != current.Major() {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrIncompatibleRun,
				"run written by %s, this binary is %s", written, Version),
			"re-run from scratch or use a v%d binary", w.Major())
	}
	if w.GreaterThan(current) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrIncompatibleRun,
				"run written by newer %s, this binary is %s", written, Version),
			"upgrade to %s or later to resume this run", written)
	}
	return nil
}
