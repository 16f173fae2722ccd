package psr

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/Hazboun6/gwa/errors"
	"github.com/Hazboun6/gwa/logger"
)

// LoadNoiseDicts merges every noise JSON file under dir into a single
// parameter dictionary. Files are applied in sorted name order, so later
// files win on key collisions. Keys follow the flat convention
// "<pulsar>_<backend>_<param>" (e.g. "B1855+09_430_PUPPI_efac").
func LoadNoiseDicts(dir string) (map[string]float64, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, errors.Wrapf(err, "globbing %s", dir)
	}
	sort.Strings(files)

	merged := make(map[string]float64)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "reading noise file %s", file)
		}

		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrapf(err, "parsing noise file %s", file)
		}

		for key, value := range raw {
			num, ok := value.(float64)
			if !ok {
				// Some published dictionaries carry metadata entries
				logger.Debugw("Skipping non-numeric noise entry",
					"file", filepath.Base(file),
					"key", key)
				continue
			}
			merged[key] = num
		}
	}

	return merged, nil
}

// NoiseForPulsar filters a merged dictionary down to one pulsar's entries.
func NoiseForPulsar(merged map[string]float64, pulsar string) map[string]float64 {
	out := make(map[string]float64)
	prefix := pulsar + "_"
	for key, value := range merged {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			out[key] = value
		}
	}
	return out
}
