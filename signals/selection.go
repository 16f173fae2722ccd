package signals

import (
	"sort"

	"github.com/Hazboun6/gwa/psr"
)

// Selection partitions TOAs into named groups that share noise parameters.
// The canonical split is by backend system; a no-op selection puts every
// TOA in one group.
type Selection struct {
	// Groups maps group name to TOA indices, ascending.
	Groups map[string][]int
	// Names holds group names in sorted order: parameter naming and basis
	// column order follow it and must be deterministic.
	Names []string
}

// ByBackend groups TOAs by their backend system.
func ByBackend(p *psr.Pulsar) Selection {
	groups := make(map[string][]int)
	for i, b := range p.Backends {
		groups[b] = append(groups[b], i)
	}
	return newSelection(groups)
}

// NoSelection places all TOAs in a single unnamed group.
func NoSelection(p *psr.Pulsar) Selection {
	indices := make([]int, p.N())
	for i := range indices {
		indices[i] = i
	}
	return newSelection(map[string][]int{"": indices})
}

func newSelection(groups map[string][]int) Selection {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return Selection{Groups: groups, Names: names}
}
