package catalog

import (
	"github.com/go-git/go-git/v5"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Hazboun6/gwa/errors"
)

// MemorySnapshot returns total and available host memory in bytes.
// Recorded at run start so a chain can later be matched to the machine
// class it was sampled on.
func MemorySnapshot() (total uint64, available uint64, err error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to get memory stats")
	}
	return v.Total, v.Available, nil
}

// DataCommit returns the HEAD commit hash of the data directory when it
// is a git checkout, and "" otherwise. Data releases distributed as git
// repositories get exact provenance; plain directories record nothing.
func DataCommit(dir string) string {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
