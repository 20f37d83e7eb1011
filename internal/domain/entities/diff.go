package entities

import (
	"github.com/pmezard/go-difflib/difflib"
)

const unifiedDiffContext = 3

// Diff is the change set of one package since its last recorded baseline.
type Diff struct {
	FilesChanged int
	Insertions   int
	Deletions    int
	ChangedFiles []string // paths relative to the repository root, present on disk
	DeletedFiles []string // paths relative to the repository root, absent on disk
}

// IsEmpty reports whether no file changed.
func (d *Diff) IsEmpty() bool {
	return d == nil || d.FilesChanged == 0
}

// UnifiedDiff renders a unified diff between two versions of a file, empty when equal.
func UnifiedDiff(name string, before, after []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  unifiedDiffContext,
	})
}
