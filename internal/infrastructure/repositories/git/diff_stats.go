package git

import (
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/pmezard/go-difflib/difflib"
)

func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// countLineChanges returns the inserted and deleted line counts between two versions of a file.
func countLineChanges(before, after []string) (int, int) {
	insertions, deletions := 0, 0
	matcher := difflib.NewMatcher(before, after)
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'r':
			deletions += op.I2 - op.I1
			insertions += op.J2 - op.J1
		case 'd':
			deletions += op.I2 - op.I1
		case 'i':
			insertions += op.J2 - op.J1
		}
	}
	return insertions, deletions
}

func sortedPaths(status gogit.Status) []string {
	paths := make([]string, 0, len(status))
	for path := range status {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
