package entities

import (
	"path/filepath"
	"strings"
)

// ManifestVariant selects which snapshot of a manifest a document models.
type ManifestVariant string

const (
	// VariantHead is the manifest as recorded in the last commit.
	VariantHead ManifestVariant = "head"
	// VariantIndex is the manifest as currently present on disk.
	VariantIndex ManifestVariant = "index"
)

// ManifestStatus is the transaction status of one canonical manifest.
type ManifestStatus int

const (
	// ManifestClean means the canonical file holds its pre-run content and no backup exists.
	ManifestClean ManifestStatus = iota
	// ManifestStaged means the preview was swapped in as canonical and the original waits in the backup.
	ManifestStaged
	// ManifestCommitted means the swapped-in content was committed and the backup discarded.
	ManifestCommitted
)

func (s ManifestStatus) String() string {
	switch s {
	case ManifestStaged:
		return "staged"
	case ManifestCommitted:
		return "committed"
	default:
		return "clean"
	}
}

// ManifestState is the status of one manifest plus its backup location while staged.
type ManifestState struct {
	Status     ManifestStatus
	BackupPath string
}

// PreviewPath returns the sibling preview path of a canonical manifest,
// e.g. Cargo.toml -> Cargo.preview-index.toml.
func PreviewPath(manifestPath string, variant ManifestVariant) string {
	return siblingPath(manifestPath, "preview-"+string(variant))
}

// BackupPath returns the sibling backup path of a canonical manifest,
// e.g. Cargo.toml -> Cargo.backup.toml.
func BackupPath(manifestPath string) string {
	return siblingPath(manifestPath, "backup")
}

// IsTransactionArtifact reports whether a file name is a preview or backup manifest.
func IsTransactionArtifact(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return strings.HasSuffix(stem, ".preview-head") ||
		strings.HasSuffix(stem, ".preview-index") ||
		strings.HasSuffix(stem, ".backup")
}

func siblingPath(manifestPath, marker string) string {
	dir, base := filepath.Split(manifestPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"."+marker+ext)
}

// ManifestLedger is the authoritative record of every manifest touched by a
// run. The files on disk are only a recovery fallback.
type ManifestLedger struct {
	states map[string]ManifestState
	order  []string
}

// NewManifestLedger creates an empty ledger.
func NewManifestLedger() *ManifestLedger {
	return &ManifestLedger{states: make(map[string]ManifestState)}
}

// State returns the state of a manifest; untouched manifests are clean.
func (l *ManifestLedger) State(path string) ManifestState {
	return l.states[path]
}

// MarkStaged records that the manifest preview was swapped in.
func (l *ManifestLedger) MarkStaged(path string) {
	l.set(path, ManifestState{Status: ManifestStaged, BackupPath: BackupPath(path)})
}

// MarkCommitted records that the staged manifest has been committed.
func (l *ManifestLedger) MarkCommitted(path string) {
	l.set(path, ManifestState{Status: ManifestCommitted})
}

// MarkClean records that the manifest was restored.
func (l *ManifestLedger) MarkClean(path string) {
	l.set(path, ManifestState{Status: ManifestClean})
}

// Staged returns the staged manifests in the order they were staged.
func (l *ManifestLedger) Staged() []string {
	return l.withStatus(ManifestStaged)
}

// Touched returns every manifest the ledger has seen, in first-touch order.
func (l *ManifestLedger) Touched() []string {
	return append([]string(nil), l.order...)
}

func (l *ManifestLedger) withStatus(status ManifestStatus) []string {
	var paths []string
	for _, path := range l.order {
		if l.states[path].Status == status {
			paths = append(paths, path)
		}
	}
	return paths
}

func (l *ManifestLedger) set(path string, state ManifestState) {
	if _, seen := l.states[path]; !seen {
		l.order = append(l.order, path)
	}
	l.states[path] = state
}
