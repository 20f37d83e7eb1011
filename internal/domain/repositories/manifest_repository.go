package repositories

import (
	"github.com/rios0rios0/wsrelease/internal/domain/entities"
)

// ManifestRepository persists manifest documents and performs the
// preview/backup swaps of the manifest transaction. Every swap is a pair of
// renames, never a copy followed by a delete.
type ManifestRepository interface {
	// Load reads the canonical manifest from disk.
	Load(path string) (*entities.ManifestDocument, error)

	// SavePreview writes the document next to the canonical manifest.
	SavePreview(path string, variant entities.ManifestVariant, doc *entities.ManifestDocument) error

	// SwapIn moves the canonical manifest to the backup and the preview into place.
	SwapIn(path string, variant entities.ManifestVariant) error

	// SwapOut moves the canonical manifest back to the preview and the backup into place.
	SwapOut(path string, variant entities.ManifestVariant) error

	// MoveIndexManifest swaps the index preview in; the backup stays until
	// Restore or DiscardBackup.
	MoveIndexManifest(path string) error

	// Restore moves the backup over the canonical manifest.
	Restore(path string) error

	// DiscardBackup removes the backup of a committed manifest.
	DiscardBackup(path string) error

	// RemovePreviews removes both preview files, ignoring missing ones.
	RemovePreviews(path string) error

	// PromoteIndexPreview replaces the canonical manifest with the index preview.
	PromoteIndexPreview(path string) error

	// Inspect derives the transaction state of a manifest from the files on disk.
	Inspect(path string) (entities.ManifestState, error)

	// Copy copies a whole file, creating the destination directory.
	Copy(src, dst string) error

	// Remove deletes a file, ignoring a missing one.
	Remove(path string) error
}
