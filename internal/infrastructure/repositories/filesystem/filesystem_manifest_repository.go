package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

const (
	fileMode = 0o644
	dirMode  = 0o755
)

// ManifestRepository keeps manifests and their preview/backup siblings on the local disk.
type ManifestRepository struct{}

var _ repositories.ManifestRepository = (*ManifestRepository)(nil)

// NewManifestRepository creates a disk-backed manifest repository.
func NewManifestRepository() *ManifestRepository {
	return &ManifestRepository{}
}

func (it *ManifestRepository) Load(path string) (*entities.ManifestDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &entities.FilesystemError{Op: "read", Source: path, Cause: err}
	}
	return entities.ParseManifestDocument(data), nil
}

func (it *ManifestRepository) SavePreview(
	path string, variant entities.ManifestVariant, doc *entities.ManifestDocument,
) error {
	preview := entities.PreviewPath(path, variant)
	if err := os.WriteFile(preview, doc.Bytes(), fileMode); err != nil {
		return &entities.FilesystemError{Op: "write", Source: preview, Cause: err}
	}
	logger.Debugf("Saved %s preview %s", variant, preview)
	return nil
}

// SwapIn moves the canonical manifest to its backup and the preview in its
// place. When the second rename fails the backup is moved back, so the
// manifest is either swapped or untouched.
func (it *ManifestRepository) SwapIn(path string, variant entities.ManifestVariant) error {
	backup := entities.BackupPath(path)
	if err := rename(path, backup); err != nil {
		return err
	}
	if err := rename(entities.PreviewPath(path, variant), path); err != nil {
		return undoRename(err, backup, path)
	}
	return nil
}

// SwapOut reverses SwapIn, keeping the preview for later use.
func (it *ManifestRepository) SwapOut(path string, variant entities.ManifestVariant) error {
	preview := entities.PreviewPath(path, variant)
	if err := rename(path, preview); err != nil {
		return err
	}
	if err := rename(entities.BackupPath(path), path); err != nil {
		return undoRename(err, preview, path)
	}
	return nil
}

func (it *ManifestRepository) MoveIndexManifest(path string) error {
	return it.SwapIn(path, entities.VariantIndex)
}

// Restore moves the backup over the canonical manifest. Without a backup the
// swap never happened and a present canonical manifest is left as it is.
func (it *ManifestRepository) Restore(path string) error {
	backup := entities.BackupPath(path)
	backupExists, err := exists(backup)
	if err != nil {
		return err
	}
	if !backupExists {
		if canonicalExists, statErr := exists(path); statErr != nil || canonicalExists {
			return statErr
		}
	}
	return rename(backup, path)
}

func (it *ManifestRepository) DiscardBackup(path string) error {
	return it.Remove(entities.BackupPath(path))
}

func (it *ManifestRepository) RemovePreviews(path string) error {
	if err := it.Remove(entities.PreviewPath(path, entities.VariantHead)); err != nil {
		return err
	}
	return it.Remove(entities.PreviewPath(path, entities.VariantIndex))
}

func (it *ManifestRepository) PromoteIndexPreview(path string) error {
	return rename(entities.PreviewPath(path, entities.VariantIndex), path)
}

// Inspect classifies the files on disk. A backup means the transaction is
// staged; a canonical file without a backup is clean. Committed manifests are
// indistinguishable from clean ones on disk and only the ledger knows them.
func (it *ManifestRepository) Inspect(path string) (entities.ManifestState, error) {
	backup := entities.BackupPath(path)
	backupExists, err := exists(backup)
	if err != nil {
		return entities.ManifestState{}, err
	}
	canonicalExists, err := exists(path)
	if err != nil {
		return entities.ManifestState{}, err
	}

	switch {
	case backupExists:
		return entities.ManifestState{Status: entities.ManifestStaged, BackupPath: backup}, nil
	case canonicalExists:
		return entities.ManifestState{Status: entities.ManifestClean}, nil
	default:
		return entities.ManifestState{}, &entities.FilesystemError{
			Op: "inspect", Source: path, Destination: backup,
			Cause: errors.New("neither the manifest nor its backup exists"),
		}
	}
}

func (it *ManifestRepository) Copy(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), dirMode); err != nil {
		return &entities.FilesystemError{Op: "create directory for", Source: dst, Cause: err}
	}

	in, err := os.Open(src)
	if err != nil {
		return &entities.FilesystemError{Op: "copy", Source: src, Destination: dst, Cause: err}
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return &entities.FilesystemError{Op: "copy", Source: src, Destination: dst, Cause: err}
	}
	if _, copyErr := io.Copy(out, in); copyErr != nil {
		_ = out.Close()
		return &entities.FilesystemError{Op: "copy", Source: src, Destination: dst, Cause: copyErr}
	}
	if closeErr := out.Close(); closeErr != nil {
		return &entities.FilesystemError{Op: "copy", Source: src, Destination: dst, Cause: closeErr}
	}
	logger.Debugf("Copied %s to %s", src, dst)
	return nil
}

func (it *ManifestRepository) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &entities.FilesystemError{Op: "remove", Source: path, Cause: err}
	}
	return nil
}

func rename(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return &entities.FilesystemError{Op: "rename", Source: src, Destination: dst, Cause: err}
	}
	logger.Debugf("Renamed %s to %s", src, dst)
	return nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// undoRename moves src back to dst after a failed second half of a swap.
func undoRename(cause error, src, dst string) error {
	if err := rename(src, dst); err != nil {
		return errors.Join(cause, err)
	}
	logger.Debugf("Moved %s back to %s", src, dst)
	return cause
}
