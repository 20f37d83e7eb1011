//go:build unit

package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
	"github.com/rios0rios0/wsrelease/internal/infrastructure/repositories/git"
)

const libBefore = "fn one() {}\nfn two() {}\nfn three() {}\n"

// newRepository initializes a repository on branch main with one commit
// holding packages a and b.
func newRepository(t *testing.T) (string, *gogit.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)

	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Release Bot"
	cfg.User.Email = "release@example.com"
	require.NoError(t, repo.SetConfig(cfg))

	writeFile(t, dir, "Cargo.toml", "[workspace]\nmembers = [\"a\", \"b\"]\n")
	writeFile(t, dir, "a/Cargo.toml", "[package]\nname = \"a\"\nversion = \"1.0.0\"\n")
	writeFile(t, dir, "a/src/lib.rs", libBefore)
	writeFile(t, dir, "b/Cargo.toml", "[package]\nname = \"b\"\nversion = \"0.1.0\"\n")

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add(".")
	require.NoError(t, err)
	_, err = worktree.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Release Bot", Email: "release@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, repo
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func open(t *testing.T, dir string) repositories.SourceControlRepository {
	t.Helper()
	repo, err := git.NewSourceControlRepository(dir)
	require.NoError(t, err)
	return repo
}

func pkg(dir, name string) *entities.Package {
	return &entities.Package{
		Name:         name,
		Version:      semver.MustParse("1.0.0"),
		Dir:          filepath.Join(dir, name),
		ManifestPath: filepath.Join(dir, name, "Cargo.toml"),
	}
}

func TestSourceControlRepositoryOpen(t *testing.T) {
	t.Parallel()

	t.Run("should find the repository root from a subdirectory", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := newRepository(t)

		// when
		repo := open(t, filepath.Join(dir, "a", "src"))

		// then
		assert.Equal(t, dir, repo.Root())
		assert.Equal(t, "a/Cargo.toml", repo.RelPath(filepath.Join(dir, "a", "Cargo.toml")))
		assert.Equal(t, ".", repo.RelPath(dir))
	})

	t.Run("should fail outside a repository", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()

		// when
		_, err := git.NewSourceControlRepository(dir)

		// then
		var repoErr *entities.RepositoryError
		require.ErrorAs(t, err, &repoErr)
		assert.Equal(t, "open", repoErr.Op)
	})
}

func TestSourceControlRepositoryDiff(t *testing.T) {
	t.Parallel()

	t.Run("should count modified and untracked files of the package", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := newRepository(t)
		writeFile(t, dir, "a/src/lib.rs", "fn one() {}\nfn deux() {}\nfn three() {}\nfn four() {}\n")
		writeFile(t, dir, "a/src/new.rs", "fn a() {}\nfn b() {}\n")
		writeFile(t, dir, "a/Cargo.preview-index.toml", "[package]\n")
		repo := open(t, dir)

		// when
		diff, err := repo.Diff(context.Background(), pkg(dir, "a"))

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, diff.FilesChanged)
		assert.Equal(t, 4, diff.Insertions)
		assert.Equal(t, 1, diff.Deletions)
		assert.Equal(t, []string{"a/src/lib.rs", "a/src/new.rs"}, diff.ChangedFiles)
		assert.Empty(t, diff.DeletedFiles)
	})

	t.Run("should report deleted files separately", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := newRepository(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "b", "Cargo.toml")))
		repo := open(t, dir)

		// when
		diff, err := repo.Diff(context.Background(), pkg(dir, "b"))

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, diff.FilesChanged)
		assert.Equal(t, 3, diff.Deletions)
		assert.Equal(t, []string{"b/Cargo.toml"}, diff.DeletedFiles)
	})

	t.Run("should report an unchanged package as empty and cache the result", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := newRepository(t)
		writeFile(t, dir, "a/src/lib.rs", "changed\n")
		repo := open(t, dir)

		// when
		first, err := repo.Diff(context.Background(), pkg(dir, "b"))
		require.NoError(t, err)
		second, err := repo.Diff(context.Background(), pkg(dir, "b"))

		// then
		require.NoError(t, err)
		assert.True(t, first.IsEmpty())
		assert.Same(t, first, second)
	})
}

func TestSourceControlRepositoryRefs(t *testing.T) {
	t.Parallel()

	t.Run("should read contents at HEAD", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := newRepository(t)
		writeFile(t, dir, "a/src/lib.rs", "changed\n")
		repo := open(t, dir)

		// when
		content, err := repo.GetContents("HEAD", "a/src/lib.rs")

		// then
		require.NoError(t, err)
		assert.Equal(t, libBefore, string(content))
	})

	t.Run("should fail for a file absent at HEAD", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := newRepository(t)
		repo := open(t, dir)

		// when
		_, err := repo.GetContents("HEAD", "c/Cargo.toml")

		// then
		require.Error(t, err)
	})

	t.Run("should report the checked out branch", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := newRepository(t)
		repo := open(t, dir)

		// when
		branch, err := repo.HeadBranch()

		// then
		require.NoError(t, err)
		assert.Equal(t, "main", branch)
	})

	t.Run("should point a tag at HEAD and list it", func(t *testing.T) {
		t.Parallel()

		// given
		dir, raw := newRepository(t)
		repo := open(t, dir)

		// when
		err := repo.SetRef("refs/tags/a-v1.0.0")

		// then
		require.NoError(t, err)
		tags, tagsErr := repo.Tags()
		require.NoError(t, tagsErr)
		assert.Equal(t, []string{"a-v1.0.0"}, tags)
		head, headErr := raw.Head()
		require.NoError(t, headErr)
		tag, refErr := raw.Reference(plumbing.ReferenceName("refs/tags/a-v1.0.0"), false)
		require.NoError(t, refErr)
		assert.Equal(t, head.Hash(), tag.Hash())
	})

	t.Run("should delete a tag", func(t *testing.T) {
		t.Parallel()

		// given
		dir, raw := newRepository(t)
		repo := open(t, dir)
		require.NoError(t, repo.SetRef("refs/tags/a-v1.0.0"))

		// when
		err := repo.DeleteRef("refs/tags/a-v1.0.0")

		// then
		require.NoError(t, err)
		tags, tagsErr := repo.Tags()
		require.NoError(t, tagsErr)
		assert.Empty(t, tags)
		_, refErr := raw.Reference(plumbing.ReferenceName("refs/tags/a-v1.0.0"), false)
		require.ErrorIs(t, refErr, plumbing.ErrReferenceNotFound)
	})

	t.Run("should fail to push to a missing remote", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := newRepository(t)
		repo := open(t, dir)

		// when
		err := repo.Push(context.Background(), "origin", []string{"refs/heads/main"})

		// then
		var repoErr *entities.RepositoryError
		require.ErrorAs(t, err, &repoErr)
		assert.Equal(t, "push", repoErr.Op)
	})
}

func TestCommitBuilder(t *testing.T) {
	t.Parallel()

	t.Run("should commit the staged paths with the configured author", func(t *testing.T) {
		t.Parallel()

		// given
		dir, raw := newRepository(t)
		writeFile(t, dir, "a/src/lib.rs", "changed\n")
		repo := open(t, dir)
		builder, err := repo.NewCommitBuilder()
		require.NoError(t, err)
		require.NoError(t, builder.AddPath("a/src/lib.rs"))

		// when
		hash, err := builder.Commit("fix(a): patch release of a v1.0.0 -> v1.0.1")

		// then
		require.NoError(t, err)
		commit, commitErr := raw.CommitObject(plumbing.NewHash(hash))
		require.NoError(t, commitErr)
		assert.Equal(t, "fix(a): patch release of a v1.0.0 -> v1.0.1", commit.Message)
		assert.Equal(t, "Release Bot", commit.Author.Name)
		content, contentErr := repo.GetContents("HEAD", "a/src/lib.rs")
		require.NoError(t, contentErr)
		assert.Equal(t, "changed\n", string(content))
		assert.Equal(t, []string{"a/src/lib.rs"}, builder.Staged())
	})

	t.Run("should refuse to commit twice or with nothing staged", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := newRepository(t)
		writeFile(t, dir, "a/src/lib.rs", "changed\n")
		repo := open(t, dir)
		empty, err := repo.NewCommitBuilder()
		require.NoError(t, err)
		used, err := repo.NewCommitBuilder()
		require.NoError(t, err)
		require.NoError(t, used.AddPath("a/src/lib.rs"))
		_, err = used.Commit("first")
		require.NoError(t, err)

		// when
		_, emptyErr := empty.Commit("nothing")
		_, usedErr := used.Commit("second")

		// then
		require.Error(t, emptyErr)
		require.Error(t, usedErr)
	})

	t.Run("should unstage paths on reset", func(t *testing.T) {
		t.Parallel()

		// given
		dir, raw := newRepository(t)
		writeFile(t, dir, "a/src/new.rs", "fn new() {}\n")
		writeFile(t, dir, "a/src/lib.rs", "changed\n")
		repo := open(t, dir)
		builder, err := repo.NewCommitBuilder()
		require.NoError(t, err)
		require.NoError(t, builder.AddPath("a/src/new.rs"))
		require.NoError(t, builder.AddPath("a/src/lib.rs"))

		// when
		err = builder.Reset()

		// then
		require.NoError(t, err)
		worktree, wtErr := raw.Worktree()
		require.NoError(t, wtErr)
		status, statusErr := worktree.Status()
		require.NoError(t, statusErr)
		assert.Equal(t, gogit.Untracked, status.File("a/src/new.rs").Staging)
		assert.Equal(t, gogit.Unmodified, status.File("a/src/lib.rs").Staging)
		assert.Equal(t, gogit.Modified, status.File("a/src/lib.rs").Worktree)
		assert.Empty(t, builder.Staged())
	})
}

func TestSourceControlRepositoryPrepareIsolatedCopy(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("local clones need the git binary")
	}

	t.Run("should clone the branch and refresh it on the next run", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := newRepository(t)
		writeFile(t, dir, "a/src/lib.rs", "uncommitted\n")
		repo := open(t, dir)
		cache := filepath.Join(t.TempDir(), "cache")

		// when
		cloneErr := repo.PrepareIsolatedCopy(context.Background(), cache, "main")
		writeFile(t, cache, "a/src/lib.rs", "left over\n")
		writeFile(t, cache, "a/src/stray.rs", "stray\n")
		refreshErr := repo.PrepareIsolatedCopy(context.Background(), cache, "main")

		// then
		require.NoError(t, cloneErr)
		require.NoError(t, refreshErr)
		content, readErr := os.ReadFile(filepath.Join(cache, "a", "src", "lib.rs"))
		require.NoError(t, readErr)
		assert.Equal(t, libBefore, string(content))
		assert.NoFileExists(t, filepath.Join(cache, "a", "src", "stray.rs"))
	})
}
