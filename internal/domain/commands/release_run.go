package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/wsrelease/internal/domain/entities"
	"github.com/rios0rios0/wsrelease/internal/domain/repositories"
)

// releaseRun holds the state of one release from package selection to push.
type releaseRun struct {
	log      *logger.Entry
	settings *entities.Settings
	opts     ReleaseOptions

	sourceControl repositories.SourceControlRepository
	buildSystem   repositories.BuildSystemRepository
	manifests     repositories.ManifestRepository
	operator      repositories.OperatorRepository

	workspace   *entities.Workspace
	cacheDir    string
	isolatedDir string
	branch      string

	root      *entities.Package
	update    entities.Update
	commitSet []*entities.Package // changed dependants folded into the release commit
	treeSet   []*entities.Package // dependants bumped in a follow-up commit
	header    string
	body      string

	bumps            map[string]entities.BumpKind
	versions         map[string]*semver.Version
	workspaceVersion *semver.Version

	ledger  *entities.ManifestLedger
	pairs   map[string]*entities.ManifestPair // by canonical manifest path
	order   []string
	builder repositories.CommitBuilder
}

func (r *releaseRun) execute(ctx context.Context, changed []*entities.Package) error {
	if err := r.selectRelease(ctx, changed); err != nil {
		return err
	}
	r.resolveBumps()

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"preview manifests", r.previewManifests},
		{"materialize isolated copy", r.materialize},
		{"stage release commit", r.stageRootCommit},
		{"verify", r.verify},
		{"publish", r.publish},
		{"commit release", r.commitRoot},
		{"commit dependants", r.commitDependants},
	}
	for _, step := range steps {
		r.log.Debugf("Step: %s", step.name)
		if err := step.run(ctx); err != nil {
			return r.rollback(err)
		}
	}
	if err := r.cleanup(); err != nil {
		return err
	}

	if r.opts.DryRun {
		r.log.Infof("Dry run of %s finished, nothing was committed or pushed", r.root.Name)
		return nil
	}
	return r.finalize(ctx)
}

// --- selection ---

func (r *releaseRun) selectRelease(ctx context.Context, changed []*entities.Package) error {
	root, err := r.operator.SelectPackage(ctx, "Select the package to release", changed)
	if err != nil {
		return err
	}
	if root == nil {
		return entities.ErrUserAbort
	}
	r.root = root

	update, err := r.operator.SelectUpdate(ctx, root)
	if err != nil {
		return err
	}
	if update == nil {
		return entities.ErrUserAbort
	}
	r.update = *update

	dependants := r.workspace.CollectDependants(root)
	if len(dependants) > 0 {
		r.operator.Show(fmt.Sprintf("Packages depending on %s", root.Name), presentation(dependants))
	}

	var changedDependants, rest []*entities.Package
	for _, pkg := range dependants {
		if pkg.IsChanged() {
			changedDependants = append(changedDependants, pkg)
		}
	}
	r.commitSet, err = r.operator.SelectSubset(
		ctx, "Changed dependants to include in the release commit", changedDependants, true,
	)
	if err != nil {
		return err
	}

	if r.update.HasVersionEffect() {
		for _, pkg := range dependants {
			if !containsPackage(r.commitSet, pkg) {
				rest = append(rest, pkg)
			}
		}
		r.treeSet, err = r.operator.SelectSubset(
			ctx, "Dependants to bump in a follow-up commit", rest, true,
		)
		if err != nil {
			return err
		}
	}

	if previewErr := r.previewChanges(ctx); previewErr != nil {
		return previewErr
	}

	if r.header, err = r.operator.PromptText(ctx, "Commit header (optional)"); err != nil {
		return err
	}
	if r.body, err = r.operator.PromptText(ctx, "Commit body (optional)"); err != nil {
		return err
	}
	return nil
}

// previewChanges optionally shows the pending diff of every committed package
// and asks for confirmation.
func (r *releaseRun) previewChanges(ctx context.Context) error {
	show, err := r.operator.Confirm(ctx, "Show the diff of the released changes?")
	if err != nil {
		return err
	}
	if !show {
		return nil
	}

	for _, pkg := range r.committedPackages() {
		text, diffErr := r.unifiedDiff(pkg)
		if diffErr != nil {
			return diffErr
		}
		r.operator.Show(fmt.Sprintf("Diff of %s", pkg.Name), text)
	}

	proceed, err := r.operator.Confirm(ctx, fmt.Sprintf("Release %s %s?", r.root.Name, r.update.Transition(r.root.Version)))
	if err != nil {
		return err
	}
	if !proceed {
		return entities.ErrUserAbort
	}
	return nil
}

func (r *releaseRun) unifiedDiff(pkg *entities.Package) (string, error) {
	var b strings.Builder
	for _, rel := range pkg.Diff.ChangedFiles {
		before, _ := r.sourceControl.GetContents("HEAD", rel)
		after, err := r.manifests.Load(r.absPath(rel))
		if err != nil {
			return "", err
		}
		text, err := entities.UnifiedDiff(rel, before, after.Bytes())
		if err != nil {
			return "", fmt.Errorf("failed to diff %s: %w", rel, err)
		}
		b.WriteString(text)
	}
	for _, rel := range pkg.Diff.DeletedFiles {
		before, _ := r.sourceControl.GetContents("HEAD", rel)
		text, err := entities.UnifiedDiff(rel, before, nil)
		if err != nil {
			return "", fmt.Errorf("failed to diff %s: %w", rel, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// resolveBumps decides every effective bump exactly once. Later manifest
// rewrites only read these maps.
func (r *releaseRun) resolveBumps() {
	rootBump := r.update.Bump()
	r.bumps = map[string]entities.BumpKind{r.root.Name: rootBump}
	for _, pkg := range r.commitSet {
		r.bumps[pkg.Name] = entities.DependantBump(rootBump, pkg.IsChanged(), true)
	}
	for _, pkg := range r.treeSet {
		r.bumps[pkg.Name] = entities.DependantBump(rootBump, pkg.IsChanged(), false)
	}

	r.versions = make(map[string]*semver.Version, len(r.bumps))
	for name, bump := range r.bumps {
		pkg := r.workspace.FindPackage(name)
		r.versions[name] = bump.Apply(pkg.Version)
		r.log.Debugf("Resolved %s bump for %s: v%s -> v%s", bump, name, pkg.Version, r.versions[name])
	}
	if r.workspace.Version != nil {
		r.workspaceVersion = rootBump.Apply(r.workspace.Version)
	}
}

// --- manifest transaction ---

func (r *releaseRun) previewManifests(_ context.Context) error {
	rootPair, err := r.pair(r.root.Name, r.root.ManifestPath, r.root.Version)
	if err != nil {
		return err
	}
	rootPair.BumpVersion(r.bumps[r.root.Name])

	// requirements inherited from [workspace.dependencies], by manifest key
	inherited := make(map[string]string)
	for _, pkg := range r.dependants() {
		pair, pairErr := r.pair(pkg.Name, pkg.ManifestPath, pkg.Version)
		if pairErr != nil {
			return pairErr
		}
		pair.BumpVersion(r.bumps[pkg.Name])
		for _, dep := range pkg.MemberDependencies() {
			next, released := r.versions[dep.Name]
			if !released {
				continue
			}
			if dep.Inherited {
				inherited[dep.ManifestKey()] = dep.Name
				continue
			}
			pair.UpdateDependency(dep.ManifestKey(), r.workspace.FindPackage(dep.Name).Version, next)
		}
	}

	// loaded last: a single-package workspace shares its manifest with the root package
	wsPair, err := r.pair("", r.workspace.ManifestPath, r.workspace.Version)
	if err != nil {
		return err
	}
	for key, name := range inherited {
		wsPair.UpdateDependency(key, r.workspace.FindPackage(name).Version, r.versions[name])
	}
	for _, pkg := range r.releasedPackages() {
		if r.bumps[pkg.Name].HasVersionEffect() {
			wsPair.SetOrInsertOverride(pkg.Name, pkg.Version, entities.Override{Version: r.versions[pkg.Name]})
		}
	}
	if r.workspaceVersion != nil && r.update.HasVersionEffect() {
		wsPair.Head.BumpVersion(r.workspace.Version, r.workspaceVersion)
		wsPair.Index.BumpVersion(r.workspace.Version, r.workspaceVersion)
	}

	for _, path := range r.order {
		pair := r.pairs[path]
		for _, variant := range []entities.ManifestVariant{entities.VariantHead, entities.VariantIndex} {
			if saveErr := r.manifests.SavePreview(path, variant, pair.Document(variant)); saveErr != nil {
				return saveErr
			}
		}
	}
	return nil
}

// materialize brings the isolated copy to the state the release will commit:
// index previews for the release commit, head previews for deferred dependants,
// and the pending changes of every committed package.
func (r *releaseRun) materialize(ctx context.Context) error {
	branch, err := r.sourceControl.HeadBranch()
	if err != nil {
		return err
	}
	r.branch = branch
	if prepareErr := r.sourceControl.PrepareIsolatedCopy(ctx, r.cacheDir, branch); prepareErr != nil {
		return prepareErr
	}
	r.isolatedDir = r.cachePath(r.sourceControl.RelPath(r.workspace.Dir))

	for _, pkg := range r.committedPackages() {
		for _, rel := range pkg.Diff.ChangedFiles {
			if copyErr := r.manifests.Copy(r.absPath(rel), r.cachePath(rel)); copyErr != nil {
				return copyErr
			}
		}
		for _, rel := range pkg.Diff.DeletedFiles {
			if removeErr := r.manifests.Remove(r.cachePath(rel)); removeErr != nil {
				return removeErr
			}
		}
	}

	for _, path := range r.order {
		variant := entities.VariantIndex
		if r.isDeferred(path) {
			variant = entities.VariantHead
		}
		target := r.cachePath(r.sourceControl.RelPath(path))
		if copyErr := r.manifests.Copy(entities.PreviewPath(path, variant), target); copyErr != nil {
			return copyErr
		}
	}
	r.log.Infof("Isolated copy ready in %s", r.isolatedDir)
	return nil
}

func (r *releaseRun) stageRootCommit(_ context.Context) error {
	if r.opts.DryRun {
		for _, pkg := range r.committedPackages() {
			r.log.Infof("Would stage %d changed and %d deleted files of %s",
				len(pkg.Diff.ChangedFiles), len(pkg.Diff.DeletedFiles), pkg.Name)
		}
		for _, path := range r.releaseManifests() {
			r.log.Infof("Would stage %s", r.sourceControl.RelPath(path))
		}
		return nil
	}

	builder, err := r.sourceControl.NewCommitBuilder()
	if err != nil {
		return err
	}
	r.builder = builder

	for _, pkg := range r.committedPackages() {
		for _, rel := range pkg.Diff.ChangedFiles {
			if _, isManifest := r.pairs[r.absPath(rel)]; isManifest {
				continue
			}
			if addErr := builder.AddPath(rel); addErr != nil {
				return addErr
			}
		}
		for _, rel := range pkg.Diff.DeletedFiles {
			if removeErr := builder.RemovePath(rel); removeErr != nil {
				return removeErr
			}
		}
	}

	for _, path := range r.releaseManifests() {
		// staged before the swap: rollback restores a half-done swap as well
		r.ledger.MarkStaged(path)
		if moveErr := r.manifests.MoveIndexManifest(path); moveErr != nil {
			return moveErr
		}
		if addErr := builder.AddPath(r.sourceControl.RelPath(path)); addErr != nil {
			return addErr
		}
	}
	return nil
}

// --- verification & publish ---

func (r *releaseRun) verify(ctx context.Context) error {
	if !r.update.HasVersionEffect() || r.opts.SkipTests {
		r.log.Info("Skipping tests")
		return nil
	}

	r.log.Infof("Running tests of %s in %s", r.root.Name, r.isolatedDir)
	passed, err := r.buildSystem.RunTests(ctx, r.root, r.isolatedDir)
	if err != nil {
		return fmt.Errorf("failed to run tests of %s: %w", r.root.Name, err)
	}
	if !passed {
		return &entities.VerificationError{Package: r.root.Name}
	}
	return nil
}

func (r *releaseRun) publish(ctx context.Context) error {
	if !r.update.HasVersionEffect() || r.opts.NoPublish {
		r.log.Info("Skipping publish")
		return nil
	}
	return newPublisher(r.buildSystem, r.workspace, r.isolatedDir, r.opts.DryRun, r.versions).publishDeep(ctx, r.root)
}

// --- commits ---

func (r *releaseRun) commitRoot(_ context.Context) error {
	if r.opts.DryRun {
		return nil
	}
	message := entities.CommitMessage(r.root, r.update, r.header, r.body, false)
	if _, err := r.builder.Commit(message); err != nil {
		return err
	}
	r.builder = nil
	return r.settleStaged()
}

// commitDependants commits the head preview of every deferred dependant while
// the index preview, which keeps their other pending changes, stays on disk.
func (r *releaseRun) commitDependants(_ context.Context) error {
	if r.opts.DryRun || len(r.treeSet) == 0 {
		return nil
	}

	builder, err := r.sourceControl.NewCommitBuilder()
	if err != nil {
		return err
	}
	r.builder = builder

	for _, pkg := range r.treeSet {
		path := pkg.ManifestPath
		r.ledger.MarkStaged(path)
		if swapErr := r.manifests.SwapIn(path, entities.VariantHead); swapErr != nil {
			return swapErr
		}
		if addErr := builder.AddPath(r.sourceControl.RelPath(path)); addErr != nil {
			return addErr
		}
		if swapErr := r.manifests.SwapOut(path, entities.VariantHead); swapErr != nil {
			return swapErr
		}
		if moveErr := r.manifests.MoveIndexManifest(path); moveErr != nil {
			return moveErr
		}
	}

	message := entities.CommitMessage(r.root, r.update, r.header, r.body, true)
	if _, commitErr := builder.Commit(message); commitErr != nil {
		return commitErr
	}
	r.builder = nil
	return r.settleStaged()
}

// settleStaged drops the backups of everything the last commit recorded.
func (r *releaseRun) settleStaged() error {
	for _, path := range r.ledger.Staged() {
		if err := r.manifests.DiscardBackup(path); err != nil {
			return err
		}
		r.ledger.MarkCommitted(path)
	}
	return nil
}

func (r *releaseRun) cleanup() error {
	if r.opts.DryRun {
		for _, path := range r.order {
			r.log.Infof("Previews kept next to %s", path)
		}
		return nil
	}
	for _, path := range r.order {
		if err := r.manifests.RemovePreviews(path); err != nil {
			return err
		}
	}
	return nil
}

// rollback restores every staged manifest, unstages the pending commit and
// removes the previews. The returned error always wraps cause.
func (r *releaseRun) rollback(cause error) error {
	r.log.Warnf("Rolling back release of %s: %v", r.root.Name, cause)

	errs := []error{cause}
	if r.builder != nil {
		if err := r.builder.Reset(); err != nil {
			errs = append(errs, err)
		}
		r.builder = nil
	}
	for _, path := range r.ledger.Staged() {
		if err := r.manifests.Restore(path); err != nil {
			errs = append(errs, err)
			continue
		}
		r.ledger.MarkClean(path)
		r.log.Debugf("Restored %s", path)
	}
	for _, path := range r.order {
		if err := r.manifests.RemovePreviews(path); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 1 {
		return cause
	}
	return errors.Join(errs...)
}

// --- finalize ---

func (r *releaseRun) finalize(ctx context.Context) error {
	refs := []string{"refs/heads/" + r.branch}
	tagRef := ""
	if r.update.HasVersionEffect() {
		tag := entities.NewReleaseTag(r.workspaceVersion, r.root.Name, r.versions[r.root.Name])
		existing, err := r.sourceControl.Tags()
		if err != nil {
			return err
		}
		if validateErr := tag.Validate(existing); validateErr != nil {
			return &entities.RepositoryError{Op: "tag", Cause: validateErr}
		}
		if setErr := r.sourceControl.SetRef(tag.RefName()); setErr != nil {
			return setErr
		}
		r.log.Infof("Tagged %s", tag.Name())
		tagRef = tag.RefName()
		refs = append(refs, tagRef)
	}

	if err := r.sourceControl.Push(ctx, r.settings.Remote, refs); err != nil {
		if tagRef == "" {
			return err
		}
		// a tag left behind would make the next run's tag invalid
		if deleteErr := r.sourceControl.DeleteRef(tagRef); deleteErr != nil {
			return errors.Join(err, deleteErr)
		}
		r.log.Infof("Removed %s after the failed push", tagRef)
		return err
	}
	r.log.Infof("Released %s %s", r.root.Name, r.update.Transition(r.root.Version))
	return nil
}

// --- helpers ---

func (r *releaseRun) pair(name, path string, version *semver.Version) (*entities.ManifestPair, error) {
	if existing, ok := r.pairs[path]; ok {
		return existing, nil
	}
	pair, err := loadPair(r.sourceControl, r.manifests, name, path, version)
	if err != nil {
		return nil, err
	}
	r.pairs[path] = pair
	r.order = append(r.order, path)
	return pair, nil
}

// committedPackages is the root followed by the commit set.
func (r *releaseRun) committedPackages() []*entities.Package {
	return append([]*entities.Package{r.root}, r.commitSet...)
}

// dependants is the commit set followed by the deferred dependants.
func (r *releaseRun) dependants() []*entities.Package {
	return append(append([]*entities.Package(nil), r.commitSet...), r.treeSet...)
}

func (r *releaseRun) releasedPackages() []*entities.Package {
	return append(r.committedPackages(), r.treeSet...)
}

// releaseManifests are the manifests recorded by the release commit.
func (r *releaseRun) releaseManifests() []string {
	var paths []string
	for _, path := range r.order {
		if !r.isDeferred(path) {
			paths = append(paths, path)
		}
	}
	return paths
}

func (r *releaseRun) isDeferred(path string) bool {
	for _, pkg := range r.treeSet {
		if pkg.ManifestPath == path {
			return true
		}
	}
	return false
}

func (r *releaseRun) absPath(rel string) string {
	return filepath.Join(r.sourceControl.Root(), filepath.FromSlash(rel))
}

func (r *releaseRun) cachePath(rel string) string {
	return filepath.Join(r.cacheDir, filepath.FromSlash(rel))
}

func presentation(packages []*entities.Package) string {
	var b strings.Builder
	for _, pkg := range entities.SortForPresentation(packages) {
		state := "unchanged"
		if pkg.IsChanged() {
			state = "changed  "
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", state, pkg.Summary()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func containsPackage(list []*entities.Package, pkg *entities.Package) bool {
	for _, candidate := range list {
		if candidate.Name == pkg.Name {
			return true
		}
	}
	return false
}
