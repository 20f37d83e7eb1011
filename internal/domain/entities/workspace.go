package entities

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// Workspace is a set of packages released together. It is immutable once
// ClassifyChanges has run.
type Workspace struct {
	Name         string
	Version      *semver.Version // nil when the root manifest declares none
	Dir          string
	ManifestPath string
	Packages     []*Package // sorted by name
	Graph        *DependencyGraph
}

// NewWorkspace indexes the members, marks member dependencies and builds the graphs.
func NewWorkspace(name string, version *semver.Version, dir, manifestPath string, packages []*Package) *Workspace {
	sorted := append([]*Package(nil), packages...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	members := make(map[string]bool, len(sorted))
	for _, pkg := range sorted {
		members[pkg.Name] = true
	}
	for _, pkg := range sorted {
		for i := range pkg.Dependencies {
			pkg.Dependencies[i].Member = members[pkg.Dependencies[i].Name] && pkg.Dependencies[i].Name != pkg.Name
		}
	}

	return &Workspace{
		Name:         name,
		Version:      version,
		Dir:          dir,
		ManifestPath: manifestPath,
		Packages:     sorted,
		Graph:        NewDependencyGraph(sorted),
	}
}

// ClassifyChanges assigns each package its diff and memoizes the changed flag
// of every member dependency. Packages without an entry get an empty diff.
func (w *Workspace) ClassifyChanges(diffs map[string]*Diff) {
	for _, pkg := range w.Packages {
		pkg.Diff = diffs[pkg.Name]
		if pkg.Diff == nil {
			pkg.Diff = &Diff{}
		}
	}
	for _, pkg := range w.Packages {
		for i := range pkg.Dependencies {
			dep := &pkg.Dependencies[i]
			if !dep.Member {
				continue
			}
			dep.Changed = !diffs[dep.Name].IsEmpty()
		}
	}
}

// FindPackage returns the member with the given name, or nil.
func (w *Workspace) FindPackage(name string) *Package {
	idx := sort.Search(len(w.Packages), func(i int) bool { return w.Packages[i].Name >= name })
	if idx < len(w.Packages) && w.Packages[idx].Name == name {
		return w.Packages[idx]
	}
	return nil
}

// ChangedPackages returns every member with pending changes.
func (w *Workspace) ChangedPackages() []*Package {
	var changed []*Package
	for _, pkg := range w.Packages {
		if pkg.IsChanged() {
			changed = append(changed, pkg)
		}
	}
	return changed
}

// CollectDependants returns the deduplicated transitive dependants of pkg.
func (w *Workspace) CollectDependants(pkg *Package) []*Package {
	names := w.Graph.CollectDependants(pkg.Name)
	result := make([]*Package, 0, len(names))
	for _, name := range names {
		if dependant := w.FindPackage(name); dependant != nil {
			result = append(result, dependant)
		}
	}
	return result
}

// SortForPresentation orders packages unchanged first, then changed, each
// partition alphabetically. The input slice is left untouched.
func SortForPresentation(packages []*Package) []*Package {
	sorted := append([]*Package(nil), packages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsChanged() != sorted[j].IsChanged() {
			return !sorted[i].IsChanged()
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}
