package entities

import (
	"sort"
)

// DependencyGraph holds two mirrored directed graphs over workspace members:
// an edge A->B in DependsOn implies the edge B->A in Dependants.
type DependencyGraph struct {
	dependsOn  map[string][]string
	dependants map[string][]string
}

// NewDependencyGraph builds both graphs from the declared requirements of the
// given members. Requirements on packages outside the member set are omitted.
func NewDependencyGraph(members []*Package) *DependencyGraph {
	graph := &DependencyGraph{
		dependsOn:  make(map[string][]string, len(members)),
		dependants: make(map[string][]string, len(members)),
	}
	for _, member := range members {
		graph.dependsOn[member.Name] = nil
		graph.dependants[member.Name] = nil
	}
	for _, member := range members {
		for _, dep := range member.Dependencies {
			if _, ok := graph.dependsOn[dep.Name]; !ok || dep.Name == member.Name {
				continue
			}
			graph.dependsOn[member.Name] = appendUnique(graph.dependsOn[member.Name], dep.Name)
			graph.dependants[dep.Name] = appendUnique(graph.dependants[dep.Name], member.Name)
		}
	}
	for name := range graph.dependsOn {
		sort.Strings(graph.dependsOn[name])
		sort.Strings(graph.dependants[name])
	}
	return graph
}

// Nodes returns every node name in alphabetical order.
func (g *DependencyGraph) Nodes() []string {
	names := make([]string, 0, len(g.dependsOn))
	for name := range g.dependsOn {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether name is a node of the graph.
func (g *DependencyGraph) Contains(name string) bool {
	_, ok := g.dependsOn[name]
	return ok
}

// DependsOn returns the direct dependencies of name.
func (g *DependencyGraph) DependsOn(name string) []string {
	return append([]string(nil), g.dependsOn[name]...)
}

// Dependants returns the direct dependants of name.
func (g *DependencyGraph) Dependants(name string) []string {
	return append([]string(nil), g.dependants[name]...)
}

// CollectDependants returns the transitive dependants of root, each once,
// in alphabetical order. The root itself is never part of the result, even
// when a cycle leads back to it.
func (g *DependencyGraph) CollectDependants(root string) []string {
	visited := map[string]bool{root: true}
	var result []string

	var walk func(name string)
	walk = func(name string) {
		for _, dependant := range g.dependants[name] {
			if visited[dependant] {
				continue
			}
			visited[dependant] = true
			result = append(result, dependant)
			walk(dependant)
		}
	}
	walk(root)

	sort.Strings(result)
	return result
}

func appendUnique(list []string, name string) []string {
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}
