// Package graph builds the file dependency graph of a project snapshot and
// ranks files by propagated importance.
package graph

import (
	"sort"

	"github.com/gatherworks/gather/internal/source"
)

// Graph is a directed, unweighted graph over file paths. Every edge endpoint
// is a member of the node set; cycles and self-edges are permitted.
type Graph struct {
	nodes   map[string]struct{}
	forward map[string]map[string]struct{}
	reverse map[string]map[string]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]struct{}),
		forward: make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
	}
}

// AddNode inserts a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(path string) {
	g.nodes[path] = struct{}{}
}

// AddEdge inserts the directed edge from -> to and its reverse index entry.
// Both endpoints must already be nodes; edges to unknown nodes are dropped.
func (g *Graph) AddEdge(from, to string) {
	if !g.HasNode(from) || !g.HasNode(to) {
		return
	}
	if g.forward[from] == nil {
		g.forward[from] = make(map[string]struct{})
	}
	g.forward[from][to] = struct{}{}
	if g.reverse[to] == nil {
		g.reverse[to] = make(map[string]struct{})
	}
	g.reverse[to][from] = struct{}{}
}

// HasNode reports membership of path in the node set.
func (g *Graph) HasNode(path string) bool {
	_, ok := g.nodes[path]
	return ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Nodes returns all node paths in lexical order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Imports returns the distinct files path imports, in lexical order.
func (g *Graph) Imports(path string) []string {
	return sortedKeys(g.forward[path])
}

// ImportedBy returns the distinct files that import path, in lexical order.
func (g *Graph) ImportedBy(path string) []string {
	return sortedKeys(g.reverse[path])
}

// OutDegree returns the number of distinct files path imports.
func (g *Graph) OutDegree(path string) int {
	return len(g.forward[path])
}

// EdgeCount returns the total number of forward edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, targets := range g.forward {
		total += len(targets)
	}
	return total
}

// BuildOptions tunes import resolution during graph construction.
type BuildOptions struct {
	// GoModulePath is the module path from the project's go.mod, when one
	// exists. Go import specifiers under this prefix resolve to files in
	// the corresponding repo-relative directory.
	GoModulePath string
}

// Build constructs the dependency graph for a set of file records. Every
// file becomes a node; each raw import specifier that resolves to a known
// file adds a forward edge and its reverse mirror. Imports that resolve
// outside the known file set (stdlib, third-party) are discarded without
// error.
func Build(files []source.FileRecord, opts BuildOptions) *Graph {
	g := NewGraph()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		g.AddNode(f.Path)
		paths = append(paths, f.Path)
	}

	r := NewResolver(paths, opts.GoModulePath)

	for _, f := range files {
		for _, spec := range f.ImportPaths {
			resolved, ok := r.Resolve(spec, f.Path, f.Language)
			if !ok {
				continue
			}
			g.AddEdge(f.Path, resolved)
		}
	}

	return g
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
