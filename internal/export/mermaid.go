// Package export renders the import graph for inspection, as a Mermaid
// diagram or a JSON document with importance scores attached.
package export

import (
	"fmt"
	"strings"

	"github.com/gatherworks/gather/internal/graph"
)

// GenerateMermaid produces a Mermaid graph TD diagram of the import
// graph. Node IDs are stable across runs: files are numbered in lexical
// path order.
func GenerateMermaid(g *graph.Graph) string {
	nodes := g.Nodes()

	nodeIDs := make(map[string]string, len(nodes))
	for i, path := range nodes {
		nodeIDs[path] = fmt.Sprintf("N%d", i)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, path := range nodes {
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", nodeIDs[path], shortPath(path)))
	}
	for _, path := range nodes {
		for _, imported := range g.Imports(path) {
			sb.WriteString(fmt.Sprintf("  %s --> %s\n", nodeIDs[path], nodeIDs[imported]))
		}
	}

	return sb.String()
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
