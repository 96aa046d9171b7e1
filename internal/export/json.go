package export

import (
	"encoding/json"

	"github.com/gatherworks/gather/internal/graph"
)

// GraphExport is the top-level JSON export structure.
type GraphExport struct {
	Files []FileExport `json:"files"`
}

// FileExport describes one file node with its outgoing imports and its
// baseline importance score.
type FileExport struct {
	Path    string   `json:"path"`
	Imports []string `json:"imports,omitempty"`
	Score   float64  `json:"score"`
}

// ExportJSON renders the graph and its seedless importance ranking as
// indented JSON. File order is lexical, so output is stable.
func ExportJSON(g *graph.Graph) ([]byte, error) {
	scores := graph.Rank(g, nil, graph.DefaultDamping, graph.DefaultIterations)

	out := GraphExport{}
	for _, path := range g.Nodes() {
		out.Files = append(out.Files, FileExport{
			Path:    path,
			Imports: g.Imports(path),
			Score:   scores[path],
		})
	}

	return json.MarshalIndent(out, "", "  ")
}
