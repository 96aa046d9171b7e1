// Package mcptools exposes the context engine over the Model Context
// Protocol: one tool to build a budgeted context string, one to query a
// persisted semantic index.
package mcptools

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gatherworks/gather/internal/pipeline"
)

// ContextService holds the pipeline used by MCP tool handlers.
type ContextService struct {
	pipeline *pipeline.Pipeline
}

// NewContextService creates a ContextService over the given pipeline.
func NewContextService(p *pipeline.Pipeline) *ContextService {
	return &ContextService{pipeline: p}
}

// BuildContextInput is the build_context tool request.
type BuildContextInput struct {
	// Root is the project directory to scan.
	Root string `json:"root" jsonschema:"project root directory"`
	// Task describes the work the context is assembled for.
	Task string `json:"task" jsonschema:"task description used for ranking and search"`
	// Budget overrides the configured total token budget when positive.
	Budget int `json:"budget,omitempty" jsonschema:"total token budget"`
	// IndexPath points at a semantic index file to load or create.
	IndexPath string `json:"indexPath,omitempty" jsonschema:"semantic index file path"`
}

// BuildContextOutput is the build_context tool response.
type BuildContextOutput struct {
	Context  string         `json:"context"`
	Warnings []string       `json:"warnings,omitempty"`
	Stats    pipeline.Stats `json:"stats"`
}

// BuildContext runs a full pipeline build and returns the assembled
// context string with its warnings and stats.
func (s *ContextService) BuildContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildContextInput,
) (*mcp.CallToolResult, BuildContextOutput, error) {
	if input.Root == "" {
		return nil, BuildContextOutput{}, fmt.Errorf("root is required")
	}
	if input.Task == "" {
		return nil, BuildContextOutput{}, fmt.Errorf("task is required")
	}

	info, err := os.Stat(input.Root)
	if err != nil {
		return nil, BuildContextOutput{}, fmt.Errorf("cannot access root: %w", err)
	}
	if !info.IsDir() {
		return nil, BuildContextOutput{}, fmt.Errorf("root is not a directory: %s", input.Root)
	}

	result, err := s.pipeline.Build(ctx, pipeline.Options{
		Root:      input.Root,
		Task:      input.Task,
		Budget:    input.Budget,
		IndexPath: input.IndexPath,
	})
	if err != nil {
		return nil, BuildContextOutput{}, err
	}

	return nil, BuildContextOutput{
		Context:  result.Context,
		Warnings: result.Warnings,
		Stats:    result.Stats,
	}, nil
}

// SearchIndexInput is the search_index tool request.
type SearchIndexInput struct {
	IndexPath string `json:"indexPath" jsonschema:"semantic index file path"`
	Query     string `json:"query" jsonschema:"natural-language query"`
	TopK      int    `json:"topK,omitempty" jsonschema:"maximum matches to return"`
}

// SearchMatch is one semantic search hit.
type SearchMatch struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Content   string `json:"content"`
}

// SearchIndexOutput is the search_index tool response.
type SearchIndexOutput struct {
	Matches []SearchMatch `json:"matches"`
}

// SearchIndex queries a persisted semantic index without running a build.
func (s *ContextService) SearchIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchIndexInput,
) (*mcp.CallToolResult, SearchIndexOutput, error) {
	if input.IndexPath == "" {
		return nil, SearchIndexOutput{}, fmt.Errorf("indexPath is required")
	}
	if input.Query == "" {
		return nil, SearchIndexOutput{}, fmt.Errorf("query is required")
	}

	topK := input.TopK
	if topK <= 0 {
		topK = 10
	}

	chunks, err := s.pipeline.SearchIndex(ctx, input.IndexPath, input.Query, topK)
	if err != nil {
		return nil, SearchIndexOutput{}, err
	}

	out := SearchIndexOutput{Matches: make([]SearchMatch, len(chunks))}
	for i, c := range chunks {
		out.Matches[i] = SearchMatch{
			File:      c.File,
			StartLine: c.StartLine,
			EndLine:   c.EndLine,
			Content:   c.Content,
		}
	}
	return nil, out, nil
}
