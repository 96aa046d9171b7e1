// Package pipeline runs one end-to-end context build: scan, graph,
// semantic index, assemble. Embedding failures degrade the build to
// map-plus-files; only an unreadable root or an impossible budget abort.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gatherworks/gather/internal/assemble"
	"github.com/gatherworks/gather/internal/config"
	"github.com/gatherworks/gather/internal/embed"
	"github.com/gatherworks/gather/internal/export"
	"github.com/gatherworks/gather/internal/graph"
	"github.com/gatherworks/gather/internal/scan"
	"github.com/gatherworks/gather/internal/semantic"
	"github.com/gatherworks/gather/internal/token"
)

// Stats summarizes one build for logging and tool output.
type Stats struct {
	Files  int `json:"files"`
	Edges  int `json:"edges"`
	Chunks int `json:"chunks"`
}

// BuildResult is the outcome of one pipeline run.
type BuildResult struct {
	// Context is the assembled output string.
	Context string
	// Sections exposes the three labeled parts individually.
	Sections assemble.Sections
	Warnings []string
	Stats    Stats
}

// Options configures one build.
type Options struct {
	Root string
	Task string
	// Budget overrides the config's total token budget when positive.
	Budget int
	// IndexPath, when set, loads the semantic index from this file if it
	// exists and saves a freshly built index back to it.
	IndexPath string
}

// Pipeline wires the engine's stages together behind one Build call.
type Pipeline struct {
	cfg      *config.ProjectConfig
	provider embed.Provider
	counter  token.Counter
	log      *slog.Logger
}

// New builds a pipeline from project configuration. The embedding
// provider is constructed per the config; provider "none" leaves semantic
// search disabled from the start.
func New(cfg *config.ProjectConfig, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	provider, err := newProvider(cfg.Embedder)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:      cfg,
		provider: provider,
		counter:  token.Default(),
		log:      logger,
	}, nil
}

// newProvider maps the embedder config to a concrete provider, wrapped in
// the standard retrier. Returns nil when semantic search is disabled.
func newProvider(cfg config.EmbedderConfig) (embed.Provider, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "openai":
		p, err := embed.NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), cfg.Model, cfg.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("configure openai embedder: %w", err)
		}
		return embed.NewRetrier(p, 0, 0), nil
	case "ollama":
		return embed.NewRetrier(embed.NewOllamaProvider(cfg.BaseURL, cfg.Model), 0, 0), nil
	default:
		return nil, fmt.Errorf("unknown embedder provider %q", cfg.Provider)
	}
}

// Build runs scan, graph construction, semantic indexing, and assembly in
// order, checking for cancellation between phases.
func (p *Pipeline) Build(ctx context.Context, opts Options) (*BuildResult, error) {
	scanner := scan.NewScanner(scan.OSFS{}, p.log)
	snapshot, warnings, err := scanner.Scan(ctx, opts.Root, scan.Options{
		Include: p.cfg.Include,
		Exclude: p.cfg.Exclude,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := graph.Build(snapshot.Files, graph.BuildOptions{GoModulePath: snapshot.GoModulePath})
	p.log.Debug("graph built", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index, indexWarnings := p.buildIndex(ctx, opts, snapshot)
	warnings = append(warnings, indexWarnings...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	budget := p.cfg.Budget
	if opts.Budget > 0 {
		budget.TotalTokens = opts.Budget
	}

	assembler := assemble.New(p.counter, p.log)
	result, err := assembler.Assemble(ctx, snapshot.Files, g, opts.Task, index, assemble.Config{
		StructureMapTokenCap: budget.StructureMapTokens,
		FullFileTokenCap:     budget.FullFileTokens,
		SemanticTokenCap:     budget.SemanticTokens,
		TotalTokenBudget:     budget.TotalTokens,
	})
	if err != nil {
		return nil, err
	}

	chunks := 0
	if index != nil {
		chunks = len(index.Chunks)
	}
	return &BuildResult{
		Context:  result.Output,
		Sections: result.Sections,
		Warnings: append(warnings, result.Warnings...),
		Stats: Stats{
			Files:  len(snapshot.Files),
			Edges:  g.EdgeCount(),
			Chunks: chunks,
		},
	}, nil
}

// buildIndex loads or builds the semantic index. Every failure here is
// degradable: the build continues without semantic matches.
func (p *Pipeline) buildIndex(ctx context.Context, opts Options, snapshot *scan.Snapshot) (*semantic.Index, []string) {
	if p.provider == nil {
		return nil, nil
	}

	if opts.IndexPath != "" {
		if _, err := os.Stat(opts.IndexPath); err == nil {
			index, err := semantic.Load(opts.IndexPath, p.provider)
			if err == nil {
				p.log.Info("semantic index loaded", "path", opts.IndexPath, "chunks", len(index.Chunks))
				if index.Model != "" && index.Model != p.cfg.Embedder.Model {
					warn := fmt.Sprintf("index %s was built with model %q, configured model is %q", opts.IndexPath, index.Model, p.cfg.Embedder.Model)
					p.log.Warn("index model mismatch", "indexModel", index.Model, "configModel", p.cfg.Embedder.Model)
					return index, []string{warn}
				}
				return index, nil
			}
			p.log.Warn("stored index unusable, rebuilding", "path", opts.IndexPath, "error", err)
		}
	}

	index, err := semantic.Build(ctx, snapshot.Files, p.provider, semantic.BuildOptions{
		Model: p.cfg.Embedder.Model,
		Batch: embed.DefaultBatchOptions(),
	})
	if err != nil {
		p.log.Warn("semantic index build failed", "error", err)
		return nil, []string{fmt.Sprintf("semantic index unavailable: %v", err)}
	}

	if opts.IndexPath != "" {
		if err := index.Save(opts.IndexPath); err != nil {
			p.log.Warn("index save failed", "path", opts.IndexPath, "error", err)
			return index, []string{fmt.Sprintf("index not persisted: %v", err)}
		}
		p.log.Info("semantic index saved", "path", opts.IndexPath, "chunks", len(index.Chunks))
	}
	return index, nil
}

// ExportGraph scans the project and renders its import graph in the
// requested format, "mermaid" or "json".
func (p *Pipeline) ExportGraph(ctx context.Context, root, format string) (string, error) {
	scanner := scan.NewScanner(scan.OSFS{}, p.log)
	snapshot, _, err := scanner.Scan(ctx, root, scan.Options{
		Include: p.cfg.Include,
		Exclude: p.cfg.Exclude,
	})
	if err != nil {
		return "", err
	}

	g := graph.Build(snapshot.Files, graph.BuildOptions{GoModulePath: snapshot.GoModulePath})
	switch format {
	case "mermaid":
		return export.GenerateMermaid(g), nil
	case "json":
		data, err := export.ExportJSON(g)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}

// SearchIndex loads a persisted index and runs one query against it. It
// backs the search tool without a full build.
func (p *Pipeline) SearchIndex(ctx context.Context, indexPath, query string, topK int) ([]semantic.Chunk, error) {
	if p.provider == nil {
		return nil, fmt.Errorf("no embedding provider configured")
	}
	index, err := semantic.Load(indexPath, p.provider)
	if err != nil {
		return nil, err
	}
	return index.Search(ctx, query, topK)
}
