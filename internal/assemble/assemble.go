// Package assemble merges the structural map, ranked full files, and
// semantic matches into one context string that stays inside a token
// budget.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/gatherworks/gather/internal/graph"
	"github.com/gatherworks/gather/internal/semantic"
	"github.com/gatherworks/gather/internal/source"
	"github.com/gatherworks/gather/internal/token"
)

// ErrBudgetTooSmall reports a total budget below the minimum viable map.
var ErrBudgetTooSmall = errors.New("token budget below minimum viable structure map")

// DefaultTopK is how many semantic matches are requested per assembly.
const DefaultTopK = 20

// Section headers are part of the output contract: downstream prompts
// locate content by them.
const (
	mapHeader      = "# Repository map"
	filesHeader    = "# Full files"
	semanticHeader = "# Semantic matches"
)

// Config carries the per-section token caps and the overall budget.
type Config struct {
	StructureMapTokenCap int
	FullFileTokenCap     int
	SemanticTokenCap     int
	TotalTokenBudget     int
	// TopK overrides DefaultTopK when positive.
	TopK int
}

// Sections exposes the three phase outputs individually, in the same form
// they appear concatenated in Output.
type Sections struct {
	Map       string
	FullFiles string
	Semantic  string
}

// Result is one assembled context.
type Result struct {
	Output   string
	Sections Sections
	// SeedFiles are the task-derived seeds fed to the ranker.
	SeedFiles []string
	// IncludedFiles are the paths whose full content made it into the
	// output, in appended order.
	IncludedFiles []string
	Warnings      []string
}

// Assembler builds context strings. It is stateless across calls; two
// calls with identical inputs produce byte-identical output.
type Assembler struct {
	counter token.Counter
	log     *slog.Logger
}

// New creates an assembler. A nil counter falls back to the approximate
// character-based count; a nil logger discards log output.
func New(counter token.Counter, logger *slog.Logger) *Assembler {
	if counter == nil {
		counter = token.EstimateCounter{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Assembler{counter: counter, log: logger}
}

// Assemble runs the four fixed phases: structural map, ranked full files,
// semantic matches, concatenation. A nil index skips the semantic phase
// with a warning. The returned output never exceeds cfg.TotalTokenBudget.
func (a *Assembler) Assemble(ctx context.Context, files []source.FileRecord, g *graph.Graph, task string, index *semantic.Index, cfg Config) (*Result, error) {
	res := &Result{}

	minMap := a.counter.Count(mapHeader)
	if cfg.TotalTokenBudget < minMap {
		return nil, fmt.Errorf("%w: budget %d, map header alone needs %d tokens", ErrBudgetTooSmall, cfg.TotalTokenBudget, minMap)
	}

	structureMap := a.buildMap(files, g, cfg.StructureMapTokenCap)
	mapTokens := a.counter.Count(structureMap)
	total := mapTokens

	// Degenerate case: the capped map still exceeds the whole budget.
	// Hard-truncate it and skip the remaining content phases.
	if mapTokens > cfg.TotalTokenBudget {
		structureMap = a.truncateLines(structureMap, cfg.TotalTokenBudget)
		res.Sections.Map = structureMap
		res.Output = structureMap
		res.Warnings = append(res.Warnings, "structure map truncated to budget; full files and semantic matches omitted")
		a.log.Warn("budget exhausted by structure map", "budget", cfg.TotalTokenBudget)
		return res, nil
	}
	res.Sections.Map = structureMap

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.SeedFiles = SeedFiles(files, task)
	fullFiles, includedPaths := a.packFullFiles(files, g, res.SeedFiles, cfg, &total)
	res.Sections.FullFiles = fullFiles
	res.IncludedFiles = includedPaths

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if index == nil {
		res.Warnings = append(res.Warnings, "semantic index unavailable; semantic matches omitted")
	} else {
		sem, warn := a.packSemantic(ctx, index, task, includedPaths, cfg, &total)
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}
		res.Sections.Semantic = sem
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(res.Sections.Map)
	if res.Sections.FullFiles != "" {
		b.WriteString("\n")
		b.WriteString(res.Sections.FullFiles)
	}
	if res.Sections.Semantic != "" {
		b.WriteString("\n")
		b.WriteString(res.Sections.Semantic)
	}
	res.Output = b.String()

	a.log.Info("context assembled",
		"tokens", total,
		"budget", cfg.TotalTokenBudget,
		"seeds", len(res.SeedFiles),
		"fullFiles", len(includedPaths),
		"warnings", len(res.Warnings))
	return res, nil
}

// buildMap formats every file's symbol signatures grouped by path and
// trims it to the cap by dropping the lowest-ranked files first. Ranking
// here runs with no seeds, so the trim order depends only on the graph.
func (a *Assembler) buildMap(files []source.FileRecord, g *graph.Graph, tokenCap int) string {
	entries := make(map[string]string, len(files))
	order := make([]string, 0, len(files))
	for _, f := range files {
		entries[f.Path] = mapEntry(f)
		order = append(order, f.Path)
	}
	sort.Strings(order)

	render := func(included map[string]bool) string {
		var b strings.Builder
		b.WriteString(mapHeader)
		for _, path := range order {
			if included[path] {
				b.WriteString("\n")
				b.WriteString(entries[path])
			}
		}
		return b.String()
	}

	included := make(map[string]bool, len(files))
	for _, path := range order {
		included[path] = true
	}

	out := render(included)
	if tokenCap <= 0 || a.counter.Count(out) <= tokenCap {
		return out
	}

	// Drop order: ascending baseline score, so the least important
	// entries go first.
	scores := graph.Rank(g, nil, graph.DefaultDamping, graph.DefaultIterations)
	drop := graph.RankedPaths(scores)
	for i := len(drop) - 1; i >= 0; i-- {
		if !included[drop[i]] {
			continue
		}
		delete(included, drop[i])
		out = render(included)
		if a.counter.Count(out) <= tokenCap {
			return out
		}
	}
	return render(map[string]bool{})
}

// mapEntry renders one file's map block: the path followed by one
// indented signature per symbol.
func mapEntry(f source.FileRecord) string {
	var b strings.Builder
	b.WriteString("## ")
	b.WriteString(f.Path)
	for _, sym := range f.Symbols {
		b.WriteString("\n  ")
		if sym.Signature != "" {
			b.WriteString(sym.Signature)
		} else {
			b.WriteString(string(sym.Kind))
			b.WriteString(" ")
			b.WriteString(sym.Name)
		}
	}
	return b.String()
}

// packFullFiles ranks files with the task seeds and appends full file
// bodies best-fit-continue: a file that does not fit is skipped and the
// walk keeps going down the ranking.
func (a *Assembler) packFullFiles(files []source.FileRecord, g *graph.Graph, seeds []string, cfg Config, total *int) (string, []string) {
	byPath := make(map[string]source.FileRecord, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	scores := graph.Rank(g, seeds, graph.DefaultDamping, graph.DefaultIterations)
	ranked := graph.RankedPaths(scores)

	var b strings.Builder
	var included []string
	headerCost := a.counter.Count("\n" + filesHeader)
	sectionTokens := 0

	for _, path := range ranked {
		f, ok := byPath[path]
		if !ok {
			continue
		}
		block := fmt.Sprintf("\n## %s\n%s", f.Path, f.Content)
		cost := a.counter.Count(block)
		if sectionTokens == 0 {
			cost += headerCost
		}
		if sectionTokens+cost > cfg.FullFileTokenCap || *total+cost > cfg.TotalTokenBudget {
			continue
		}
		if sectionTokens == 0 {
			b.WriteString(filesHeader)
		}
		b.WriteString(block)
		sectionTokens += cost
		*total += cost
		included = append(included, f.Path)
	}
	return b.String(), included
}

// packSemantic queries the index with the raw task string and appends
// matches in returned order, skipping chunks from files already included
// whole and chunks overlapping an already-appended range.
func (a *Assembler) packSemantic(ctx context.Context, index *semantic.Index, task string, includedPaths []string, cfg Config, total *int) (string, string) {
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	matches, err := index.Search(ctx, task, topK)
	if err != nil {
		a.log.Warn("semantic search failed", "error", err)
		return "", fmt.Sprintf("semantic search failed: %v", err)
	}

	alreadyWhole := make(map[string]bool, len(includedPaths))
	for _, p := range includedPaths {
		alreadyWhole[p] = true
	}

	var b strings.Builder
	var appended []semantic.Chunk
	headerCost := a.counter.Count("\n" + semanticHeader)
	sectionTokens := 0

	for _, m := range matches {
		if alreadyWhole[m.File] || overlapsAny(m, appended) {
			continue
		}
		block := fmt.Sprintf("\n## %s:%d-%d\n%s", m.File, m.StartLine, m.EndLine, m.Content)
		cost := a.counter.Count(block)
		if sectionTokens == 0 {
			cost += headerCost
		}
		if sectionTokens+cost > cfg.SemanticTokenCap || *total+cost > cfg.TotalTokenBudget {
			continue
		}
		if sectionTokens == 0 {
			b.WriteString(semanticHeader)
		}
		b.WriteString(block)
		sectionTokens += cost
		*total += cost
		appended = append(appended, m)
	}
	return b.String(), ""
}

// overlapsAny reports whether the chunk's line range intersects any
// already-appended chunk from the same file.
func overlapsAny(c semantic.Chunk, appended []semantic.Chunk) bool {
	for _, other := range appended {
		if c.File != other.File {
			continue
		}
		if c.StartLine <= other.EndLine && other.StartLine <= c.EndLine {
			return true
		}
	}
	return false
}

// truncateLines cuts text at line granularity until it fits the budget,
// always keeping the first line.
func (a *Assembler) truncateLines(text string, budget int) string {
	lines := strings.Split(text, "\n")
	lo, hi := 1, len(lines)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if a.counter.Count(strings.Join(lines[:mid], "\n")) <= budget {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return strings.Join(lines[:lo], "\n")
}
