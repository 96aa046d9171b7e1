// Package semantic splits files into embeddable chunks, builds a vector
// index over them, and answers nearest-neighbor queries by cosine
// similarity.
package semantic

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/gatherworks/gather/internal/embed"
	"github.com/gatherworks/gather/internal/source"
)

// Chunk is a contiguous line-range slice of one file together with its
// embedding vector. Line numbers are 0-indexed and inclusive.
type Chunk struct {
	File      string    `json:"file"`
	StartLine int       `json:"startLine"`
	EndLine   int       `json:"endLine"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// Index is an ordered list of embedded chunks plus the provider used to
// embed queries. The chunk embeddings are the durable artifact: a reloaded
// index answers identical queries with identical results without re-calling
// the provider for its chunks.
type Index struct {
	Model     string
	Dimension int
	Chunks    []Chunk

	provider embed.Provider
}

// BuildOptions configures index construction.
type BuildOptions struct {
	// Model names the embedding model, recorded as index metadata.
	Model string
	// MaxChunkChars caps chunk size; 0 uses DefaultMaxChunkChars.
	MaxChunkChars int
	// Batch bounds embedding dispatch.
	Batch embed.BatchOptions
}

// Build chunks every file, embeds the chunks in batches through provider,
// and returns the assembled index. Chunk order follows file order, then
// line order within each file.
func Build(ctx context.Context, files []source.FileRecord, provider embed.Provider, opts BuildOptions) (*Index, error) {
	var chunks []Chunk
	for _, f := range files {
		chunks = append(chunks, Split(f.Path, f.Content, opts.MaxChunkChars)...)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := embed.BatchEmbed(ctx, provider, texts, opts.Batch)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	dimension := 0
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		if dimension == 0 && len(vectors[i]) > 0 {
			dimension = len(vectors[i])
		}
	}

	return &Index{
		Model:     opts.Model,
		Dimension: dimension,
		Chunks:    chunks,
		provider:  provider,
	}, nil
}

// SetProvider attaches the query-embedding provider, e.g. after Load.
func (ix *Index) SetProvider(p embed.Provider) {
	ix.provider = p
}

// Search embeds the query and returns the topK most similar chunks, sorted
// by cosine similarity descending with ties broken by (file, startLine)
// ascending.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]Chunk, error) {
	if ix.provider == nil {
		return nil, fmt.Errorf("search: no embedding provider attached")
	}
	if topK <= 0 || len(ix.Chunks) == 0 {
		return nil, nil
	}

	vectors, err := ix.provider.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("search: got %d query vectors, want 1", len(vectors))
	}
	queryVec := vectors[0]

	type scored struct {
		idx int
		sim float64
	}
	results := make([]scored, len(ix.Chunks))
	for i, c := range ix.Chunks {
		results[i] = scored{idx: i, sim: Cosine(queryVec, c.Embedding)}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].sim != results[j].sim {
			return results[i].sim > results[j].sim
		}
		a, b := ix.Chunks[results[i].idx], ix.Chunks[results[j].idx]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.StartLine < b.StartLine
	})

	if topK > len(results) {
		topK = len(results)
	}
	out := make([]Chunk, topK)
	for i := 0; i < topK; i++ {
		out[i] = ix.Chunks[results[i].idx]
	}
	return out, nil
}

// Cosine returns the cosine similarity of two vectors, defined as 0 when
// either has zero magnitude or the dimensions disagree.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
