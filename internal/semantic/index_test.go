package semantic

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherworks/gather/internal/embed"
	"github.com/gatherworks/gather/internal/source"
)

// hashProvider embeds texts deterministically with no network: identical
// texts always produce identical vectors.
type hashProvider struct{}

func (hashProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, 8)
		for j := 0; j < len(text); j++ {
			vec[j%8] += float32(text[j])
		}
		out[i] = vec
	}
	return out, nil
}

func testFiles() []source.FileRecord {
	return []source.FileRecord{
		{Path: "auth.go", Content: "func Login(user string) error {\n\treturn nil\n}"},
		{Path: "store.go", Content: "func Save(session Session) error {\n\treturn nil\n}"},
		{Path: "render.go", Content: "func Render(page Page) string {\n\treturn \"\"\n}"},
	}
}

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Build(context.Background(), testFiles(), hashProvider{}, BuildOptions{
		Model: "test-model",
		Batch: embed.BatchOptions{BatchSize: 2, Concurrency: 1},
	})
	require.NoError(t, err)
	return ix
}

func TestBuild_Index(t *testing.T) {
	ix := buildTestIndex(t)

	require.Len(t, ix.Chunks, 3, "one chunk per small file")
	assert.Equal(t, "test-model", ix.Model)
	assert.Equal(t, 8, ix.Dimension)
	for _, c := range ix.Chunks {
		assert.NotEmpty(t, c.Embedding)
	}
}

func TestSearch_IdenticalContentFirst(t *testing.T) {
	ix := buildTestIndex(t)
	query := testFiles()[0].Content

	results, err := ix.Search(context.Background(), query, 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "auth.go", results[0].File)
	sim := Cosine(mustEmbed(t, query), results[0].Embedding)
	assert.Greater(t, sim, 0.99)
}

func mustEmbed(t *testing.T, text string) []float32 {
	t.Helper()
	vecs, err := hashProvider{}.Embed(context.Background(), []string{text})
	require.NoError(t, err)
	return vecs[0]
}

func TestSearch_TopKBounds(t *testing.T) {
	ix := buildTestIndex(t)

	results, err := ix.Search(context.Background(), "login", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = ix.Search(context.Background(), "login", 100)
	require.NoError(t, err)
	assert.Len(t, results, 3, "topK clamps to chunk count")

	results, err = ix.Search(context.Background(), "login", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_NoProvider(t *testing.T) {
	ix := &Index{Chunks: []Chunk{{File: "a.go", Content: "x"}}}
	_, err := ix.Search(context.Background(), "query", 5)
	assert.Error(t, err)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}), "zero magnitude")
	assert.Zero(t, Cosine([]float32{1}, []float32{1, 2}), "dimension mismatch")
	assert.Zero(t, Cosine(nil, nil))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ix := buildTestIndex(t)
	path := filepath.Join(t.TempDir(), "index.db")

	require.NoError(t, ix.Save(path))

	loaded, err := Load(path, hashProvider{})
	require.NoError(t, err)

	assert.Equal(t, ix.Model, loaded.Model)
	assert.Equal(t, ix.Dimension, loaded.Dimension)
	require.Equal(t, len(ix.Chunks), len(loaded.Chunks))
	for i := range ix.Chunks {
		assert.Equal(t, ix.Chunks[i], loaded.Chunks[i], "chunk %d survives bit-exact", i)
	}

	// Identical query, identical ranked results.
	query := "session storage"
	before, err := ix.Search(context.Background(), query, 3)
	require.NoError(t, err)
	after, err := loaded.Search(context.Background(), query, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSave_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	ix := buildTestIndex(t)
	require.NoError(t, ix.Save(path))

	smaller := &Index{Model: "test-model", Dimension: 8, Chunks: ix.Chunks[:1]}
	require.NoError(t, smaller.Save(path))

	loaded, err := Load(path, hashProvider{})
	require.NoError(t, err)
	assert.Len(t, loaded.Chunks, 1, "save replaces the previous index")
}
