package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherworks/gather/internal/config"
	"github.com/gatherworks/gather/internal/token"
)

func fixtureRoot() string {
	return filepath.Join("..", "..", "testdata", "fixtures", "go_project")
}

func defaultedConfig(t *testing.T) *config.ProjectConfig {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestBuild_FixtureProject(t *testing.T) {
	p, err := New(defaultedConfig(t), nil)
	require.NoError(t, err)

	result, err := p.Build(context.Background(), Options{
		Root: fixtureRoot(),
		Task: "fix login bug",
	})
	require.NoError(t, err)

	assert.Contains(t, result.Context, "# Repository map")
	assert.Contains(t, result.Context, "auth/login.go")
	assert.Contains(t, result.Sections.FullFiles, "func Login")
	assert.GreaterOrEqual(t, result.Stats.Files, 2)
	assert.GreaterOrEqual(t, result.Stats.Edges, 1, "server imports auth")

	// Provider "none" means no semantic phase and a warning for it.
	assert.Equal(t, 0, result.Stats.Chunks)
	require.NotEmpty(t, result.Warnings)
	assert.True(t, hasWarning(result.Warnings, "semantic index unavailable"))
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestBuild_BudgetOverride(t *testing.T) {
	p, err := New(defaultedConfig(t), nil)
	require.NoError(t, err)

	result, err := p.Build(context.Background(), Options{
		Root:   fixtureRoot(),
		Task:   "fix login bug",
		Budget: 60,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, token.Default().Count(result.Context), 60, "flag budget overrides the config")
}

func TestBuild_MissingRoot(t *testing.T) {
	p, err := New(defaultedConfig(t), nil)
	require.NoError(t, err)

	_, err = p.Build(context.Background(), Options{
		Root: filepath.Join(t.TempDir(), "missing"),
		Task: "anything",
	})
	require.Error(t, err)
}

func TestBuild_Cancelled(t *testing.T) {
	p, err := New(defaultedConfig(t), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Build(ctx, Options{Root: fixtureRoot(), Task: "anything"})
	require.Error(t, err)
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := defaultedConfig(t)
	cfg.Embedder.Provider = "mystery"

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestExportGraph(t *testing.T) {
	p, err := New(defaultedConfig(t), nil)
	require.NoError(t, err)

	mermaid, err := p.ExportGraph(context.Background(), fixtureRoot(), "mermaid")
	require.NoError(t, err)
	assert.Contains(t, mermaid, "graph TD")
	assert.Contains(t, mermaid, "-->")

	jsonOut, err := p.ExportGraph(context.Background(), fixtureRoot(), "json")
	require.NoError(t, err)
	assert.Contains(t, jsonOut, "auth/login.go")

	_, err = p.ExportGraph(context.Background(), fixtureRoot(), "dot")
	assert.Error(t, err, "unknown format")
}
