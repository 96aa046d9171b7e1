package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cycleGraph builds a->b->c->a so rank mass has nowhere to leak.
func cycleGraph() *Graph {
	g := NewGraph()
	for _, n := range []string{"a.go", "b.go", "c.go"} {
		g.AddNode(n)
	}
	g.AddEdge("a.go", "b.go")
	g.AddEdge("b.go", "c.go")
	g.AddEdge("c.go", "a.go")
	return g
}

func TestRank_MassConserved(t *testing.T) {
	g := cycleGraph()
	scores := Rank(g, nil, DefaultDamping, DefaultIterations)

	sum := 0.0
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-9, "score mass is conserved on a cycle")
}

func TestRank_EmptyGraph(t *testing.T) {
	scores := Rank(NewGraph(), nil, DefaultDamping, DefaultIterations)
	assert.Empty(t, scores)
}

// mutualGraph builds a<->b. With an even iteration count, boost mass
// started at a ends back at a, so the seed's own score strictly rises.
func mutualGraph() *Graph {
	g := NewGraph()
	g.AddNode("a.go")
	g.AddNode("b.go")
	g.AddEdge("a.go", "b.go")
	g.AddEdge("b.go", "a.go")
	return g
}

func TestRank_SeedBoost(t *testing.T) {
	unseeded := Rank(mutualGraph(), nil, DefaultDamping, DefaultIterations)
	seeded := Rank(mutualGraph(), []string{"a.go"}, DefaultDamping, DefaultIterations)

	assert.Greater(t, seeded["a.go"], unseeded["a.go"], "seeding raises the seed's own score")
	assert.GreaterOrEqual(t, seeded["b.go"], unseeded["b.go"], "downstream files never lose score")
}

func TestRank_UnknownSeedIgnored(t *testing.T) {
	base := Rank(cycleGraph(), nil, DefaultDamping, DefaultIterations)
	withGhost := Rank(cycleGraph(), []string{"ghost.go"}, DefaultDamping, DefaultIterations)

	assert.Equal(t, base, withGhost)
}

func TestRank_ChainPropagation(t *testing.T) {
	g := NewGraph()
	for _, n := range []string{"a.go", "b.go", "c.go", "isolated.go"} {
		g.AddNode(n)
	}
	g.AddEdge("a.go", "b.go")
	g.AddEdge("b.go", "c.go")

	scores := Rank(g, []string{"a.go"}, DefaultDamping, DefaultIterations)

	// Importance inherited down the chain keeps b and c above a node
	// nothing points at. No ordering among a, b, c themselves is promised.
	assert.Greater(t, scores["b.go"], scores["isolated.go"])
	assert.Greater(t, scores["c.go"], scores["isolated.go"])
}

func TestRank_Deterministic(t *testing.T) {
	g := cycleGraph()
	first := Rank(g, []string{"b.go"}, DefaultDamping, DefaultIterations)
	second := Rank(g, []string{"b.go"}, DefaultDamping, DefaultIterations)
	assert.Equal(t, first, second)
}

func TestRankedPaths_TieBreak(t *testing.T) {
	scores := ScoreMap{
		"b.go": 0.5,
		"a.go": 0.5,
		"c.go": 0.9,
	}

	ranked := RankedPaths(scores)
	require.Equal(t, []string{"c.go", "a.go", "b.go"}, ranked, "ties break lexically ascending")
}
