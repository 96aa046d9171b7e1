package graph

import "sort"

// Ranking defaults. The iteration count is fixed rather than
// convergence-checked so that latency and results are fully deterministic.
const (
	DefaultDamping    = 0.85
	DefaultIterations = 20

	// seedBoost is added to each seed file's initial score before
	// propagation.
	seedBoost = 0.5
)

// ScoreMap holds one non-negative score per graph node. A fresh map is
// produced per Rank call; callers own it.
type ScoreMap map[string]float64

// Rank propagates importance across the graph with damped power iteration.
//
// Every node starts at 1/n; each seed present in the graph gets an
// additional fixed boost. Then, for exactly the given number of iterations,
// every node v is simultaneously recomputed as
//
//	(1-damping)/n + damping * sum over u importing v of score(u)/outDegree(u)
//
// where outDegree is clamped to a minimum of 1. Scores are replaced only
// after a full pass; no convergence check is performed. Seeds not present
// in the graph are ignored.
func Rank(g *Graph, seeds []string, damping float64, iterations int) ScoreMap {
	n := g.NodeCount()
	scores := make(ScoreMap, n)
	if n == 0 {
		return scores
	}

	nodes := g.Nodes()
	base := 1.0 / float64(n)
	for _, node := range nodes {
		scores[node] = base
	}
	for _, seed := range seeds {
		if g.HasNode(seed) {
			scores[seed] += seedBoost
		}
	}

	reset := (1.0 - damping) / float64(n)
	for iter := 0; iter < iterations; iter++ {
		next := make(ScoreMap, n)
		for _, v := range nodes {
			inherited := 0.0
			for _, u := range g.ImportedBy(v) {
				out := g.OutDegree(u)
				if out < 1 {
					out = 1
				}
				inherited += scores[u] / float64(out)
			}
			next[v] = reset + damping*inherited
		}
		scores = next
	}

	return scores
}

// RankedPaths returns the score map's paths ordered by score descending,
// ties broken by lexical path order ascending.
func RankedPaths(scores ScoreMap) []string {
	paths := make([]string, 0, len(scores))
	for p := range scores {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if scores[paths[i]] != scores[paths[j]] {
			return scores[paths[i]] > scores[paths[j]]
		}
		return paths[i] < paths[j]
	})
	return paths
}
