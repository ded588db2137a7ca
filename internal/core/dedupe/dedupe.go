// Package dedupe turns scored pairs into duplicate clusters.
package dedupe

import (
	"sort"

	"github.com/agenthands/dupscan/internal/core/model"
)

// Deduplicator links every pair scoring at or above the threshold and
// reports the connected components as clusters. Linking is transitive: if
// A~B and B~C match, A, B and C share a cluster even when A~C scored low.
type Deduplicator struct {
	Threshold float64
}

func NewDeduplicator(threshold float64) *Deduplicator {
	return &Deduplicator{Threshold: threshold}
}

type Result struct {
	Clusters []model.DuplicateCluster // sorted by representative
	Matches  []model.ScoredPair       // pairs that met the threshold, sorted
}

// ResolveDuplicates is deterministic for a given set of pairs regardless of
// their order.
func (d *Deduplicator) ResolveDuplicates(pairs []model.ScoredPair) Result {
	var matches []model.ScoredPair
	for _, p := range pairs {
		if p.Score >= d.Threshold {
			matches = append(matches, p)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return model.ComparePairs(matches[i].CandidatePair, matches[j].CandidatePair) < 0
	})

	uf := newUnionFind()
	for _, m := range matches {
		uf.union(m.Left, m.Right)
	}

	type stats struct {
		confidence float64
		edges      int
	}
	edgeStats := make(map[model.RecordKey]*stats)
	for _, m := range matches {
		root := uf.find(m.Left)
		s, ok := edgeStats[root]
		if !ok {
			s = &stats{confidence: m.Score}
			edgeStats[root] = s
		}
		s.confidence = min(s.confidence, m.Score)
		s.edges++
	}

	var clusters []model.DuplicateCluster
	for root, members := range uf.components() {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return model.CompareByID(members[i], members[j]) < 0
		})
		s := edgeStats[root]
		clusters = append(clusters, model.DuplicateCluster{
			Representative: members[0],
			Members:        members,
			Confidence:     s.confidence,
			Edges:          s.edges,
		})
	}
	sort.Slice(clusters, func(i, j int) bool {
		return model.CompareByID(clusters[i].Representative, clusters[j].Representative) < 0
	})

	return Result{Clusters: clusters, Matches: matches}
}
