// Package scoring computes the weighted similarity of two normalized records.
package scoring

import (
	"fmt"
	"math"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
)

// precision is the number of decimals scores are rounded to, so equal inputs
// compare equal regardless of summation order.
const precision = 1e6

type Scorer struct {
	weights config.ScoringConfig
}

// New rejects weights that do not form a valid blend. Accepted weights are
// rescaled to sum to exactly 1, so identical records still score 1 when the
// configured sum is only within tolerance.
func New(cfg config.ScoringConfig) (*Scorer, error) {
	check := config.Default()
	check.Scoring = cfg
	if err := check.Validate(); err != nil {
		return nil, err
	}
	sum := cfg.Jaccard + cfg.EditDistance + cfg.LengthRatio
	return &Scorer{weights: config.ScoringConfig{
		Jaccard:      cfg.Jaccard / sum,
		EditDistance: cfg.EditDistance / sum,
		LengthRatio:  cfg.LengthRatio / sum,
	}}, nil
}

// Compare scores a against b. It is symmetric and returns exactly 1 for a
// record compared with itself; records without tokens score 0.
func (s *Scorer) Compare(a, b *model.NormalizedRecord) (float64, model.Breakdown) {
	if a.Empty() || b.Empty() {
		return 0, model.Breakdown{}
	}
	bd := model.Breakdown{
		Jaccard:      round(Jaccard(a.Tokens, b.Tokens)),
		EditDistance: round(EditSimilarity(a.Text, b.Text)),
		LengthRatio:  round(LengthRatio(a.Text, b.Text)),
	}
	score := s.weights.Jaccard*bd.Jaccard +
		s.weights.EditDistance*bd.EditDistance +
		s.weights.LengthRatio*bd.LengthRatio
	return round(score), bd
}

// Score looks both sides of p up in set and scores them.
func (s *Scorer) Score(p model.CandidatePair, set model.NormalizedSet) (model.ScoredPair, error) {
	left, ok := set[p.Left]
	if !ok {
		return model.ScoredPair{}, fmt.Errorf("record %s not normalized", p.Left)
	}
	right, ok := set[p.Right]
	if !ok {
		return model.ScoredPair{}, fmt.Errorf("record %s not normalized", p.Right)
	}
	score, bd := s.Compare(left, right)
	return model.ScoredPair{CandidatePair: p, Score: score, Breakdown: bd}, nil
}

func round(v float64) float64 {
	v = math.Round(v*precision) / precision
	return math.Min(1, math.Max(0, v))
}
