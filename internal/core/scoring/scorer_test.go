package scoring

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
)

func nr(src model.SourceTag, id string, tokens ...string) *model.NormalizedRecord {
	return &model.NormalizedRecord{
		Key:    model.RecordKey{Source: src, ID: id},
		Tokens: tokens,
		Text:   strings.Join(tokens, " "),
	}
}

func defaultScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := New(config.Default().Scoring)
	require.NoError(t, err)
	return s
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 0.75, Jaccard([]string{"a", "b", "c"}, []string{"a", "b", "c", "d"}))
	assert.Equal(t, 1.0, Jaccard([]string{"x"}, []string{"x"}))
	assert.Equal(t, 0.0, Jaccard([]string{"x"}, []string{"y"}))
	assert.Equal(t, 0.0, Jaccard(nil, nil))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 3, Levenshtein("kitten", "sitting"))
	assert.Equal(t, 0, Levenshtein("same", "same"))
	assert.Equal(t, 4, Levenshtein("", "abcd"))
	assert.Equal(t, 1, Levenshtein("café", "cafe"))
	assert.Equal(t, Levenshtein("flaw", "lawn"), Levenshtein("lawn", "flaw"))
}

func TestEditSimilarityAndLengthRatio(t *testing.T) {
	assert.InDelta(t, 0.88, EditSimilarity("audit quarterly report", "audit quarterly report v2"), 1e-9)
	assert.Equal(t, 0.0, EditSimilarity("", ""))
	assert.InDelta(t, 0.88, LengthRatio("audit quarterly report", "audit quarterly report v2"), 1e-9)
	assert.Equal(t, 0.0, LengthRatio("", "x"))
}

func TestCompare_Identity(t *testing.T) {
	s := defaultScorer(t)
	a := nr(model.SourceA, "1", "compliance", "customer", "dashboard", "risk")

	score, bd := s.Compare(a, a)
	assert.Equal(t, 1.0, score)
	assert.Equal(t, model.Breakdown{Jaccard: 1, EditDistance: 1, LengthRatio: 1}, bd)
}

func TestCompare_IdentityWithinWeightTolerance(t *testing.T) {
	s, err := New(config.ScoringConfig{Jaccard: 0.5, EditDistance: 0.35, LengthRatio: 0.1499991})
	require.NoError(t, err)
	a := nr(model.SourceA, "1", "annual", "budget", "forecast")

	score, _ := s.Compare(a, a)
	assert.Equal(t, 1.0, score)
}

func TestCompare_Symmetric(t *testing.T) {
	s := defaultScorer(t)
	a := nr(model.SourceA, "1", "alpha", "beta", "gamma")
	b := nr(model.SourceA, "2", "beta", "delta", "gamma", "omega")

	ab, bdAB := s.Compare(a, b)
	ba, bdBA := s.Compare(b, a)
	assert.Equal(t, ab, ba)
	assert.Equal(t, bdAB, bdBA)
	assert.GreaterOrEqual(t, ab, 0.0)
	assert.LessOrEqual(t, ab, 1.0)
}

func TestCompare_VersionSuffix(t *testing.T) {
	s := defaultScorer(t)
	a := nr(model.SourceA, "A1", "audit", "quarterly", "report")
	b := nr(model.SourceB, "B7", "audit", "quarterly", "report", "v2")

	score, bd := s.Compare(a, b)
	assert.Equal(t, 0.75, bd.Jaccard)
	assert.Equal(t, 0.88, bd.EditDistance)
	assert.Equal(t, 0.88, bd.LengthRatio)
	assert.Equal(t, 0.815, score)
	assert.GreaterOrEqual(t, score, 0.7)
}

func TestCompare_EmptyScoresZero(t *testing.T) {
	s := defaultScorer(t)
	score, bd := s.Compare(nr(model.SourceA, "1"), nr(model.SourceA, "2", "audit"))
	assert.Zero(t, score)
	assert.Equal(t, model.Breakdown{}, bd)
}

func TestCompare_CustomWeights(t *testing.T) {
	s, err := New(config.ScoringConfig{Jaccard: 1})
	require.NoError(t, err)

	score, _ := s.Compare(
		nr(model.SourceA, "1", "a1", "b1"),
		nr(model.SourceA, "2", "a1", "c1"),
	)
	assert.InDelta(t, 1.0/3.0, score, 1e-6)
}

func TestNew_RejectsBadWeights(t *testing.T) {
	_, err := New(config.ScoringConfig{Jaccard: 0.5, EditDistance: 0.5, LengthRatio: 0.5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))

	_, err = New(config.ScoringConfig{Jaccard: -0.5, EditDistance: 1.5})
	assert.Error(t, err)
}

func TestScore_LooksUpSet(t *testing.T) {
	s := defaultScorer(t)
	a := nr(model.SourceA, "1", "audit")
	b := nr(model.SourceA, "2", "audit")
	set := model.NormalizedSet{a.Key: a, b.Key: b}

	sp, err := s.Score(model.NewCandidatePair(b.Key, a.Key), set)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sp.Score)
	assert.Equal(t, a.Key, sp.Left)

	_, err = s.Score(model.NewCandidatePair(a.Key, model.RecordKey{Source: model.SourceB, ID: "9"}), set)
	assert.Error(t, err)
}
