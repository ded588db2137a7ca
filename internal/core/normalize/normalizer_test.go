package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
)

func record(id string, values ...string) model.Record {
	r := model.Record{ID: id, Source: model.SourceA}
	for i, v := range values {
		r.Fields = append(r.Fields, model.Field{Name: string(rune('a' + i)), Value: v})
	}
	return r
}

func TestClean(t *testing.T) {
	assert.Equal(t, "customer risk dashboard compliance", Clean("Customer Risk Dashboard - Compliance"))
	assert.Equal(t, "cafe resume", Clean("  Café   RÉSUMÉ!! "))
	assert.Equal(t, "strasse 12", Clean("STRASSE #12"))
	assert.Equal(t, "", Clean(" -- ... "))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "naive", Fold("Naïve"))
	assert.Equal(t, "angstrom", Fold("ÅNGSTRÖM"))
}

func TestTokens(t *testing.T) {
	n := New(config.NormalizeConfig{
		MinTokenLength: 2,
		Stopwords:      []string{"the", "OF"},
		KeyTokens:      3,
	})

	assert.Equal(t, []string{"review", "q3", "audit", "audit"},
		n.Tokens("The review of Q3 audit, a audit"))
}

func TestTokens_StemPrefix(t *testing.T) {
	n := New(config.NormalizeConfig{MinTokenLength: 2, StemPrefix: 5, KeyTokens: 3})

	assert.Equal(t, []string{"repor", "repor", "dash"}, n.Tokens("reporting reports dash"))
}

func TestNormalize_TokenSet(t *testing.T) {
	n := New(config.NormalizeConfig{MinTokenLength: 2, Stopwords: config.DefaultStopwords, KeyTokens: 3})

	got := n.Normalize(record("1", "Quarterly Audit Report", "the audit REPORT for Q3"))

	assert.Equal(t, model.RecordKey{Source: model.SourceA, ID: "1"}, got.Key)
	assert.Equal(t, []string{"audit", "q3", "quarterly", "report"}, got.Tokens)
	assert.Equal(t, "audit q3 quarterly report", got.Text)
	assert.False(t, got.Empty())
}

func TestNormalize_PunctuationOnlyDifference(t *testing.T) {
	n := New(config.Default().Normalize)

	a := n.Normalize(record("1", "Customer Risk Dashboard - Compliance"))
	b := n.Normalize(record("2", "Customer Risk Dashboard Compliance"))

	assert.Equal(t, a.Tokens, b.Tokens)
	assert.Equal(t, a.BlockingKey, b.BlockingKey)
}

func TestNormalize_Empty(t *testing.T) {
	n := New(config.Default().Normalize)

	for _, r := range []model.Record{
		record("1"),
		record("2", ""),
		record("3", "  ", "--"),
		record("4", "a of the"),
	} {
		got := n.Normalize(r)
		assert.True(t, got.Empty(), r.ID)
		assert.Empty(t, got.BlockingKey, r.ID)
		assert.Empty(t, got.KeyTokens, r.ID)
	}
}

func TestNormalize_BlockingKeyStrategies(t *testing.T) {
	text := "vendor onboarding tracker v2"

	tests := []struct {
		strategy config.KeyStrategy
		keys     []string
	}{
		{config.KeyLongest, []string{"onboarding", "tracker", "vendor"}},
		{config.KeyShortest, []string{"tracker", "v2", "vendor"}},
		{config.KeyAlphabetical, []string{"onboarding", "tracker", "v2"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			n := New(config.NormalizeConfig{MinTokenLength: 2, KeyTokens: 3, KeyStrategy: tt.strategy})
			got := n.Normalize(record("1", text))
			assert.Equal(t, tt.keys, got.KeyTokens)
			assert.Equal(t, tt.keys[0]+" "+tt.keys[1]+" "+tt.keys[2], got.BlockingKey)
		})
	}
}

func TestNormalize_DefaultStrategyIsShortest(t *testing.T) {
	r := record("1", "Vendor Onboarding Tracker v2")

	got := New(config.Default().Normalize).Normalize(r)
	assert.Equal(t, []string{"tracker", "v2", "vendor"}, got.KeyTokens)

	unset := New(config.NormalizeConfig{MinTokenLength: 2, KeyTokens: 3}).Normalize(r)
	assert.Equal(t, got.KeyTokens, unset.KeyTokens)
}

func TestNormalize_FewerTokensThanKeys(t *testing.T) {
	n := New(config.NormalizeConfig{MinTokenLength: 2, KeyTokens: 5, KeyStrategy: config.KeyLongest})

	got := n.Normalize(record("1", "audit report"))
	assert.Equal(t, []string{"audit", "report"}, got.KeyTokens)
}

func TestNormalize_Deterministic(t *testing.T) {
	n := New(config.Default().Normalize)
	r := record("9", "Zeta alpha Beta gamma delta epsilon", "alpha beta")

	first := n.Normalize(r)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, n.Normalize(r))
	}
}
