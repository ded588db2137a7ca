// Package normalize turns free-text record fields into canonical token sets
// and derives the keys records are blocked under.
package normalize

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
)

// Normalizer is safe for concurrent use; it holds no mutable state after New.
type Normalizer struct {
	minLen    int
	stem      int
	keyTokens int
	strategy  config.KeyStrategy
	stopwords map[string]struct{}
}

func New(cfg config.NormalizeConfig) *Normalizer {
	n := &Normalizer{
		minLen:    max(cfg.MinTokenLength, 1),
		stem:      cfg.StemPrefix,
		keyTokens: max(cfg.KeyTokens, 1),
		strategy:  cfg.KeyStrategy,
		stopwords: make(map[string]struct{}, len(cfg.Stopwords)),
	}
	// stopwords go through the same folding so "Über" in config matches "uber" in text
	for _, w := range cfg.Stopwords {
		for _, tok := range strings.Fields(Clean(w)) {
			n.stopwords[tok] = struct{}{}
		}
	}
	return n
}

// Fold removes diacritics and applies Unicode case folding.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// Clean folds s, replaces every rune that is not a letter or digit with a
// separator and collapses separator runs to a single space.
func Clean(s string) string {
	folded := Fold(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens returns the surviving tokens of text in their original order.
// Duplicates are kept.
func (n *Normalizer) Tokens(text string) []string {
	words := strings.Fields(Clean(text))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < n.minLen {
			continue
		}
		if _, stop := n.stopwords[w]; stop {
			continue
		}
		tokens = append(tokens, n.truncate(w))
	}
	return tokens
}

func (n *Normalizer) truncate(tok string) string {
	if n.stem <= 0 || utf8.RuneCountInString(tok) <= n.stem {
		return tok
	}
	r := []rune(tok)
	return string(r[:n.stem])
}

// Normalize is pure: the same record and configuration always give the same
// result. A record without surviving tokens comes back Empty.
func (n *Normalizer) Normalize(r model.Record) model.NormalizedRecord {
	set := make(map[string]struct{})
	for _, f := range r.Fields {
		for _, tok := range n.Tokens(f.Value) {
			set[tok] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(set))
	for tok := range set {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	keys := n.blockingTokens(tokens)
	return model.NormalizedRecord{
		Key:         r.Key(),
		Tokens:      tokens,
		Text:        strings.Join(tokens, " "),
		KeyTokens:   keys,
		BlockingKey: strings.Join(keys, " "),
	}
}

// blockingTokens picks up to keyTokens tokens by strategy and returns them
// sorted. tokens must already be sorted.
func (n *Normalizer) blockingTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	ranked := append([]string(nil), tokens...)
	switch n.strategy {
	case config.KeyLongest:
		sort.SliceStable(ranked, func(i, j int) bool {
			return utf8.RuneCountInString(ranked[i]) > utf8.RuneCountInString(ranked[j])
		})
	case config.KeyAlphabetical:
		// already sorted
	default:
		sort.SliceStable(ranked, func(i, j int) bool {
			return utf8.RuneCountInString(ranked[i]) < utf8.RuneCountInString(ranked[j])
		})
	}
	if len(ranked) > n.keyTokens {
		ranked = ranked[:n.keyTokens]
	}
	sort.Strings(ranked)
	return ranked
}
