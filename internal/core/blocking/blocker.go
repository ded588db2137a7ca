// Package blocking proposes candidate pairs by grouping records that share a
// blocking key, so only plausibly similar records are ever scored.
package blocking

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
	"github.com/agenthands/dupscan/internal/logging"
)

type Blocker struct {
	mode    config.Mode
	maxSize int
	logger  *slog.Logger
}

func New(mode config.Mode, cfg config.BlockingConfig, logger *slog.Logger) *Blocker {
	return &Blocker{
		mode:    mode,
		maxSize: max(cfg.MaxBlockSize, 2),
		logger:  logging.OrDiscard(logger).With("component", "blocker"),
	}
}

type Result struct {
	Pairs     []model.CandidatePair // deduplicated, sorted by model.ComparePairs
	Blocks    int                   // keys shared by at least two records
	Overflows []model.BlockOverflow
}

// Block groups records under each of their key tokens and emits every
// eligible pair inside each group exactly once. Empty records are ignored.
//
// A block larger than the configured cap is not paired in full: its members
// are ordered by their compact blocking key and paired only within
// consecutive windows of the cap size. Every such block is reported as a
// BlockOverflow.
func (b *Blocker) Block(records []*model.NormalizedRecord) Result {
	blocks := make(map[string][]*model.NormalizedRecord)
	for _, r := range records {
		if r == nil || r.Empty() {
			continue
		}
		for _, k := range r.KeyTokens {
			blocks[k] = append(blocks[k], r)
		}
	}

	keys := make([]string, 0, len(blocks))
	for k, members := range blocks {
		if len(members) >= 2 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var res Result
	seen := make(map[model.CandidatePair]struct{})
	emit := func(x, y *model.NormalizedRecord) {
		if !b.eligible(x.Key, y.Key) {
			return
		}
		p := model.NewCandidatePair(x.Key, y.Key)
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		res.Pairs = append(res.Pairs, p)
	}

	for _, key := range keys {
		members := blocks[key]
		res.Blocks++

		if len(members) <= b.maxSize {
			pairAll(members, emit)
			continue
		}

		overflow := b.window(key, members, emit)
		res.Overflows = append(res.Overflows, overflow)
		b.logger.Warn("block overflow",
			"key", key,
			"size", overflow.Size,
			"max_block_size", b.maxSize,
			"windows", overflow.Windows,
			"pairs_kept", overflow.PairsKept,
			"pairs_skipped", overflow.PairsSkipped,
		)
	}

	sort.Slice(res.Pairs, func(i, j int) bool {
		return model.ComparePairs(res.Pairs[i], res.Pairs[j]) < 0
	})
	return res
}

// eligible applies the mode filter: a record never pairs with itself, and in
// cross mode both records must come from different sources.
func (b *Blocker) eligible(x, y model.RecordKey) bool {
	if x == y {
		return false
	}
	if b.mode == config.ModeCross && x.Source == y.Source {
		return false
	}
	return true
}

func pairAll(members []*model.NormalizedRecord, emit func(x, y *model.NormalizedRecord)) {
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			emit(members[i], members[j])
		}
	}
}

func (b *Blocker) window(key string, members []*model.NormalizedRecord, emit func(x, y *model.NormalizedRecord)) model.BlockOverflow {
	ordered := append([]*model.NormalizedRecord(nil), members...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if c := strings.Compare(ordered[i].BlockingKey, ordered[j].BlockingKey); c != 0 {
			return c < 0
		}
		return model.CompareKeys(ordered[i].Key, ordered[j].Key) < 0
	})

	overflow := model.BlockOverflow{Key: key, Size: len(ordered)}
	for start := 0; start < len(ordered); start += b.maxSize {
		end := min(start+b.maxSize, len(ordered))
		win := ordered[start:end]
		overflow.Windows++
		overflow.PairsKept += b.eligiblePairs(win)
		pairAll(win, emit)
	}
	overflow.PairsSkipped = b.eligiblePairs(ordered) - overflow.PairsKept
	return overflow
}

// eligiblePairs counts the pairs a full pairing of members would emit.
func (b *Blocker) eligiblePairs(members []*model.NormalizedRecord) int {
	if b.mode != config.ModeCross {
		n := len(members)
		return n * (n - 1) / 2
	}
	var a, other int
	for _, m := range members {
		if m.Key.Source == model.SourceA {
			a++
		} else {
			other++
		}
	}
	return a * other
}
