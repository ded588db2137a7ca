package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/blocking"
	"github.com/agenthands/dupscan/internal/core/dedupe"
	"github.com/agenthands/dupscan/internal/core/model"
	"github.com/agenthands/dupscan/internal/core/normalize"
	"github.com/agenthands/dupscan/internal/core/scoring"
	"github.com/agenthands/dupscan/internal/logging"
)

var (
	ErrNoRecords     = fmt.Errorf("%w: no records to scan", config.ErrInvalidConfig)
	ErrMissingSource = fmt.Errorf("%w: cross mode needs records from both sources", config.ErrInvalidConfig)
)

const incompleteDeadline = "deadline exceeded"

// PairScorer scores one candidate pair against the run's normalized records.
type PairScorer interface {
	Score(p model.CandidatePair, set model.NormalizedSet) (model.ScoredPair, error)
}

// Engine runs one duplicate scan at a time per call to Run. It keeps no
// state between runs, so a single Engine may serve concurrent calls.
type Engine struct {
	Config       *config.Config
	Normalizer   *normalize.Normalizer
	Blocker      *blocking.Blocker
	Scorer       PairScorer
	Deduplicator *dedupe.Deduplicator
	Logger       *slog.Logger

	// Now and NewRunID are replaced in tests.
	Now      func() time.Time
	NewRunID func() string
}

// NewEngine validates cfg and fails before any work if it is unusable.
func NewEngine(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scorer, err := scoring.New(cfg.Scoring)
	if err != nil {
		return nil, err
	}
	logger = logging.OrDiscard(logger)

	return &Engine{
		Config:       cfg,
		Normalizer:   normalize.New(cfg.Normalize),
		Blocker:      blocking.New(cfg.Scan.Mode, cfg.Blocking, logger),
		Scorer:       scorer,
		Deduplicator: dedupe.NewDeduplicator(cfg.Scan.Threshold),
		Logger:       logger.With("component", "engine"),
		Now:          func() time.Time { return time.Now().UTC() },
		NewRunID:     uuid.NewString,
	}, nil
}

// Input is what the record sources hand to the engine: the records to scan
// and the rows they already rejected while loading.
type Input struct {
	Records []model.Record
	Skipped []model.SkippedRecord
}

// Run scans in.Records for duplicates.
//
// Configuration problems and an unusable record set are returned as errors
// wrapping config.ErrInvalidConfig before any work starts. When the
// configured deadline (or a deadline on ctx) passes mid-run the report is
// returned with Complete set to false and a nil error; its clusters cover
// only the pairs scored in time. Cancellation of ctx is returned as an error.
func (e *Engine) Run(ctx context.Context, in Input) (*model.Report, error) {
	cfg := e.Config
	report := &model.Report{
		RunID:     e.NewRunID(),
		Mode:      string(cfg.Scan.Mode),
		Threshold: cfg.Scan.Threshold,
		StartedAt: e.Now(),
		Complete:  true,
		Skipped:   append([]model.SkippedRecord(nil), in.Skipped...),
		Records:   make(map[model.RecordKey]model.Record, len(in.Records)),
	}
	report.Summary.RecordsIn = len(in.Records) + len(in.Skipped)

	records, err := e.admit(in.Records, report)
	if err != nil {
		return nil, err
	}

	logger := e.Logger.With("run_id", report.RunID)
	logger.Info("scan started",
		"mode", cfg.Scan.Mode,
		"threshold", cfg.Scan.Threshold,
		"records", len(records),
		"workers", e.workers(),
	)

	runCtx := ctx
	if cfg.Scan.Deadline.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Scan.Deadline.Duration)
		defer cancel()
	}

	set, normalized, err := e.normalizeAll(runCtx, records, report, logger)
	if err != nil {
		if stopErr := e.stop(err, "normalize", report, logger); stopErr != nil {
			return nil, stopErr
		}
		return e.finish(report, logger), nil
	}

	blocks := e.Blocker.Block(normalized)
	report.Overflows = blocks.Overflows
	report.Summary.Blocks = blocks.Blocks
	report.Summary.CandidatePairs = len(blocks.Pairs)
	report.Summary.OversizedBlocks = len(blocks.Overflows)

	scored, err := e.scoreAll(runCtx, blocks.Pairs, set)
	report.Summary.PairsScored = len(scored)
	if err != nil {
		if stopErr := e.stop(err, "score", report, logger); stopErr != nil {
			return nil, stopErr
		}
	}

	res := e.Deduplicator.ResolveDuplicates(scored)
	report.Clusters = res.Clusters
	report.Matches = res.Matches
	return e.finish(report, logger), nil
}

// admit drops records that cannot take part in the run, sorts the rest and
// checks that the run has something to compare.
func (e *Engine) admit(in []model.Record, report *model.Report) ([]model.Record, error) {
	if len(in) == 0 {
		return nil, ErrNoRecords
	}

	records := make([]model.Record, 0, len(in))
	for _, r := range in {
		if !r.Source.Valid() {
			return nil, fmt.Errorf("%w: record %q has unknown source %q", config.ErrInvalidConfig, r.ID, r.Source)
		}
		if strings.TrimSpace(r.ID) == "" {
			e.skip(report, model.SkippedRecord{Key: r.Key(), Row: r.Row, Reason: model.SkipMissingID})
			continue
		}
		if _, dup := report.Records[r.Key()]; dup {
			e.skip(report, model.SkippedRecord{
				Key:    r.Key(),
				Row:    r.Row,
				Reason: model.SkipDuplicateID,
				Detail: "id already used by an earlier row",
			})
			continue
		}
		report.Records[r.Key()] = r
		records = append(records, r)
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if e.Config.Scan.Mode == config.ModeCross {
		var a, b bool
		for _, r := range records {
			a = a || r.Source == model.SourceA
			b = b || r.Source == model.SourceB
		}
		if !a || !b {
			return nil, ErrMissingSource
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return model.CompareKeys(records[i].Key(), records[j].Key()) < 0
	})
	return records, nil
}

func (e *Engine) skip(report *model.Report, s model.SkippedRecord) {
	e.Logger.Warn("record skipped", "record", s.Key.String(), "row", s.Row, "reason", s.Reason)
	report.Skipped = append(report.Skipped, s)
}

// normalizeAll normalizes every record in parallel. The returned slice keeps
// the order of records and holds only scoreable records.
func (e *Engine) normalizeAll(ctx context.Context, records []model.Record, report *model.Report, logger *slog.Logger) (model.NormalizedSet, []*model.NormalizedRecord, error) {
	out := make([]model.NormalizedRecord, len(records))
	err := e.parallel(ctx, len(records), func(i int) error {
		out[i] = e.Normalizer.Normalize(records[i])
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	set := make(model.NormalizedSet, len(out))
	normalized := make([]*model.NormalizedRecord, 0, len(out))
	for i := range out {
		nr := &out[i]
		if nr.Empty() {
			logger.Warn("record skipped", "record", nr.Key.String(), "reason", model.SkipUnscoreable)
			report.Skipped = append(report.Skipped, model.SkippedRecord{
				Key:    nr.Key,
				Row:    records[i].Row,
				Reason: model.SkipUnscoreable,
				Detail: "no tokens left after normalization",
			})
			continue
		}
		set[nr.Key] = nr
		normalized = append(normalized, nr)
	}
	report.Summary.RecordsScoreable = len(normalized)
	return set, normalized, nil
}

// scoreAll scores pairs in parallel. On error it still returns every pair
// scored before the stop, in pair order.
func (e *Engine) scoreAll(ctx context.Context, pairs []model.CandidatePair, set model.NormalizedSet) ([]model.ScoredPair, error) {
	results := make([]model.ScoredPair, len(pairs))
	done := make([]bool, len(pairs))

	err := e.parallel(ctx, len(pairs), func(i int) error {
		sp, err := e.Scorer.Score(pairs[i], set)
		if err != nil {
			return err
		}
		results[i] = sp
		done[i] = true
		return nil
	})

	scored := results[:0]
	for i := range results {
		if done[i] {
			scored = append(scored, results[i])
		}
	}
	return scored, err
}

// chunkSize bounds how many items a worker takes at once and how often it
// checks for cancellation.
const chunkSize = 256

// parallel calls fn for every index in [0,n) on a bounded pool of workers,
// stopping early once ctx is done or fn fails.
func (e *Engine) parallel(ctx context.Context, n int, fn func(i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())

	next := 0
	for ; next < n && gctx.Err() == nil; next += chunkSize {
		lo, hi := next, min(next+chunkSize, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil && next < n {
		// stopped handing out chunks without any worker noticing
		err = ctx.Err()
	}
	return err
}

func (e *Engine) workers() int {
	if e.Config.Scan.Workers > 0 {
		return e.Config.Scan.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// stop decides whether err ends the run as incomplete (nil return) or fails
// it.
func (e *Engine) stop(err error, stage string, report *model.Report, logger *slog.Logger) error {
	if !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("scan %s: %w", stage, err)
	}
	report.Complete = false
	report.IncompleteReason = incompleteDeadline
	logger.Warn("scan deadline exceeded",
		"stage", stage,
		"pairs_scored", report.Summary.PairsScored,
		"candidate_pairs", report.Summary.CandidatePairs,
	)
	return nil
}

func (e *Engine) finish(report *model.Report, logger *slog.Logger) *model.Report {
	report.FinishedAt = e.Now()

	s := &report.Summary
	s.RecordsSkipped = len(report.Skipped)
	s.PairsMatched = len(report.Matches)
	s.Clusters = len(report.Clusters)
	for _, c := range report.Clusters {
		s.ClusteredRecords += len(c.Members)
	}

	logger.Info("scan finished",
		"complete", report.Complete,
		"records", s.RecordsIn,
		"skipped", s.RecordsSkipped,
		"candidate_pairs", s.CandidatePairs,
		"pairs_scored", s.PairsScored,
		"oversized_blocks", s.OversizedBlocks,
		"clusters", s.Clusters,
		"elapsed", report.Elapsed(),
	)
	return report
}
