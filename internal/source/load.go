package source

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core"
	"github.com/agenthands/dupscan/internal/core/model"
)

type sourceSpec struct {
	tag model.SourceTag
	cfg config.SourceConfig
}

// LoadInput loads source A, and source B in cross mode, concurrently and
// combines them into one engine input. In self mode source B is ignored.
func LoadInput(ctx context.Context, cfg *config.Config, dial Dialer, logger *slog.Logger) (core.Input, error) {
	specs := []sourceSpec{{model.SourceA, cfg.Sources.A}}
	if cfg.Scan.Mode == config.ModeCross {
		specs = append(specs, sourceSpec{model.SourceB, cfg.Sources.B})
	}
	for _, s := range specs {
		if err := s.cfg.Validate("sources." + strings.ToLower(string(s.tag))); err != nil {
			return core.Input{}, err
		}
	}

	batches := make([]*Batch, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range specs {
		i, s := i, s
		g.Go(func() error {
			src, err := Open(s.tag, s.cfg, dial, logger)
			if err != nil {
				return err
			}
			batches[i], err = src.Load(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return core.Input{}, err
	}

	var in core.Input
	for _, b := range batches {
		in.Records = append(in.Records, b.Records...)
		in.Skipped = append(in.Skipped, b.Skipped...)
	}
	return in, nil
}
