package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
)

// CSVSource reads a comma-separated export with a header line.
type CSVSource struct {
	Tag    model.SourceTag
	Config config.SourceConfig
	Logger *slog.Logger
}

func (s *CSVSource) Load(ctx context.Context) (*Batch, error) {
	f, err := os.Open(s.Config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %w", s.Config.Path, err)
	}
	defer f.Close()

	rows, err := readCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", s.Config.Path, err)
	}
	return tableFromRows(s.Config.Path, rows).Records(s.Tag, s.Config, s.Logger)
}

func readCSV(ctx context.Context, r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		if len(rows)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
