package source

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
)

// ExcelSource reads an .xlsx workbook. The first row of the sheet is the
// header.
type ExcelSource struct {
	Tag    model.SourceTag
	Config config.SourceConfig
	Logger *slog.Logger
}

func (s *ExcelSource) Load(ctx context.Context) (*Batch, error) {
	f, err := excelize.OpenFile(s.Config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook '%s': %w", s.Config.Path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook '%s' has no sheets", s.Config.Path)
	}
	sheet := sheets[0]
	if s.Config.Sheet != "" {
		if !slices.Contains(sheets, s.Config.Sheet) {
			return nil, fmt.Errorf("sheet %q not found in '%s'", s.Config.Sheet, s.Config.Path)
		}
		sheet = s.Config.Sheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of '%s': %w", sheet, s.Config.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tableFromRows(s.Config.Path+"#"+sheet, rows).Records(s.Tag, s.Config, s.Logger)
}

// tableFromRows treats rows[0] as the header.
func tableFromRows(name string, rows [][]string) *Table {
	t := &Table{Name: name, FirstRow: 2}
	if len(rows) == 0 {
		return t
	}
	t.Header = rows[0]
	t.Rows = rows[1:]
	return t
}
