package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
)

// XLSSource reads a legacy binary .xls workbook.
type XLSSource struct {
	Tag    model.SourceTag
	Config config.SourceConfig
	Logger *slog.Logger
}

func (s *XLSSource) Load(ctx context.Context) (*Batch, error) {
	data, err := os.ReadFile(s.Config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook '%s': %w", s.Config.Path, err)
	}
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook '%s': %w", s.Config.Path, err)
	}

	var names []string
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		name := sheet.GetName()
		names = append(names, name)
		if s.Config.Sheet != "" && name != s.Config.Sheet {
			continue
		}

		var rows [][]string
		for _, row := range sheet.GetRows() {
			rows = append(rows, xlsRowValues(row.GetCols()))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return tableFromRows(s.Config.Path+"#"+name, rows).Records(s.Tag, s.Config, s.Logger)
	}

	if s.Config.Sheet != "" {
		return nil, fmt.Errorf("sheet %q not found in '%s' (sheets: %v)", s.Config.Sheet, s.Config.Path, names)
	}
	return nil, fmt.Errorf("workbook '%s' has no readable sheets", s.Config.Path)
}

// xlsRowValues renders numeric cells without a trailing ".0" so numeric ids
// read the same as in the .xlsx export.
func xlsRowValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}
