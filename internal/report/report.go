// Package report writes scan reports as Excel workbooks or JSON.
package report

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/agenthands/dupscan/internal/core/model"
)

type Writer interface {
	Write(ctx context.Context, r *model.Report) error
}

// DefaultPath is the workbook name used when no output path is configured.
func DefaultPath(t time.Time) string {
	return "dupscan-analysis-" + t.Format("20060102") + ".xlsx"
}

// New picks a writer by the extension of path. "-" writes JSON to stdout.
func New(path string, stdout io.Writer) (Writer, error) {
	if path == "-" {
		return &JSONWriter{W: stdout}, nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return &ExcelWriter{Path: path}, nil
	case ".json":
		return &JSONWriter{Path: path}, nil
	default:
		return nil, fmt.Errorf("unsupported report type %q for %s", ext, path)
	}
}

// contextColumns lists the passthrough column names in order of first
// appearance across the report's records.
func contextColumns(r *model.Report, keys []model.RecordKey) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, k := range keys {
		for _, f := range r.Records[k].Context {
			if !seen[f.Name] {
				seen[f.Name] = true
				cols = append(cols, f.Name)
			}
		}
	}
	return cols
}
