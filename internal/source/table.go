package source

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
	"github.com/agenthands/dupscan/internal/logging"
)

// Table is a sheet, CSV file or query result before it is turned into
// records. Rows may be ragged; missing cells read as empty.
type Table struct {
	Name     string // file or query, used in messages
	Header   []string
	Rows     [][]string
	FirstRow int // row number of Rows[0] in the source, for reporting
}

// Batch is the outcome of loading one source: the usable records and the rows
// that were rejected with a reason.
type Batch struct {
	Records []model.Record
	Skipped []model.SkippedRecord
}

// Records applies the column schema in cfg to every row.
//
// A missing id or comparison column makes the whole table unusable and is
// returned as an error. Missing context columns are logged and ignored.
// Rows with no value in any cell are padding and dropped silently; rows
// without an id or without any comparison value are reported as skipped.
func (t *Table) Records(tag model.SourceTag, cfg config.SourceConfig, logger *slog.Logger) (*Batch, error) {
	logger = logging.OrDiscard(logger).With("component", "source", "source", string(tag), "table", t.Name)

	cols := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		k := columnKey(h)
		if _, dup := cols[k]; !dup && k != "" {
			cols[k] = i
		}
	}

	idCol, ok := cols[columnKey(cfg.IDColumn)]
	if !ok {
		return nil, fmt.Errorf("%s: id column %q not found", t.Name, cfg.IDColumn)
	}
	fieldCols := make([]int, len(cfg.Fields))
	for i, name := range cfg.Fields {
		idx, ok := cols[columnKey(name)]
		if !ok {
			return nil, fmt.Errorf("%s: comparison column %q not found", t.Name, name)
		}
		fieldCols[i] = idx
	}
	contextCols := make(map[string]int, len(cfg.Context))
	for _, name := range cfg.Context {
		idx, ok := cols[columnKey(name)]
		if !ok {
			logger.Warn("context column not found", "column", name)
			continue
		}
		contextCols[name] = idx
	}
	fillDown := make(map[int]bool, len(cfg.FillDown))
	for _, name := range cfg.FillDown {
		idx, ok := cols[columnKey(name)]
		if !ok {
			logger.Warn("fill-down column not found", "column", name)
			continue
		}
		fillDown[idx] = true
	}

	placeholders := make(map[string]struct{}, len(cfg.Placeholders))
	for _, p := range cfg.Placeholders {
		placeholders[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
	}
	firstRow := t.FirstRow
	if firstRow == 0 {
		firstRow = 2
	}

	batch := &Batch{}
	last := make(map[int]string, len(fillDown))
	for i, raw := range t.Rows {
		rowNum := firstRow + i
		if blank(raw) {
			logger.Debug("blank row dropped", "row", rowNum)
			continue
		}

		cell := func(idx int) string {
			v := ""
			if idx < len(raw) {
				v = strings.TrimSpace(raw[idx])
			}
			if _, ph := placeholders[strings.ToLower(v)]; ph {
				v = ""
			}
			if fillDown[idx] {
				if v == "" {
					v = last[idx]
				} else {
					last[idx] = v
				}
			}
			return v
		}

		// evaluate fill-down columns on every row so the carried value stays current
		for idx := range fillDown {
			cell(idx)
		}

		id := cell(idCol)
		rec := model.Record{ID: id, Source: tag, Row: rowNum}
		hasText := false
		for j, name := range cfg.Fields {
			v := cell(fieldCols[j])
			hasText = hasText || v != ""
			rec.Fields = append(rec.Fields, model.Field{Name: name, Value: v})
		}
		for _, name := range cfg.Context {
			if idx, ok := contextCols[name]; ok {
				rec.Context = append(rec.Context, model.Field{Name: name, Value: cell(idx)})
			}
		}

		switch {
		case id == "":
			batch.Skipped = append(batch.Skipped, model.SkippedRecord{
				Key: rec.Key(), Row: rowNum, Reason: model.SkipMissingID,
			})
			logger.Warn("record skipped", "row", rowNum, "reason", model.SkipMissingID)
		case !hasText:
			batch.Skipped = append(batch.Skipped, model.SkippedRecord{
				Key:    rec.Key(),
				Row:    rowNum,
				Reason: model.SkipUnscoreable,
				Detail: "all comparison fields empty",
			})
			logger.Warn("record skipped", "row", rowNum, "record", rec.Key().String(), "reason", model.SkipUnscoreable)
		default:
			batch.Records = append(batch.Records, rec)
		}
	}

	logger.Info("records loaded", "records", len(batch.Records), "skipped", len(batch.Skipped))
	return batch, nil
}

func columnKey(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
