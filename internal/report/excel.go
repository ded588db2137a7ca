package report

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/agenthands/dupscan/internal/core/model"
)

const (
	SheetSummary   = "Summary"
	SheetClusters  = "Clusters"
	SheetMatches   = "Matches"
	SheetSkipped   = "Skipped"
	SheetOverflows = "Overflows"
)

type sheetData struct {
	name    string
	headers []string
	rows    [][]interface{}
}

// ExcelWriter saves the report as a workbook with one sheet per section.
type ExcelWriter struct {
	Path string
}

func (w *ExcelWriter) Write(ctx context.Context, r *model.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	sheets := []sheetData{
		{SheetSummary, []string{"Item", "Value"}, summaryRows(r)},
		clustersSheet(r),
		matchesSheet(r),
		{SheetSkipped, []string{"Source", "ID", "Row", "Reason", "Detail"}, skippedRows(r)},
		{SheetOverflows, []string{"Block Key", "Size", "Windows", "Pairs Kept", "Pairs Skipped"}, overflowRows(r)},
	}

	for _, s := range sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.name != SheetSummary {
			if _, err := f.NewSheet(s.name); err != nil {
				return fmt.Errorf("failed to create sheet: %w", err)
			}
		}
		if err := writeSheet(f, s.name, s.headers, s.rows, headerStyle); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", s.name, err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(w.Path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, style int) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, 18); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func summaryRows(r *model.Report) [][]interface{} {
	s := r.Summary
	status := "complete"
	if !r.Complete {
		status = "incomplete: " + r.IncompleteReason
	}
	return [][]interface{}{
		{"Run ID", r.RunID},
		{"Mode", r.Mode},
		{"Threshold", r.Threshold},
		{"Status", status},
		{"Started", r.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Elapsed", r.Elapsed().Round(time.Millisecond).String()},
		{"Records In", s.RecordsIn},
		{"Records Scoreable", s.RecordsScoreable},
		{"Records Skipped", s.RecordsSkipped},
		{"Blocks", s.Blocks},
		{"Candidate Pairs", s.CandidatePairs},
		{"Pairs Scored", s.PairsScored},
		{"Pairs Matched", s.PairsMatched},
		{"Oversized Blocks", s.OversizedBlocks},
		{"Clusters", s.Clusters},
		{"Clustered Records", s.ClusteredRecords},
	}
}

func clustersSheet(r *model.Report) (s sheetData) {
	var members []model.RecordKey
	for _, c := range r.Clusters {
		members = append(members, c.Members...)
	}
	ctxCols := contextColumns(r, members)

	s.name = SheetClusters
	s.headers = append([]string{"Cluster", "Representative", "Confidence", "Source", "ID", "Row", "Text"}, ctxCols...)
	for i, c := range r.Clusters {
		for _, m := range c.Members {
			rec := r.Records[m]
			row := []interface{}{i + 1, c.Representative.String(), c.Confidence, string(m.Source), m.ID, rec.Row, rec.Text()}
			for _, col := range ctxCols {
				row = append(row, rec.FieldValue(col))
			}
			s.rows = append(s.rows, row)
		}
	}
	return s
}

func matchesSheet(r *model.Report) (s sheetData) {
	s.name = SheetMatches
	s.headers = []string{
		"Cluster", "Left Source", "Left ID", "Left Text", "Right Source", "Right ID", "Right Text",
		"Score", "Jaccard", "Edit Similarity", "Length Ratio",
	}
	for _, m := range r.Matches {
		s.rows = append(s.rows, []interface{}{
			r.ClusterOf(m.Left) + 1,
			string(m.Left.Source), m.Left.ID, r.Records[m.Left].Text(),
			string(m.Right.Source), m.Right.ID, r.Records[m.Right].Text(),
			m.Score, m.Breakdown.Jaccard, m.Breakdown.EditDistance, m.Breakdown.LengthRatio,
		})
	}
	return s
}

func skippedRows(r *model.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Skipped))
	for _, sk := range r.Skipped {
		rows = append(rows, []interface{}{string(sk.Key.Source), sk.Key.ID, sk.Row, string(sk.Reason), sk.Detail})
	}
	return rows
}

func overflowRows(r *model.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Overflows))
	for _, o := range r.Overflows {
		rows = append(rows, []interface{}{o.Key, o.Size, o.Windows, o.PairsKept, o.PairsSkipped})
	}
	return rows
}
