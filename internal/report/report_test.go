package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agenthands/dupscan/internal/core/model"
)

func sampleReport() *model.Report {
	a1 := model.RecordKey{Source: model.SourceA, ID: "1"}
	a2 := model.RecordKey{Source: model.SourceA, ID: "2"}
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	return &model.Report{
		RunID:      "run-1",
		Mode:       "self",
		Threshold:  0.8,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Complete:   true,
		Clusters: []model.DuplicateCluster{
			{Representative: a1, Members: []model.RecordKey{a1, a2}, Confidence: 1, Edges: 1},
		},
		Matches: []model.ScoredPair{
			{CandidatePair: model.NewCandidatePair(a1, a2), Score: 1, Breakdown: model.Breakdown{Jaccard: 1, EditDistance: 1, LengthRatio: 1}},
		},
		Skipped: []model.SkippedRecord{
			{Key: model.RecordKey{Source: model.SourceA, ID: "3"}, Row: 4, Reason: model.SkipUnscoreable},
		},
		Overflows: []model.BlockOverflow{{Key: "report", Size: 500, Windows: 3, PairsKept: 44750, PairsSkipped: 80000}},
		Summary:   model.Summary{RecordsIn: 3, Clusters: 1, ClusteredRecords: 2},
		Records: map[model.RecordKey]model.Record{
			a1: {ID: "1", Source: model.SourceA, Row: 2,
				Fields:  []model.Field{{Name: "name", Value: "Customer Risk Dashboard - Compliance"}},
				Context: []model.Field{{Name: "Status", Value: "Open"}}},
			a2: {ID: "2", Source: model.SourceA, Row: 3,
				Fields: []model.Field{{Name: "name", Value: "Customer Risk Dashboard Compliance"}}},
		},
	}
}

func TestNew(t *testing.T) {
	w, err := New("out.xlsx", nil)
	require.NoError(t, err)
	assert.IsType(t, &ExcelWriter{}, w)

	w, err = New("out.JSON", nil)
	require.NoError(t, err)
	assert.IsType(t, &JSONWriter{}, w)

	var buf bytes.Buffer
	w, err = New("-", &buf)
	require.NoError(t, err)
	assert.Equal(t, &buf, w.(*JSONWriter).W)

	_, err = New("out.pdf", nil)
	assert.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "dupscan-analysis-20240301.xlsx", DefaultPath(time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)))
}

func TestExcelWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, (&ExcelWriter{Path: path}).Write(context.Background(), sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetClusters, SheetMatches, SheetSkipped, SheetOverflows}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Run ID", "run-1"}, summary[1])
	assert.Equal(t, []string{"Status", "complete"}, summary[4])

	clusters, err := f.GetRows(SheetClusters)
	require.NoError(t, err)
	require.Len(t, clusters, 3)
	assert.Equal(t, "Status", clusters[0][7])
	assert.Equal(t, "A:1", clusters[1][1])
	assert.Equal(t, "Customer Risk Dashboard - Compliance", clusters[1][6])
	assert.Equal(t, "Open", clusters[1][7])

	matches, err := f.GetRows(SheetMatches)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "1", matches[1][0])
	assert.Equal(t, "Customer Risk Dashboard Compliance", matches[1][6])

	skipped, err := f.GetRows(SheetSkipped)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "3", "4", "unscoreable"}, skipped[1])

	overflows, err := f.GetRows(SheetOverflows)
	require.NoError(t, err)
	assert.Equal(t, []string{"report", "500", "3", "44750", "80000"}, overflows[1])
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONWriter{W: &buf}).Write(context.Background(), sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "self", got["mode"])
	assert.Equal(t, true, got["complete"])
	assert.NotContains(t, got, "Records")
	assert.Len(t, got["clusters"], 1)
}

func TestJSONWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, (&JSONWriter{Path: path}).Write(context.Background(), sampleReport()))

	w, err := New(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, w.(*JSONWriter).Path)
}

type failingCloser struct {
	bytes.Buffer
}

func (f *failingCloser) Close() error { return errors.New("disk full") }

func TestJSONWriter_CloseError(t *testing.T) {
	var file failingCloser
	orig := createFile
	createFile = func(string) (io.WriteCloser, error) { return &file, nil }
	defer func() { createFile = orig }()

	err := (&JSONWriter{Path: "report.json"}).Write(context.Background(), sampleReport())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, file.String(), `"run_id": "run-1"`)
}
