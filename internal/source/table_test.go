package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/core/model"
)

func worklistConfig() config.SourceConfig {
	return config.SourceConfig{
		IDColumn:     "ID",
		Fields:       []string{"Collaboration Opportunity Name", "Collaboration Idea Summary"},
		Context:      []string{"Assigned to", "Status"},
		Placeholders: []string{"TBD", "(blank)"},
	}
}

func TestTableRecords(t *testing.T) {
	tbl := &Table{
		Name:   "worklist.xlsx",
		Header: []string{" id ", "collaboration opportunity name", "COLLABORATION IDEA SUMMARY", "Assigned To", "Status"},
		Rows: [][]string{
			{"1", "Customer Risk Dashboard", "Risk KPIs", "Dana", "Open"},
			{"2", "Vendor Tracker", "TBD", "(blank)"},
		},
	}

	batch, err := tbl.Records(model.SourceA, worklistConfig(), nil)
	require.NoError(t, err)
	require.Len(t, batch.Records, 2)
	assert.Empty(t, batch.Skipped)

	r := batch.Records[0]
	assert.Equal(t, "1", r.ID)
	assert.Equal(t, model.SourceA, r.Source)
	assert.Equal(t, 2, r.Row)
	assert.Equal(t, []model.Field{
		{Name: "Collaboration Opportunity Name", Value: "Customer Risk Dashboard"},
		{Name: "Collaboration Idea Summary", Value: "Risk KPIs"},
	}, r.Fields)
	assert.Equal(t, "Dana", r.FieldValue("Assigned to"))

	ragged := batch.Records[1]
	assert.Equal(t, "", ragged.Fields[1].Value, "placeholder reads as empty")
	assert.Equal(t, "", ragged.FieldValue("Assigned to"))
	assert.Equal(t, "", ragged.FieldValue("Status"))
}

func TestTableRecords_SkipsAndBlankRows(t *testing.T) {
	tbl := &Table{
		Name:   "worklist.csv",
		Header: []string{"ID", "Collaboration Opportunity Name", "Collaboration Idea Summary"},
		Rows: [][]string{
			{"1", "Audit", ""},
			{"", "   ", ""},
			{"", "Orphan row", ""},
			{"3", "TBD", "(Blank)"},
			{},
			{"4", "", "Summary only"},
		},
	}

	batch, err := tbl.Records(model.SourceB, worklistConfig(), nil)
	require.NoError(t, err)

	require.Len(t, batch.Records, 2)
	assert.Equal(t, "1", batch.Records[0].ID)
	assert.Equal(t, "4", batch.Records[1].ID)
	assert.Equal(t, 7, batch.Records[1].Row)

	require.Len(t, batch.Skipped, 2)
	assert.Equal(t, model.SkipMissingID, batch.Skipped[0].Reason)
	assert.Equal(t, 4, batch.Skipped[0].Row)
	assert.Equal(t, model.SkipUnscoreable, batch.Skipped[1].Reason)
	assert.Equal(t, "all comparison fields empty", batch.Skipped[1].Detail)
	assert.Equal(t, model.RecordKey{Source: model.SourceB, ID: "3"}, batch.Skipped[1].Key)
}

func TestTableRecords_FillDown(t *testing.T) {
	cfg := config.SourceConfig{
		IDColumn: "id",
		Fields:   []string{"name"},
		Context:  []string{"division"},
		FillDown: []string{"division"},
	}
	tbl := &Table{
		Header: []string{"id", "name", "division"},
		Rows: [][]string{
			{"1", "Audit", "Finance"},
			{"2", "Payroll", ""},
			{"", "", ""},
			{"3", "Hiring", "HR"},
			{"4", "Onboarding"},
		},
	}

	batch, err := tbl.Records(model.SourceB, cfg, nil)
	require.NoError(t, err)

	var divisions []string
	for _, r := range batch.Records {
		divisions = append(divisions, r.FieldValue("division"))
	}
	assert.Equal(t, []string{"Finance", "Finance", "HR", "HR"}, divisions)
}

func TestTableRecords_MissingColumns(t *testing.T) {
	tbl := &Table{Name: "sheet", Header: []string{"ID", "Name"}}

	_, err := tbl.Records(model.SourceA, config.SourceConfig{IDColumn: "Key", Fields: []string{"Name"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `id column "Key"`)

	_, err = tbl.Records(model.SourceA, config.SourceConfig{IDColumn: "ID", Fields: []string{"Summary"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `comparison column "Summary"`)

	// unknown context columns are tolerated
	_, err = tbl.Records(model.SourceA, config.SourceConfig{IDColumn: "ID", Fields: []string{"Name"}, Context: []string{"Owner"}}, nil)
	assert.NoError(t, err)
}
