package model

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2", "10", -1},
		{"10", "2", 1},
		{"10", "10", 0},
		{"7", "007", 1},
		{"9", "a1", -1},
		{"a1", "9", 1},
		{"abc", "abd", -1},
		{"-1", "0", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareIDs(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestCompareIDs_SortsMixedIDs(t *testing.T) {
	ids := []string{"b", "10", "a", "2", "1"}
	sort.Slice(ids, func(i, j int) bool { return CompareIDs(ids[i], ids[j]) < 0 })
	assert.Equal(t, []string{"1", "2", "10", "a", "b"}, ids)
}

func TestCompareKeysAndByID(t *testing.T) {
	a5 := RecordKey{Source: SourceA, ID: "5"}
	b1 := RecordKey{Source: SourceB, ID: "1"}

	assert.Equal(t, -1, CompareKeys(a5, b1))
	assert.Equal(t, 1, CompareByID(a5, b1))

	a1 := RecordKey{Source: SourceA, ID: "1"}
	assert.Equal(t, -1, CompareByID(a1, b1))
}

func TestNewCandidatePair_Canonical(t *testing.T) {
	x := RecordKey{Source: SourceA, ID: "10"}
	y := RecordKey{Source: SourceA, ID: "9"}

	p := NewCandidatePair(x, y)
	assert.Equal(t, y, p.Left)
	assert.Equal(t, x, p.Right)
	assert.Equal(t, p, NewCandidatePair(y, x))
	assert.False(t, p.CrossSource())

	q := NewCandidatePair(RecordKey{Source: SourceB, ID: "1"}, RecordKey{Source: SourceA, ID: "2"})
	assert.Equal(t, SourceA, q.Left.Source)
	assert.True(t, q.CrossSource())
}

func TestRecord_TextAndFieldValue(t *testing.T) {
	r := Record{
		ID:      "1",
		Source:  SourceA,
		Fields:  []Field{{"name", "Audit"}, {"description", " "}, {"notes", "Q3"}},
		Context: []Field{{"owner", "Finance"}},
	}

	assert.Equal(t, "Audit | Q3", r.Text())
	assert.Equal(t, "Finance", r.FieldValue("owner"))
	assert.Equal(t, "Audit", r.FieldValue("name"))
	assert.Equal(t, "", r.FieldValue("missing"))
	assert.Equal(t, "A:1", r.Key().String())
}

func TestDuplicateCluster(t *testing.T) {
	c := DuplicateCluster{Members: []RecordKey{{SourceA, "1"}, {SourceA, "2"}}}
	assert.False(t, c.CrossSource())
	assert.True(t, c.Contains(RecordKey{SourceA, "2"}))
	assert.False(t, c.Contains(RecordKey{SourceB, "2"}))

	c.Members = append(c.Members, RecordKey{SourceB, "2"})
	assert.True(t, c.CrossSource())

	r := &Report{Clusters: []DuplicateCluster{c}}
	assert.Equal(t, 0, r.ClusterOf(RecordKey{SourceB, "2"}))
	assert.Equal(t, -1, r.ClusterOf(RecordKey{SourceB, "9"}))
}
