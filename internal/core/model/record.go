package model

import (
	"strconv"
	"strings"
)

// SourceTag identifies which dataset a record was loaded from.
type SourceTag string

const (
	SourceA SourceTag = "A"
	SourceB SourceTag = "B"
)

// Valid reports whether the tag is one of the two known sources.
func (t SourceTag) Valid() bool {
	return t == SourceA || t == SourceB
}

type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is one input row. Fields are the comparison fields in configured
// order; Context carries passthrough columns that are reported but never scored.
type Record struct {
	ID      string    `json:"id"`
	Source  SourceTag `json:"source"`
	Fields  []Field   `json:"fields"`
	Context []Field   `json:"context,omitempty"`
	Row     int       `json:"row,omitempty"` // 1-based row in the source sheet, 0 if unknown
}

func (r Record) Key() RecordKey {
	return RecordKey{Source: r.Source, ID: r.ID}
}

// Text joins the non-empty comparison field values with " | " for display.
func (r Record) Text() string {
	parts := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		if v := strings.TrimSpace(f.Value); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " | ")
}

// FieldValue returns the value of the named comparison or context field.
func (r Record) FieldValue(name string) string {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	for _, f := range r.Context {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// RecordKey is unique across both sources of a run: ids are only unique
// within their own source.
type RecordKey struct {
	Source SourceTag `json:"source"`
	ID     string    `json:"id"`
}

func (k RecordKey) String() string {
	return string(k.Source) + ":" + k.ID
}

// CompareIDs orders ids numerically when both parse as integers and
// lexicographically otherwise. Integers sort before non-integers.
func CompareIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		// "007" and "7" are distinct ids with the same value
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// CompareKeys is the canonical pair ordering: source tag first, then id.
func CompareKeys(a, b RecordKey) int {
	if c := strings.Compare(string(a.Source), string(b.Source)); c != 0 {
		return c
	}
	return CompareIDs(a.ID, b.ID)
}

// CompareByID orders by id first and uses the source tag only as a tie-break.
// Cluster representatives are the minimum under this ordering.
func CompareByID(a, b RecordKey) int {
	if c := CompareIDs(a.ID, b.ID); c != 0 {
		return c
	}
	return strings.Compare(string(a.Source), string(b.Source))
}
