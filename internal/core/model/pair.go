package model

// CandidatePair is an unordered pair stored in canonical order:
// CompareKeys(Left, Right) < 0.
type CandidatePair struct {
	Left  RecordKey `json:"left"`
	Right RecordKey `json:"right"`
}

// NewCandidatePair puts a and b into canonical order.
func NewCandidatePair(a, b RecordKey) CandidatePair {
	if CompareKeys(b, a) < 0 {
		a, b = b, a
	}
	return CandidatePair{Left: a, Right: b}
}

// CrossSource reports whether the pair links the two datasets.
func (p CandidatePair) CrossSource() bool {
	return p.Left.Source != p.Right.Source
}

func ComparePairs(a, b CandidatePair) int {
	if c := CompareKeys(a.Left, b.Left); c != 0 {
		return c
	}
	return CompareKeys(a.Right, b.Right)
}

// Breakdown holds the component metrics behind a score, each in [0,1].
type Breakdown struct {
	Jaccard      float64 `json:"jaccard"`
	EditDistance float64 `json:"edit_distance"`
	LengthRatio  float64 `json:"length_ratio"`
}

type ScoredPair struct {
	CandidatePair
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}
