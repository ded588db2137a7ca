package model

// DuplicateCluster is a connected group of records linked by matched pairs.
type DuplicateCluster struct {
	Representative RecordKey   `json:"representative"` // smallest member by CompareByID
	Members        []RecordKey `json:"members"`        // sorted by CompareByID, len >= 2
	// Confidence is the lowest score among the matched edges inside the
	// cluster. Members joined transitively may score lower against each other.
	Confidence float64 `json:"confidence"`
	Edges      int     `json:"edges"`
}

// CrossSource reports whether the cluster holds members of both datasets.
func (c DuplicateCluster) CrossSource() bool {
	for _, m := range c.Members[1:] {
		if m.Source != c.Members[0].Source {
			return true
		}
	}
	return false
}

func (c DuplicateCluster) Contains(key RecordKey) bool {
	for _, m := range c.Members {
		if m == key {
			return true
		}
	}
	return false
}

type SkipReason string

const (
	SkipMissingID   SkipReason = "missing_id"
	SkipDuplicateID SkipReason = "duplicate_id"
	SkipUnscoreable SkipReason = "unscoreable"
)

// SkippedRecord is a row that was excluded from scoring, with the reason.
type SkippedRecord struct {
	Key    RecordKey  `json:"key"`
	Row    int        `json:"row,omitempty"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// BlockOverflow describes a block larger than the configured cap that was
// paired within windows instead of in full.
type BlockOverflow struct {
	Key          string `json:"key"`
	Size         int    `json:"size"`
	Windows      int    `json:"windows"`
	PairsKept    int    `json:"pairs_kept"`
	PairsSkipped int    `json:"pairs_skipped"`
}
