package model

import "time"

type Summary struct {
	RecordsIn        int `json:"records_in"`
	RecordsScoreable int `json:"records_scoreable"`
	RecordsSkipped   int `json:"records_skipped"`
	Blocks           int `json:"blocks"`
	CandidatePairs   int `json:"candidate_pairs"`
	PairsScored      int `json:"pairs_scored"`
	PairsMatched     int `json:"pairs_matched"`
	OversizedBlocks  int `json:"oversized_blocks"`
	Clusters         int `json:"clusters"`
	ClusteredRecords int `json:"clustered_records"`
}

// Report is everything a sink receives for one run.
type Report struct {
	RunID      string    `json:"run_id"`
	Mode       string    `json:"mode"`
	Threshold  float64   `json:"threshold"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Complete is false when the run stopped early; Clusters then only
	// reflect the pairs scored before the stop.
	Complete         bool   `json:"complete"`
	IncompleteReason string `json:"incomplete_reason,omitempty"`

	Clusters  []DuplicateCluster `json:"clusters"`
	Matches   []ScoredPair       `json:"matches"`
	Skipped   []SkippedRecord    `json:"skipped"`
	Overflows []BlockOverflow    `json:"overflows"`
	Summary   Summary            `json:"summary"`

	// Records gives sinks the original rows for display.
	Records map[RecordKey]Record `json:"-"`
}

func (r *Report) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ClusterOf returns the index of the cluster holding key, or -1.
func (r *Report) ClusterOf(key RecordKey) int {
	for i, c := range r.Clusters {
		if c.Contains(key) {
			return i
		}
	}
	return -1
}
