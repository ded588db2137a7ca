package model

// NormalizedRecord is the token view of a Record produced by the normalizer.
// Tokens is sorted and free of duplicates.
type NormalizedRecord struct {
	Key       RecordKey `json:"key"`
	Tokens    []string  `json:"tokens"`
	Text      string    `json:"text"`       // Tokens joined by a single space
	KeyTokens []string  `json:"key_tokens"` // tokens the record is blocked under
	// BlockingKey is the sorted join of KeyTokens. It is used only to group
	// records, never to score them.
	BlockingKey string `json:"blocking_key"`
}

func (n NormalizedRecord) Empty() bool {
	return len(n.Tokens) == 0
}

// NormalizedSet is the run-scoped lookup from record key to its normalized
// form. It is built once per run and only read afterwards.
type NormalizedSet map[RecordKey]*NormalizedRecord
