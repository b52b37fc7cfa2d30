package domain

// PredictionRecord is the detailed per-sample evaluation log entry.
// Records are created once during evaluation and never re-derived;
// file-level results are produced by summing them.
type PredictionRecord struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Prediction   string   `json:"prediction"`
	GroundTruths []string `json:"ground_truths"`
	EM           float64  `json:"em"`
	F1           float64  `json:"f1"`

	// Fuzzy is an auxiliary Levenshtein similarity against the best
	// ground truth. It is logged for analysis only and does not feed
	// the headline EM/F1 aggregates.
	Fuzzy float64 `json:"fuzzy,omitempty"`
}

// EvalSummary is the per-file aggregate written to the results report.
// EM and F1 are percentages averaged over the file's samples.
type EvalSummary struct {
	Filename   string  `json:"filename"`
	AttackType string  `json:"attack_type"`
	EM         float64 `json:"em"`
	F1         float64 `json:"f1"`
	NumSamples int     `json:"num_samples"`
}
