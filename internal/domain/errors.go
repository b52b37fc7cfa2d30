package domain

import "errors"

// Sentinel errors shared across the pipeline. Only genuinely fatal
// conditions live here; "no eligible target" situations are not errors
// anywhere in the system — they degrade to returning the input unchanged.
var (
	// ErrMissingField indicates the dataset lacks the column an attack
	// or evaluation run was configured to operate on. This halts the run
	// before any processing.
	ErrMissingField = errors.New("required dataset field not found")

	// ErrEmptyDataset indicates an input file parsed to zero samples.
	ErrEmptyDataset = errors.New("dataset contains no samples")
)
