package domain

// PerturbationSpec is the immutable configuration bundle consumed by
// every attack. It is constructed once per attack instantiation and read
// by every sample; attacks never modify it.
type PerturbationSpec struct {
	// MaxPerturbs bounds the number of character edits applied to a
	// single selected token.
	MaxPerturbs int `yaml:"max_perturbs" json:"max_perturbs" validate:"min=0"`

	// MaxTargets bounds how many tokens (or token pairs, for swaps) are
	// selected per sentence. When fewer eligible targets exist, all of
	// them are taken.
	MaxTargets int `yaml:"max_targets" json:"max_targets" validate:"min=0"`

	// MinTokenLen is the length threshold applied during target
	// selection. Deletion-style edits require strictly more runes than
	// this so a non-empty remainder is guaranteed; insertion-style edits
	// accept equality.
	MinTokenLen int `yaml:"min_token_len" json:"min_token_len" validate:"min=0"`

	// POSFilter restricts targets to one part-of-speech category when
	// set (exact match, e.g. 名詞). Empty accepts every open-class token.
	POSFilter string `yaml:"pos_filter" json:"pos_filter"`
}
