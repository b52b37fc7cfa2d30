package ports

import "context"

// FillCandidate is one ranked suggestion from a masked-language-model
// oracle, highest score first in the returned slice.
type FillCandidate struct {
	// Token is the candidate surface with any tokenizer artifacts
	// (subword markers, padding spaces) already stripped.
	Token string

	// Score is the model's confidence; only the relative order matters
	// to callers.
	Score float64
}

// FillMasker is the masked-language-model oracle used by the synonym
// replacement attack. The attack builds the masked sentence itself using
// MaskToken and asks for the top-k ranked fills.
type FillMasker interface {
	// FillMask returns up to topK ranked candidates for the single mask
	// occurrence in text.
	FillMask(ctx context.Context, text string, topK int) ([]FillCandidate, error)

	// MaskToken returns the placeholder the underlying model expects,
	// e.g. "[MASK]".
	MaskToken() string
}

// Translator is a one-directional text-to-text translation oracle.
// Back-translation composes two of these (source→pivot, pivot→source).
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Lexicon maps a phonetic reading (hiragana) to candidate surface forms.
// The homophone attack treats a missing entry as "skip this token";
// implementations must therefore return an empty slice, never an error,
// for unknown readings.
type Lexicon interface {
	Lookup(reading string) []string

	// Len reports the number of loaded entries; zero means the lexicon
	// source was unavailable and every homophone target will be skipped.
	Len() int
}

// QAPair is one (question, context) input to the QA span model.
type QAPair struct {
	Question string
	Context  string
}

// SpanPrediction is the raw oracle output for one pair: logit vectors
// over the model's fixed-length token index space plus the decoded token
// strings those indices refer to. Callers take argmax(start) to
// argmax(end)+1 and join the non-special tokens in that range.
type SpanPrediction struct {
	StartLogits []float64
	EndLogits   []float64

	// Tokens holds the model tokenizer's tokens aligned with the logit
	// vectors.
	Tokens []string

	// Special marks positions holding special tokens ([CLS], [SEP],
	// padding), which are stripped during span decoding.
	Special []bool
}

// QAModel is the opaque span-prediction oracle. Requests are batched for
// inference amortization; responses are positionally aligned with pairs.
type QAModel interface {
	PredictSpans(ctx context.Context, pairs []QAPair) ([]SpanPrediction, error)
}
