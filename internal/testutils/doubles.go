// Package testutils provides scripted test doubles for the external
// oracles: the morphological tagger, the fill-mask and translation
// models, the homophone lexicon, and the QA span model. Doubles are
// deterministic and record their calls so tests can assert interactions.
package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/kmorishita/jamble/internal/domain"
	"github.com/kmorishita/jamble/internal/ports"
)

// ScriptedTagger returns pre-analyzed token sequences for known inputs.
// Unknown inputs produce an error, which keeps tests honest about which
// sentences they exercise.
type ScriptedTagger struct {
	mu      sync.Mutex
	replies map[string]domain.TokenSequence
	calls   []string
}

// NewScriptedTagger builds a tagger double from text -> tokens mappings.
func NewScriptedTagger(replies map[string]domain.TokenSequence) *ScriptedTagger {
	return &ScriptedTagger{replies: replies}
}

// Add registers one more scripted analysis.
func (st *ScriptedTagger) Add(text string, tokens domain.TokenSequence) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.replies[text] = tokens
}

// Tokenize implements ports.Tagger.
func (st *ScriptedTagger) Tokenize(_ context.Context, text string) (domain.TokenSequence, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.calls = append(st.calls, text)
	tokens, ok := st.replies[text]
	if !ok {
		return nil, fmt.Errorf("scripted tagger: no analysis for %q", text)
	}
	out := make(domain.TokenSequence, len(tokens))
	copy(out, tokens)
	return out, nil
}

// Wakati implements ports.Tagger using the scripted token surfaces.
func (st *ScriptedTagger) Wakati(ctx context.Context, text string) ([]string, error) {
	tokens, err := st.Tokenize(ctx, text)
	if err != nil {
		return nil, err
	}
	return tokens.Surfaces(), nil
}

// Calls returns every text passed to Tokenize/Wakati, in order.
func (st *ScriptedTagger) Calls() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]string, len(st.calls))
	copy(out, st.calls)
	return out
}

// StaticFillMasker answers every FillMask call with the same ranked
// candidate list.
type StaticFillMasker struct {
	Mask       string
	Candidates []ports.FillCandidate
	Err        error

	mu    sync.Mutex
	asked []string
}

// FillMask implements ports.FillMasker.
func (m *StaticFillMasker) FillMask(_ context.Context, text string, topK int) ([]ports.FillCandidate, error) {
	m.mu.Lock()
	m.asked = append(m.asked, text)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if topK > len(m.Candidates) {
		topK = len(m.Candidates)
	}
	return m.Candidates[:topK], nil
}

// MaskToken implements ports.FillMasker.
func (m *StaticFillMasker) MaskToken() string {
	if m.Mask == "" {
		return "[MASK]"
	}
	return m.Mask
}

// Asked returns the masked sentences the double received.
func (m *StaticFillMasker) Asked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.asked))
	copy(out, m.asked)
	return out
}

// MapTranslator translates via a lookup table; unknown inputs error so
// degradation paths are exercised deliberately.
type MapTranslator struct {
	Replies map[string]string
	Err     error
}

// Translate implements ports.Translator.
func (mt *MapTranslator) Translate(_ context.Context, text string) (string, error) {
	if mt.Err != nil {
		return "", mt.Err
	}
	out, ok := mt.Replies[text]
	if !ok {
		return "", fmt.Errorf("map translator: no translation for %q", text)
	}
	return out, nil
}

// MapLexicon is an in-memory reading -> candidates lexicon.
type MapLexicon map[string][]string

// Lookup implements ports.Lexicon.
func (ml MapLexicon) Lookup(reading string) []string {
	out := make([]string, len(ml[reading]))
	copy(out, ml[reading])
	return out
}

// Len implements ports.Lexicon.
func (ml MapLexicon) Len() int { return len(ml) }

// ScriptedQAModel returns canned span predictions positionally.
type ScriptedQAModel struct {
	Predictions []ports.SpanPrediction
	Err         error
}

// PredictSpans implements ports.QAModel by cycling through the scripted
// predictions.
func (m *ScriptedQAModel) PredictSpans(_ context.Context, pairs []ports.QAPair) ([]ports.SpanPrediction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]ports.SpanPrediction, len(pairs))
	for i := range pairs {
		out[i] = m.Predictions[i%len(m.Predictions)]
	}
	return out, nil
}
