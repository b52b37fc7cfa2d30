package evaluation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kmorishita/jamble/internal/domain"
	"github.com/kmorishita/jamble/internal/ports"
	"github.com/kmorishita/jamble/internal/testutils"
)

func TestDecodeSpan(t *testing.T) {
	tests := []struct {
		name string
		pred ports.SpanPrediction
		want string
	}{
		{
			name: "simple span",
			pred: ports.SpanPrediction{
				StartLogits: []float64{0, 5, 1},
				EndLogits:   []float64{0, 1, 5},
				Tokens:      []string{"[CLS]", "東", "京"},
				Special:     []bool{true, false, false},
			},
			want: "東京",
		},
		{
			name: "special tokens inside the span are skipped",
			pred: ports.SpanPrediction{
				StartLogits: []float64{5, 0, 0},
				EndLogits:   []float64{0, 0, 5},
				Tokens:      []string{"[CLS]", "大阪", "[SEP]"},
				Special:     []bool{true, false, true},
			},
			want: "大阪",
		},
		{
			name: "subword markers are joined",
			pred: ports.SpanPrediction{
				StartLogits: []float64{5, 0},
				EndLogits:   []float64{0, 5},
				Tokens:      []string{"東京", "##タワー"},
				Special:     []bool{false, false},
			},
			want: "東京タワー",
		},
		{
			name: "inverted span decodes to empty",
			pred: ports.SpanPrediction{
				StartLogits: []float64{0, 0, 5},
				EndLogits:   []float64{5, 0, 0},
				Tokens:      []string{"東", "京", "都"},
				Special:     []bool{false, false, false},
			},
			want: "",
		},
		{
			name: "empty logits decode to empty",
			pred: ports.SpanPrediction{},
			want: "",
		},
		{
			name: "end index clamped to token count",
			pred: ports.SpanPrediction{
				StartLogits: []float64{5, 0},
				EndLogits:   []float64{0, 0, 0, 5},
				Tokens:      []string{"東", "京"},
				Special:     []bool{false, false},
			},
			want: "東京",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeSpan(tt.pred))
		})
	}
}

func evalTagger() *testutils.ScriptedTagger {
	return testutils.NewScriptedTagger(map[string]domain.TokenSequence{
		"東京": {{Surface: "東京", POS: domain.POSNoun}},
		"大阪": {{Surface: "大阪", POS: domain.POSNoun}},
	})
}

func evalSamples() []domain.Sample {
	return []domain.Sample{
		{
			"id":       "q1",
			"question": "日本の首都は",
			"context":  "日本の首都は東京です",
			"answers":  map[string]any{"text": []any{"東京"}},
		},
		{
			"id":       "q2",
			"question": "第二の都市は",
			"context":  "第二の都市は大阪です",
			"answers":  map[string]any{"text": []any{"東京"}},
		},
	}
}

// spanFor builds a single-token prediction whose decoded span is the
// given answer.
func spanFor(answer string) ports.SpanPrediction {
	return ports.SpanPrediction{
		StartLogits: []float64{5},
		EndLogits:   []float64{5},
		Tokens:      []string{answer},
		Special:     []bool{false},
	}
}

func TestEvaluate(t *testing.T) {
	model := &testutils.ScriptedQAModel{
		Predictions: []ports.SpanPrediction{spanFor("東京"), spanFor("大阪")},
	}
	ev, err := NewEvaluator(model, evalTagger(), zap.NewNop(), Config{QuestionField: "question"})
	require.NoError(t, err)

	records, summary, err := ev.Evaluate(context.Background(), "dcr.json", "delete_char", evalSamples())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// First sample answers correctly, second does not.
	assert.Equal(t, "q1", records[0].ID)
	assert.Equal(t, 1.0, records[0].EM)
	assert.Equal(t, 1.0, records[0].F1)
	assert.Equal(t, 1.0, records[0].Fuzzy)
	assert.Equal(t, 0.0, records[1].EM)
	assert.Equal(t, 0.0, records[1].F1)

	assert.Equal(t, "dcr.json", summary.Filename)
	assert.Equal(t, "delete_char", summary.AttackType)
	assert.Equal(t, 2, summary.NumSamples)
	assert.InDelta(t, 50.0, summary.EM, 1e-9)
	assert.InDelta(t, 50.0, summary.F1, 1e-9)
}

func TestEvaluatePerturbedField(t *testing.T) {
	samples := evalSamples()
	for _, s := range samples {
		s["question_perturbed_DCR"] = "ﾍﾟｰｼﾞ"
	}
	model := &testutils.ScriptedQAModel{
		Predictions: []ports.SpanPrediction{spanFor("東京"), spanFor("大阪")},
	}
	ev, err := NewEvaluator(model, evalTagger(), zap.NewNop(),
		Config{QuestionField: "question_perturbed_DCR"})
	require.NoError(t, err)

	records, _, err := ev.Evaluate(context.Background(), "dcr.json", "delete_char", samples)
	require.NoError(t, err)
	assert.Equal(t, "ﾍﾟｰｼﾞ", records[0].Question, "the perturbed field drives inference")
}

func TestEvaluateErrors(t *testing.T) {
	model := &testutils.ScriptedQAModel{Predictions: []ports.SpanPrediction{spanFor("東京")}}

	t.Run("empty dataset", func(t *testing.T) {
		ev, err := NewEvaluator(model, evalTagger(), zap.NewNop(), Config{QuestionField: "question"})
		require.NoError(t, err)
		_, _, err = ev.Evaluate(context.Background(), "f.json", "none", nil)
		assert.ErrorIs(t, err, domain.ErrEmptyDataset)
	})

	t.Run("missing question field", func(t *testing.T) {
		ev, err := NewEvaluator(model, evalTagger(), zap.NewNop(), Config{QuestionField: "nope"})
		require.NoError(t, err)
		_, _, err = ev.Evaluate(context.Background(), "f.json", "none", evalSamples())
		assert.ErrorIs(t, err, domain.ErrMissingField)
	})

	t.Run("nil dependencies rejected", func(t *testing.T) {
		_, err := NewEvaluator(nil, evalTagger(), zap.NewNop(), Config{QuestionField: "question"})
		assert.Error(t, err)
		_, err = NewEvaluator(model, nil, zap.NewNop(), Config{QuestionField: "question"})
		assert.Error(t, err)
		_, err = NewEvaluator(model, evalTagger(), zap.NewNop(), Config{})
		assert.Error(t, err)
	})
}

func TestEvaluateBatching(t *testing.T) {
	model := &testutils.ScriptedQAModel{
		Predictions: []ports.SpanPrediction{spanFor("東京")},
	}
	ev, err := NewEvaluator(model, evalTagger(), zap.NewNop(),
		Config{QuestionField: "question", BatchSize: 1})
	require.NoError(t, err)

	records, _, err := ev.Evaluate(context.Background(), "f.json", "none", evalSamples())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "東京", records[0].Prediction)
	assert.Equal(t, "東京", records[1].Prediction)
}
