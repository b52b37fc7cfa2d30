package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRoundTripPreservesUnknownFields(t *testing.T) {
	raw := `{"id":"a1","title":"人物","question":"首相は誰？","context":"…","answers":{"text":["誰か"],"answer_start":[3]},"is_impossible":false}`

	var s Sample
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	s.SetPerturbed(FieldQuestion, "DCR", "首相は？")

	out, err := json.Marshal(s)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "人物", back["title"])
	assert.Equal(t, false, back["is_impossible"])
	assert.Equal(t, "首相は？", back["question_perturbed_DCR"])
	assert.Equal(t, "首相は誰？", back["question"])
}

func TestSampleID(t *testing.T) {
	tests := []struct {
		name string
		s    Sample
		want string
	}{
		{"string id", Sample{"id": "q-7"}, "q-7"},
		{"numeric id", Sample{"id": float64(42)}, "42"},
		{"missing id", Sample{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.ID())
		})
	}
}

func TestGoldAnswers(t *testing.T) {
	tests := []struct {
		name string
		s    Sample
		want []string
	}{
		{
			"jsquad mapping",
			Sample{"answers": map[string]any{"text": []any{"研究", "研究結果"}}},
			[]string{"研究", "研究結果"},
		},
		{
			"raw list",
			Sample{"answers": []any{"東京", "首都"}},
			[]string{"東京", "首都"},
		},
		{
			"scalar",
			Sample{"answers": "東京大学"},
			[]string{"東京大学"},
		},
		{
			"numeric scalar formatted",
			Sample{"answers": float64(3)},
			[]string{"3"},
		},
		{"absent", Sample{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.GoldAnswers())
		})
	}
}

func TestPerturbedField(t *testing.T) {
	assert.Equal(t, "question_perturbed_BT", PerturbedField("question", "BT"))
}

func TestCloneIsIndependentAtTopLevel(t *testing.T) {
	s := Sample{"id": "x", "question": "元の質問"}
	c := s.Clone()
	c.SetPerturbed(FieldQuestion, "ICR", "元のあ質問")

	_, ok := s["question_perturbed_ICR"]
	assert.False(t, ok, "clone must not leak new fields into the source")
}
