package domain

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Well-known dataset field names (JSQuAD / SQuAD-style records).
const (
	FieldID       = "id"
	FieldQuestion = "question"
	FieldContext  = "context"
	FieldAnswers  = "answers"
)

// Sample is one QA dataset record. It is modeled as an open map so that
// fields beyond the required ones (title, is_impossible, ...) survive a
// read-perturb-write round trip untouched. Attacks add exactly one new
// field per application and never mutate existing ones.
type Sample map[string]any

// ID returns the sample identifier as a string. Numeric identifiers,
// which some dataset exports use, are formatted; a missing id yields "".
func (s Sample) ID() string {
	v, ok := s[FieldID]
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		// encoding/json default for numbers.
		return fmt.Sprintf("%v", id)
	default:
		return fmt.Sprintf("%v", id)
	}
}

// Text returns the string value of the named field.
// The second return value is false when the field is absent or not a
// string.
func (s Sample) Text(field string) (string, bool) {
	v, ok := s[field]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Clone returns a shallow copy of the sample. Field values are shared;
// callers only ever add new top-level keys, so sharing is safe.
func (s Sample) Clone() Sample {
	return maps.Clone(s)
}

// PerturbedField names the output field for an attack applied to the
// given source field, e.g. ("question", "DCR") -> "question_perturbed_DCR".
func PerturbedField(field, suffix string) string {
	return field + "_perturbed_" + suffix
}

// SetPerturbed stores the perturbed text under the attack's output field.
func (s Sample) SetPerturbed(field, suffix, text string) {
	s[PerturbedField(field, suffix)] = text
}

// GoldAnswers normalizes the answers field to a flat list of strings.
// Three encodings occur in the wild: a {"text": [...]} mapping (JSQuAD),
// a raw list, and a bare scalar. Anything else is formatted as a single
// answer rather than rejected.
func (s Sample) GoldAnswers() []string {
	raw, ok := s[FieldAnswers]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case map[string]any:
		texts, ok := v["text"].([]any)
		if !ok {
			return nil
		}
		return toStrings(texts)
	case []any:
		return toStrings(v)
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case string:
		return []string{v}
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}

func toStrings(vs []any) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if str, ok := v.(string); ok {
			out = append(out, str)
		} else {
			out = append(out, fmt.Sprintf("%v", v))
		}
	}
	return out
}
