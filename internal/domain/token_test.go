package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSequenceJoin(t *testing.T) {
	ts := TokenSequence{
		{Surface: "東京", POS: POSNoun},
		{Surface: "で", POS: POSParticle},
		{Surface: "発表", POS: POSNoun},
		{Surface: "さ", POS: POSVerb},
		{Surface: "れ", POS: POSAuxiliaryVerb},
		{Surface: "た", POS: POSAuxiliaryVerb},
	}

	assert.Equal(t, "東京で発表された", ts.Join())
	assert.Equal(t, []string{"東京", "で", "発表", "さ", "れ", "た"}, ts.Surfaces())
}

func TestSurfacesReturnsFreshSlice(t *testing.T) {
	ts := TokenSequence{{Surface: "質問", POS: POSNoun}}
	got := ts.Surfaces()
	got[0] = "改変"
	assert.Equal(t, "質問", ts[0].Surface, "token surfaces are immutable")
}
