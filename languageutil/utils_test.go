package languageutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapitalizeFirst(t *testing.T) {
	assert.Equal(t, "Żakiet welurowy", CapitalizeFirst("żakiet welurowy"))
	assert.Equal(t, "Blue koszula", CapitalizeFirst("blue koszula"))
	assert.Equal(t, "", CapitalizeFirst(""))
}

func TestLowerKeepsPolishLetters(t *testing.T) {
	assert.Equal(t, "spódnica złota", Lower("SPÓDNICA Złota"))
	assert.Equal(t, "tops", LowerFirst("Tops"))
}

func TestCountMatches(t *testing.T) {
	keywords := []string{"jeans", "denim", "basic"}
	assert.Equal(t, 2, CountMatches("basic denim top", keywords))
	assert.True(t, ContainsAny("basic denim top", keywords))
	assert.False(t, ContainsAny("random", keywords))
}
