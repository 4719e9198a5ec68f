package fashion

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSelfieIdempotent(t *testing.T) {
	ref := "content://media/external/images/selfie_2024.jpg"
	assert.Equal(t, AnalyzeSelfie(ref), AnalyzeSelfie(ref))
}

func TestAnalyzeSelfieTableSelection(t *testing.T) {
	for _, ref := range []string{"a", "selfie.jpg", "content://selfie/42", ""} {
		profile := AnalyzeSelfie(ref)
		hash := xxhash.Sum64String(ref)

		assert.Equal(t, ref, profile.SelfieRef)
		assert.Equal(t, palettes[hash%4].Name, profile.Palette.Name)
		assert.Equal(t, eyeColors[hash%5], profile.EyeColor)
		assert.Equal(t, hairTones[(hash/3)%6], profile.HairTone)
		assert.Equal(t, skinTones[(hash/5)%5], profile.SkinTone)
		assert.Equal(t, faceShapes[(hash/7)%5], profile.FaceShape)
	}
}

func TestPaletteTables(t *testing.T) {
	require.GreaterOrEqual(t, len(palettes), 4)
	for _, palette := range palettes {
		assert.NotEmpty(t, palette.Name)
		assert.NotEmpty(t, palette.Description)
		assert.True(t, len(palette.Colors) >= 3 && len(palette.Colors) <= 4)
		assert.True(t, len(palette.Suggestions) >= 2 && len(palette.Suggestions) <= 3)
	}
	assert.Len(t, eyeColors, 5)
	assert.Len(t, hairTones, 6)
	assert.Len(t, skinTones, 5)
	assert.Len(t, faceShapes, 5)
}

func TestPaletteByName(t *testing.T) {
	palette, ok := PaletteByName("Warm autumn")
	require.True(t, ok)
	assert.Equal(t, "#E6B980", palette.Colors[0])

	palette.Colors[0] = "#000000"
	again, _ := PaletteByName("Warm autumn")
	assert.Equal(t, "#E6B980", again.Colors[0])

	_, ok = PaletteByName("Neon")
	assert.False(t, ok)
}

func TestKeywordSummary(t *testing.T) {
	profile := AnalyzeSelfie("selfie.jpg")
	summary := profile.KeywordSummary()
	require.Len(t, summary, 3)
	assert.Equal(t, "Palette "+profile.Palette.Name, summary[2])
}
