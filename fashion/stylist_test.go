package fashion

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItem(id string, category Category, colors []string, styles ...Style) ClassifiedItem {
	notes := id
	return ClassifiedItem{
		ID:        id,
		SourceRef: "content://closet/" + id,
		Category:  category,
		Styles:    styles,
		Notes:     &notes,
		ColorTags: colors,
	}
}

func casualCloset() []ClassifiedItem {
	return []ClassifiedItem{
		testItem("top-1", Tops, []string{"White"}, Casual),
		testItem("top-2", Tops, []string{"Black"}, Casual, Classic),
		testItem("jeans-1", Bottoms, []string{"Baby blue"}, Casual),
		testItem("jeans-2", Bottoms, []string{"Navy"}, Casual),
		testItem("sneakers", Shoes, []string{"White"}, Casual, Sporty),
		testItem("trench", Outerwear, []string{"Beige"}, Classic),
	}
}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestGenerateLooksEmptyWardrobe(t *testing.T) {
	assert.Empty(t, GenerateLooks(seeded(1), nil, Casual, nil, 5))
}

func TestGenerateLooksOnlyTops(t *testing.T) {
	items := []ClassifiedItem{
		testItem("a", Tops, []string{"White"}, Casual),
		testItem("b", Tops, []string{"Black"}, Casual),
	}
	assert.Empty(t, GenerateLooks(seeded(1), items, Casual, nil, 5))
}

func TestGenerateLooksNoItemsForStyle(t *testing.T) {
	assert.Empty(t, GenerateLooks(seeded(1), casualCloset(), Glamour, nil, 5))
}

func TestGenerateLooksTopBottomShoes(t *testing.T) {
	looks := GenerateLooks(seeded(42), casualCloset(), Casual, nil, 5)
	require.Len(t, looks, 4)

	ids := map[string]bool{}
	for _, look := range looks {
		assert.Equal(t, Casual, look.Style)
		assert.Len(t, look.Pieces, 3)
		assert.Equal(t, LookID(look.Pieces), look.ID)
		assert.False(t, ids[look.ID], "duplicated look %s", look.ID)
		ids[look.ID] = true
		for _, piece := range look.Pieces {
			assert.True(t, piece.HasStyle(Casual))
			assert.NotEqual(t, "trench", piece.ID)
		}
		assert.LessOrEqual(t, len(look.Highlights), 4)
		assert.LessOrEqual(t, len(look.Advantages), 4)
	}
}

func TestGenerateLooksLimit(t *testing.T) {
	assert.Len(t, GenerateLooks(seeded(3), casualCloset(), Casual, nil, 2), 2)
	assert.Len(t, GenerateLooks(seeded(3), casualCloset(), Casual, nil, 0), 4)
}

func TestGenerateLooksReproducibleWithSeed(t *testing.T) {
	first := GenerateLooks(seeded(7), casualCloset(), Casual, nil, 3)
	second := GenerateLooks(seeded(7), casualCloset(), Casual, nil, 3)
	assert.Equal(t, first, second)
}

func TestGenerateLooksDressWithLayers(t *testing.T) {
	items := []ClassifiedItem{
		testItem("dress", Dresses, []string{"Red"}, Glamour),
		testItem("heels", Shoes, []string{"Gold"}, Glamour),
		testItem("fur", Outerwear, []string{"Black"}, Glamour),
		testItem("clutch", Accessories, []string{"Silver"}, Glamour),
	}
	looks := GenerateLooks(seeded(1), items, Glamour, nil, 5)
	require.Len(t, looks, 1)
	assert.Len(t, looks[0].Pieces, 4)
	assert.Equal(t, "clutch,dress,fur,heels", looks[0].ID)
	assert.Equal(t, "Pairing dress, heels, fur, clutch tells a story of evening shine.", looks[0].Narrative)
}

func TestDescribeHighlightsWithoutProfile(t *testing.T) {
	closet := casualCloset()
	pieces := []ClassifiedItem{closet[0], closet[2], closet[4]}
	highlights, advantages := DescribeHighlights(pieces, nil)

	assert.Equal(t, []string{"Colors: White · Baby blue", "Top White × shoes White"}, highlights)
	assert.Equal(t, []string{"Versatile for many occasions", "Color accent: White"}, advantages)
}

func TestDescribeHighlightsWithProfile(t *testing.T) {
	closet := casualCloset()
	pieces := []ClassifiedItem{closet[1], closet[3], closet[4]}
	profile := AnalyzeSelfie("selfie.jpg")
	highlights, advantages := DescribeHighlights(pieces, &profile)

	assert.Equal(t, []string{
		"Colors: Black · Navy · White",
		"Top Black × shoes White",
		"Eyes " + profile.EyeColor,
		"Hair " + profile.HairTone,
	}, highlights)
	assert.Equal(t, []string{
		"Brings out " + profile.EyeColor + " eyes",
		"Works with " + profile.HairTone + " hair",
		"Balances a " + profile.FaceShape + " face shape",
		"Consistent with the " + profile.Palette.Name + " palette",
	}, advantages)
}

func TestDescribeHighlightsNeutralFallback(t *testing.T) {
	pieces := []ClassifiedItem{
		{ID: "a", Category: Tops, Styles: []Style{Casual}},
		{ID: "b", Category: Bottoms, Styles: []Style{Casual}},
	}
	highlights, advantages := DescribeHighlights(pieces, nil)
	assert.Equal(t, []string{"Colors: Neutral"}, highlights)
	assert.Contains(t, advantages, "Color accent: Neutral")
}

func TestNarrativeFallsBackToCategories(t *testing.T) {
	pieces := []ClassifiedItem{
		{ID: "a", Category: Tops, Styles: []Style{Casual}, ColorTags: []string{"White"}},
		{ID: "b", Category: Bottoms, Styles: []Style{Casual}, ColorTags: []string{"Navy"}},
		{ID: "c", Category: Shoes, Styles: []Style{Casual}, ColorTags: []string{"White"}},
	}
	look := RebuildLook("", pieces, Casual, nil)
	assert.Equal(t, "Pairing tops, bottoms, shoes tells a story of everyday comfort.", look.Narrative)
	assert.Equal(t, "a,b,c", look.ID)
}

func TestRebuildLookKeepsId(t *testing.T) {
	closet := casualCloset()
	look := RebuildLook("top-1,jeans-1,sneakers", []ClassifiedItem{closet[1], closet[2], closet[4]}, Casual, nil)
	assert.Equal(t, "top-1,jeans-1,sneakers", look.ID)
	assert.Equal(t, "top-2", look.Pieces[0].ID)
}

func TestAvailableStyles(t *testing.T) {
	assert.Equal(t, []Style{Classic, Casual, Sporty}, AvailableStyles(casualCloset()))
	assert.Empty(t, AvailableStyles(nil))
}
