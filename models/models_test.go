package models

import (
	"testing"
	"time"

	"dressupapi/fashion"
	"dressupapi/suitcase"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closetFixture() []fashion.ClassifiedItem {
	return []fashion.ClassifiedItem{
		fashion.ClassifyLabel("closet/1", "biala-koszula.jpg"),
		fashion.ClassifyLabel("closet/2", "jeansy-granatowe.jpg"),
		fashion.ClassifyLabel("closet/3", "sneakersy.jpg"),
	}
}

func TestClothingRoundTrip(t *testing.T) {
	item := fashion.ClassifyLabel("closet/ab12", "czarna-ramoneska.jpg")
	record := ClothingFromItem(item, 7, "czarna-ramoneska.jpg")

	assert.Equal(t, uint(7), record.OwnerID)
	assert.Equal(t, "draft", record.ImageStatus)
	assert.Equal(t, item, record.ToItem())
}

func TestClothingDegradesUnknownValues(t *testing.T) {
	record := Clothing{
		ItemID:    "x",
		SourceRef: "closet/x",
		Category:  fashion.Category("hats"),
		Styles:    pq.StringArray{"grunge"},
		ColorTags: pq.StringArray{" "},
	}
	item := record.ToItem()

	assert.Equal(t, fashion.Unknown, item.Category)
	assert.Equal(t, fashion.CategoryFallbackStyles(fashion.Unknown), item.Styles)
	assert.Equal(t, []string{fashion.NeutralColor}, item.ColorTags)
}

func TestClothingApplyKeepsIdentity(t *testing.T) {
	record := ClothingFromItem(fashion.ClassifyLabel("closet/1", "IMG_1.jpg"), 1, "IMG_1.jpg")
	record.Apply(fashion.ClassifyLabel("closet/other", "sukienka.jpg"))

	item := record.ToItem()
	assert.Equal(t, "closet/1", item.SourceRef)
	assert.Equal(t, fashion.Dresses, item.Category)
}

func TestDecodeLooks(t *testing.T) {
	closet := closetFixture()
	look := fashion.RebuildLook("", closet, fashion.Casual, nil)
	records := []StoredLook{
		StoredLookFrom(look, 1),
		{LookID: "stale", Style: "casual", PieceIDs: pq.StringArray{closet[0].ID, "gone"}},
		{LookID: "bad-style", Style: "grunge", PieceIDs: pq.StringArray{closet[0].ID, closet[1].ID}},
		{LookID: "bare", Style: "classic", PieceIDs: pq.StringArray{closet[1].ID, closet[2].ID}},
	}

	looks := DecodeLooks(records, closet)
	require.Len(t, looks, 2)
	assert.Equal(t, look, looks[0])
	assert.Equal(t, "bare", looks[1].ID)
	assert.Equal(t, fashion.Classic, looks[1].Style)
	assert.Equal(t, []string{}, looks[1].Highlights)
	assert.Equal(t, []string{}, looks[1].Advantages)
}

func TestPruneCalendar(t *testing.T) {
	closet := closetFixture()
	look := fashion.RebuildLook("", closet, fashion.Casual, nil)
	entries := []CalendarEntry{
		{Date: "2025-03-04", LookID: look.ID},
		{Date: "2025-03-05", LookID: "deleted"},
	}
	kept, stale := PruneCalendar(entries, []fashion.StyledLook{look})

	assert.Equal(t, []CalendarEntry{entries[0]}, kept)
	assert.Equal(t, []CalendarEntry{entries[1]}, stale)
	assert.Equal(t, map[string]string{"2025-03-04": look.ID}, CalendarMap(kept))
}

func TestStoredProfileRoundTrip(t *testing.T) {
	profile := fashion.AnalyzeSelfie("selfies/1/me.jpg")
	decoded := StoredProfileFrom(profile, 3).Decode()
	require.NotNil(t, decoded)
	assert.Equal(t, profile, *decoded)
}

func TestStoredProfileUnknownPalette(t *testing.T) {
	record := StoredProfileFrom(fashion.AnalyzeSelfie("me.jpg"), 3)
	record.PaletteName = "Neon"
	assert.Nil(t, record.Decode())

	record.PaletteName = ""
	assert.Nil(t, record.Decode())
}

func TestStoredTravelPlan(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	plan := &suitcase.TravelPlan{
		ID:           "plan-1",
		Location:     suitcase.GeoLocation{Name: "Gdańsk", Admin1: "Pomerania", Country: "Poland"},
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 2),
		Activities:   []string{"Daily activity"},
		ClimateNotes: []string{"Nights can be chilly, add a light warm layer to the suitcase."},
		ShoppingTips: []string{},
	}
	record, err := NewStoredTravelPlan(plan, 9)
	require.NoError(t, err)
	assert.Equal(t, PlanDraft, record.Status)
	assert.Equal(t, "Gdańsk, Pomerania, Poland", record.Location)

	decoded, err := record.Plan()
	require.NoError(t, err)
	assert.Equal(t, plan.ID, decoded.ID)
	assert.True(t, plan.StartDate.Equal(decoded.StartDate))
	assert.Equal(t, plan.ClimateNotes, decoded.ClimateNotes)

	record.Payload = "{"
	_, err = record.Plan()
	assert.Error(t, err)
}

func TestHasActiveSubscription(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	pro := string(Pro)
	free := string(Free)

	assert.False(t, UserAccount{}.HasActiveSubscription(now))
	assert.False(t, UserAccount{Subscription: &free}.HasActiveSubscription(now))
	assert.True(t, UserAccount{Subscription: &pro, ExpirationDate: &future}.HasActiveSubscription(now))
	assert.False(t, UserAccount{Subscription: &pro, ExpirationDate: &past}.HasActiveSubscription(now))
}

func TestValidatePlatformRaw(t *testing.T) {
	assert.True(t, ValidatePlatformRaw("ios"))
	assert.False(t, ValidatePlatformRaw("iosx"))
	assert.False(t, ValidatePlatformRaw("windows"))
}

func TestClothingKeepsKnownStylesOnly(t *testing.T) {
	record := Clothing{ItemID: "y", SourceRef: "closet/y", Category: fashion.Tops, Styles: pq.StringArray{"grunge", "rock", "", "boho"}}
	assert.Equal(t, []fashion.Style{fashion.Rock, fashion.Boho}, record.ToItem().Styles)
}
