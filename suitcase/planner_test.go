package suitcase

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"dressupapi/fashion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeForecasts struct {
	forecasts []DailyForecast
	err       error
	calls     int
}

func (f *fakeForecasts) FetchForecast(ctx context.Context, location GeoLocation, start, end time.Time) ([]DailyForecast, error) {
	f.calls++
	return f.forecasts, f.err
}

type blockingForecasts struct{}

func (blockingForecasts) FetchForecast(ctx context.Context, location GeoLocation, start, end time.Time) ([]DailyForecast, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

var tripStart = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func forecastDays(count int, low, high float64, rain int) []DailyForecast {
	days := make([]DailyForecast, 0, count)
	for i := 0; i < count; i++ {
		days = append(days, DailyForecast{
			Date:                     tripStart.AddDate(0, 0, i),
			MinTemperature:           low,
			MaxTemperature:           high,
			PrecipitationProbability: rain,
		})
	}
	return days
}

func piece(id string, category fashion.Category, styles ...fashion.Style) fashion.ClassifiedItem {
	notes := id
	return fashion.ClassifiedItem{
		ID:        id,
		SourceRef: "content://closet/" + id,
		Category:  category,
		Styles:    styles,
		Notes:     &notes,
		ColorTags: []string{"White"},
	}
}

func travelCloset(styles ...fashion.Style) []fashion.ClassifiedItem {
	return []fashion.ClassifiedItem{
		piece("top-1", fashion.Tops, styles...),
		piece("top-2", fashion.Tops, styles...),
		piece("top-3", fashion.Tops, styles...),
		piece("chinos", fashion.Bottoms, styles...),
		piece("jeans", fashion.Bottoms, styles...),
		piece("loafers", fashion.Shoes, styles...),
		piece("sneakers", fashion.Shoes, styles...),
	}
}

func seededPlanner(provider ForecastProvider) *Planner {
	planner := NewPlanner(provider)
	planner.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(11)) }
	planner.Now = func() time.Time { return tripStart.Add(-48 * time.Hour) }
	return planner
}

func request(days int, closet []fashion.ClassifiedItem, activities ...TravelActivity) PlanRequest {
	return PlanRequest{
		Location:   GeoLocation{Name: "Lisbon", Country: "Portugal", Latitude: 38.72, Longitude: -9.14},
		StartDate:  tripStart,
		EndDate:    tripStart.AddDate(0, 0, days-1),
		Activities: activities,
		Closet:     closet,
	}
}

func TestPrepareFiveDayTrip(t *testing.T) {
	provider := &fakeForecasts{forecasts: forecastDays(5, 8, 16, 10)}
	plan, err := seededPlanner(provider).Prepare(context.Background(), request(5, travelCloset(fashion.Casual)))
	require.NoError(t, err)
	require.NotNil(t, plan)

	assert.Equal(t, 1, provider.calls)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, tripStart.Add(-48*time.Hour), plan.CreatedAt)
	assert.Equal(t, []string{"Daily activity"}, plan.Activities)
	assert.Equal(t, "3 Mar – 7 Mar", plan.DateRange())
	require.Len(t, plan.PackingSuggestions, 5)

	ids := map[string]bool{}
	for i, suggestion := range plan.PackingSuggestions {
		if i > 0 {
			assert.True(t, suggestion.Date.After(plan.PackingSuggestions[i-1].Date))
		}
		require.NotNil(t, suggestion.Look)
		assert.False(t, ids[suggestion.Look.ID], "look %s used twice", suggestion.Look.ID)
		ids[suggestion.Look.ID] = true
		assert.Equal(t, fashion.Casual, suggestion.Look.Style)
		assert.Equal(t, "Daily activity", suggestion.ActivityName)
		assert.Equal(t, []string{"Activity: Daily activity", "Layers for changeable weather"}, suggestion.ContextHighlights)
		assert.Nil(t, suggestion.Contingency)
	}
	assert.Equal(t, "3 Mar", plan.PackingSuggestions[0].DisplayDate)
	assert.Equal(t, "8.0°C / 16.0°C • Rain: 10%", plan.PackingSuggestions[0].ForecastSummary)
	assert.Equal(t, []string{"Nights can be chilly, add a light warm layer to the suitcase."}, plan.ClimateNotes)
	assert.Empty(t, plan.ShoppingTips)
}

func TestPrepareRainyColdDay(t *testing.T) {
	provider := &fakeForecasts{forecasts: forecastDays(1, 0, 6, 80)}
	plan, err := seededPlanner(provider).Prepare(context.Background(), request(1, travelCloset(fashion.Casual)))
	require.NoError(t, err)
	require.Len(t, plan.PackingSuggestions, 1)

	day := plan.PackingSuggestions[0]
	require.NotNil(t, day.Contingency)
	assert.Equal(t, "Bring a light rain jacket and shoes with good grip just in case.", *day.Contingency)
	assert.Equal(t, []string{
		"Activity: Daily activity",
		"Warm layers for colder moments",
		"Protection from possible rain",
	}, day.ContextHighlights)
	assert.Contains(t, plan.ClimateNotes, "Frequent rain is possible during the trip, keep a raincoat and waterproof shoes at hand.")
	assert.Contains(t, plan.ShoppingTips, "Rain is forecast for 3 Mar, pack a rain layer.")
}

func TestPrepareForecastFailure(t *testing.T) {
	provider := &fakeForecasts{err: errors.New("503 from weather service")}
	plan, err := seededPlanner(provider).Prepare(context.Background(), request(3, travelCloset(fashion.Casual)))
	assert.Nil(t, plan)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForecastUnavailable)
}

func TestPrepareEmptyForecast(t *testing.T) {
	provider := &fakeForecasts{forecasts: []DailyForecast{}}
	plan, err := seededPlanner(provider).Prepare(context.Background(), request(3, travelCloset(fashion.Casual)))
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, ErrForecastUnavailable)
}

func TestPrepareMissingDay(t *testing.T) {
	days := forecastDays(3, 10, 20, 0)
	provider := &fakeForecasts{forecasts: []DailyForecast{days[0], days[2]}}
	plan, err := seededPlanner(provider).Prepare(context.Background(), request(3, travelCloset(fashion.Casual)))
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, ErrForecastUnavailable)
}

func TestPrepareClipsAndSortsForecasts(t *testing.T) {
	days := forecastDays(5, 10, 20, 0)
	provider := &fakeForecasts{forecasts: []DailyForecast{days[4], days[2], days[1], days[2], days[0]}}
	plan, err := seededPlanner(provider).Prepare(context.Background(), request(3, travelCloset(fashion.Casual)))
	require.NoError(t, err)
	require.Len(t, plan.Forecasts, 3)
	assert.Equal(t, []time.Time{days[0].Date, days[1].Date, days[2].Date},
		[]time.Time{plan.Forecasts[0].Date, plan.Forecasts[1].Date, plan.Forecasts[2].Date})
}

func TestPrepareCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	provider := &fakeForecasts{forecasts: forecastDays(2, 10, 20, 0)}
	plan, err := seededPlanner(provider).Prepare(ctx, request(2, travelCloset(fashion.Casual)))
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, provider.calls)
}

func TestPrepareCancelledWhileFetching(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	plan, err := seededPlanner(blockingForecasts{}).Prepare(ctx, request(2, travelCloset(fashion.Casual)))
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrForecastUnavailable)
}

func TestPrepareInvalidRange(t *testing.T) {
	provider := &fakeForecasts{forecasts: forecastDays(2, 10, 20, 0)}
	req := request(2, nil)
	req.StartDate, req.EndDate = req.EndDate, req.StartDate
	_, err := seededPlanner(provider).Prepare(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = seededPlanner(provider).Prepare(context.Background(), request(MaxTripDays+1, nil))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	assert.Equal(t, 0, provider.calls)
}

func TestBuildPlanEmptyClosetKeepsEveryDay(t *testing.T) {
	plan := BuildPlan(forecastDays(3, 15, 25, 0), request(3, nil), rand.New(rand.NewSource(1)))

	require.Len(t, plan.PackingSuggestions, 3)
	for _, day := range plan.PackingSuggestions {
		assert.Nil(t, day.Look)
	}
	assert.Equal(t, []string{
		"Add more Casual pieces so Daily activity gets complete outfits.",
		"Your closet needs at least two pieces before outfits can be planned.",
		"Consider packing extra basics to have backup outfits.",
	}, plan.ShoppingTips)
}

func TestBuildPlanFallbackLook(t *testing.T) {
	closet := []fashion.ClassifiedItem{
		piece("dress", fashion.Dresses, fashion.Glamour),
		piece("heels", fashion.Shoes, fashion.Glamour),
		piece("scarf", fashion.Accessories, fashion.Glamour),
	}
	beach := TravelActivity{Name: "Beach", StyleHints: []fashion.Style{fashion.Boho}}
	plan := BuildPlan(forecastDays(2, 20, 32, 0), request(2, closet, beach), rand.New(rand.NewSource(1)))

	require.Len(t, plan.PackingSuggestions, 2)
	first, second := plan.PackingSuggestions[0], plan.PackingSuggestions[1]
	require.NotNil(t, first.Look)
	require.NotNil(t, second.Look)
	assert.Equal(t, fashion.Boho, first.Look.Style)
	assert.Equal(t, "dress,heels,scarf", first.Look.ID)
	assert.Equal(t, "dress,heels,scarf@2025-03-04", second.Look.ID)
	require.NotNil(t, first.Contingency)
	assert.Equal(t, "A thin wrap or scarf helps on cooler evenings.", *first.Contingency)

	assert.Equal(t, []string{
		"Add more Boho pieces so Beach gets complete outfits.",
		"Consider packing extra basics to have backup outfits.",
	}, plan.ShoppingTips)
	assert.Equal(t, []string{"Very warm days ahead, choose airy fabrics and light colors."}, plan.ClimateNotes)
}

func TestBuildPlanRoundRobinActivities(t *testing.T) {
	closet := travelCloset(fashion.Casual, fashion.SmartCasual)
	city := TravelActivity{Name: "City walk", StyleHints: []fashion.Style{fashion.Casual}}
	dinner := TravelActivity{Name: "Dinner", StyleHints: []fashion.Style{fashion.SmartCasual}}
	plan := BuildPlan(forecastDays(4, 12, 20, 0), request(4, closet, city, dinner), rand.New(rand.NewSource(5)))

	require.Len(t, plan.PackingSuggestions, 4)
	ids := map[string]bool{}
	for i, day := range plan.PackingSuggestions {
		require.NotNil(t, day.Look)
		assert.False(t, ids[day.Look.ID])
		ids[day.Look.ID] = true
		if i%2 == 0 {
			assert.Equal(t, "City walk", day.ActivityName)
			assert.Equal(t, fashion.Casual, day.Look.Style)
		} else {
			assert.Equal(t, "Dinner", day.ActivityName)
			assert.Equal(t, fashion.SmartCasual, day.Look.Style)
		}
	}
	assert.Equal(t, []string{"City walk", "Dinner"}, plan.Activities)
	assert.Empty(t, plan.ShoppingTips)
}

func TestBuildPlanBorrowsFromOtherPools(t *testing.T) {
	closet := travelCloset(fashion.Casual)
	museum := TravelActivity{Name: "Museum", StyleHints: []fashion.Style{fashion.Classic, fashion.Casual}}
	plan := BuildPlan(forecastDays(2, 12, 20, 0), request(2, closet, museum), rand.New(rand.NewSource(5)))

	for _, day := range plan.PackingSuggestions {
		require.NotNil(t, day.Look)
		assert.Equal(t, fashion.Casual, day.Look.Style)
	}
	assert.Empty(t, plan.ShoppingTips)
}
