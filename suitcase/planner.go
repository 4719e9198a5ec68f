package suitcase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"dressupapi/fashion"

	"github.com/google/uuid"
)

// MaxTripDays matches the forecast horizon of the weather service.
const MaxTripDays = 16

var (
	ErrForecastUnavailable = errors.New("forecast unavailable")
	ErrInvalidDateRange    = errors.New("invalid date range")
)

type ForecastProvider interface {
	FetchForecast(ctx context.Context, location GeoLocation, start, end time.Time) ([]DailyForecast, error)
}

type DestinationFinder interface {
	SearchDestination(ctx context.Context, query string) ([]GeoLocation, error)
}

type WeatherService interface {
	ForecastProvider
	DestinationFinder
}

type DailyPackingSuggestion struct {
	Date              time.Time           `json:"date"`
	DisplayDate       string              `json:"display_date"`
	ForecastSummary   string              `json:"forecast_summary"`
	ActivityName      string              `json:"activity_name"`
	Look              *fashion.StyledLook `json:"look"`
	ContextHighlights []string            `json:"context_highlights"`
	Contingency       *string             `json:"contingency"`
}

type TravelPlan struct {
	ID                 string                   `json:"id"`
	Location           GeoLocation              `json:"location"`
	StartDate          time.Time                `json:"start_date"`
	EndDate            time.Time                `json:"end_date"`
	Forecasts          []DailyForecast          `json:"forecasts"`
	Activities         []string                 `json:"activities"`
	PackingSuggestions []DailyPackingSuggestion `json:"packing_suggestions"`
	ClimateNotes       []string                 `json:"climate_notes"`
	ShoppingTips       []string                 `json:"shopping_tips"`
	CreatedAt          time.Time                `json:"created_at"`
}

func (p TravelPlan) DateRange() string {
	return FormatDateRange(p.StartDate, p.EndDate)
}

type PlanRequest struct {
	Location   GeoLocation
	StartDate  time.Time
	EndDate    time.Time
	Activities []TravelActivity
	Closet     []fashion.ClassifiedItem
	Profile    *fashion.PersonalStyleProfile
}

// Days returns the trip length counting both ends.
func (r PlanRequest) Days() int {
	return int(Day(r.EndDate).Sub(Day(r.StartDate)).Hours()/24) + 1
}

func (r PlanRequest) validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return fmt.Errorf("%w: missing dates", ErrInvalidDateRange)
	}
	if Day(r.EndDate).Before(Day(r.StartDate)) {
		return fmt.Errorf("%w: end before start", ErrInvalidDateRange)
	}
	if r.Days() > MaxTripDays {
		return fmt.Errorf("%w: trips are limited to %d days", ErrInvalidDateRange, MaxTripDays)
	}
	return nil
}

type Planner struct {
	Forecasts ForecastProvider
	NewRand   func() *rand.Rand
	Now       func() time.Time
}

func NewPlanner(forecasts ForecastProvider) *Planner {
	return &Planner{Forecasts: forecasts, NewRand: fashion.NewRand, Now: time.Now}
}

// Prepare fetches the forecast for the trip and builds a plan from it. A
// failed or cancelled fetch returns no plan.
func (p *Planner) Prepare(ctx context.Context, req PlanRequest) (*TravelPlan, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start, end := Day(req.StartDate), Day(req.EndDate)
	forecasts, err := p.Forecasts.FetchForecast(ctx, req.Location, start, end)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrForecastUnavailable, err)
	}
	forecasts, err = normalizeForecasts(forecasts, start, end)
	if err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if p.NewRand != nil {
		rng = p.NewRand()
	}
	plan := BuildPlan(forecasts, req, rng)
	if p.Now != nil {
		plan.CreatedAt = p.Now()
	}
	return plan, nil
}

// normalizeForecasts keeps one forecast per date inside [start, end] in date
// order and requires every date of the trip to be covered.
func normalizeForecasts(forecasts []DailyForecast, start, end time.Time) ([]DailyForecast, error) {
	if len(forecasts) == 0 {
		return nil, fmt.Errorf("%w: empty forecast", ErrForecastUnavailable)
	}
	byDate := map[time.Time]DailyForecast{}
	for _, forecast := range forecasts {
		date := Day(forecast.Date)
		if date.Before(start) || date.After(end) {
			continue
		}
		if _, ok := byDate[date]; ok {
			continue
		}
		forecast.Date = date
		byDate[date] = forecast
	}

	out := make([]DailyForecast, 0, len(byDate))
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		forecast, ok := byDate[date]
		if !ok {
			return nil, fmt.Errorf("%w: no forecast for %s", ErrForecastUnavailable, date.Format(DateLayout))
		}
		out = append(out, forecast)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// lookPools holds the pre-generated looks of one planning call.
type lookPools struct {
	order []fashion.Style
	pools map[fashion.Style][]fashion.StyledLook
	used  map[string]bool
}

func newLookPools(rng *rand.Rand, req PlanRequest, styles []fashion.Style, limit int) *lookPools {
	lp := &lookPools{pools: map[fashion.Style][]fashion.StyledLook{}, used: map[string]bool{}}
	for _, style := range styles {
		looks := fashion.GenerateLooks(rng, req.Closet, style, req.Profile, limit)
		if len(looks) == 0 {
			continue
		}
		lp.order = append(lp.order, style)
		lp.pools[style] = looks
	}
	return lp
}

func (lp *lookPools) total() int {
	total := 0
	for _, looks := range lp.pools {
		total += len(looks)
	}
	return total
}

func (lp *lookPools) has(style fashion.Style) bool {
	return len(lp.pools[style]) > 0
}

// take pops the next look of style that was not handed out yet.
func (lp *lookPools) take(style fashion.Style) *fashion.StyledLook {
	for len(lp.pools[style]) > 0 {
		look := lp.pools[style][0]
		lp.pools[style] = lp.pools[style][1:]
		if lp.used[look.ID] {
			continue
		}
		lp.used[look.ID] = true
		return &look
	}
	return nil
}

func (lp *lookPools) takeAny() *fashion.StyledLook {
	for _, style := range lp.order {
		if look := lp.take(style); look != nil {
			return look
		}
	}
	return nil
}

// BuildPlan assigns a look per forecast day. forecasts must be one per day in
// date order. All random draws come from rng; nil means a time seeded one.
func BuildPlan(forecasts []DailyForecast, req PlanRequest, rng *rand.Rand) *TravelPlan {
	if rng == nil {
		rng = fashion.NewRand()
	}
	activities := normalizeActivities(req.Activities)

	var styleOrder []fashion.Style
	seenStyles := map[fashion.Style]bool{}
	for _, activity := range activities {
		for _, style := range activity.StyleHints {
			if !seenStyles[style] {
				seenStyles[style] = true
				styleOrder = append(styleOrder, style)
			}
		}
	}

	pools := newLookPools(rng, req, styleOrder, len(forecasts)*2)
	available := pools.total()

	var tips []string
	suggestions := make([]DailyPackingSuggestion, 0, len(forecasts))
	for i, forecast := range forecasts {
		activity := activities[i%len(activities)]
		band := forecast.Band()
		rainy := forecast.IsRainy()
		style := selectStyle(activity, pools, band)

		look := pools.take(style)
		if look == nil {
			look = pools.takeAny()
		}
		if look == nil {
			tips = append(tips, fmt.Sprintf("Add more %s pieces so %s gets complete outfits.", style.Title(), activity.Name))
			look = fallbackLook(req.Closet, style, req.Profile)
			if look != nil {
				if pools.used[look.ID] {
					look.ID = look.ID + "@" + forecast.Date.Format(DateLayout)
				}
				pools.used[look.ID] = true
			} else {
				tips = append(tips, "Your closet needs at least two pieces before outfits can be planned.")
			}
		}
		if rainy {
			tips = append(tips, fmt.Sprintf("Rain is forecast for %s, pack a rain layer.", FormatDate(forecast.Date)))
		}

		suggestions = append(suggestions, DailyPackingSuggestion{
			Date:              forecast.Date,
			DisplayDate:       FormatDate(forecast.Date),
			ForecastSummary:   forecast.Summary(),
			ActivityName:      activity.Name,
			Look:              look,
			ContextHighlights: contextHighlights(activity, band, rainy),
			Contingency:       contingency(band, rainy),
		})
	}
	if available < len(forecasts) {
		tips = append(tips, "Consider packing extra basics to have backup outfits.")
	}

	names := make([]string, 0, len(activities))
	for _, activity := range activities {
		names = append(names, activity.Name)
	}

	plan := &TravelPlan{
		ID:                 uuid.NewString(),
		Location:           req.Location,
		StartDate:          Day(req.StartDate),
		EndDate:            Day(req.EndDate),
		Forecasts:          forecasts,
		Activities:         names,
		PackingSuggestions: suggestions,
		ClimateNotes:       climateNotes(forecasts),
		ShoppingTips:       distinctStrings(tips),
	}
	return plan
}

func normalizeActivities(activities []TravelActivity) []TravelActivity {
	if len(activities) == 0 {
		return []TravelActivity{DefaultActivity()}
	}
	out := make([]TravelActivity, 0, len(activities))
	for _, activity := range activities {
		if len(activity.StyleHints) == 0 {
			activity.StyleHints = []fashion.Style{fashion.Casual}
		}
		out = append(out, activity)
	}
	return out
}

func selectStyle(activity TravelActivity, pools *lookPools, band TemperatureBand) fashion.Style {
	for _, style := range activity.StyleHints {
		if pools.has(style) {
			return style
		}
	}
	for _, style := range pools.order {
		if pools.has(style) {
			return style
		}
	}
	return band.DefaultStyle()
}

// fallbackLook dresses a day straight from the closet when no pool has looks.
func fallbackLook(closet []fashion.ClassifiedItem, style fashion.Style, profile *fashion.PersonalStyleProfile) *fashion.StyledLook {
	byCategory := map[fashion.Category][]fashion.ClassifiedItem{}
	for _, item := range closet {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}
	first := func(category fashion.Category) []fashion.ClassifiedItem {
		if items := byCategory[category]; len(items) > 0 {
			return items[:1]
		}
		return nil
	}

	var pieces []fashion.ClassifiedItem
	switch {
	case len(byCategory[fashion.Dresses]) > 0 && len(byCategory[fashion.Shoes]) > 0:
		pieces = append(pieces, first(fashion.Dresses)...)
		pieces = append(pieces, first(fashion.Shoes)...)
		pieces = append(pieces, first(fashion.Outerwear)...)
		pieces = append(pieces, first(fashion.Accessories)...)
	case len(byCategory[fashion.Tops]) > 0 && len(byCategory[fashion.Bottoms]) > 0 && len(byCategory[fashion.Shoes]) > 0:
		pieces = append(pieces, first(fashion.Tops)...)
		pieces = append(pieces, first(fashion.Bottoms)...)
		pieces = append(pieces, first(fashion.Shoes)...)
		pieces = append(pieces, first(fashion.Outerwear)...)
		pieces = append(pieces, first(fashion.Accessories)...)
	default:
		pieces = append(pieces, closet[:min(3, len(closet))]...)
	}
	if len(pieces) < 2 {
		return nil
	}
	look := fashion.RebuildLook("", pieces, style, profile)
	return &look
}

func contextHighlights(activity TravelActivity, band TemperatureBand, rainy bool) []string {
	highlights := []string{"Activity: " + activity.Name, band.comfortPhrase()}
	if rainy {
		highlights = append(highlights, "Protection from possible rain")
	}
	return distinctStrings(highlights)
}

func contingency(band TemperatureBand, rainy bool) *string {
	var note string
	switch {
	case rainy && (band == Cold || band == Mild):
		note = "Bring a light rain jacket and shoes with good grip just in case."
	case rainy:
		note = "Add a quick-dry rain layer to the suitcase."
	case band == Hot:
		note = "A thin wrap or scarf helps on cooler evenings."
	case band == Cold:
		note = "A spare warm sweater or turtleneck helps when nights get colder."
	default:
		return nil
	}
	return &note
}

func climateNotes(forecasts []DailyForecast) []string {
	notes := []string{}
	var rainy, hot, coolNights bool
	for _, forecast := range forecasts {
		rainy = rainy || forecast.IsRainy()
		hot = hot || forecast.AverageTemperature() >= 26
		coolNights = coolNights || forecast.MinTemperature <= 10
	}
	if rainy {
		notes = append(notes, "Frequent rain is possible during the trip, keep a raincoat and waterproof shoes at hand.")
	}
	if hot {
		notes = append(notes, "Very warm days ahead, choose airy fabrics and light colors.")
	}
	if coolNights {
		notes = append(notes, "Nights can be chilly, add a light warm layer to the suitcase.")
	}
	return notes
}

func distinctStrings(values []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}
