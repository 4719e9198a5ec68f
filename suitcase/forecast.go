package suitcase

import (
	"fmt"
	"strings"
	"time"

	"dressupapi/fashion"
)

const (
	DateLayout    = "2006-01-02"
	displayLayout = "2 Jan"

	rainyThreshold = 60
)

type GeoLocation struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (g GeoLocation) DisplayName() string {
	var b strings.Builder
	b.WriteString(g.Name)
	if strings.TrimSpace(g.Admin1) != "" {
		b.WriteString(", ")
		b.WriteString(g.Admin1)
	}
	b.WriteString(", ")
	b.WriteString(g.Country)
	return b.String()
}

type DailyForecast struct {
	Date                     time.Time `json:"date"`
	MinTemperature           float64   `json:"min_temperature"`
	MaxTemperature           float64   `json:"max_temperature"`
	PrecipitationProbability int       `json:"precipitation_probability"`
}

func (f DailyForecast) AverageTemperature() float64 {
	return (f.MinTemperature + f.MaxTemperature) / 2
}

func (f DailyForecast) Summary() string {
	return fmt.Sprintf("%.1f°C / %.1f°C • Rain: %d%%", f.MinTemperature, f.MaxTemperature, f.PrecipitationProbability)
}

func (f DailyForecast) IsRainy() bool {
	return f.PrecipitationProbability >= rainyThreshold
}

func (f DailyForecast) Band() TemperatureBand {
	return BandFor(f.AverageTemperature())
}

type TemperatureBand string

const (
	Cold TemperatureBand = "cold"
	Mild TemperatureBand = "mild"
	Warm TemperatureBand = "warm"
	Hot  TemperatureBand = "hot"
)

func BandFor(average float64) TemperatureBand {
	switch {
	case average < 8:
		return Cold
	case average < 16:
		return Mild
	case average < 23:
		return Warm
	default:
		return Hot
	}
}

// DefaultStyle is used when no activity hint has looks left.
func (b TemperatureBand) DefaultStyle() fashion.Style {
	switch b {
	case Hot:
		return fashion.Boho
	case Warm:
		return fashion.Casual
	case Mild:
		return fashion.SmartCasual
	default:
		return fashion.Classic
	}
}

func (b TemperatureBand) comfortPhrase() string {
	switch b {
	case Hot:
		return "Light and breathable for high temperatures"
	case Warm:
		return "Comfort for warm days"
	case Mild:
		return "Layers for changeable weather"
	default:
		return "Warm layers for colder moments"
	}
}

type TravelActivity struct {
	Name       string          `json:"name"`
	StyleHints []fashion.Style `json:"style_hints"`
}

func DefaultActivity() TravelActivity {
	return TravelActivity{
		Name:       "Daily activity",
		StyleHints: []fashion.Style{fashion.Casual, fashion.SmartCasual},
	}
}

func FormatDate(date time.Time) string {
	return date.Format(displayLayout)
}

func FormatDateRange(start, end time.Time) string {
	return FormatDate(start) + " – " + FormatDate(end)
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}
