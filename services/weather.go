package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dressupapi/suitcase"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/getsentry/sentry-go"
)

const (
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	geocodeCacheTTL     = 6 * time.Hour
	maxDestinations     = 5
)

// OpenMeteoClient talks to the open-meteo forecast and geocoding APIs.
// Destination lookups are cached in memory.
type OpenMeteoClient struct {
	HTTPClient   *http.Client
	ForecastURL  string
	GeocodingURL string
	Language     string
	geocodes     *cache.Cache[[]suitcase.GeoLocation]
}

func NewOpenMeteoClient() (*OpenMeteoClient, error) {
	ristrettoStore, err := newRistrettoStore(1e5, 1<<20)
	if err != nil {
		return nil, err
	}
	return &OpenMeteoClient{
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		ForecastURL:  GetEnv("WEATHER_API_URL", defaultForecastURL),
		GeocodingURL: GetEnv("GEOCODING_API_URL", defaultGeocodingURL),
		Language:     GetEnv("GEOCODING_LANGUAGE", "en"),
		geocodes:     cache.New[[]suitcase.GeoLocation](ristrettoStore),
	}, nil
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Daily struct {
		Time                        []string   `json:"time"`
		TemperatureMax              []*float64 `json:"temperature_2m_max"`
		TemperatureMin              []*float64 `json:"temperature_2m_min"`
		PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// SearchDestination returns up to five places matching query. A blank query
// or a rejected lookup gives no matches.
func (c *OpenMeteoClient) SearchDestination(ctx context.Context, query string) ([]suitcase.GeoLocation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []suitcase.GeoLocation{}, nil
	}
	cacheKey := strings.ToLower(query)
	if c.geocodes != nil {
		if cached, err := c.geocodes.Get(ctx, cacheKey); err == nil {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("name", query)
	params.Set("count", strconv.Itoa(maxDestinations))
	params.Set("language", c.Language)
	params.Set("format", "json")

	body, status, err := c.get(ctx, c.GeocodingURL, params)
	if err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", query, err)
	}
	if status < 200 || status > 299 {
		log.Printf("[Weather] geocoding %q returned %d", query, status)
		return []suitcase.GeoLocation{}, nil
	}

	var response geocodingResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", query, err)
	}
	locations := make([]suitcase.GeoLocation, 0, len(response.Results))
	for _, result := range response.Results {
		locations = append(locations, suitcase.GeoLocation{
			Name:      result.Name,
			Country:   result.Country,
			Admin1:    result.Admin1,
			Latitude:  result.Latitude,
			Longitude: result.Longitude,
		})
	}
	if c.geocodes != nil {
		if err := c.geocodes.Set(ctx, cacheKey, locations, store.WithExpiration(geocodeCacheTTL), store.WithCost(1)); err != nil {
			log.Printf("[Weather] could not cache geocoding for %q: %v", query, err)
		}
	}
	return locations, nil
}

func (c *OpenMeteoClient) FetchForecast(ctx context.Context, location suitcase.GeoLocation, start, end time.Time) ([]suitcase.DailyForecast, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(location.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(location.Longitude, 'f', -1, 64))
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	params.Set("timezone", "auto")
	params.Set("start_date", start.Format(suitcase.DateLayout))
	params.Set("end_date", end.Format(suitcase.DateLayout))

	body, status, err := c.get(ctx, c.ForecastURL, params)
	if err != nil {
		return nil, fmt.Errorf("forecast for %s: %w", location.DisplayName(), err)
	}
	if status < 200 || status > 299 {
		err := fmt.Errorf("forecast for %s: weather request failed: %d", location.DisplayName(), status)
		sentry.CaptureException(err)
		return nil, err
	}

	var response forecastResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("forecast for %s: %w", location.DisplayName(), err)
	}
	return response.forecasts()
}

func (r forecastResponse) forecasts() ([]suitcase.DailyForecast, error) {
	daily := r.Daily
	if len(daily.TemperatureMin) < len(daily.Time) || len(daily.TemperatureMax) < len(daily.Time) {
		return nil, errors.New("forecast series are shorter than the dates")
	}
	forecasts := make([]suitcase.DailyForecast, 0, len(daily.Time))
	for i, day := range daily.Time {
		date, err := suitcase.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("forecast date %q: %w", day, err)
		}
		if daily.TemperatureMin[i] == nil || daily.TemperatureMax[i] == nil {
			return nil, fmt.Errorf("forecast for %s has no temperatures", day)
		}
		rain := 0
		if i < len(daily.PrecipitationProbabilityMax) && daily.PrecipitationProbabilityMax[i] != nil {
			rain = int(*daily.PrecipitationProbabilityMax[i])
		}
		forecasts = append(forecasts, suitcase.DailyForecast{
			Date:                     date,
			MinTemperature:           *daily.TemperatureMin[i],
			MaxTemperature:           *daily.TemperatureMax[i],
			PrecipitationProbability: rain,
		})
	}
	return forecasts, nil
}

func (c *OpenMeteoClient) get(ctx context.Context, base string, params url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, err
	}
	return body, res.StatusCode, nil
}
