package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dressupapi/suitcase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWeatherClient(t *testing.T, handler http.HandlerFunc) *OpenMeteoClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewOpenMeteoClient()
	require.NoError(t, err)
	client.HTTPClient = server.Client()
	client.ForecastURL = server.URL + "/v1/forecast"
	client.GeocodingURL = server.URL + "/v1/search"
	return client
}

func TestSearchDestination(t *testing.T) {
	client := testWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "Lisbon", r.URL.Query().Get("name"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		fmt.Fprint(w, `{"results":[
			{"name":"Lisbon","country":"Portugal","admin1":"Lisbon","latitude":38.72,"longitude":-9.13},
			{"name":"Lisbon","country":"United States","latitude":44.03,"longitude":-70.1}
		]}`)
	})

	locations, err := client.SearchDestination(context.Background(), "  Lisbon ")
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "Lisbon, Lisbon, Portugal", locations[0].DisplayName())
	assert.Equal(t, "Lisbon, United States", locations[1].DisplayName())
	assert.Equal(t, -70.1, locations[1].Longitude)
}

func TestSearchDestinationNoMatches(t *testing.T) {
	client := testWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "broken" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"generationtime_ms":0.4}`)
	})

	locations, err := client.SearchDestination(context.Background(), "Qwxz")
	require.NoError(t, err)
	assert.Empty(t, locations)

	locations, err = client.SearchDestination(context.Background(), "broken")
	require.NoError(t, err)
	assert.Empty(t, locations)

	locations, err = client.SearchDestination(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestFetchForecast(t *testing.T) {
	client := testWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "38.72", query.Get("latitude"))
		assert.Equal(t, "2025-03-03", query.Get("start_date"))
		assert.Equal(t, "2025-03-04", query.Get("end_date"))
		assert.Equal(t, "temperature_2m_max,temperature_2m_min,precipitation_probability_max", query.Get("daily"))
		fmt.Fprint(w, `{"daily":{
			"time":["2025-03-03","2025-03-04"],
			"temperature_2m_max":[16.2,18.0],
			"temperature_2m_min":[8.1,9.5],
			"precipitation_probability_max":[75,null]
		}}`)
	})

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	location := suitcase.GeoLocation{Name: "Lisbon", Country: "Portugal", Latitude: 38.72, Longitude: -9.13}
	forecasts, err := client.FetchForecast(context.Background(), location, start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, forecasts, 2)

	assert.Equal(t, start, forecasts[0].Date)
	assert.Equal(t, 8.1, forecasts[0].MinTemperature)
	assert.Equal(t, 16.2, forecasts[0].MaxTemperature)
	assert.Equal(t, 75, forecasts[0].PrecipitationProbability)
	assert.Equal(t, 0, forecasts[1].PrecipitationProbability)
}

func TestFetchForecastFailures(t *testing.T) {
	responses := map[string]func(w http.ResponseWriter){
		"status": func(w http.ResponseWriter) { w.WriteHeader(http.StatusServiceUnavailable) },
		"json":   func(w http.ResponseWriter) { fmt.Fprint(w, `{"daily":`) },
		"nulls": func(w http.ResponseWriter) {
			fmt.Fprint(w, `{"daily":{"time":["2025-03-03"],"temperature_2m_max":[null],"temperature_2m_min":[3]}}`)
		},
		"short": func(w http.ResponseWriter) {
			fmt.Fprint(w, `{"daily":{"time":["2025-03-03","2025-03-04"],"temperature_2m_max":[4],"temperature_2m_min":[3]}}`)
		},
	}
	for name, respond := range responses {
		t.Run(name, func(t *testing.T) {
			client := testWeatherClient(t, func(w http.ResponseWriter, r *http.Request) { respond(w) })
			start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
			_, err := client.FetchForecast(context.Background(), suitcase.GeoLocation{Name: "Oslo", Country: "Norway"}, start, start.AddDate(0, 0, 1))
			assert.Error(t, err)
		})
	}
}

func TestFetchForecastCancelled(t *testing.T) {
	client := testWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchForecast(ctx, suitcase.GeoLocation{Name: "Oslo", Country: "Norway"}, start, start)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPlannerWithOpenMeteo(t *testing.T) {
	client := testWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	planner := suitcase.NewPlanner(client)
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	plan, err := planner.Prepare(context.Background(), suitcase.PlanRequest{
		Location:  suitcase.GeoLocation{Name: "Oslo", Country: "Norway"},
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
	})
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, suitcase.ErrForecastUnavailable)
}
