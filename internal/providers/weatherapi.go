package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

const (
	WeatherAPIName           = "weatherapi"
	DefaultWeatherAPIBaseURL = "https://api.weatherapi.com"

	// MaxForecastDays is the longest horizon the forecast endpoint serves.
	MaxForecastDays = 14
)

type weatherAPIResponse struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Forecast *struct {
		ForecastDay []weatherAPIDay `json:"forecastday"`
	} `json:"forecast"`
}

type weatherAPIDay struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempC  float64 `json:"maxtemp_c"`
		MinTempC  float64 `json:"mintemp_c"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
	} `json:"day"`
}

type WeatherAPIClient struct {
	apiKey  string
	baseURL string
	http    httpCaller
}

func NewWeatherAPIClient(opts Options) *WeatherAPIClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultWeatherAPIBaseURL
	}
	return &WeatherAPIClient{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPCaller(WeatherAPIName, opts),
	}
}

func (c *WeatherAPIClient) Name() string {
	return WeatherAPIName
}

func (c *WeatherAPIClient) Configured() bool {
	return c.apiKey != ""
}

// Forecast fetches a daily forecast for city. days is clamped to
// [1, MaxForecastDays].
func (c *WeatherAPIClient) Forecast(ctx context.Context, city string, days int) (models.LocationWeather, error) {
	if !c.Configured() {
		return models.LocationWeather{}, NewProviderError(WeatherAPIName, ErrMissingCredential)
	}
	days = min(max(days, 1), MaxForecastDays)

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", city)
	q.Set("days", strconv.Itoa(days))
	q.Set("aqi", "no")

	var resp weatherAPIResponse
	if err := c.http.get(ctx, c.baseURL+"/v1/forecast.json", q, nil, &resp); err != nil {
		return models.LocationWeather{}, err
	}

	if resp.Forecast == nil || resp.Forecast.ForecastDay == nil {
		return models.LocationWeather{}, NewProviderError(WeatherAPIName,
			fmt.Errorf("%w: no forecast days for %q", ErrMalformedResponse, city))
	}

	forecasts := make([]models.Forecast, 0, len(resp.Forecast.ForecastDay))
	for _, d := range resp.Forecast.ForecastDay {
		forecasts = append(forecasts, models.Forecast{
			Date: d.Date,
			Temp: models.TempRange{
				Min: d.Day.MinTempC,
				Max: d.Day.MaxTempC,
			},
			Description: d.Day.Condition.Text,
			Icon:        SecureURL(d.Day.Condition.Icon),
		})
	}

	name := resp.Location.Name
	if name == "" {
		name = city
	}
	return models.LocationWeather{
		City:      name,
		Country:   resp.Location.Country,
		Forecasts: forecasts,
	}, nil
}

// SecureURL rewrites protocol-relative and plain-http URLs to https.
func SecureURL(u string) string {
	switch {
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case strings.HasPrefix(u, "http://"):
		return "https://" + strings.TrimPrefix(u, "http://")
	default:
		return u
	}
}
