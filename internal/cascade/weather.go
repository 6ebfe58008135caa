package cascade

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/cache"
	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/providers"
)

const day = 24 * time.Hour

type ForecastFetcher interface {
	Configured() bool
	Forecast(ctx context.Context, city string, days int) (models.LocationWeather, error)
}

// WeatherResolver returns a forecast for every request. The forecast list
// always holds exactly DayCount(start, end) entries.
type WeatherResolver struct {
	client ForecastFetcher
	cache  cache.ForecastCache
	logger *zap.Logger
}

func NewWeatherResolver(client ForecastFetcher, c cache.ForecastCache, logger *zap.Logger) *WeatherResolver {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &WeatherResolver{
		client: client,
		cache:  c,
		logger: loggerOrNop(logger),
	}
}

// DayCount is the number of whole days needed to cover start..end, rounded up.
// It works on Unix seconds since end.Sub saturates for spans past ~292 years.
func DayCount(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	secs := end.Unix() - start.Unix()
	if end.Nanosecond() > start.Nanosecond() {
		secs++
	}
	const secsPerDay = int64(day / time.Second)
	return int((secs + secsPerDay - 1) / secsPerDay)
}

func (r *WeatherResolver) Resolve(ctx context.Context, city string, start, end time.Time) models.LocationWeather {
	city = strings.TrimSpace(city)
	days := DayCount(start, end)
	logger := r.logger.With(zap.String("city", city), zap.Int("days", days))

	if days == 0 || city == "" {
		return MockWeather(city, start, days)
	}
	if r.client == nil || !r.client.Configured() {
		logger.Debug("weather provider not configured, serving mock forecast")
		return MockWeather(city, start, days)
	}

	key := cache.ForecastKey(city, start, end)
	if cached, ok := r.cache.Get(ctx, key); ok {
		logger.Debug("forecast cache hit")
		return fitForecasts(cached, start, days)
	}

	live, err := r.client.Forecast(ctx, city, min(days, providers.MaxForecastDays))
	if err != nil {
		logger.Warn("weather lookup failed, serving mock forecast", zap.Error(err))
		return MockWeather(city, start, days)
	}

	live = fitForecasts(live, start, days)
	if err := r.cache.Set(ctx, key, live); err != nil {
		logger.Warn("failed to cache forecast", zap.Error(err))
	}
	return live
}

// fitForecasts trims surplus days and pads the horizon the provider could not
// cover with placeholder days following the last known date.
func fitForecasts(w models.LocationWeather, start time.Time, days int) models.LocationWeather {
	forecasts := make([]models.Forecast, 0, days)
	forecasts = append(forecasts, w.Forecasts[:min(len(w.Forecasts), days)]...)

	next := start.AddDate(0, 0, len(forecasts))
	if n := len(forecasts); n > 0 {
		if last, err := time.Parse(models.DateLayout, forecasts[n-1].Date); err == nil {
			next = last.AddDate(0, 0, 1)
		}
	}
	for len(forecasts) < days {
		forecasts = append(forecasts, mockForecast(next))
		next = next.AddDate(0, 0, 1)
	}

	w.Forecasts = forecasts
	return w
}
