package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/cascade"
	"github.com/dharmasatrya/tripplanner/internal/models"
)

var (
	ErrEmptyBundle = errors.New("recommendation bundle has no destinations")
	ErrUnexpected  = errors.New("unexpected failure while resolving recommendations")
)

type TextResolver interface {
	Generate(ctx context.Context, survey models.SurveyInput) models.Bundle
}

type ImageResolver interface {
	Resolve(ctx context.Context, query string) models.ImageResult
}

type WeatherResolver interface {
	Resolve(ctx context.Context, city string, start, end time.Time) models.LocationWeather
}

// Aggregator drives one resolution cycle: text, then images and weather for
// every destination.
type Aggregator struct {
	text    TextResolver
	images  ImageResolver
	weather WeatherResolver
	logger  *zap.Logger
}

type Result struct {
	Bundle   models.Bundle
	Images   map[string]models.ImageResult
	Weather  map[string]models.LocationWeather
	Metadata models.ResolutionMetadata
}

func NewAggregator(text TextResolver, images ImageResolver, weather WeatherResolver, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		text:    text,
		images:  images,
		weather: weather,
		logger:  logger,
	}
}

// Recommend resolves a bundle and waits for every image and forecast.
func (a *Aggregator) Recommend(ctx context.Context, survey models.SurveyInput) (result *Result, err error) {
	startTime := time.Now()
	defer a.recoverInto(&err)

	bundle, err := a.generate(ctx, survey)
	if err != nil {
		return nil, err
	}

	var (
		wg      sync.WaitGroup
		images  map[string]models.ImageResult
		mu      sync.Mutex
		weather = make(map[string]models.LocationWeather, len(bundle.Destinations))
	)

	wg.Go(func() {
		images = a.resolveImages(ctx, bundle.Destinations)
	})
	for _, dest := range bundle.Destinations {
		wg.Go(func() {
			w, err := a.forecast(ctx, dest.Name, survey)
			if err != nil {
				w = cascade.MockWeather(dest.Name, survey.TravelDates.StartDate.Time,
					cascade.DayCount(survey.TravelDates.StartDate.Time, survey.TravelDates.EndDate.Time))
			}
			mu.Lock()
			weather[dest.Name] = w
			mu.Unlock()
		})
	}
	wg.Wait()

	result = &Result{
		Bundle:  bundle,
		Images:  images,
		Weather: weather,
	}
	result.Metadata = buildMetadata(result, time.Since(startTime))

	a.logger.Info("recommendation resolved",
		zap.Int("destinations", result.Metadata.Destinations),
		zap.Int("mock_weather", result.Metadata.MockWeather),
		zap.Int64("resolve_time_ms", result.Metadata.ResolveTimeMs))

	return result, nil
}

// Response pairs the result with the survey that produced it.
func (r *Result) Response(survey models.SurveyInput) models.RecommendationResponse {
	return models.RecommendationResponse{
		Survey:          survey,
		Metadata:        r.Metadata,
		Recommendations: r.Bundle,
		Images:          r.Images,
		Weather:         r.Weather,
	}
}

func (a *Aggregator) generate(ctx context.Context, survey models.SurveyInput) (models.Bundle, error) {
	bundle := a.text.Generate(ctx, survey)
	if len(bundle.Destinations) == 0 {
		a.logger.Error("text resolver returned an empty bundle")
		return models.Bundle{}, ErrEmptyBundle
	}
	return bundle, nil
}

// resolveImages fans out one cascade per destination and returns only once
// the whole batch has settled.
func (a *Aggregator) resolveImages(ctx context.Context, destinations []models.Destination) map[string]models.ImageResult {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		images = make(map[string]models.ImageResult, len(destinations))
	)

	for _, dest := range destinations {
		wg.Go(func() {
			img := a.image(ctx, dest.SearchQuery())
			mu.Lock()
			images[dest.Name] = img
			mu.Unlock()
		})
	}
	wg.Wait()

	return images
}

func (a *Aggregator) image(ctx context.Context, query string) (img models.ImageResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("image resolution panicked", zap.String("query", query), zap.Any("panic", r))
			img = cascade.DefaultImage(query)
		}
	}()
	return a.images.Resolve(ctx, query)
}

func (a *Aggregator) forecast(ctx context.Context, city string, survey models.SurveyInput) (w models.LocationWeather, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("weather resolution panicked", zap.String("city", city), zap.Any("panic", r))
			err = fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()
	return a.weather.Resolve(ctx, city, survey.TravelDates.StartDate.Time, survey.TravelDates.EndDate.Time), nil
}

func (a *Aggregator) recoverInto(err *error) {
	if r := recover(); r != nil {
		a.logger.Error("recommendation cycle panicked", zap.Any("panic", r))
		*err = fmt.Errorf("%w: %v", ErrUnexpected, r)
	}
}

func buildMetadata(r *Result, elapsed time.Duration) models.ResolutionMetadata {
	meta := models.ResolutionMetadata{
		Destinations:  len(r.Bundle.Destinations),
		ImageSources:  make(map[models.ImageSource]int),
		ResolveTimeMs: elapsed.Milliseconds(),
	}
	for _, img := range r.Images {
		meta.ImageSources[img.Source]++
	}
	for _, w := range r.Weather {
		if w.IsMock {
			meta.MockWeather++
		}
	}
	return meta
}
