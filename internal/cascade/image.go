package cascade

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/providers"
	"github.com/dharmasatrya/tripplanner/internal/quota"
)

// pickWindow bounds random selection to the top-ranked candidates.
const pickWindow = 5

var genericPhotoPhrases = []string{
	"famous landmark scenic",
	"tourist destination photography",
	"travel destination landscape",
	"iconic location panorama",
	"city skyline aerial",
	"cultural heritage site",
	"natural wonder scenic",
	"historic architecture",
}

var SecondaryCategories = []string{"travel", "places", "buildings", "nature"}

// Picker returns an index in [0, n).
type Picker func(n int) int

// ImageStrategy is one tier of the image cascade. ok is false when the tier
// produced nothing usable.
type ImageStrategy interface {
	Name() string
	Resolve(ctx context.Context, query string) (result models.ImageResult, ok bool)
}

type PhotoSearcher interface {
	Configured() bool
	SearchPhotos(ctx context.Context, query string) ([]providers.Photo, error)
}

type CategorySearcher interface {
	Configured() bool
	SearchPhotos(ctx context.Context, query, category string) ([]providers.Photo, error)
}

func PrimaryQueryVariants(query string) []string {
	variants := []string{
		query + " famous landmark aerial view",
		query + " iconic tourist destination",
		query + " city skyline scenic",
	}
	for _, phrase := range genericPhotoPhrases {
		variants = append(variants, query+" "+phrase)
	}
	return variants
}

func SecondaryQueryVariants(query string) []string {
	return []string{
		query + " landmark",
		query + " destination",
		query + " travel",
		query,
	}
}

// UnsplashStrategy queries the quota-limited primary provider.
type UnsplashStrategy struct {
	client  PhotoSearcher
	tracker *quota.Tracker
	pick    Picker
	logger  *zap.Logger
}

// NewUnsplashStrategy builds the primary tier. A nil tracker disables quota
// gating and a nil pick selects uniformly at random.
func NewUnsplashStrategy(client PhotoSearcher, tracker *quota.Tracker, pick Picker, logger *zap.Logger) *UnsplashStrategy {
	return &UnsplashStrategy{
		client:  client,
		tracker: tracker,
		pick:    pickerOrRandom(pick),
		logger:  loggerOrNop(logger).With(zap.String("tier", providers.UnsplashName)),
	}
}

func (s *UnsplashStrategy) Name() string {
	return providers.UnsplashName
}

func (s *UnsplashStrategy) Resolve(ctx context.Context, query string) (models.ImageResult, bool) {
	if s.client == nil || !s.client.Configured() {
		return models.ImageResult{}, false
	}
	if s.tracker != nil && !s.tracker.Available() {
		s.logger.Warn("approaching hourly quota, skipping tier", zap.Int("remaining", s.tracker.Remaining()))
		return models.ImageResult{}, false
	}

	for _, variant := range PrimaryQueryVariants(query) {
		if ctx.Err() != nil {
			return models.ImageResult{}, false
		}
		if s.tracker != nil && !s.tracker.TryAcquire() {
			s.logger.Warn("hourly quota spent mid-search")
			return models.ImageResult{}, false
		}

		photos, err := s.client.SearchPhotos(ctx, variant)
		if err != nil {
			if errors.Is(err, providers.ErrQuotaExhausted) {
				s.logger.Warn("provider refused access, abandoning tier", zap.String("variant", variant), zap.Error(err))
				return models.ImageResult{}, false
			}
			s.logger.Warn("search failed", zap.String("variant", variant), zap.Error(err))
			continue
		}

		relevant := relevantPhotos(photos, query)
		if len(relevant) == 0 {
			continue
		}
		p := relevant[s.pick(min(pickWindow, len(relevant)))]
		return models.ImageResult{
			URL: p.URL,
			Attribution: models.Attribution{
				Name: p.AuthorName,
				Link: p.AuthorLink,
			},
			Source: models.SourceUnsplash,
		}, true
	}

	return models.ImageResult{}, false
}

// relevantPhotos keeps described photos whose description or alt text
// mentions query.
func relevantPhotos(photos []providers.Photo, query string) []providers.Photo {
	q := strings.ToLower(query)
	out := make([]providers.Photo, 0, len(photos))
	for _, p := range photos {
		if p.Description == "" && p.AltDescription == "" {
			continue
		}
		if strings.Contains(strings.ToLower(p.Description), q) || strings.Contains(strings.ToLower(p.AltDescription), q) {
			out = append(out, p)
		}
	}
	return out
}

// PixabayStrategy is the secondary tier. It sweeps query variants across a
// fixed set of categories.
type PixabayStrategy struct {
	client CategorySearcher
	pick   Picker
	logger *zap.Logger
}

func NewPixabayStrategy(client CategorySearcher, pick Picker, logger *zap.Logger) *PixabayStrategy {
	return &PixabayStrategy{
		client: client,
		pick:   pickerOrRandom(pick),
		logger: loggerOrNop(logger).With(zap.String("tier", providers.PixabayName)),
	}
}

func (s *PixabayStrategy) Name() string {
	return providers.PixabayName
}

func (s *PixabayStrategy) Resolve(ctx context.Context, query string) (models.ImageResult, bool) {
	if s.client == nil || !s.client.Configured() {
		return models.ImageResult{}, false
	}

	for _, variant := range SecondaryQueryVariants(query) {
		for _, category := range SecondaryCategories {
			if ctx.Err() != nil {
				return models.ImageResult{}, false
			}

			photos, err := s.client.SearchPhotos(ctx, variant, category)
			if err != nil {
				s.logger.Warn("search failed", zap.String("variant", variant), zap.String("category", category), zap.Error(err))
				continue
			}
			if len(photos) == 0 {
				continue
			}

			p := photos[s.pick(min(pickWindow, len(photos)))]
			return models.ImageResult{
				URL: p.URL,
				Attribution: models.Attribution{
					Name: p.AuthorName,
					Link: p.AuthorLink,
				},
				Source: models.SourcePixabay,
			}, true
		}
	}

	return models.ImageResult{}, false
}

// DefaultStrategy always succeeds with a stock photo chosen by keyword.
type DefaultStrategy struct{}

func (DefaultStrategy) Name() string {
	return string(models.SourceDefault)
}

func (DefaultStrategy) Resolve(_ context.Context, query string) (models.ImageResult, bool) {
	return DefaultImage(query), true
}

// ImageCascade tries each strategy in order and returns the first hit. It
// never fails: when every tier misses, the default classification is used.
type ImageCascade struct {
	strategies []ImageStrategy
	logger     *zap.Logger
}

func NewImageCascade(logger *zap.Logger, strategies ...ImageStrategy) *ImageCascade {
	return &ImageCascade{
		strategies: strategies,
		logger:     loggerOrNop(logger),
	}
}

func (c *ImageCascade) Tiers() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

func (c *ImageCascade) Resolve(ctx context.Context, query string) models.ImageResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return DefaultImage(query)
	}

	for _, s := range c.strategies {
		if result, ok := c.try(ctx, s, query); ok {
			c.logger.Debug("image resolved", zap.String("query", query), zap.String("tier", s.Name()))
			return result
		}
	}

	c.logger.Info("no tier matched, using default image", zap.String("query", query))
	return DefaultImage(query)
}

func (c *ImageCascade) try(ctx context.Context, s ImageStrategy, query string) (result models.ImageResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("image tier panicked", zap.String("tier", s.Name()), zap.Any("panic", r))
			result, ok = models.ImageResult{}, false
		}
	}()
	result, ok = s.Resolve(ctx, query)
	if ok && result.URL == "" {
		return models.ImageResult{}, false
	}
	return result, ok
}

func pickerOrRandom(p Picker) Picker {
	if p != nil {
		return p
	}
	return rand.IntN
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
