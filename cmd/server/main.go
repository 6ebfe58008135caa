package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dharmasatrya/tripplanner/internal/aggregator"
	"github.com/dharmasatrya/tripplanner/internal/cache"
	"github.com/dharmasatrya/tripplanner/internal/cascade"
	"github.com/dharmasatrya/tripplanner/internal/config"
	"github.com/dharmasatrya/tripplanner/internal/handler"
	"github.com/dharmasatrya/tripplanner/internal/providers"
	"github.com/dharmasatrya/tripplanner/internal/quota"
	"github.com/dharmasatrya/tripplanner/internal/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to read .env: " + err.Error())
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer logger.Sync()

	for _, key := range cfg.MissingCredentials() {
		logger.Warn("credential not set, provider will serve fallback data", zap.String("env", key))
	}

	defaultLimit, err := ratelimit.ParseLimit(cfg.RateLimitDefault)
	if err != nil {
		logger.Fatal("invalid RATE_LIMIT_DEFAULT", zap.Error(err))
	}
	providerLimits, err := ratelimit.ParseLimits(cfg.RateLimits)
	if err != nil {
		logger.Fatal("invalid RATE_LIMITS", zap.Error(err))
	}
	rateLimiter := ratelimit.New(defaultLimit, providerLimits)
	for _, name := range []string{providers.GeminiName, providers.UnsplashName, providers.PixabayName, providers.WeatherAPIName} {
		logger.Info("provider rate limit", zap.String("provider", name), zap.Stringer("limit", rateLimiter.LimitFor(name)))
	}

	tracker := quota.New(cfg.UnsplashHourly)

	gemini := providers.NewGeminiClient(providers.GeminiConfig{
		Options: providers.Options{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.TextTimeout,
			Limiter: rateLimiter,
			Logger:  logger,
		},
		Model:      cfg.GeminiModel,
		MaxRetries: cfg.TextMaxRetries,
	})
	unsplash := providers.NewUnsplashClient(providers.Options{
		APIKey:  cfg.UnsplashKey,
		BaseURL: cfg.UnsplashBaseURL,
		Timeout: cfg.ProviderTimeout,
		Limiter: rateLimiter,
		Logger:  logger,
	})
	pixabay := providers.NewPixabayClient(providers.Options{
		APIKey:  cfg.PixabayKey,
		BaseURL: cfg.PixabayBaseURL,
		Timeout: cfg.ProviderTimeout,
		Limiter: rateLimiter,
		Logger:  logger,
	})
	weatherAPI := providers.NewWeatherAPIClient(providers.Options{
		APIKey:  cfg.WeatherKey,
		BaseURL: cfg.WeatherBaseURL,
		Timeout: cfg.ProviderTimeout,
		Limiter: rateLimiter,
		Logger:  logger,
	})

	forecastCache := newForecastCache(cfg, logger)
	defer forecastCache.Close()

	text := cascade.NewTextResolver(gemini, logger)
	images := cascade.NewImageCascade(logger,
		cascade.NewUnsplashStrategy(unsplash, tracker, nil, logger),
		cascade.NewPixabayStrategy(pixabay, nil, logger),
		cascade.DefaultStrategy{},
	)
	weather := cascade.NewWeatherResolver(weatherAPI, forecastCache, logger)
	logger.Info("image cascade ready", zap.Strings("tiers", images.Tiers()))

	agg := aggregator.NewAggregator(text, images, weather, logger)
	sessions := aggregator.NewRegistry(agg, cfg.SessionTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sessions.Run(ctx, time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.Error(v.Error),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	handler.RegisterRoutes(e, handler.Handlers{
		Recommendations: handler.NewRecommendationHandler(agg, sessions, logger),
		Lookups:         handler.NewLookupHandler(images, weather, tracker),
		Export:          handler.NewExportHandler(logger),
	})

	go func() {
		logger.Info("starting trip planner server", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development() {
		zc = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	return zc.Build()
}

// newForecastCache falls back to no caching when redis is disabled or down;
// forecasts are always recomputable.
func newForecastCache(cfg config.Config, logger *zap.Logger) cache.ForecastCache {
	if !cfg.CacheEnabled {
		logger.Info("forecast cache disabled")
		return cache.NewNoOpCache()
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		TTL:      cfg.RedisTTL,
	})
	if err != nil {
		logger.Error("redis unavailable, forecast cache disabled", zap.Error(err))
		return cache.NewNoOpCache()
	}

	logger.Info("redis forecast cache enabled",
		zap.String("addr", cfg.RedisHost+":"+cfg.RedisPort),
		zap.Duration("ttl", cfg.RedisTTL))
	return redisCache
}
