package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	TextTimeout     time.Duration
	TextMaxRetries  int
	UnsplashKey     string
	UnsplashBaseURL string
	UnsplashHourly  int
	PixabayKey      string
	PixabayBaseURL  string
	WeatherKey      string
	WeatherBaseURL  string
	ProviderTimeout time.Duration

	// Rate limits in ratelimit syntax: "rps:burst" and "provider=rps:burst,...".
	RateLimitDefault string
	RateLimits       string

	CacheEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisTTL      time.Duration

	SessionTTL time.Duration
}

// Load reads an optional .env file from the working directory, then the
// process environment. Variables already set in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	return Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "production"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:   os.Getenv("GEMINI_BASE_URL"),
		TextTimeout:     getEnvDuration("TEXT_TIMEOUT", 30*time.Second),
		TextMaxRetries:  getEnvInt("TEXT_MAX_RETRIES", 2),
		UnsplashKey:     os.Getenv("UNSPLASH_ACCESS_KEY"),
		UnsplashBaseURL: os.Getenv("UNSPLASH_BASE_URL"),
		UnsplashHourly:  getEnvInt("UNSPLASH_HOURLY_LIMIT", 50),
		PixabayKey:      os.Getenv("PIXABAY_API_KEY"),
		PixabayBaseURL:  os.Getenv("PIXABAY_BASE_URL"),
		WeatherKey:      os.Getenv("WEATHER_API_KEY"),
		WeatherBaseURL:  os.Getenv("WEATHER_BASE_URL"),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),

		RateLimitDefault: getEnv("RATE_LIMIT_DEFAULT", "5:10"),
		RateLimits:       getEnv("RATE_LIMITS", "gemini=1:2,unsplash=5:10,pixabay=10:20,weatherapi=10:20"),

		CacheEnabled:  getEnvBool("CACHE_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisTTL:      getEnvDuration("REDIS_TTL", 3*time.Hour),

		SessionTTL: getEnvDuration("SESSION_TTL", 30*time.Minute),
	}
}

func (c Config) Development() bool {
	return c.AppEnv == "development"
}

// MissingCredentials lists the providers that will serve fallback data.
func (c Config) MissingCredentials() []string {
	var missing []string
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.UnsplashKey == "" {
		missing = append(missing, "UNSPLASH_ACCESS_KEY")
	}
	if c.PixabayKey == "" {
		missing = append(missing, "PIXABAY_API_KEY")
	}
	if c.WeatherKey == "" {
		missing = append(missing, "WEATHER_API_KEY")
	}
	return missing
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
