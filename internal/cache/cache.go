package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

// ForecastCache stores resolved live forecasts keyed by ForecastKey.
type ForecastCache interface {
	Get(ctx context.Context, key string) (models.LocationWeather, bool)
	Set(ctx context.Context, key string, weather models.LocationWeather) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      3 * time.Hour,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisCacheWithClient(client, cfg.TTL), nil
}

// NewRedisCacheWithClient wraps an existing client without pinging it.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (models.LocationWeather, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return models.LocationWeather{}, false
	}

	var weather models.LocationWeather
	if err := json.Unmarshal(data, &weather); err != nil {
		return models.LocationWeather{}, false
	}

	return weather, true
}

func (c *RedisCache) Set(ctx context.Context, key string, weather models.LocationWeather) error {
	data, err := json.Marshal(weather)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key string) (models.LocationWeather, bool) {
	return models.LocationWeather{}, false
}

func (c *NoOpCache) Set(ctx context.Context, key string, weather models.LocationWeather) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// ForecastKey identifies a city forecast over a date range. City matching is
// case- and whitespace-insensitive.
func ForecastKey(city string, start, end time.Time) string {
	keyData := struct {
		City  string
		Start string
		End   string
	}{
		City:  strings.ToLower(strings.Join(strings.Fields(city), " ")),
		Start: start.Format(models.DateLayout),
		End:   end.Format(models.DateLayout),
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return "forecast:" + hex.EncodeToString(hash[:])
}
