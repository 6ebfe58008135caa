package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

func TestForecastKey(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)

	a := ForecastKey("Paris", start, end)
	b := ForecastKey("  paris ", start, end)
	if a != b {
		t.Errorf("keys differ for equivalent cities: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "forecast:") {
		t.Errorf("missing prefix: %s", a)
	}
	if a == ForecastKey("Paris", start, end.AddDate(0, 0, 1)) {
		t.Error("different ranges must not share a key")
	}
	if a == ForecastKey("Lyon", start, end) {
		t.Error("different cities must not share a key")
	}
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", models.LocationWeather{City: "Paris"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("no-op cache must never hit")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestRedisCache_UnreachableServerMisses(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisCacheWithClient(client, time.Minute)
	defer c.Close()

	ctx := context.Background()
	if _, ok := c.Get(ctx, "forecast:x"); ok {
		t.Error("expected a miss when redis is unreachable")
	}
	if err := c.Set(ctx, "forecast:x", models.LocationWeather{City: "Paris"}); err == nil {
		t.Error("expected Set to report the connection failure")
	}
}
