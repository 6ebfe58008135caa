package ratelimit

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Limit is a steady request rate with a burst allowance.
type Limit struct {
	PerSecond float64
	Burst     int
}

// DefaultLimit applies to providers without an explicit entry.
var DefaultLimit = Limit{PerSecond: 5, Burst: 10}

func (l Limit) String() string {
	return strconv.FormatFloat(l.PerSecond, 'g', -1, 64) + ":" + strconv.Itoa(l.Burst)
}

// ParseLimit reads "rps:burst", e.g. "0.5:2".
func ParseLimit(s string) (Limit, error) {
	rps, burst, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Limit{}, fmt.Errorf("limit %q: want rps:burst", s)
	}
	perSecond, err := strconv.ParseFloat(strings.TrimSpace(rps), 64)
	if err != nil || perSecond <= 0 {
		return Limit{}, fmt.Errorf("limit %q: rps must be a positive number", s)
	}
	b, err := strconv.Atoi(strings.TrimSpace(burst))
	if err != nil || b < 1 {
		return Limit{}, fmt.Errorf("limit %q: burst must be a positive integer", s)
	}
	return Limit{PerSecond: perSecond, Burst: b}, nil
}

// ParseLimits reads a comma separated list of provider=rps:burst entries.
// Provider names are lowercased. An empty string yields no overrides.
func ParseLimits(s string) (map[string]Limit, error) {
	out := make(map[string]Limit)
	for entry := range strings.SplitSeq(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, spec, ok := strings.Cut(entry, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("rate limit entry %q: want provider=rps:burst", entry)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("rate limit for %s given twice", name)
		}
		l, err := ParseLimit(spec)
		if err != nil {
			return nil, fmt.Errorf("rate limit for %s: %w", name, err)
		}
		out[name] = l
	}
	return out, nil
}

// ProviderLimiter paces outbound calls per provider with a token bucket each.
// A nil *ProviderLimiter never blocks.
type ProviderLimiter struct {
	mu        sync.RWMutex
	fallback  Limit
	overrides map[string]Limit
	buckets   map[string]*rate.Limiter
}

// New builds a limiter that uses overrides[provider] when present and
// fallback otherwise. Buckets are created on first use.
func New(fallback Limit, overrides map[string]Limit) *ProviderLimiter {
	return &ProviderLimiter{
		fallback:  fallback,
		overrides: maps.Clone(overrides),
		buckets:   make(map[string]*rate.Limiter),
	}
}

// LimitFor reports the limit a provider is paced at.
func (p *ProviderLimiter) LimitFor(provider string) Limit {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if l, ok := p.overrides[provider]; ok {
		return l
	}
	return p.fallback
}

func (p *ProviderLimiter) bucket(provider string) *rate.Limiter {
	p.mu.RLock()
	b, ok := p.buckets[provider]
	p.mu.RUnlock()
	if ok {
		return b
	}

	l := p.LimitFor(provider)

	p.mu.Lock()
	defer p.mu.Unlock()
	if b, ok = p.buckets[provider]; ok {
		return b
	}
	b = rate.NewLimiter(rate.Limit(l.PerSecond), l.Burst)
	p.buckets[provider] = b
	return b
}

// Wait blocks until the provider may issue another request or ctx ends.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	if p == nil {
		return nil
	}
	if err := p.bucket(provider).Wait(ctx); err != nil {
		return fmt.Errorf("%s paced at %s: %w", provider, p.LimitFor(provider), err)
	}
	return nil
}
