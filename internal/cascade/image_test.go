package cascade_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/dharmasatrya/tripplanner/internal/cascade"
	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/providers"
	"github.com/dharmasatrya/tripplanner/internal/quota"
)

// fakePrimary answers each query from a script keyed by call order.
type fakePrimary struct {
	mu         sync.Mutex
	configured bool
	responses  []primaryResponse
	queries    []string
}

type primaryResponse struct {
	photos []providers.Photo
	err    error
}

func (f *fakePrimary) Configured() bool { return f.configured }

func (f *fakePrimary) SearchPhotos(ctx context.Context, query string) ([]providers.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.queries)
	f.queries = append(f.queries, query)
	if i < len(f.responses) {
		return f.responses[i].photos, f.responses[i].err
	}
	return nil, nil
}

func (f *fakePrimary) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeSecondary struct {
	mu         sync.Mutex
	configured bool
	hitAt      int
	photos     []providers.Photo
	err        error
	calls      []string
}

func (f *fakeSecondary) Configured() bool { return f.configured }

func (f *fakeSecondary) SearchPhotos(ctx context.Context, query, category string) ([]providers.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query+"|"+category)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.calls)-1 == f.hitAt {
		return f.photos, nil
	}
	return nil, nil
}

func first(int) int { return 0 }

func forbidden() error {
	return &providers.ProviderError{Provider: providers.UnsplashName, StatusCode: 403, Err: providers.ErrQuotaExhausted}
}

func newTracker(limit int) *quota.Tracker {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return quota.New(limit, quota.WithClock(func() time.Time { return now }))
}

func TestImageCascade_PrimaryMatch(t *testing.T) {
	primary := &fakePrimary{
		configured: true,
		responses: []primaryResponse{
			{photos: []providers.Photo{{URL: "https://img/unrelated", Description: "a cat"}}},
			{photos: []providers.Photo{
				{URL: "https://img/undescribed"},
				{URL: "https://img/kyoto", AltDescription: "Temple in KYOTO at dawn", AuthorName: "Aiko", AuthorLink: "https://u/aiko"},
			}},
		},
	}
	secondary := &fakeSecondary{configured: true}
	tracker := newTracker(50)

	c := cascade.NewImageCascade(nil,
		cascade.NewUnsplashStrategy(primary, tracker, first, nil),
		cascade.NewPixabayStrategy(secondary, first, nil),
		cascade.DefaultStrategy{},
	)

	got := c.Resolve(context.Background(), "Kyoto")
	want := models.ImageResult{
		URL:         "https://img/kyoto",
		Attribution: models.Attribution{Name: "Aiko", Link: "https://u/aiko"},
		Source:      models.SourceUnsplash,
	}
	if got != want {
		t.Fatalf("Resolve() = %+v, want %+v", got, want)
	}
	if primary.calls() != 2 {
		t.Errorf("primary calls = %d, want 2", primary.calls())
	}
	if len(secondary.calls) != 0 {
		t.Errorf("secondary should not be consulted, got %v", secondary.calls)
	}
	if s := tracker.Snapshot(); s.Count != 2 {
		t.Errorf("quota count = %d, want 2", s.Count)
	}
}

func TestImageCascade_ForbiddenSkipsToSecondary(t *testing.T) {
	primary := &fakePrimary{
		configured: true,
		responses:  []primaryResponse{{err: forbidden()}},
	}
	secondary := &fakeSecondary{
		configured: true,
		hitAt:      0,
		photos:     []providers.Photo{{URL: "https://pix/1", AuthorName: "kim", AuthorLink: "https://pix/page/1"}},
	}

	c := cascade.NewImageCascade(nil,
		cascade.NewUnsplashStrategy(primary, newTracker(50), first, nil),
		cascade.NewPixabayStrategy(secondary, first, nil),
		cascade.DefaultStrategy{},
	)

	got := c.Resolve(context.Background(), "Reykjavik")
	if got.Source != models.SourcePixabay || got.URL != "https://pix/1" {
		t.Fatalf("expected pixabay result, got %+v", got)
	}
	if primary.calls() != 1 {
		t.Errorf("primary attempted %d variants after 403, want 1", primary.calls())
	}
	if secondary.calls[0] != "Reykjavik landmark|travel" {
		t.Errorf("first secondary call = %q", secondary.calls[0])
	}
}

func TestImageCascade_TransportErrorsAdvanceVariants(t *testing.T) {
	primary := &fakePrimary{
		configured: true,
		responses: []primaryResponse{
			{err: providers.NewProviderError(providers.UnsplashName, errors.New("connection reset"))},
			{err: &providers.ProviderError{Provider: providers.UnsplashName, StatusCode: 500, Err: errors.New("oops")}},
			{photos: []providers.Photo{{URL: "https://img/rome", Description: "Rome at night"}}},
		},
	}

	c := cascade.NewImageCascade(nil,
		cascade.NewUnsplashStrategy(primary, newTracker(50), first, nil),
		cascade.DefaultStrategy{},
	)

	got := c.Resolve(context.Background(), "rome")
	if got.Source != models.SourceUnsplash || got.URL != "https://img/rome" {
		t.Fatalf("expected third variant to match, got %+v", got)
	}
}

func TestImageCascade_QuotaMarginBypassesPrimary(t *testing.T) {
	tracker := newTracker(50)
	for i := 0; i < 46; i++ {
		tracker.TryAcquire()
	}

	primary := &fakePrimary{configured: true}
	secondary := &fakeSecondary{configured: true, hitAt: 0, photos: []providers.Photo{{URL: "https://pix/2"}}}

	c := cascade.NewImageCascade(nil,
		cascade.NewUnsplashStrategy(primary, tracker, first, nil),
		cascade.NewPixabayStrategy(secondary, first, nil),
		cascade.DefaultStrategy{},
	)

	got := c.Resolve(context.Background(), "Lima")
	if primary.calls() != 0 {
		t.Fatalf("primary called %d times with quota margin reached", primary.calls())
	}
	if got.Source != models.SourcePixabay {
		t.Fatalf("expected pixabay, got %+v", got)
	}
	if s := tracker.Snapshot(); s.Count != 46 {
		t.Errorf("quota count changed to %d", s.Count)
	}
}

func TestImageCascade_PrimaryVariantsExhausted(t *testing.T) {
	primary := &fakePrimary{configured: true}
	tracker := newTracker(50)

	c := cascade.NewImageCascade(nil,
		cascade.NewUnsplashStrategy(primary, tracker, first, nil),
		cascade.DefaultStrategy{},
	)
	got := c.Resolve(context.Background(), "Atlantis beach")

	wantCalls := len(cascade.PrimaryQueryVariants("Atlantis beach"))
	if wantCalls != 11 {
		t.Fatalf("expected 11 primary variants, got %d", wantCalls)
	}
	if primary.calls() != wantCalls || tracker.Snapshot().Count != wantCalls {
		t.Errorf("calls=%d quota=%d, want %d", primary.calls(), tracker.Snapshot().Count, wantCalls)
	}
	if got != cascade.DefaultImage("Atlantis beach") {
		t.Errorf("expected default beach image, got %+v", got)
	}
}

func TestImageCascade_SecondarySweepsCategories(t *testing.T) {
	secondary := &fakeSecondary{
		configured: true,
		hitAt:      5,
		photos: []providers.Photo{
			{URL: "https://pix/a"}, {URL: "https://pix/b"}, {URL: "https://pix/c"},
			{URL: "https://pix/d"}, {URL: "https://pix/e"}, {URL: "https://pix/f"},
		},
	}

	var window int
	pick := func(n int) int {
		window = n
		return n - 1
	}

	c := cascade.NewImageCascade(nil, cascade.NewPixabayStrategy(secondary, pick, nil))
	got := c.Resolve(context.Background(), "Cusco")

	if secondary.calls[5] != "Cusco destination|places" {
		t.Errorf("sixth call = %q, want second variant in second category", secondary.calls[5])
	}
	if window != 5 {
		t.Errorf("pick window = %d, want 5", window)
	}
	if got.URL != "https://pix/e" || got.Source != models.SourcePixabay {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestImageCascade_UnconfiguredTiersFallToDefault(t *testing.T) {
	primary := &fakePrimary{configured: false}
	secondary := &fakeSecondary{configured: false}
	tracker := newTracker(50)

	c := cascade.NewImageCascade(nil,
		cascade.NewUnsplashStrategy(primary, tracker, nil, nil),
		cascade.NewPixabayStrategy(secondary, nil, nil),
		cascade.DefaultStrategy{},
	)

	got := c.Resolve(context.Background(), "Swiss mountain village")
	if got.Source != models.SourceDefault || got != cascade.DefaultImage("mountain") {
		t.Fatalf("expected default mountain image, got %+v", got)
	}
	if primary.calls() != 0 || len(secondary.calls) != 0 || tracker.Snapshot().Count != 0 {
		t.Error("unconfigured providers must not be called or counted")
	}
}

type panickyStrategy struct{}

func (panickyStrategy) Name() string { return "panicky" }
func (panickyStrategy) Resolve(context.Context, string) (models.ImageResult, bool) {
	panic("boom")
}

func TestImageCascade_AlwaysReturnsWellFormedResult(t *testing.T) {
	c := cascade.NewImageCascade(nil, panickyStrategy{})

	for _, q := range []string{"", "   ", "Paris", "ancient historic ruins", "💥"} {
		got := c.Resolve(context.Background(), q)
		switch got.Source {
		case models.SourceUnsplash, models.SourcePixabay, models.SourceDefault:
		default:
			t.Errorf("query %q: unexpected source %q", q, got.Source)
		}
		u, err := url.Parse(got.URL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			t.Errorf("query %q: malformed url %q", q, got.URL)
		}
	}
}

func TestImageCascade_Tiers(t *testing.T) {
	c := cascade.NewImageCascade(nil,
		cascade.NewUnsplashStrategy(&fakePrimary{}, nil, nil, nil),
		cascade.NewPixabayStrategy(&fakeSecondary{}, nil, nil),
		cascade.DefaultStrategy{},
	)
	got := c.Tiers()
	want := []string{"unsplash", "pixabay", "default"}
	if len(got) != len(want) {
		t.Fatalf("Tiers() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tiers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
