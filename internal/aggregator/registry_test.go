package aggregator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(clock *testClock) *Registry {
	agg := NewAggregator(&fakeText{bundles: []models.Bundle{bundleOf("Lisbon")}}, &fakeImages{}, &fakeWeather{}, nil)
	return NewRegistry(agg, 10*time.Minute, WithRegistryClock(clock.Now))
}

func TestRegistry_Lifecycle(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	r := newTestRegistry(clock)

	s := r.Create(context.Background(), testSurvey())
	if _, err := uuid.Parse(s.ID()); err != nil {
		t.Fatalf("session id %q is not a uuid: %v", s.ID(), err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}

	got, ok := r.Get(s.ID())
	if !ok || got != s {
		t.Fatal("Get() did not return the created session")
	}
	if _, err := got.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if !r.Delete(s.ID()) {
		t.Error("Delete() = false for an existing session")
	}
	if r.Delete(s.ID()) {
		t.Error("Delete() = true for a removed session")
	}
	if _, ok := r.Get(s.ID()); ok {
		t.Error("Get() found a deleted session")
	}
}

func TestRegistry_IdleEviction(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	r := newTestRegistry(clock)

	idle := r.Create(context.Background(), testSurvey())
	active := r.Create(context.Background(), testSurvey())

	clock.Advance(6 * time.Minute)
	if _, ok := r.Get(active.ID()); !ok {
		t.Fatal("active session missing")
	}

	clock.Advance(5 * time.Minute)
	if n := r.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if _, ok := r.Get(idle.ID()); ok {
		t.Error("idle session survived its ttl")
	}
	if _, ok := r.Get(active.ID()); !ok {
		t.Error("recently used session was evicted")
	}

	clock.Advance(10 * time.Minute)
	if _, ok := r.Get(active.ID()); ok {
		t.Error("Get() returned an expired session")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}
