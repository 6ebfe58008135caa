package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

func eventually(t *testing.T, s *Session, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := s.Snapshot()
		if cond(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met, last snapshot %+v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSession_WeatherSlotsSettleIndependently(t *testing.T) {
	lisbon := make(chan struct{})
	imageGate := make(chan struct{})
	agg := NewAggregator(
		&fakeText{bundles: []models.Bundle{bundleOf("Lisbon", "Porto")}},
		&fakeImages{gate: imageGate},
		&fakeWeather{gates: map[string]chan struct{}{"Lisbon": lisbon}},
		nil,
	)
	s := agg.NewSession("s-1", testSurvey())
	if s.Snapshot().Status != StatusIdle {
		t.Fatal("new session should be idle")
	}

	if gen := s.Start(context.Background()); gen != 1 {
		t.Fatalf("Start() = %d, want 1", gen)
	}

	snap := eventually(t, s, func(sn Snapshot) bool {
		return sn.Weather["Porto"].State == SlotReady
	})
	if snap.Status != StatusResolving {
		t.Errorf("status = %s, want resolving", snap.Status)
	}
	if snap.Weather["Lisbon"].State != SlotLoading {
		t.Errorf("Lisbon slot = %+v, want loading", snap.Weather["Lisbon"])
	}
	if snap.Images != nil {
		t.Errorf("images exposed before the batch settled: %v", snap.Images)
	}

	close(imageGate)
	snap = eventually(t, s, func(sn Snapshot) bool { return sn.Images != nil })
	if len(snap.Images) != 2 {
		t.Errorf("images = %v, want both destinations at once", snap.Images)
	}

	close(lisbon)
	snap, err := s.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.Status != StatusComplete || snap.Weather["Lisbon"].State != SlotReady {
		t.Errorf("unexpected final snapshot %+v", snap)
	}
	if snap.Metadata == nil || snap.Metadata.Destinations != 2 {
		t.Errorf("metadata = %+v", snap.Metadata)
	}
}

func TestSession_WeatherPanicMarksSlotError(t *testing.T) {
	agg := NewAggregator(
		&fakeText{bundles: []models.Bundle{bundleOf("Lisbon", "Porto")}},
		&fakeImages{},
		&fakeWeather{panics: map[string]bool{"Lisbon": true}},
		nil,
	)
	s := agg.NewSession("s-2", testSurvey())
	s.Start(context.Background())

	snap, err := s.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if slot := snap.Weather["Lisbon"]; slot.State != SlotError || slot.Error == "" {
		t.Errorf("Lisbon slot = %+v, want error", slot)
	}
	if slot := snap.Weather["Porto"]; slot.State != SlotReady || slot.Weather == nil {
		t.Errorf("Porto slot = %+v, want ready", slot)
	}
	if snap.Status != StatusComplete {
		t.Errorf("status = %s", snap.Status)
	}
}

func TestSession_EmptyBundleFails(t *testing.T) {
	agg := NewAggregator(&fakeText{bundles: []models.Bundle{{}}}, &fakeImages{}, &fakeWeather{}, nil)
	s := agg.NewSession("s-3", testSurvey())
	s.Start(context.Background())

	snap, err := s.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.Status != StatusFailed || snap.Error != ErrEmptyBundle.Error() {
		t.Errorf("snapshot = %+v, want failed with empty bundle", snap)
	}
}

func TestSession_RefreshDropsStaleGeneration(t *testing.T) {
	firstGate := make(chan struct{})
	text := &fakeText{
		bundles: []models.Bundle{bundleOf("Stale"), bundleOf("Fresh")},
		gates:   []chan struct{}{firstGate},
	}
	agg := NewAggregator(
		text,
		&fakeImages{},
		&fakeWeather{},
		nil,
	)
	s := agg.NewSession("s-4", testSurvey())

	s.Start(context.Background())
	s.mu.Lock()
	firstDone := s.done
	s.mu.Unlock()

	// the first cycle must claim the gated response before the refresh
	deadline := time.Now().Add(2 * time.Second)
	for {
		text.mu.Lock()
		calls := text.calls
		text.mu.Unlock()
		if calls == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first cycle never reached the generator")
		}
		time.Sleep(time.Millisecond)
	}

	if gen := s.Refresh(context.Background()); gen != 2 {
		t.Fatalf("Refresh() = %d, want 2", gen)
	}
	snap, err := s.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.Generation != 2 || snap.Bundle.Destinations[0].Name != "Fresh" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	close(firstGate)
	select {
	case <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("superseded cycle never finished")
	}

	snap = s.Snapshot()
	if snap.Bundle.Destinations[0].Name != "Fresh" || snap.Status != StatusComplete {
		t.Errorf("stale cycle overwrote state: %+v", snap)
	}
	if _, ok := snap.Images["Stale"]; ok {
		t.Error("stale images leaked into the current generation")
	}
}

func TestSession_WaitHonoursContext(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	agg := NewAggregator(
		&fakeText{bundles: []models.Bundle{bundleOf("Lisbon")}, gates: []chan struct{}{gate}},
		&fakeImages{},
		&fakeWeather{},
		nil,
	)
	s := agg.NewSession("s-5", testSurvey())
	s.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	snap, err := s.Wait(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
	if snap.Status != StatusGenerating {
		t.Errorf("status = %s, want generating", snap.Status)
	}
}

func TestSession_SurvivesCallerCancellation(t *testing.T) {
	agg := NewAggregator(&fakeText{bundles: []models.Bundle{bundleOf("Lisbon")}}, &fakeImages{}, &fakeWeather{}, nil)
	s := agg.NewSession("s-6", testSurvey())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	snap, err := s.Wait(waitCtx(t))
	if err != nil || snap.Status != StatusComplete {
		t.Fatalf("got (%+v, %v), want completed cycle", snap, err)
	}
}
