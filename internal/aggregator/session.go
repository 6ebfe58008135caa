package aggregator

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusResolving  Status = "resolving"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

type SlotState string

const (
	SlotLoading SlotState = "loading"
	SlotReady   SlotState = "ready"
	SlotError   SlotState = "error"
)

// WeatherSlot tracks the forecast of a single destination.
type WeatherSlot struct {
	State   SlotState               `json:"state"`
	Weather *models.LocationWeather `json:"weather,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// Snapshot is a point-in-time copy of a session. Images stays nil until the
// whole image batch has settled.
type Snapshot struct {
	ID         string                        `json:"id"`
	Generation uint64                        `json:"generation"`
	Status     Status                        `json:"status"`
	Survey     models.SurveyInput            `json:"survey"`
	Bundle     *models.Bundle                `json:"recommendations,omitempty"`
	Images     map[string]models.ImageResult `json:"images,omitempty"`
	Weather    map[string]WeatherSlot        `json:"weather,omitempty"`
	Metadata   *models.ResolutionMetadata    `json:"metadata,omitempty"`
	Error      string                        `json:"error,omitempty"`
	UpdatedAt  time.Time                     `json:"updatedAt"`
}

// Session holds the progressively resolved state of one survey. Each Start or
// Refresh begins a new generation; updates from older generations are dropped.
type Session struct {
	id     string
	agg    *Aggregator
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	state Snapshot
	done  chan struct{}
}

func (a *Aggregator) NewSession(id string, survey models.SurveyInput) *Session {
	done := make(chan struct{})
	close(done)
	return &Session{
		id:     id,
		agg:    a,
		logger: a.logger.With(zap.String("session_id", id)),
		now:    time.Now,
		state: Snapshot{
			ID:     id,
			Status: StatusIdle,
			Survey: survey,
		},
		done: done,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Start begins a resolution cycle and returns its generation. The cycle is
// detached from ctx cancellation and keeps running after the caller returns.
func (s *Session) Start(ctx context.Context) uint64 {
	s.mu.Lock()
	s.state.Generation++
	gen := s.state.Generation
	survey := s.state.Survey
	s.state.Status = StatusGenerating
	s.state.Bundle = nil
	s.state.Images = nil
	s.state.Weather = nil
	s.state.Metadata = nil
	s.state.Error = ""
	s.state.UpdatedAt = s.now()
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	s.logger.Info("resolution cycle started", zap.Uint64("generation", gen))
	go s.run(context.WithoutCancel(ctx), gen, survey, done)
	return gen
}

// Refresh discards every resolved value and starts over.
func (s *Session) Refresh(ctx context.Context) uint64 {
	return s.Start(ctx)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	if s.state.Bundle != nil {
		b := *s.state.Bundle
		snap.Bundle = &b
	}
	if s.state.Metadata != nil {
		m := *s.state.Metadata
		m.ImageSources = maps.Clone(m.ImageSources)
		snap.Metadata = &m
	}
	snap.Images = maps.Clone(s.state.Images)
	snap.Weather = maps.Clone(s.state.Weather)
	return snap
}

// Wait blocks until the latest cycle has settled or ctx is done.
func (s *Session) Wait(ctx context.Context) (Snapshot, error) {
	for {
		s.mu.Lock()
		done, gen := s.done, s.state.Generation
		s.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}

		s.mu.Lock()
		current := s.state.Generation
		s.mu.Unlock()
		if current == gen {
			return s.Snapshot(), nil
		}
	}
}

func (s *Session) run(ctx context.Context, gen uint64, survey models.SurveyInput, done chan struct{}) {
	startTime := time.Now()
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("resolution cycle panicked", zap.Uint64("generation", gen), zap.Any("panic", r))
			s.fail(gen, fmt.Errorf("%w: %v", ErrUnexpected, r))
		}
	}()

	bundle, err := s.agg.generate(ctx, survey)
	if err != nil {
		s.fail(gen, err)
		return
	}

	s.update(gen, func(st *Snapshot) {
		st.Status = StatusResolving
		st.Bundle = &bundle
		st.Weather = make(map[string]WeatherSlot, len(bundle.Destinations))
		for _, dest := range bundle.Destinations {
			st.Weather[dest.Name] = WeatherSlot{State: SlotLoading}
		}
	})

	var wg sync.WaitGroup
	for _, dest := range bundle.Destinations {
		wg.Go(func() {
			w, err := s.agg.forecast(ctx, dest.Name, survey)
			s.update(gen, func(st *Snapshot) {
				if err != nil {
					st.Weather[dest.Name] = WeatherSlot{State: SlotError, Error: err.Error()}
					return
				}
				st.Weather[dest.Name] = WeatherSlot{State: SlotReady, Weather: &w}
			})
		})
	}

	images := s.agg.resolveImages(ctx, bundle.Destinations)
	s.update(gen, func(st *Snapshot) {
		st.Images = images
	})

	wg.Wait()

	stale := !s.update(gen, func(st *Snapshot) {
		result := &Result{Bundle: bundle, Images: images, Weather: make(map[string]models.LocationWeather)}
		for name, slot := range st.Weather {
			if slot.Weather != nil {
				result.Weather[name] = *slot.Weather
			}
		}
		meta := buildMetadata(result, time.Since(startTime))
		st.Metadata = &meta
		st.Status = StatusComplete
	})
	if stale {
		s.logger.Debug("superseded cycle finished", zap.Uint64("generation", gen))
		return
	}
	s.logger.Info("resolution cycle complete", zap.Uint64("generation", gen))
}

func (s *Session) fail(gen uint64, err error) {
	s.update(gen, func(st *Snapshot) {
		st.Status = StatusFailed
		st.Error = err.Error()
	})
}

// update applies fn only while gen is still the current generation.
func (s *Session) update(gen uint64, fn func(*Snapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.state.Generation {
		return false
	}
	fn(&s.state)
	s.state.UpdatedAt = s.now()
	return true
}
