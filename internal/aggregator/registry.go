package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

const DefaultSessionTTL = 30 * time.Minute

// Registry keeps sessions in memory and forgets them after ttl of inactivity.
type Registry struct {
	agg    *Aggregator
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

type RegistryOption func(*Registry)

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(agg *Aggregator, ttl time.Duration, opts ...RegistryOption) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	r := &Registry{
		agg:      agg,
		ttl:      ttl,
		now:      time.Now,
		logger:   agg.logger,
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a new session for survey and starts its first cycle.
func (r *Registry) Create(ctx context.Context, survey models.SurveyInput) *Session {
	s := r.agg.NewSession(uuid.NewString(), survey)

	r.mu.Lock()
	r.evictLocked()
	r.sessions[s.ID()] = &entry{session: s, lastSeen: r.now()}
	r.mu.Unlock()

	s.Start(ctx)
	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if r.expired(e) {
		delete(r.sessions, id)
		return nil, false
	}
	e.lastSeen = r.now()
	return e.session, true
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops idle sessions and reports how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictLocked()
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) evictLocked() int {
	n := 0
	for id, e := range r.sessions {
		if r.expired(e) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *Registry) expired(e *entry) bool {
	return r.now().Sub(e.lastSeen) >= r.ttl
}
