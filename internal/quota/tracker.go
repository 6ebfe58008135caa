package quota

import (
	"sync"
	"time"
)

const (
	DefaultWindow = time.Hour
	DefaultMargin = 5
)

// Tracker counts calls against a provider's fixed-window quota. The window
// restarts once it has been open for at least the configured duration.
type Tracker struct {
	mu      sync.Mutex
	limit   int
	margin  int
	window  time.Duration
	count   int
	resetAt time.Time
	now     func() time.Time
}

type Option func(*Tracker)

func WithWindow(d time.Duration) Option {
	return func(t *Tracker) { t.window = d }
}

// WithMargin sets how many calls are held back before Available reports false.
func WithMargin(n int) Option {
	return func(t *Tracker) { t.margin = n }
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

type State struct {
	Count     int       `json:"count"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

func New(limit int, opts ...Option) *Tracker {
	t := &Tracker{
		limit:  limit,
		margin: DefaultMargin,
		window: DefaultWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.resetAt = t.now()
	return t
}

// Available reports whether more than the safety margin is left in the
// current window. It does not consume anything.
func (t *Tracker) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollLocked()
	return t.count < t.limit-t.margin
}

// TryAcquire records one call unless the hard limit has been reached.
func (t *Tracker) TryAcquire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollLocked()
	if t.count >= t.limit {
		return false
	}
	t.count++
	return true
}

func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollLocked()
	return max(t.limit-t.count, 0)
}

func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollLocked()
	return State{
		Count:     t.count,
		Limit:     t.limit,
		Remaining: max(t.limit-t.count, 0),
		ResetAt:   t.resetAt.Add(t.window),
	}
}

func (t *Tracker) rollLocked() {
	now := t.now()
	if now.Sub(t.resetAt) >= t.window {
		t.count = 0
		t.resetAt = now
	}
}
