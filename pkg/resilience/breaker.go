package resilience

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultFailureThreshold = 3
	DefaultResetTimeout     = 30 * time.Second
)

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half_open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

type BreakerConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}

// StateObserver is notified after every state transition.
type StateObserver func(name string, from, to State)

type BreakerOption func(*Breaker)

func WithClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) { b.now = now }
}

func WithObserver(obs StateObserver) BreakerOption {
	return func(b *Breaker) { b.observer = obs }
}

func WithBreakerLogger(logger *zap.Logger) BreakerOption {
	return func(b *Breaker) { b.logger = logger }
}

// Breaker guards one provider. Consecutive failures open it; once the reset
// timeout has passed since the last failure a single trial request is let through.
type Breaker struct {
	name     string
	cfg      BreakerConfig
	now      func() time.Time
	observer StateObserver
	logger   *zap.Logger

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	open        bool
	trialIssued bool
}

func NewBreaker(name string, cfg BreakerConfig, opts ...BreakerOption) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = DefaultResetTimeout
	}
	b := &Breaker{name: name, cfg: cfg, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

// Allow reports whether a request may be attempted now.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	if b.trialIssued || !b.resetElapsed() {
		return false
	}

	b.trialIssued = true
	b.logger.Info("breaker_half_open", zap.String("name", b.name), zap.Int("failures", b.failures))
	b.notify(StateOpen, StateHalfOpen)
	return true
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	from := b.stateLocked()
	b.failures = 0
	b.open = false
	b.trialIssued = false
	if from != StateClosed {
		b.logger.Info("breaker_closed", zap.String("name", b.name), zap.String("from", from.String()))
		b.notify(from, StateClosed)
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	from := b.stateLocked()
	b.failures++
	b.lastFailure = b.now()
	b.trialIssued = false
	if b.failures >= b.cfg.FailureThreshold {
		if !b.open {
			b.logger.Warn("breaker_opened", zap.String("name", b.name), zap.Int("failures", b.failures))
		}
		b.open = true
	}
	if to := b.stateLocked(); to != from {
		b.notify(from, to)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

// Snapshot is a point-in-time view used by health checks and metrics.
type Snapshot struct {
	Name        string     `json:"name"`
	State       string     `json:"state"`
	CircuitOpen bool       `json:"circuit_open"`
	Available   bool       `json:"available"`
	Failures    int        `json:"failures"`
	LastFailure *time.Time `json:"last_failure,omitempty"`
}

func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Snapshot{
		Name:        b.name,
		State:       b.stateLocked().String(),
		CircuitOpen: b.open,
		Available:   b.availableLocked(),
		Failures:    b.failures,
	}
	if !b.lastFailure.IsZero() {
		last := b.lastFailure
		s.LastFailure = &last
	}
	return s
}

func (b *Breaker) stateLocked() State {
	switch {
	case !b.open:
		return StateClosed
	case b.trialIssued || b.resetElapsed():
		return StateHalfOpen
	default:
		return StateOpen
	}
}

// availableLocked is Allow without claiming the half-open trial.
func (b *Breaker) availableLocked() bool {
	return !b.open || (!b.trialIssued && b.resetElapsed())
}

func (b *Breaker) resetElapsed() bool {
	return !b.lastFailure.IsZero() && b.now().Sub(b.lastFailure) > b.cfg.ResetTimeout
}

func (b *Breaker) notify(from, to State) {
	if b.observer != nil {
		b.observer(b.name, from, to)
	}
}

// Registry owns one breaker per provider name.
type Registry struct {
	cfg  BreakerConfig
	opts []BreakerOption

	mu       sync.Mutex
	breakers map[string]*Breaker
}

func NewRegistry(cfg BreakerConfig, opts ...BreakerOption) *Registry {
	return &Registry{cfg: cfg, opts: opts, breakers: make(map[string]*Breaker)}
}

// Get returns the breaker for name, creating it on first use.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := NewBreaker(name, r.cfg, r.opts...)
	r.breakers[name] = b
	return b
}

func (r *Registry) Snapshots() []Snapshot {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	out := make([]Snapshot, 0, len(breakers))
	for _, b := range breakers {
		out = append(out, b.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
