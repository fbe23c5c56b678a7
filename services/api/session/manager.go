// Package session owns the simulations served by the API. Each session wraps
// one sim.Simulation behind its own lock, so ticks and reads for a session
// are serialised while different sessions proceed independently.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
)

// DefaultID names the session created at startup.
const DefaultID = "default"

var (
	ErrNotFound     = errors.New("session not found")
	ErrLimitReached = errors.New("session limit reached")
	ErrInvalidSteps = errors.New("invalid tick steps")
	ErrExists       = errors.New("session already exists")
	ErrInvalidRange = errors.New("invalid window length")
)

// Sink receives every batch a session appends, including its seed history.
type Sink interface {
	Publish(ctx context.Context, sessionID string, batch []sim.Reading) error
}

// Summary describes a session without its data.
type Summary struct {
	ID        string    `json:"id"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
	Clock     time.Time `json:"clock"`
	Rows      int       `json:"rows"`
	Ticks     int       `json:"ticks"`
}

type entry struct {
	mu        sync.Mutex
	id        string
	seed      int64
	createdAt time.Time
	sim       *sim.Simulation
}

// summary must be called with e.mu held.
func (e *entry) summary() Summary {
	return Summary{
		ID:        e.id,
		Seed:      e.seed,
		CreatedAt: e.createdAt,
		Clock:     e.sim.Clock(),
		Rows:      e.sim.Len(),
		Ticks:     tickCount(e.sim),
	}
}

// tickCount derives the number of ticks from the table size.
func tickCount(s *sim.Simulation) int {
	seeded := len(s.Pairs()) * (s.Options().HistoryMinutes + 1)
	return (s.Len() - seeded) / len(s.Pairs())
}

// Manager creates, looks up and discards sessions.
type Manager struct {
	opts     sim.Options
	maxSteps int
	limit    int
	sinks    []Sink
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry
}

// Config bundles Manager settings.
type Config struct {
	Options  sim.Options
	Limit    int
	MaxSteps int
	Sinks    []Sink
	Logger   *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewManager validates cfg.Options and returns an empty Manager.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 64
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 120
	}
	return &Manager{
		opts:     cfg.Options.Clone(),
		maxSteps: cfg.MaxSteps,
		limit:    cfg.Limit,
		sinks:    cfg.Sinks,
		logger:   cfg.Logger,
		now:      cfg.Now,
		sessions: make(map[string]*entry),
	}, nil
}

// Options returns the layout shared by all sessions.
func (m *Manager) Options() sim.Options { return m.opts.Clone() }

// MaxSteps is the largest accepted Tick step count.
func (m *Manager) MaxSteps() int { return m.maxSteps }

// Create starts a new session. A nil seed uses the configured seed; an empty
// id generates a random one.
func (m *Manager) Create(ctx context.Context, id string, seed *int64) (Summary, error) {
	opts := m.opts
	if seed != nil {
		opts.Seed = *seed
	}
	if id == "" {
		id = uuid.NewString()
	}

	now := m.now()
	s, err := sim.New(opts, now)
	if err != nil {
		return Summary{}, err
	}
	e := &entry{id: id, seed: opts.Seed, createdAt: now.UTC(), sim: s}
	seeded := s.Readings()
	sum := e.summary()

	m.mu.Lock()
	if _, exists := m.sessions[id]; exists {
		m.mu.Unlock()
		return Summary{}, fmt.Errorf("%w: %q", ErrExists, id)
	}
	if len(m.sessions) >= m.limit {
		m.mu.Unlock()
		return Summary{}, ErrLimitReached
	}
	m.sessions[id] = e
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", id),
		zap.Int64("seed", opts.Seed),
		zap.Int("rows", sum.Rows),
		zap.Time("clock", sum.Clock),
	)
	m.publish(ctx, id, seeded)
	return sum, nil
}

// Delete discards a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	m.logger.Info("session discarded", zap.String("session_id", id))
	return nil
}

// Get returns the summary of one session.
func (m *Manager) Get(id string) (Summary, error) {
	e, err := m.lookup(id)
	if err != nil {
		return Summary{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary(), nil
}

// List returns summaries ordered by creation time.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.summary())
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Tick appends steps batches to a session and returns everything appended.
func (m *Manager) Tick(ctx context.Context, id string, steps int) ([]sim.Reading, Summary, error) {
	if steps < 1 || steps > m.maxSteps {
		return nil, Summary{}, fmt.Errorf("%w: steps must be between 1 and %d", ErrInvalidSteps, m.maxSteps)
	}
	e, err := m.lookup(id)
	if err != nil {
		return nil, Summary{}, err
	}

	e.mu.Lock()
	var appended []sim.Reading
	for i := 0; i < steps; i++ {
		appended = append(appended, e.sim.Tick()...)
	}
	sum := e.summary()
	e.mu.Unlock()

	m.logger.Debug("session ticked",
		zap.String("session_id", id),
		zap.Int("steps", steps),
		zap.Int("rows", sum.Rows),
		zap.Time("clock", sum.Clock),
	)
	m.publish(ctx, id, appended)
	return appended, sum, nil
}

// With runs fn while holding the session's lock. fn must not retain s.
func (m *Manager) With(id string, fn func(s *sim.Simulation) error) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sim)
}

// Snapshot is a window of one pair plus its current reading.
type Snapshot struct {
	Clock   time.Time
	Window  sim.Window
	Current *sim.Reading
	Deltas  map[sim.Metric]float64
}

// Window selects the trailing minutes of floor/zone. An unknown pair yields
// an empty snapshot with a nil Current.
func (m *Manager) Window(id, floor, zone string, minutes int) (Snapshot, error) {
	if minutes < 0 {
		return Snapshot{}, fmt.Errorf("%w: minutes must be >= 0, got %d", ErrInvalidRange, minutes)
	}
	var snap Snapshot
	err := m.With(id, func(s *sim.Simulation) error {
		w := s.SelectLast(minutes, floor, zone)
		snap = Snapshot{Clock: s.Clock(), Window: w, Deltas: w.Deltas()}
		if cur, ok := w.Current(); ok {
			snap.Current = &cur
		}
		return nil
	})
	return snap, err
}

// Series returns the whole table, or one pair's history when floor and zone
// are both set.
func (m *Manager) Series(id, floor, zone string) ([]sim.Reading, error) {
	var out []sim.Reading
	err := m.With(id, func(s *sim.Simulation) error {
		if floor != "" && zone != "" {
			out = s.Select(time.Time{}, floor, zone).Readings
			return nil
		}
		out = s.Readings()
		return nil
	})
	return out, err
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *Manager) publish(ctx context.Context, id string, batch []sim.Reading) {
	for _, sink := range m.sinks {
		if err := sink.Publish(ctx, id, batch); err != nil {
			m.logger.Warn("sink publish failed",
				zap.String("session_id", id),
				zap.Int("readings", len(batch)),
				zap.Error(err),
			)
		}
	}
}
