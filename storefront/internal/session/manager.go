// Package session keeps one cart engine and checkout orchestrator per
// browser session, rehydrated from the store on first use.
package session

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/growthshop/storefront/internal/cart"
	"github.com/fjod/growthshop/storefront/internal/checkout"
	"github.com/fjod/growthshop/storefront/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// EvictionInterval is how often idle sessions are checked.
const EvictionInterval = time.Minute

var ErrInvalidID = errors.New("invalid session id")

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Session is the live state of one browser session. The persisted part
// lives in the store under the session's namespace.
type Session struct {
	ID       string
	Cart     *cart.Engine
	Checkout *checkout.Orchestrator

	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithIdleTTL drops in-memory sessions unused for d. Persisted state stays.
func WithIdleTTL(d time.Duration) Option {
	return func(m *Manager) {
		m.idleTTL = d
	}
}

// WithCheckoutOptions are applied to every orchestrator the manager builds.
func WithCheckoutOptions(opts ...checkout.Option) Option {
	return func(m *Manager) {
		m.checkoutOpts = append(m.checkoutOpts, opts...)
	}
}

// Manager owns the live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	sfg      singleflight.Group // one rehydration per session id

	store        storage.Store
	catalog      cart.Catalog
	notifier     checkout.Notifier
	checkoutOpts []checkout.Option
	idleTTL      time.Duration
	now          func() time.Time
	logger       *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewManager(store storage.Store, catalog cart.Catalog, notifier checkout.Notifier, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		catalog:  catalog,
		notifier: notifier,
		now:      time.Now,
		logger:   zap.NewNop(),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.idleTTL > 0 {
		m.wg.Add(1)
		go m.evictLoop()
	}
	return m
}

// NewID issues an id for a browser that has none yet.
func (m *Manager) NewID() string {
	return uuid.NewString()
}

// Get returns the live session for id, rehydrating it from the store if
// needed. Concurrent first requests for one id share a single load.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if !validID.MatchString(id) {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
		return s, nil
	}

	v, err, _ := m.sfg.Do(id, func() (interface{}, error) {
		m.mu.RLock()
		s, ok := m.sessions[id]
		m.mu.RUnlock()
		if ok {
			return s, nil
		}

		// the load outlives the request that triggered it
		loadCtx := context.WithoutCancel(ctx)
		s = m.load(loadCtx, id)

		m.mu.Lock()
		m.sessions[id] = s
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	s = v.(*Session)
	s.touch(m.now())
	return s, nil
}

func (m *Manager) load(ctx context.Context, id string) *Session {
	log := m.logger.With(zap.String("session_id", id))
	store := storage.Scoped(m.store, id)

	engine := cart.NewEngine(ctx, m.catalog, store, cart.WithLogger(log))
	opts := append([]checkout.Option{checkout.WithLogger(log)}, m.checkoutOpts...)
	orch := checkout.NewOrchestrator(ctx, engine, store, m.notifier, opts...)

	log.Debug("session loaded", zap.Int("items", engine.Totals().ItemCount))
	return &Session{ID: id, Cart: engine, Checkout: orch}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) evictLoop() {
	defer m.wg.Done()

	interval := EvictionInterval
	if m.idleTTL < interval {
		interval = m.idleTTL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stop:
			return
		}
	}
}

// evictIdle drops sessions idle longer than the ttl. A session with an order
// submission in flight is kept.
func (m *Manager) evictIdle() {
	cutoff := m.now().Add(-m.idleTTL).UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.lastSeen.Load() >= cutoff || s.Checkout.Processing() {
			continue
		}
		delete(m.sessions, id)
		m.logger.Debug("session evicted", zap.String("session_id", id))
	}
}

func (m *Manager) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	m.wg.Wait()
	return nil
}
