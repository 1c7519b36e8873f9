package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/fastygo/academy/internal/infrastructure/buffer"
)

// Pinger probes a remote endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps lists what the monitor watches. Nil fields are reported as disabled.
type Deps struct {
	Postgres *pgxpool.Pool
	Redis    *redislib.Client
	Bolt     *bolt.DB
	Outbox   *buffer.Store
	Gateway  Pinger
}

type Monitor struct {
	deps Deps

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(deps Deps, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		deps:     deps,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	m.refresh()
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the push gateway answered the last probe.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PushGateway.Up
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	store, backend := m.checkStore()
	outbox, size := m.checkOutbox()
	status := Status{
		Store:        store,
		StoreBackend: backend,
		PostgreSQL:   m.checkPostgres(),
		Outbox:       outbox,
		OutboxSize:   size,
		PushGateway:  m.checkGateway(),
		LastCheck:    time.Now(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if previous.Healthy() && !status.Healthy() {
		m.logger.Warn("session dependencies degraded",
			zap.Bool("store", status.Store.Up),
			zap.Bool("postgresql", status.PostgreSQL.Up))
	}
}

func (m *Monitor) checkStore() (Check, string) {
	switch {
	case m.deps.Redis != nil:
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return Check{Enabled: true, Up: m.deps.Redis.Ping(ctx).Err() == nil}, "redis"
	case m.deps.Bolt != nil:
		err := m.deps.Bolt.View(func(*bolt.Tx) error { return nil })
		return Check{Enabled: true, Up: err == nil}, "bolt"
	default:
		return Check{}, ""
	}
}

func (m *Monitor) checkPostgres() Check {
	if m.deps.Postgres == nil {
		return Check{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return Check{Enabled: true, Up: m.deps.Postgres.Ping(ctx) == nil}
}

func (m *Monitor) checkOutbox() (Check, int) {
	if m.deps.Outbox == nil {
		return Check{}, 0
	}
	size, err := m.deps.Outbox.Size()
	if err != nil {
		m.logger.Warn("outbox size check failed", zap.Error(err))
		return Check{Enabled: true}, size
	}
	return Check{Enabled: true, Up: true}, size
}

func (m *Monitor) checkGateway() Check {
	if m.deps.Gateway == nil {
		return Check{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return Check{Enabled: true, Up: m.deps.Gateway.Ping(ctx) == nil}
}
