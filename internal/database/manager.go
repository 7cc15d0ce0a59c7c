package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle state of a Manager.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Opener opens and verifies a database handle.
type Opener func(ctx context.Context) (*sql.DB, error)

// ErrNotConnected is returned by Ping before a successful Connect.
var ErrNotConnected = errors.New("database not connected")

// Manager owns the storage connection. Connect retries a bounded number
// of times with a linearly growing delay; Ping refreshes the state so
// readiness probes see outages.
type Manager struct {
	open     Opener
	attempts int
	backoff  time.Duration
	log      *zap.Logger

	mu    sync.RWMutex
	state State
	db    *sql.DB

	sleep func(ctx context.Context, d time.Duration) error
}

// NewManager returns a disconnected Manager.
func NewManager(open Opener, attempts int, backoff time.Duration, log *zap.Logger) *Manager {
	if attempts < 1 {
		attempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		open:     open,
		attempts: attempts,
		backoff:  backoff,
		log:      log,
		state:    StateDisconnected,
		sleep:    sleepCtx,
	}
}

// Connect opens the database, retrying up to the configured number of
// attempts. It returns the last open error when every attempt fails or
// ctx.Err() when ctx is cancelled between attempts.
func (m *Manager) Connect(ctx context.Context) (*sql.DB, error) {
	m.setState(StateConnecting)

	var lastErr error
	for attempt := 1; attempt <= m.attempts; attempt++ {
		db, err := m.open(ctx)
		if err == nil {
			m.mu.Lock()
			m.db = db
			m.state = StateConnected
			m.mu.Unlock()
			m.log.Info("database connected", zap.Int("attempt", attempt))
			return db, nil
		}
		lastErr = err
		m.log.Warn("database connect failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", m.attempts),
			zap.Error(err))
		if attempt == m.attempts {
			break
		}
		if err := m.sleep(ctx, time.Duration(attempt)*m.backoff); err != nil {
			m.setState(StateDisconnected)
			return nil, err
		}
	}
	m.setState(StateDisconnected)
	return nil, fmt.Errorf("database: %d attempts failed: %w", m.attempts, lastErr)
}

// DB returns the current handle, or nil before Connect succeeds.
func (m *Manager) DB() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Ping checks the handle and moves the manager between connected and
// disconnected accordingly.
func (m *Manager) Ping(ctx context.Context) error {
	db := m.DB()
	if db == nil {
		return ErrNotConnected
	}
	if err := db.PingContext(ctx); err != nil {
		if m.State() == StateConnected {
			m.log.Warn("database ping failed", zap.Error(err))
		}
		m.setState(StateDisconnected)
		return err
	}
	m.setState(StateConnected)
	return nil
}

// Close releases the handle.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateDisconnected
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
