package db

import (
	"fmt"
	"sync"

	"github.com/aqaranewbiz/mysql-aqara/internal/logger"
)

// factory builds a Database from a Config. Overridable in tests.
type factory func(Config) (Database, error)

// Manager owns the single current connection pool. At most one pool is
// live at any time; a successful Connect replaces the previous pool, a
// failed one leaves it untouched.
type Manager struct {
	mu          sync.RWMutex
	current     Database
	newDatabase factory
}

// NewManager creates a new connection manager.
func NewManager() *Manager {
	return &Manager{
		newDatabase: NewDatabase,
	}
}

// Connect validates the configuration, builds and verifies a new pool, and
// installs it as the current one. The prior pool is closed only after the
// new one is confirmed alive; operations already holding the old handle
// finish against it.
func (m *Manager) Connect(config Config) (Database, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	database, err := m.newDatabase(config)
	if err != nil {
		return nil, err
	}

	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	m.mu.Lock()
	previous := m.current
	m.current = database
	m.mu.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			logger.Warn("Error closing previous connection pool: %v", err)
		}
	}

	logger.Info("Connected to %s", database.ConnectionString())
	return database, nil
}

// Current returns the present pool without blocking, or ErrNotConnected
// when none exists.
func (m *Manager) Current() (Database, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, ErrNotConnected
	}
	return m.current, nil
}

// Connected reports whether a pool is currently live.
func (m *Manager) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Close tears down the current pool, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	err := m.current.Close()
	m.current = nil
	return err
}
