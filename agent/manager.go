package agent

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/lumon-ai/agentloop/config"
	"github.com/lumon-ai/agentloop/engine"
	"github.com/lumon-ai/agentloop/tool"
	"github.com/patrickmn/go-cache"
)

// Manager hands out per-session agents. Sessions are keyed by user and
// session id together, expire after the configured idle TTL, and every
// access refreshes the clock.
type Manager struct {
	mu        sync.Mutex
	sessions  *cache.Cache
	conf      *config.AgentConfig
	logger    *slog.Logger
	completer engine.Completer
	registry  *tool.Registry
}

func NewManager(conf *config.AgentConfig, logger *slog.Logger, completer engine.Completer, registry *tool.Registry) *Manager {
	return &Manager{
		sessions:  cache.New(conf.SessionTTL, 2*conf.SessionTTL),
		conf:      conf,
		logger:    logger,
		completer: completer,
		registry:  registry,
	}
}

func sessionKey(userID, sessionID string) string {
	return fmt.Sprintf("%s_%s", userID, sessionID)
}

// Session returns the agent for the given user and session, creating it on
// first use. Two users with the same session id get distinct agents.
func (m *Manager) Session(userID, sessionID string) *Agent {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey(userID, sessionID)
	if cached, ok := m.sessions.Get(key); ok {
		m.sessions.SetDefault(key, cached)
		return cached.(*Agent)
	}

	a := New(m.conf, m.logger, m.completer, m.registry, userID)
	m.sessions.SetDefault(key, a)

	m.logger.Info("created session",
		slog.String("user", userID),
		slog.String("session", sessionID))

	return a
}

// Reset clears the session's conversation and drops it from the cache. A
// missing session is a no-op.
func (m *Manager) Reset(userID, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey(userID, sessionID)
	if cached, ok := m.sessions.Get(key); ok {
		cached.(*Agent).Reset()
		m.sessions.Delete(key)
	}
}

func (m *Manager) SessionCount() int {
	return m.sessions.ItemCount()
}
