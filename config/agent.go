package config

import "time"

type AgentConfig struct {
	// MaxIterations bounds the think/execute cycle of one run. The loop
	// terminates with a best-effort answer once the budget is spent.
	MaxIterations int `env:"AGENT_MAX_ITERATIONS"`

	// MaxTurns is the retention window of conversation memory, counted in
	// user/agent exchanges. The raw turn log is capped at 2*MaxTurns.
	MaxTurns int `env:"AGENT_MAX_TURNS"`

	// SessionTTL is the idle lifetime of a session before eviction.
	SessionTTL time.Duration `env:"AGENT_SESSION_TTL"`
}

func NewAgentConfig() *AgentConfig {
	return &AgentConfig{
		MaxIterations: 10,
		MaxTurns:      10,
		SessionTTL:    30 * time.Minute,
	}
}

func (c *AgentConfig) Resolve(testing bool) error {
	return resolveConfig(c, testing)
}
