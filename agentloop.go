package agentloop

import (
	"context"
	"log/slog"

	"github.com/lumon-ai/agentloop/agent"
	"github.com/lumon-ai/agentloop/config"
	"github.com/lumon-ai/agentloop/engine"
	"github.com/lumon-ai/agentloop/errors"
	"github.com/lumon-ai/agentloop/internal/mylog"
	"github.com/lumon-ai/agentloop/knowledge"
	"github.com/lumon-ai/agentloop/tool"
)

type (
	// AgentLoop wires the full stack: completion engine, embedder, knowledge
	// service, tool registry and session manager. Every part can be swapped
	// through an Option, which is how tests run the loop without a network.
	AgentLoop struct {
		logger      *slog.Logger
		completer   engine.Completer
		embedder    knowledge.Embedder
		knowledge   knowledge.Service
		synthesizer *knowledge.Synthesizer
		registry    *tool.Registry
		manager     *agent.Manager

		logConfig       *config.LogConfig
		modelConfig     *config.ModelConfig
		agentConfig     *config.AgentConfig
		knowledgeConfig *config.KnowledgeConfig
	}

	Option func(*AgentLoop)
)

func New(ctx context.Context, optionFuncs ...Option) (*AgentLoop, error) {
	l := &AgentLoop{
		logConfig:       config.NewLogConfig(),
		modelConfig:     config.NewModelConfig(),
		agentConfig:     config.NewAgentConfig(),
		knowledgeConfig: config.NewKnowledgeConfig(),
	}
	for _, f := range optionFuncs {
		f(l)
	}

	if l.logger == nil {
		l.logger = mylog.NewLogger(l.logConfig.LogLevel, l.logConfig.LogHandler)
	}

	if l.completer == nil {
		completer, err := engine.NewOpenAICompleter(l.modelConfig)
		if err != nil {
			return nil, err
		}
		l.completer = completer
	}

	if l.embedder == nil && l.knowledge == nil {
		embedder, err := knowledge.NewNomicEmbedder(l.modelConfig)
		if err != nil {
			return nil, err
		}
		l.embedder = embedder
	}

	if l.knowledge == nil {
		service, err := knowledge.NewService(l.knowledgeConfig, l.logger, l.embedder)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create knowledge service")
		}
		l.knowledge = service
	}

	l.synthesizer = knowledge.NewSynthesizer(l.completer, l.modelConfig.Temperature)

	if l.registry == nil {
		l.registry = tool.NewRegistry()
		if err := l.registry.Register(tool.NewCalculatorTool()); err != nil {
			return nil, err
		}
		if err := l.registry.Register(tool.NewDocumentSearchTool(l.knowledge, l.synthesizer)); err != nil {
			return nil, err
		}
		if err := l.registry.Register(tool.NewWebSearchTool(l.modelConfig.SerpAPIKey)); err != nil {
			return nil, err
		}
	}

	l.manager = agent.NewManager(l.agentConfig, l.logger, l.completer, l.registry)

	return l, nil
}

// Chat runs one message through the session's agent loop.
func (l *AgentLoop) Chat(ctx context.Context, userID, sessionID, message string) (*agent.RunResult, error) {
	return l.manager.Session(userID, sessionID).Run(ctx, message)
}

// ResetSession clears a session's conversation memory.
func (l *AgentLoop) ResetSession(userID, sessionID string) {
	l.manager.Reset(userID, sessionID)
}

// Ask answers a question directly from the user's documents, bypassing the
// agent loop.
func (l *AgentLoop) Ask(ctx context.Context, userID, question string, topK int) (*knowledge.Answer, error) {
	results, err := l.knowledge.Retrieve(ctx, userID, question, topK)
	if err != nil {
		return nil, err
	}
	return l.synthesizer.Synthesize(ctx, question, results)
}

func (l *AgentLoop) Ingest(ctx context.Context, userID, name, text string) (*knowledge.IngestResult, error) {
	return l.knowledge.IngestDocument(ctx, userID, name, text)
}

func (l *AgentLoop) Logger() *slog.Logger { return l.logger }

func (l *AgentLoop) Manager() *agent.Manager { return l.manager }

func (l *AgentLoop) Registry() *tool.Registry { return l.registry }

func (l *AgentLoop) KnowledgeService() knowledge.Service { return l.knowledge }

func (l *AgentLoop) Synthesizer() *knowledge.Synthesizer { return l.synthesizer }

func (l *AgentLoop) Close() error {
	return l.knowledge.Close()
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *AgentLoop) {
		l.logger = logger
	}
}

func WithLogConfig(logConfig *config.LogConfig) Option {
	return func(l *AgentLoop) {
		l.logConfig = logConfig
	}
}

func WithOpenAIAPIKey(apiKey string) Option {
	return func(l *AgentLoop) {
		l.modelConfig.OpenAIAPIKey = apiKey
	}
}

func WithNomicAPIKey(apiKey string) Option {
	return func(l *AgentLoop) {
		l.modelConfig.NomicAPIKey = apiKey
	}
}

func WithSerpAPIKey(apiKey string) Option {
	return func(l *AgentLoop) {
		l.modelConfig.SerpAPIKey = apiKey
	}
}

func WithModelConfig(modelConfig *config.ModelConfig) Option {
	return func(l *AgentLoop) {
		l.modelConfig = modelConfig
	}
}

func WithAgentConfig(agentConfig *config.AgentConfig) Option {
	return func(l *AgentLoop) {
		l.agentConfig = agentConfig
	}
}

func WithKnowledgeConfig(knowledgeConfig *config.KnowledgeConfig) Option {
	return func(l *AgentLoop) {
		l.knowledgeConfig = knowledgeConfig
	}
}

func WithCompleter(completer engine.Completer) Option {
	return func(l *AgentLoop) {
		l.completer = completer
	}
}

func WithEmbedder(embedder knowledge.Embedder) Option {
	return func(l *AgentLoop) {
		l.embedder = embedder
	}
}

func WithKnowledgeService(service knowledge.Service) Option {
	return func(l *AgentLoop) {
		l.knowledge = service
	}
}

func WithRegistry(registry *tool.Registry) Option {
	return func(l *AgentLoop) {
		l.registry = registry
	}
}
