package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lumon-ai/agentloop/config"
	"github.com/lumon-ai/agentloop/engine"
	"github.com/lumon-ai/agentloop/errors"
	"github.com/lumon-ai/agentloop/memory"
	"github.com/lumon-ai/agentloop/tool"
)

// decisionTemperature keeps the thinking step nearly deterministic; the
// marker protocol breaks down at higher temperatures.
const decisionTemperature = 0.2

const exhaustedMessage = "I couldn't complete the task within the allowed iterations."

type (
	// Agent runs the think/execute loop for one conversation. It is bound to
	// a user so document search stays scoped to that user's corpus.
	Agent struct {
		conf         *config.AgentConfig
		logger       *slog.Logger
		completer    engine.Completer
		registry     *tool.Registry
		conversation *memory.Conversation
		userID       string
	}

	// RunResult is the outcome of one Run: the answer, how many thinking
	// steps it took, and the transcript as it stands afterwards.
	RunResult struct {
		Answer     string        `json:"answer"`
		Iterations int           `json:"iterations"`
		History    []memory.Turn `json:"memory"`
	}
)

func New(conf *config.AgentConfig, logger *slog.Logger, completer engine.Completer, registry *tool.Registry, userID string) *Agent {
	return &Agent{
		conf:         conf,
		logger:       logger,
		completer:    completer,
		registry:     registry,
		conversation: memory.NewConversation(conf.MaxTurns),
		userID:       userID,
	}
}

// Run processes one user message through the loop: think, act on the
// decision, observe, repeat. The loop ends on a final answer or when the
// iteration budget runs out; the budget case still produces an answer built
// from whatever the tools observed.
func (a *Agent) Run(ctx context.Context, message string) (*RunResult, error) {
	a.conversation.AddTurn(memory.RoleUser, message, nil)

	var (
		finalAnswer  string
		iteration    int
		observations []string
	)

	for iteration < a.conf.MaxIterations && finalAnswer == "" {
		iteration++

		decision, err := a.think(ctx)
		if err != nil {
			return nil, err
		}

		if !decision.UseTool {
			finalAnswer = decision.Answer
			break
		}

		a.logger.Info("executing tool",
			slog.String("tool", decision.ToolName),
			slog.Int("iteration", iteration))

		result := a.executeTool(ctx, decision.ToolName, decision.ToolParams)
		observation := result.Flatten()
		observations = append(observations, observation)

		a.conversation.AddTurn(memory.RoleTool, observation, &memory.ToolCall{
			Name:   decision.ToolName,
			Params: decision.ToolParams,
		})
	}

	if finalAnswer == "" {
		finalAnswer = exhaustedAnswer(observations)
	}

	a.conversation.AddTurn(memory.RoleAgent, finalAnswer, nil)

	return &RunResult{
		Answer:     finalAnswer,
		Iterations: iteration,
		History:    a.conversation.History(),
	}, nil
}

// Reset clears the conversation transcript.
func (a *Agent) Reset() {
	a.conversation.Clear()
}

func (a *Agent) History() []memory.Turn {
	return a.conversation.History()
}

func (a *Agent) think(ctx context.Context) (Decision, error) {
	prompt := buildThinkingPrompt(a.registry.List(), a.conversation.Context())

	response, err := a.completer.Complete(ctx, prompt, decisionTemperature)
	if err != nil {
		return Decision{}, errors.Wrapf(err, "thinking step failed")
	}

	return ParseDecision(strings.TrimSpace(response)), nil
}

// executeTool dispatches the call, injecting the user scope for document
// search. The model never supplies user_id itself. Failures, including an
// unknown tool name, come back as failed results so the transcript shows the
// model what went wrong.
func (a *Agent) executeTool(ctx context.Context, name string, params map[string]any) *tool.Result {
	if name == "search_documents" && a.userID != "" {
		params["user_id"] = a.userID
	}

	result, err := a.registry.Execute(ctx, name, params)
	if err != nil {
		return tool.NewErrorResultf("error executing tool %s: %v", name, err)
	}
	return result
}

// exhaustedAnswer builds the budget-exceeded answer. Observations collected
// during the run are appended so the work done so far is not thrown away.
func exhaustedAnswer(observations []string) string {
	if len(observations) == 0 {
		return exhaustedMessage
	}

	var b strings.Builder
	b.WriteString(exhaustedMessage)
	b.WriteString(" Here is what I found so far:")
	for i, observation := range observations {
		fmt.Fprintf(&b, "\n%d. %s", i+1, observation)
	}
	return b.String()
}
