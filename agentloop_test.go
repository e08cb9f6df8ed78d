package agentloop_test

import (
	"context"
	"hash/fnv"
	"io"
	"log/slog"
	"testing"

	"github.com/lumon-ai/agentloop"
	"github.com/lumon-ai/agentloop/config"
	"github.com/lumon-ai/agentloop/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedCompleter struct {
	responses []string
	calls     int
}

func (c *scriptedCompleter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	i := c.calls
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	c.calls++
	return c.responses[i], nil
}

func (c *scriptedCompleter) CompleteStream(ctx context.Context, prompt string, temperature float64, sink func(delta string) error) error {
	out, err := c.Complete(ctx, prompt, temperature)
	if err != nil {
		return err
	}
	return sink(out)
}

type hashEmbedder struct{}

func (hashEmbedder) EmbedTexts(ctx context.Context, taskType knowledge.EmbeddingTaskType, texts ...string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 8)
		for j := range v {
			h := fnv.New32a()
			h.Write([]byte(text))
			h.Write([]byte{byte(j)})
			v[j] = float32(h.Sum32()%1000)/1000.0 + 0.001
		}
		out[i] = v
	}
	return out, nil
}

func newTestLoop(t *testing.T, responses ...string) *agentloop.AgentLoop {
	t.Helper()

	knowledgeConf := config.NewKnowledgeConfig()
	knowledgeConf.EmbeddingDim = 8

	loop, err := agentloop.New(context.Background(),
		agentloop.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		agentloop.WithCompleter(&scriptedCompleter{responses: responses}),
		agentloop.WithEmbedder(hashEmbedder{}),
		agentloop.WithKnowledgeConfig(knowledgeConf),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = loop.Close() })
	return loop
}

func TestAgentLoop_Chat(t *testing.T) {
	loop := newTestLoop(t,
		`TOOL: calculator | PARAMS: {"expression": "23 * 17"}`,
		`ANSWER: 23 * 17 is 391.`,
	)

	result, err := loop.Chat(context.Background(), "u1", "s1", "what is 23 * 17?")
	require.NoError(t, err)

	assert.Equal(t, "23 * 17 is 391.", result.Answer)
	assert.Equal(t, 2, result.Iterations)
	assert.Contains(t, result.History[1].Content, "391")
}

func TestAgentLoop_DefaultRegistry(t *testing.T) {
	loop := newTestLoop(t, "ANSWER: ok")

	assert.Equal(t, []string{"calculator", "search_documents", "web_search"}, loop.Registry().Names())
}

func TestAgentLoop_IngestAndAsk(t *testing.T) {
	loop := newTestLoop(t, "The deadline is Friday.")

	result, err := loop.Ingest(context.Background(), "u1", "notes.txt", "The deadline is Friday. The meeting is Monday.")
	require.NoError(t, err)
	assert.NotEmpty(t, result.DocumentID)

	answer, err := loop.Ask(context.Background(), "u1", "when is the deadline?", 0)
	require.NoError(t, err)
	assert.Equal(t, "The deadline is Friday.", answer.Text)
	assert.NotZero(t, answer.UsedFragments)
}

func TestAgentLoop_AskWithoutDocuments(t *testing.T) {
	loop := newTestLoop(t, "should not be called")

	answer, err := loop.Ask(context.Background(), "nobody", "anything?", 0)
	require.NoError(t, err)
	assert.Equal(t, knowledge.InsufficientInfoAnswer, answer.Text)
}

func TestAgentLoop_ResetSession(t *testing.T) {
	loop := newTestLoop(t, "ANSWER: ok")

	_, err := loop.Chat(context.Background(), "u1", "s1", "hello")
	require.NoError(t, err)

	loop.ResetSession("u1", "s1")
	assert.Empty(t, loop.Manager().Session("u1", "s1").History())
}
