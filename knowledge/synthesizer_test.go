package knowledge_test

import (
	"context"
	"strings"
	"testing"

	"github.com/lumon-ai/agentloop/errors"
	"github.com/lumon-ai/agentloop/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchResults(texts ...string) []knowledge.SearchResult {
	out := make([]knowledge.SearchResult, len(texts))
	for i, text := range texts {
		out[i] = knowledge.SearchResult{
			Fragment: &knowledge.Fragment{
				ID:         text,
				ChunkIndex: i,
				Text:       text,
			},
			Score: 1.0 - float32(i)*0.1,
		}
	}
	return out
}

func TestSynthesizer_EmptyResultsSkipsModel(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"should never appear"}}
	syn := knowledge.NewSynthesizer(completer, 0.3)

	answer, err := syn.Synthesize(context.Background(), "what is up", nil)
	require.NoError(t, err)

	assert.Equal(t, knowledge.InsufficientInfoAnswer, answer.Text)
	assert.Zero(t, answer.UsedFragments)
	assert.Empty(t, answer.Sources)
	assert.Zero(t, completer.calls)
}

func TestSynthesizer_GroundsPromptInFragments(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"  The sky is blue.  "}}
	syn := knowledge.NewSynthesizer(completer, 0.3)

	results := searchResults("the sky appears blue due to scattering", "unrelated second chunk")
	answer, err := syn.Synthesize(context.Background(), "why is the sky blue?", results)
	require.NoError(t, err)

	assert.Equal(t, "The sky is blue.", answer.Text)
	assert.Equal(t, 2, answer.UsedFragments)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, 0, answer.Sources[0].ChunkIndex)
	assert.InDelta(t, 1.0, float64(answer.Sources[0].Score), 1e-6)

	require.Len(t, completer.prompts, 1)
	prompt := completer.prompts[0]
	assert.Contains(t, prompt, "Chunk 1:\nthe sky appears blue due to scattering")
	assert.Contains(t, prompt, "Chunk 2:\nunrelated second chunk")
	assert.Contains(t, prompt, "why is the sky blue?")
}

func TestSynthesizer_SourceSnippetTruncated(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"ok"}}
	syn := knowledge.NewSynthesizer(completer, 0.3)

	long := strings.Repeat("a", 150)
	answer, err := syn.Synthesize(context.Background(), "q", searchResults(long))
	require.NoError(t, err)

	require.Len(t, answer.Sources, 1)
	assert.Equal(t, strings.Repeat("a", 100)+"...", answer.Sources[0].Snippet)
}

func TestSynthesizer_StreamDeliversInOrder(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"alpha beta gamma"}}
	syn := knowledge.NewSynthesizer(completer, 0.3)

	var got strings.Builder
	err := syn.SynthesizeStream(context.Background(), "q", searchResults("chunk"), func(delta string) error {
		got.WriteString(delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha beta gamma", got.String())
}

func TestSynthesizer_StreamStopsOnSinkError(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"alpha beta gamma"}}
	syn := knowledge.NewSynthesizer(completer, 0.3)

	sinkErr := errors.New("consumer gone")
	calls := 0
	err := syn.SynthesizeStream(context.Background(), "q", searchResults("chunk"), func(delta string) error {
		calls++
		return sinkErr
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sinkErr))
	assert.Equal(t, 1, calls)
}

func TestSynthesizer_StreamEmptyResults(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"should never appear"}}
	syn := knowledge.NewSynthesizer(completer, 0.3)

	var deltas []string
	err := syn.SynthesizeStream(context.Background(), "q", nil, func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{knowledge.InsufficientInfoAnswer}, deltas)
	assert.Zero(t, completer.calls)
}
