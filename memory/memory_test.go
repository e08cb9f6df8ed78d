package memory_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lumon-ai/agentloop/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_TrimsToWindow(t *testing.T) {
	conv := memory.NewConversation(5)

	// 2*maxTurns + 3 appends: only the newest 2*maxTurns survive.
	for i := 0; i < 13; i++ {
		conv.AddTurn(memory.RoleUser, fmt.Sprintf("message %d", i), nil)
	}

	history := conv.History()
	require.Len(t, history, 10)
	assert.Equal(t, "message 3", history[0].Content)
	assert.Equal(t, "message 12", history[9].Content)
}

func TestConversation_ContextNumbersToolResults(t *testing.T) {
	conv := memory.NewConversation(10)
	conv.AddTurn(memory.RoleUser, "what is 2+3 and 4+5?", nil)
	conv.AddTurn(memory.RoleTool, `{"result":5}`, &memory.ToolCall{Name: "calculator"})
	conv.AddTurn(memory.RoleTool, `{"result":9}`, &memory.ToolCall{Name: "calculator"})
	conv.AddTurn(memory.RoleAgent, "They are 5 and 9.", nil)

	context := conv.Context()

	assert.Contains(t, context, "USER: what is 2+3 and 4+5?")
	assert.Contains(t, context, "TOOL RESULT #1:\n{\"result\":5}")
	assert.Contains(t, context, "TOOL RESULT #2:\n{\"result\":9}")
	assert.Contains(t, context, "AGENT: They are 5 and 9.")

	// Observations are numbered in order of appearance.
	assert.Less(t, strings.Index(context, "TOOL RESULT #1"), strings.Index(context, "TOOL RESULT #2"))
}

func TestConversation_Recent(t *testing.T) {
	conv := memory.NewConversation(10)
	for i := 0; i < 5; i++ {
		conv.AddTurn(memory.RoleUser, fmt.Sprintf("m%d", i), nil)
	}

	recent := conv.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "m3", recent[0].Content)
	assert.Equal(t, "m4", recent[1].Content)

	assert.Len(t, conv.Recent(100), 5)
	assert.Nil(t, conv.Recent(0))
}

func TestConversation_Clear(t *testing.T) {
	conv := memory.NewConversation(10)
	conv.AddTurn(memory.RoleUser, "hello", nil)
	require.Equal(t, 1, conv.Len())

	conv.Clear()
	assert.Zero(t, conv.Len())
	assert.Empty(t, conv.Context())
}

func TestConversation_HistoryIsACopy(t *testing.T) {
	conv := memory.NewConversation(10)
	conv.AddTurn(memory.RoleUser, "original", nil)

	history := conv.History()
	history[0].Content = "mutated"

	assert.Equal(t, "original", conv.History()[0].Content)
}
