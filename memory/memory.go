package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleTool  = "tool"
)

type (
	// Turn is one entry in a conversation transcript. Tool turns carry the
	// call that produced them.
	Turn struct {
		Role      string    `json:"role"`
		Content   string    `json:"content"`
		ToolCall  *ToolCall `json:"toolCall,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ToolCall struct {
		Name   string         `json:"tool"`
		Params map[string]any `json:"params"`
	}

	// Conversation is a bounded transcript. It keeps at most 2*maxTurns
	// entries, so a full exchange (user turn plus agent turn) per allowed
	// turn survives trimming.
	Conversation struct {
		mu       sync.Mutex
		turns    []Turn
		maxTurns int
	}
)

const DefaultMaxTurns = 10

func NewConversation(maxTurns int) *Conversation {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Conversation{maxTurns: maxTurns}
}

// AddTurn appends an entry and trims the oldest entries beyond the window.
func (c *Conversation) AddTurn(role, content string, toolCall *ToolCall) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, Turn{
		Role:      role,
		Content:   content,
		ToolCall:  toolCall,
		Timestamp: time.Now(),
	})

	limit := c.maxTurns * 2
	if len(c.turns) > limit {
		c.turns = append([]Turn(nil), c.turns[len(c.turns)-limit:]...)
	}
}

// Context renders the transcript for prompting. Tool observations are set
// apart and numbered in order of appearance so the model can refer back to
// them; everything else renders as "ROLE: content".
func (c *Conversation) Context() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]string, 0, len(c.turns))
	observation := 0
	for _, turn := range c.turns {
		if turn.Role == RoleTool {
			observation++
			lines = append(lines, fmt.Sprintf("\nTOOL RESULT #%d:\n%s\n", observation, turn.Content))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(turn.Role), turn.Content))
	}
	return strings.Join(lines, "\n")
}

// History returns a copy of the transcript.
func (c *Conversation) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.turns...)
}

// Recent returns a copy of the last n entries.
func (c *Conversation) Recent(n int) []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= 0 || len(c.turns) == 0 {
		return nil
	}
	if n > len(c.turns) {
		n = len(c.turns)
	}
	return append([]Turn(nil), c.turns[len(c.turns)-n:]...)
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}
