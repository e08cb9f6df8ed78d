package agent

import (
	"fmt"
	"strings"

	"github.com/lumon-ai/agentloop/tool"
)

// buildThinkingPrompt renders the tool catalogue and the running transcript
// into the decision prompt. The format section is load-bearing: the loop can
// only act on responses that follow the TOOL/ANSWER markers.
func buildThinkingPrompt(tools []tool.Tool, context string) string {
	catalogue := make([]string, 0, len(tools))
	for _, t := range tools {
		catalogue = append(catalogue, fmt.Sprintf("- %s: %s", t.Name(), t.Description()))
	}

	return fmt.Sprintf(`You are an AI agent with access to tools. You must break down complex tasks into steps and use the appropriate tools.

AVAILABLE TOOLS:
%s

CONVERSATION HISTORY:
%s

IMPORTANT RULES:
1. For questions about "my documents" or "database" -> ALWAYS use search_documents tool first
2. For math calculations -> use calculator tool with the expression parameter
3. For web searches or general knowledge -> use web_search tool
4. Review tool results before deciding next action
5. DO NOT repeat the same tool - learn from results
6. Only give ANSWER when you have completed ALL steps

RESPONSE FORMAT (you MUST follow this exactly):
- Use a tool: TOOL: tool_name | PARAMS: {"param": "value"}
- Final answer: ANSWER: your complete response

Example 1:
User asks: "How many documents do I have?"
Your response: TOOL: search_documents | PARAMS: {"query": "list documents"}

Example 2:
After getting tool result with 3 documents
Your response: ANSWER: You have 3 documents in your database.

Example 3:
User asks: "Calculate 25 + 30"
Your response: TOOL: calculator | PARAMS: {"expression": "25 + 30"}

YOUR TURN - What is your next action?`, strings.Join(catalogue, "\n"), context)
}
