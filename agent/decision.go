package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Decision is the parsed outcome of one thinking step: either a tool call or
// a final answer.
type Decision struct {
	UseTool    bool
	ToolName   string
	ToolParams map[string]any
	Answer     string
}

var (
	toolPattern   = regexp.MustCompile(`(?i)TOOL:\s*([\w-]+)`)
	paramsPattern = regexp.MustCompile(`(?s)PARAMS:\s*(\{[^}]*\})`)
	answerPattern = regexp.MustCompile(`(?s)ANSWER:\s*(.*)`)
)

// ParseDecision reads the marker protocol out of raw model text. Parsing is
// deliberately lenient: models drift from the format, and a malformed
// directive must degrade to something the loop can still act on.
//
//   - "TOOL: name | PARAMS: {...}" is a tool call. Unparseable params become
//     an empty map; the tool itself reports what is missing.
//   - "ANSWER: text" is a final answer.
//   - Anything else is treated as a bare final answer.
func ParseDecision(response string) Decision {
	if strings.Contains(response, "TOOL:") {
		toolMatch := toolPattern.FindStringSubmatch(response)
		if toolMatch == nil {
			return Decision{Answer: strings.TrimSpace(response)}
		}

		params := map[string]any{}
		if paramsMatch := paramsPattern.FindStringSubmatch(response); paramsMatch != nil {
			if err := json.Unmarshal([]byte(paramsMatch[1]), &params); err != nil {
				params = map[string]any{}
			}
		}

		return Decision{
			UseTool:    true,
			ToolName:   strings.ToLower(toolMatch[1]),
			ToolParams: params,
		}
	}

	if answerMatch := answerPattern.FindStringSubmatch(response); answerMatch != nil {
		return Decision{Answer: strings.TrimSpace(answerMatch[1])}
	}

	return Decision{Answer: strings.TrimSpace(response)}
}
