package tool

import (
	"context"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/lumon-ai/agentloop/knowledge"
)

type (
	DocumentSearchRequest struct {
		Query  string `json:"query" jsonschema_description:"The question to answer from the user's documents"`
		UserID string `json:"user_id,omitempty"`
		TopK   int    `json:"top_k,omitempty" jsonschema_description:"How many document fragments to retrieve"`
	}

	documentSearchTool struct {
		service     knowledge.Service
		synthesizer *knowledge.Synthesizer
	}
)

var _ Tool = (*documentSearchTool)(nil)

// NewDocumentSearchTool answers questions from the caller's ingested
// documents. The user_id parameter is injected by the agent, never by the
// model, so one user's documents stay invisible to another's sessions.
func NewDocumentSearchTool(service knowledge.Service, synthesizer *knowledge.Synthesizer) Tool {
	return &documentSearchTool{
		service:     service,
		synthesizer: synthesizer,
	}
}

func (t *documentSearchTool) Name() string {
	return "search_documents"
}

func (t *documentSearchTool) Description() string {
	return "Use when the user asks about content in their uploaded documents."
}

func (t *documentSearchTool) InputSchema() *jsonschema.Schema {
	return schemaFor[DocumentSearchRequest]()
}

func (t *documentSearchTool) Execute(ctx context.Context, params map[string]any) *Result {
	var req DocumentSearchRequest
	if err := decodeParams(params, &req); err != nil {
		return NewErrorResult(err)
	}
	if req.Query == "" {
		return NewErrorResultf("query is required")
	}
	if req.UserID == "" {
		return NewErrorResultf("no user scope supplied")
	}

	results, err := t.service.Retrieve(ctx, req.UserID, req.Query, req.TopK)
	if err != nil {
		return NewErrorResult(err)
	}

	answer, err := t.synthesizer.Synthesize(ctx, req.Query, results)
	if err != nil {
		return NewErrorResult(err)
	}

	result := NewResult(answer)
	result.Message = fmt.Sprintf("answered from %d document fragments", answer.UsedFragments)
	return result
}
