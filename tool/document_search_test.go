package tool_test

import (
	"context"
	"testing"

	"github.com/lumon-ai/agentloop/knowledge"
	"github.com/lumon-ai/agentloop/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKnowledgeService struct {
	results   []knowledge.SearchResult
	lastScope string
	lastQuery string
}

func (s *fakeKnowledgeService) IngestDocument(ctx context.Context, scope, name, text string) (*knowledge.IngestResult, error) {
	return nil, nil
}

func (s *fakeKnowledgeService) Retrieve(ctx context.Context, scope, query string, topK int) ([]knowledge.SearchResult, error) {
	s.lastScope = scope
	s.lastQuery = query
	return s.results, nil
}

func (s *fakeKnowledgeService) ListDocuments(ctx context.Context, scope string) ([]knowledge.DocumentInfo, error) {
	return nil, nil
}

func (s *fakeKnowledgeService) DeleteDocument(ctx context.Context, scope, documentID string) error {
	return nil
}

func (s *fakeKnowledgeService) Close() error { return nil }

type fixedCompleter struct {
	response string
	calls    int
}

func (c *fixedCompleter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	c.calls++
	return c.response, nil
}

func (c *fixedCompleter) CompleteStream(ctx context.Context, prompt string, temperature float64, sink func(delta string) error) error {
	c.calls++
	return sink(c.response)
}

func TestDocumentSearch_AnswersFromFragments(t *testing.T) {
	svc := &fakeKnowledgeService{
		results: []knowledge.SearchResult{
			{Fragment: &knowledge.Fragment{ID: "f1", Text: "the warehouse opens at 9am"}, Score: 0.9},
		},
	}
	completer := &fixedCompleter{response: "It opens at 9am."}
	search := tool.NewDocumentSearchTool(svc, knowledge.NewSynthesizer(completer, 0.3))

	result := search.Execute(context.Background(), map[string]any{
		"query":   "when does the warehouse open?",
		"user_id": "u1",
	})
	require.True(t, result.Success, result.Error)

	answer, ok := result.Data.(*knowledge.Answer)
	require.True(t, ok)
	assert.Equal(t, "It opens at 9am.", answer.Text)
	assert.Equal(t, 1, answer.UsedFragments)
	assert.Equal(t, "u1", svc.lastScope)
	assert.Equal(t, "when does the warehouse open?", svc.lastQuery)
}

func TestDocumentSearch_NoFragments(t *testing.T) {
	svc := &fakeKnowledgeService{}
	completer := &fixedCompleter{response: "should not be called"}
	search := tool.NewDocumentSearchTool(svc, knowledge.NewSynthesizer(completer, 0.3))

	result := search.Execute(context.Background(), map[string]any{
		"query":   "anything",
		"user_id": "u1",
	})
	require.True(t, result.Success)

	answer, ok := result.Data.(*knowledge.Answer)
	require.True(t, ok)
	assert.Equal(t, knowledge.InsufficientInfoAnswer, answer.Text)
	assert.Zero(t, completer.calls)
}

func TestDocumentSearch_RequiresScope(t *testing.T) {
	search := tool.NewDocumentSearchTool(&fakeKnowledgeService{}, knowledge.NewSynthesizer(&fixedCompleter{}, 0.3))

	result := search.Execute(context.Background(), map[string]any{"query": "anything"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "user scope")
}

func TestDocumentSearch_RequiresQuery(t *testing.T) {
	search := tool.NewDocumentSearchTool(&fakeKnowledgeService{}, knowledge.NewSynthesizer(&fixedCompleter{}, 0.3))

	result := search.Execute(context.Background(), map[string]any{"user_id": "u1"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "query is required")
}
