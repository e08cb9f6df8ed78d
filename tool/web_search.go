package tool

import (
	"context"

	"github.com/invopop/jsonschema"
	"github.com/lumon-ai/agentloop/errors"
	g "github.com/serpapi/google-search-results-golang"
)

const defaultWebResults = 3

type (
	WebSearchRequest struct {
		Query      string `json:"query" jsonschema_description:"The search query for the web search"`
		MaxResults int    `json:"max_results,omitempty" jsonschema_description:"How many results to return, at most"`
	}

	WebResult struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	}

	webSearchTool struct {
		apiKey string
	}
)

var _ Tool = (*webSearchTool)(nil)

func NewWebSearchTool(apiKey string) Tool {
	return &webSearchTool{apiKey: apiKey}
}

func (t *webSearchTool) Name() string {
	return "web_search"
}

func (t *webSearchTool) Description() string {
	return "Use when you need to search the web or find current information online."
}

func (t *webSearchTool) InputSchema() *jsonschema.Schema {
	return schemaFor[WebSearchRequest]()
}

func (t *webSearchTool) Execute(ctx context.Context, params map[string]any) *Result {
	var req WebSearchRequest
	if err := decodeParams(params, &req); err != nil {
		return NewErrorResult(err)
	}
	if req.Query == "" {
		return NewErrorResultf("query is required")
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultWebResults
	}

	results, err := t.search(req.Query, req.MaxResults)
	if err != nil {
		return NewErrorResult(err)
	}
	return NewResult(results)
}

func (t *webSearchTool) search(query string, maxResults int) ([]WebResult, error) {
	search := g.NewSearch("google_light", map[string]string{
		"q": query,
	}, t.apiKey)

	data, err := search.GetJSON()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to perform web search")
	}

	organic, _ := data["organic_results"].([]any)
	results := make([]WebResult, 0, maxResults)
	for _, entry := range organic {
		if len(results) >= maxResults {
			break
		}
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		results = append(results, WebResult{
			Title:   stringField(fields, "title"),
			URL:     stringField(fields, "link"),
			Snippet: stringField(fields, "snippet"),
		})
	}
	return results, nil
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
