package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/lumon-ai/agentloop/config"
	"github.com/lumon-ai/agentloop/errors"
)

type (
	// EmbeddingTaskType selects the asymmetric embedding mode: documents and
	// queries are embedded differently so that queries land near the
	// passages that answer them.
	EmbeddingTaskType string

	// Embedder is the boundary contract for the embedding service. One
	// embedding per input text, same order.
	Embedder interface {
		EmbedTexts(ctx context.Context, taskType EmbeddingTaskType, texts ...string) ([][]float32, error)
	}

	// NomicEmbedder implements Embedder on the Nomic Atlas text embedding API.
	NomicEmbedder struct {
		client *http.Client
		apiKey string
	}
)

const (
	EmbeddingTaskTypeDocument EmbeddingTaskType = "search_document"
	EmbeddingTaskTypeQuery    EmbeddingTaskType = "search_query"

	NomicEmbedderTextEndpoint = "https://api-atlas.nomic.ai/v1/embedding/text"
	NomicTextEmbedderModel    = "nomic-embed-text-v1.5"
)

func (e EmbeddingTaskType) String() string {
	return string(e)
}

var (
	_ Embedder = (*NomicEmbedder)(nil)
)

func NewNomicEmbedder(conf *config.ModelConfig) (*NomicEmbedder, error) {
	if conf.NomicAPIKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "NOMIC_API_KEY is not set")
	}
	return &NomicEmbedder{client: http.DefaultClient, apiKey: conf.NomicAPIKey}, nil
}

func (e *NomicEmbedder) EmbedTexts(ctx context.Context, taskType EmbeddingTaskType, texts ...string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var requestBody bytes.Buffer
	if err := json.NewEncoder(&requestBody).Encode(struct {
		TaskType string   `json:"task_type"`
		Model    string   `json:"model"`
		Texts    []string `json:"texts"`
	}{
		TaskType: taskType.String(),
		Model:    NomicTextEmbedderModel,
		Texts:    texts,
	}); err != nil {
		return nil, errors.Wrapf(err, "failed to encode request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, NomicEmbedderTextEndpoint, &requestBody)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrServiceUnavailable, "embedding request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Wrapf(errors.ErrServiceUnavailable, "embedding request failed: HTTP %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.Wrapf(err, "failed to decode response")
	}

	if len(response.Embeddings) != len(texts) {
		return nil, errors.Errorf("embedding count mismatch: got %d, expected %d", len(response.Embeddings), len(texts))
	}

	return response.Embeddings, nil
}
