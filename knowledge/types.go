package knowledge

import (
	"time"
)

type (
	// Fragment is one embedded retrieval unit. Immutable after creation;
	// the embedding dimensionality is fixed by the embedding model and must
	// match across every fragment compared in one search.
	Fragment struct {
		ID         string         `json:"id"`
		DocumentID string         `json:"documentId,omitempty"`
		Scope      string         `json:"scope"`
		ChunkIndex int            `json:"chunkIndex"`
		Text       string         `json:"text"`
		Embedding  []float32      `json:"embedding,omitempty"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}

	// SearchResult pairs a fragment with its similarity to a query.
	SearchResult struct {
		*Fragment `json:",inline"`
		Score     float32 `json:"score"`
	}

	// DocumentInfo describes an ingested document within a scope.
	DocumentInfo struct {
		ID         string    `json:"id"`
		Scope      string    `json:"scope"`
		Name       string    `json:"name"`
		ChunkCount int       `json:"chunkCount"`
		CreatedAt  time.Time `json:"createdAt"`
	}

	// IngestResult reports the outcome of one document ingestion.
	IngestResult struct {
		DocumentID   string `json:"documentId"`
		DocumentName string `json:"documentName"`
		ChunkCount   int    `json:"chunkCount"`
	}
)
