package knowledge

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/lumon-ai/agentloop/config"
	"github.com/lumon-ai/agentloop/errors"
)

type (
	// Service is the retrieval front door: ingestion turns documents into
	// embedded fragments, Retrieve turns a question into ranked fragments.
	Service interface {
		IngestDocument(ctx context.Context, scope, name, text string) (*IngestResult, error)
		Retrieve(ctx context.Context, scope, query string, topK int) ([]SearchResult, error)
		ListDocuments(ctx context.Context, scope string) ([]DocumentInfo, error)
		DeleteDocument(ctx context.Context, scope, documentID string) error
		Close() error
	}

	service struct {
		store    Store
		embedder Embedder
		conf     *config.KnowledgeConfig
		logger   *slog.Logger
	}
)

var (
	_ Service = (*service)(nil)
)

// NewService creates a retrieval service with the store selected by config.
func NewService(conf *config.KnowledgeConfig, logger *slog.Logger, embedder Embedder) (Service, error) {
	var store Store
	if conf.SqliteEnabled {
		if conf.SqlitePath == "" {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "sqlite path is not configured")
		}
		var err error
		store, err = NewSqliteStore(conf.SqlitePath, conf.EmbeddingDim)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create sqlite store")
		}
	} else {
		store = NewInMemoryStore()
	}

	return NewServiceWithStore(conf, logger, embedder, store), nil
}

// NewServiceWithStore creates a retrieval service on a caller-supplied store.
// Tests use this to substitute fakes.
func NewServiceWithStore(conf *config.KnowledgeConfig, logger *slog.Logger, embedder Embedder, store Store) Service {
	return &service{
		store:    store,
		embedder: embedder,
		conf:     conf,
		logger:   logger,
	}
}

func (s *service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// IngestDocument chunks, embeds and stores a document. Re-ingesting under an
// existing document id replaces the previous fragments atomically.
func (s *service) IngestDocument(ctx context.Context, scope, name, text string) (*IngestResult, error) {
	chunks := ChunkText(text, s.conf.ChunkSize)
	if len(chunks) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "document %q has no content", name)
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, EmbeddingTaskTypeDocument, chunks...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to embed document chunks")
	}
	if len(embeddings) != len(chunks) {
		return nil, errors.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(chunks))
	}

	doc := &DocumentInfo{
		ID:    uuid.NewString(),
		Scope: scope,
		Name:  name,
	}

	fragments := make([]*Fragment, len(chunks))
	for i, chunk := range chunks {
		fragments[i] = &Fragment{
			ID:         uuid.NewString(),
			Scope:      scope,
			ChunkIndex: i,
			Text:       chunk,
			Embedding:  embeddings[i],
			Metadata: map[string]any{
				"document_name": name,
			},
		}
	}

	if err := s.store.ReplaceDocument(ctx, doc, fragments); err != nil {
		return nil, errors.Wrapf(err, "failed to store document")
	}

	s.logger.Info("ingested document",
		slog.String("scope", scope),
		slog.String("document", name),
		slog.Int("chunks", len(chunks)))

	return &IngestResult{
		DocumentID:   doc.ID,
		DocumentName: name,
		ChunkCount:   len(chunks),
	}, nil
}

// Retrieve embeds the query and ranks the scope's fragments against it. The
// store's ranked search is the primary path; when it fails, retrieval falls
// back to fetching every fragment in scope and ranking locally. Both paths
// order by descending similarity with a stable tie-break, so callers never
// know which one ran. An empty scope yields an empty result, not an error.
func (s *service) Retrieve(ctx context.Context, scope, query string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = s.conf.TopK
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, EmbeddingTaskTypeQuery, query)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to embed query")
	}
	if len(embeddings) == 0 {
		return nil, errors.Errorf("no embedding generated for query")
	}
	queryEmbedding := embeddings[0]

	results, err := s.store.Search(ctx, scope, queryEmbedding, topK)
	if err == nil {
		return results, nil
	}

	s.logger.Warn("ranked search failed, falling back to local scan",
		slog.String("scope", scope),
		slog.String("error", err.Error()))

	fragments, err := s.store.ListByScope(ctx, scope)
	if err != nil {
		return nil, errors.Wrapf(err, "fallback scan failed")
	}

	return rankFragments(fragments, queryEmbedding, topK)
}

func (s *service) ListDocuments(ctx context.Context, scope string) ([]DocumentInfo, error) {
	return s.store.ListDocuments(ctx, scope)
}

func (s *service) DeleteDocument(ctx context.Context, scope, documentID string) error {
	return s.store.DeleteDocument(ctx, scope, documentID)
}

// rankFragments is the local scan-and-rank used by the fallback path. The
// ordering contract matches Store.Search: descending score, stable tie-break
// in the fragments' given order.
func rankFragments(fragments []*Fragment, queryEmbedding []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(fragments))
	for _, f := range fragments {
		if len(f.Embedding) == 0 {
			continue
		}
		score, err := CosineSimilarity(queryEmbedding, f.Embedding)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to score fragment %s", f.ID)
		}
		scored := *f
		scored.Embedding = nil
		results = append(results, SearchResult{Fragment: &scored, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
