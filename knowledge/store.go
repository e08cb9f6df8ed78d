package knowledge

import (
	"context"
)

// Store is the vector index: (id, text, embedding) records grouped by scope,
// with insert and top-K similarity search. Implementations keep scopes
// strictly isolated; a search never returns another scope's fragments.
type Store interface {
	// Insert adds a fragment to its scope. Re-inserting an existing id
	// overwrites the previous record.
	Insert(ctx context.Context, fragment *Fragment) error

	// Search scores every fragment in scope against queryEmbedding and
	// returns at most topK results, descending by score with ties kept in
	// insertion order. topK <= 0 yields an empty result.
	Search(ctx context.Context, scope string, queryEmbedding []float32, topK int) ([]SearchResult, error)

	// ListByScope returns all fragments in scope, embeddings included, in
	// insertion order. This is the fallback path for local ranking.
	ListByScope(ctx context.Context, scope string) ([]*Fragment, error)

	// ReplaceDocument atomically removes a document's previous fragments and
	// stores the new set. Either everything lands or nothing does.
	ReplaceDocument(ctx context.Context, doc *DocumentInfo, fragments []*Fragment) error

	// ListDocuments returns the documents ingested into scope.
	ListDocuments(ctx context.Context, scope string) ([]DocumentInfo, error)

	// DeleteDocument removes a document and all its fragments.
	DeleteDocument(ctx context.Context, scope, documentID string) error

	Close() error
}
