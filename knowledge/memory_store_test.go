package knowledge_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/lumon-ai/agentloop/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFragment(id, scope, text string, embedding []float32) *knowledge.Fragment {
	return &knowledge.Fragment{
		ID:        id,
		Scope:     scope,
		Text:      text,
		Embedding: embedding,
	}
}

func TestInMemoryStore_SearchOrdering(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	defer store.Close()

	require.NoError(t, store.Insert(ctx, newFragment("a", "u1", "far", []float32{0, 1, 0})))
	require.NoError(t, store.Insert(ctx, newFragment("b", "u1", "close", []float32{1, 0.1, 0})))
	require.NoError(t, store.Insert(ctx, newFragment("c", "u1", "closest", []float32{1, 0, 0})))

	results, err := store.Search(ctx, "u1", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "c", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
	assert.Equal(t, "a", results[2].ID)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestInMemoryStore_SearchTopK(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	defer store.Close()

	for i := 0; i < 5; i++ {
		f := newFragment(fmt.Sprintf("f%d", i), "u1", "text", []float32{1, float32(i)})
		require.NoError(t, store.Insert(ctx, f))
	}

	results, err := store.Search(ctx, "u1", []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Search(ctx, "u1", []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = store.Search(ctx, "u1", []float32{1, 0}, -3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInMemoryStore_StableTieBreak(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	defer store.Close()

	// Identical embeddings: identical scores, insertion order must win.
	same := []float32{0.5, 0.5}
	require.NoError(t, store.Insert(ctx, newFragment("first", "u1", "one", same)))
	require.NoError(t, store.Insert(ctx, newFragment("second", "u1", "two", same)))
	require.NoError(t, store.Insert(ctx, newFragment("third", "u1", "three", same)))

	results, err := store.Search(ctx, "u1", []float32{1, 1}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].ID)
	assert.Equal(t, "second", results[1].ID)
	assert.Equal(t, "third", results[2].ID)
}

func TestInMemoryStore_ScopeIsolation(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	defer store.Close()

	require.NoError(t, store.Insert(ctx, newFragment("mine", "u1", "secret", []float32{1, 0})))
	require.NoError(t, store.Insert(ctx, newFragment("theirs", "u2", "other", []float32{1, 0})))

	results, err := store.Search(ctx, "u1", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mine", results[0].ID)

	results, err = store.Search(ctx, "u3", []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInMemoryStore_OverwriteByID(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	defer store.Close()

	require.NoError(t, store.Insert(ctx, newFragment("a", "u1", "old text", []float32{1, 0})))
	require.NoError(t, store.Insert(ctx, newFragment("a", "u1", "new text", []float32{1, 0})))

	fragments, err := store.ListByScope(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "new text", fragments[0].Text)
}

func TestInMemoryStore_ReplaceDocument(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	defer store.Close()

	doc := &knowledge.DocumentInfo{ID: "doc1", Scope: "u1", Name: "notes.txt"}
	first := []*knowledge.Fragment{
		newFragment("f1", "u1", "v1 chunk 1", []float32{1, 0}),
		newFragment("f2", "u1", "v1 chunk 2", []float32{0, 1}),
	}
	require.NoError(t, store.ReplaceDocument(ctx, doc, first))

	docs, err := store.ListDocuments(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0].ChunkCount)

	// Re-ingest with one chunk: the old fragments must be gone.
	second := []*knowledge.Fragment{
		newFragment("f3", "u1", "v2 chunk 1", []float32{1, 1}),
	}
	require.NoError(t, store.ReplaceDocument(ctx, doc, second))

	fragments, err := store.ListByScope(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "v2 chunk 1", fragments[0].Text)

	docs, err = store.ListDocuments(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 1, docs[0].ChunkCount)
}

func TestInMemoryStore_DeleteDocument(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	defer store.Close()

	doc := &knowledge.DocumentInfo{ID: "doc1", Scope: "u1", Name: "notes.txt"}
	require.NoError(t, store.ReplaceDocument(ctx, doc, []*knowledge.Fragment{
		newFragment("f1", "u1", "chunk", []float32{1, 0}),
	}))

	require.NoError(t, store.DeleteDocument(ctx, "u1", "doc1"))

	fragments, err := store.ListByScope(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, fragments)

	docs, err := store.ListDocuments(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	// Deleting again is not an error.
	require.NoError(t, store.DeleteDocument(ctx, "u1", "doc1"))
}
