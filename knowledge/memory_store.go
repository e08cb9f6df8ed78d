package knowledge

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lumon-ai/agentloop/errors"
)

type (
	// InMemoryStore keeps fragments in per-scope insertion-ordered slices.
	// Scoring is a linear scan per query, which is fine for the index sizes
	// this store is meant for; anything bigger belongs in the sqlite store.
	InMemoryStore struct {
		mu        sync.RWMutex
		fragments map[string][]*Fragment       // scope -> insertion order
		positions map[string]map[string]int    // scope -> fragment id -> slice index
		documents map[string][]*DocumentInfo   // scope -> insertion order
		docIndex  map[string]map[string]int    // scope -> document id -> slice index
	}
)

var (
	_ Store = (*InMemoryStore)(nil)
)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		fragments: make(map[string][]*Fragment),
		positions: make(map[string]map[string]int),
		documents: make(map[string][]*DocumentInfo),
		docIndex:  make(map[string]map[string]int),
	}
}

// Insert implements Store.Insert. Overwriting an id keeps the fragment's
// original position so tie-breaking by insertion order stays stable.
func (s *InMemoryStore) Insert(ctx context.Context, fragment *Fragment) error {
	if fragment.ID == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "fragment id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertLocked(copyFragment(fragment))
	return nil
}

func (s *InMemoryStore) insertLocked(f *Fragment) {
	pos, ok := s.positions[f.Scope]
	if !ok {
		pos = make(map[string]int)
		s.positions[f.Scope] = pos
	}

	if idx, exists := pos[f.ID]; exists {
		s.fragments[f.Scope][idx] = f
		return
	}

	pos[f.ID] = len(s.fragments[f.Scope])
	s.fragments[f.Scope] = append(s.fragments[f.Scope], f)
}

// Search implements Store.Search.
func (s *InMemoryStore) Search(ctx context.Context, scope string, queryEmbedding []float32, topK int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 || len(queryEmbedding) == 0 {
		return []SearchResult{}, nil
	}

	var results []SearchResult
	for _, f := range s.fragments[scope] {
		if len(f.Embedding) == 0 {
			continue
		}
		score, err := CosineSimilarity(queryEmbedding, f.Embedding)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to score fragment %s", f.ID)
		}
		out := copyFragment(f)
		out.Embedding = nil
		results = append(results, SearchResult{Fragment: out, Score: score})
	}

	// Stable keeps insertion order between equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	if results == nil {
		results = []SearchResult{}
	}
	return results, nil
}

// ListByScope implements Store.ListByScope.
func (s *InMemoryStore) ListByScope(ctx context.Context, scope string) ([]*Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fragments := make([]*Fragment, 0, len(s.fragments[scope]))
	for _, f := range s.fragments[scope] {
		fragments = append(fragments, copyFragment(f))
	}
	return fragments, nil
}

// ReplaceDocument implements Store.ReplaceDocument.
func (s *InMemoryStore) ReplaceDocument(ctx context.Context, doc *DocumentInfo, fragments []*Fragment) error {
	if doc == nil || doc.ID == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "document id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteDocumentLocked(doc.Scope, doc.ID)

	for _, f := range fragments {
		cp := copyFragment(f)
		cp.DocumentID = doc.ID
		cp.Scope = doc.Scope
		s.insertLocked(cp)
	}

	stored := *doc
	stored.ChunkCount = len(fragments)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	idx, ok := s.docIndex[doc.Scope]
	if !ok {
		idx = make(map[string]int)
		s.docIndex[doc.Scope] = idx
	}
	idx[doc.ID] = len(s.documents[doc.Scope])
	s.documents[doc.Scope] = append(s.documents[doc.Scope], &stored)

	return nil
}

// ListDocuments implements Store.ListDocuments.
func (s *InMemoryStore) ListDocuments(ctx context.Context, scope string) ([]DocumentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]DocumentInfo, 0, len(s.documents[scope]))
	for _, d := range s.documents[scope] {
		docs = append(docs, *d)
	}
	return docs, nil
}

// DeleteDocument implements Store.DeleteDocument. Deleting an unknown
// document is not an error.
func (s *InMemoryStore) DeleteDocument(ctx context.Context, scope, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteDocumentLocked(scope, documentID)
	return nil
}

func (s *InMemoryStore) deleteDocumentLocked(scope, documentID string) {
	kept := s.fragments[scope][:0]
	for _, f := range s.fragments[scope] {
		if f.DocumentID != documentID {
			kept = append(kept, f)
		}
	}
	s.fragments[scope] = kept

	pos := make(map[string]int, len(kept))
	for i, f := range kept {
		pos[f.ID] = i
	}
	s.positions[scope] = pos

	keptDocs := s.documents[scope][:0]
	for _, d := range s.documents[scope] {
		if d.ID != documentID {
			keptDocs = append(keptDocs, d)
		}
	}
	s.documents[scope] = keptDocs

	docIdx := make(map[string]int, len(keptDocs))
	for i, d := range keptDocs {
		docIdx[d.ID] = i
	}
	s.docIndex[scope] = docIdx
}

// Close implements Store.Close.
func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fragments = make(map[string][]*Fragment)
	s.positions = make(map[string]map[string]int)
	s.documents = make(map[string][]*DocumentInfo)
	s.docIndex = make(map[string]map[string]int)
	return nil
}

func copyFragment(f *Fragment) *Fragment {
	cp := *f
	if f.Embedding != nil {
		cp.Embedding = make([]float32, len(f.Embedding))
		copy(cp.Embedding, f.Embedding)
	}
	if f.Metadata != nil {
		cp.Metadata = make(map[string]any, len(f.Metadata))
		for k, v := range f.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}
