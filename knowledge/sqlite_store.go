package knowledge

import (
	"context"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	"github.com/lumon-ai/agentloop/errors"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SqliteStore implements Store using SQLite with the sqlite-vec extension.
// The vec0 virtual table serves the ranked search path; embeddings are also
// kept on the chunk rows so ListByScope can feed the local fallback ranking.
type SqliteStore struct {
	db     *gorm.DB
	vecDim int
}

type DocumentRecord struct {
	ID        string `gorm:"primaryKey"`
	Scope     string `gorm:"index"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	Fragments []*FragmentRecord `gorm:"foreignKey:DocumentRecordID"`
}

func (DocumentRecord) TableName() string {
	return "documents"
}

type FragmentRecord struct {
	ID        string `gorm:"primaryKey"`
	Scope     string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ChunkIndex int
	Content    string
	Embedding  datatypes.JSONSlice[float32]
	Metadata   datatypes.JSONType[map[string]any]

	DocumentRecordID string `gorm:"index"`
}

func (FragmentRecord) TableName() string {
	return "document_chunks"
}

var (
	_ Store = (*SqliteStore)(nil)
)

func NewSqliteStore(dbPath string, dimension int) (*SqliteStore, error) {
	sqlite_vec.Auto()

	db, err := gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on", dbPath)),
		&gorm.Config{},
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database")
	}

	store := &SqliteStore{
		db:     db,
		vecDim: dimension,
	}

	if err := db.AutoMigrate(&DocumentRecord{}, &FragmentRecord{}); err != nil {
		return nil, errors.Wrapf(err, "failed to migrate document tables")
	}

	if err := store.createVectorTable(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SqliteStore) createVectorTable() error {
	var sqliteVersion, vecVersion string
	err := s.db.Raw("SELECT sqlite_version(), vec_version()").Row().Scan(&sqliteVersion, &vecVersion)
	if err != nil {
		return errors.Wrapf(err, "sqlite-vec extension not properly loaded")
	}

	createTableSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunk_vectors USING vec0(
			chunk_id TEXT PRIMARY KEY,
			embedding float[%d]
		);
	`, s.vecDim)

	if err := s.db.Exec(createTableSQL).Error; err != nil {
		return errors.Wrapf(err, "failed to create chunk_vectors table")
	}

	return nil
}

// Insert implements Store.Insert.
func (s *SqliteStore) Insert(ctx context.Context, fragment *Fragment) error {
	if fragment.ID == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "fragment id is empty")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.saveFragment(tx, fragment)
	})
}

func (s *SqliteStore) saveFragment(tx *gorm.DB, fragment *Fragment) error {
	record := FragmentRecord{
		ID:               fragment.ID,
		Scope:            fragment.Scope,
		ChunkIndex:       fragment.ChunkIndex,
		Content:          fragment.Text,
		Embedding:        datatypes.NewJSONSlice(fragment.Embedding),
		Metadata:         datatypes.NewJSONType(fragment.Metadata),
		DocumentRecordID: fragment.DocumentID,
	}

	if err := tx.Save(&record).Error; err != nil {
		return errors.Wrapf(err, "failed to save chunk record")
	}

	if len(fragment.Embedding) == 0 {
		return nil
	}

	if err := tx.Exec("DELETE FROM chunk_vectors WHERE chunk_id = ?", fragment.ID).Error; err != nil {
		return errors.Wrapf(err, "failed to delete existing vector")
	}

	serialized, err := sqlite_vec.SerializeFloat32(fragment.Embedding)
	if err != nil {
		return errors.Wrapf(err, "failed to serialize embedding")
	}

	if err := tx.Exec("INSERT INTO chunk_vectors (chunk_id, embedding) VALUES (?, ?)", fragment.ID, serialized).Error; err != nil {
		return errors.Wrapf(err, "failed to insert chunk vector")
	}

	return nil
}

// Search implements Store.Search via the vec0 virtual table. sqlite-vec
// reports cosine distance, so the score is 1 - distance and ordering by
// distance ascending matches the descending-similarity contract.
func (s *SqliteStore) Search(ctx context.Context, scope string, queryEmbedding []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 || len(queryEmbedding) == 0 {
		return []SearchResult{}, nil
	}

	var scopedIds []string
	if err := s.db.WithContext(ctx).
		Model(&FragmentRecord{}).
		Where("scope = ?", scope).
		Pluck("id", &scopedIds).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list chunk ids for scope")
	}
	if len(scopedIds) == 0 {
		return []SearchResult{}, nil
	}

	serializedQuery, err := sqlite_vec.SerializeFloat32(queryEmbedding)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize query embedding")
	}

	rows, err := s.db.WithContext(ctx).Raw(`
		SELECT chunk_id, distance
		FROM chunk_vectors
		WHERE embedding MATCH ? AND chunk_id IN ?
		ORDER BY distance
		LIMIT ?
	`, serializedQuery, scopedIds, topK*2).Rows()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute vector search")
	}
	defer rows.Close()

	var ids []string
	distanceByID := make(map[string]float32)
	for rows.Next() {
		var id string
		var distance float32
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, errors.Wrapf(err, "failed to scan search row")
		}
		ids = append(ids, id)
		distanceByID[id] = distance
	}
	if len(ids) == 0 {
		return []SearchResult{}, nil
	}

	var records []FragmentRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to fetch chunk records")
	}
	recordByID := make(map[string]*FragmentRecord, len(records))
	for i := range records {
		recordByID[records[i].ID] = &records[i]
	}

	results := make([]SearchResult, 0, len(ids))
	for _, id := range ids {
		record, ok := recordByID[id]
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			Fragment: record.toFragment(false),
			Score:    1.0 - distanceByID[id],
		})
	}

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// ListByScope implements Store.ListByScope. rowid order reproduces insertion
// order for the stable tie-break contract.
func (s *SqliteStore) ListByScope(ctx context.Context, scope string) ([]*Fragment, error) {
	var records []FragmentRecord
	if err := s.db.WithContext(ctx).
		Where("scope = ?", scope).
		Order("rowid").
		Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list chunk records")
	}

	fragments := make([]*Fragment, 0, len(records))
	for i := range records {
		fragments = append(fragments, records[i].toFragment(true))
	}
	return fragments, nil
}

// ReplaceDocument implements Store.ReplaceDocument in one transaction.
func (s *SqliteStore) ReplaceDocument(ctx context.Context, doc *DocumentInfo, fragments []*Fragment) error {
	if doc == nil || doc.Scope == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "document scope is empty")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteDocumentTx(tx, doc.Scope, doc.ID); err != nil {
			return err
		}

		record := DocumentRecord{
			ID:    doc.ID,
			Scope: doc.Scope,
			Name:  doc.Name,
		}
		if err := tx.Save(&record).Error; err != nil {
			return errors.Wrapf(err, "failed to save document record")
		}

		for _, fragment := range fragments {
			if fragment.ID == "" {
				fragment.ID = uuid.NewString()
			}
			fragment.DocumentID = doc.ID
			fragment.Scope = doc.Scope
			if err := s.saveFragment(tx, fragment); err != nil {
				return err
			}
		}

		return nil
	})
}

// ListDocuments implements Store.ListDocuments.
func (s *SqliteStore) ListDocuments(ctx context.Context, scope string) ([]DocumentInfo, error) {
	var records []DocumentRecord
	if err := s.db.WithContext(ctx).
		Where("scope = ?", scope).
		Order("created_at").
		Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list document records")
	}

	docs := make([]DocumentInfo, 0, len(records))
	for _, record := range records {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&FragmentRecord{}).
			Where("document_record_id = ?", record.ID).
			Count(&count).Error; err != nil {
			return nil, errors.Wrapf(err, "failed to count chunks")
		}
		docs = append(docs, DocumentInfo{
			ID:         record.ID,
			Scope:      record.Scope,
			Name:       record.Name,
			ChunkCount: int(count),
			CreatedAt:  record.CreatedAt,
		})
	}
	return docs, nil
}

// DeleteDocument implements Store.DeleteDocument.
func (s *SqliteStore) DeleteDocument(ctx context.Context, scope, documentID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteDocumentTx(tx, scope, documentID)
	})
}

func deleteDocumentTx(tx *gorm.DB, scope, documentID string) error {
	var chunkIds []string
	if err := tx.Model(&FragmentRecord{}).
		Where("scope = ? AND document_record_id = ?", scope, documentID).
		Pluck("id", &chunkIds).Error; err != nil {
		return errors.Wrapf(err, "failed to list chunks for document")
	}

	if len(chunkIds) > 0 {
		if err := tx.Exec("DELETE FROM chunk_vectors WHERE chunk_id IN ?", chunkIds).Error; err != nil {
			return errors.Wrapf(err, "failed to delete chunk vectors")
		}
		if err := tx.Delete(&FragmentRecord{}, "id IN ?", chunkIds).Error; err != nil {
			return errors.Wrapf(err, "failed to delete chunk records")
		}
	}

	if err := tx.Delete(&DocumentRecord{}, "scope = ? AND id = ?", scope, documentID).Error; err != nil {
		return errors.Wrapf(err, "failed to delete document record")
	}

	return nil
}

// Close implements Store.Close.
func (s *SqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *FragmentRecord) toFragment(withEmbedding bool) *Fragment {
	f := &Fragment{
		ID:         r.ID,
		DocumentID: r.DocumentRecordID,
		Scope:      r.Scope,
		ChunkIndex: r.ChunkIndex,
		Text:       r.Content,
		Metadata:   r.Metadata.Data(),
	}
	if withEmbedding {
		f.Embedding = r.Embedding
	}
	return f
}
