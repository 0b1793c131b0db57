package pgvecstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ai-bizchat-be/internal/model"
	"ai-bizchat-be/pkg/embedding"
	"ai-bizchat-be/pkg/vectorstore"
)

// Store is a pgvector-backed vectorstore.Store scoped to one collection of
// the knowledge_documents table.
type Store struct {
	db         *gorm.DB
	embedder   embedding.Provider
	collection string
}

var _ vectorstore.Store = &Store{}

func New(db *gorm.DB, embedder embedding.Provider, collection string) *Store {
	return &Store{
		db:         db,
		embedder:   embedder,
		collection: collection,
	}
}

// Query embeds text and returns the topK nearest documents by cosine
// distance, optionally narrowed by the indexed metadata columns.
func (s *Store) Query(ctx context.Context, text string, filter map[string]string, topK int) ([]vectorstore.Result, error) {
	if topK <= 0 {
		topK = 3
	}

	vec, err := s.embedder.Generate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVector := pgvector.NewVector(vec)

	type row struct {
		model.KnowledgeDocument
		Distance float64
	}
	var rows []row

	q := s.db.WithContext(ctx).
		Table("knowledge_documents").
		Select("knowledge_documents.*, (embedding <=> ?) AS distance", queryVector).
		Where("collection = ?", s.collection)
	q = applyFilter(q, filter)

	if err := q.Order("distance ASC").Limit(topK).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]vectorstore.Result, len(rows))
	for i, r := range rows {
		results[i] = vectorstore.Result{
			Document: r.Document,
			Metadata: metadataOf(&r.KnowledgeDocument),
			Distance: r.Distance,
		}
	}
	return results, nil
}

// GetByMetadata returns documents matching the filter exactly, without
// similarity ranking.
func (s *Store) GetByMetadata(ctx context.Context, filter map[string]string) ([]vectorstore.Result, error) {
	var docs []model.KnowledgeDocument

	q := s.db.WithContext(ctx).
		Where("collection = ?", s.collection)
	q = applyFilter(q, filter)

	if err := q.Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("metadata lookup: %w", err)
	}

	results := make([]vectorstore.Result, len(docs))
	for i := range docs {
		results[i] = vectorstore.Result{
			Document: docs[i].Document,
			Metadata: metadataOf(&docs[i]),
		}
	}
	return results, nil
}

// Add embeds document and inserts it into the store's collection. Used by the
// seeder.
func (s *Store) Add(ctx context.Context, document string, metadata map[string]string) error {
	vec, err := s.embedder.Generate(ctx, document)
	if err != nil {
		return fmt.Errorf("embed document: %w", err)
	}

	extra := make(map[string]string)
	for k, v := range metadata {
		switch k {
		case "intent", "language", "category":
		default:
			extra[k] = v
		}
	}
	extraJSON, err := json.Marshal(extra)
	if err != nil {
		return err
	}

	doc := model.KnowledgeDocument{
		Collection: s.collection,
		Document:   document,
		Embedding:  pgvector.NewVector(vec),
		Intent:     metadata["intent"],
		Language:   metadata["language"],
		Category:   metadata["category"],
		Metadata:   datatypes.JSON(extraJSON),
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Clear removes every document in the store's collection. The seeder calls it
// before a full reload.
func (s *Store) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Where("collection = ?", s.collection).
		Delete(&model.KnowledgeDocument{}).Error
}

// applyFilter maps filter keys onto the indexed columns. Keys outside the
// known set match against the jsonb blob.
func applyFilter(q *gorm.DB, filter map[string]string) *gorm.DB {
	for k, v := range filter {
		switch k {
		case "intent":
			q = q.Where("intent = ?", v)
		case "language":
			q = q.Where("language = ?", v)
		case "category":
			q = q.Where("category = ?", v)
		default:
			q = q.Where("metadata ->> ? = ?", k, v)
		}
	}
	return q
}

func metadataOf(doc *model.KnowledgeDocument) map[string]string {
	md := make(map[string]string)
	if len(doc.Metadata) > 0 {
		// Extra pairs first so column values win on collision.
		_ = json.Unmarshal(doc.Metadata, &md)
	}
	if doc.Intent != "" {
		md["intent"] = doc.Intent
	}
	if doc.Language != "" {
		md["language"] = doc.Language
	}
	if doc.Category != "" {
		md["category"] = doc.Category
	}
	return md
}
