package vectorstore

import "context"

// Result is one document returned from a similarity search. Distance is
// cosine distance, lower means closer; metadata-only lookups leave it zero.
type Result struct {
	Document string
	Metadata map[string]string
	Distance float64
}

// Store is a similarity-searchable document collection. Implementations are
// expected to be safe for concurrent use.
type Store interface {
	// Query embeds text and returns the topK nearest documents, optionally
	// restricted to documents whose metadata contains every filter pair.
	Query(ctx context.Context, text string, filter map[string]string, topK int) ([]Result, error)

	// GetByMetadata returns documents matching the filter exactly, without
	// similarity ranking.
	GetByMetadata(ctx context.Context, filter map[string]string) ([]Result, error)
}
