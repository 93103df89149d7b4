package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks sharerapy/internal/vectorstore VectorStore

import "context"

// Payload keys stored with every report chunk point.
const (
	PayloadReportID   = "report_id"
	PayloadText       = "text"
	PayloadChunkIndex = "chunk_index"
	PayloadHeading    = "heading_path"
	PayloadTitle      = "title"
)

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// SearchOptions controls a similarity search.
type SearchOptions struct {
	// Limit is the maximum number of results. Must be greater than 0.
	Limit int
	// ScoreThreshold drops results scoring below it.
	ScoreThreshold float32
	// Filters are exact-match payload conditions, all of which must hold.
	// String values match keyword payloads, integer values match integer payloads.
	Filters map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the points most similar to query, best first.
	Search(ctx context.Context, collection string, query []float32, opts SearchOptions) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// CollectionExists reports whether the collection has been created.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
