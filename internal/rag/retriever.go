package rag

import (
	"context"
	"fmt"

	"sharerapy/internal/vectorstore"
)

// VectorRetriever matches chunks through a vector store collection.
type VectorRetriever struct {
	store      vectorstore.VectorStore
	collection string
}

// NewVectorRetriever creates a retriever over collection.
func NewVectorRetriever(store vectorstore.VectorStore, collection string) *VectorRetriever {
	return &VectorRetriever{store: store, collection: collection}
}

// MatchDocuments implements Retriever.
func (r *VectorRetriever) MatchDocuments(ctx context.Context, embedding []float32, threshold float32, count int) ([]DocumentChunk, error) {
	if count <= 0 {
		return []DocumentChunk{}, nil
	}

	results, err := r.store.Search(ctx, r.collection, embedding, vectorstore.SearchOptions{
		Limit:          count,
		ScoreThreshold: threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("match documents: %w", err)
	}

	chunks := make([]DocumentChunk, 0, len(results))
	for _, res := range results {
		// Qdrant already applies the threshold; this guards other stores.
		if res.Score < threshold {
			continue
		}
		reportID, _ := res.Meta[vectorstore.PayloadReportID].(string)
		text, _ := res.Meta[vectorstore.PayloadText].(string)
		if reportID == "" {
			continue
		}
		chunks = append(chunks, DocumentChunk{
			ID:         res.PointID,
			ReportID:   reportID,
			Text:       text,
			Similarity: res.Score,
		})
		if len(chunks) == count {
			break
		}
	}
	return chunks, nil
}
