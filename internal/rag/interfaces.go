package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_collaborators.go -package=mocks sharerapy/internal/rag ChatCompleter,ChatStreamer,Embedder,Retriever,ReportLookup
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks sharerapy/internal/rag Engine

import (
	"context"

	"sharerapy/internal/llm"
	"sharerapy/internal/storage"
)

// Engine answers questions about stored reports.
type Engine interface {
	// GenerateAnswer runs the answer pipeline for query. It never returns an
	// error; failures are reported through Result.
	GenerateAnswer(ctx context.Context, query string, history []Turn) Result
}

// ChatCompleter returns a single, non-streamed completion.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// ChatStreamer opens a streamed completion.
type ChatStreamer interface {
	OpenStream(ctx context.Context, messages []llm.Message) (llm.DeltaStream, error)
}

// Embedder converts text to a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever finds the chunks most similar to an embedding.
type Retriever interface {
	// MatchDocuments returns at most count chunks scoring at least threshold,
	// best first. No match is an empty result, not an error.
	MatchDocuments(ctx context.Context, embedding []float32, threshold float32, count int) ([]DocumentChunk, error)
}

// ReportLookup loads a report with its related records.
type ReportLookup interface {
	GetByID(ctx context.Context, id string) (*storage.Report, error)
}
