package handlers

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_reindexer.go -package=mocks sharerapy/internal/handlers Reindexer

import (
	"context"
	"net/http"
	"sync/atomic"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/indexer"
)

// Reindexer rebuilds the vector index. *indexer.Pipeline implements it.
type Reindexer interface {
	IndexAll(ctx context.Context, force bool) (*indexer.IndexStats, error)
	ClearAll(ctx context.Context) error
}

// IndexHandler handles HTTP requests for triggering re-indexing.
type IndexHandler struct {
	indexer Reindexer
	running atomic.Bool
	// onDone, when set, runs after each background run.
	onDone func()
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(idx Reindexer) *IndexHandler {
	return &IndexHandler{indexer: idx}
}

// IndexResponse represents the response from the index endpoint.
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP starts a background reindex and returns 202 Accepted.
// With force=true every point and chunk is dropped first and every report is re-embedded.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	force := r.URL.Query().Get("force") == "true"

	if !h.running.CompareAndSwap(false, true) {
		logger.WarnContext(ctx, "re-indexing already running")
		writeError(w, http.StatusConflict, "Indexing already in progress")
		return
	}

	logger.InfoContext(ctx, "re-indexing triggered via API", "force", force)

	// The run outlives the request but keeps its logger.
	indexCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			h.running.Store(false)
			if h.onDone != nil {
				h.onDone()
			}
		}()
		h.run(indexCtx, force)
	}()

	message := "Indexing started. Check server logs for progress."
	if force {
		message = "Force re-indexing started (all existing data cleared). Check server logs for progress."
	}
	writeJSON(ctx, w, http.StatusAccepted, IndexResponse{
		Message: message,
		Status:  "accepted",
	})
}

func (h *IndexHandler) run(ctx context.Context, force bool) {
	logger := contextutil.LoggerFromContext(ctx)

	if force {
		if err := h.indexer.ClearAll(ctx); err != nil {
			logger.ErrorContext(ctx, "failed to clear existing data", "error", err)
			return
		}
		logger.InfoContext(ctx, "cleared all existing indexed data")
	}

	stats, err := h.indexer.IndexAll(ctx, force)
	if err != nil {
		logger.ErrorContext(ctx, "re-indexing interrupted", "error", err)
		return
	}
	logger.InfoContext(ctx, "re-indexing completed",
		"total", stats.Total,
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"chunks", stats.Chunks,
		"duration", stats.Duration,
	)
}
