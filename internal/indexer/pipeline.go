package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_batch_embedder.go -package=mocks sharerapy/internal/indexer BatchEmbedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/metrics"
	"sharerapy/internal/storage"
	"sharerapy/internal/vectorstore"
)

const (
	embedBatchSize  = 64
	deleteBatchSize = 256
)

// Outcome is the result of indexing one report.
type Outcome string

const (
	OutcomeIndexed Outcome = "indexed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// BatchEmbedder embeds many texts in one call, returning vectors in input order.
type BatchEmbedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline indexes reports into SQLite chunk rows and Qdrant points.
type Pipeline struct {
	reports    storage.ReportStore
	chunks     storage.ChunkStore
	embedder   BatchEmbedder
	store      vectorstore.VectorStore
	collection string
	chunker    *GoldmarkChunker
	metrics    *metrics.Metrics
}

// NewPipeline creates a new indexing pipeline. m may be nil.
func NewPipeline(
	reports storage.ReportStore,
	chunks storage.ChunkStore,
	embedder BatchEmbedder,
	store vectorstore.VectorStore,
	collection string,
	m *metrics.Metrics,
) *Pipeline {
	return &Pipeline{
		reports:    reports,
		chunks:     chunks,
		embedder:   embedder,
		store:      store,
		collection: collection,
		chunker:    NewGoldmarkChunker(),
		metrics:    m,
	}
}

// ContentHash identifies the indexed form of a report.
func ContentHash(title, content string) string {
	sum := sha256.Sum256([]byte(title + "\x00" + content))
	return hex.EncodeToString(sum[:])
}

// IndexReport chunks, embeds and stores one report. Unless force is set, a
// report whose content hash matches its last indexing is skipped.
func (p *Pipeline) IndexReport(ctx context.Context, id string, force bool) (Outcome, error) {
	outcome, _, err := p.indexReport(ctx, id, force)
	return outcome, err
}

func (p *Pipeline) indexReport(ctx context.Context, id string, force bool) (Outcome, []Chunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	outcome, chunks, err := p.index(ctx, id, force)
	p.metrics.RecordIndexed(string(outcome))
	if err != nil {
		return outcome, nil, err
	}

	if outcome == OutcomeSkipped {
		logger.DebugContext(ctx, "skipping unchanged report", "report_id", id)
	} else {
		logger.InfoContext(ctx, "indexed report", "report_id", id, "chunks", len(chunks))
	}
	return outcome, chunks, nil
}

func (p *Pipeline) index(ctx context.Context, id string, force bool) (Outcome, []Chunk, error) {
	report, err := p.reports.GetByID(ctx, id)
	if err != nil {
		return OutcomeFailed, nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}

	hash := ContentHash(report.Title, report.Content)
	if !force && report.IndexHash == hash {
		return OutcomeSkipped, nil, nil
	}

	chunks := p.chunker.ChunkReport(report.Title, []byte(report.Content))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.EmbedText()
	}
	vectors, err := p.embedBatches(ctx, texts)
	if err != nil {
		return OutcomeFailed, nil, fmt.Errorf("failed to embed report %s: %w", id, err)
	}

	if err := p.deletePoints(ctx, id); err != nil {
		return OutcomeFailed, nil, err
	}

	records := make([]storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		pointID := uuid.New().String()
		records[i] = storage.ChunkRecord{
			ID:          pointID,
			ReportID:    report.ID,
			ChunkIndex:  c.Index,
			HeadingPath: c.HeadingPath,
			Text:        c.Text,
		}
		points[i] = vectorstore.Point{
			ID:  pointID,
			Vec: vectors[i],
			Meta: map[string]any{
				vectorstore.PayloadReportID:   report.ID,
				vectorstore.PayloadText:       texts[i],
				vectorstore.PayloadChunkIndex: c.Index,
				vectorstore.PayloadHeading:    c.HeadingPath,
				vectorstore.PayloadTitle:      report.Title,
			},
		}
	}

	if len(points) > 0 {
		if err := p.store.Upsert(ctx, p.collection, points); err != nil {
			return OutcomeFailed, nil, fmt.Errorf("failed to upsert vectors for report %s: %w", id, err)
		}
	}
	if err := p.chunks.ReplaceForReport(ctx, report.ID, records); err != nil {
		return OutcomeFailed, nil, fmt.Errorf("failed to store chunks for report %s: %w", id, err)
	}
	if err := p.reports.SetIndexHash(ctx, report.ID, hash); err != nil {
		return OutcomeFailed, nil, fmt.Errorf("failed to record index hash for report %s: %w", id, err)
	}

	return OutcomeIndexed, chunks, nil
}

func (p *Pipeline) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		batch, err := p.embedder.EmbedTexts(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", end-start, len(batch))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// deletePoints removes the Qdrant points recorded for a report.
func (p *Pipeline) deletePoints(ctx context.Context, reportID string) error {
	ids, err := p.chunks.ListIDsByReport(ctx, reportID)
	if err != nil {
		return fmt.Errorf("failed to list chunks for report %s: %w", reportID, err)
	}
	return p.deleteIDs(ctx, ids)
}

func (p *Pipeline) deleteIDs(ctx context.Context, ids []string) error {
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(ids))
		if err := p.store.Delete(ctx, p.collection, ids[start:end]); err != nil {
			return fmt.Errorf("failed to delete vectors: %w", err)
		}
	}
	return nil
}

// RemoveReport drops a report's points and chunk rows.
func (p *Pipeline) RemoveReport(ctx context.Context, id string) error {
	if err := p.deletePoints(ctx, id); err != nil {
		return err
	}
	if err := p.chunks.DeleteByReport(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chunks for report %s: %w", id, err)
	}
	return nil
}

// ClearAll drops every indexed point and chunk row.
func (p *Pipeline) ClearAll(ctx context.Context) error {
	ids, err := p.chunks.ListAllIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}
	if err := p.deleteIDs(ctx, ids); err != nil {
		return err
	}
	if err := p.chunks.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// IndexAll indexes every stored report. Failures of individual reports are
// collected in the stats and do not stop the run; only listing the reports
// or a cancelled context returns an error.
func (p *Pipeline) IndexAll(ctx context.Context, force bool) (*IndexStats, error) {
	logger := contextutil.LoggerFromContext(ctx)
	started := time.Now()

	ids, err := p.reports.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	logger.InfoContext(ctx, "starting indexing", "reports", len(ids), "force", force)

	stats := &IndexStats{Total: len(ids), Failures: []Failure{}}
	var tokenCounts []int

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(started)
			return stats, err
		}

		outcome, chunks, err := p.indexReport(ctx, id, force)
		switch outcome {
		case OutcomeIndexed:
			stats.Indexed++
			stats.Chunks += len(chunks)
			for _, c := range chunks {
				tokenCounts = append(tokenCounts, estimateTokens(c.EmbedText()))
			}
		case OutcomeSkipped:
			stats.Skipped++
		default:
			stats.Failed++
			stats.Failures = append(stats.Failures, Failure{ReportID: id, Error: err.Error()})
			logger.ErrorContext(ctx, "failed to index report", "report_id", id, "error", err)
		}
	}

	stats.ChunkTokens = computeTokenStats(tokenCounts)
	stats.Duration = time.Since(started)

	logger.InfoContext(ctx, "indexing completed",
		"reports", stats.Total,
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"chunks", stats.Chunks,
		"duration", stats.Duration,
	)
	return stats, nil
}
