package rag

import (
	"context"

	"golang.org/x/sync/errgroup"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/metrics"
	"sharerapy/internal/storage"
)

// Hydrator attaches report records to retrieved chunks.
type Hydrator struct {
	reports     ReportLookup
	concurrency int
	metrics     *metrics.Metrics
}

// NewHydrator creates a hydrator that runs at most concurrency lookups at once.
func NewHydrator(reports ReportLookup, concurrency int, m *metrics.Metrics) *Hydrator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Hydrator{reports: reports, concurrency: concurrency, metrics: m}
}

// Hydrate looks up each distinct report once and returns one Source per chunk
// in chunk order. A report that cannot be loaded leaves Source.Report nil; it
// does not fail the call. An error is returned only when ctx is done.
func (h *Hydrator) Hydrate(ctx context.Context, chunks []DocumentChunk) ([]Source, error) {
	ids := uniqueReportIDs(chunks)
	found := make([]*storage.Report, len(ids))

	logger := contextutil.LoggerFromContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			report, err := h.reports.GetByID(gctx, id)
			if err != nil {
				logger.WarnContext(ctx, "report lookup failed", "report_id", id, "error", err)
				h.metrics.RecordHydrationMiss()
				return nil
			}
			found[i] = report
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byID := make(map[string]*storage.Report, len(ids))
	for i, id := range ids {
		if found[i] != nil {
			byID[id] = found[i]
		}
	}

	sources := make([]Source, 0, len(chunks))
	for _, c := range chunks {
		sources = append(sources, Source{DocumentChunk: c, Report: byID[c.ReportID]})
	}
	return sources, nil
}

// uniqueReportIDs returns the distinct report IDs in first-seen order.
func uniqueReportIDs(chunks []DocumentChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.ReportID]; ok {
			continue
		}
		seen[c.ReportID] = struct{}{}
		ids = append(ids, c.ReportID)
	}
	return ids
}
