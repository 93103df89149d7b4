package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	indexer_mocks "sharerapy/internal/indexer/mocks"
	"sharerapy/internal/metrics"
	"sharerapy/internal/storage"
	storage_mocks "sharerapy/internal/storage/mocks"
	"sharerapy/internal/vectorstore"
	vectorstore_mocks "sharerapy/internal/vectorstore/mocks"
)

const testCollection = "report_chunks"

type pipelineMocks struct {
	reports  *storage_mocks.MockReportStore
	chunks   *storage_mocks.MockChunkStore
	embedder *indexer_mocks.MockBatchEmbedder
	store    *vectorstore_mocks.MockVectorStore
	metrics  *metrics.Metrics
}

func newTestPipeline(t *testing.T) (*Pipeline, pipelineMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := pipelineMocks{
		reports:  storage_mocks.NewMockReportStore(ctrl),
		chunks:   storage_mocks.NewMockChunkStore(ctrl),
		embedder: indexer_mocks.NewMockBatchEmbedder(ctrl),
		store:    vectorstore_mocks.NewMockVectorStore(ctrl),
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
	p := NewPipeline(m.reports, m.chunks, m.embedder, m.store, testCollection, m.metrics)
	return p, m
}

// fakeVectors returns one small vector per text.
func fakeVectors(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func testReport() *storage.Report {
	return &storage.Report{
		ID:    "rep-1",
		Title: "Initial Assessment",
		Content: "## Background\n\nLeo was referred for support with handwriting and fine motor skills.\n\n" +
			"## Goals\n\nImprove pencil grip and letter formation over the next twelve weeks.",
	}
}

func TestNewPipeline(t *testing.T) {
	p, _ := newTestPipeline(t)
	if p.chunker == nil {
		t.Error("NewPipeline() chunker should not be nil")
	}
	if p.collection != testCollection {
		t.Errorf("NewPipeline() collection = %v, want %v", p.collection, testCollection)
	}
}

func TestPipeline_IndexReport_SkipsUnchanged(t *testing.T) {
	p, m := newTestPipeline(t)
	report := testReport()
	report.IndexHash = ContentHash(report.Title, report.Content)

	m.reports.EXPECT().GetByID(gomock.Any(), report.ID).Return(report, nil)

	outcome, err := p.IndexReport(context.Background(), report.ID, false)
	if err != nil {
		t.Fatalf("IndexReport() error = %v", err)
	}
	if outcome != OutcomeSkipped {
		t.Errorf("IndexReport() outcome = %v, want %v", outcome, OutcomeSkipped)
	}
	if got := testutil.ToFloat64(m.metrics.IndexedReports.WithLabelValues("skipped")); got != 1 {
		t.Errorf("skipped counter = %v, want 1", got)
	}
}

func TestPipeline_IndexReport_Writes(t *testing.T) {
	for _, force := range []bool{false, true} {
		t.Run(fmt.Sprintf("force=%v", force), func(t *testing.T) {
			p, m := newTestPipeline(t)
			report := testReport()
			hash := ContentHash(report.Title, report.Content)
			if force {
				report.IndexHash = hash
			}

			var points []vectorstore.Point
			var records []storage.ChunkRecord

			m.reports.EXPECT().GetByID(gomock.Any(), report.ID).Return(report, nil)
			m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeVectors)
			m.chunks.EXPECT().ListIDsByReport(gomock.Any(), report.ID).Return([]string{"old-1", "old-2"}, nil)
			m.store.EXPECT().Delete(gomock.Any(), testCollection, []string{"old-1", "old-2"}).Return(nil)
			m.store.EXPECT().Upsert(gomock.Any(), testCollection, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, pts []vectorstore.Point) error {
					points = pts
					return nil
				})
			m.chunks.EXPECT().ReplaceForReport(gomock.Any(), report.ID, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, recs []storage.ChunkRecord) error {
					records = recs
					return nil
				})
			m.reports.EXPECT().SetIndexHash(gomock.Any(), report.ID, hash).Return(nil)

			outcome, err := p.IndexReport(context.Background(), report.ID, force)
			if err != nil {
				t.Fatalf("IndexReport() error = %v", err)
			}
			if outcome != OutcomeIndexed {
				t.Fatalf("IndexReport() outcome = %v, want %v", outcome, OutcomeIndexed)
			}

			if len(points) != 2 || len(records) != 2 {
				t.Fatalf("got %d points and %d records, want 2 each", len(points), len(records))
			}
			for i := range points {
				if points[i].ID != records[i].ID {
					t.Errorf("point %d ID %q does not match chunk row ID %q", i, points[i].ID, records[i].ID)
				}
				meta := points[i].Meta
				if meta[vectorstore.PayloadReportID] != report.ID {
					t.Errorf("point %d report_id = %v", i, meta[vectorstore.PayloadReportID])
				}
				if meta[vectorstore.PayloadTitle] != report.Title {
					t.Errorf("point %d title = %v", i, meta[vectorstore.PayloadTitle])
				}
				if meta[vectorstore.PayloadChunkIndex] != i {
					t.Errorf("point %d chunk_index = %v", i, meta[vectorstore.PayloadChunkIndex])
				}
				text, _ := meta[vectorstore.PayloadText].(string)
				if !strings.HasPrefix(text, "# Initial Assessment > ## ") {
					t.Errorf("point %d text should start with heading path, got %q", i, text)
				}
			}
			if records[1].HeadingPath != "# Initial Assessment > ## Goals" {
				t.Errorf("record 1 HeadingPath = %q", records[1].HeadingPath)
			}
		})
	}
}

func TestPipeline_IndexReport_BatchesEmbeddings(t *testing.T) {
	p, m := newTestPipeline(t)

	var b strings.Builder
	for i := range 70 {
		fmt.Fprintf(&b, "## Session %d\n\nThe patient practised balance exercises for the full session %d.\n\n", i, i)
	}
	report := &storage.Report{ID: "rep-long", Title: "Progress Log", Content: b.String()}

	var batchSizes []int
	m.reports.EXPECT().GetByID(gomock.Any(), report.ID).Return(report, nil)
	m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, texts []string) ([][]float32, error) {
			batchSizes = append(batchSizes, len(texts))
			return fakeVectors(ctx, texts)
		}).Times(2)
	m.chunks.EXPECT().ListIDsByReport(gomock.Any(), report.ID).Return([]string{}, nil)
	m.store.EXPECT().Upsert(gomock.Any(), testCollection, gomock.Len(70)).Return(nil)
	m.chunks.EXPECT().ReplaceForReport(gomock.Any(), report.ID, gomock.Len(70)).Return(nil)
	m.reports.EXPECT().SetIndexHash(gomock.Any(), report.ID, gomock.Any()).Return(nil)

	if _, err := p.IndexReport(context.Background(), report.ID, false); err != nil {
		t.Fatalf("IndexReport() error = %v", err)
	}
	if len(batchSizes) != 2 || batchSizes[0] != 64 || batchSizes[1] != 6 {
		t.Errorf("batch sizes = %v, want [64 6]", batchSizes)
	}
}

func TestPipeline_IndexReport_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m pipelineMocks, report *storage.Report)
	}{
		{
			name: "report not found",
			setup: func(m pipelineMocks, report *storage.Report) {
				m.reports.EXPECT().GetByID(gomock.Any(), report.ID).Return(nil, storage.ErrNotFound)
			},
		},
		{
			name: "embedding error",
			setup: func(m pipelineMocks, report *storage.Report) {
				m.reports.EXPECT().GetByID(gomock.Any(), report.ID).Return(report, nil)
				m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
			},
		},
		{
			name: "embedding count mismatch",
			setup: func(m pipelineMocks, report *storage.Report) {
				m.reports.EXPECT().GetByID(gomock.Any(), report.ID).Return(report, nil)
				m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{1}}, nil)
			},
		},
		{
			name: "old vectors cannot be deleted",
			setup: func(m pipelineMocks, report *storage.Report) {
				m.reports.EXPECT().GetByID(gomock.Any(), report.ID).Return(report, nil)
				m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeVectors)
				m.chunks.EXPECT().ListIDsByReport(gomock.Any(), report.ID).Return([]string{"old"}, nil)
				m.store.EXPECT().Delete(gomock.Any(), testCollection, []string{"old"}).Return(errors.New("qdrant down"))
			},
		},
		{
			name: "upsert error",
			setup: func(m pipelineMocks, report *storage.Report) {
				m.reports.EXPECT().GetByID(gomock.Any(), report.ID).Return(report, nil)
				m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeVectors)
				m.chunks.EXPECT().ListIDsByReport(gomock.Any(), report.ID).Return(nil, nil)
				m.store.EXPECT().Upsert(gomock.Any(), testCollection, gomock.Any()).Return(errors.New("qdrant down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, m := newTestPipeline(t)
			report := testReport()
			tt.setup(m, report)

			outcome, err := p.IndexReport(context.Background(), report.ID, false)
			if err == nil {
				t.Fatal("IndexReport() expected error")
			}
			if outcome != OutcomeFailed {
				t.Errorf("IndexReport() outcome = %v, want %v", outcome, OutcomeFailed)
			}
			if got := testutil.ToFloat64(m.metrics.IndexedReports.WithLabelValues("failed")); got != 1 {
				t.Errorf("failed counter = %v, want 1", got)
			}
		})
	}
}

func TestPipeline_IndexAll(t *testing.T) {
	p, m := newTestPipeline(t)

	fresh := testReport()
	fresh.ID = "a"
	unchanged := testReport()
	unchanged.ID = "b"
	unchanged.IndexHash = ContentHash(unchanged.Title, unchanged.Content)

	m.reports.EXPECT().ListIDs(gomock.Any()).Return([]string{"a", "b", "c"}, nil)
	m.reports.EXPECT().GetByID(gomock.Any(), "a").Return(fresh, nil)
	m.reports.EXPECT().GetByID(gomock.Any(), "b").Return(unchanged, nil)
	m.reports.EXPECT().GetByID(gomock.Any(), "c").Return(nil, errors.New("disk I/O error"))
	m.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeVectors)
	m.chunks.EXPECT().ListIDsByReport(gomock.Any(), "a").Return(nil, nil)
	m.store.EXPECT().Upsert(gomock.Any(), testCollection, gomock.Any()).Return(nil)
	m.chunks.EXPECT().ReplaceForReport(gomock.Any(), "a", gomock.Any()).Return(nil)
	m.reports.EXPECT().SetIndexHash(gomock.Any(), "a", gomock.Any()).Return(nil)

	stats, err := p.IndexAll(context.Background(), false)
	if err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}
	if stats.Total != 3 || stats.Indexed != 1 || stats.Skipped != 1 || stats.Failed != 1 {
		t.Errorf("IndexAll() stats = %+v", stats)
	}
	if stats.Chunks != 2 {
		t.Errorf("Chunks = %d, want 2", stats.Chunks)
	}
	if stats.ChunkTokens.Min == 0 || stats.ChunkTokens.Max < stats.ChunkTokens.Min {
		t.Errorf("ChunkTokens = %+v", stats.ChunkTokens)
	}
	if len(stats.Failures) != 1 || stats.Failures[0].ReportID != "c" {
		t.Errorf("Failures = %+v", stats.Failures)
	}
}

func TestPipeline_IndexAll_Cancelled(t *testing.T) {
	p, m := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m.reports.EXPECT().ListIDs(gomock.Any()).Return([]string{"a"}, nil)

	stats, err := p.IndexAll(ctx, false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("IndexAll() error = %v, want context.Canceled", err)
	}
	if stats == nil || stats.Indexed != 0 {
		t.Errorf("IndexAll() stats = %+v", stats)
	}
}

func TestPipeline_RemoveReport(t *testing.T) {
	t.Run("with vectors", func(t *testing.T) {
		p, m := newTestPipeline(t)
		gomock.InOrder(
			m.chunks.EXPECT().ListIDsByReport(gomock.Any(), "rep-1").Return([]string{"p1", "p2"}, nil),
			m.store.EXPECT().Delete(gomock.Any(), testCollection, []string{"p1", "p2"}).Return(nil),
			m.chunks.EXPECT().DeleteByReport(gomock.Any(), "rep-1").Return(nil),
		)
		if err := p.RemoveReport(context.Background(), "rep-1"); err != nil {
			t.Fatalf("RemoveReport() error = %v", err)
		}
	})

	t.Run("nothing indexed", func(t *testing.T) {
		p, m := newTestPipeline(t)
		m.chunks.EXPECT().ListIDsByReport(gomock.Any(), "rep-1").Return([]string{}, nil)
		m.chunks.EXPECT().DeleteByReport(gomock.Any(), "rep-1").Return(nil)
		if err := p.RemoveReport(context.Background(), "rep-1"); err != nil {
			t.Fatalf("RemoveReport() error = %v", err)
		}
	})
}

func TestPipeline_ClearAll(t *testing.T) {
	p, m := newTestPipeline(t)

	ids := make([]string, 300)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i)
	}

	m.chunks.EXPECT().ListAllIDs(gomock.Any()).Return(ids, nil)
	m.store.EXPECT().Delete(gomock.Any(), testCollection, gomock.Len(256)).Return(nil)
	m.store.EXPECT().Delete(gomock.Any(), testCollection, gomock.Len(44)).Return(nil)
	m.chunks.EXPECT().DeleteAll(gomock.Any()).Return(nil)

	if err := p.ClearAll(context.Background()); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
}

func TestContentHash(t *testing.T) {
	a := ContentHash("Title", "Body")
	if a != ContentHash("Title", "Body") {
		t.Error("ContentHash() should be deterministic")
	}
	if a == ContentHash("Title", "Body changed") || a == ContentHash("TitleB", "ody") {
		t.Error("ContentHash() should change with title or content")
	}
	if len(a) != 64 {
		t.Errorf("ContentHash() length = %d, want 64", len(a))
	}
}
