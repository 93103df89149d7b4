package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharerapy/internal/importer"
	"sharerapy/internal/indexer"
	"sharerapy/internal/rag"
	"sharerapy/internal/service"
	"sharerapy/internal/storage"
)

func finishedStream(err error, deltas ...string) *rag.TextStream {
	s := rag.NewTextStream(len(deltas))
	for _, d := range deltas {
		s.Send(d)
	}
	s.Finish(err)
	return s
}

func TestReadHistory(t *testing.T) {
	t.Run("normalises roles", func(t *testing.T) {
		in := `[{"role":"user","content":"hi"},{"role":"AI","content":"hello"}]`
		got, err := readHistory(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, []rag.Turn{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		}, got)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		in := `[{"role":"user","content":"hi"},{"role":"system","content":"x"}]`
		_, err := readHistory(strings.NewReader(in))
		var ve *service.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "history[1].role", ve.Field)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := readHistory(strings.NewReader(`{"role":`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode history")
	})
}

func TestPrintAnswer(t *testing.T) {
	report := &storage.Report{ID: "r1", Title: "Speech assessment"}
	sources := []rag.Source{
		{DocumentChunk: rag.DocumentChunk{ID: "c1", ReportID: "r1", Similarity: 0.82}, Report: report},
		{DocumentChunk: rag.DocumentChunk{ID: "c2", ReportID: "r1", Similarity: 0.61}, Report: report},
		{DocumentChunk: rag.DocumentChunk{ID: "c3", ReportID: "r2", Similarity: 0.4}},
	}

	t.Run("streams answer then sources", func(t *testing.T) {
		var buf bytes.Buffer
		res := rag.Result{Success: true, Sources: sources, Output: finishedStream(nil, "Two ", "reports.")}

		require.NoError(t, printAnswer(context.Background(), &buf, res, true))

		want := "Two reports.\n\nSources:\n" +
			"- Speech assessment [r1] similarity 0.82\n" +
			"- (report unavailable) [r2] similarity 0.40\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("sources hidden", func(t *testing.T) {
		var buf bytes.Buffer
		res := rag.Result{Success: true, Sources: sources, Output: finishedStream(nil, "ok")}

		require.NoError(t, printAnswer(context.Background(), &buf, res, false))
		assert.Equal(t, "ok\n", buf.String())
	})

	t.Run("pipeline failure", func(t *testing.T) {
		res := rag.Result{Error: "embedding service unavailable", FailedStage: rag.StageEmbedding}

		err := printAnswer(context.Background(), &bytes.Buffer{}, res, true)
		require.Error(t, err)
		assert.Equal(t, "embedding failed: embedding service unavailable", err.Error())
	})

	t.Run("stream error", func(t *testing.T) {
		var buf bytes.Buffer
		boom := errors.New("connection reset")
		res := rag.Result{Success: true, Output: finishedStream(boom, "partial")}

		err := printAnswer(context.Background(), &buf, res, true)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, "partial\n", buf.String())
	})

	t.Run("cancelled context closes stream", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		out := rag.NewTextStream(0)
		res := rag.Result{Success: true, Output: out}

		err := printAnswer(ctx, &bytes.Buffer{}, res, true)
		require.ErrorIs(t, err, context.Canceled)
		assert.True(t, out.Closed())
	})
}

type fakeReindexer struct {
	calls []string
	stats *indexer.IndexStats
	err   error
}

func (f *fakeReindexer) IndexAll(_ context.Context, force bool) (*indexer.IndexStats, error) {
	if force {
		f.calls = append(f.calls, "index(force)")
	} else {
		f.calls = append(f.calls, "index")
	}
	return f.stats, f.err
}

func (f *fakeReindexer) ClearAll(context.Context) error {
	f.calls = append(f.calls, "clear")
	return nil
}

func TestReindex(t *testing.T) {
	t.Run("incremental", func(t *testing.T) {
		f := &fakeReindexer{stats: &indexer.IndexStats{Total: 2}}
		stats, err := reindex(context.Background(), f, false)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, []string{"index"}, f.calls)
	})

	t.Run("force clears first", func(t *testing.T) {
		f := &fakeReindexer{stats: &indexer.IndexStats{}}
		_, err := reindex(context.Background(), f, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"clear", "index(force)"}, f.calls)
	})

	t.Run("index error wrapped", func(t *testing.T) {
		f := &fakeReindexer{err: errors.New("qdrant down")}
		_, err := reindex(context.Background(), f, false)
		require.Error(t, err)
		assert.Equal(t, "index reports: qdrant down", err.Error())
	})
}

func TestPrintIndexStats(t *testing.T) {
	var buf bytes.Buffer
	printIndexStats(&buf, &indexer.IndexStats{
		Total:       3,
		Indexed:     1,
		Skipped:     1,
		Failed:      1,
		Chunks:      4,
		ChunkTokens: indexer.ChunkTokenStats{Min: 10, Max: 80, Mean: 42.5, P95: 80},
		Failures:    []indexer.Failure{{ReportID: "r3", Error: "embed failed"}},
		Duration:    1500 * time.Millisecond,
	})

	want := "Indexed 1 of 3 reports (1 skipped, 1 failed) in 1.5s\n" +
		"Chunks: 4 (tokens min 10, max 80, mean 42.5, p95 80)\n" +
		"  failed r3: embed failed\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintImportResult(t *testing.T) {
	var buf bytes.Buffer
	printImportResult(&buf, "reports", &importer.Result{
		Created: 2,
		Updated: 1,
		Failed:  1,
		Errors:  []importer.FileError{{Path: "reports/bad.md", Error: "title is required"}},
	})

	want := "Imported reports: 2 created, 1 updated, 1 failed\n" +
		"  reports/bad.md: title is required\n"
	assert.Equal(t, want, buf.String())
}
