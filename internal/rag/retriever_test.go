package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sharerapy/internal/vectorstore"
	vectorstore_mocks "sharerapy/internal/vectorstore/mocks"
)

func TestVectorRetriever_MatchDocuments(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	r := NewVectorRetriever(store, "report_chunks")

	query := []float32{0.5, 0.5}
	store.EXPECT().
		Search(gomock.Any(), "report_chunks", query, vectorstore.SearchOptions{Limit: 3, ScoreThreshold: 0.2}).
		Return([]vectorstore.SearchResult{
			{PointID: "p1", Score: 0.91, Meta: map[string]any{vectorstore.PayloadReportID: "r1", vectorstore.PayloadText: "first"}},
			{PointID: "p2", Score: 0.40, Meta: map[string]any{vectorstore.PayloadText: "orphan"}},
			{PointID: "p3", Score: 0.35, Meta: map[string]any{vectorstore.PayloadReportID: "r2", vectorstore.PayloadText: "second"}},
			{PointID: "p4", Score: 0.10, Meta: map[string]any{vectorstore.PayloadReportID: "r3", vectorstore.PayloadText: "below"}},
		}, nil)

	chunks, err := r.MatchDocuments(context.Background(), query, 0.2, 3)
	require.NoError(t, err)
	assert.Equal(t, []DocumentChunk{
		{ID: "p1", ReportID: "r1", Text: "first", Similarity: 0.91},
		{ID: "p3", ReportID: "r2", Text: "second", Similarity: 0.35},
	}, chunks)
}

func TestVectorRetriever_NoMatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	r := NewVectorRetriever(store, "report_chunks")

	store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	chunks, err := r.MatchDocuments(context.Background(), []float32{1}, 0.1, 10)
	require.NoError(t, err)
	assert.NotNil(t, chunks)
	assert.Empty(t, chunks)

	chunks, err = r.MatchDocuments(context.Background(), []float32{1}, 0.1, 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestVectorRetriever_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	r := NewVectorRetriever(store, "report_chunks")

	storeErr := errors.New("connection refused")
	store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, storeErr)

	_, err := r.MatchDocuments(context.Background(), []float32{1}, 0.1, 10)
	assert.ErrorIs(t, err, storeErr)
}
