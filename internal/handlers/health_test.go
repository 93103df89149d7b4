package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	vectorstore_mocks "sharerapy/internal/vectorstore/mocks"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		exists     bool
		existsErr  error
		wantStatus int
		wantBody   HealthResponse
	}{
		{
			name:       "healthy",
			exists:     true,
			wantStatus: http.StatusOK,
			wantBody: HealthResponse{
				Status: "healthy",
				Checks: map[string]string{"sqlite": "ok", "qdrant": "ok"},
			},
		},
		{
			name:       "qdrant unreachable",
			existsErr:  errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody: HealthResponse{
				Status: "degraded",
				Checks: map[string]string{"sqlite": "ok", "qdrant": "error"},
				Issues: []string{"qdrant_unavailable"},
			},
		},
		{
			name:       "collection missing",
			exists:     false,
			wantStatus: http.StatusServiceUnavailable,
			wantBody: HealthResponse{
				Status: "degraded",
				Checks: map[string]string{"sqlite": "ok", "qdrant": "error"},
				Issues: []string{"qdrant_unavailable"},
			},
		},
		{
			name:       "database closed",
			pingErr:    errors.New("sql: database is closed"),
			exists:     true,
			wantStatus: http.StatusServiceUnavailable,
			wantBody: HealthResponse{
				Status: "degraded",
				Checks: map[string]string{"sqlite": "error", "qdrant": "ok"},
				Issues: []string{"sqlite_unavailable"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := vectorstore_mocks.NewMockVectorStore(ctrl)
			store.EXPECT().CollectionExists(gomock.Any(), "report_chunks").Return(tt.exists, tt.existsErr)

			handler := NewHealthHandler(fakePinger{err: tt.pingErr}, store, "report_chunks")
			handler.now = func() time.Time { return time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC) }

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var got HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Timestamp != "2025-05-01T09:30:00Z" {
				t.Errorf("timestamp = %q", got.Timestamp)
			}
			if got.Status != tt.wantBody.Status {
				t.Errorf("status = %q, want %q", got.Status, tt.wantBody.Status)
			}
			for k, v := range tt.wantBody.Checks {
				if got.Checks[k] != v {
					t.Errorf("checks[%s] = %q, want %q", k, got.Checks[k], v)
				}
			}
			if !slices.Equal(got.Issues, tt.wantBody.Issues) {
				t.Errorf("issues = %v, want %v", got.Issues, tt.wantBody.Issues)
			}
		})
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := NewHealthHandler(fakePinger{}, vectorstore_mocks.NewMockVectorStore(ctrl), "report_chunks")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/health", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}
