package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func TestClient_MissingModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-mini","object":"model"},{"id":"text-embedding-3-large","object":"model"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "test-key", "gpt-4o-mini", 0)

	tests := []struct {
		name   string
		models []string
		want   []string
	}{
		{name: "all served", models: []string{"gpt-4o-mini", "text-embedding-3-large"}, want: nil},
		{name: "one missing", models: []string{"gpt-4o-mini", "gpt-4.1"}, want: []string{"gpt-4.1"}},
		{name: "duplicates and blanks", models: []string{"gpt-4.1", "", "gpt-4.1"}, want: []string{"gpt-4.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.MissingModels(context.Background(), tt.models...)
			if err != nil {
				t.Fatalf("MissingModels() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("MissingModels() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_AvailableModels_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"not found","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "test-key", "gpt-4o-mini", 0)
	if _, err := client.AvailableModels(context.Background()); err == nil {
		t.Error("AvailableModels() should fail on a 404")
	}
}
