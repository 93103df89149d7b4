package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type capturedRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float32   `json:"temperature"`
}

func decodeRequest(t *testing.T, r *http.Request) capturedRequest {
	t.Helper()
	var req capturedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("failed to decode request: %v", err)
	}
	return req
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"id":"cmpl-1","object":"chat.completion","model":"test-model","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, content)
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8081/v1", "test-key", "test-model", 0.3)
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.Model != "test-model" {
		t.Errorf("NewClient() Model = %v, want test-model", client.Model)
	}
	if client.Temperature != 0.3 {
		t.Errorf("NewClient() Temperature = %v, want 0.3", client.Temperature)
	}
	if client.api == nil {
		t.Error("NewClient() api should not be nil")
	}
}

func TestClient_ChatWithMessages(t *testing.T) {
	tests := []struct {
		name       string
		messages   []Message
		params     ChatParams
		serverResp func(t *testing.T, w http.ResponseWriter, r *http.Request)
		wantReply  string
		wantErr    bool
	}{
		{
			name: "successful chat with default model",
			messages: []Message{
				{Role: RoleSystem, Content: "You are helpful."},
				{Role: RoleUser, Content: "Hello"},
			},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/chat/completions" {
					t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
					t.Errorf("Authorization = %q", got)
				}
				req := decodeRequest(t, r)
				if req.Model != "test-model" {
					t.Errorf("model = %q, want test-model", req.Model)
				}
				if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem || req.Messages[1].Content != "Hello" {
					t.Errorf("unexpected messages: %+v", req.Messages)
				}
				writeCompletion(w, "Hi there!")
			},
			wantReply: "Hi there!",
		},
		{
			name:     "model override",
			messages: []Message{{Role: RoleUser, Content: "Hello"}},
			params:   ChatParams{Model: "other-model"},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				if req := decodeRequest(t, r); req.Model != "other-model" {
					t.Errorf("model = %q, want other-model", req.Model)
				}
				writeCompletion(w, "ok")
			},
			wantReply: "ok",
		},
		{
			name:     "no choices returned",
			messages: []Message{{Role: RoleUser, Content: "Hello"}},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"id":"cmpl-1","object":"chat.completion","choices":[]}`)
			},
			wantErr: true,
		},
		{
			name:     "server error",
			messages: []Message{{Role: RoleUser, Content: "Hello"}},
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
			},
			wantErr: true,
		},
		{
			name:     "no messages",
			messages: nil,
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				t.Error("server should not be called")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.serverResp(t, w, r)
			}))
			defer server.Close()

			client := NewClient(server.URL+"/v1", "test-key", "test-model", 0.2)
			reply, err := client.ChatWithMessages(context.Background(), tt.messages, tt.params)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ChatWithMessages() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && reply != tt.wantReply {
				t.Errorf("ChatWithMessages() reply = %q, want %q", reply, tt.wantReply)
			}
		})
	}
}

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "standalone query")
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "test-key", "test-model", 0.2)
	reply, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "it"}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "standalone query" {
		t.Errorf("Complete() = %q", reply)
	}
}

func TestClient_OpenStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if req := decodeRequest(t, r); !req.Stream {
			t.Error("expected stream=true")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`{"id":"c","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"role":"assistant"}}]}`,
			`{"id":"c","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"Hello"}}]}`,
			`{"id":"c","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":" world"}}]}`,
			`{"id":"c","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		}
		for _, c := range chunks {
			_, _ = fmt.Fprintf(w, "data: %s\n\n", c)
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "test-key", "test-model", 0.2)
	stream, err := client.OpenStream(context.Background(), []Message{{Role: RoleUser, Content: "Hi"}})
	if err != nil {
		t.Fatalf("OpenStream() error = %v", err)
	}
	defer func() { _ = stream.Close() }()

	var sb strings.Builder
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		sb.WriteString(delta)
	}

	if sb.String() != "Hello world" {
		t.Errorf("streamed text = %q, want %q", sb.String(), "Hello world")
	}
}

func TestClient_OpenStream_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "bad-key", "test-model", 0.2)
	if _, err := client.OpenStream(context.Background(), []Message{{Role: RoleUser, Content: "Hi"}}); err == nil {
		t.Fatal("OpenStream() expected error, got nil")
	}
}
