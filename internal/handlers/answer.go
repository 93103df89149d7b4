package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/rag"
	"sharerapy/internal/service"
)

const maxAnswerBody = 1 << 20

// AnswerHandler serves AI Mode answers over Server-Sent Events or JSON.
type AnswerHandler struct {
	engine rag.Engine
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(engine rag.Engine) *AnswerHandler {
	return &AnswerHandler{engine: engine}
}

// AnswerRequest represents the HTTP request payload for AI Mode.
type AnswerRequest struct {
	Query   string     `json:"query" validate:"required"`
	History []rag.Turn `json:"history" validate:"dive"`
}

// AnswerResponse is the non-streaming response, and the body of a pipeline failure.
type AnswerResponse struct {
	Success bool         `json:"success"`
	Answer  string       `json:"answer,omitempty"`
	Sources []rag.Source `json:"sources,omitempty"`
	Error   string       `json:"error,omitempty"`
	Stage   rag.Stage    `json:"stage,omitempty"`
}

type deltaEvent struct {
	Delta string `json:"delta"`
}

// normalize trims the query and maps the "ai" role used by chat clients to "assistant".
func (req *AnswerRequest) normalize() {
	req.Query = strings.TrimSpace(req.Query)
	for i := range req.History {
		req.History[i].Role = rag.NormalizeRole(req.History[i].Role)
	}
}

// ServeHTTP answers a question about the indexed reports.
//
// The answer streams as text/event-stream unless the query string sets
// stream=false, in which case the full answer is returned as JSON.
func (h *AnswerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAnswerBody)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.normalize()
	if err := service.Validate(req); err != nil {
		handleServiceError(ctx, w, err, "Invalid request")
		return
	}

	res := h.engine.GenerateAnswer(ctx, req.Query, req.History)
	if !res.Success {
		logger.WarnContext(ctx, "answer pipeline failed", "stage", res.FailedStage, "error", res.Error)
		writeJSON(ctx, w, http.StatusBadGateway, AnswerResponse{
			Success: false,
			Error:   res.Error,
			Stage:   res.FailedStage,
		})
		return
	}
	defer res.Output.Close()

	sources := res.Sources
	if sources == nil {
		sources = []rag.Source{}
	}

	if r.URL.Query().Get("stream") == "false" {
		answer, err := res.Output.Collect(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "answer generation failed", "error", err)
			writeJSON(ctx, w, http.StatusBadGateway, AnswerResponse{
				Success: false,
				Error:   fmt.Sprintf("answer generation failed: %v", err),
				Stage:   rag.StageStreaming,
			})
			return
		}
		writeJSON(ctx, w, http.StatusOK, AnswerResponse{
			Success: true,
			Answer:  answer,
			Sources: sources,
		})
		return
	}

	h.streamAnswer(w, r, sources, res.Output)
}

// streamAnswer writes the sources, then each delta, then a done or error event.
// It returns early, closing the stream, when the client goes away.
func (h *AnswerHandler) streamAnswer(w http.ResponseWriter, r *http.Request, sources []rag.Source, output *rag.TextStream) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "sources", sources); err != nil {
		logger.WarnContext(ctx, "failed to write sources", "error", err)
		return
	}
	flusher.Flush()

	deltas := 0
	for {
		select {
		case delta, ok := <-output.Deltas():
			if !ok {
				if err := output.Err(); err != nil {
					logger.ErrorContext(ctx, "answer stream failed", "error", err, "deltas", deltas)
					_ = writeEvent(w, "error", ErrorResponse{Error: err.Error()})
				} else {
					_, _ = fmt.Fprint(w, "event: done\ndata: [DONE]\n\n")
					logger.InfoContext(ctx, "answer streamed", "deltas", deltas, "sources", len(sources))
				}
				flusher.Flush()
				return
			}
			if err := writeEvent(w, "", deltaEvent{Delta: delta}); err != nil {
				logger.WarnContext(ctx, "failed to write delta", "error", err)
				return
			}
			flusher.Flush()
			deltas++
		case <-ctx.Done():
			logger.InfoContext(ctx, "client disconnected during answer", "deltas", deltas)
			return
		}
	}
}

// writeEvent writes one SSE event. An empty name writes a data-only message.
func writeEvent(w io.Writer, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if name != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", name); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
