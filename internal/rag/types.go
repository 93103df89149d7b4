package rag

import (
	"strings"

	"sharerapy/internal/storage"
)

// Turn is one prior message of the conversation, oldest first.
// Role is "user" or "assistant".
type Turn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// NormalizeRole lowercases role and maps the "ai" role used by chat clients to "assistant".
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "ai" {
		return "assistant"
	}
	return role
}

// DocumentChunk is a retrieved excerpt of a report.
type DocumentChunk struct {
	ID         string  `json:"id"`
	ReportID   string  `json:"report_id"`
	Text       string  `json:"text"`
	Similarity float32 `json:"similarity"`
}

// Source is a retrieved chunk with its parent report attached.
// Report is nil when the report could not be loaded.
type Source struct {
	DocumentChunk
	Report *storage.Report `json:"report"`
}

// Stage names a step of the answer pipeline.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageExpanding  Stage = "expanding"
	StageEmbedding  Stage = "embedding"
	StageRetrieving Stage = "retrieving"
	StageHydrating  Stage = "hydrating"
	StageStreaming  Stage = "streaming"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Result is the outcome of GenerateAnswer.
//
// On success Output streams the answer text and Sources lists the grounding
// excerpts in retrieval order. On failure Output is nil, Error describes the
// problem and FailedStage names the stage that failed.
type Result struct {
	Success     bool
	Sources     []Source
	Output      *TextStream
	Error       string
	FailedStage Stage
}
