package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/llm"
	"sharerapy/internal/metrics"
)

// ErrQueryRequired is reported when the query is empty.
var ErrQueryRequired = errors.New("query is required")

const streamBuffer = 16

// Options tunes the answer pipeline.
type Options struct {
	MatchThreshold     float32
	MatchCount         int
	ExpansionHistory   int
	AnswerHistory      int
	HydrateConcurrency int
	GenerationTimeout  time.Duration
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		MatchThreshold:     0.1,
		MatchCount:         10,
		ExpansionHistory:   4,
		AnswerHistory:      6,
		HydrateConcurrency: 8,
		GenerationTimeout:  2 * time.Minute,
	}
}

type engine struct {
	expander  *QueryExpander
	embedder  Embedder
	retriever Retriever
	hydrator  *Hydrator
	streamer  ChatStreamer
	opts      Options
	metrics   *metrics.Metrics
}

// NewEngine wires the pipeline stages together. m may be nil.
func NewEngine(
	completer ChatCompleter,
	streamer ChatStreamer,
	embedder Embedder,
	retriever Retriever,
	reports ReportLookup,
	opts Options,
	m *metrics.Metrics,
) Engine {
	defaults := DefaultOptions()
	if opts.MatchCount <= 0 {
		opts.MatchCount = defaults.MatchCount
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = defaults.GenerationTimeout
	}
	if opts.HydrateConcurrency <= 0 {
		opts.HydrateConcurrency = defaults.HydrateConcurrency
	}

	return &engine{
		expander:  NewQueryExpander(completer, opts.ExpansionHistory, m),
		embedder:  embedder,
		retriever: retriever,
		hydrator:  NewHydrator(reports, opts.HydrateConcurrency, m),
		streamer:  streamer,
		opts:      opts,
		metrics:   m,
	}
}

// GenerateAnswer implements Engine.
func (e *engine) GenerateAnswer(ctx context.Context, query string, history []Turn) (res Result) {
	logger := contextutil.LoggerFromContext(ctx)
	stage := StageIdle

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "answer pipeline panicked", "stage", stage, "panic", r)
			res = e.fail(stage, fmt.Errorf("internal error: %v", r))
		}
		e.metrics.RecordRequest(res.Success)
	}()

	if strings.TrimSpace(query) == "" {
		return Result{Success: false, Error: ErrQueryRequired.Error(), FailedStage: StageIdle}
	}

	enter := func(next Stage) time.Time {
		stage = next
		logger.DebugContext(ctx, "answer pipeline stage", "stage", next)
		return time.Now()
	}

	start := enter(StageExpanding)
	searchQuery := e.expander.Expand(ctx, query, history)
	e.metrics.ObserveStage(string(StageExpanding), time.Since(start))

	start = enter(StageEmbedding)
	embedding, err := e.embedder.Embed(ctx, flattenNewlines(searchQuery))
	e.metrics.ObserveStage(string(StageEmbedding), time.Since(start))
	if err != nil {
		logger.ErrorContext(ctx, "embedding failed", "error", err)
		return e.fail(stage, fmt.Errorf("failed to embed query: %w", err))
	}

	start = enter(StageRetrieving)
	chunks, err := e.retriever.MatchDocuments(ctx, embedding, e.opts.MatchThreshold, e.opts.MatchCount)
	e.metrics.ObserveStage(string(StageRetrieving), time.Since(start))
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return e.fail(stage, fmt.Errorf("failed to retrieve documents: %w", err))
	}
	e.metrics.ObserveRetrieved(len(chunks))

	start = enter(StageHydrating)
	sources, err := e.hydrator.Hydrate(ctx, chunks)
	e.metrics.ObserveStage(string(StageHydrating), time.Since(start))
	if err != nil {
		logger.ErrorContext(ctx, "hydration interrupted", "error", err)
		return e.fail(stage, fmt.Errorf("failed to load reports: %w", err))
	}

	start = enter(StageStreaming)
	system := BuildSystemPrompt(BuildContext(sources))
	messages := BuildAnswerMessages(system, history, query, e.opts.AnswerHistory)

	output, err := e.startGeneration(ctx, messages)
	e.metrics.ObserveStage(string(StageStreaming), time.Since(start))
	if err != nil {
		logger.ErrorContext(ctx, "failed to open answer stream", "error", err)
		return e.fail(stage, fmt.Errorf("failed to start answer: %w", err))
	}

	stage = StageDone
	logger.InfoContext(ctx, "answer stream started",
		"sources", len(sources),
		"expanded", searchQuery != query,
	)
	return Result{Success: true, Sources: sources, Output: output}
}

// startGeneration opens the upstream stream and hands it to a worker that
// pumps deltas into the returned TextStream.
func (e *engine) startGeneration(ctx context.Context, messages []llm.Message) (*TextStream, error) {
	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.opts.GenerationTimeout)

	upstream, err := e.streamer.OpenStream(genCtx, messages)
	if err != nil {
		cancel()
		return nil, err
	}

	out := newTextStream(streamBuffer, cancel)
	e.metrics.StreamStarted()
	go e.pump(genCtx, upstream, out, cancel)
	return out, nil
}

func (e *engine) pump(ctx context.Context, upstream llm.DeltaStream, out *TextStream, cancel context.CancelFunc) {
	logger := contextutil.LoggerFromContext(ctx)
	started := time.Now()
	first := true

	var err error
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "answer stream panicked", "panic", r)
			err = fmt.Errorf("internal error: %v", r)
		}
		if cerr := upstream.Close(); cerr != nil {
			logger.DebugContext(ctx, "closing upstream stream", "error", cerr)
		}
		out.Finish(err)
		cancel()
		e.metrics.StreamEnded()
	}()

	for {
		delta, rerr := upstream.Recv()
		if errors.Is(rerr, io.EOF) {
			return
		}
		if rerr != nil {
			if out.Closed() {
				return
			}
			logger.ErrorContext(ctx, "answer stream failed", "error", rerr)
			err = fmt.Errorf("answer stream: %w", rerr)
			return
		}
		if delta == "" {
			continue
		}
		if first {
			first = false
			e.metrics.ObserveFirstDelta(time.Since(started))
		}
		if !out.Send(delta) {
			logger.DebugContext(ctx, "answer stream closed by consumer")
			return
		}
		e.metrics.RecordDelta()
	}
}

func (e *engine) fail(stage Stage, err error) Result {
	e.metrics.RecordFailure(string(stage))
	return Result{Success: false, Error: err.Error(), FailedStage: stage}
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func flattenNewlines(s string) string {
	return newlineReplacer.Replace(s)
}
