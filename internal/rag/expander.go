package rag

import (
	"context"
	"fmt"
	"strings"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/llm"
	"sharerapy/internal/metrics"
)

const expansionInstruction = `You rewrite the user's latest message into a standalone search query over a collection of therapy reports.
Use the conversation, when there is one, to resolve pronouns and references such as "that session" or "the same patient".
Keep names and dates exactly as written.
Append clinical synonyms for lay terms, for example "can't sit still" becomes "can't sit still hyperactivity ADHD attention difficulties" and "late talker" becomes "late talker expressive language delay".
Do not answer the question and do not add commentary.
Reply with the rewritten query only, without quotes or explanation.`

// QueryExpander rewrites questions into standalone search queries with clinical synonyms.
type QueryExpander struct {
	llm          ChatCompleter
	historyTurns int
	metrics      *metrics.Metrics
}

// NewQueryExpander creates an expander that looks at the last historyTurns turns.
func NewQueryExpander(completer ChatCompleter, historyTurns int, m *metrics.Metrics) *QueryExpander {
	return &QueryExpander{
		llm:          completer,
		historyTurns: historyTurns,
		metrics:      m,
	}
}

// Expand returns a standalone, clinically expanded version of query using
// up to the last historyTurns turns. It never fails: when the rewrite call
// errors or returns nothing, the original query is returned.
func (x *QueryExpander) Expand(ctx context.Context, query string, history []Turn) string {
	recent := lastTurns(history, x.historyTurns)
	logger := contextutil.LoggerFromContext(ctx)

	rewritten, err := x.llm.Complete(ctx, expansionMessages(query, recent))
	if err != nil {
		logger.WarnContext(ctx, "query expansion failed, using original query", "error", err)
		x.metrics.RecordExpansionFallback()
		return query
	}

	rewritten = cleanRewrite(rewritten)
	if rewritten == "" {
		logger.WarnContext(ctx, "query expansion returned nothing, using original query")
		x.metrics.RecordExpansionFallback()
		return query
	}

	logger.DebugContext(ctx, "query expanded", "original", query, "expanded", rewritten)
	return rewritten
}

func expansionMessages(query string, recent []Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(recent)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: expansionInstruction})
	for _, turn := range recent {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("Rewrite this message as a standalone search query:\n%s", query),
	})
	return messages
}

func cleanRewrite(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}

// lastTurns returns the final n turns of history in their original order.
func lastTurns(history []Turn, n int) []Turn {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
