package rag

import (
	"fmt"
	"strings"

	"sharerapy/internal/llm"
)

const (
	// NoContextText replaces the context block when nothing was retrieved.
	NoContextText = "No relevant documentation found for this query."
	// RefusalText is the sentence the model must use when the context lacks the answer.
	RefusalText = "I cannot find that information in the reports."

	contextSeparator = "\n---\n"
)

// BuildContext joins chunk texts in retrieval order.
func BuildContext(sources []Source) string {
	if len(sources) == 0 {
		return NoContextText
	}
	texts := make([]string, len(sources))
	for i, s := range sources {
		texts[i] = s.Text
	}
	return strings.Join(texts, contextSeparator)
}

// BuildSystemPrompt returns the instruction that grounds the answer in
// contextText.
func BuildSystemPrompt(contextText string) string {
	var b strings.Builder
	b.WriteString("You are a clinical assistant helping therapists explore therapy reports.\n")
	b.WriteString("Answer the user's question using ONLY the information in the Context below.\n")
	fmt.Fprintf(&b, "If the answer is not in the Context, say exactly: %q\n", RefusalText)
	b.WriteString("Do not invent patients, sessions, scores or recommendations.\n\n")
	b.WriteString("Formatting:\n")
	b.WriteString("- Write plain text only. Do not use markdown: no headings, bold, italics, bullet markup or code fences.\n")
	b.WriteString("- Use short paragraphs.\n\n")
	b.WriteString("Tone:\n")
	b.WriteString("- For short factual questions, answer briskly.\n")
	b.WriteString("- If the user sounds worried or emotional, briefly acknowledge it before answering.\n")
	b.WriteString("- If the question mentions safety, risk or harm, be direct and put the most urgent facts first.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	return b.String()
}

// BuildAnswerMessages returns the system message, the last n history turns in
// order, and the user query.
func BuildAnswerMessages(system string, history []Turn, query string, n int) []llm.Message {
	recent := lastTurns(history, n)
	messages := make([]llm.Message, 0, len(recent)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, turn := range recent {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: query})
}
