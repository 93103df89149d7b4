package indexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	minChunkSize = 50
	maxChunkSize = 700 // runes, roughly 175 tokens
)

// GoldmarkChunker splits report markdown into heading-scoped chunks.
type GoldmarkChunker struct {
	md goldmark.Markdown
}

// NewGoldmarkChunker creates a chunker that understands GFM tables.
func NewGoldmarkChunker() *GoldmarkChunker {
	return &GoldmarkChunker{
		md: goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
	}
}

// ChunkReport splits content into chunks whose heading path starts with the
// report title, e.g. "# Initial Assessment > ## Goals". Empty content yields
// no chunks.
func (c *GoldmarkChunker) ChunkReport(title string, content []byte) []Chunk {
	if strings.TrimSpace(string(content)) == "" {
		return []Chunk{}
	}

	doc := c.md.Parser().Parse(text.NewReader(content))
	sections := buildSections(doc, content, title)
	return applySizeConstraints(sections)
}

type headingInfo struct {
	level int
	text  string
}

// buildSections walks the top-level blocks and starts a new section at every
// heading. Content before the first heading belongs to the title section.
func buildSections(doc ast.Node, source []byte, title string) []Chunk {
	var (
		sections []Chunk
		stack    []headingInfo
		body     []string
	)
	path := rootPath(title)

	flush := func() {
		joined := strings.TrimSpace(strings.Join(body, "\n\n"))
		body = body[:0]
		if joined == "" {
			return
		}
		sections = append(sections, Chunk{HeadingPath: path, Text: joined})
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok {
			if t := blockText(n, source); t != "" {
				body = append(body, t)
			}
			continue
		}

		flush()

		label := inlineText(heading, source)
		// A top heading repeating the title is the title section itself.
		if heading.Level == 1 && strings.EqualFold(label, strings.TrimSpace(title)) {
			stack = stack[:0]
			path = rootPath(title)
			continue
		}
		for len(stack) > 0 && stack[len(stack)-1].level >= heading.Level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, headingInfo{level: heading.Level, text: label})
		path = headingPath(title, stack)
	}
	flush()

	return sections
}

func rootPath(title string) string {
	return "# " + strings.TrimSpace(title)
}

// headingPath renders "# Title > ## Heading > ### Sub".
func headingPath(title string, stack []headingInfo) string {
	parts := make([]string, 0, len(stack)+1)
	parts = append(parts, rootPath(title))
	for _, h := range stack {
		// Level 1 headings nest under the title.
		level := h.level
		if level < 2 {
			level = 2
		}
		parts = append(parts, fmt.Sprintf("%s %s", strings.Repeat("#", level), h.text))
	}
	return strings.Join(parts, " > ")
}

// blockText renders a block node as plain text.
func blockText(n ast.Node, source []byte) string {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return inlineText(node, source)

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var b strings.Builder
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(source))
		}
		return strings.TrimRight(b.String(), "\n")

	case *ast.List:
		var items []string
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			if t := childrenText(item, source, " "); t != "" {
				items = append(items, "- "+t)
			}
		}
		return strings.Join(items, "\n")

	case *ast.Blockquote:
		return childrenText(node, source, "\n")

	case *east.Table:
		var rows []string
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			rows = append(rows, tableRowText(row, source))
		}
		return strings.Join(rows, "\n")

	case *ast.ThematicBreak, *ast.HTMLBlock:
		return ""
	}

	return childrenText(n, source, "\n")
}

func childrenText(n ast.Node, source []byte, sep string) string {
	var parts []string
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t := blockText(child, source); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, sep)
}

// tableRowText joins the cells of a header or body row with " | ".
func tableRowText(row ast.Node, source []byte) string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*east.TableCell); ok {
			cells = append(cells, inlineText(cell, source))
		}
	}
	return strings.Join(cells, " | ")
}

// inlineText collects the text of n's inline descendants.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// applySizeConstraints merges chunks under minChunkSize runes into the next
// one and splits chunks over maxChunkSize runes. Indexes are reassigned.
func applySizeConstraints(chunks []Chunk) []Chunk {
	result := make([]Chunk, 0, len(chunks))

	for i := 0; i < len(chunks); i++ {
		current := chunks[i]

		for utf8.RuneCountInString(current.Text) < minChunkSize && i+1 < len(chunks) {
			next := chunks[i+1]
			merged := current.Text + "\n\n" + next.HeadingPath + "\n" + next.Text
			if utf8.RuneCountInString(merged) > maxChunkSize {
				break
			}
			current.Text = merged
			i++
		}

		for _, part := range splitText(current.Text, maxChunkSize) {
			result = append(result, Chunk{HeadingPath: current.HeadingPath, Text: part})
		}
	}

	for i := range result {
		result[i].Index = i
	}
	return result
}

// splitText cuts s into pieces of at most limit runes, preferring paragraph
// breaks, then line breaks, then sentence ends.
func splitText(s string, limit int) []string {
	runes := []rune(s)
	if len(runes) <= limit {
		return []string{s}
	}

	var parts []string
	for len(runes) > limit {
		cut := splitPoint(runes[:limit])
		if piece := strings.TrimSpace(string(runes[:cut])); piece != "" {
			parts = append(parts, piece)
		}
		runes = runes[cut:]
	}
	if piece := strings.TrimSpace(string(runes)); piece != "" {
		parts = append(parts, piece)
	}
	return parts
}

// splitPoint returns the rune offset to cut window at. It never returns 0.
func splitPoint(window []rune) int {
	for _, sep := range []string{"\n\n", "\n", ". "} {
		if i := lastIndexRunes(window, []rune(sep)); i > 0 {
			return i + len([]rune(sep))
		}
	}
	return len(window)
}

func lastIndexRunes(s, sep []rune) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		match := true
		for j := range sep {
			if s[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
