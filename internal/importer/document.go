package importer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"sharerapy/internal/service"
)

// FrontMatter is the YAML header of an imported report file.
type FrontMatter struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	TherapistID string `yaml:"therapist_id"`
	PatientID   string `yaml:"patient_id"`
	TypeID      int64  `yaml:"type_id"`
	LanguageID  int64  `yaml:"language_id"`
}

// Document is a parsed report file.
type Document struct {
	Path string
	Meta FrontMatter
	Body string
}

// Input converts the document into a service payload.
func (d *Document) Input() service.ReportInput {
	return service.ReportInput{
		ID:          d.Meta.ID,
		Title:       d.Meta.Title,
		Description: d.Meta.Description,
		Content:     d.Body,
		TherapistID: d.Meta.TherapistID,
		PatientID:   d.Meta.PatientID,
		TypeID:      d.Meta.TypeID,
		LanguageID:  d.Meta.LanguageID,
	}
}

// ParseFile reads and parses a markdown report file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(data, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Parse splits optional YAML front matter from the markdown body. A missing
// title falls back to the first "# " heading, then to filename.
func Parse(data []byte, filename string) (*Document, error) {
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	doc := &Document{}
	if rest, ok := strings.CutPrefix(text, "---\n"); ok {
		header, body, found := cutClosingFence(rest)
		if !found {
			return nil, fmt.Errorf("front matter is not closed")
		}
		if err := yaml.Unmarshal([]byte(header), &doc.Meta); err != nil {
			return nil, fmt.Errorf("invalid front matter: %w", err)
		}
		text = body
	}

	doc.Body = strings.TrimSpace(text)
	doc.Meta.Title = strings.TrimSpace(doc.Meta.Title)
	if doc.Meta.Title == "" {
		doc.Meta.Title = firstHeading(doc.Body)
	}
	if doc.Meta.Title == "" {
		doc.Meta.Title = titleFromFilename(filename)
	}
	return doc, nil
}

// cutClosingFence finds the "---" line that ends the front matter.
func cutClosingFence(s string) (header, body string, found bool) {
	if strings.HasPrefix(s, "---\n") || s == "---" {
		return "", strings.TrimPrefix(s, "---"), true
	}
	if i := strings.Index(s, "\n---\n"); i >= 0 {
		return s[:i], s[i+len("\n---\n"):], true
	}
	if strings.HasSuffix(s, "\n---") {
		return strings.TrimSuffix(s, "\n---"), "", true
	}
	return "", "", false
}

func firstHeading(body string) string {
	for line := range strings.Lines(body) {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	return ""
}

// titleFromFilename turns "initial-assessment_leo.md" into "Initial Assessment Leo".
func titleFromFilename(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
