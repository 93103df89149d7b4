package importer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		filename  string
		wantMeta  FrontMatter
		wantBody  string
		wantError bool
	}{
		{
			name: "full front matter",
			data: "---\nid: 5d1f6a70-3a2b-4c9e-8d7f-6e5d4c3b2a10\ntitle: Initial Assessment\ndescription: First visit\n" +
				"therapist_id: 7f8e6a3c-2d4b-4c1e-9f0a-1b2c3d4e5f60\npatient_id: 0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d\n" +
				"type_id: 2\nlanguage_id: 1\n---\n\n## Background\n\nReferred by school.\n",
			filename: "assessment.md",
			wantMeta: FrontMatter{
				ID:          "5d1f6a70-3a2b-4c9e-8d7f-6e5d4c3b2a10",
				Title:       "Initial Assessment",
				Description: "First visit",
				TherapistID: "7f8e6a3c-2d4b-4c1e-9f0a-1b2c3d4e5f60",
				PatientID:   "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d",
				TypeID:      2,
				LanguageID:  1,
			},
			wantBody: "## Background\n\nReferred by school.",
		},
		{
			name:     "title from heading",
			data:     "---\ntype_id: 1\n---\n# Progress Note\n\nGood week.",
			filename: "note.md",
			wantMeta: FrontMatter{Title: "Progress Note", TypeID: 1},
			wantBody: "# Progress Note\n\nGood week.",
		},
		{
			name:     "title from filename without front matter",
			data:     "Plain body text.\r\n",
			filename: "session-notes_week_3.md",
			wantMeta: FrontMatter{Title: "Session Notes Week 3"},
			wantBody: "Plain body text.",
		},
		{
			name:     "empty front matter",
			data:     "---\n---\nBody",
			filename: "empty.md",
			wantMeta: FrontMatter{Title: "Empty"},
			wantBody: "Body",
		},
		{
			name:     "byte order mark",
			data:     "\uFEFF---\ntitle: With BOM\n---\nBody",
			filename: "bom.md",
			wantMeta: FrontMatter{Title: "With BOM"},
			wantBody: "Body",
		},
		{
			name:      "unclosed front matter",
			data:      "---\ntitle: Broken\nBody",
			filename:  "broken.md",
			wantError: true,
		},
		{
			name:      "invalid yaml",
			data:      "---\ntype_id: [1\n---\nBody",
			filename:  "bad.md",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.data), tt.filename)
			if tt.wantError {
				if err == nil {
					t.Fatal("Parse() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if doc.Meta != tt.wantMeta {
				t.Errorf("Parse() meta = %+v, want %+v", doc.Meta, tt.wantMeta)
			}
			if doc.Body != tt.wantBody {
				t.Errorf("Parse() body = %q, want %q", doc.Body, tt.wantBody)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intake.md")
	if err := os.WriteFile(path, []byte("---\ntitle: Intake\n---\nNotes"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if doc.Path != path {
		t.Errorf("Path = %q, want %q", doc.Path, path)
	}
	in := doc.Input()
	if in.Title != "Intake" || in.Content != "Notes" {
		t.Errorf("Input() = %+v", in)
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.md")); err == nil {
		t.Error("ParseFile() expected error for missing file")
	}
}
