package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/service"
	"sharerapy/internal/storage"
)

// ReportPageHandler serves a report as a rendered HTML page.
type ReportPageHandler struct {
	reports  service.ReportService
	markdown goldmark.Markdown
	template *template.Template
}

// reportPageData holds template data for rendered report pages.
type reportPageData struct {
	Title       string
	Description string
	Therapist   string
	Clinic      string
	Patient     string
	PatientAge  string
	Type        string
	Language    string
	Created     string
	Content     template.HTML
}

var reportPageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} · Sharerapy</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 900px;
      line-height: 1.7;
      background: #f8fafc;
      color: #1e293b;
    }
    header {
      margin-bottom: 2rem;
      border-bottom: 1px solid #e2e8f0;
      padding-bottom: 1.5rem;
    }
    h1 {
      margin-top: 0;
      font-size: 2rem;
    }
    article {
      background: #fff;
      border: 1px solid #e2e8f0;
      border-radius: 16px;
      padding: 2rem;
    }
    article h2, article h3, article h4 {
      color: #0f766e;
      margin-top: 1.5rem;
    }
    table {
      border-collapse: collapse;
    }
    th, td {
      border: 1px solid #e2e8f0;
      padding: 0.25rem 0.75rem;
    }
    blockquote {
      border-left: 4px solid #5eead4;
      padding-left: 1rem;
      margin-left: 0;
      color: #475569;
    }
    .meta {
      color: #64748b;
      font-size: 0.95rem;
      margin: 0.25rem 0;
    }
    @media (max-width: 640px) {
      body {
        padding: 1rem;
      }
      article {
        padding: 1.25rem;
      }
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    {{if .Description}}<p>{{.Description}}</p>{{end}}
    <p class="meta">{{.Type}}{{if .Language}} &middot; {{.Language}}{{end}} &middot; {{.Created}}</p>
    {{if .Therapist}}<p class="meta">Therapist: {{.Therapist}}{{if .Clinic}} ({{.Clinic}}){{end}}</p>{{end}}
    {{if .Patient}}<p class="meta">Patient: {{.Patient}}{{if .PatientAge}}, {{.PatientAge}}{{end}}</p>{{end}}
  </header>
  <article>{{.Content}}</article>
</body>
</html>`))

// NewReportPageHandler creates a new handler for report pages.
// Raw HTML in report content is not rendered.
func NewReportPageHandler(reports service.ReportService) *ReportPageHandler {
	return &ReportPageHandler{
		reports: reports,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: reportPageTemplate,
	}
}

// ServeHTTP renders the requested report as HTML.
func (h *ReportPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	report, err := h.reports.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "report not found", http.StatusNotFound)
		case errors.Is(err, service.ErrInvalidInput):
			http.Error(w, "invalid report id", http.StatusBadRequest)
		default:
			logger.ErrorContext(ctx, "failed to load report", "report_id", id, "error", err)
			http.Error(w, "failed to load report", http.StatusInternalServerError)
		}
		return
	}

	content, err := h.render([]byte(report.Content))
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "report_id", id, "error", err)
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.template.Execute(&buf, pageData(report, content)); err != nil {
		logger.ErrorContext(ctx, "failed to execute report template", "report_id", id, "error", err)
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *ReportPageHandler) render(content []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := h.markdown.Convert(content, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func pageData(report *storage.Report, content template.HTML) reportPageData {
	data := reportPageData{
		Title:       report.Title,
		Description: report.Description,
		Created:     report.CreatedAt.Format("2 January 2006"),
		Content:     content,
	}
	if t := report.Therapist; t != nil {
		data.Therapist = t.Name
		if t.Clinic != nil {
			data.Clinic = t.Clinic.Name
		}
	}
	if p := report.Patient; p != nil {
		data.Patient = p.Name
		data.PatientAge = p.Age
	}
	if report.Type != nil {
		data.Type = report.Type.Name
	}
	if report.Language != nil {
		data.Language = report.Language.Name
	}
	return data
}
