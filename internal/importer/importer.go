package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/service"
)

// Action says what importing a file did.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// FileError records a file that could not be imported.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Result summarises an ImportDir run.
type Result struct {
	Created int         `json:"created"`
	Updated int         `json:"updated"`
	Failed  int         `json:"failed"`
	Errors  []FileError `json:"errors"`
}

// Importer loads markdown report files through the report service.
type Importer struct {
	reports service.ReportService
}

// New creates an Importer.
func New(reports service.ReportService) *Importer {
	return &Importer{reports: reports}
}

// ImportFile creates or updates the report described by path. A front matter
// ID that already exists updates that report; anything else creates one.
func (im *Importer) ImportFile(ctx context.Context, path string) (Action, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return "", err
	}
	in := doc.Input()

	if in.ID != "" {
		_, err := im.reports.Get(ctx, in.ID)
		switch {
		case err == nil:
			if _, err := im.reports.Update(ctx, in.ID, in); err != nil {
				return "", fmt.Errorf("failed to update report %s from %s: %w", in.ID, path, err)
			}
			return ActionUpdated, nil
		case !errors.Is(err, service.ErrNotFound):
			return "", fmt.Errorf("failed to look up report %s: %w", in.ID, err)
		}
	}

	report, err := im.reports.Create(ctx, in)
	if err != nil {
		return "", fmt.Errorf("failed to create report from %s: %w", path, err)
	}
	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "imported report", "path", path, "report_id", report.ID)
	return ActionCreated, nil
}

// ImportDir imports every markdown file under dir. Failures are collected in
// the result; only an unreadable directory or a cancelled context is an error.
func (im *Importer) ImportDir(ctx context.Context, dir string) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	paths, err := Scan(ctx, dir)
	if err != nil {
		return nil, err
	}

	result := &Result{Errors: []FileError{}}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		action, err := im.ImportFile(ctx, path)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, FileError{Path: path, Error: err.Error()})
			logger.WarnContext(ctx, "failed to import file", "path", path, "error", err)
			continue
		}
		if action == ActionUpdated {
			result.Updated++
		} else {
			result.Created++
		}
	}

	logger.InfoContext(ctx, "import completed",
		"dir", dir,
		"created", result.Created,
		"updated", result.Updated,
		"failed", result.Failed,
	)
	return result, nil
}

// Run imports each path received from events until ctx is done or events
// is closed.
func (im *Importer) Run(ctx context.Context, events <-chan string) error {
	logger := contextutil.LoggerFromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-events:
			if !ok {
				return nil
			}
			action, err := im.ImportFile(ctx, path)
			if err != nil {
				logger.WarnContext(ctx, "failed to import changed file", "path", path, "error", err)
				continue
			}
			logger.InfoContext(ctx, "imported changed file", "path", path, "action", action)
		}
	}
}

// Scan returns the markdown files under dir in lexical order. Hidden
// directories are skipped.
func Scan(ctx context.Context, dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isMarkdown(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	slices.Sort(paths)
	return paths, nil
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md") && !strings.HasPrefix(filepath.Base(path), ".")
}
