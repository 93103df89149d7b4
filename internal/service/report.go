package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_indexer.go -package=mocks sharerapy/internal/service Indexer
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_report_service.go -package=mocks sharerapy/internal/service ReportService

import (
	"context"
	"fmt"
	"strings"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/indexer"
	"sharerapy/internal/storage"
)

// Indexer keeps the vector index in step with stored reports.
// This interface is defined from the service layer's perspective (consumer-first).
type Indexer interface {
	IndexReport(ctx context.Context, id string, force bool) (indexer.Outcome, error)
	RemoveReport(ctx context.Context, id string) error
}

// ReportInput is the editable content of a report.
type ReportInput struct {
	// ID is honoured on Create only. Imports use it to keep stable IDs.
	ID          string `json:"id" validate:"omitempty,uuid"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Content     string `json:"content" validate:"required"`
	TherapistID string `json:"therapist_id" validate:"required,uuid"`
	PatientID   string `json:"patient_id" validate:"required,uuid"`
	TypeID      int64  `json:"type_id" validate:"gt=0"`
	LanguageID  int64  `json:"language_id" validate:"gt=0"`
}

func (in ReportInput) normalized() ReportInput {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.TherapistID = strings.TrimSpace(in.TherapistID)
	in.PatientID = strings.TrimSpace(in.PatientID)
	if strings.TrimSpace(in.Content) == "" {
		in.Content = ""
	}
	return in
}

// ReportService manages therapy reports and their index entries.
type ReportService interface {
	Create(ctx context.Context, in ReportInput) (*storage.Report, error)
	Update(ctx context.Context, id string, in ReportInput) (*storage.Report, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*storage.Report, error)
	List(ctx context.Context, params storage.ListParams) (*storage.ReportPage, error)
}

type reportService struct {
	reports storage.ReportStore
	indexer Indexer
}

// NewReportService creates a new ReportService.
func NewReportService(reports storage.ReportStore, idx Indexer) ReportService {
	return &reportService{reports: reports, indexer: idx}
}

func (s *reportService) Create(ctx context.Context, in ReportInput) (*storage.Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	in = in.normalized()
	if err := Validate(in); err != nil {
		logger.WarnContext(ctx, "invalid report", "error", err)
		return nil, err
	}

	report := &storage.Report{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		TherapistID: in.TherapistID,
		PatientID:   in.PatientID,
		TypeID:      in.TypeID,
		LanguageID:  in.LanguageID,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fromStorage(err, "failed to create report")
	}

	logger.InfoContext(ctx, "report created", "report_id", report.ID)
	s.index(ctx, report.ID)
	return s.Get(ctx, report.ID)
}

func (s *reportService) Update(ctx context.Context, id string, in ReportInput) (*storage.Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Field: "id", Message: "is required"}
	}
	in = in.normalized()
	in.ID = ""
	if err := Validate(in); err != nil {
		logger.WarnContext(ctx, "invalid report", "report_id", id, "error", err)
		return nil, err
	}

	report := &storage.Report{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		TherapistID: in.TherapistID,
		PatientID:   in.PatientID,
		TypeID:      in.TypeID,
		LanguageID:  in.LanguageID,
	}
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, fromStorage(err, "failed to update report")
	}

	logger.InfoContext(ctx, "report updated", "report_id", id)
	s.index(ctx, id)
	return s.Get(ctx, id)
}

// index refreshes a report's vectors. Failures leave the index hash unset,
// so the next reindex retries the report.
func (s *reportService) index(ctx context.Context, id string) {
	if _, err := s.indexer.IndexReport(ctx, id, false); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to index report", "report_id", id, "error", err)
	}
}

func (s *reportService) Delete(ctx context.Context, id string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Message: "is required"}
	}

	// Confirm the report exists before touching the index.
	if _, err := s.reports.GetByID(ctx, id); err != nil {
		return fromStorage(err, "failed to delete report")
	}
	if err := s.indexer.RemoveReport(ctx, id); err != nil {
		logger.ErrorContext(ctx, "failed to remove report from index", "report_id", id, "error", err)
		return fmt.Errorf("failed to remove report from index: %w: %v", ErrExternalService, err)
	}
	if err := s.reports.Delete(ctx, id); err != nil {
		return fromStorage(err, "failed to delete report")
	}

	logger.InfoContext(ctx, "report deleted", "report_id", id)
	return nil
}

func (s *reportService) Get(ctx context.Context, id string) (*storage.Report, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Field: "id", Message: "is required"}
	}
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, fromStorage(err, "failed to get report")
	}
	return report, nil
}

// listQuery mirrors the constraints on storage.ListParams.
type listQuery struct {
	SortColumn string `json:"sort" validate:"omitempty,oneof=title created_at updated_at"`
	Page       int    `json:"page" validate:"min=0"`
	PageSize   int    `json:"page_size" validate:"min=0,max=100"`
}

func (s *reportService) List(ctx context.Context, params storage.ListParams) (*storage.ReportPage, error) {
	if err := Validate(listQuery{
		SortColumn: params.SortColumn,
		Page:       params.Page,
		PageSize:   params.PageSize,
	}); err != nil {
		return nil, err
	}
	if params.StartDate != nil && params.EndDate != nil && params.EndDate.Before(*params.StartDate) {
		return nil, &ValidationError{Field: "to", Message: "must not be before from"}
	}

	page, err := s.reports.List(ctx, params)
	if err != nil {
		return nil, fromStorage(err, "failed to list reports")
	}
	return page, nil
}
