package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/service"
	"sharerapy/internal/storage"
)

const maxReportBody = 5 << 20

// ReportHandler serves the report CRUD endpoints.
type ReportHandler struct {
	reports service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// List handles GET /api/reports.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := parseListParams(r.URL.Query())
	if err != nil {
		handleServiceError(ctx, w, err, "Invalid query")
		return
	}

	page, err := h.reports.List(ctx, params)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list reports")
		return
	}
	if page.Reports == nil {
		page.Reports = []storage.Report{}
	}
	writeJSON(ctx, w, http.StatusOK, page)
}

// Create handles POST /api/reports.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, ok := decodeReportInput(w, r)
	if !ok {
		return
	}
	report, err := h.reports.Create(ctx, in)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to create report")
		return
	}
	w.Header().Set("Location", "/api/reports/"+report.ID)
	writeJSON(ctx, w, http.StatusCreated, report)
}

// Get handles GET /api/reports/{id}.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.reports.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get report")
		return
	}
	writeJSON(ctx, w, http.StatusOK, report)
}

// Update handles PUT /api/reports/{id}.
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, ok := decodeReportInput(w, r)
	if !ok {
		return
	}
	report, err := h.reports.Update(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to update report")
		return
	}
	writeJSON(ctx, w, http.StatusOK, report)
}

// Delete handles DELETE /api/reports/{id}.
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.reports.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete report")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeReportInput(w http.ResponseWriter, r *http.Request) (service.ReportInput, bool) {
	ctx := r.Context()
	var in service.ReportInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return service.ReportInput{}, false
	}
	return in, true
}

// parseListParams reads the report list query string.
// Range and whitelist checks are left to the service.
func parseListParams(q url.Values) (storage.ListParams, error) {
	params := storage.ListParams{
		Search:      strings.TrimSpace(q.Get("search")),
		SortColumn:  strings.TrimSpace(q.Get("sort")),
		TherapistID: strings.TrimSpace(q.Get("therapist_id")),
		PatientID:   strings.TrimSpace(q.Get("patient_id")),
	}

	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
	case "asc":
		params.Ascending = true
	default:
		return params, &service.ValidationError{Field: "order", Message: "must be one of [asc desc]"}
	}

	var err error
	if params.Page, err = queryInt(q, "page"); err != nil {
		return params, err
	}
	if params.PageSize, err = queryInt(q, "page_size"); err != nil {
		return params, err
	}
	if params.LanguageID, err = queryInt64(q, "language_id"); err != nil {
		return params, err
	}
	if params.ClinicID, err = queryInt64(q, "clinic_id"); err != nil {
		return params, err
	}
	if params.CountryID, err = queryInt64(q, "country_id"); err != nil {
		return params, err
	}

	for _, raw := range q["type_id"] {
		for part := range strings.SplitSeq(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return params, &service.ValidationError{Field: "type_id", Message: "must be a positive integer"}
			}
			params.TypeIDs = append(params.TypeIDs, id)
		}
	}

	if params.StartDate, err = queryDate(q, "from", false); err != nil {
		return params, err
	}
	if params.EndDate, err = queryDate(q, "to", true); err != nil {
		return params, err
	}
	return params, nil
}

func queryInt(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.ValidationError{Field: key, Message: "must be an integer"}
	}
	return v, nil
}

func queryInt64(q url.Values, key string) (int64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &service.ValidationError{Field: key, Message: "must be an integer"}
	}
	return v, nil
}

// queryDate accepts RFC 3339 or YYYY-MM-DD. A bare end date covers the whole day.
func queryDate(q url.Values, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, &service.ValidationError{Field: key, Message: fmt.Sprintf("must be RFC 3339 or %s", time.DateOnly)}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
