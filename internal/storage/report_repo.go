package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_report_store.go -package=mocks sharerapy/internal/storage ReportStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidReference is returned when a foreign key points at a missing row.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// Default and maximum page sizes for List.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ReportStore defines the interface for report storage operations.
type ReportStore interface {
	// Create inserts a report. ID, CreatedAt and UpdatedAt are assigned when empty.
	Create(ctx context.Context, report *Report) error
	// Update overwrites the editable fields of an existing report.
	Update(ctx context.Context, report *Report) error
	// Delete removes a report and, by cascade, its chunk rows.
	Delete(ctx context.Context, id string) error
	// GetByID returns the report with its related records. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*Report, error)
	// List returns one page of reports matching params and the total match count.
	List(ctx context.Context, params ListParams) (*ReportPage, error)
	// ListIDs returns all report IDs ordered by creation time.
	ListIDs(ctx context.Context) ([]string, error)
	// SetIndexHash records the content hash of the last successful indexing.
	SetIndexHash(ctx context.Context, id, hash string) error
}

// ListParams filters, sorts and paginates List.
type ListParams struct {
	Search      string
	SortColumn  string // title, created_at or updated_at
	Ascending   bool
	TypeIDs     []int64
	LanguageID  int64
	TherapistID string
	PatientID   string
	ClinicID    int64
	CountryID   int64 // clinic country
	StartDate   *time.Time
	EndDate     *time.Time
	Page        int // 1-based
	PageSize    int
}

// ReportPage is one page of List results.
type ReportPage struct {
	Reports  []Report `json:"reports"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

var sortColumns = map[string]string{
	"title":      "r.title",
	"created_at": "r.created_at",
	"updated_at": "r.updated_at",
}

// ReportRepo provides methods for report operations.
// It implements the ReportStore interface.
type ReportRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewReportRepo creates a new ReportRepo.
func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db, now: time.Now}
}

// Create inserts a report. ID, CreatedAt and UpdatedAt are assigned when empty.
func (r *ReportRepo) Create(ctx context.Context, report *Report) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	now := r.now().UTC().Truncate(time.Microsecond)
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, title, description, content, therapist_id, patient_id, type_id, language_id, index_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?)`,
		report.ID, report.Title, report.Description, report.Content,
		report.TherapistID, report.PatientID, report.TypeID, report.LanguageID,
		formatTime(report.CreatedAt), formatTime(report.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", classify(err))
	}
	return nil
}

// Update overwrites the editable fields of an existing report and clears its
// index hash so the next indexing run picks it up.
func (r *ReportRepo) Update(ctx context.Context, report *Report) error {
	report.UpdatedAt = r.now().UTC().Truncate(time.Microsecond)

	res, err := r.db.ExecContext(ctx,
		`UPDATE reports SET title = ?, description = ?, content = ?, therapist_id = ?, patient_id = ?,
		 type_id = ?, language_id = ?, index_hash = '', updated_at = ? WHERE id = ?`,
		report.Title, report.Description, report.Content, report.TherapistID, report.PatientID,
		report.TypeID, report.LanguageID, formatTime(report.UpdatedAt), report.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", classify(err))
	}
	return expectAffected(res)
}

// Delete removes a report and, by cascade, its chunk rows.
func (r *ReportRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return expectAffected(res)
}

const reportSelect = `SELECT
	r.id, r.title, r.description, r.content, r.therapist_id, r.patient_id, r.type_id, r.language_id,
	r.index_hash, r.created_at, r.updated_at,
	t.name, t.first_name, t.last_name, t.age, t.bio, t.picture, t.clinic_id,
	c.clinic, c.country_id, cc.country,
	ty.type, l.code, l.language,
	p.name, p.first_name, p.last_name, p.birthdate, p.sex, p.contact_number, p.country_id, pc.country
FROM reports r
LEFT JOIN therapists t ON t.id = r.therapist_id
LEFT JOIN clinics c ON c.id = t.clinic_id
LEFT JOIN countries cc ON cc.id = c.country_id
LEFT JOIN types ty ON ty.id = r.type_id
LEFT JOIN languages l ON l.id = r.language_id
LEFT JOIN patients p ON p.id = r.patient_id
LEFT JOIN countries pc ON pc.id = p.country_id`

// GetByID returns the report with its related records. Returns ErrNotFound if not found.
func (r *ReportRepo) GetByID(ctx context.Context, id string) (*Report, error) {
	row := r.db.QueryRowContext(ctx, reportSelect+" WHERE r.id = ?", id)
	report, err := r.scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return report, nil
}

// List returns one page of reports matching params and the total match count.
func (r *ReportRepo) List(ctx context.Context, params ListParams) (*ReportPage, error) {
	where, args := buildFilters(params)

	var total int
	countQuery := `SELECT COUNT(*) FROM reports r
		LEFT JOIN therapists t ON t.id = r.therapist_id
		LEFT JOIN clinics c ON c.id = t.clinic_id` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	page, pageSize := normalizePage(params.Page, params.PageSize)
	column, ok := sortColumns[params.SortColumn]
	if !ok {
		column = "r.title"
	}
	direction := "DESC"
	if params.Ascending {
		direction = "ASC"
	}

	query := fmt.Sprintf("%s%s ORDER BY %s %s, r.id LIMIT ? OFFSET ?", reportSelect, where, column, direction)
	rows, err := r.db.QueryContext(ctx, query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	reports := make([]Report, 0, pageSize)
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &ReportPage{Reports: reports, Total: total, Page: page, PageSize: pageSize}, nil
}

// ListIDs returns all report IDs ordered by creation time.
func (r *ReportRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM reports ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query report IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan report ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// SetIndexHash records the content hash of the last successful indexing.
func (r *ReportRepo) SetIndexHash(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE reports SET index_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return fmt.Errorf("failed to set index hash: %w", err)
	}
	return expectAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ReportRepo) scanReport(row rowScanner) (*Report, error) {
	var (
		rep                                          Report
		createdAt, updatedAt                         string
		tName, tFirst, tLast, tBio, tPicture         sql.NullString
		tAge, tClinicID                              sql.NullInt64
		cName, ccName                                sql.NullString
		cCountryID                                   sql.NullInt64
		typeName, langCode, langName                 sql.NullString
		pName, pFirst, pLast, pBirth, pSex, pContact sql.NullString
		pCountryID                                   sql.NullInt64
		pcName                                       sql.NullString
	)

	err := row.Scan(
		&rep.ID, &rep.Title, &rep.Description, &rep.Content, &rep.TherapistID, &rep.PatientID, &rep.TypeID, &rep.LanguageID,
		&rep.IndexHash, &createdAt, &updatedAt,
		&tName, &tFirst, &tLast, &tAge, &tBio, &tPicture, &tClinicID,
		&cName, &cCountryID, &ccName,
		&typeName, &langCode, &langName,
		&pName, &pFirst, &pLast, &pBirth, &pSex, &pContact, &pCountryID, &pcName,
	)
	if err != nil {
		return nil, err
	}

	if rep.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if rep.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if tName.Valid {
		rep.Therapist = &Therapist{
			ID:        rep.TherapistID,
			Name:      tName.String,
			FirstName: tFirst.String,
			LastName:  tLast.String,
			Age:       int(tAge.Int64),
			Bio:       tBio.String,
			Picture:   tPicture.String,
			ClinicID:  tClinicID.Int64,
		}
		if cName.Valid {
			rep.Therapist.Clinic = &Clinic{ID: tClinicID.Int64, Name: cName.String, CountryID: cCountryID.Int64}
			if ccName.Valid {
				rep.Therapist.Clinic.Country = &Country{ID: cCountryID.Int64, Name: ccName.String}
			}
		}
	}
	if typeName.Valid {
		rep.Type = &ReportType{ID: rep.TypeID, Name: typeName.String}
	}
	if langName.Valid {
		rep.Language = &Language{ID: rep.LanguageID, Code: langCode.String, Name: langName.String}
	}
	if pName.Valid {
		rep.Patient = &Patient{
			ID:            rep.PatientID,
			Name:          pName.String,
			FirstName:     pFirst.String,
			LastName:      pLast.String,
			Birthdate:     pBirth.String,
			Sex:           pSex.String,
			ContactNumber: pContact.String,
			CountryID:     pCountryID.Int64,
		}
		if pcName.Valid {
			rep.Patient.Country = &Country{ID: pCountryID.Int64, Name: pcName.String}
		}
		if pBirth.Valid && pBirth.String != "" {
			if birth, err := time.Parse(dateLayout, pBirth.String); err == nil {
				rep.Patient.Age = PatientAge(birth, r.now())
			}
		}
	}

	return &rep, nil
}

// PatientAge formats the whole years and months between birth and now as
// "N years M months". Days are ignored.
func PatientAge(birth, now time.Time) string {
	years := now.Year() - birth.Year()
	months := int(now.Month()) - int(birth.Month())
	if months < 0 {
		years--
		months += 12
	}
	if years < 0 {
		return ""
	}
	return fmt.Sprintf("%d years %d months", years, months)
}

func buildFilters(p ListParams) (string, []any) {
	var clauses []string
	var args []any

	if s := strings.TrimSpace(p.Search); s != "" {
		clauses = append(clauses, "(r.title LIKE ? OR r.description LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	if len(p.TypeIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(p.TypeIDs)), ",")
		clauses = append(clauses, "r.type_id IN ("+placeholders+")")
		for _, id := range p.TypeIDs {
			args = append(args, id)
		}
	}
	if p.LanguageID > 0 {
		clauses = append(clauses, "r.language_id = ?")
		args = append(args, p.LanguageID)
	}
	if p.TherapistID != "" {
		clauses = append(clauses, "r.therapist_id = ?")
		args = append(args, p.TherapistID)
	}
	if p.PatientID != "" {
		clauses = append(clauses, "r.patient_id = ?")
		args = append(args, p.PatientID)
	}
	if p.ClinicID > 0 {
		clauses = append(clauses, "t.clinic_id = ?")
		args = append(args, p.ClinicID)
	}
	if p.CountryID > 0 {
		clauses = append(clauses, "c.country_id = ?")
		args = append(args, p.CountryID)
	}
	if p.StartDate != nil {
		clauses = append(clauses, "r.created_at >= ?")
		args = append(args, formatTime(*p.StartDate))
	}
	if p.EndDate != nil {
		clauses = append(clauses, "r.created_at <= ?")
		args = append(args, formatTime(*p.EndDate))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// classify maps foreign key violations to ErrInvalidReference.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return err
}
