package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// DirectoryRepo manages the reference records reports point at: countries,
// clinics, languages, report types, therapists and patients.
type DirectoryRepo struct {
	db *sql.DB
}

// NewDirectoryRepo creates a new DirectoryRepo.
func NewDirectoryRepo(db *sql.DB) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

// CreateCountry inserts a country and sets its ID.
func (r *DirectoryRepo) CreateCountry(ctx context.Context, c *Country) error {
	id, err := r.insert(ctx, "INSERT INTO countries (country) VALUES (?)", c.Name)
	if err != nil {
		return fmt.Errorf("failed to insert country: %w", err)
	}
	c.ID = id
	return nil
}

// CreateClinic inserts a clinic and sets its ID.
func (r *DirectoryRepo) CreateClinic(ctx context.Context, c *Clinic) error {
	id, err := r.insert(ctx, "INSERT INTO clinics (clinic, country_id) VALUES (?, ?)", c.Name, nullInt(c.CountryID))
	if err != nil {
		return fmt.Errorf("failed to insert clinic: %w", err)
	}
	c.ID = id
	return nil
}

// CreateLanguage inserts a language and sets its ID.
func (r *DirectoryRepo) CreateLanguage(ctx context.Context, l *Language) error {
	id, err := r.insert(ctx, "INSERT INTO languages (code, language) VALUES (?, ?)", l.Code, l.Name)
	if err != nil {
		return fmt.Errorf("failed to insert language: %w", err)
	}
	l.ID = id
	return nil
}

// CreateType inserts a report type and sets its ID.
func (r *DirectoryRepo) CreateType(ctx context.Context, t *ReportType) error {
	id, err := r.insert(ctx, "INSERT INTO types (type) VALUES (?)", t.Name)
	if err != nil {
		return fmt.Errorf("failed to insert type: %w", err)
	}
	t.ID = id
	return nil
}

// CreateTherapist inserts a therapist, assigning a UUID when ID is empty.
func (r *DirectoryRepo) CreateTherapist(ctx context.Context, t *Therapist) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO therapists (id, name, first_name, last_name, age, bio, picture, clinic_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.FirstName, t.LastName, nullInt(int64(t.Age)), t.Bio, t.Picture, nullInt(t.ClinicID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert therapist: %w", classify(err))
	}
	return nil
}

// CreatePatient inserts a patient, assigning a UUID when ID is empty.
func (r *DirectoryRepo) CreatePatient(ctx context.Context, p *Patient) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO patients (id, name, first_name, last_name, birthdate, sex, contact_number, country_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.FirstName, p.LastName, nullString(p.Birthdate), nullString(p.Sex), p.ContactNumber, nullInt(p.CountryID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert patient: %w", classify(err))
	}
	return nil
}

func (r *DirectoryRepo) insert(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(err)
	}
	return res.LastInsertId()
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
