package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// dateLayout is used for birthdates.
const dateLayout = "2006-01-02"

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS countries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			country TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS clinics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			clinic TEXT NOT NULL,
			country_id INTEGER,
			FOREIGN KEY (country_id) REFERENCES countries(id)
		);`,
		`CREATE TABLE IF NOT EXISTS languages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL UNIQUE,
			language TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS types (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS therapists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			age INTEGER,
			bio TEXT NOT NULL DEFAULT '',
			picture TEXT NOT NULL DEFAULT '',
			clinic_id INTEGER,
			FOREIGN KEY (clinic_id) REFERENCES clinics(id)
		);`,
		`CREATE TABLE IF NOT EXISTS patients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			birthdate TEXT,
			sex TEXT CHECK (sex IN ('Male', 'Female')),
			contact_number TEXT NOT NULL DEFAULT '',
			country_id INTEGER,
			FOREIGN KEY (country_id) REFERENCES countries(id)
		);`,
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			therapist_id TEXT NOT NULL,
			patient_id TEXT NOT NULL,
			type_id INTEGER NOT NULL,
			language_id INTEGER NOT NULL,
			index_hash TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (therapist_id) REFERENCES therapists(id),
			FOREIGN KEY (patient_id) REFERENCES patients(id),
			FOREIGN KEY (type_id) REFERENCES types(id),
			FOREIGN KEY (language_id) REFERENCES languages(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_therapist ON reports(therapist_id);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_patient ON reports(patient_id);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);`,
		`CREATE TABLE IF NOT EXISTS report_chunks (
			id TEXT PRIMARY KEY,
			report_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			heading_path TEXT,
			text TEXT NOT NULL,
			FOREIGN KEY (report_id) REFERENCES reports(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_report_chunks_report ON report_chunks(report_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
