package storage

import "time"

// Country is a row of the countries table.
type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"country"`
}

// Clinic is a row of the clinics table with its country attached.
type Clinic struct {
	ID        int64    `json:"id"`
	Name      string   `json:"clinic"`
	CountryID int64    `json:"country_id,omitempty"`
	Country   *Country `json:"country,omitempty"`
}

// Language is a report language.
type Language struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"language"`
}

// ReportType is a report category (assessment, progress note, discharge...).
type ReportType struct {
	ID   int64  `json:"id"`
	Name string `json:"type"`
}

// Therapist is the author of a report.
type Therapist struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Age       int     `json:"age,omitempty"`
	Bio       string  `json:"bio,omitempty"`
	Picture   string  `json:"picture,omitempty"`
	ClinicID  int64   `json:"clinic_id,omitempty"`
	Clinic    *Clinic `json:"clinic,omitempty"`
}

// Patient is the subject of a report. Birthdate is YYYY-MM-DD.
type Patient struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Birthdate     string   `json:"birthdate,omitempty"`
	Sex           string   `json:"sex,omitempty"`
	ContactNumber string   `json:"contact_number,omitempty"`
	CountryID     int64    `json:"country_id,omitempty"`
	Country       *Country `json:"country,omitempty"`
	// Age is derived from Birthdate when the patient is loaded with a report.
	Age string `json:"age,omitempty"`
}

// Report is a therapy report. Content is markdown.
// Therapist, Patient, Type and Language are populated by GetByID and List.
type Report struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	TherapistID string    `json:"therapist_id"`
	PatientID   string    `json:"patient_id"`
	TypeID      int64     `json:"type_id"`
	LanguageID  int64     `json:"language_id"`
	IndexHash   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Therapist *Therapist  `json:"therapist,omitempty"`
	Patient   *Patient    `json:"patient,omitempty"`
	Type      *ReportType `json:"type,omitempty"`
	Language  *Language   `json:"language,omitempty"`
}

// ChunkRecord is an indexed chunk of report text.
// ID is shared with the Qdrant point ID.
type ChunkRecord struct {
	ID          string
	ReportID    string
	ChunkIndex  int
	HeadingPath string // "# Report Title > ## Heading"
	Text        string
}
