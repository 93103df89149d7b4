package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sharerapy/internal/storage"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference data from a YAML file",
	Long: `Insert countries, clinics, languages, report types, therapists and
patients from a YAML seed file. Clinics, therapists and patients refer to
countries and clinics by name.

Example file:
  countries: [Philippines]
  clinics:
    - name: Makati Speech Center
      country: Philippines
  languages:
    - {code: en, name: English}
  types: [Assessment, Progress Note]
  therapists:
    - {first_name: Ana, last_name: Reyes, clinic: Makati Speech Center}
  patients:
    - {first_name: Ben, last_name: Cruz, birthdate: 2018-04-02, country: Philippines}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}
		seed, err := parseSeed(data)
		if err != nil {
			return err
		}
		res, err := applySeed(cmd.Context(), application.Directory, seed)
		if err != nil {
			return err
		}
		printSeedResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "seed.yaml", "seed file")
}

// SeedFile is the YAML layout read by the seed command.
type SeedFile struct {
	Countries  []string        `yaml:"countries"`
	Clinics    []SeedClinic    `yaml:"clinics"`
	Languages  []SeedLanguage  `yaml:"languages"`
	Types      []string        `yaml:"types"`
	Therapists []SeedTherapist `yaml:"therapists"`
	Patients   []SeedPatient   `yaml:"patients"`
}

type SeedClinic struct {
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
}

type SeedLanguage struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type SeedTherapist struct {
	ID        string `yaml:"id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Age       int    `yaml:"age"`
	Bio       string `yaml:"bio"`
	Picture   string `yaml:"picture"`
	Clinic    string `yaml:"clinic"`
}

type SeedPatient struct {
	ID            string `yaml:"id"`
	FirstName     string `yaml:"first_name"`
	LastName      string `yaml:"last_name"`
	Birthdate     string `yaml:"birthdate"`
	Sex           string `yaml:"sex"`
	ContactNumber string `yaml:"contact_number"`
	Country       string `yaml:"country"`
}

// parseSeed decodes data and checks that every reference resolves within the file.
func parseSeed(data []byte) (*SeedFile, error) {
	var s SeedFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	countries := make(map[string]bool, len(s.Countries))
	for _, c := range s.Countries {
		countries[c] = true
	}
	clinics := make(map[string]bool, len(s.Clinics))
	for i, c := range s.Clinics {
		if c.Name == "" {
			return nil, fmt.Errorf("clinics[%d]: name is required", i)
		}
		if c.Country != "" && !countries[c.Country] {
			return nil, fmt.Errorf("clinic %q: unknown country %q", c.Name, c.Country)
		}
		clinics[c.Name] = true
	}
	for i, l := range s.Languages {
		if l.Code == "" || l.Name == "" {
			return nil, fmt.Errorf("languages[%d]: code and name are required", i)
		}
	}
	for i, t := range s.Therapists {
		if t.FirstName == "" && t.LastName == "" {
			return nil, fmt.Errorf("therapists[%d]: a name is required", i)
		}
		if t.Clinic != "" && !clinics[t.Clinic] {
			return nil, fmt.Errorf("therapists[%d]: unknown clinic %q", i, t.Clinic)
		}
	}
	for i, p := range s.Patients {
		if p.FirstName == "" && p.LastName == "" {
			return nil, fmt.Errorf("patients[%d]: a name is required", i)
		}
		if p.Birthdate != "" {
			if _, err := time.Parse(time.DateOnly, p.Birthdate); err != nil {
				return nil, fmt.Errorf("patients[%d]: birthdate must be YYYY-MM-DD", i)
			}
		}
		if p.Country != "" && !countries[p.Country] {
			return nil, fmt.Errorf("patients[%d]: unknown country %q", i, p.Country)
		}
	}
	return &s, nil
}

type directory interface {
	CreateCountry(ctx context.Context, c *storage.Country) error
	CreateClinic(ctx context.Context, c *storage.Clinic) error
	CreateLanguage(ctx context.Context, l *storage.Language) error
	CreateType(ctx context.Context, t *storage.ReportType) error
	CreateTherapist(ctx context.Context, t *storage.Therapist) error
	CreatePatient(ctx context.Context, p *storage.Patient) error
}

type seedResult struct {
	Countries  int
	Clinics    int
	Languages  []storage.Language
	Types      []storage.ReportType
	Therapists []storage.Therapist
	Patients   []storage.Patient
}

// applySeed inserts s in dependency order. It stops at the first failure;
// rows inserted before it are kept.
func applySeed(ctx context.Context, dir directory, s *SeedFile) (*seedResult, error) {
	res := &seedResult{}

	countryIDs := make(map[string]int64, len(s.Countries))
	for _, name := range s.Countries {
		c := storage.Country{Name: name}
		if err := dir.CreateCountry(ctx, &c); err != nil {
			return res, fmt.Errorf("country %q: %w", name, err)
		}
		countryIDs[name] = c.ID
		res.Countries++
	}

	clinicIDs := make(map[string]int64, len(s.Clinics))
	for _, sc := range s.Clinics {
		c := storage.Clinic{Name: sc.Name, CountryID: countryIDs[sc.Country]}
		if err := dir.CreateClinic(ctx, &c); err != nil {
			return res, fmt.Errorf("clinic %q: %w", sc.Name, err)
		}
		clinicIDs[sc.Name] = c.ID
		res.Clinics++
	}

	for _, sl := range s.Languages {
		l := storage.Language{Code: sl.Code, Name: sl.Name}
		if err := dir.CreateLanguage(ctx, &l); err != nil {
			return res, fmt.Errorf("language %q: %w", sl.Code, err)
		}
		res.Languages = append(res.Languages, l)
	}

	for _, name := range s.Types {
		t := storage.ReportType{Name: name}
		if err := dir.CreateType(ctx, &t); err != nil {
			return res, fmt.Errorf("type %q: %w", name, err)
		}
		res.Types = append(res.Types, t)
	}

	for _, st := range s.Therapists {
		t := storage.Therapist{
			ID:        st.ID,
			Name:      fullName(st.FirstName, st.LastName),
			FirstName: st.FirstName,
			LastName:  st.LastName,
			Age:       st.Age,
			Bio:       st.Bio,
			Picture:   st.Picture,
			ClinicID:  clinicIDs[st.Clinic],
		}
		if err := dir.CreateTherapist(ctx, &t); err != nil {
			return res, fmt.Errorf("therapist %q: %w", t.Name, err)
		}
		res.Therapists = append(res.Therapists, t)
	}

	for _, sp := range s.Patients {
		p := storage.Patient{
			ID:            sp.ID,
			Name:          fullName(sp.FirstName, sp.LastName),
			FirstName:     sp.FirstName,
			LastName:      sp.LastName,
			Birthdate:     sp.Birthdate,
			Sex:           sp.Sex,
			ContactNumber: sp.ContactNumber,
			CountryID:     countryIDs[sp.Country],
		}
		if err := dir.CreatePatient(ctx, &p); err != nil {
			return res, fmt.Errorf("patient %q: %w", p.Name, err)
		}
		res.Patients = append(res.Patients, p)
	}

	return res, nil
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// printSeedResult lists the IDs report front matter refers to.
func printSeedResult(w io.Writer, r *seedResult) {
	fmt.Fprintf(w, "Seeded %d countries, %d clinics, %d languages, %d types, %d therapists, %d patients\n",
		r.Countries, r.Clinics, len(r.Languages), len(r.Types), len(r.Therapists), len(r.Patients))
	for _, l := range r.Languages {
		fmt.Fprintf(w, "  language_id %d: %s\n", l.ID, l.Name)
	}
	for _, t := range r.Types {
		fmt.Fprintf(w, "  type_id %d: %s\n", t.ID, t.Name)
	}
	for _, t := range r.Therapists {
		fmt.Fprintf(w, "  therapist_id %s: %s\n", t.ID, t.Name)
	}
	for _, p := range r.Patients {
		fmt.Fprintf(w, "  patient_id %s: %s\n", p.ID, p.Name)
	}
}
