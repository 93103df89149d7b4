package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/indexer"
	"sharerapy/internal/service"
	"sharerapy/internal/service/mocks"
	"sharerapy/internal/storage"
	storage_mocks "sharerapy/internal/storage/mocks"
)

const (
	therapistID = "7f8e6a3c-2d4b-4c1e-9f0a-1b2c3d4e5f60"
	patientID   = "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
	reportID    = "5d1f6a70-3a2b-4c9e-8d7f-6e5d4c3b2a10"
)

// testContext returns a context whose logger discards output.
func testContext() context.Context {
	return contextutil.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validInput() service.ReportInput {
	return service.ReportInput{
		Title:       "  Initial Assessment ",
		Description: "First visit",
		Content:     "## Background\n\nLeo was referred for handwriting support.",
		TherapistID: therapistID,
		PatientID:   patientID,
		TypeID:      1,
		LanguageID:  2,
	}
}

func newService(t *testing.T) (service.ReportService, *storage_mocks.MockReportStore, *mocks.MockIndexer) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := storage_mocks.NewMockReportStore(ctrl)
	idx := mocks.NewMockIndexer(ctrl)
	return service.NewReportService(store, idx), store, idx
}

func TestReportService_Create(t *testing.T) {
	svc, store, idx := newService(t)
	ctx := testContext()

	stored := &storage.Report{ID: reportID, Title: "Initial Assessment"}

	gomock.InOrder(
		store.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r *storage.Report) error {
				if r.Title != "Initial Assessment" {
					t.Errorf("Create() title = %q, want trimmed title", r.Title)
				}
				if r.TypeID != 1 || r.LanguageID != 2 {
					t.Errorf("Create() ids = %d/%d", r.TypeID, r.LanguageID)
				}
				r.ID = reportID
				return nil
			}),
		idx.EXPECT().IndexReport(gomock.Any(), reportID, false).Return(indexer.OutcomeIndexed, nil),
		store.EXPECT().GetByID(gomock.Any(), reportID).Return(stored, nil),
	)

	got, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got != stored {
		t.Errorf("Create() = %+v, want hydrated report", got)
	}
}

func TestReportService_Create_IndexFailureIsNotFatal(t *testing.T) {
	svc, store, idx := newService(t)

	store.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *storage.Report) error {
			r.ID = reportID
			return nil
		})
	idx.EXPECT().IndexReport(gomock.Any(), reportID, false).Return(indexer.OutcomeFailed, errors.New("embedding service down"))
	store.EXPECT().GetByID(gomock.Any(), reportID).Return(&storage.Report{ID: reportID}, nil)

	if _, err := svc.Create(testContext(), validInput()); err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}
}

func TestReportService_Create_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   func() service.ReportInput
		setup   func(store *storage_mocks.MockReportStore)
		wantErr error
	}{
		{
			name: "validation",
			input: func() service.ReportInput {
				in := validInput()
				in.Title = "   "
				return in
			},
			setup:   func(store *storage_mocks.MockReportStore) {},
			wantErr: service.ErrInvalidInput,
		},
		{
			name:  "unknown therapist",
			input: validInput,
			setup: func(store *storage_mocks.MockReportStore) {
				store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(storage.ErrInvalidReference)
			},
			wantErr: service.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newService(t)
			tt.setup(store)

			_, err := svc.Create(testContext(), tt.input())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReportService_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, store, idx := newService(t)
		in := validInput()
		in.ID = "ignored"

		gomock.InOrder(
			store.EXPECT().Update(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, r *storage.Report) error {
					if r.ID != reportID {
						t.Errorf("Update() id = %q, want %q", r.ID, reportID)
					}
					return nil
				}),
			idx.EXPECT().IndexReport(gomock.Any(), reportID, false).Return(indexer.OutcomeIndexed, nil),
			store.EXPECT().GetByID(gomock.Any(), reportID).Return(&storage.Report{ID: reportID}, nil),
		)

		if _, err := svc.Update(testContext(), reportID, in); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc, store, _ := newService(t)
		store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(storage.ErrNotFound)

		_, err := svc.Update(testContext(), reportID, validInput())
		if !errors.Is(err, service.ErrNotFound) {
			t.Errorf("Update() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Update(testContext(), " ", validInput())
		if !errors.Is(err, service.ErrInvalidInput) {
			t.Errorf("Update() error = %v, want ErrInvalidInput", err)
		}
	})
}

func TestReportService_Delete(t *testing.T) {
	t.Run("removes index before report", func(t *testing.T) {
		svc, store, idx := newService(t)
		gomock.InOrder(
			store.EXPECT().GetByID(gomock.Any(), reportID).Return(&storage.Report{ID: reportID}, nil),
			idx.EXPECT().RemoveReport(gomock.Any(), reportID).Return(nil),
			store.EXPECT().Delete(gomock.Any(), reportID).Return(nil),
		)
		if err := svc.Delete(testContext(), reportID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
	})

	t.Run("index failure keeps report", func(t *testing.T) {
		svc, store, idx := newService(t)
		store.EXPECT().GetByID(gomock.Any(), reportID).Return(&storage.Report{ID: reportID}, nil)
		idx.EXPECT().RemoveReport(gomock.Any(), reportID).Return(errors.New("qdrant down"))

		err := svc.Delete(testContext(), reportID)
		if !errors.Is(err, service.ErrExternalService) {
			t.Errorf("Delete() error = %v, want ErrExternalService", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc, store, _ := newService(t)
		store.EXPECT().GetByID(gomock.Any(), reportID).Return(nil, storage.ErrNotFound)

		err := svc.Delete(testContext(), reportID)
		if !errors.Is(err, service.ErrNotFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})
}

func TestReportService_Get(t *testing.T) {
	svc, store, _ := newService(t)
	store.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	if _, err := svc.Get(testContext(), "missing"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(testContext(), ""); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("Get(\"\") error = %v, want ErrInvalidInput", err)
	}
}

func TestReportService_List(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		params  storage.ListParams
		wantErr bool
	}{
		{name: "defaults", params: storage.ListParams{}},
		{name: "sorted page", params: storage.ListParams{SortColumn: "created_at", Page: 2, PageSize: 25}},
		{name: "unknown sort", params: storage.ListParams{SortColumn: "patient"}, wantErr: true},
		{name: "page size too large", params: storage.ListParams{PageSize: 500}, wantErr: true},
		{name: "inverted dates", params: storage.ListParams{StartDate: &from, EndDate: &to}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newService(t)
			if !tt.wantErr {
				store.EXPECT().List(gomock.Any(), tt.params).Return(&storage.ReportPage{Reports: []storage.Report{}}, nil)
			}

			page, err := svc.List(testContext(), tt.params)
			if tt.wantErr {
				if !errors.Is(err, service.ErrInvalidInput) {
					t.Errorf("List() error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if page == nil {
				t.Fatal("List() returned nil page")
			}
		})
	}
}
