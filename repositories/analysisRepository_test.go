package repositories

import (
	"PulmoScan/cache"
	"PulmoScan/models"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.Doctor{}, &models.Patient{}, &models.Analysis{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedAnalysis(t *testing.T, repo AnalysisRepository, doctorID int64, disease string, createdAt time.Time) *models.Analysis {
	t.Helper()
	a := &models.Analysis{
		PatientID:  1,
		DoctorID:   doctorID,
		Disease:    disease,
		Severity:   models.SeverityMild,
		Confidence: 80,
	}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Backdate for ordering assertions; autoCreateTime stamps on insert.
	if err := repo.(*analysisRepository).db.Model(a).Update("created_at", createdAt).Error; err != nil {
		t.Fatal(err)
	}
	return a
}

func TestAnalysisRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository(newTestDB(t))

	a := &models.Analysis{PatientID: 1, DoctorID: 1, Disease: "COVID-19", Severity: models.SeveritySevere, Confidence: 91}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == 0 {
		t.Fatal("ID not assigned")
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Disease != "COVID-19" || got.Severity != models.SeveritySevere {
		t.Errorf("got %+v", got)
	}

	missing, err := repo.GetByID(ctx, 999)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Error("expected nil for unknown ID")
	}
}

func TestAnalysisRepositoryUpdateReportPath(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository(newTestDB(t))

	a := &models.Analysis{PatientID: 1, DoctorID: 1, Disease: "Tuberculosis"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatal(err)
	}

	got, _ := repo.GetByID(ctx, a.ID)
	if got.ReportAvailable() {
		t.Fatal("report available before update")
	}

	if err := repo.UpdateReportPath(ctx, a.ID, "/reports/r.pdf"); err != nil {
		t.Fatalf("UpdateReportPath: %v", err)
	}
	got, _ = repo.GetByID(ctx, a.ID)
	if got.ReportPath != "/reports/r.pdf" {
		t.Errorf("report path = %q", got.ReportPath)
	}
}

func TestAnalysisRepositoryListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository(newTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	oldest := seedAnalysis(t, repo, 1, "COVID-19", base)
	newest := seedAnalysis(t, repo, 1, "Tuberculosis", base.Add(2*time.Hour))
	middle := seedAnalysis(t, repo, 1, "Viral Pneumonia", base.Add(time.Hour))
	seedAnalysis(t, repo, 2, "Normal", base.Add(3*time.Hour))

	list, err := repo.ListByDoctor(ctx, 1)
	if err != nil {
		t.Fatalf("ListByDoctor: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].ID != newest.ID || list[1].ID != middle.ID || list[2].ID != oldest.ID {
		t.Errorf("order = %d, %d, %d", list[0].ID, list[1].ID, list[2].ID)
	}

	recent, err := repo.RecentByDoctor(ctx, 1, 2)
	if err != nil {
		t.Fatalf("RecentByDoctor: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != newest.ID {
		t.Errorf("recent = %+v", recent)
	}
}

func TestAnalysisRepositoryAggregates(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository(newTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedAnalysis(t, repo, 1, "COVID-19", base)
	seedAnalysis(t, repo, 1, "COVID-19", base.Add(time.Minute))
	seedAnalysis(t, repo, 1, "Tuberculosis", base.Add(2*time.Minute))
	seedAnalysis(t, repo, 2, "Normal", base.Add(3*time.Minute))

	count, err := repo.CountByDoctor(ctx, 1)
	if err != nil {
		t.Fatalf("CountByDoctor: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	counts, err := repo.DiseaseCountsByDoctor(ctx, 1)
	if err != nil {
		t.Fatalf("DiseaseCountsByDoctor: %v", err)
	}
	byDisease := make(map[string]int64)
	for _, c := range counts {
		byDisease[c.Disease] = c.Count
	}
	if byDisease["COVID-19"] != 2 || byDisease["Tuberculosis"] != 1 {
		t.Errorf("counts = %v", byDisease)
	}
	if _, ok := byDisease["Normal"]; ok {
		t.Error("foreign doctor's disease included")
	}
}

func TestPatientRepositoryNaturalKey(t *testing.T) {
	ctx := context.Background()
	repo := NewPatientRepository(newTestDB(t))

	missing, err := repo.GetByName(ctx, "John Doe")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatal("expected nil for unknown name")
	}

	p := &models.Patient{Name: "John Doe", Age: 45, Gender: "Male"}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByName(ctx, "John Doe")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got == nil || got.ID != p.ID {
		t.Fatalf("got %+v", got)
	}

	byID, err := repo.GetByID(ctx, p.ID)
	if err != nil || byID == nil || byID.Name != "John Doe" {
		t.Fatalf("GetByID = %+v, %v", byID, err)
	}
}

func TestDoctorRepositoryCaching(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := cache.NewMemory()
	repo := NewDoctorRepository(db, store)

	doctor := &models.Doctor{Name: "Dr. Gray", Email: "gray@example.com", Password: "hash", LicenseNumber: "MD-1"}
	if err := repo.Create(ctx, doctor); err != nil {
		t.Fatalf("Create: %v", err)
	}

	exists, err := repo.EmailExists(ctx, "gray@example.com")
	if err != nil || !exists {
		t.Errorf("EmailExists = %v, %v", exists, err)
	}
	exists, err = repo.LicenseExists(ctx, "MD-1")
	if err != nil || !exists {
		t.Errorf("LicenseExists = %v, %v", exists, err)
	}

	// First read populates the cache; a row deleted behind the repository's
	// back is still served from it.
	got, err := repo.GetByID(ctx, doctor.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID = %v, %v", got, err)
	}
	if err := db.Delete(&models.Doctor{}, doctor.ID).Error; err != nil {
		t.Fatal(err)
	}
	cached, err := repo.GetByID(ctx, doctor.ID)
	if err != nil || cached == nil {
		t.Fatalf("cached GetByID = %v, %v", cached, err)
	}

	// UpdatePassword invalidates, so the deletion becomes visible.
	if err := repo.UpdatePassword(ctx, doctor.ID, "newhash"); err != nil {
		t.Fatal(err)
	}
	gone, err := repo.GetByID(ctx, doctor.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Error("expected nil after cache invalidation")
	}
}
