package repositories

import (
	"PulmoScan/models"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type DiseaseCount struct {
	Disease string
	Count   int64
}

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	// UpdateReportPath is the second phase of analysis persistence; the row
	// exists and is retrievable before this write lands.
	UpdateReportPath(ctx context.Context, analysisID int64, reportPath string) error
	GetByID(ctx context.Context, analysisID int64) (*models.Analysis, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]models.Analysis, error)
	CountByDoctor(ctx context.Context, doctorID int64) (int64, error)
	DiseaseCountsByDoctor(ctx context.Context, doctorID int64) ([]DiseaseCount, error)
	RecentByDoctor(ctx context.Context, doctorID int64, limit int) ([]models.Analysis, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *analysisRepository) UpdateReportPath(ctx context.Context, analysisID int64, reportPath string) error {
	return r.db.WithContext(ctx).Model(&models.Analysis{}).Where("id = ?", analysisID).Update("report_path", reportPath).Error
}

func (r *analysisRepository) GetByID(ctx context.Context, analysisID int64) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.WithContext(ctx).First(&analysis, analysisID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("created_at DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return analyses, nil
}

func (r *analysisRepository) CountByDoctor(ctx context.Context, doctorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Analysis{}).Where("doctor_id = ?", doctorID).Count(&count).Error
	return count, err
}

func (r *analysisRepository) DiseaseCountsByDoctor(ctx context.Context, doctorID int64) ([]DiseaseCount, error) {
	var counts []DiseaseCount
	err := r.db.WithContext(ctx).Model(&models.Analysis{}).
		Select("disease, COUNT(*) AS count").
		Where("doctor_id = ?", doctorID).
		Group("disease").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate disease counts: %w", err)
	}
	return counts, nil
}

func (r *analysisRepository) RecentByDoctor(ctx context.Context, doctorID int64, limit int) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent analyses: %w", err)
	}
	return analyses, nil
}
