package repositories

import (
	"PulmoScan/models"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PatientRepository interface {
	// GetByName looks a patient up by name, the soft natural key used at
	// analysis time. Returns nil when no patient has that name.
	GetByName(ctx context.Context, name string) (*models.Patient, error)
	GetByID(ctx context.Context, patientID int64) (*models.Patient, error)
	Create(ctx context.Context, patient *models.Patient) error
}

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) GetByName(ctx context.Context, name string) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) GetByID(ctx context.Context, patientID int64) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).First(&patient, patientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) Create(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Create(patient).Error
}
