package repositories

import (
	"PulmoScan/cache"
	"PulmoScan/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

const doctorCacheExpiry = 24 * time.Hour

type DoctorRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	LicenseExists(ctx context.Context, licenseNumber string) (bool, error)
	Create(ctx context.Context, doctor *models.Doctor) error
	GetByEmail(ctx context.Context, email string) (*models.Doctor, error)
	GetByID(ctx context.Context, doctorID int64) (*models.Doctor, error)
	UpdatePassword(ctx context.Context, doctorID int64, hashedPassword string) error
}

type doctorRepository struct {
	db    *gorm.DB
	cache cache.Store
}

func NewDoctorRepository(db *gorm.DB, cache cache.Store) DoctorRepository {
	return &doctorRepository{db: db, cache: cache}
}

func (r *doctorRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Doctor{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

func (r *doctorRepository) LicenseExists(ctx context.Context, licenseNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Doctor{}).Where("license_number = ?", licenseNumber).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check license existence: %w", err)
	}
	return count > 0, nil
}

func (r *doctorRepository) Create(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Create(doctor).Error
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByID(ctx context.Context, doctorID int64) (*models.Doctor, error) {
	cacheKey := r.doctorCacheKey(doctorID)
	cached, err := r.cache.Get(ctx, cacheKey)
	if err != nil {
		log.Printf("Failed to get doctor from cache: %v", err)
	} else if cached != "" {
		var doctor models.Doctor
		if err := json.Unmarshal([]byte(cached), &doctor); err == nil {
			return &doctor, nil
		}
	}

	var doctor models.Doctor
	err = r.db.WithContext(ctx).First(&doctor, doctorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	doctorJSON, err := json.Marshal(doctor)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, cacheKey, doctorJSON, doctorCacheExpiry); err != nil {
		log.Printf("Failed to set doctor in cache: %v", err)
	}

	return &doctor, nil
}

func (r *doctorRepository) UpdatePassword(ctx context.Context, doctorID int64, hashedPassword string) error {
	if err := r.db.WithContext(ctx).Model(&models.Doctor{}).Where("id = ?", doctorID).Update("password", hashedPassword).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := r.cache.Delete(ctx, r.doctorCacheKey(doctorID)); err != nil {
		log.Printf("Failed to invalidate doctor cache: %v", err)
	}
	return nil
}

func (r *doctorRepository) doctorCacheKey(doctorID int64) string {
	return fmt.Sprintf("doctor_cache:%d", doctorID)
}
