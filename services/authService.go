package services

import (
	"PulmoScan/cache"
	"PulmoScan/models"
	"PulmoScan/repositories"
	"PulmoScan/utils"
	"context"
	"fmt"
	"log"
)

type AuthService interface {
	Register(ctx context.Context, input utils.RegistrationInput) (*models.Doctor, error)
	// Authenticate returns (nil, nil) for unknown email and for wrong
	// password alike; callers cannot enumerate accounts through it.
	Authenticate(ctx context.Context, email, password string) (*models.Doctor, error)
	GetDoctor(ctx context.Context, doctorID int64) (*models.Doctor, error)
	SendResetCode(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, email, code, newPassword string) error
}

type authService struct {
	doctors repositories.DoctorRepository
	store   cache.Store
	smtp    utils.SMTPConfig
}

func NewAuthService(doctors repositories.DoctorRepository, store cache.Store, smtp utils.SMTPConfig) AuthService {
	return &authService{doctors: doctors, store: store, smtp: smtp}
}

func (s *authService) Register(ctx context.Context, input utils.RegistrationInput) (*models.Doctor, error) {
	if err := utils.ValidateRegistration(input); err != nil {
		return nil, fmt.Errorf("invalid registration data: %w", err)
	}

	exists, err := s.doctors.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", models.ErrConflict)
	}

	exists, err = s.doctors.LicenseExists(ctx, input.LicenseNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check license number: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: license number already registered", models.ErrConflict)
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	doctor := &models.Doctor{
		Name:          input.Name,
		Email:         input.Email,
		Password:      hashedPassword,
		Specialty:     input.Specialty,
		LicenseNumber: input.LicenseNumber,
	}
	if err := s.doctors.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	return doctor, nil
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*models.Doctor, error) {
	doctor, err := s.doctors.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up doctor: %w", err)
	}
	if doctor == nil {
		return nil, nil
	}
	if !utils.CheckPassword(doctor.Password, password) {
		return nil, nil
	}
	return doctor, nil
}

func (s *authService) GetDoctor(ctx context.Context, doctorID int64) (*models.Doctor, error) {
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	if doctor == nil {
		return nil, models.ErrNotFound
	}
	return doctor, nil
}

func (s *authService) SendResetCode(ctx context.Context, email string) error {
	doctor, err := s.doctors.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up doctor: %w", err)
	}
	if doctor == nil {
		return models.ErrNotFound
	}

	code := utils.GenerateResetCode()
	if err := utils.SetResetCode(ctx, s.store, doctor.Email, code); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if !s.smtp.Configured() {
		log.Printf("SMTP not configured; reset code for %s not emailed", doctor.Email)
		return nil
	}
	if err := utils.SendResetCodeEmail(s.smtp, doctor.Email, code); err != nil {
		return fmt.Errorf("failed to email reset code: %w", err)
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, email, code, newPassword string) error {
	if err := utils.ValidatePasswordReset(code, newPassword); err != nil {
		return fmt.Errorf("invalid password reset data: %w", err)
	}

	stored, err := utils.GetResetCode(ctx, s.store, email)
	if err != nil {
		return fmt.Errorf("failed to read reset code: %w", err)
	}
	if stored == nil || *stored != code {
		return fmt.Errorf("%w: invalid reset code", models.ErrUnauthenticated)
	}

	doctor, err := s.doctors.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up doctor: %w", err)
	}
	if doctor == nil {
		return models.ErrNotFound
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.doctors.UpdatePassword(ctx, doctor.ID, hashedPassword); err != nil {
		return err
	}

	if err := utils.DeleteResetCode(ctx, s.store, email); err != nil {
		log.Printf("Failed to delete reset code: %v", err)
	}
	return nil
}
