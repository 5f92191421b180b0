package utils

import (
	"errors"
	"log"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validation errors
var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrInvalidResetCode = errors.New("invalid reset code")
)

// RegistrationInput carries the fields submitted at doctor registration.
type RegistrationInput struct {
	Name          string
	Email         string
	Password      string
	Specialty     string
	LicenseNumber string
}

// ValidateRegistration validates registration data using ozzo-validation.
func ValidateRegistration(in RegistrationInput) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(2, 255)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required.Error("password cannot be blank"), validation.By(validatePassword)),
		validation.Field(&in.LicenseNumber, validation.Required, validation.Length(3, 100)),
	)
	if err != nil {
		log.Printf("Validation error: %v\n", err)
	}
	return err
}

// ValidateLogin validates login credentials shape before any lookup.
func ValidateLogin(email, password string) error {
	return validation.Errors{
		"email":    validation.Validate(email, validation.Required, is.Email),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
}

// ValidatePasswordReset validates the reset code and new password.
func ValidatePasswordReset(resetCode, newPassword string) error {
	err := validation.Errors{
		"resetCode": validation.Validate(resetCode, validation.Required.Error("invalid reset code")),
		"password":  validation.Validate(newPassword, validation.Required, validation.By(validatePassword)),
	}.Filter()
	if err != nil {
		log.Printf("Validation error: %v\n", err)
	}
	return err
}

// AnalysisInput carries the multipart form fields of an analysis request.
type AnalysisInput struct {
	PatientName   string
	PatientAge    int
	PatientGender string
	Symptoms      string
}

// ValidateAnalysisInput validates the required analysis form fields.
func ValidateAnalysisInput(in AnalysisInput) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.PatientName, validation.Required, validation.Length(1, 255)),
		// No Required on the age: zero is a valid age for a newborn.
		validation.Field(&in.PatientAge, validation.Min(0), validation.Max(130)),
		validation.Field(&in.PatientGender, validation.Required),
		validation.Field(&in.Symptoms, validation.Required),
	)
	if err != nil {
		log.Printf("Validation error: %v\n", err)
	}
	return err
}

// validatePassword checks the password for minimum length.
func validatePassword(value interface{}) error {
	password, _ := value.(string)
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}
