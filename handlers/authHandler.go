package handlers

import (
	"PulmoScan/middlewares"
	"PulmoScan/models"
	"PulmoScan/services"
	"PulmoScan/utils"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	AuthService services.AuthService
	Tokens      *utils.TokenMaker
	Limiter     *utils.LoginLimiter
}

func NewAuthHandler(authService services.AuthService, tokens *utils.TokenMaker, limiter *utils.LoginLimiter) *AuthHandler {
	return &AuthHandler{
		AuthService: authService,
		Tokens:      tokens,
		Limiter:     limiter,
	}
}

// tokenResponse is the payload returned by register and login.
func (h *AuthHandler) tokenResponse(c *gin.Context, doctor *models.Doctor) {
	token, expiry, err := h.Tokens.Issue(doctor.ID, doctor.Name, doctor.Email)
	if err != nil {
		middlewares.HttpError(c, "Failed to generate token", http.StatusInternalServerError, err)
		return
	}

	middlewares.RespondJSON(c, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"doctor_id":    doctor.ID,
		"doctor_name":  doctor.Name,
		"expires_at":   expiry,
	}, http.StatusOK)
}

// Register handles new doctor registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var body struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Password      string `json:"password"`
		Specialty     string `json:"specialty"`
		LicenseNumber string `json:"license_number"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	doctor, err := h.AuthService.Register(c.Request.Context(), utils.RegistrationInput{
		Name:          body.Name,
		Email:         body.Email,
		Password:      body.Password,
		Specialty:     body.Specialty,
		LicenseNumber: body.LicenseNumber,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			middlewares.RespondError(c, err)
			return
		}
		middlewares.HttpError(c, "Validation failed", http.StatusBadRequest, err)
		return
	}

	h.tokenResponse(c, doctor)
}

// Login authenticates a doctor and returns an access token. The limiter is
// consulted before credentials are verified; a limited identity gets a
// rate-limit response, not an authentication one.
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&credentials); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	if err := utils.ValidateLogin(credentials.Email, credentials.Password); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	if h.Limiter.IsLimited(credentials.Email) {
		middlewares.RespondError(c, models.ErrRateLimited)
		return
	}

	doctor, err := h.AuthService.Authenticate(c.Request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		middlewares.HttpError(c, "Internal server error", http.StatusInternalServerError, err)
		return
	}
	if doctor == nil {
		h.Limiter.RecordFailure(credentials.Email)
		middlewares.HttpError(c, "Invalid email or password", http.StatusUnauthorized, models.ErrUnauthenticated)
		return
	}

	h.Limiter.Clear(credentials.Email)
	h.tokenResponse(c, doctor)
}

// Me returns the authenticated doctor's own profile.
func (h *AuthHandler) Me(c *gin.Context) {
	doctorID, err := middlewares.ExtractDoctorIDFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Authentication required", http.StatusUnauthorized, err)
		return
	}

	doctor, err := h.AuthService.GetDoctor(c.Request.Context(), doctorID)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	middlewares.RespondJSON(c, doctor, http.StatusOK)
}

// SendResetCode mails a password reset code to a registered doctor.
func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	if err := h.AuthService.SendResetCode(c.Request.Context(), body.Email); err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// ChangePassword sets a new password after verifying the reset code.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var body struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	if err := h.AuthService.ChangePassword(c.Request.Context(), body.Email, body.Code, body.NewPassword); err != nil {
		if errors.Is(err, models.ErrUnauthenticated) {
			middlewares.HttpError(c, "Invalid reset code", http.StatusUnauthorized, err)
			return
		}
		middlewares.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
