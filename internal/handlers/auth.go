package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/isvaryam/internal/config"
	"github.com/example/isvaryam/internal/models"
	"github.com/example/isvaryam/internal/services"
	"github.com/example/isvaryam/internal/utils"
)

// AuthHandler exposes the OTP endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
	otp *services.OtpService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, otp *services.OtpService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, otp: otp}
}

type sendOtpRequest struct {
	Email string `json:"email"`
}

// SendOtp issues a passcode for an email that is not yet registered.
func (h *AuthHandler) SendOtp(c *fiber.Ctx) error {
	var req sendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := services.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fiber.NewError(fiber.StatusBadRequest, "a valid email is required")
	}

	if err := h.otp.Issue(c.Context(), email, nil); err != nil {
		if errors.Is(err, services.ErrAlreadyRegistered) {
			return fiber.NewError(fiber.StatusBadRequest, "user already exists, please login")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to send otp")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "otp sent successfully",
	})
}

type verifyOtpRequest struct {
	Email string `json:"email"`
	Code  string `json:"otp"`
}

// VerifyOtp validates a submitted code. When the code was issued by the
// registration flow, the pending profile becomes a durable user account and
// the response carries a session token.
func (h *AuthHandler) VerifyOtp(c *fiber.Ctx) error {
	var req verifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and otp are required")
	}

	pending, err := h.otp.Verify(c.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOtpNotFound):
			return fiber.NewError(fiber.StatusBadRequest, "otp not found")
		case errors.Is(err, services.ErrOtpExpired):
			return fiber.NewError(fiber.StatusBadRequest, "otp expired")
		case errors.Is(err, services.ErrOtpMismatch):
			return fiber.NewError(fiber.StatusBadRequest, "invalid otp")
		}
		return err
	}

	if pending == nil {
		return c.JSON(fiber.Map{
			"success":  true,
			"verified": true,
			"message":  "otp verified successfully",
		})
	}

	user, err := h.completeRegistration(c, pending, services.NormalizeEmail(req.Email))
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.IsAdmin, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"verified": true,
		"message":  "registration complete",
		"token":    token,
		"user":     userResponse(user),
	})
}

// completeRegistration promotes a verified pending profile into a user
// record. If an account for the email appeared concurrently the existing one
// is returned, so retries never produce two users for one email.
func (h *AuthHandler) completeRegistration(c *fiber.Ctx, pending *services.PendingProfile, email string) (*models.User, error) {
	var existing models.User
	err := h.db.WithContext(c.Context()).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := models.User{
		Name:         pending.Name,
		Email:        email,
		PasswordHash: pending.PasswordHash,
		Address:      pending.Address,
		Phone:        pending.Phone,
	}

	if err := h.db.WithContext(c.Context()).Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
