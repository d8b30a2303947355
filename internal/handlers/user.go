package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/isvaryam/internal/config"
	"github.com/example/isvaryam/internal/middleware"
	"github.com/example/isvaryam/internal/models"
	"github.com/example/isvaryam/internal/services"
	"github.com/example/isvaryam/internal/utils"
)

// UserHandler bundles dependencies for account endpoints.
type UserHandler struct {
	db  *gorm.DB
	cfg *config.Config
	otp *services.OtpService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB, cfg *config.Config, otp *services.OtpService) *UserHandler {
	return &UserHandler{db: db, cfg: cfg, otp: otp}
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"address":  user.Address,
		"phone":    user.Phone,
		"is_admin": user.IsAdmin,
	}
}

type registerRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Address  models.Address `json:"address"`
	Phone    string         `json:"phone"`
}

// Register starts account creation: the profile is parked in the OTP ledger
// and the user record is only written once the emailed code is confirmed.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := services.NormalizeEmail(req.Email)
	if req.Name == "" || email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name, email and password are required")
	}

	var existing models.User
	if err := h.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists, please login")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	pending := &services.PendingProfile{
		Name:         req.Name,
		PasswordHash: passwordHash,
		Address:      req.Address,
		Phone:        req.Phone,
	}

	if err := h.otp.Issue(c.Context(), email, pending); err != nil {
		if errors.Is(err, services.ErrAlreadyRegistered) {
			return fiber.NewError(fiber.StatusConflict, "user already exists, please login")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to send otp")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "otp sent to email, please verify to complete registration",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates with a password, or without one when the email was
// verified by a recent OTP check. The verified mark is consumed on success so
// one verification grants exactly one passwordless login.
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := services.NormalizeEmail(req.Email)

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "user not found")
		}
		return err
	}

	if user.IsBlocked {
		return fiber.NewError(fiber.StatusForbidden, "account is blocked")
	}

	if req.Password != "" {
		if user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, req.Password) {
			return fiber.NewError(fiber.StatusBadRequest, "email or password is invalid")
		}
		return h.tokenResponse(c, &user)
	}

	verified, err := h.otp.ConsumeVerified(c.Context(), email)
	if err != nil {
		return err
	}
	if !verified {
		return fiber.NewError(fiber.StatusBadRequest, "otp not verified for this email")
	}

	return h.tokenResponse(c, &user)
}

type googleSignupRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GoogleSignup creates a passwordless account from a Google identity
// assertion if one does not exist yet, then issues a session token.
func (h *UserHandler) GoogleSignup(c *fiber.Ctx) error {
	var req googleSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := services.NormalizeEmail(req.Email)
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	var user models.User
	err := h.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Name:         req.Name,
			Email:        email,
			GoogleSignup: true,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return h.tokenResponse(c, &user)
}

type updateProfileRequest struct {
	Name     string          `json:"name"`
	Address  *models.Address `json:"address"`
	Phone    string          `json:"phone"`
	Password string          `json:"password"`
}

// UpdateProfile patches profile fields; a non-empty password is re-hashed.
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "user not found")
		}
		return err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if strings.TrimSpace(req.Password) != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
		}
		user.PasswordHash = hash
	}

	if err := h.db.Save(&user).Error; err != nil {
		return err
	}

	return h.tokenResponse(c, &user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the password after checking the current one.
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.NewPassword == "" {
		return fiber.NewError(fiber.StatusBadRequest, "new password is required")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	if user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return fiber.NewError(fiber.StatusBadRequest, "current password is not correct")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", hash).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password changed successfully",
	})
}

// GetProfile returns the authenticated user's profile.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": userResponse(&user)})
}

func (h *UserHandler) tokenResponse(c *fiber.Ctx, user *models.User) error {
	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.IsAdmin, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    userResponse(user),
	})
}
