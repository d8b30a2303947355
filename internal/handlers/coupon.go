package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/isvaryam/internal/models"
)

// CouponHandler manages discount codes.
type CouponHandler struct {
	db *gorm.DB
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(db *gorm.DB) *CouponHandler {
	return &CouponHandler{db: db}
}

// GetByCode checks a code and returns its discount if it is still valid.
// Used by checkout before the order is placed.
func (h *CouponHandler) GetByCode(c *fiber.Ctx) error {
	var coupon models.Coupon
	err := h.db.Where("code = ?", c.Params("code")).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "coupon not found")
		}
		return err
	}

	if time.Now().After(coupon.ExpiresAt) {
		return fiber.NewError(fiber.StatusBadRequest, "coupon expired")
	}

	return c.JSON(fiber.Map{"success": true, "data": coupon})
}

type couponRequest struct {
	Code      string    `json:"code"`
	Discount  float64   `json:"discount"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create registers a coupon (admin only).
func (h *CouponHandler) Create(c *fiber.Ctx) error {
	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Code == "" || req.Discount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "code and a positive discount are required")
	}

	coupon := models.Coupon{
		Code:      req.Code,
		Discount:  req.Discount,
		ExpiresAt: req.ExpiresAt,
	}

	if err := h.db.Create(&coupon).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": coupon})
}

// List returns all coupons (admin only).
func (h *CouponHandler) List(c *fiber.Ctx) error {
	var coupons []models.Coupon
	if err := h.db.Order("created_at desc").Find(&coupons).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": coupons})
}
