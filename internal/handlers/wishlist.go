package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/isvaryam/internal/middleware"
	"github.com/example/isvaryam/internal/models"
)

// WishlistHandler manages per-user saved products.
type WishlistHandler struct {
	db *gorm.DB
}

// NewWishlistHandler constructs WishlistHandler.
func NewWishlistHandler(db *gorm.DB) *WishlistHandler {
	return &WishlistHandler{db: db}
}

// List returns the user's wishlist entries.
func (h *WishlistHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var items []models.WishlistItem
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

type wishlistRequest struct {
	ProductID string `json:"product_id"`
}

// Add saves a product to the wishlist. Adding the same product twice is a no-op.
func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req wishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var product models.Product
	if err := h.db.Where("product_id = ?", req.ProductID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown product")
		}
		return err
	}

	var item models.WishlistItem
	err := h.db.Where("user_id = ? AND product_ref = ?", userID, product.ID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.WishlistItem{UserID: userID, ProductRef: product.ID}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// Remove deletes a product from the wishlist.
func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var product models.Product
	if err := h.db.Where("product_id = ?", c.Params("productId")).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if err := h.db.Where("user_id = ? AND product_ref = ?", userID, product.ID).
		Delete(&models.WishlistItem{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "removed from wishlist"})
}
