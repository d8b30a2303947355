package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/isvaryam/internal/middleware"
	"github.com/example/isvaryam/internal/models"
)

// CartHandler manages the per-user shopping cart.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	cart, err := h.findOrCreateCart(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": cart})
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// AddItem puts a product/size into the cart, merging quantities on repeat adds.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.db.Where("product_id = ?", req.ProductID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown product")
		}
		return err
	}

	cart, err := h.findOrCreateCart(userID)
	if err != nil {
		return err
	}

	var item models.CartItem
	err = h.db.Where("cart_id = ? AND product_ref = ? AND size = ?",
		cart.ID, product.ID, req.Size).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if err := h.db.Save(&item).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			CartID:     cart.ID,
			ProductRef: product.ID,
			Size:       req.Size,
			Quantity:   req.Quantity,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}
	default:
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem sets the quantity of one cart line. A zero quantity removes it.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity cannot be negative")
	}

	cart, err := h.findOrCreateCart(userID)
	if err != nil {
		return err
	}

	var item models.CartItem
	if err := h.db.Where("id = ? AND cart_id = ?", itemID, cart.ID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "cart item not found")
		}
		return err
	}

	if req.Quantity == 0 {
		if err := h.db.Delete(&item).Error; err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "message": "item removed"})
	}

	item.Quantity = req.Quantity
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// RemoveItem deletes one cart line.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	cart, err := h.findOrCreateCart(userID)
	if err != nil {
		return err
	}

	result := h.db.Where("id = ? AND cart_id = ?", itemID, cart.ID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cart item not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "item removed"})
}

// Clear empties the cart.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	cart, err := h.findOrCreateCart(userID)
	if err != nil {
		return err
	}

	if err := h.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart cleared"})
}

func (h *CartHandler) findOrCreateCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := h.db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := h.db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}

	return &cart, nil
}
