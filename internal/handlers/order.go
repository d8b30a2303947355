package handlers

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/isvaryam/internal/middleware"
	"github.com/example/isvaryam/internal/models"
	"github.com/example/isvaryam/internal/services"
	"github.com/example/isvaryam/internal/utils"
)

// OrderHandler manages checkout and payment reconciliation endpoints.
type OrderHandler struct {
	db       *gorm.DB
	razorpay services.RazorpayGateway
	paypal   services.PayPalGateway
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, razorpay services.RazorpayGateway, paypal services.PayPalGateway) *OrderHandler {
	return &OrderHandler{db: db, razorpay: razorpay, paypal: paypal}
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type latLngRequest struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type createOrderRequest struct {
	Name          string             `json:"name"`
	Address       models.Address     `json:"address"`
	AddressLatLng latLngRequest      `json:"addressLatLng"`
	Items         []orderItemRequest `json:"items"`
	CouponCode    string             `json:"coupon_code"`
}

// CreateOrder persists checkout intent with status NEW. Unit prices are
// snapshotted from the stored size variants, never trusted from the client,
// so later catalog edits cannot change historical orders.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "order must contain at least one item")
	}

	order := models.Order{
		UserID:       userID,
		CustomerName: req.Name,
		Address:      req.Address,
		Lat:          req.AddressLatLng.Lat,
		Lng:          req.AddressLatLng.Lng,
		Status:       models.OrderStatusNew,
		CouponCode:   req.CouponCode,
	}

	var total float64
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item quantity must be positive")
		}

		var product models.Product
		if err := h.db.Where("product_id = ?", item.ProductID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("unknown product %q", item.ProductID))
			}
			return err
		}

		var size models.ProductSize
		if err := h.db.Where("product_ref = ? AND size = ?", product.ID, item.Size).
			First(&size).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("product %q has no size %q", item.ProductID, item.Size))
			}
			return err
		}

		lineTotal := size.Price * float64(item.Quantity)
		if product.Discount > 0 {
			lineTotal *= 1 - product.Discount/100
		}

		order.Items = append(order.Items, models.OrderItem{
			ProductRef:  product.ID,
			ProductID:   product.ProductID,
			ProductName: product.Name,
			Size:        size.Size,
			UnitPrice:   size.Price,
			Quantity:    item.Quantity,
			LineTotal:   lineTotal,
		})
		total += lineTotal
	}

	if req.CouponCode != "" {
		var coupon models.Coupon
		err := h.db.Where("code = ? AND expires_at > ?", req.CouponCode, time.Now()).
			First(&coupon).Error
		if err == nil {
			order.Discount = coupon.Discount
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	order.TotalPrice = total - order.Discount
	if order.TotalPrice < 0 {
		order.TotalPrice = 0
	}

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// NewOrderForCurrentUser returns the user's most recent unpaid order.
func (h *OrderHandler) NewOrderForCurrentUser(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	order, err := h.latestNewOrder(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type payRequest struct {
	PaymentID string `json:"paymentId"`
}

// Pay stamps a payment reference on the user's latest NEW order. Kept for the
// post-capture confirmation step the checkout UI performs.
func (h *OrderHandler) Pay(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req payRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.PaymentID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "paymentId is required")
	}

	order, err := h.latestNewOrder(userID)
	if err != nil {
		return err
	}

	order.PaymentID = req.PaymentID
	order.Status = models.OrderStatusPaid
	if err := h.db.Save(order).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"order_id": order.ID}})
}

// TrackOrder returns one order for tracking. Admins can track any order,
// customers only their own.
func (h *OrderHandler) TrackOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	query := h.db.Preload("Items")
	if !middleware.IsCurrentUserAdmin(c) {
		query = query.Where("user_id = ?", userID)
	}

	var order models.Order
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// GetOrder returns a single order owned by the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ListOrders returns the user's orders, optionally filtered by status.
// Admins see every order.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})
	if !middleware.IsCurrentUserAdmin(c) {
		query = query.Where("user_id = ?", userID)
	}
	if state := c.Params("state", c.Query("status")); state != "" {
		query = query.Where("status = ?", state)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// AllStatus lists the order statuses the tracking UI can filter by.
func (h *OrderHandler) AllStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": models.AllOrderStatuses})
}

type razorpayCreateOrderRequest struct {
	OrderID string `json:"orderId"`
}

// RazorpayCreateOrder registers the order with Razorpay and returns the
// provider order id and amount for the checkout widget.
func (h *OrderHandler) RazorpayCreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req razorpayCreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.resolveOrder(userID, req.OrderID)
	if err != nil {
		return err
	}

	amountPaise := int64(math.Round(order.TotalPrice * 100))
	providerOrderID, err := h.razorpay.CreateOrder(amountPaise, "INR", order.ID.String())
	if err != nil {
		log.Printf("[Razorpay] order create failed for %s: %v", order.ID, err)
		return fiber.NewError(fiber.StatusBadGateway, "payment provider error")
	}

	order.RazorpayOrderID = providerOrderID
	if err := h.db.Save(order).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"orderId":  providerOrderID,
		"amount":   amountPaise,
		"currency": "INR",
	})
}

type razorpayVerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// RazorpayVerifyPayment checks the provider's HMAC confirmation and moves the
// order NEW -> PAID. Replaying the same successful payload is a no-op beyond
// returning the same success response.
func (h *OrderHandler) RazorpayVerifyPayment(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req razorpayVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing payment fields")
	}

	if !h.razorpay.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return fiber.NewError(fiber.StatusBadRequest, "payment verification failed")
	}

	var order models.Order
	if err := h.db.First(&order, "razorpay_order_id = ? AND user_id = ?",
		req.RazorpayOrderID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return h.markPaid(c, &order, req.RazorpayPaymentID)
}

type paypalCreateOrderRequest struct {
	OrderID string `json:"orderId"`
}

// PayPalCreateOrder registers the order with PayPal.
func (h *OrderHandler) PayPalCreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if h.paypal == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "paypal is not configured")
	}

	var req paypalCreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.resolveOrder(userID, req.OrderID)
	if err != nil {
		return err
	}

	value := fmt.Sprintf("%.2f", order.TotalPrice)
	providerOrderID, err := h.paypal.CreateOrder(c.Context(), value, "USD", order.ID.String())
	if err != nil {
		log.Printf("[PayPal] order create failed for %s: %v", order.ID, err)
		return fiber.NewError(fiber.StatusBadGateway, "payment provider error")
	}

	order.PayPalOrderID = providerOrderID
	if err := h.db.Save(order).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"orderId": providerOrderID})
}

type paypalCaptureRequest struct {
	OrderID string `json:"orderId"`
}

// PayPalCapture captures an approved PayPal order and applies the same
// NEW -> PAID transition as Razorpay verification.
func (h *OrderHandler) PayPalCapture(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if h.paypal == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "paypal is not configured")
	}

	var req paypalCaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.OrderID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "orderId is required")
	}

	var order models.Order
	if err := h.db.First(&order, "pay_pal_order_id = ? AND user_id = ?",
		req.OrderID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	// Replays must not hit the provider again: a second capture of a captured
	// order errors (ORDER_ALREADY_CAPTURED), and markPaid already knows the
	// original payment reference.
	if order.Status == models.OrderStatusPaid {
		return h.markPaid(c, &order, order.PaymentID)
	}

	captureID, completed, err := h.paypal.CaptureOrder(c.Context(), req.OrderID)
	if err != nil {
		log.Printf("[PayPal] capture failed for %s: %v", order.ID, err)
		return fiber.NewError(fiber.StatusBadGateway, "payment provider error")
	}
	if !completed {
		return fiber.NewError(fiber.StatusBadRequest, "payment not completed")
	}

	return h.markPaid(c, &order, captureID)
}

// markPaid transitions NEW -> PAID exactly once per payment reference.
func (h *OrderHandler) markPaid(c *fiber.Ctx, order *models.Order, paymentID string) error {
	switch order.Status {
	case models.OrderStatusNew:
		order.PaymentID = paymentID
		order.Status = models.OrderStatusPaid
		if err := h.db.Save(order).Error; err != nil {
			return err
		}
	case models.OrderStatusPaid:
		if order.PaymentID != paymentID {
			return fiber.NewError(fiber.StatusConflict, "order already paid")
		}
	default:
		return fiber.NewError(fiber.StatusConflict, "order is not payable")
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "payment verified",
		"paymentId": order.PaymentID,
		"orderId":   order.ID,
	})
}

func (h *OrderHandler) resolveOrder(userID uuid.UUID, orderID string) (*models.Order, error) {
	if orderID == "" {
		return h.latestNewOrder(userID)
	}

	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid orderId")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return nil, err
	}

	return &order, nil
}

func (h *OrderHandler) latestNewOrder(userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := h.db.Preload("Items").
		Where("user_id = ? AND status = ?", userID, models.OrderStatusNew).
		Order("created_at desc").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "no open order found")
		}
		return nil, err
	}

	return &order, nil
}
