package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/isvaryam/internal/models"
	"github.com/example/isvaryam/internal/utils"
)

// ProductHandler manages catalog CRUD.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts returns paginated products with optional search and category filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", q, q)
	}

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Sizes").Preload("Images").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct loads one product by its stable product id.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.findByProductID(c.Params("productId"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productSizeRequest struct {
	Size  string  `json:"size"`
	Price float64 `json:"price"`
}

type productNameValueRequest struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Quantity string `json:"quantity"`
}

type productRequest struct {
	ProductID      string                    `json:"product_id"`
	Name           string                    `json:"name"`
	Description    string                    `json:"description"`
	Category       string                    `json:"category"`
	Discount       float64                   `json:"discount"`
	Images         []string                  `json:"images"`
	Sizes          []productSizeRequest      `json:"quantities"`
	Ingredients    []productNameValueRequest `json:"ingredients"`
	Specifications []productNameValueRequest `json:"specifications"`
}

// CreateProduct adds a catalog entry (admin only).
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.ProductID == "" || req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "product_id and name are required")
	}
	if len(req.Sizes) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "at least one size variant is required")
	}

	var existing models.Product
	if err := h.db.Where("product_id = ?", req.ProductID).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "product already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	product := buildProduct(req)
	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct replaces a product's fields and child rows (admin only).
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	product, err := h.findByProductID(c.Params("productId"))
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	return h.db.Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.ProductSize{}, &models.ProductImage{},
			&models.ProductIngredient{}, &models.ProductSpecification{},
		} {
			if err := tx.Where("product_ref = ?", product.ID).Delete(child).Error; err != nil {
				return err
			}
		}

		updated := buildProduct(req)
		updated.BaseModel = product.BaseModel
		updated.ProductID = product.ProductID
		if err := tx.Save(&updated).Error; err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "data": updated})
	})
}

// DeleteProduct removes a product and every reference to it: cart items,
// order line items (the orders themselves survive), reviews and wishlist
// entries, all in one transaction so a partial cascade never commits.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	product, err := h.findByProductID(c.Params("productId"))
	if err != nil {
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		for _, ref := range []interface{}{
			&models.CartItem{},
			&models.OrderItem{},
			&models.Review{},
			&models.WishlistItem{},
			&models.ProductSize{},
			&models.ProductImage{},
			&models.ProductIngredient{},
			&models.ProductSpecification{},
		} {
			if err := tx.Where("product_ref = ?", product.ID).Delete(ref).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Product{}, "id = ?", product.ID).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "product deleted"})
}

func (h *ProductHandler) findByProductID(productID string) (*models.Product, error) {
	if productID == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "productId is required")
	}

	var product models.Product
	err := h.db.Preload("Sizes").
		Preload("Images").
		Preload("Ingredients").
		Preload("Specifications").
		Where("product_id = ?", productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return nil, err
	}

	return &product, nil
}

func buildProduct(req productRequest) models.Product {
	product := models.Product{
		ProductID:   req.ProductID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Discount:    req.Discount,
	}

	for _, s := range req.Sizes {
		product.Sizes = append(product.Sizes, models.ProductSize{Size: s.Size, Price: s.Price})
	}
	for i, url := range req.Images {
		product.Images = append(product.Images, models.ProductImage{URL: url, DisplayOrder: i})
	}
	for _, ing := range req.Ingredients {
		product.Ingredients = append(product.Ingredients, models.ProductIngredient{
			Name:     ing.Name,
			Quantity: ing.Quantity,
		})
	}
	for _, spec := range req.Specifications {
		product.Specifications = append(product.Specifications, models.ProductSpecification{
			Name:  spec.Name,
			Value: spec.Value,
		})
	}

	return product
}
