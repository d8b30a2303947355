package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/isvaryam/internal/models"
)

func newMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestMigrateBuildsFullSchema(t *testing.T) {
	db := newMigratedDB(t)

	for _, table := range []string{
		"users", "otp_verifications", "verified_emails",
		"products", "product_sizes", "product_images",
		"product_ingredients", "product_specifications",
		"orders", "order_items", "carts", "cart_items",
		"reviews", "wishlist_items", "coupons",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

// Product children key on the uuid primary key through ProductRef, not on the
// string business id, so creating with associations and preloading them back
// must round-trip.
func TestProductAssociationsRoundTrip(t *testing.T) {
	db := newMigratedDB(t)

	product := models.Product{
		ProductID: "oil-500",
		Name:      "Groundnut Oil",
		Sizes: []models.ProductSize{
			{Size: "500ml", Price: 250},
			{Size: "1l", Price: 480},
		},
		Images:         []models.ProductImage{{URL: "https://cdn.example.com/oil.jpg"}},
		Ingredients:    []models.ProductIngredient{{Name: "Groundnut", Quantity: "100%"}},
		Specifications: []models.ProductSpecification{{Name: "Shelf life", Value: "6 months"}},
	}
	require.NoError(t, db.Create(&product).Error)

	var loaded models.Product
	require.NoError(t, db.Preload("Sizes").Preload("Images").
		Preload("Ingredients").Preload("Specifications").
		First(&loaded, "product_id = ?", "oil-500").Error)

	require.Len(t, loaded.Sizes, 2)
	assert.Equal(t, product.ID, loaded.Sizes[0].ProductRef)
	require.Len(t, loaded.Images, 1)
	assert.Equal(t, product.ID, loaded.Images[0].ProductRef)
	require.Len(t, loaded.Ingredients, 1)
	require.Len(t, loaded.Specifications, 1)
}
