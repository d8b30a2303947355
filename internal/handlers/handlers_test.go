package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/isvaryam/internal/config"
	"github.com/example/isvaryam/internal/database"
	"github.com/example/isvaryam/internal/models"
	"github.com/example/isvaryam/internal/routes"
	"github.com/example/isvaryam/internal/services"
	"github.com/example/isvaryam/internal/utils"
)

type fakeMailer struct {
	sent []string // recipient addresses in dispatch order
	fail error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, to)
	return nil
}

// fakeRazorpay issues sequential provider order ids and verifies real HMAC
// signatures against a fixed test secret, so tests can sign payloads the way
// the provider would.
type fakeRazorpay struct {
	secret  string
	created int
}

func (f *fakeRazorpay) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	f.created++
	return fmt.Sprintf("order_test%d", f.created), nil
}

func (f *fakeRazorpay) VerifySignature(orderID, paymentID, signature string) bool {
	return services.VerifyRazorpaySignature(orderID, paymentID, signature, f.secret)
}

type fakePayPal struct {
	created  int
	captures int
}

func (f *fakePayPal) CreateOrder(ctx context.Context, value, currency, receipt string) (string, error) {
	f.created++
	return fmt.Sprintf("PP-ORDER-%d", f.created), nil
}

func (f *fakePayPal) CaptureOrder(ctx context.Context, orderID string) (string, bool, error) {
	f.captures++
	return "CAP-" + orderID, true, nil
}

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	cfg      *config.Config
	mailer   *fakeMailer
	razorpay *fakeRazorpay
	paypal   *fakePayPal
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		TokenExpires:    time.Hour,
		ContactReceiver: "support@test.local",
	}

	env := &testEnv{
		app:      fiber.New(),
		db:       db,
		cfg:      cfg,
		mailer:   &fakeMailer{},
		razorpay: &fakeRazorpay{secret: "rzp_test_secret"},
		paypal:   &fakePayPal{},
	}

	routes.Register(env.app, db, cfg, routes.Dependencies{
		Mailer:   env.mailer,
		Razorpay: env.razorpay,
		PayPal:   env.paypal,
	})

	return env
}

// request performs one JSON request against the app and decodes the body.
func (e *testEnv) request(t *testing.T, method, path, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]interface{}{}
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded
}

func (e *testEnv) createUser(t *testing.T, email, password string, isAdmin bool) (*models.User, string) {
	t.Helper()

	user := models.User{
		Name:    "Test User",
		Email:   email,
		IsAdmin: isAdmin,
	}
	if password != "" {
		hash, err := utils.HashPassword(password)
		require.NoError(t, err)
		user.PasswordHash = hash
	}
	require.NoError(t, e.db.Create(&user).Error)

	token, err := utils.GenerateToken(e.cfg.JWTSecret, user.ID, user.IsAdmin, e.cfg.TokenExpires)
	require.NoError(t, err)
	return &user, token
}

func (e *testEnv) createProduct(t *testing.T, productID, name string, discountPct float64, sizes map[string]float64) *models.Product {
	t.Helper()

	product := models.Product{
		ProductID: productID,
		Name:      name,
		Discount:  discountPct,
	}
	for size, price := range sizes {
		product.Sizes = append(product.Sizes, models.ProductSize{Size: size, Price: price})
	}
	require.NoError(t, e.db.Create(&product).Error)
	return &product
}

func timeInFuture() time.Time {
	return time.Now().Add(10 * time.Minute)
}

func (e *testEnv) latestOtpCode(t *testing.T, email string) string {
	t.Helper()

	var record models.OtpVerification
	require.NoError(t, e.db.Where("email = ?", email).
		Order("created_at desc").
		First(&record).Error)
	return record.Code
}
