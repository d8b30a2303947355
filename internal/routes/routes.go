package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/isvaryam/internal/config"
	"github.com/example/isvaryam/internal/handlers"
	"github.com/example/isvaryam/internal/middleware"
	"github.com/example/isvaryam/internal/services"
)

// Dependencies carries the external collaborators handlers talk to. Wired
// with real clients in main and with fakes in tests.
type Dependencies struct {
	Mailer   services.Mailer
	Razorpay services.RazorpayGateway
	PayPal   services.PayPalGateway
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Dependencies) {
	otpService := services.NewOtpService(db, deps.Mailer)

	authHandler := handlers.NewAuthHandler(db, cfg, otpService)
	userHandler := handlers.NewUserHandler(db, cfg, otpService)
	orderHandler := handlers.NewOrderHandler(db, deps.Razorpay, deps.PayPal)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	wishlistHandler := handlers.NewWishlistHandler(db)
	reviewHandler := handlers.NewReviewHandler(db)
	couponHandler := handlers.NewCouponHandler(db)
	contactHandler := handlers.NewContactHandler(deps.Mailer, cfg.ContactReceiver)

	api := app.Group("/api")

	// OTP
	otp := api.Group("/otp")
	otp.Post("/send", authHandler.SendOtp)
	otp.Post("/verify", authHandler.VerifyOtp)

	// Accounts
	users := api.Group("/users")
	users.Post("/register", userHandler.Register)
	users.Post("/login", userHandler.Login)
	users.Post("/google-signup", userHandler.GoogleSignup)
	users.Get("/profile", middleware.AuthMiddleware(cfg), userHandler.GetProfile)
	users.Put("/updateProfile", middleware.AuthMiddleware(cfg), userHandler.UpdateProfile)
	users.Put("/changePassword", middleware.AuthMiddleware(cfg), userHandler.ChangePassword)

	// Catalog
	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:productId", productHandler.GetProduct)
	products.Post("/", middleware.AuthMiddleware(cfg), middleware.AdminMiddleware(), productHandler.CreateProduct)
	products.Put("/:productId", middleware.AuthMiddleware(cfg), middleware.AdminMiddleware(), productHandler.UpdateProduct)
	products.Delete("/:productId", middleware.AuthMiddleware(cfg), middleware.AdminMiddleware(), productHandler.DeleteProduct)

	// Reviews
	reviews := api.Group("/reviews")
	reviews.Get("/:productId", reviewHandler.ListForProduct)
	reviews.Post("/", middleware.AuthMiddleware(cfg), reviewHandler.Create)

	// Coupons
	coupons := api.Group("/coupons")
	coupons.Get("/:code", couponHandler.GetByCode)
	coupons.Post("/", middleware.AuthMiddleware(cfg), middleware.AdminMiddleware(), couponHandler.Create)
	coupons.Get("/", middleware.AuthMiddleware(cfg), middleware.AdminMiddleware(), couponHandler.List)

	// Contact form
	contact := api.Group("/contact")
	contact.Post("/send-contact-email", contactHandler.SendContactEmail)

	// Authenticated storefront
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/items", cartHandler.AddItem)
	cart.Put("/items/:itemId", cartHandler.UpdateItem)
	cart.Delete("/items/:itemId", cartHandler.RemoveItem)
	cart.Delete("/", cartHandler.Clear)

	wishlist := protected.Group("/wishlist")
	wishlist.Get("/", wishlistHandler.List)
	wishlist.Post("/", wishlistHandler.Add)
	wishlist.Delete("/:productId", wishlistHandler.Remove)

	orders := protected.Group("/orders")
	orders.Post("/create", orderHandler.CreateOrder)
	orders.Get("/newOrderForCurrentUser", orderHandler.NewOrderForCurrentUser)
	orders.Put("/pay", orderHandler.Pay)
	orders.Get("/track/:id", orderHandler.TrackOrder)
	orders.Get("/order/:id", orderHandler.GetOrder)
	orders.Get("/allstatus", orderHandler.AllStatus)
	orders.Post("/razorpay/create-order", orderHandler.RazorpayCreateOrder)
	orders.Post("/razorpay/verify-payment", orderHandler.RazorpayVerifyPayment)
	orders.Post("/paypal/create-order", orderHandler.PayPalCreateOrder)
	orders.Post("/paypal/capture", orderHandler.PayPalCapture)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:state", orderHandler.ListOrders)
}
