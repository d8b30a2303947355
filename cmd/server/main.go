package main

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/isvaryam/internal/config"
	"github.com/example/isvaryam/internal/database"
	"github.com/example/isvaryam/internal/routes"
	"github.com/example/isvaryam/internal/services"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName: "Isvaryam Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowCredentials: true,
		AllowHeaders:     "Content-Type, Authorization",
	}))

	deps := routes.Dependencies{
		Mailer:   services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom),
		Razorpay: services.NewRazorpayService(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
	}

	if paypalService, err := services.NewPayPalService(cfg.PayPalClientID, cfg.PayPalSecret, cfg.PayPalLive); err != nil {
		log.Printf("PayPal client unavailable: %v", err)
	} else {
		deps.PayPal = paypalService
	}

	routes.Register(app, db, cfg, deps)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
