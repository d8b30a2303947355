package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/isvaryam/internal/services"
)

// ContactHandler forwards contact-form submissions to the support mailbox.
type ContactHandler struct {
	mailer   services.Mailer
	receiver string
}

// NewContactHandler constructs a ContactHandler.
func NewContactHandler(mailer services.Mailer, receiver string) *ContactHandler {
	return &ContactHandler{mailer: mailer, receiver: receiver}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SendContactEmail mails a visitor's message to the configured receiver.
func (h *ContactHandler) SendContactEmail(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "all fields are required")
	}

	subject := "New Contact Form Submission: " + req.Subject
	body := fmt.Sprintf("Name: %s\nEmail: %s\nSubject: %s\n\n%s",
		req.Name, req.Email, req.Subject, req.Message)

	if err := h.mailer.Send(h.receiver, subject, body); err != nil {
		log.Printf("[Contact] failed to forward message from %s: %v", req.Email, err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to send message")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "message sent successfully",
	})
}
