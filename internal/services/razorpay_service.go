package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway is the slice of the Razorpay API the order flow needs.
type RazorpayGateway interface {
	// CreateOrder registers a provider-side order for the given amount in
	// paise and returns its id.
	CreateOrder(amountPaise int64, currency, receipt string) (string, error)
	// VerifySignature checks the HMAC confirmation Razorpay sends back after
	// a successful checkout.
	VerifySignature(orderID, paymentID, signature string) bool
}

// RazorpayService talks to Razorpay through the official client.
type RazorpayService struct {
	client    *razorpay.Client
	keySecret string
}

// NewRazorpayService constructs a RazorpayService.
func NewRazorpayService(keyID, keySecret string) *RazorpayService {
	return &RazorpayService{
		client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
	}
}

// CreateOrder creates a Razorpay order and returns the provider order id.
func (s *RazorpayService) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := s.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create: %w", err)
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("razorpay order create: response missing order id")
	}

	return orderID, nil
}

// VerifySignature validates razorpay_signature as
// HMAC-SHA256(order_id + "|" + payment_id) keyed by the API secret.
func (s *RazorpayService) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifyRazorpaySignature(orderID, paymentID, signature, s.keySecret)
}

// VerifyRazorpaySignature implements Razorpay's payment confirmation check.
// Kept as a free function so it can be exercised without a client.
func VerifyRazorpaySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
