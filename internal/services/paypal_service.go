package services

import (
	"context"
	"fmt"

	"github.com/plutov/paypal/v4"
)

// PayPalGateway is the slice of the PayPal Orders API the checkout flow needs.
type PayPalGateway interface {
	// CreateOrder registers a capture-intent order for the given amount and
	// returns the provider order id.
	CreateOrder(ctx context.Context, value, currency, receipt string) (string, error)
	// CaptureOrder captures an approved order and returns the capture id and
	// whether the capture completed.
	CaptureOrder(ctx context.Context, orderID string) (string, bool, error)
}

// PayPalService talks to PayPal through the plutov client.
type PayPalService struct {
	client *paypal.Client
}

// NewPayPalService constructs a PayPalService against the sandbox or live API.
func NewPayPalService(clientID, secret string, live bool) (*PayPalService, error) {
	base := paypal.APIBaseSandBox
	if live {
		base = paypal.APIBaseLive
	}

	client, err := paypal.NewClient(clientID, secret, base)
	if err != nil {
		return nil, fmt.Errorf("paypal client: %w", err)
	}

	return &PayPalService{client: client}, nil
}

// CreateOrder creates a PayPal order with capture intent.
func (s *PayPalService) CreateOrder(ctx context.Context, value, currency, receipt string) (string, error) {
	if _, err := s.client.GetAccessToken(ctx); err != nil {
		return "", fmt.Errorf("paypal auth: %w", err)
	}

	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: receipt,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currency,
				Value:    value,
			},
		},
	}

	order, err := s.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return "", fmt.Errorf("paypal order create: %w", err)
	}

	return order.ID, nil
}

// CaptureOrder captures an approved PayPal order.
func (s *PayPalService) CaptureOrder(ctx context.Context, orderID string) (string, bool, error) {
	if _, err := s.client.GetAccessToken(ctx); err != nil {
		return "", false, fmt.Errorf("paypal auth: %w", err)
	}

	capture, err := s.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return "", false, fmt.Errorf("paypal capture: %w", err)
	}

	captureID := capture.ID
	for _, unit := range capture.PurchaseUnits {
		if unit.Payments != nil && len(unit.Payments.Captures) > 0 {
			captureID = unit.Payments.Captures[0].ID
		}
	}

	return captureID, capture.Status == "COMPLETED", nil
}
