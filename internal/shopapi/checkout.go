package shopapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/jaee/storefront/internal/domain"
)

// CreateOrder asks the backend to create a payment-provider order for the
// current cart. Fails if the cart is empty or any line is out of stock.
func (c *Client) CreateOrder(ctx context.Context, token string) (*domain.CheckoutOrder, error) {
	var order domain.CheckoutOrder
	if err := c.do(ctx, token, http.MethodPost, "/checkout/create-order", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifyPayment submits the provider callback tokens for authoritative
// confirmation. The returned result carries the backend's verdict; a
// Success of false is a valid answer, not a transport error.
func (c *Client) VerifyPayment(ctx context.Context, token string, req domain.VerificationRequest) (*domain.VerificationResult, error) {
	var result domain.VerificationResult
	if err := c.do(ctx, token, http.MethodPost, "/checkout/verify-payment", req, &result); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			// A rejected signature arrives as a success:false envelope.
			// That is the verdict itself, not a transport failure.
			return &domain.VerificationResult{Success: false, Message: apiErr.Message}, nil
		}
		return nil, err
	}
	return &result, nil
}
