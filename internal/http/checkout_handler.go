package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jaee/storefront/internal/checkout"
	"github.com/jaee/storefront/internal/domain"
	"github.com/jaee/storefront/internal/payment"
	"github.com/jaee/storefront/internal/shopapi"
)

// CheckoutService runs the payment flow end to end. Both the attempt and
// its observable state are scoped to the caller's session.
type CheckoutService interface {
	Start(ctx context.Context, sess domain.Session) (*checkout.Result, error)
	State(sess domain.Session) domain.CheckoutStatus
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type CheckoutResponseDTO struct {
	OrderID int64  `json:"order_id"`
	Message string `json:"message,omitempty"`
}

type CheckoutStateResponseDTO struct {
	State string `json:"state"`
}

// POST /api/v1/checkout
//
// Runs the whole attempt synchronously: order creation, payment collection
// and verification. The response arrives only once the attempt lands in a
// terminal state.
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.checkout.Start(ctx, sessionFromContext(r.Context()))
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID: result.OrderID,
		Message: result.Message,
	})
}

// GET /api/v1/checkout/state
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CheckoutStateResponseDTO{
		State: h.checkout.State(sessionFromContext(r.Context())).String(),
	})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var apiErr *shopapi.APIError

	switch {
	case errors.Is(err, checkout.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, "login_required", "please login to checkout")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty, nothing to checkout")
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		respondError(w, http.StatusConflict, "checkout_in_progress", "a checkout attempt is already running")
	case errors.Is(err, checkout.ErrPaymentCancelled):
		respondError(w, http.StatusConflict, "payment_cancelled", "payment was cancelled")
	case errors.Is(err, checkout.ErrVerificationFailed):
		respondError(w, http.StatusBadGateway, "verification_failed", "payment verification failed")
	case errors.Is(err, payment.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "payment_unavailable", "payment gateway is unavailable")
	case errors.As(err, &apiErr):
		respondError(w, apiErr.StatusCode, "shop_api_error", apiErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "checkout timed out")
	default:
		log.Printf("checkout failed: %v", err)
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "shop API is unreachable")
	}
}
