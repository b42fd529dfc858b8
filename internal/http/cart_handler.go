package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jaee/storefront/internal/cart"
	"github.com/jaee/storefront/internal/domain"
	"github.com/jaee/storefront/internal/shopapi"
)

// CartService is the slice of the cart facade the HTTP layer needs.
type CartService interface {
	Get(ctx context.Context, sess domain.Session) (*domain.Cart, error)
	AddItem(ctx context.Context, sess domain.Session, productID int64, qty int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, sess domain.Session, lineID, productID int64, qty int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sess domain.Session, lineID, productID int64) (*domain.Cart, error)
	Count(ctx context.Context, sess domain.Session) (int, error)
	MergeOnLogin(ctx context.Context, sess domain.Session) (*domain.Cart, error)
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	// ProductID is required for guest sessions, where cart lines are
	// addressed by product rather than by a server-assigned line id.
	ProductID int64 `json:"product_id,omitempty"`
	Quantity  int   `json:"quantity"`
}

type CountResponseDTO struct {
	Count int `json:"count"`
}

type MergeResponseDTO struct {
	Merged  bool         `json:"merged"`
	Warning string       `json:"warning,omitempty"`
	Cart    *domain.Cart `json:"cart,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.Get(ctx, sessionFromContext(r.Context()))
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	c, err := h.carts.AddItem(ctx, sessionFromContext(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

// PATCH /api/v1/cart/items/{item_id}
//
// Quantity zero removes the line for guest carts; authenticated carts reject
// it so the client deletes explicitly.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID, err := strconv.ParseInt(chi.URLParam(r, "item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	sess := sessionFromContext(r.Context())
	if !sess.Authenticated() && req.ProductID <= 0 {
		// Guest lines are addressed by product, not by the line id space
		// the server owns.
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required for guest carts")
		return
	}

	c, err := h.carts.UpdateItem(ctx, sess, itemID, req.ProductID, req.Quantity)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// DELETE /api/v1/cart/items/{item_id}
//
// The path id is the server-assigned line id for authenticated carts and
// the product id for guest carts; there is no body to carry a second id.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID, err := strconv.ParseInt(chi.URLParam(r, "item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be a positive integer")
		return
	}

	c, err := h.carts.RemoveItem(ctx, sessionFromContext(r.Context()), itemID, itemID)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// GET /api/v1/cart/count
func (h *CartHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	count, err := h.carts.Count(ctx, sessionFromContext(r.Context()))
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CountResponseDTO{Count: count})
}

// POST /api/v1/cart/merge
//
// Called by the client right after login. A failed merge must never block the
// sign-in flow, so it surfaces as a warning in a 200 response rather than an
// error status; the guest cart stays intact for a later retry.
func (h *CartHandler) MergeCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	merged, err := h.carts.MergeOnLogin(ctx, sessionFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, cart.ErrMergeRequiresAuth) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "merge requires an authenticated session")
			return
		}
		log.Printf("cart merge failed: %v", err)
		respondJSON(w, http.StatusOK, MergeResponseDTO{
			Merged:  false,
			Warning: "your saved cart could not be merged, it will be retried later",
		})
		return
	}

	if merged == nil {
		// Guest cart was empty, nothing to move.
		respondJSON(w, http.StatusOK, MergeResponseDTO{Merged: false})
		return
	}

	respondJSON(w, http.StatusOK, MergeResponseDTO{Merged: true, Cart: merged})
}

func handleCartError(w http.ResponseWriter, err error) {
	var apiErr *shopapi.APIError

	switch {
	case errors.Is(err, cart.ErrInvalidQty):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.As(err, &apiErr):
		respondError(w, apiErr.StatusCode, "shop_api_error", apiErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		log.Printf("cart request failed: %v", err)
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "shop API is unreachable")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
