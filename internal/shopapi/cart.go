package shopapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jaee/storefront/internal/domain"
)

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Qty       int   `json:"qty"`
}

type updateItemRequest struct {
	Qty int `json:"qty"`
}

type mergeRequest struct {
	GuestItems []domain.GuestCartLine `json:"guestItems"`
}

// Cart fetches the authenticated user's cart.
func (c *Client) Cart(ctx context.Context, token string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, token, http.MethodGet, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem adds a product to the remote cart and returns the new cart state.
func (c *Client) AddItem(ctx context.Context, token string, productID int64, qty int) (*domain.Cart, error) {
	var cart domain.Cart
	body := addItemRequest{ProductID: productID, Qty: qty}
	if err := c.do(ctx, token, http.MethodPost, "/cart/items", body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateItem replaces the quantity of a server-assigned cart line.
func (c *Client) UpdateItem(ctx context.Context, token string, lineID int64, qty int) (*domain.Cart, error) {
	var cart domain.Cart
	path := fmt.Sprintf("/cart/items/%d", lineID)
	if err := c.do(ctx, token, http.MethodPatch, path, updateItemRequest{Qty: qty}, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveItem deletes a server-assigned cart line.
func (c *Client) RemoveItem(ctx context.Context, token string, lineID int64) (*domain.Cart, error) {
	var cart domain.Cart
	path := fmt.Sprintf("/cart/items/%d", lineID)
	if err := c.do(ctx, token, http.MethodDelete, path, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Merge submits the full guest cart in a single request. The server decides
// what survives (it may drop out-of-stock lines) and returns the merged cart.
func (c *Client) Merge(ctx context.Context, token string, lines []domain.GuestCartLine) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, token, http.MethodPost, "/cart/merge", mergeRequest{GuestItems: lines}, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
