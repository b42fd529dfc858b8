package shopapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jaee/storefront/internal/domain"
)

// Product fetches a single catalog entry, used to price guest cart lines.
func (c *Client) Product(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	path := fmt.Sprintf("/products/%d", id)
	if err := c.do(ctx, "", http.MethodGet, path, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
