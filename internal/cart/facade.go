// Package cart presents one cart to the rest of the application regardless
// of authentication state. It owns the single authenticated-vs-guest branch
// point and the login-time merge; callers never re-implement that decision.
package cart

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/jaee/storefront/internal/cache"
	"github.com/jaee/storefront/internal/domain"
	"github.com/jaee/storefront/internal/guestcart"
	"golang.org/x/sync/singleflight"
)

// ShopAPI is the slice of the shop API client the facade needs.
type ShopAPI interface {
	Cart(ctx context.Context, token string) (*domain.Cart, error)
	AddItem(ctx context.Context, token string, productID int64, qty int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, token string, lineID int64, qty int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, token string, lineID int64) (*domain.Cart, error)
	Merge(ctx context.Context, token string, lines []domain.GuestCartLine) (*domain.Cart, error)
	Product(ctx context.Context, id int64) (*domain.Product, error)
}

var ErrInvalidQty = guestcart.ErrInvalidQty

type Facade struct {
	api   ShopAPI
	cache cache.CartCache
	guest guestcart.Store
	sfg   singleflight.Group // Prevents cache stampede
}

func NewFacade(api ShopAPI, c cache.CartCache, guest guestcart.Store) *Facade {
	return &Facade{
		api:   api,
		cache: c,
		guest: guest,
	}
}

// Get returns the caller's cart. Authenticated sessions read through the
// cache from the shop API; guests get a view computed from guest lines
// joined against the catalog.
func (f *Facade) Get(ctx context.Context, sess domain.Session) (*domain.Cart, error) {
	if !sess.Authenticated() {
		return f.guestView(ctx, sess.GuestID)
	}

	v, err, _ := f.sfg.Do(cacheGroupKey(sess.UserID), func() (interface{}, error) {
		cached, errCache := f.cache.Get(ctx, sess.UserID)
		if errCache == nil {
			return cached, nil
		}
		if !errors.Is(errCache, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", errCache) // log cache error but continue
		}

		remote, errGet := f.api.Cart(ctx, sess.Token)
		if errGet != nil {
			return nil, errGet
		}

		// Written before the flight returns: a later mutation's
		// invalidation can then never be overtaken by this write and
		// resurrect a pre-mutation cart.
		if errSet := f.cache.Set(ctx, sess.UserID, remote); errSet != nil {
			log.Printf("cache set error: %v", errSet)
		}

		return remote, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem adds a product for either cart mode. Quantity is validated before
// any network or storage call.
func (f *Facade) AddItem(ctx context.Context, sess domain.Session, productID int64, qty int) (*domain.Cart, error) {
	if qty < 1 {
		return nil, ErrInvalidQty
	}

	if !sess.Authenticated() {
		if err := f.guest.Add(ctx, sess.GuestID, productID, qty); err != nil {
			return nil, err
		}
		return f.guestView(ctx, sess.GuestID)
	}

	updated, err := f.api.AddItem(ctx, sess.Token, productID, qty)
	if err != nil {
		return nil, err
	}
	f.invalidate(sess.UserID)
	return updated, nil
}

// UpdateItem changes a line's quantity. Authenticated carts address lines by
// server-assigned id; guest carts by product id.
func (f *Facade) UpdateItem(ctx context.Context, sess domain.Session, lineID, productID int64, qty int) (*domain.Cart, error) {
	if !sess.Authenticated() {
		if err := f.guest.SetQuantity(ctx, sess.GuestID, productID, qty); err != nil {
			return nil, err
		}
		return f.guestView(ctx, sess.GuestID)
	}

	if qty < 1 {
		return nil, ErrInvalidQty
	}
	updated, err := f.api.UpdateItem(ctx, sess.Token, lineID, qty)
	if err != nil {
		return nil, err
	}
	f.invalidate(sess.UserID)
	return updated, nil
}

// RemoveItem drops a line from either cart mode.
func (f *Facade) RemoveItem(ctx context.Context, sess domain.Session, lineID, productID int64) (*domain.Cart, error) {
	if !sess.Authenticated() {
		if err := f.guest.Remove(ctx, sess.GuestID, productID); err != nil {
			return nil, err
		}
		return f.guestView(ctx, sess.GuestID)
	}

	updated, err := f.api.RemoveItem(ctx, sess.Token, lineID)
	if err != nil {
		return nil, err
	}
	f.invalidate(sess.UserID)
	return updated, nil
}

// Count returns the badge count. For guests it comes straight from the
// stored quantities, with no product lookups.
func (f *Facade) Count(ctx context.Context, sess domain.Session) (int, error) {
	if !sess.Authenticated() {
		return f.guest.Count(ctx, sess.GuestID)
	}

	cart, err := f.Get(ctx, sess)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount, nil
}

// Invalidate drops the cached remote cart. Called after a successful payment
// verification, when the server has already cleared the cart.
func (f *Facade) Invalidate(_ context.Context, sess domain.Session) {
	if !sess.Authenticated() {
		return
	}
	f.invalidate(sess.UserID)
}

// guestView joins guest lines against the catalog. A line whose product
// lookup fails (deleted, inactive) is dropped from the view, not an error.
func (f *Facade) guestView(ctx context.Context, guestID string) (*domain.Cart, error) {
	stored, err := f.guest.Get(ctx, guestID)
	if err != nil {
		if errors.Is(err, guestcart.ErrCartNotFound) {
			return &domain.Cart{}, nil
		}
		return nil, err
	}

	view := &domain.Cart{}
	for _, line := range stored.Lines {
		product, errProduct := f.api.Product(ctx, line.ProductID)
		if errProduct != nil {
			log.Printf("dropping guest cart line for product %d: %v", line.ProductID, errProduct)
			continue
		}
		if !product.Active {
			continue
		}

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		view.Lines = append(view.Lines, domain.CartLine{
			ProductID:    line.ProductID,
			ProductName:  product.Name,
			ProductSlug:  product.Slug,
			ProductImage: image,
			UnitPrice:    product.Price,
			Qty:          line.Qty,
			Subtotal:     product.Price * float64(line.Qty),
			InStock:      product.InStock,
			AvailableQty: product.StockQty,
		})
		view.Subtotal += product.Price * float64(line.Qty)
		view.ItemCount += line.Qty
	}
	return view, nil
}

// invalidate is synchronous with respect to the mutation that triggered it:
// a read issued after the mutation returns must not see stale data.
func (f *Facade) invalidate(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

func cacheGroupKey(userID int64) string {
	return "cart:" + strconv.FormatInt(userID, 10)
}
