package domain

import "time"

// GuestCartLine is a single product entry in an anonymous visitor's cart.
// Lines are unique by product and invisible to the shop API until merged
// at login.
type GuestCartLine struct {
	ProductID int64 `json:"productId" bson:"product_id"`
	Qty       int   `json:"qty" bson:"qty"`
}

// GuestCart is the cart of an unauthenticated visitor, keyed by session.
type GuestCart struct {
	ID        string          `bson:"_id,omitempty"`
	SessionID string          `bson:"session_id"`
	Lines     []GuestCartLine `bson:"lines"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

// Count returns the total quantity across all lines.
func (c *GuestCart) Count() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Qty
	}
	return total
}

// CartLine is a server-owned cart line. Price, stock and subtotal come from
// the shop API and are never computed locally.
type CartLine struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductSlug  string  `json:"productSlug"`
	ProductImage string  `json:"productImage"`
	UnitPrice    float64 `json:"unitPrice"`
	Qty          int     `json:"qty"`
	Subtotal     float64 `json:"subtotal"`
	InStock      bool    `json:"inStock"`
	AvailableQty int     `json:"availableQty"`
}

// Cart is the authenticated user's cart as reported by the shop API. For
// guests the facade synthesizes one from guest lines joined against the
// catalog; synthesized lines have a zero ID.
type Cart struct {
	ID        int64      `json:"id"`
	Lines     []CartLine `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	ItemCount int        `json:"itemCount"`
}

// Product is the catalog entry used to price guest cart lines.
type Product struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Price    float64  `json:"price"`
	Currency string   `json:"currency"`
	Images   []string `json:"images"`
	StockQty int      `json:"stockQty"`
	InStock  bool     `json:"inStock"`
	Active   bool     `json:"active"`
}

// Session identifies the caller. Exactly one cart representation is
// authoritative per session: the guest store while anonymous, the remote
// cart once authenticated.
type Session struct {
	UserID  int64
	GuestID string
	Token   string
}

func (s Session) Authenticated() bool {
	return s.UserID != 0 && s.Token != ""
}
