// internal/models/cart.go
package models

import "time"

// CartItem is one cart line, identified by product and variant index. Price
// is not stored here; it is resolved against the current product record when
// the cart is read or checked out.
type CartItem struct {
	ProductID    int64 `json:"product_id"`
	VariantIndex int   `json:"variant_index"`
	Quantity     int   `json:"quantity"`
}

// SameLine reports whether other addresses the same (product, variant) pair.
// Lines that match are merged instead of duplicated.
func (i CartItem) SameLine(other CartItem) bool {
	return i.ProductID == other.ProductID && i.VariantIndex == other.VariantIndex
}

// Cart is a session cart, keyed by an opaque token issued to the client.
// Carts live in memory only; an order row is the durable artifact.
type Cart struct {
	Token     string     `json:"token"`
	Items     []CartItem `json:"items"`
	Open      bool       `json:"open"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ItemCount returns the total unit count across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
