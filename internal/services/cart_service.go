// internal/services/cart_service.go
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/konisgames/storefront-backend/internal/config"
	"github.com/konisgames/storefront-backend/internal/models"
	"github.com/konisgames/storefront-backend/internal/utils"
)

// ProductLookup is the catalog read surface the cart and checkout need.
type ProductLookup interface {
	GetProduct(id int64) (*models.Product, error)
}

type cartEntry struct {
	cart     models.Cart
	lastSeen time.Time
}

// CartService owns all session carts. Carts are in-memory only; the durable
// record of a purchase is the order row written at checkout. Every mutation
// goes through this service under one mutex, so no two requests can
// interleave updates to the same cart.
type CartService struct {
	config   *config.Config
	pricing  *PricingService
	products ProductLookup

	mtx   sync.Mutex
	carts map[string]*cartEntry
}

func NewCartService(config *config.Config, pricing *PricingService, products ProductLookup) *CartService {
	s := &CartService{
		config:   config,
		pricing:  pricing,
		products: products,
		carts:    make(map[string]*cartEntry),
	}

	// Expire abandoned carts periodically
	go s.cleanupCarts()

	return s
}

func (s *CartService) cleanupCarts() {
	ttl := time.Duration(s.config.Cart.SessionTTL) * time.Minute
	for {
		time.Sleep(time.Minute)
		s.mtx.Lock()
		for token, entry := range s.carts {
			if time.Since(entry.lastSeen) > ttl {
				delete(s.carts, token)
			}
		}
		s.mtx.Unlock()
	}
}

// getOrCreateLocked returns the live entry for token, creating it if the
// token is unknown or empty. Caller must hold s.mtx.
func (s *CartService) getOrCreateLocked(token string) (*cartEntry, error) {
	if token != "" {
		if entry, exists := s.carts[token]; exists {
			entry.lastSeen = time.Now()
			return entry, nil
		}
	}

	if token == "" {
		generated, err := utils.GenerateCartToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate cart token: %w", err)
		}
		token = generated
	}

	now := time.Now()
	entry := &cartEntry{
		cart: models.Cart{
			Token:     token,
			CreatedAt: now,
			UpdatedAt: now,
		},
		lastSeen: now,
	}
	s.carts[token] = entry
	return entry, nil
}

func copyCart(c *models.Cart) *models.Cart {
	out := *c
	out.Items = make([]models.CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}

// GetOrCreate returns a snapshot of the cart for token, issuing a new cart
// (and token) when the token is empty or expired.
func (s *CartService) GetOrCreate(token string) (*models.Cart, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	entry, err := s.getOrCreateLocked(token)
	if err != nil {
		return nil, err
	}
	return copyCart(&entry.cart), nil
}

// AddItem adds one unit of (productID, variantIndex) to the cart. A line
// for the same pair already in the cart gains quantity instead of a
// duplicate line being appended. The product and variant are validated
// against the catalog before the cart changes at all.
func (s *CartService) AddItem(token string, productID int64, variantIndex int) (*models.Cart, error) {
	product, err := s.products.GetProduct(productID)
	if err != nil {
		return nil, err
	}
	if _, ok := product.VariantAt(variantIndex); !ok {
		return nil, fmt.Errorf("product %d variant %d: %w", productID, variantIndex, ErrVariantNotFound)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	entry, err := s.getOrCreateLocked(token)
	if err != nil {
		return nil, err
	}

	item := models.CartItem{ProductID: productID, VariantIndex: variantIndex, Quantity: 1}
	merged := false
	for i := range entry.cart.Items {
		if entry.cart.Items[i].SameLine(item) {
			entry.cart.Items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		entry.cart.Items = append(entry.cart.Items, item)
	}

	if s.config.Cart.OpenOnAdd {
		entry.cart.Open = true
	}
	entry.cart.UpdatedAt = time.Now()
	return copyCart(&entry.cart), nil
}

// RemoveItem deletes the matching line. Removing a line that is not in the
// cart is a no-op, not an error.
func (s *CartService) RemoveItem(token string, productID int64, variantIndex int) (*models.Cart, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	entry, err := s.getOrCreateLocked(token)
	if err != nil {
		return nil, err
	}

	target := models.CartItem{ProductID: productID, VariantIndex: variantIndex}
	for i := range entry.cart.Items {
		if entry.cart.Items[i].SameLine(target) {
			entry.cart.Items = append(entry.cart.Items[:i], entry.cart.Items[i+1:]...)
			entry.cart.UpdatedAt = time.Now()
			break
		}
	}
	return copyCart(&entry.cart), nil
}

// UpdateQuantity sets the line's quantity to max(0, quantity); a line
// driven to zero is removed, never kept around empty.
func (s *CartService) UpdateQuantity(token string, productID int64, variantIndex, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		quantity = 0
	}
	if quantity == 0 {
		return s.RemoveItem(token, productID, variantIndex)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	entry, err := s.getOrCreateLocked(token)
	if err != nil {
		return nil, err
	}

	target := models.CartItem{ProductID: productID, VariantIndex: variantIndex}
	for i := range entry.cart.Items {
		if entry.cart.Items[i].SameLine(target) {
			entry.cart.Items[i].Quantity = quantity
			entry.cart.UpdatedAt = time.Now()
			break
		}
	}
	return copyCart(&entry.cart), nil
}

// SetOpen records the cart drawer's visibility.
func (s *CartService) SetOpen(token string, open bool) (*models.Cart, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	entry, err := s.getOrCreateLocked(token)
	if err != nil {
		return nil, err
	}
	entry.cart.Open = open
	return copyCart(&entry.cart), nil
}

// Clear empties the cart but keeps the token alive.
func (s *CartService) Clear(token string) (*models.Cart, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	entry, err := s.getOrCreateLocked(token)
	if err != nil {
		return nil, err
	}
	entry.cart.Items = nil
	entry.cart.UpdatedAt = time.Now()
	return copyCart(&entry.cart), nil
}

// CartTotals is a priced view of a cart.
type CartTotals struct {
	Lines         []models.OrderLine `json:"lines"`
	Subtotal      float64            `json:"subtotal"`
	Shipping      float64            `json:"shipping"`
	Total         float64            `json:"total"`
	SubtotalCents int64              `json:"subtotal_cents"`
	TotalCents    int64              `json:"total_cents"`
}

// ResolveTotals prices every cart line against the current catalog. Prices
// are not stored on the cart, so a catalog edit between renders is always
// reflected here. A line whose product or variant has disappeared fails the
// resolution; callers decide whether to surface or drop it.
func (s *CartService) ResolveTotals(cart *models.Cart) (*CartTotals, error) {
	lines := make([]models.OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, err := s.products.GetProduct(item.ProductID)
		if err != nil {
			return nil, err
		}
		variant, err := s.pricing.ResolveVariant(product, item.VariantIndex)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.OrderLine{
			Name:     product.Name,
			Console:  product.Console,
			Category: variant.Label,
			Price:    variant.Price,
			Quantity: item.Quantity,
		})
	}

	subtotal := s.pricing.ComputeSubtotal(lines)
	shipping := s.pricing.ComputeShipping()
	total := subtotal + shipping

	return &CartTotals{
		Lines:         lines,
		Subtotal:      subtotal,
		Shipping:      shipping,
		Total:         total,
		SubtotalCents: s.pricing.ToCents(subtotal),
		TotalCents:    s.pricing.ToCents(total),
	}, nil
}
