// internal/services/cart_service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konisgames/storefront-backend/internal/models"
)

// stubCatalog implements ProductLookup from a fixed product map.
type stubCatalog struct {
	products map[int64]*models.Product
}

func (s *stubCatalog) GetProduct(id int64) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return product, nil
}

func testCatalog() *stubCatalog {
	return &stubCatalog{products: map[int64]*models.Product{
		1: {
			ID:      1,
			Name:    "Pokemon Emerald",
			Console: "GBA",
			Variants: models.VariantList{
				{Label: "Cartridge", Price: 35},
				{Label: "Complete in Box", Price: 89.99},
			},
		},
		2: {
			ID:      2,
			Name:    "Earthbound",
			Console: "SNES",
			Variants: models.VariantList{
				{Label: "Cartridge", Price: 120},
			},
		},
	}}
}

func newTestCartService() *CartService {
	cfg := testConfig()
	return NewCartService(cfg, NewPricingService(cfg), testCatalog())
}

func TestAddItemMergesSameLine(t *testing.T) {
	svc := newTestCartService()

	cart, err := svc.AddItem("", 1, 0)
	require.NoError(t, err)
	require.NotEmpty(t, cart.Token)
	token := cart.Token

	cart, err = svc.AddItem(token, 1, 0)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, cart.Open, "adding opens the drawer")
}

func TestAddItemDistinctVariantsStayDistinct(t *testing.T) {
	svc := newTestCartService()

	cart, err := svc.AddItem("", 1, 0)
	require.NoError(t, err)
	token := cart.Token

	cart, err = svc.AddItem(token, 1, 1)
	require.NoError(t, err)
	cart, err = svc.AddItem(token, 2, 0)
	require.NoError(t, err)

	require.Len(t, cart.Items, 3)
	assert.Equal(t, models.CartItem{ProductID: 1, VariantIndex: 0, Quantity: 1}, cart.Items[0])
	assert.Equal(t, models.CartItem{ProductID: 1, VariantIndex: 1, Quantity: 1}, cart.Items[1])
	assert.Equal(t, models.CartItem{ProductID: 2, VariantIndex: 0, Quantity: 1}, cart.Items[2])
}

func TestAddItemValidatesBeforeMutating(t *testing.T) {
	svc := newTestCartService()

	cart, err := svc.AddItem("", 1, 0)
	require.NoError(t, err)
	token := cart.Token

	_, err = svc.AddItem(token, 99, 0)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.AddItem(token, 1, 5)
	assert.ErrorIs(t, err, ErrVariantNotFound)

	cart, err = svc.GetOrCreate(token)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "failed adds must not touch the cart")
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestUpdateQuantityClampsAndRemoves(t *testing.T) {
	svc := newTestCartService()

	cart, err := svc.AddItem("", 1, 0)
	require.NoError(t, err)
	token := cart.Token

	cart, err = svc.UpdateQuantity(token, 1, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	// Zero and negative both drive the line out of the cart.
	cart, err = svc.UpdateQuantity(token, 1, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	cart, err = svc.AddItem(token, 1, 0)
	require.NoError(t, err)
	cart, err = svc.UpdateQuantity(token, 1, 0, -3)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestRemoveItemMissingLineIsNoop(t *testing.T) {
	svc := newTestCartService()

	cart, err := svc.AddItem("", 1, 0)
	require.NoError(t, err)
	token := cart.Token

	cart, err = svc.RemoveItem(token, 2, 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	cart, err = svc.RemoveItem(token, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestClearKeepsToken(t *testing.T) {
	svc := newTestCartService()

	cart, err := svc.AddItem("", 1, 0)
	require.NoError(t, err)
	token := cart.Token

	cart, err = svc.Clear(token)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, token, cart.Token)
}

func TestResolveTotalsPricesFromCatalog(t *testing.T) {
	svc := newTestCartService()

	cart, err := svc.AddItem("", 1, 0)
	require.NoError(t, err)
	token := cart.Token
	cart, err = svc.AddItem(token, 1, 0)
	require.NoError(t, err)
	cart, err = svc.AddItem(token, 2, 0)
	require.NoError(t, err)

	totals, err := svc.ResolveTotals(cart)
	require.NoError(t, err)

	require.Len(t, totals.Lines, 2)
	assert.Equal(t, models.OrderLine{Name: "Pokemon Emerald", Console: "GBA", Category: "Cartridge", Price: 35, Quantity: 2}, totals.Lines[0])
	assert.Equal(t, 190.0, totals.Subtotal)
	assert.Equal(t, 4.0, totals.Shipping)
	assert.Equal(t, 194.0, totals.Total)
	assert.Equal(t, int64(19400), totals.TotalCents)
}
