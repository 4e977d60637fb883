// internal/services/pricing_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konisgames/storefront-backend/internal/config"
	"github.com/konisgames/storefront-backend/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Cart: config.CartConfig{
			OpenOnAdd:       true,
			SessionTTL:      120,
			ShippingFlatFee: 4.0,
		},
	}
}

func TestResolveVariant(t *testing.T) {
	pricing := NewPricingService(testConfig())
	product := &models.Product{
		ID:   1,
		Name: "Chrono Trigger",
		Variants: models.VariantList{
			{Label: "Case Only", Price: 12.5},
			{Label: "Complete", Price: 40},
		},
	}

	variant, err := pricing.ResolveVariant(product, 0)
	require.NoError(t, err)
	assert.Equal(t, "Case Only", variant.Label)
	assert.Equal(t, 12.5, variant.Price)

	_, err = pricing.ResolveVariant(product, 2)
	assert.ErrorIs(t, err, ErrVariantNotFound)

	_, err = pricing.ResolveVariant(product, -1)
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestComputeTotalsAdditivity(t *testing.T) {
	pricing := NewPricingService(testConfig())
	lines := []models.OrderLine{
		{Name: "A", Console: "SNES", Category: "Copy", Price: 10, Quantity: 2},
		{Name: "B", Console: "GBA", Category: "Bundle", Price: 15, Quantity: 1},
	}

	subtotal := pricing.ComputeSubtotal(lines)
	assert.Equal(t, 35.0, subtotal)
	assert.Equal(t, 4.0, pricing.ComputeShipping())
	assert.Equal(t, subtotal+pricing.ComputeShipping(), pricing.ComputeTotal(lines))
	assert.Equal(t, 39.0, pricing.ComputeTotal(lines))
	assert.Equal(t, int64(3900), pricing.ToCents(pricing.ComputeTotal(lines)))
}

func TestToCentsRounding(t *testing.T) {
	pricing := NewPricingService(testConfig())

	// Float accumulation must not lose a cent at the boundary.
	lines := []models.OrderLine{
		{Price: 0.1, Quantity: 3},
	}
	assert.Equal(t, int64(30), pricing.ToCents(pricing.ComputeSubtotal(lines)))
	assert.Equal(t, int64(1999), pricing.ToCents(19.99))
	assert.Equal(t, int64(1250), pricing.ToCents(12.5))
}

func TestLowestVariantPrice(t *testing.T) {
	pricing := NewPricingService(testConfig())

	product := &models.Product{
		Variants: models.VariantList{{Label: "Deluxe", Price: 40}},
	}
	lowest, ok := pricing.LowestVariantPrice(product)
	require.True(t, ok)
	assert.Equal(t, 40.0, lowest)

	product.Variants = models.VariantList{
		{Label: "Cover", Price: 8},
		{Label: "Complete", Price: 55.5},
		{Label: "Game", Price: 22},
	}
	lowest, ok = pricing.LowestVariantPrice(product)
	require.True(t, ok)
	assert.Equal(t, 8.0, lowest)

	empty := &models.Product{}
	_, ok = pricing.LowestVariantPrice(empty)
	assert.False(t, ok)
}
