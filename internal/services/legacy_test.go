// internal/services/legacy_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konisgames/storefront-backend/internal/models"
)

func TestParseVariantSlot(t *testing.T) {
	variant, err := ParseVariantSlot("Case Only-12.50")
	require.NoError(t, err)
	assert.Equal(t, "Case Only", variant.Label)
	assert.Equal(t, 12.5, variant.Price)

	// Split on the first dash only; the remainder is the price.
	variant, err = ParseVariantSlot("Deluxe-40")
	require.NoError(t, err)
	assert.Equal(t, "Deluxe", variant.Label)
	assert.Equal(t, 40.0, variant.Price)

	_, err = ParseVariantSlot("no separator here")
	assert.Error(t, err)

	_, err = ParseVariantSlot("Cover + Case - Deluxe-25")
	assert.Error(t, err, "everything after the first dash must parse as the price")

	_, err = ParseVariantSlot("Game--5")
	assert.Error(t, err)
}

func TestLegacyRecordToProduct(t *testing.T) {
	record := &LegacyGameRecord{
		ID:       7,
		Name:     "Pokemon Emerald",
		Console:  "GBA",
		ImageURL: "https://cdn.example/emerald.jpg",
		Price1:   "Cartridge-35",
		Price3:   "Complete in Box-89.99",
	}

	product, err := record.ToProduct()
	require.NoError(t, err)
	assert.Equal(t, int64(7), product.ID)
	require.Len(t, product.Variants, 2)
	assert.Equal(t, models.Variant{Label: "Cartridge", Price: 35}, product.Variants[0])
	assert.Equal(t, models.Variant{Label: "Complete in Box", Price: 89.99}, product.Variants[1])
	assert.Equal(t, []string{"https://cdn.example/emerald.jpg"}, []string(product.Images))
}

func TestLegacyRecordToProductMalformedSlot(t *testing.T) {
	record := &LegacyGameRecord{
		ID:     3,
		Name:   "Broken",
		Price1: "Cartridge-35",
		Price2: "just a label",
	}

	_, err := record.ToProduct()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price2")
}

func TestLegacyRoundTrip(t *testing.T) {
	product := &models.Product{
		ID:      12,
		Name:    "Earthbound",
		Console: "SNES",
		Variants: models.VariantList{
			{Label: "Cartridge", Price: 45},
			{Label: "Complete", Price: 120.5},
		},
	}

	record := FromProduct(product)
	assert.Equal(t, "Cartridge-45", record.Price1)
	assert.Equal(t, "Complete-120.5", record.Price2)
	assert.Empty(t, record.Price3)

	back, err := record.ToProduct()
	require.NoError(t, err)
	assert.Equal(t, product.Variants, back.Variants)
}
