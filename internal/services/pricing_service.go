// internal/services/pricing_service.go
package services

import (
	"fmt"
	"math"

	"github.com/konisgames/storefront-backend/internal/config"
	"github.com/konisgames/storefront-backend/internal/models"
)

// PricingService resolves variant prices and folds carts into totals. It is
// pure except for the flat shipping fee read from config; totals stay in
// float64 and are rounded once, at the cents boundary, never per line.
type PricingService struct {
	config *config.Config
}

func NewPricingService(config *config.Config) *PricingService {
	return &PricingService{config: config}
}

// ResolveVariant returns the variant at the given index. A missing index is
// reported as an error, never priced at zero; data-entry defects should
// surface, not sell product for free.
func (s *PricingService) ResolveVariant(product *models.Product, index int) (models.Variant, error) {
	variant, ok := product.VariantAt(index)
	if !ok {
		return models.Variant{}, fmt.Errorf("product %d variant %d: %w", product.ID, index, ErrVariantNotFound)
	}
	return variant, nil
}

// ComputeSubtotal sums unit price times quantity over resolved lines.
func (s *PricingService) ComputeSubtotal(lines []models.OrderLine) float64 {
	subtotal := 0.0
	for _, line := range lines {
		subtotal += line.Price * float64(line.Quantity)
	}
	return subtotal
}

// ComputeShipping returns the flat fee charged on every order regardless of
// cart contents or destination.
func (s *PricingService) ComputeShipping() float64 {
	return s.config.Cart.ShippingFlatFee
}

func (s *PricingService) ComputeTotal(lines []models.OrderLine) float64 {
	return s.ComputeSubtotal(lines) + s.ComputeShipping()
}

// ToCents converts a currency amount to integer minor units.
func (s *PricingService) ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// LowestVariantPrice returns the cheapest purchasable price for a product,
// used for catalog sort-by-price. The second return is false when the
// product has no variants at all; callers must not display the zero value.
func (s *PricingService) LowestVariantPrice(product *models.Product) (float64, bool) {
	if len(product.Variants) == 0 {
		return 0, false
	}

	lowest := math.Inf(1)
	for _, variant := range product.Variants {
		if variant.Price < lowest {
			lowest = variant.Price
		}
	}
	return lowest, true
}
