// internal/services/legacy.go
package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/konisgames/storefront-backend/internal/models"
)

// LegacyGameRecord is the wire shape older storefront clients and the
// spreadsheet-backed import use: up to eight positional "label-price" slots
// and three fixed image columns. It exists only at the API boundary; inside
// the service the variants are a typed ordered list.
type LegacyGameRecord struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Console     string  `json:"console"`
	ConsoleURL  string  `json:"console_url,omitempty"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	ImageURL2   string  `json:"imageUrl2,omitempty"`
	ImageURL3   string  `json:"imageUrl3,omitempty"`
	Price1      string  `json:"price1,omitempty"`
	Price2      string  `json:"price2,omitempty"`
	Price3      string  `json:"price3,omitempty"`
	Price4      string  `json:"price4,omitempty"`
	Price5      string  `json:"price5,omitempty"`
	Price6      string  `json:"price6,omitempty"`
	Price7      string  `json:"price7,omitempty"`
	Price8      string  `json:"price8,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	BestSeller  bool    `json:"bestSeller,omitempty"`
}

func (r *LegacyGameRecord) priceSlots() []string {
	return []string{r.Price1, r.Price2, r.Price3, r.Price4, r.Price5, r.Price6, r.Price7, r.Price8}
}

// ParseVariantSlot splits a "label-price" slot on the first dash. Everything
// after that dash must parse as the price, which means a label can never
// contain a dash itself. Malformed slots are an error, never a zero-price
// variant.
func ParseVariantSlot(slot string) (models.Variant, error) {
	idx := strings.Index(slot, "-")
	if idx < 0 {
		return models.Variant{}, fmt.Errorf("variant slot %q has no label-price separator", slot)
	}

	label := slot[:idx]
	priceText := slot[idx+1:]
	price, err := strconv.ParseFloat(strings.TrimSpace(priceText), 64)
	if err != nil {
		return models.Variant{}, fmt.Errorf("variant slot %q has unparseable price %q", slot, priceText)
	}
	if price < 0 {
		return models.Variant{}, fmt.Errorf("variant slot %q has negative price", slot)
	}

	return models.Variant{Label: label, Price: price}, nil
}

// EncodeVariantSlot is the inverse of ParseVariantSlot.
func EncodeVariantSlot(v models.Variant) string {
	return v.Label + "-" + strconv.FormatFloat(v.Price, 'f', -1, 64)
}

// ToProduct decodes a legacy record into the typed product model. Empty
// slots are skipped; slot position is preserved as variant order. Empty
// image columns are dropped.
func (r *LegacyGameRecord) ToProduct() (*models.Product, error) {
	var variants models.VariantList
	for i, slot := range r.priceSlots() {
		if strings.TrimSpace(slot) == "" {
			continue
		}
		variant, err := ParseVariantSlot(slot)
		if err != nil {
			return nil, fmt.Errorf("price%d: %w", i+1, err)
		}
		variants = append(variants, variant)
	}

	var images pq.StringArray
	for _, url := range []string{r.ImageURL, r.ImageURL2, r.ImageURL3} {
		if url != "" {
			images = append(images, url)
		}
	}

	return &models.Product{
		ID:           r.ID,
		Name:         r.Name,
		Console:      r.Console,
		ConsoleURL:   r.ConsoleURL,
		Description:  r.Description,
		Images:       images,
		Variants:     variants,
		Rating:       r.Rating,
		IsBestSeller: r.BestSeller,
	}, nil
}

// FromProduct encodes a product for legacy clients. Variants past the
// eighth slot are dropped, matching the fixed-width wire shape.
func FromProduct(p *models.Product) *LegacyGameRecord {
	record := &LegacyGameRecord{
		ID:          p.ID,
		Name:        p.Name,
		Console:     p.Console,
		ConsoleURL:  p.ConsoleURL,
		Description: p.Description,
		Rating:      p.Rating,
		BestSeller:  p.IsBestSeller,
	}

	images := []*string{&record.ImageURL, &record.ImageURL2, &record.ImageURL3}
	for i, url := range p.Images {
		if i >= len(images) {
			break
		}
		*images[i] = url
	}

	slots := []*string{
		&record.Price1, &record.Price2, &record.Price3, &record.Price4,
		&record.Price5, &record.Price6, &record.Price7, &record.Price8,
	}
	for i, variant := range p.Variants {
		if i >= len(slots) {
			break
		}
		*slots[i] = EncodeVariantSlot(variant)
	}

	return record
}
