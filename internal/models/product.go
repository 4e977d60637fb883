// internal/models/product.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

// Variant is one purchasable configuration of a product, e.g. "Game Only"
// or "Complete with Manual", with its own price.
type Variant struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// VariantList is stored as a JSONB column; the order of entries is the
// display order and the position is the slot identity referenced by cart
// lines.
type VariantList []Variant

func (v VariantList) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (v *VariantList) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("variant list: unsupported scan source")
	}

	return json.Unmarshal(bytes, v)
}

// Product is a catalog entry. IDs are plain integers because the legacy
// catalog feed identifies records that way and the admin tooling relies on
// the max(id)+1 assignment rule.
type Product struct {
	ID           int64          `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Name         string         `json:"name" gorm:"size:255;not null"`
	Console      string         `json:"console" gorm:"size:100;index"`
	ConsoleURL   string         `json:"console_url" gorm:"size:512"`
	Description  string         `json:"description" gorm:"type:text"`
	Images       pq.StringArray `json:"images" gorm:"type:text[]"`
	Variants     VariantList    `json:"variants" gorm:"type:jsonb"`
	Rating       float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	IsBestSeller bool           `json:"is_best_seller" gorm:"default:false"`
}

// VariantAt returns the variant at the given slot, reporting whether the
// slot exists.
func (p *Product) VariantAt(slot int) (Variant, bool) {
	if slot < 0 || slot >= len(p.Variants) {
		return Variant{}, false
	}
	return p.Variants[slot], true
}

// Purchasable reports whether the product has at least one variant. Products
// without one have nothing to sell and are excluded from the public catalog.
func (p *Product) Purchasable() bool {
	return len(p.Variants) > 0
}
