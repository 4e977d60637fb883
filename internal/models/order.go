// internal/models/order.go
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Order is the persisted record of a submitted checkout. Contact fields
// mirror the storefront checkout form; Details carries the serialized line
// items in the same format the payment-link payload uses, so the admin
// read-back and the checkout submission stay bit-compatible.
type Order struct {
	ID            int64       `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Name          string      `json:"name" gorm:"size:255;not null"`
	Address       string      `json:"address" gorm:"size:512;not null"`
	City          string      `json:"city" gorm:"size:100"`
	State         string      `json:"state" gorm:"size:100"`
	Postal        string      `json:"postal" gorm:"size:20"`
	Phone         string      `json:"phone" gorm:"size:30;not null"`
	Email         string      `json:"email" gorm:"size:255;not null;index"`
	Notes         string      `json:"notes" gorm:"type:text"`
	Details       string      `json:"details" gorm:"type:text;not null"`
	SubtotalCents int64       `json:"subtotal_cents" gorm:"not null"`
	ShippingCents int64       `json:"shipping_cents" gorm:"not null"`
	TotalCents    int64       `json:"total_cents" gorm:"not null"`
	Status        OrderStatus `json:"status" gorm:"type:varchar(20);default:'submitted';index"`
	Paid          bool        `json:"pago" gorm:"default:false;index"`
	PaymentRef    string      `json:"pago_id" gorm:"size:255"`
}

// OrderLine is one resolved line item of an order: the product identity and
// the variant label/price as they were at submission time.
type OrderLine struct {
	Name     string  `json:"name"`
	Console  string  `json:"console"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// EncodeOrderLines serializes lines as
// "<name>,<console>,<label>,<unitPrice>,<quantity>" joined by ";". This is
// the wire format of the payment-link webhook and the persisted Details
// column; do not change one side without the other.
func EncodeOrderLines(lines []OrderLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s,%s,%s,%s,%d",
			l.Name, l.Console, l.Category,
			strconv.FormatFloat(l.Price, 'f', -1, 64), l.Quantity))
	}
	return strings.Join(parts, ";")
}

// DecodeOrderLines parses a Details string back into lines. Entries with
// fewer than five fields are skipped rather than failing the whole order;
// the format has no escaping, so a field containing the separator cannot be
// recovered.
func DecodeOrderLines(details string) []OrderLine {
	if details == "" {
		return nil
	}

	var lines []OrderLine
	for _, item := range strings.Split(details, ";") {
		parts := strings.Split(item, ",")
		if len(parts) < 5 {
			continue
		}

		price, _ := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		quantity, err := strconv.Atoi(strings.TrimSpace(parts[4]))
		if err != nil || quantity < 1 {
			quantity = 1
		}

		lines = append(lines, OrderLine{
			Name:     strings.TrimSpace(parts[0]),
			Console:  strings.TrimSpace(parts[1]),
			Category: strings.TrimSpace(parts[2]),
			Price:    price,
			Quantity: quantity,
		})
	}
	return lines
}
