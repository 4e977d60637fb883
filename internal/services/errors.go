// internal/services/errors.go
package services

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrVariantNotFound    = errors.New("variant not found")
	ErrCartNotFound       = errors.New("cart not found")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrCheckoutInFlight   = errors.New("checkout submission already in progress")
	ErrCheckoutNotStarted = errors.New("checkout has not been started")
	ErrPaymentLinkFailed  = errors.New("payment link creation failed")
	ErrStaleCheckout      = errors.New("checkout state changed during submission")
	ErrInvalidAmount      = errors.New("invalid payment amount")
	ErrOrderNotFound      = errors.New("order not found")
)
