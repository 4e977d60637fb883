// internal/services/paymentlink_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"

	"github.com/konisgames/storefront-backend/internal/config"
	"github.com/konisgames/storefront-backend/internal/models"
)

// PaymentLinkRequest carries everything the provider needs to mint a URL
// where the buyer completes payment. Amounts are integer cents.
type PaymentLinkRequest struct {
	AmountCents int64
	Name        string
	Address     string
	City        string
	State       string
	Postal      string
	Phone       string
	Email       string
	Notes       string
	Details     string
	Lines       []models.OrderLine
}

// PaymentLinkProvider mints a redirect URL for an order. The storefront is
// a payment-link initiator, not a processor: it never sees card data and is
// not told whether the external payment completes.
type PaymentLinkProvider interface {
	CreatePaymentLink(ctx context.Context, req *PaymentLinkRequest) (string, error)
}

// NewPaymentLinkProvider selects the provider from config.
func NewPaymentLinkProvider(cfg *config.Config) PaymentLinkProvider {
	if cfg.Payment.Provider == "stripe" {
		return NewStripePaymentLinkService(cfg)
	}
	return NewWebhookPaymentLinkService(cfg)
}

// WebhookPaymentLinkService posts orders to an external workflow-automation
// webhook. The payload field names and the detalles line format are the
// webhook's contract and must not drift.
type WebhookPaymentLinkService struct {
	config     *config.Config
	httpClient *http.Client
}

func NewWebhookPaymentLinkService(cfg *config.Config) *WebhookPaymentLinkService {
	return &WebhookPaymentLinkService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Payment.RequestTimeout) * time.Second,
		},
	}
}

type webhookPayload struct {
	Precio    int64  `json:"precio"`
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Correo    string `json:"correo"`
	Notas     string `json:"notas"`
	Detalles  string `json:"detalles"`
}

func (s *WebhookPaymentLinkService) CreatePaymentLink(ctx context.Context, req *PaymentLinkRequest) (string, error) {
	if req.AmountCents <= 0 {
		return "", ErrInvalidAmount
	}

	direccion := req.Address
	if req.City != "" {
		direccion += ", " + req.City
	}
	if req.State != "" {
		direccion += ", " + req.State
	}
	if req.Postal != "" {
		direccion += " " + req.Postal
	}

	body, err := json.Marshal(webhookPayload{
		Precio:    req.AmountCents,
		Nombre:    req.Name,
		Direccion: direccion,
		Telefono:  req.Phone,
		Correo:    req.Email,
		Notas:     req.Notes,
		Detalles:  req.Details,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Payment.PaymentLinkURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentLinkFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrPaymentLinkFailed, resp.StatusCode)
	}

	// Success response is a one-element JSON array whose first element
	// carries the redirect URL. Anything else is a contract violation and
	// is treated like a transport failure.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentLinkFailed, err)
	}

	var parsed []struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: malformed response body", ErrPaymentLinkFailed)
	}
	if len(parsed) == 0 || parsed[0].URL == "" {
		return "", fmt.Errorf("%w: response missing redirect url", ErrPaymentLinkFailed)
	}

	return parsed[0].URL, nil
}

// StripePaymentLinkService creates a Stripe Checkout session per order and
// returns its hosted URL. Line items are itemized from the resolved cart;
// shipping rides as its own line.
type StripePaymentLinkService struct {
	config *config.Config
}

func NewStripePaymentLinkService(cfg *config.Config) *StripePaymentLinkService {
	stripe.Key = cfg.Payment.StripeSecretKey
	return &StripePaymentLinkService{config: cfg}
}

func (s *StripePaymentLinkService) CreatePaymentLink(ctx context.Context, req *PaymentLinkRequest) (string, error) {
	if req.AmountCents <= 0 {
		return "", ErrInvalidAmount
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Lines)+1)
	for _, line := range req.Lines {
		name := line.Name
		if line.Category != "" {
			name = fmt.Sprintf("%s (%s)", line.Name, line.Category)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(int64(line.Price*100 + 0.5)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(name),
				},
			},
			Quantity: stripe.Int64(int64(line.Quantity)),
		})
	}
	lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String("usd"),
			UnitAmount: stripe.Int64(req.AmountCents - subtotalCents(req.Lines)),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String("Shipping"),
			},
		},
		Quantity: stripe.Int64(1),
	})

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:     lineItems,
		SuccessURL:    stripe.String(s.config.Payment.SuccessURL),
		CancelURL:     stripe.String(s.config.Payment.CancelURL),
		CustomerEmail: stripe.String(req.Email),
	}
	params.Context = ctx
	params.AddMetadata("customer_name", req.Name)
	params.AddMetadata("details", req.Details)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentLinkFailed, err)
	}
	return sess.URL, nil
}

func subtotalCents(lines []models.OrderLine) int64 {
	cents := int64(0)
	for _, line := range lines {
		cents += int64(line.Price*100+0.5) * int64(line.Quantity)
	}
	return cents
}
