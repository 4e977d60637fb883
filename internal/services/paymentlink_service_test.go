// internal/services/paymentlink_service_test.go
package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konisgames/storefront-backend/internal/config"
)

func webhookConfig(url string) *config.Config {
	cfg := testConfig()
	cfg.Payment = config.PaymentConfig{
		Provider:       "webhook",
		PaymentLinkURL: url,
		RequestTimeout: 5,
	}
	return cfg
}

func samplePaymentRequest() *PaymentLinkRequest {
	return &PaymentLinkRequest{
		AmountCents: 15900,
		Name:        "Jordan Rivera",
		Address:     "12 Elm St",
		City:        "Springfield",
		State:       "IL",
		Postal:      "62704",
		Phone:       "5551234567",
		Email:       "jordan@example.com",
		Notes:       "leave at door",
		Details:     "Pokemon Emerald,GBA,Cartridge,35,1;Earthbound,SNES,Cartridge,120,1",
	}
}

func TestWebhookPayloadContract(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"url":"https://pay.example/session/abc"}]`))
	}))
	defer server.Close()

	svc := NewWebhookPaymentLinkService(webhookConfig(server.URL))
	url, err := svc.CreatePaymentLink(context.Background(), samplePaymentRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session/abc", url)

	assert.Equal(t, float64(15900), captured["precio"])
	assert.Equal(t, "Jordan Rivera", captured["nombre"])
	assert.Equal(t, "12 Elm St, Springfield, IL 62704", captured["direccion"])
	assert.Equal(t, "5551234567", captured["telefono"])
	assert.Equal(t, "jordan@example.com", captured["correo"])
	assert.Equal(t, "leave at door", captured["notas"])
	assert.Equal(t, "Pokemon Emerald,GBA,Cartridge,35,1;Earthbound,SNES,Cartridge,120,1", captured["detalles"])
}

func TestWebhookNon2xxFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewWebhookPaymentLinkService(webhookConfig(server.URL))
	_, err := svc.CreatePaymentLink(context.Background(), samplePaymentRequest())
	assert.ErrorIs(t, err, ErrPaymentLinkFailed)
}

func TestWebhookMalformedResponseFails(t *testing.T) {
	cases := map[string]string{
		"not json":     `oops`,
		"empty array":  `[]`,
		"missing url":  `[{"link":"x"}]`,
		"empty url":    `[{"url":""}]`,
		"object shape": `{"url":"https://pay.example/x"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			svc := NewWebhookPaymentLinkService(webhookConfig(server.URL))
			_, err := svc.CreatePaymentLink(context.Background(), samplePaymentRequest())
			assert.ErrorIs(t, err, ErrPaymentLinkFailed)
		})
	}
}

func TestWebhookRejectsNonPositiveAmount(t *testing.T) {
	svc := NewWebhookPaymentLinkService(webhookConfig("http://127.0.0.1:1"))

	req := samplePaymentRequest()
	req.AmountCents = 0
	_, err := svc.CreatePaymentLink(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
