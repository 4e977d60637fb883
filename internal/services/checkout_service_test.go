// internal/services/checkout_service_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konisgames/storefront-backend/internal/models"
)

// fakeProvider counts calls and returns a canned URL or error.
type fakeProvider struct {
	mtx     sync.Mutex
	calls   int
	lastReq *PaymentLinkRequest
	url     string
	err     error

	// When set, CreatePaymentLink blocks until the channel is closed.
	block chan struct{}
}

func (p *fakeProvider) CreatePaymentLink(ctx context.Context, req *PaymentLinkRequest) (string, error) {
	p.mtx.Lock()
	p.calls++
	p.lastReq = req
	block := p.block
	p.mtx.Unlock()

	if block != nil {
		<-block
	}
	if p.err != nil {
		return "", p.err
	}
	return p.url, nil
}

func (p *fakeProvider) callCount() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.calls
}

// memoryRecorder assigns sequential order IDs in memory.
type memoryRecorder struct {
	mtx    sync.Mutex
	orders []*models.Order
	err    error
}

func (r *memoryRecorder) RecordOrder(order *models.Order) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.err != nil {
		return r.err
	}
	order.ID = int64(len(r.orders) + 1)
	r.orders = append(r.orders, order)
	return nil
}

func newTestCheckout(provider PaymentLinkProvider, recorder OrderRecorder) (*CheckoutService, *CartService) {
	cfg := testConfig()
	carts := NewCartService(cfg, NewPricingService(cfg), testCatalog())
	return NewCheckoutService(cfg, carts, provider, recorder, nil), carts
}

func validForm() CheckoutForm {
	return CheckoutForm{
		Name:    "Jordan Rivera",
		Address: "12 Elm St",
		City:    "Springfield",
		State:   "IL",
		Postal:  "62704",
		Phone:   "5551234567",
		Email:   "Jordan@Example.com",
	}
}

func seededCart(t *testing.T, carts *CartService) string {
	t.Helper()
	cart, err := carts.AddItem("", 1, 0)
	require.NoError(t, err)
	_, err = carts.AddItem(cart.Token, 2, 0)
	require.NoError(t, err)
	return cart.Token
}

func TestBeginRequiresItems(t *testing.T) {
	svc, carts := newTestCheckout(&fakeProvider{url: "https://pay.example/x"}, &memoryRecorder{})

	cart, err := carts.GetOrCreate("")
	require.NoError(t, err)

	_, err = svc.Begin(cart.Token)
	assert.ErrorIs(t, err, ErrCartEmpty)

	token := seededCart(t, carts)
	view, err := svc.Begin(token)
	require.NoError(t, err)
	assert.Equal(t, CheckoutStateForm, view.State)
}

func TestSubmitValidationNeverReachesProvider(t *testing.T) {
	provider := &fakeProvider{url: "https://pay.example/x"}
	svc, carts := newTestCheckout(provider, &memoryRecorder{})
	token := seededCart(t, carts)

	_, err := svc.Begin(token)
	require.NoError(t, err)

	form := validForm()
	form.Email = "not-an-email"
	form.Phone = "555-CALL"

	view, err := svc.Submit(context.Background(), token, form)
	require.NoError(t, err)

	assert.Equal(t, CheckoutStateForm, view.State)
	assert.Contains(t, view.FieldErrors, "email")
	assert.Contains(t, view.FieldErrors, "phone")
	assert.Equal(t, 0, provider.callCount())

	cart, err := carts.GetOrCreate(token)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2, "validation failure must not touch the cart")
}

func TestFieldErrorClearsOnEdit(t *testing.T) {
	provider := &fakeProvider{url: "https://pay.example/x"}
	svc, carts := newTestCheckout(provider, &memoryRecorder{})
	token := seededCart(t, carts)

	_, err := svc.Begin(token)
	require.NoError(t, err)

	form := validForm()
	form.Email = "nope"
	view, err := svc.Submit(context.Background(), token, form)
	require.NoError(t, err)
	require.Contains(t, view.FieldErrors, "email")

	// Editing the bad field clears its error; untouched errors stay.
	form.Email = "jordan@example.com"
	view = svc.UpdateForm(token, form)
	assert.NotContains(t, view.FieldErrors, "email")
}

func TestSubmitSuccessOrdering(t *testing.T) {
	provider := &fakeProvider{url: "https://pay.example/session/abc"}
	recorder := &memoryRecorder{}
	svc, carts := newTestCheckout(provider, recorder)
	token := seededCart(t, carts)

	_, err := svc.Begin(token)
	require.NoError(t, err)

	view, err := svc.Submit(context.Background(), token, validForm())
	require.NoError(t, err)

	assert.Equal(t, CheckoutStateConfirmed, view.State)
	require.NotNil(t, view.Snapshot)
	assert.Equal(t, "https://pay.example/session/abc", view.Snapshot.PaymentURL)
	assert.Equal(t, int64(1), view.Snapshot.OrderID)
	assert.Equal(t, 159.0, view.Snapshot.Total)
	assert.Equal(t, "jordan@example.com", view.Snapshot.Email)

	// The snapshot survives the cart clear that follows it.
	require.Len(t, view.Snapshot.Lines, 2)
	cart, err := carts.GetOrCreate(token)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	require.Len(t, recorder.orders, 1)
	order := recorder.orders[0]
	assert.Equal(t, int64(15900), order.TotalCents)
	assert.Equal(t, int64(15500), order.SubtotalCents)
	assert.Equal(t, int64(400), order.ShippingCents)
	assert.Equal(t, models.OrderStatusSubmitted, order.Status)
	assert.Equal(t, provider.lastReq.Details, order.Details)
}

func TestSubmitFailurePreservesCartAndForm(t *testing.T) {
	provider := &fakeProvider{err: ErrPaymentLinkFailed}
	svc, carts := newTestCheckout(provider, &memoryRecorder{})
	token := seededCart(t, carts)

	_, err := svc.Begin(token)
	require.NoError(t, err)

	form := validForm()
	_, err = svc.Submit(context.Background(), token, form)
	assert.ErrorIs(t, err, ErrPaymentLinkFailed)

	view := svc.Get(token)
	assert.Equal(t, CheckoutStateForm, view.State)
	assert.Equal(t, form, view.Form)

	cart, err := carts.GetOrCreate(token)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestSubmitSingleFlight(t *testing.T) {
	provider := &fakeProvider{url: "https://pay.example/x", block: make(chan struct{})}
	svc, carts := newTestCheckout(provider, &memoryRecorder{})
	token := seededCart(t, carts)

	_, err := svc.Begin(token)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), token, validForm())
		done <- err
	}()

	// Wait for the first submit to reach the provider, then race a second.
	require.Eventually(t, func() bool { return provider.callCount() == 1 }, time.Second, time.Millisecond)

	_, err = svc.Submit(context.Background(), token, validForm())
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	close(provider.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, provider.callCount())
}

func TestResetMakesInFlightSubmitStale(t *testing.T) {
	provider := &fakeProvider{url: "https://pay.example/x", block: make(chan struct{})}
	svc, carts := newTestCheckout(provider, &memoryRecorder{})
	token := seededCart(t, carts)

	_, err := svc.Begin(token)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), token, validForm())
		done <- err
	}()
	require.Eventually(t, func() bool { return provider.callCount() == 1 }, time.Second, time.Millisecond)

	// Closing the drawer mid-submit resets the session; the late response
	// must not confirm or clear anything.
	svc.Reset(token)
	close(provider.block)

	assert.ErrorIs(t, <-done, ErrStaleCheckout)

	cart, err := carts.GetOrCreate(token)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2, "stale submit must not clear the cart")
	assert.Equal(t, CheckoutStateCart, svc.Get(token).State)
}

func TestAbandonKeepsFormValues(t *testing.T) {
	svc, carts := newTestCheckout(&fakeProvider{url: "https://pay.example/x"}, &memoryRecorder{})
	token := seededCart(t, carts)

	_, err := svc.Begin(token)
	require.NoError(t, err)

	form := validForm()
	svc.UpdateForm(token, form)

	view, err := svc.Abandon(token)
	require.NoError(t, err)
	assert.Equal(t, CheckoutStateCart, view.State)
	assert.Equal(t, form, view.Form)
}

func TestResetDiscardsEverything(t *testing.T) {
	svc, carts := newTestCheckout(&fakeProvider{url: "https://pay.example/x"}, &memoryRecorder{})
	token := seededCart(t, carts)

	_, err := svc.Begin(token)
	require.NoError(t, err)
	svc.UpdateForm(token, validForm())

	view := svc.Reset(token)
	assert.Equal(t, CheckoutStateCart, view.State)
	assert.Equal(t, CheckoutForm{}, view.Form)
	assert.Empty(t, view.FieldErrors)
	assert.Nil(t, view.Snapshot)
}

func TestIdleSessionsEvicted(t *testing.T) {
	svc, _ := newTestCheckout(&fakeProvider{url: "https://pay.example/x"}, &memoryRecorder{})

	// Any token a client presents gets a session; idle ones must not
	// accumulate for the life of the server.
	for i := 0; i < 1000; i++ {
		svc.Get(fmt.Sprintf("cart-%d", i))
	}
	require.Len(t, svc.sessions, 1000)

	svc.mtx.Lock()
	for _, sess := range svc.sessions {
		sess.lastSeen = time.Now().Add(-3 * time.Hour)
	}
	svc.mtx.Unlock()

	svc.Get("fresh")
	svc.sweepSessions(time.Now().Add(-2 * time.Hour))

	require.Len(t, svc.sessions, 1)
	assert.Contains(t, svc.sessions, "fresh")
}

func TestSweepKeepsSubmittingSession(t *testing.T) {
	provider := &fakeProvider{url: "https://pay.example/x", block: make(chan struct{})}
	svc, carts := newTestCheckout(provider, &memoryRecorder{})
	token := seededCart(t, carts)

	_, err := svc.Begin(token)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), token, validForm())
		done <- err
	}()
	require.Eventually(t, func() bool { return provider.callCount() == 1 }, time.Second, time.Millisecond)

	svc.sweepSessions(time.Now().Add(time.Hour))
	assert.Contains(t, svc.sessions, token)

	close(provider.block)
	require.NoError(t, <-done)
}

func TestConfirmedNeverSeenWithItems(t *testing.T) {
	provider := &fakeProvider{url: "https://pay.example/x", block: make(chan struct{})}
	svc, carts := newTestCheckout(provider, &memoryRecorder{})
	token := seededCart(t, carts)

	_, err := svc.Begin(token)
	require.NoError(t, err)

	stop := make(chan struct{})
	violation := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			if svc.Get(token).State != CheckoutStateConfirmed {
				continue
			}
			cart, err := carts.GetOrCreate(token)
			if err == nil && len(cart.Items) > 0 {
				select {
				case violation <- struct{}{}:
				default:
				}
			}
		}
	}()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), token, validForm())
		done <- err
	}()
	require.Eventually(t, func() bool { return provider.callCount() == 1 }, time.Second, time.Millisecond)

	close(provider.block)
	require.NoError(t, <-done)
	close(stop)

	select {
	case <-violation:
		t.Fatal("saw a confirmed checkout while the cart still had items")
	default:
	}
}

var errRecorderDown = errors.New("orders table unavailable")

func TestSubmitRecorderFailureReturnsToForm(t *testing.T) {
	provider := &fakeProvider{url: "https://pay.example/x"}
	svc, carts := newTestCheckout(provider, &memoryRecorder{err: errRecorderDown})
	token := seededCart(t, carts)

	_, err := svc.Begin(token)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), token, validForm())
	assert.ErrorIs(t, err, errRecorderDown)
	assert.Equal(t, CheckoutStateForm, svc.Get(token).State)
}
