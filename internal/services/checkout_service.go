// internal/services/checkout_service.go
package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/konisgames/storefront-backend/internal/config"
	"github.com/konisgames/storefront-backend/internal/models"
	"github.com/konisgames/storefront-backend/internal/utils"
)

type CheckoutState string

const (
	CheckoutStateCart       CheckoutState = "cart"
	CheckoutStateForm       CheckoutState = "form"
	CheckoutStateSubmitting CheckoutState = "submitting"
	CheckoutStateConfirmed  CheckoutState = "confirmed"
)

// CheckoutForm is the contact and shipping form. Phone is digits only.
type CheckoutForm struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Postal  string `json:"postal" validate:"required"`
	Phone   string `json:"phone" validate:"required,phone"`
	Email   string `json:"email" validate:"required,email"`
	Notes   string `json:"notes"`
}

// OrderSnapshot is the frozen copy of the order taken at the moment the
// payment link comes back, before the cart is cleared. The confirmation
// view renders from this, so later cart mutations cannot touch it.
type OrderSnapshot struct {
	OrderID     int64              `json:"order_id"`
	Lines       []models.OrderLine `json:"lines"`
	Subtotal    float64            `json:"subtotal"`
	Shipping    float64            `json:"shipping"`
	Total       float64            `json:"total"`
	TotalCents  int64              `json:"total_cents"`
	Email       string             `json:"email"`
	PaymentURL  string             `json:"payment_url"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

// OrderRecorder persists a submitted order.
type OrderRecorder interface {
	RecordOrder(order *models.Order) error
}

// Notifier delivers the order confirmation email. Failures are logged, not
// surfaced; the order already exists by the time it runs.
type Notifier interface {
	SendOrderConfirmation(order *models.Order, lines []models.OrderLine) error
}

type checkoutSession struct {
	state       CheckoutState
	form        CheckoutForm
	fieldErrors map[string]string
	snapshot    *OrderSnapshot
	attempt     int
	lastSeen    time.Time
}

// CheckoutService drives each cart through cart -> form -> submitting ->
// confirmed. The submitting state is the single-flight guard: a second
// submit while one is outstanding is rejected, and a session reset while a
// request is in flight makes the late response a no-op.
type CheckoutService struct {
	config   *config.Config
	carts    *CartService
	payments PaymentLinkProvider
	orders   OrderRecorder
	notifier Notifier

	mtx      sync.Mutex
	sessions map[string]*checkoutSession
}

func NewCheckoutService(cfg *config.Config, carts *CartService, payments PaymentLinkProvider, orders OrderRecorder, notifier Notifier) *CheckoutService {
	s := &CheckoutService{
		config:   cfg,
		carts:    carts,
		payments: payments,
		orders:   orders,
		notifier: notifier,
		sessions: make(map[string]*checkoutSession),
	}

	// Expire idle sessions on the same clock as their carts
	go s.cleanupSessions()

	return s
}

func (s *CheckoutService) cleanupSessions() {
	ttl := time.Duration(s.config.Cart.SessionTTL) * time.Minute
	for {
		time.Sleep(time.Minute)
		s.sweepSessions(time.Now().Add(-ttl))
	}
}

// sweepSessions drops every session idle since before cutoff. A session with
// a submit in flight is left alone; its attempt guard handles staleness.
func (s *CheckoutService) sweepSessions(cutoff time.Time) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	for token, sess := range s.sessions {
		if sess.state == CheckoutStateSubmitting {
			continue
		}
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, token)
		}
	}
}

func (s *CheckoutService) sessionLocked(token string) *checkoutSession {
	sess, exists := s.sessions[token]
	if !exists {
		sess = &checkoutSession{
			state:       CheckoutStateCart,
			fieldErrors: make(map[string]string),
		}
		s.sessions[token] = sess
	}
	sess.lastSeen = time.Now()
	return sess
}

// CheckoutView is the API-facing projection of a session.
type CheckoutView struct {
	State       CheckoutState     `json:"state"`
	Form        CheckoutForm      `json:"form"`
	FieldErrors map[string]string `json:"field_errors"`
	Snapshot    *OrderSnapshot    `json:"snapshot,omitempty"`
}

func viewOf(sess *checkoutSession) *CheckoutView {
	errs := make(map[string]string, len(sess.fieldErrors))
	for k, v := range sess.fieldErrors {
		errs[k] = v
	}
	return &CheckoutView{
		State:       sess.state,
		Form:        sess.form,
		FieldErrors: errs,
		Snapshot:    sess.snapshot,
	}
}

func (s *CheckoutService) Get(token string) *CheckoutView {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return viewOf(s.sessionLocked(token))
}

// Begin moves cart -> form. The cart must be non-empty.
func (s *CheckoutService) Begin(token string) (*CheckoutView, error) {
	cart, err := s.carts.GetOrCreate(token)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	sess := s.sessionLocked(token)
	if sess.state == CheckoutStateSubmitting {
		return nil, ErrCheckoutInFlight
	}
	if sess.state == CheckoutStateCart || sess.state == CheckoutStateConfirmed {
		sess.state = CheckoutStateForm
		sess.snapshot = nil
	}
	return viewOf(sess), nil
}

// UpdateForm stores the latest form values and drops the error for every
// field whose value changed; errors clear on edit, not on resubmit.
func (s *CheckoutService) UpdateForm(token string, form CheckoutForm) *CheckoutView {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	sess := s.sessionLocked(token)
	old := sess.form
	sess.form = form

	changed := []struct {
		field    string
		old, new string
	}{
		{"name", old.Name, form.Name},
		{"address", old.Address, form.Address},
		{"city", old.City, form.City},
		{"state", old.State, form.State},
		{"postal", old.Postal, form.Postal},
		{"phone", old.Phone, form.Phone},
		{"email", old.Email, form.Email},
		{"notes", old.Notes, form.Notes},
	}
	for _, c := range changed {
		if c.old != c.new {
			delete(sess.fieldErrors, c.field)
		}
	}
	return viewOf(sess)
}

// Abandon moves form -> cart, keeping both the cart and the form values.
func (s *CheckoutService) Abandon(token string) (*CheckoutView, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	sess := s.sessionLocked(token)
	if sess.state == CheckoutStateSubmitting {
		return nil, ErrCheckoutInFlight
	}
	if sess.state == CheckoutStateForm {
		sess.state = CheckoutStateCart
	}
	return viewOf(sess), nil
}

// Reset returns the session to an empty cart view: form, errors, and
// snapshot are all discarded. Closing the cart drawer mid-checkout takes
// the same path. A submission in flight when this runs resolves as stale.
func (s *CheckoutService) Reset(token string) *CheckoutView {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	sess := s.sessionLocked(token)
	sess.state = CheckoutStateCart
	sess.form = CheckoutForm{}
	sess.fieldErrors = make(map[string]string)
	sess.snapshot = nil
	sess.attempt++
	return viewOf(sess)
}

// Submit validates the form and, if clean, creates the payment link and
// records the order. Side effects on success run in a fixed order: order
// persisted, snapshot captured, cart cleared, state confirmed. On any failure
// the cart and form survive untouched and the state returns to form.
func (s *CheckoutService) Submit(ctx context.Context, token string, form CheckoutForm) (*CheckoutView, error) {
	cart, err := s.carts.GetOrCreate(token)
	if err != nil {
		return nil, err
	}

	s.mtx.Lock()
	sess := s.sessionLocked(token)
	if sess.state == CheckoutStateSubmitting {
		s.mtx.Unlock()
		return nil, ErrCheckoutInFlight
	}
	sess.form = form
	sess.state = CheckoutStateForm

	// Validation failures never reach the network.
	if errs := validateCheckoutForm(&form); len(errs) > 0 {
		sess.fieldErrors = errs
		view := viewOf(sess)
		s.mtx.Unlock()
		return view, nil
	}
	sess.fieldErrors = make(map[string]string)

	if len(cart.Items) == 0 {
		s.mtx.Unlock()
		return nil, ErrCartEmpty
	}

	sess.state = CheckoutStateSubmitting
	sess.attempt++
	myAttempt := sess.attempt
	s.mtx.Unlock()

	totals, err := s.carts.ResolveTotals(cart)
	if err != nil {
		s.failSubmit(token, myAttempt)
		return nil, err
	}

	details := models.EncodeOrderLines(totals.Lines)
	url, err := s.payments.CreatePaymentLink(ctx, &PaymentLinkRequest{
		AmountCents: totals.TotalCents,
		Name:        form.Name,
		Address:     form.Address,
		City:        form.City,
		State:       form.State,
		Postal:      form.Postal,
		Phone:       form.Phone,
		Email:       form.Email,
		Notes:       form.Notes,
		Details:     details,
		Lines:       totals.Lines,
	})
	if err != nil {
		s.failSubmit(token, myAttempt)
		return nil, err
	}

	order := &models.Order{
		Name:          form.Name,
		Address:       form.Address,
		City:          form.City,
		State:         form.State,
		Postal:        form.Postal,
		Phone:         form.Phone,
		Email:         strings.ToLower(form.Email),
		Notes:         form.Notes,
		Details:       details,
		SubtotalCents: totals.SubtotalCents,
		ShippingCents: totals.TotalCents - totals.SubtotalCents,
		TotalCents:    totals.TotalCents,
		Status:        models.OrderStatusSubmitted,
	}
	if err := s.orders.RecordOrder(order); err != nil {
		s.failSubmit(token, myAttempt)
		return nil, err
	}

	s.mtx.Lock()
	// The session may have been reset while the request was in flight; a
	// stale response must not clear a cart it no longer owns.
	if sess.attempt != myAttempt || sess.state != CheckoutStateSubmitting {
		s.mtx.Unlock()
		return nil, ErrStaleCheckout
	}

	sess.snapshot = &OrderSnapshot{
		OrderID:     order.ID,
		Lines:       totals.Lines,
		Subtotal:    totals.Subtotal,
		Shipping:    totals.Shipping,
		Total:       totals.Total,
		TotalCents:  totals.TotalCents,
		Email:       order.Email,
		PaymentURL:  url,
		SubmittedAt: time.Now(),
	}
	// The cart empties before the state reads confirmed, so no reader can
	// see a confirmed checkout with a populated cart.
	if _, err := s.carts.Clear(token); err != nil {
		logrus.WithError(err).Warn("Failed to clear cart after checkout")
	}
	sess.state = CheckoutStateConfirmed
	view := viewOf(sess)
	s.mtx.Unlock()

	if s.notifier != nil {
		go func(o models.Order, lines []models.OrderLine) {
			if err := s.notifier.SendOrderConfirmation(&o, lines); err != nil {
				logrus.WithError(err).Error("Failed to send order confirmation")
			}
		}(*order, totals.Lines)
	}

	return view, nil
}

func (s *CheckoutService) failSubmit(token string, attempt int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	sess := s.sessionLocked(token)
	if sess.attempt == attempt && sess.state == CheckoutStateSubmitting {
		sess.state = CheckoutStateForm
	}
}

func validateCheckoutForm(form *CheckoutForm) map[string]string {
	err := utils.ValidateStruct(form)
	if err == nil {
		return nil
	}

	errs := make(map[string]string)
	for _, ve := range utils.GetValidationErrors(err) {
		errs[ve.Field] = ve.Message
	}
	return errs
}
