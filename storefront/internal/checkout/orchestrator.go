// Package checkout sequences a session's checkout: info collection, the
// pending order handoff and the order submission to the notification service.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/growthshop/storefront/internal/domain"
	"github.com/fjod/growthshop/storefront/internal/storage"
	"go.uber.org/zap"
)

// PendingOrderKey is where the order info waits between the info and the
// payment step.
const PendingOrderKey = "pending_order"

const DefaultSubmitTimeout = 10 * time.Second

// Notifier delivers a placed order and returns the order id it was given.
type Notifier interface {
	Submit(ctx context.Context, order domain.OrderSubmission) (string, error)
}

// Cart is the part of the cart engine checkout depends on.
type Cart interface {
	Add(ctx context.Context, offeringID string) (domain.LineItem, error)
	SetQuantity(ctx context.Context, lineItemID string, quantity int) error
	Remove(ctx context.Context, lineItemID string) error
	Item(lineItemID string) (domain.LineItem, bool)
	Snapshot() ([]domain.LineItem, domain.Totals)
	IsEmpty() bool
	Clear(ctx context.Context) error
}

type Option func(*Orchestrator)

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSubmitTimeout bounds a single notifier call.
func WithSubmitTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRequiredFields replaces the required order info fields. Mobile stays
// required whatever is passed.
func WithRequiredFields(fields []string) Option {
	return func(o *Orchestrator) {
		o.required = normalizeRequired(fields)
	}
}

// WithManualContact enables the manual-contact fallback link in views.
func WithManualContact(baseURL, currency string) Option {
	return func(o *Orchestrator) {
		o.contactURL = baseURL
		o.currency = currency
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator owns the checkout state of one session.
type Orchestrator struct {
	mu       sync.Mutex
	cart     Cart
	store    storage.Store
	notifier Notifier
	logger   *zap.Logger
	timeout  time.Duration
	required []string
	now      func() time.Time

	contactURL string
	currency   string

	status       domain.CheckoutStatus
	processing   bool
	attempt      uint64
	confirmation *domain.Confirmation
	lastError    string
}

// NewOrchestrator resumes at the payment step when a pending order survived
// and the cart still has items. Otherwise it starts in Browsing.
func NewOrchestrator(ctx context.Context, cart Cart, store storage.Store, notifier Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:     cart,
		store:    store,
		notifier: notifier,
		logger:   zap.NewNop(),
		timeout:  DefaultSubmitTimeout,
		required: normalizeRequired(DefaultRequiredFields),
		now:      time.Now,
		status:   domain.CheckoutStatusBrowsing,
	}
	for _, opt := range opts {
		opt(o)
	}

	if !cart.IsEmpty() {
		if _, err := o.readPending(ctx); err == nil {
			o.status = domain.CheckoutStatusAwaitingPayment
		}
	}
	return o
}

// View is a consistent read of the checkout state.
type View struct {
	Status           domain.CheckoutStatus `json:"status"`
	Processing       bool                  `json:"processing"`
	PendingOrder     *domain.OrderInfo     `json:"pendingOrder,omitempty"`
	Confirmation     *domain.Confirmation  `json:"confirmation,omitempty"`
	LastError        string                `json:"lastError,omitempty"`
	ManualContactURL string                `json:"manualContactUrl,omitempty"`
}

func (o *Orchestrator) View(ctx context.Context) View {
	o.mu.Lock()
	defer o.mu.Unlock()

	v := View{
		Status:     o.effectiveStatus(),
		Processing: o.processing,
		LastError:  o.lastError,
	}
	if o.confirmation != nil {
		c := *o.confirmation
		v.Confirmation = &c
	}
	if info, err := o.readPending(ctx); err == nil {
		v.PendingOrder = &info
	}
	if o.contactURL != "" {
		items, totals := o.cart.Snapshot()
		v.ManualContactURL = ManualContactLink(o.contactURL, items, totals.GrandTotal, o.currency)
	}
	return v
}

func (o *Orchestrator) Status() domain.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.effectiveStatus()
}

// effectiveStatus shows an emptied cart as Browsing, unless a submission is
// in flight or the order was confirmed.
func (o *Orchestrator) effectiveStatus() domain.CheckoutStatus {
	if o.processing || o.status == domain.CheckoutStatusConfirmed {
		return o.status
	}
	if o.cart.IsEmpty() {
		return domain.CheckoutStatusBrowsing
	}
	return o.status
}

// transition moves to next if the state machine allows it. Callers hold o.mu.
func (o *Orchestrator) transition(next domain.CheckoutStatus) error {
	current := o.effectiveStatus()
	if !domain.CanTransitionTo(current, next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, next)
	}
	o.setStatus(next)
	return nil
}

// setStatus moves to next unchecked. It is used directly for outcomes of a
// submission that was already admitted, so cart edits made meanwhile cannot
// block them.
func (o *Orchestrator) setStatus(next domain.CheckoutStatus) {
	if o.status != next {
		o.logger.Info("checkout status changed",
			zap.String("from", o.status.String()),
			zap.String("to", next.String()))
	}
	if next != domain.CheckoutStatusConfirmed {
		o.confirmation = nil
	}
	o.status = next
}

// Processing reports whether an order submission is in flight.
func (o *Orchestrator) Processing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}

// BeginCheckout moves a non-empty cart into info collection.
func (o *Orchestrator) BeginCheckout(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.processing {
		return ErrSubmissionInProgress
	}
	if o.cart.IsEmpty() {
		return ErrEmptyCart
	}
	o.lastError = ""
	return o.transition(domain.CheckoutStatusCollectingInfo)
}

// SubmitInfo validates the buyer's details and hands them to the payment
// step through the pending order store.
func (o *Orchestrator) SubmitInfo(ctx context.Context, info domain.OrderInfo) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.processing {
		return ErrSubmissionInProgress
	}
	if o.cart.IsEmpty() {
		return ErrEmptyCart
	}
	current := o.effectiveStatus()
	if !domain.CanTransitionTo(current, domain.CheckoutStatusAwaitingPayment) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, domain.CheckoutStatusAwaitingPayment)
	}

	info = trimOrderInfo(info)
	if err := ValidateOrderInfo(info, o.required); err != nil {
		return err
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal pending order failed: %w", err)
	}
	if err := o.store.Set(ctx, PendingOrderKey, data); err != nil {
		return fmt.Errorf("save pending order: %w", err)
	}
	o.lastError = ""
	return o.transition(domain.CheckoutStatusAwaitingPayment)
}

// PendingOrder reads the handoff back. Malformed data counts as absent.
func (o *Orchestrator) PendingOrder(ctx context.Context) (domain.OrderInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.readPending(ctx)
}

func (o *Orchestrator) readPending(ctx context.Context) (domain.OrderInfo, error) {
	data, err := o.store.Get(ctx, PendingOrderKey)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.OrderInfo{}, ErrNoPendingOrder
	}
	if err != nil {
		o.logger.Warn("pending order unavailable", zap.Error(err))
		return domain.OrderInfo{}, ErrNoPendingOrder
	}

	var info domain.OrderInfo
	if err := json.Unmarshal(data, &info); err != nil {
		o.logger.Warn("discarding malformed pending order", zap.Error(err))
		return domain.OrderInfo{}, ErrNoPendingOrder
	}
	return info, nil
}

// SubmitPayment places the order with the notifier. The call is bounded by
// the submit timeout; a timeout, an error or a failure result leave the cart
// and the pending order untouched and move to FailedRetry, from where the
// same submission may be repeated. On success the cart is cleared and the
// confirmation keeps the total captured before the clear.
func (o *Orchestrator) SubmitPayment(ctx context.Context, method domain.PaymentMethod, senderNumber string) (domain.Confirmation, error) {
	o.mu.Lock()

	if o.processing {
		o.mu.Unlock()
		return domain.Confirmation{}, ErrSubmissionInProgress
	}
	if o.cart.IsEmpty() {
		o.mu.Unlock()
		return domain.Confirmation{}, ErrEmptyCart
	}
	if current := o.effectiveStatus(); !current.AcceptsPayment() {
		o.mu.Unlock()
		return domain.Confirmation{}, fmt.Errorf("%w: payment not accepted in %s", ErrIllegalTransition, current)
	}
	if method == "" {
		method = domain.DefaultPaymentMethod
	}

	normalized := NormalizeSenderNumber(senderNumber)
	if err := validateSenderNumber(normalized); err != nil {
		o.mu.Unlock()
		return domain.Confirmation{}, err
	}

	info, err := o.readPending(ctx)
	if err != nil {
		// the buyer has to enter the details again
		_ = o.transition(domain.CheckoutStatusCollectingInfo)
		o.mu.Unlock()
		return domain.Confirmation{}, err
	}

	items, totals := o.cart.Snapshot()
	submission := domain.NewOrderSubmission(info, items, totals.GrandTotal, domain.PaymentDetails{
		Method:       method,
		SenderNumber: normalized,
	})

	_ = o.transition(domain.CheckoutStatusAwaitingPayment)
	o.processing = true
	o.attempt++
	attempt := o.attempt
	o.mu.Unlock()

	orderID, submitErr := o.submit(ctx, submission)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.attempt != attempt {
		o.logger.Warn("ignoring result of abandoned checkout attempt",
			zap.Uint64("attempt", attempt),
			zap.String("order_id", orderID),
			zap.Error(submitErr))
		return domain.Confirmation{}, ErrAttemptAbandoned
	}
	o.processing = false

	if submitErr != nil {
		o.lastError = submitErr.Error()
		o.setStatus(domain.CheckoutStatusFailedRetry)
		o.logger.Warn("order submission failed", zap.Error(submitErr))
		return domain.Confirmation{}, fmt.Errorf("%w: %w", ErrNotificationFailed, submitErr)
	}

	confirmation := domain.Confirmation{
		OrderID:     orderID,
		Total:       totals.GrandTotal,
		Method:      method,
		ConfirmedAt: o.now(),
	}
	// the order is placed, so these run even if the caller has gone away
	finishCtx := context.WithoutCancel(ctx)
	if err := o.cart.Clear(finishCtx); err != nil {
		o.logger.Error("clearing cart after confirmed order failed", zap.String("order_id", orderID), zap.Error(err))
	}
	if err := o.store.Delete(finishCtx, PendingOrderKey); err != nil {
		o.logger.Error("removing pending order failed", zap.String("order_id", orderID), zap.Error(err))
	}
	o.lastError = ""
	o.setStatus(domain.CheckoutStatusConfirmed)
	o.confirmation = &confirmation

	o.logger.Info("order confirmed",
		zap.String("order_id", orderID),
		zap.String("total", confirmation.Total.String()),
		zap.String("method", string(method)))
	return confirmation, nil
}

type submitResult struct {
	orderID string
	err     error
}

// submit runs the notifier call under the deadline. A result that arrives
// after the deadline lands in the buffered channel and is dropped.
func (o *Orchestrator) submit(ctx context.Context, order domain.OrderSubmission) (string, error) {
	submitCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan submitResult, 1)
	go func() {
		id, err := o.notifier.Submit(submitCtx, order)
		done <- submitResult{orderID: id, err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil && res.orderID == "" {
			return "", errors.New("notifier returned no order id")
		}
		return res.orderID, res.err
	case <-submitCtx.Done():
		return "", fmt.Errorf("order submission: %w", submitCtx.Err())
	}
}

// ClearCart empties the cart and drops the pending order. An in-flight
// submission is abandoned and its result ignored.
func (o *Orchestrator) ClearCart(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.cart.Clear(ctx); err != nil {
		return err
	}
	if err := o.store.Delete(ctx, PendingOrderKey); err != nil {
		return fmt.Errorf("remove pending order: %w", err)
	}
	if o.processing {
		o.logger.Warn("abandoning in-flight order submission", zap.Uint64("attempt", o.attempt))
	}
	o.processing = false
	o.attempt++
	o.lastError = ""
	o.setStatus(domain.CheckoutStatusBrowsing)
	return nil
}

// Cancel leaves checkout and returns to Browsing. The pending order is
// dropped, so the next checkout starts from info collection.
func (o *Orchestrator) Cancel(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.processing {
		return ErrSubmissionInProgress
	}
	if err := o.store.Delete(ctx, PendingOrderKey); err != nil {
		return fmt.Errorf("remove pending order: %w", err)
	}
	o.lastError = ""
	if o.effectiveStatus() == domain.CheckoutStatusBrowsing {
		o.setStatus(domain.CheckoutStatusBrowsing)
		return nil
	}
	return o.transition(domain.CheckoutStatusBrowsing)
}
