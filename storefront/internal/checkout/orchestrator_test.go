package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/growthshop/storefront/internal/cart"
	"github.com/fjod/growthshop/storefront/internal/domain"
	"github.com/fjod/growthshop/storefront/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalog map[string]domain.Offering

func (m mockCatalog) Lookup(id string) (domain.Offering, bool) {
	o, ok := m[id]
	return o, ok
}

var testCatalog = mockCatalog{
	"fb-f-1k-real": {ID: "fb-f-1k-real", Name: "FB BD Real Follower 1000", Platform: domain.PlatformFacebook,
		Category: domain.CategoryFollowers, Price: decimal.NewFromInt(220), UnitValue: 1000},
	"fb-v-5k": {ID: "fb-v-5k", Name: "FB Vid Views Service 5000", Platform: domain.PlatformFacebook,
		Category: domain.CategoryViews, Price: decimal.NewFromInt(100), UnitValue: 5000},
}

// MockNotifier records submissions. When release is set, Submit waits on it;
// with ignoreCtx it keeps waiting past the deadline.
type MockNotifier struct {
	mu        sync.Mutex
	OrderID   string
	Err       error
	release   chan struct{}
	ignoreCtx bool
	calls     int
	last      domain.OrderSubmission
}

func (m *MockNotifier) Submit(ctx context.Context, order domain.OrderSubmission) (string, error) {
	m.mu.Lock()
	m.calls++
	m.last = order
	release, ignoreCtx := m.release, m.ignoreCtx
	m.mu.Unlock()

	if release != nil {
		if ignoreCtx {
			<-release
		} else {
			select {
			case <-release:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.OrderID, m.Err
}

func (m *MockNotifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockNotifier) Last() domain.OrderSubmission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *MockNotifier) set(orderID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderID, m.Err = orderID, err
	m.release = nil
	m.ignoreCtx = false
}

type fixture struct {
	store    *storage.MemoryStore
	cart     *cart.Engine
	notifier *MockNotifier
	orch     *Orchestrator
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := storage.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	engine := cart.NewEngine(ctx, testCatalog, store)
	notifier := &MockNotifier{OrderID: "ORD-54321"}
	return &fixture{
		store:    store,
		cart:     engine,
		notifier: notifier,
		orch:     NewOrchestrator(ctx, engine, store, notifier, opts...),
	}
}

func validInfo() domain.OrderInfo {
	return domain.OrderInfo{
		Name:       "Rahim Uddin",
		Mobile:     "01712345678",
		Email:      "rahim@example.com",
		TargetLink: "https://facebook.com/rahim.page",
	}
}

// fill puts {220 x 2, 100 x 1} in the cart.
func (f *fixture) fill(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.cart.Add(ctx, "fb-f-1k-real")
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, "fb-f-1k-real")
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, "fb-v-5k")
	require.NoError(t, err)
}

// toPayment drives a filled cart to AwaitingPayment.
func (f *fixture) toPayment(t *testing.T) {
	t.Helper()
	f.fill(t)
	ctx := context.Background()
	require.NoError(t, f.orch.BeginCheckout(ctx))
	require.NoError(t, f.orch.SubmitInfo(ctx, validInfo()))
	require.Equal(t, domain.CheckoutStatusAwaitingPayment, f.orch.Status())
}

func TestBeginCheckout_EmptyCart(t *testing.T) {
	f := setup(t)

	err := f.orch.BeginCheckout(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, domain.CheckoutStatusBrowsing, f.orch.Status())
}

func TestBeginCheckout(t *testing.T) {
	f := setup(t)
	f.fill(t)

	require.NoError(t, f.orch.BeginCheckout(context.Background()))
	assert.Equal(t, domain.CheckoutStatusCollectingInfo, f.orch.Status())
}

func TestCollectingInfo_EmptiedCartShowsBrowsing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	item, err := f.cart.Add(ctx, "fb-v-5k")
	require.NoError(t, err)
	require.NoError(t, f.orch.BeginCheckout(ctx))

	require.NoError(t, f.cart.Remove(ctx, item.ID))

	assert.Equal(t, domain.CheckoutStatusBrowsing, f.orch.Status())
	assert.ErrorIs(t, f.orch.SubmitInfo(ctx, validInfo()), ErrEmptyCart)
}

func TestSubmitInfo_MissingMobileRejected(t *testing.T) {
	f := setup(t)
	f.fill(t)
	ctx := context.Background()
	require.NoError(t, f.orch.BeginCheckout(ctx))

	info := validInfo()
	info.Mobile = "   "
	err := f.orch.SubmitInfo(ctx, info)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"mobile"}, verr.Fields)
	assert.Equal(t, domain.CheckoutStatusCollectingInfo, f.orch.Status())

	_, err = f.orch.PendingOrder(ctx)
	assert.ErrorIs(t, err, ErrNoPendingOrder)
}

func TestSubmitInfo_ReportsEveryMissingField(t *testing.T) {
	f := setup(t)
	f.fill(t)
	ctx := context.Background()
	require.NoError(t, f.orch.BeginCheckout(ctx))

	err := f.orch.SubmitInfo(ctx, domain.OrderInfo{Mobile: "017"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name", "email", "targetLink"}, verr.Fields)
	assert.Contains(t, err.Error(), "name, email, targetLink")
}

func TestSubmitInfo_MobileOnlyVariant(t *testing.T) {
	f := setup(t, WithRequiredFields(nil))
	f.fill(t)
	ctx := context.Background()
	require.NoError(t, f.orch.BeginCheckout(ctx))

	require.Error(t, f.orch.SubmitInfo(ctx, domain.OrderInfo{Name: "x"}))
	require.NoError(t, f.orch.SubmitInfo(ctx, domain.OrderInfo{Mobile: "01712345678"}))
	assert.Equal(t, domain.CheckoutStatusAwaitingPayment, f.orch.Status())
}

func TestSubmitInfo_WritesPendingOrder(t *testing.T) {
	f := setup(t)
	f.fill(t)
	ctx := context.Background()
	require.NoError(t, f.orch.BeginCheckout(ctx))

	info := validInfo()
	info.Name = "  Rahim Uddin "
	require.NoError(t, f.orch.SubmitInfo(ctx, info))

	pending, err := f.orch.PendingOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, validInfo(), pending)
	assert.Equal(t, domain.CheckoutStatusAwaitingPayment, f.orch.Status())
}

func TestSubmitInfo_FromBrowsingIsIllegal(t *testing.T) {
	f := setup(t)
	f.fill(t)

	err := f.orch.SubmitInfo(context.Background(), validInfo())
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestPendingOrder_MalformedIsAbsent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, PendingOrderKey, []byte("{not json")))

	_, err := f.orch.PendingOrder(ctx)
	assert.ErrorIs(t, err, ErrNoPendingOrder)
}

func TestSubmitPayment_ShortSenderRejectedLocally(t *testing.T) {
	f := setup(t)
	f.toPayment(t)

	_, err := f.orch.SubmitPayment(context.Background(), domain.PaymentBKash, "12345")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"senderNumber"}, verr.Fields)
	assert.Zero(t, f.notifier.Calls())
	assert.Equal(t, domain.CheckoutStatusAwaitingPayment, f.orch.Status())
	assert.False(t, f.orch.Processing())
}

func TestSubmitPayment_ElevenDigitsInvokesNotifier(t *testing.T) {
	f := setup(t)
	f.toPayment(t)

	_, err := f.orch.SubmitPayment(context.Background(), domain.PaymentNagad, "017-1234 5678")
	require.NoError(t, err)

	assert.Equal(t, 1, f.notifier.Calls())
	sub := f.notifier.Last()
	assert.Equal(t, "01712345678", sub.PaymentDetails.SenderNumber)
	assert.Equal(t, domain.PaymentNagad, sub.PaymentDetails.Method)
	assert.Equal(t, validInfo(), sub.OrderInfo)
	require.Len(t, sub.Cart, 2)
	assert.Equal(t, "FB BD Real Follower 1000", sub.Cart[0].Name)
	assert.Equal(t, 2, sub.Cart[0].Quantity)
	assert.True(t, sub.Total.Equal(decimal.NewFromInt(540)))
}

func TestSubmitPayment_DefaultMethod(t *testing.T) {
	f := setup(t)
	f.toPayment(t)

	conf, err := f.orch.SubmitPayment(context.Background(), "", "01712345678")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentBKash, conf.Method)
}

func TestSubmitPayment_SuccessConfirmsAndClears(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := setup(t, WithClock(func() time.Time { return fixed }))
	f.toPayment(t)
	ctx := context.Background()

	conf, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	require.NoError(t, err)

	assert.Equal(t, "ORD-54321", conf.OrderID)
	assert.True(t, conf.Total.Equal(decimal.NewFromInt(540)), "got %s", conf.Total)
	assert.Equal(t, fixed, conf.ConfirmedAt)

	assert.Equal(t, domain.CheckoutStatusConfirmed, f.orch.Status())
	assert.True(t, f.cart.IsEmpty())
	assert.True(t, f.cart.Totals().GrandTotal.IsZero())

	_, err = f.orch.PendingOrder(ctx)
	assert.ErrorIs(t, err, ErrNoPendingOrder)
	_, err = f.store.Get(ctx, cart.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	view := f.orch.View(ctx)
	require.NotNil(t, view.Confirmation)
	assert.Equal(t, "ORD-54321", view.Confirmation.OrderID)
	assert.Equal(t, "540", view.Confirmation.Total.String())
	assert.Nil(t, view.PendingOrder)
}

func TestSubmitPayment_FailureKeepsState(t *testing.T) {
	f := setup(t)
	f.toPayment(t)
	ctx := context.Background()
	before := f.cart.Items()
	f.notifier.set("", errors.New("smtp relay down"))

	_, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	require.ErrorIs(t, err, ErrNotificationFailed)
	assert.ErrorContains(t, err, "smtp relay down")

	assert.Equal(t, domain.CheckoutStatusFailedRetry, f.orch.Status())
	assert.False(t, f.orch.Processing())
	assert.Equal(t, before, f.cart.Items())
	pending, err := f.orch.PendingOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, validInfo(), pending)
	assert.Equal(t, "smtp relay down", f.orch.View(ctx).LastError)

	f.notifier.set("ORD-11111", nil)
	conf, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	require.NoError(t, err)
	assert.Equal(t, "ORD-11111", conf.OrderID)
	assert.True(t, conf.Total.Equal(decimal.NewFromInt(540)))
	assert.Equal(t, 2, f.notifier.Calls())
}

func TestSubmitPayment_TimeoutMovesToFailedRetry(t *testing.T) {
	f := setup(t, WithSubmitTimeout(20*time.Millisecond))
	f.toPayment(t)
	ctx := context.Background()
	f.notifier.release = make(chan struct{})
	before := f.cart.Items()

	_, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	require.ErrorIs(t, err, ErrNotificationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, domain.CheckoutStatusFailedRetry, f.orch.Status())
	assert.False(t, f.orch.Processing())
	assert.Equal(t, before, f.cart.Items())

	f.notifier.set("ORD-22222", nil)
	conf, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	require.NoError(t, err)
	assert.Equal(t, "ORD-22222", conf.OrderID)
}

func TestSubmitPayment_LateResponseIgnored(t *testing.T) {
	f := setup(t, WithSubmitTimeout(20*time.Millisecond))
	f.toPayment(t)
	ctx := context.Background()
	release := make(chan struct{})
	f.notifier.release = release
	f.notifier.ignoreCtx = true

	_, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, domain.CheckoutStatusFailedRetry, f.orch.Status())
	assert.False(t, f.cart.IsEmpty())
	assert.Nil(t, f.orch.View(ctx).Confirmation)
}

func TestSubmitPayment_SecondSubmissionWhileProcessing(t *testing.T) {
	f := setup(t)
	f.toPayment(t)
	ctx := context.Background()
	release := make(chan struct{})
	f.notifier.release = release

	type result struct {
		conf domain.Confirmation
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conf, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
		done <- result{conf, err}
	}()

	require.Eventually(t, func() bool { return f.notifier.Calls() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, f.orch.Processing())

	_, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.ErrorIs(t, f.orch.BeginCheckout(ctx), ErrSubmissionInProgress)
	assert.ErrorIs(t, f.orch.Cancel(ctx), ErrSubmissionInProgress)

	close(release)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "ORD-54321", res.conf.OrderID)
	assert.Equal(t, 1, f.notifier.Calls())
}

func TestClearCart_AbandonsInFlightSubmission(t *testing.T) {
	f := setup(t)
	f.toPayment(t)
	ctx := context.Background()
	release := make(chan struct{})
	f.notifier.release = release

	done := make(chan error, 1)
	go func() {
		_, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
		done <- err
	}()
	require.Eventually(t, func() bool { return f.notifier.Calls() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.orch.ClearCart(ctx))
	close(release)

	assert.ErrorIs(t, <-done, ErrAttemptAbandoned)
	assert.Equal(t, domain.CheckoutStatusBrowsing, f.orch.Status())
	assert.Nil(t, f.orch.View(ctx).Confirmation)
}

func TestClearCart_DropsPendingOrder(t *testing.T) {
	f := setup(t)
	f.toPayment(t)
	ctx := context.Background()

	require.NoError(t, f.orch.ClearCart(ctx))

	assert.True(t, f.cart.IsEmpty())
	_, err := f.orch.PendingOrder(ctx)
	assert.ErrorIs(t, err, ErrNoPendingOrder)
	assert.Equal(t, domain.CheckoutStatusBrowsing, f.orch.Status())
}

func TestSubmitPayment_RequiresPaymentStep(t *testing.T) {
	f := setup(t)
	f.fill(t)
	ctx := context.Background()
	require.NoError(t, f.orch.BeginCheckout(ctx))

	_, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Zero(t, f.notifier.Calls())
}

func TestSubmitPayment_LostPendingOrderReturnsToInfo(t *testing.T) {
	f := setup(t)
	f.toPayment(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, PendingOrderKey, []byte("garbage")))

	_, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	assert.ErrorIs(t, err, ErrNoPendingOrder)
	assert.Equal(t, domain.CheckoutStatusCollectingInfo, f.orch.Status())
	assert.Zero(t, f.notifier.Calls())
}

func TestNewOrchestrator_ResumesAtPayment(t *testing.T) {
	f := setup(t)
	f.toPayment(t)
	ctx := context.Background()

	engine := cart.NewEngine(ctx, testCatalog, f.store)
	resumed := NewOrchestrator(ctx, engine, f.store, f.notifier)

	assert.Equal(t, domain.CheckoutStatusAwaitingPayment, resumed.Status())
}

func TestConfirmed_NewCheckoutStarts(t *testing.T) {
	f := setup(t)
	f.toPayment(t)
	ctx := context.Background()
	_, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	require.NoError(t, err)

	_, err = f.cart.Add(ctx, "fb-v-5k")
	require.NoError(t, err)
	require.NoError(t, f.orch.BeginCheckout(ctx))

	assert.Equal(t, domain.CheckoutStatusCollectingInfo, f.orch.Status())
	assert.Nil(t, f.orch.View(ctx).Confirmation)
}

func TestCancel(t *testing.T) {
	f := setup(t)
	f.toPayment(t)
	ctx := context.Background()

	require.NoError(t, f.orch.Cancel(ctx))

	assert.Equal(t, domain.CheckoutStatusBrowsing, f.orch.Status())
	assert.False(t, f.cart.IsEmpty())
	_, err := f.orch.PendingOrder(ctx)
	assert.ErrorIs(t, err, ErrNoPendingOrder)

	// a reload does not put the buyer back at the payment step
	engine := cart.NewEngine(ctx, testCatalog, f.store)
	resumed := NewOrchestrator(ctx, engine, f.store, f.notifier)
	assert.Equal(t, domain.CheckoutStatusBrowsing, resumed.Status())

	_, err = f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Zero(t, f.notifier.Calls())
}

func TestView_ManualContactLink(t *testing.T) {
	f := setup(t, WithManualContact("https://wa.me/8801846119500", "৳"))
	f.fill(t)

	view := f.orch.View(context.Background())
	assert.Contains(t, view.ManualContactURL, "https://wa.me/8801846119500?text=")
	assert.Contains(t, view.ManualContactURL, "Grand%20Total%3A%20540")
}

// cancelStore fails every call once its context reports cancellation, the
// way network backed stores do.
type cancelStore struct {
	storage.Store
}

func (s cancelStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, key)
}

func (s cancelStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Set(ctx, key, value)
}

func (s cancelStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Delete(ctx, key)
}

// goneCtx starts reporting context.Canceled once leave is called. Done stays
// open so the notifier result is not raced by the deadline select.
type goneCtx struct {
	context.Context
	gone atomic.Bool
}

func (c *goneCtx) leave() { c.gone.Store(true) }

func (c *goneCtx) Err() error {
	if c.gone.Load() {
		return context.Canceled
	}
	return nil
}

type notifierFunc func(ctx context.Context, order domain.OrderSubmission) (string, error)

func (f notifierFunc) Submit(ctx context.Context, order domain.OrderSubmission) (string, error) {
	return f(ctx, order)
}

func TestSubmitPayment_ConfirmationSurvivesCallerLeaving(t *testing.T) {
	mem := storage.NewMemoryStore(0)
	t.Cleanup(func() { _ = mem.Close() })
	store := cancelStore{Store: mem}
	bg := context.Background()

	engine := cart.NewEngine(bg, testCatalog, store)
	ctx := &goneCtx{Context: bg}
	notifier := notifierFunc(func(context.Context, domain.OrderSubmission) (string, error) {
		ctx.leave()
		return "ORD-54321", nil
	})
	orch := NewOrchestrator(bg, engine, store, notifier)

	_, err := engine.Add(bg, "fb-f-1k-real")
	require.NoError(t, err)
	require.NoError(t, orch.BeginCheckout(bg))
	require.NoError(t, orch.SubmitInfo(bg, validInfo()))

	conf, err := orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
	require.NoError(t, err)
	assert.Equal(t, "ORD-54321", conf.OrderID)

	assert.Equal(t, domain.CheckoutStatusConfirmed, orch.Status())
	assert.True(t, engine.IsEmpty())
	_, err = mem.Get(bg, cart.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = mem.Get(bg, PendingOrderKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	reloaded := NewOrchestrator(bg, cart.NewEngine(bg, testCatalog, store), store, notifier)
	assert.Equal(t, domain.CheckoutStatusBrowsing, reloaded.Status())
}

func TestCartEdits_RejectedWhileSubmitting(t *testing.T) {
	f := setup(t)
	f.toPayment(t)
	ctx := context.Background()
	items := f.cart.Items()
	release := make(chan struct{})
	f.notifier.release = release

	done := make(chan error, 1)
	go func() {
		_, err := f.orch.SubmitPayment(ctx, domain.PaymentBKash, "01712345678")
		done <- err
	}()
	require.Eventually(t, func() bool { return f.notifier.Calls() == 1 }, time.Second, 5*time.Millisecond)

	_, err := f.orch.AddItem(ctx, "fb-f-1k-real")
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.ErrorIs(t, f.orch.SetItemQuantity(ctx, items[0].ID, 5), ErrSubmissionInProgress)
	assert.ErrorIs(t, f.orch.RemoveItem(ctx, items[1].ID), ErrSubmissionInProgress)
	assert.Equal(t, items, f.cart.Items())

	close(release)
	require.NoError(t, <-done)

	sub := f.notifier.Last()
	require.Len(t, sub.Cart, 2)
	assert.Equal(t, 2, sub.Cart[0].Quantity)
	assert.True(t, f.cart.IsEmpty())
}

func TestCartEdits(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	item, err := f.orch.AddItem(ctx, "fb-v-5k")
	require.NoError(t, err)
	_, err = f.orch.AddItem(ctx, "nope")
	assert.ErrorIs(t, err, cart.ErrUnknownOffering)

	require.NoError(t, f.orch.SetItemQuantity(ctx, item.ID, 3))
	got, ok := f.cart.Item(item.ID)
	require.True(t, ok)
	assert.Equal(t, 3, got.Quantity)

	assert.ErrorIs(t, f.orch.SetItemQuantity(ctx, "missing", 2), ErrUnknownLineItem)
	assert.ErrorIs(t, f.orch.RemoveItem(ctx, "missing"), ErrUnknownLineItem)

	require.NoError(t, f.orch.RemoveItem(ctx, item.ID))
	assert.True(t, f.cart.IsEmpty())
}
