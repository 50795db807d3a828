// Package cart owns the shopping cart of one browser session.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/growthshop/storefront/internal/domain"
	"github.com/fjod/growthshop/storefront/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StorageKey is where the cart snapshot lives inside the session store.
const StorageKey = "cart"

var ErrUnknownOffering = errors.New("unknown offering")

// Catalog is the read-only offering lookup the engine needs.
type Catalog interface {
	Lookup(id string) (domain.Offering, bool)
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDGenerator replaces the line item id source.
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) {
		if f != nil {
			e.newID = f
		}
	}
}

// Engine is the single owner of a session's cart. Every mutation is written
// to the store before it becomes visible in memory, so a returned call always
// leaves both in agreement.
type Engine struct {
	mu      sync.RWMutex
	items   []domain.LineItem
	catalog Catalog
	store   storage.Store
	newID   func() string
	logger  *zap.Logger
}

// NewEngine rehydrates the cart from the store. Missing or malformed state
// yields an empty cart.
func NewEngine(ctx context.Context, catalog Catalog, store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		store:   store,
		newID:   uuid.NewString,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.items = e.load(ctx)
	return e
}

func (e *Engine) load(ctx context.Context) []domain.LineItem {
	data, err := e.store.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		e.logger.Warn("cart state unavailable, starting empty", zap.Error(err))
		return nil
	}

	items, err := decodeItems(data)
	if err != nil {
		e.logger.Warn("discarding malformed cart state", zap.Error(err))
		return nil
	}
	return items
}

func decodeItems(data []byte) ([]domain.LineItem, error) {
	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	ids := make(map[string]struct{}, len(items))
	offerings := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" || item.OfferingID == "" {
			return nil, errors.New("line item without id")
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("line item %s has quantity %d", item.ID, item.Quantity)
		}
		if _, dup := ids[item.ID]; dup {
			return nil, fmt.Errorf("duplicate line item id %s", item.ID)
		}
		if _, dup := offerings[item.OfferingID]; dup {
			return nil, fmt.Errorf("duplicate offering %s", item.OfferingID)
		}
		ids[item.ID] = struct{}{}
		offerings[item.OfferingID] = struct{}{}
	}
	return items, nil
}

// commit persists next and only then swaps it in. Callers hold e.mu.
func (e *Engine) commit(ctx context.Context, next []domain.LineItem) error {
	if next == nil {
		next = []domain.LineItem{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := e.store.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	e.items = next
	return nil
}

func (e *Engine) indexOf(lineItemID string) int {
	for i := range e.items {
		if e.items[i].ID == lineItemID {
			return i
		}
	}
	return -1
}

// Add puts one unit of the offering in the cart. An offering already in the
// cart gets its quantity bumped instead of a second row.
func (e *Engine) Add(ctx context.Context, offeringID string) (domain.LineItem, error) {
	offering, ok := e.catalog.Lookup(offeringID)
	if !ok {
		return domain.LineItem{}, fmt.Errorf("%w: %s", ErrUnknownOffering, offeringID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i, item := range e.items {
		if item.OfferingID == offeringID {
			next := e.cloneItems()
			next[i].Quantity = item.Quantity + 1
			if err := e.commit(ctx, next); err != nil {
				return domain.LineItem{}, err
			}
			return next[i], nil
		}
	}

	item := domain.NewLineItem(e.newID(), offering)
	next := append(e.cloneItems(), item)
	if err := e.commit(ctx, next); err != nil {
		return domain.LineItem{}, err
	}
	e.logger.Debug("line item added", zap.String("offering_id", offeringID), zap.String("line_item_id", item.ID))
	return item, nil
}

// SetQuantity replaces a line item's quantity; zero or less removes it.
// Unknown ids are ignored.
func (e *Engine) SetQuantity(ctx context.Context, lineItemID string, quantity int) error {
	if quantity <= 0 {
		return e.Remove(ctx, lineItemID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(lineItemID)
	if i < 0 {
		return nil
	}
	next := e.cloneItems()
	next[i].Quantity = quantity
	return e.commit(ctx, next)
}

// Remove deletes a line item. Unknown ids are ignored.
func (e *Engine) Remove(ctx context.Context, lineItemID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(lineItemID)
	if i < 0 {
		return nil
	}
	next := make([]domain.LineItem, 0, len(e.items)-1)
	next = append(next, e.items[:i]...)
	next = append(next, e.items[i+1:]...)
	return e.commit(ctx, next)
}

// Clear empties the cart and erases the persisted copy.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("erase cart: %w", err)
	}
	e.items = nil
	return nil
}

// Items returns a copy of the line items in display order.
func (e *Engine) Items() []domain.LineItem {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cloneItems()
}

func (e *Engine) Item(lineItemID string) (domain.LineItem, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i := e.indexOf(lineItemID)
	if i < 0 {
		return domain.LineItem{}, false
	}
	return e.items[i], true
}

func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.items) == 0
}

// Totals is recomputed from the current line items on every call.
func (e *Engine) Totals() domain.Totals {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return ComputeTotals(e.items)
}

// Snapshot returns items and their totals from the same instant.
func (e *Engine) Snapshot() ([]domain.LineItem, domain.Totals) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cloneItems(), ComputeTotals(e.items)
}

func (e *Engine) cloneItems() []domain.LineItem {
	out := make([]domain.LineItem, len(e.items))
	copy(out, e.items)
	return out
}
