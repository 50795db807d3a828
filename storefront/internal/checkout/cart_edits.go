package checkout

import (
	"context"
	"fmt"

	"github.com/fjod/growthshop/storefront/internal/domain"
)

// Buyer cart edits take the checkout lock and are rejected while an order
// is in flight, so the cart cleared on confirmation is the one ordered.

// AddItem adds one unit of an offering to the cart.
func (o *Orchestrator) AddItem(ctx context.Context, offeringID string) (domain.LineItem, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.processing {
		return domain.LineItem{}, ErrSubmissionInProgress
	}
	return o.cart.Add(ctx, offeringID)
}

// SetItemQuantity changes a line item's quantity; zero or less removes it.
func (o *Orchestrator) SetItemQuantity(ctx context.Context, lineItemID string, quantity int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.editable(lineItemID); err != nil {
		return err
	}
	return o.cart.SetQuantity(ctx, lineItemID, quantity)
}

// RemoveItem deletes a line item from the cart.
func (o *Orchestrator) RemoveItem(ctx context.Context, lineItemID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.editable(lineItemID); err != nil {
		return err
	}
	return o.cart.Remove(ctx, lineItemID)
}

// editable checks a line item may be changed now. Callers hold o.mu.
func (o *Orchestrator) editable(lineItemID string) error {
	if o.processing {
		return ErrSubmissionInProgress
	}
	if _, ok := o.cart.Item(lineItemID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLineItem, lineItemID)
	}
	return nil
}
