package checkout

import (
	"errors"
	"strings"
)

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition    = errors.New("illegal transition of checkout status")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrNoPendingOrder       = errors.New("no pending order")
	ErrNotificationFailed   = errors.New("order notification failed")
	ErrAttemptAbandoned     = errors.New("checkout attempt was abandoned")
	ErrUnknownLineItem      = errors.New("line item not found")
)

// ValidationError blocks a forward transition. The caller stays in the
// current state with everything it entered intact.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "required fields missing: " + strings.Join(e.Fields, ", ")
}
