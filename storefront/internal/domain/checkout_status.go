package domain

type CheckoutStatus string

const (
	CheckoutStatusBrowsing        CheckoutStatus = "BROWSING"
	CheckoutStatusCollectingInfo  CheckoutStatus = "COLLECTING_INFO"
	CheckoutStatusAwaitingPayment CheckoutStatus = "AWAITING_PAYMENT"
	CheckoutStatusFailedRetry     CheckoutStatus = "FAILED_RETRY"
	CheckoutStatusConfirmed       CheckoutStatus = "CONFIRMED"
)

var transitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusBrowsing: {
		CheckoutStatusCollectingInfo,
	},
	CheckoutStatusCollectingInfo: {
		CheckoutStatusCollectingInfo,
		CheckoutStatusAwaitingPayment,
		CheckoutStatusBrowsing,
	},
	CheckoutStatusAwaitingPayment: {
		CheckoutStatusAwaitingPayment,
		CheckoutStatusConfirmed,
		CheckoutStatusFailedRetry,
		CheckoutStatusCollectingInfo,
		CheckoutStatusBrowsing,
	},
	CheckoutStatusFailedRetry: {
		CheckoutStatusAwaitingPayment,
		CheckoutStatusConfirmed,
		CheckoutStatusFailedRetry,
		CheckoutStatusCollectingInfo,
		CheckoutStatusBrowsing,
	},
	CheckoutStatusConfirmed: {
		CheckoutStatusBrowsing,
		CheckoutStatusCollectingInfo,
	},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the checkout attempt has finished.
func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusConfirmed
}

// AcceptsPayment reports whether a payment submission may start from s.
func (s CheckoutStatus) AcceptsPayment() bool {
	return s == CheckoutStatusAwaitingPayment || s == CheckoutStatusFailedRetry
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
