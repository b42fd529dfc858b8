package domain

// Prefill carries the customer details handed to the payment sheet.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// CheckoutOrder is the provider-side order created for a single checkout
// attempt. Amount is in minor currency units. A failed or abandoned order
// is never reused; every attempt creates a fresh one.
type CheckoutOrder struct {
	ProviderOrderID string  `json:"orderId"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	KeyID           string  `json:"keyId"`
	InternalOrderID int64   `json:"internalOrderId"`
	TestMode        bool    `json:"testMode"`
	Prefill         Prefill `json:"prefill"`
}

// VerificationRequest carries the provider callback tokens to the backend
// for authoritative confirmation. Under test mode the payment id and
// signature are synthesized placeholders.
type VerificationRequest struct {
	ProviderOrderID   string `json:"providerOrderId"`
	ProviderPaymentID string `json:"providerPaymentId"`
	ProviderSignature string `json:"providerSignature"`
}

// VerificationResult is the backend's final word on a payment. The client
// surfaces Success as-is and makes no trust decision of its own.
type VerificationResult struct {
	Success bool   `json:"success"`
	OrderID int64  `json:"orderId"`
	Message string `json:"message"`
}

type CheckoutStatus string

const (
	CheckoutStatusIdle            CheckoutStatus = "IDLE"
	CheckoutStatusOrderCreating   CheckoutStatus = "ORDER_CREATING"
	CheckoutStatusTestSimulating  CheckoutStatus = "TEST_SIMULATING"
	CheckoutStatusPaymentAwaiting CheckoutStatus = "PAYMENT_AWAITING"
	CheckoutStatusVerifying       CheckoutStatus = "VERIFYING"
	CheckoutStatusSucceeded       CheckoutStatus = "SUCCEEDED"
	CheckoutStatusFailed          CheckoutStatus = "FAILED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusSucceeded || s == CheckoutStatusFailed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

// checkoutTransitions encodes the legal state machine. Succeeded is only
// reachable from Verifying; terminal states reset to Idle for the next
// attempt.
var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:            {CheckoutStatusOrderCreating},
	CheckoutStatusOrderCreating:   {CheckoutStatusTestSimulating, CheckoutStatusPaymentAwaiting, CheckoutStatusFailed},
	CheckoutStatusTestSimulating:  {CheckoutStatusVerifying, CheckoutStatusFailed},
	CheckoutStatusPaymentAwaiting: {CheckoutStatusVerifying, CheckoutStatusFailed},
	CheckoutStatusVerifying:       {CheckoutStatusSucceeded, CheckoutStatusFailed},
	CheckoutStatusSucceeded:       {CheckoutStatusIdle},
	CheckoutStatusFailed:          {CheckoutStatusIdle},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
