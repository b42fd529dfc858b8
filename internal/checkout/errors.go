package checkout

import "errors"

var (
	ErrNotAuthenticated   = errors.New("checkout requires an authenticated session")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutInProgress = errors.New("a checkout attempt is already in progress")
	ErrPaymentCancelled   = errors.New("payment cancelled")
	ErrVerificationFailed = errors.New("payment verification failed")

	errIllegalTransition = errors.New("illegal transition of checkout status")
)
