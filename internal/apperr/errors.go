package apperr

import "errors"

// Error taxonomy for the portal shell. Each class decides how the
// failure surfaces: auth errors are global (clear credentials, back to
// login), everything else stays local to the view that triggered it.
var (
	// ErrUnauthorized is returned on any 401 from the backend. By the
	// time a caller sees it the credential store is already cleared.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation covers processor-side field validation failures.
	// The checkout session stays alive for a retry.
	ErrValidation = errors.New("payment method validation failed")

	// ErrProcessor covers declines and processor outages.
	ErrProcessor = errors.New("payment processor error")

	// ErrMissingReference blocks a refund that has no recorded
	// subscription reference. Raised before any network call.
	ErrMissingReference = errors.New("transaction has no subscription reference")

	// ErrNetwork covers timeouts and an unreachable backend. Safe to
	// retry by user action since nothing was mutated.
	ErrNetwork = errors.New("backend unreachable")

	ErrNotFound = errors.New("not found")

	// Checkout state machine violations.
	ErrCheckoutActive   = errors.New("another checkout is already in progress")
	ErrAlreadyConfirmed = errors.New("checkout already confirmed")
	ErrConfirmInFlight  = errors.New("confirmation already in flight")
	ErrInvalidState     = errors.New("operation not allowed in current checkout state")
	ErrCheckoutNotFound = errors.New("checkout session not found")
)
