package model

import "time"

type PaymentType string

const (
	PaymentTypeOneTime      PaymentType = "one_time"
	PaymentTypeSubscription PaymentType = "subscription"
)

// Backend payment-intent statuses we interpret. Anything outside this
// set is surfaced verbatim as a pending outcome, not treated as fatal.
const (
	StatusSucceeded            = "succeeded"
	StatusRequiresCapture      = "requires_capture"
	StatusRequiresAction       = "requires_action"
	StatusRequiresConfirmation = "requires_confirmation"
)

// PaymentIntentSession is the client-side view of one payment attempt.
// It lives for exactly one checkout and is discarded once the checkout
// reaches a terminal state or the user cancels.
type PaymentIntentSession struct {
	ClientSecret string
	Amount       int64
	Currency     string
}

// PaymentHistoryItem is sourced read-only from the backend. It is never
// mutated client-side; a refund changes status only after a re-fetch.
type PaymentHistoryItem struct {
	ID             string      `json:"id"`
	Amount         int64       `json:"amount"`
	Currency       string      `json:"currency"`
	Status         string      `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
	Description    string      `json:"description"`
	Type           PaymentType `json:"type"`
	SubscriptionID string      `json:"subscriptionId,omitempty"`
	DownloadURL    string      `json:"downloadUrl,omitempty"`
}

// Credentials is the session credential slot: written at login, read by
// every outgoing request, cleared as a whole at logout or on a 401.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	UserEmail    string
}

func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == "" && c.UserEmail == ""
}
