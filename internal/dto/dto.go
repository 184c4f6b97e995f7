package dto

import "worksphere-portal/internal/model"

type SignupRequest struct {
	ID        string `json:"id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Number    string `json:"number,omitempty"`
	Address   string `json:"address,omitempty"`
	State     string `json:"state,omitempty"`
	City      string `json:"city,omitempty"`
	ZipCode   string `json:"zipCode,omitempty"`
	Role      string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// PayRequest starts a checkout. A zero amount falls back to the plan
// default; the terms checkbox must be ticked on the page.
type PayRequest struct {
	Amount int64 `json:"amount"`
	Agreed bool  `json:"agreed" validate:"required"`
}

type StartCheckoutResponse struct {
	CheckoutID   string `json:"checkoutId"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// ConfirmRequest carries the widget's output, never raw card data.
type ConfirmRequest struct {
	PaymentMethodRef string `json:"paymentMethodRef" validate:"required"`
}

type ConfirmResponse struct {
	Outcome     string `json:"outcome"`
	Status      string `json:"status"`
	PaymentID   string `json:"paymentId,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Message     string `json:"message,omitempty"`
}

type RefundRequest struct {
	SubscriptionID string `json:"subscriptionId"`
	// the UI-boundary blocking confirmation: a refund is never
	// dispatched without it
	Confirmed bool `json:"confirmed"`
}

type RefundResponse struct {
	Status string `json:"status"`
}

type HistoryRow struct {
	// human-facing countdown number, derived from list length; a
	// presentation convention only, not a data guarantee
	Seq  int                      `json:"seq"`
	Item model.PaymentHistoryItem `json:"item"`
}

type HistoryResponse struct {
	State string       `json:"state"` // loaded or empty; errors never masquerade as either
	Items []HistoryRow `json:"items"`
}
