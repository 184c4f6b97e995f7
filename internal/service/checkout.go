package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"worksphere-portal/internal/apperr"
	"worksphere-portal/internal/client"
	"worksphere-portal/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CheckoutState string

const (
	StateIdle                  CheckoutState = "idle"
	StateSessionCreated        CheckoutState = "session_created"
	StateAwaitingPaymentMethod CheckoutState = "awaiting_payment_method"
	StateConfirming            CheckoutState = "confirming"
	StateSucceeded             CheckoutState = "succeeded"
	StateRequiresAction        CheckoutState = "requires_action"
	StateFailed                CheckoutState = "failed"
)

// clientSecretSeparator splits the processor transaction id from the
// server-side secret inside a client secret (pi_XXX_secret_YYY).
const clientSecretSeparator = "_secret"

type ConfirmOutcome string

const (
	OutcomeSucceeded      ConfirmOutcome = "succeeded"
	OutcomeRequiresAction ConfirmOutcome = "requires_action"
	OutcomePending        ConfirmOutcome = "pending"
)

type ConfirmationResult struct {
	Outcome   ConfirmOutcome
	Status    string // backend status, verbatim
	PaymentID string
}

// Checkout is one payment attempt from the user's point of view. It
// owns its PaymentIntentSession exclusively and is the unit the state
// machine runs over.
type Checkout struct {
	ID         string
	OwnerEmail string
	Type       model.PaymentType
	State      CheckoutState

	Session        model.PaymentIntentSession
	SubscriptionID string // set for EMI checkouts, needed for refunds

	mu sync.Mutex
}

type CheckoutService interface {
	StartOneTimePayment(ctx context.Context, sess client.CredentialSession, amount int64) (*Checkout, error)
	StartInstallmentPayment(ctx context.Context, sess client.CredentialSession, monthlyAmount int64, accountEmail string) (*Checkout, error)
	CollectPaymentMethod(ctx context.Context, sess client.CredentialSession, checkoutID, instrumentRef string) (string, error)
	Confirm(ctx context.Context, sess client.CredentialSession, checkoutID, paymentMethodToken string) (*ConfirmationResult, error)
	Cancel(sess client.CredentialSession, checkoutID string) error
	Refund(ctx context.Context, sess client.CredentialSession, subscriptionID string) (*client.RefundResult, error)
}

type checkoutServiceImpl struct {
	portalClient client.PortalClient
	collector    client.PaymentCollector
	log          zerolog.Logger

	mu        sync.Mutex
	checkouts map[string]*Checkout
	starting  map[string]struct{} // owners with a start request outstanding
}

func NewCheckoutService(portalClient client.PortalClient, collector client.PaymentCollector, log zerolog.Logger) CheckoutService {
	return &checkoutServiceImpl{
		portalClient: portalClient,
		collector:    collector,
		log:          log,
		checkouts:    make(map[string]*Checkout),
		starting:     make(map[string]struct{}),
	}
}

// beginStart reserves the start slot for an owner. It fails when the
// owner already has a start outstanding or a live checkout, which is
// what keeps a double-clicked pay button from creating two sessions.
func (s *checkoutServiceImpl) beginStart(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.starting[owner]; ok {
		return apperr.ErrCheckoutActive
	}
	for _, co := range s.checkouts {
		if co.OwnerEmail == owner && !co.terminal() {
			return apperr.ErrCheckoutActive
		}
	}
	s.starting[owner] = struct{}{}
	return nil
}

func (s *checkoutServiceImpl) endStart(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.starting, owner)
}

func (co *Checkout) terminal() bool {
	return co.State == StateSucceeded || co.State == StateFailed
}

func (s *checkoutServiceImpl) StartOneTimePayment(ctx context.Context, sess client.CredentialSession, amount int64) (*Checkout, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: negative amount %d", apperr.ErrValidation, amount)
	}
	if amount == 0 {
		amount = MembershipAmount
	}
	owner := sess.Credentials().UserEmail

	if err := s.beginStart(owner); err != nil {
		return nil, err
	}
	defer s.endStart(owner)

	resp, err := s.portalClient.CreatePaymentIntent(ctx, sess, amount)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	co := &Checkout{
		ID:         uuid.NewString(),
		OwnerEmail: owner,
		Type:       model.PaymentTypeOneTime,
		State:      StateSessionCreated,
		Session: model.PaymentIntentSession{
			ClientSecret: resp.ClientSecret,
			Amount:       amount,
			Currency:     DefaultCurrency,
		},
	}
	s.register(co)

	s.log.Info().
		Str("checkout_id", co.ID).
		Int64("amount", amount).
		Msg("payment intent session created")

	return co, nil
}

func (s *checkoutServiceImpl) StartInstallmentPayment(ctx context.Context, sess client.CredentialSession, monthlyAmount int64, accountEmail string) (*Checkout, error) {
	if monthlyAmount < 0 {
		return nil, fmt.Errorf("%w: negative amount %d", apperr.ErrValidation, monthlyAmount)
	}
	if monthlyAmount == 0 {
		monthlyAmount = EMIMonthlyAmount
	}
	if accountEmail == "" {
		return nil, fmt.Errorf("%w: account email required for installment plan", apperr.ErrValidation)
	}

	if err := s.beginStart(accountEmail); err != nil {
		return nil, err
	}
	defer s.endStart(accountEmail)

	resp, err := s.portalClient.CreateSubscription(ctx, sess, monthlyAmount, accountEmail)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	co := &Checkout{
		ID:         uuid.NewString(),
		OwnerEmail: accountEmail,
		Type:       model.PaymentTypeSubscription,
		State:      StateSessionCreated,
		Session: model.PaymentIntentSession{
			ClientSecret: resp.ClientSecret,
			Amount:       monthlyAmount,
			Currency:     DefaultCurrency,
		},
		SubscriptionID: resp.SubscriptionID,
	}
	s.register(co)

	s.log.Info().
		Str("checkout_id", co.ID).
		Str("subscription_id", co.SubscriptionID).
		Msg("subscription session created")

	return co, nil
}

// register adds a checkout and drops the owner's settled ones. A
// terminal checkout is kept only until its owner starts the next one,
// so a duplicate confirm still gets a clean rejection while the
// registry stays bounded.
func (s *checkoutServiceImpl) register(co *Checkout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, prev := range s.checkouts {
		if prev.OwnerEmail == co.OwnerEmail && prev.terminal() {
			delete(s.checkouts, id)
		}
	}
	s.checkouts[co.ID] = co
}

func (s *checkoutServiceImpl) lookup(sess client.CredentialSession, checkoutID string) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	co, ok := s.checkouts[checkoutID]
	if !ok {
		return nil, apperr.ErrCheckoutNotFound
	}
	if co.OwnerEmail != sess.Credentials().UserEmail {
		return nil, apperr.ErrCheckoutNotFound
	}
	return co, nil
}

// CollectPaymentMethod delegates to the processor's widget collaborator.
// Validation failures leave the checkout in AwaitingPaymentMethod so the
// user can retry with another instrument.
func (s *checkoutServiceImpl) CollectPaymentMethod(ctx context.Context, sess client.CredentialSession, checkoutID, instrumentRef string) (string, error) {
	co, err := s.lookup(sess, checkoutID)
	if err != nil {
		return "", err
	}

	co.mu.Lock()
	defer co.mu.Unlock()

	switch co.State {
	case StateSessionCreated, StateAwaitingPaymentMethod:
		co.State = StateAwaitingPaymentMethod
	default:
		return "", fmt.Errorf("%w: collect in state %s", apperr.ErrInvalidState, co.State)
	}

	token, err := s.collector.CollectPaymentMethod(ctx, &co.Session, instrumentRef)
	if err != nil {
		return "", fmt.Errorf("collect payment method: %w", err)
	}

	return token, nil
}

// Confirm sends the derived intent id and the payment-method token to
// the backend, exactly once per checkout. The in-flight guard lives
// here, not in the display layer.
func (s *checkoutServiceImpl) Confirm(ctx context.Context, sess client.CredentialSession, checkoutID, paymentMethodToken string) (*ConfirmationResult, error) {
	co, err := s.lookup(sess, checkoutID)
	if err != nil {
		return nil, err
	}

	co.mu.Lock()
	switch co.State {
	case StateAwaitingPaymentMethod, StateRequiresAction:
		co.State = StateConfirming
	case StateConfirming:
		co.mu.Unlock()
		return nil, apperr.ErrConfirmInFlight
	case StateSucceeded:
		co.mu.Unlock()
		return nil, apperr.ErrAlreadyConfirmed
	default:
		co.mu.Unlock()
		return nil, fmt.Errorf("%w: confirm in state %s", apperr.ErrInvalidState, co.State)
	}
	co.mu.Unlock()

	intentID := DeriveIntentID(co.Session.ClientSecret)
	resp, err := s.portalClient.ConfirmPayment(ctx, sess, intentID, paymentMethodToken)

	co.mu.Lock()
	defer co.mu.Unlock()

	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			co.State = StateFailed
		} else {
			// retryable: processor decline or network failure, the
			// session stays alive
			co.State = StateAwaitingPaymentMethod
		}
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	result := &ConfirmationResult{Status: resp.Status, PaymentID: resp.ID}

	switch resp.Status {
	case model.StatusSucceeded, model.StatusRequiresCapture:
		co.State = StateSucceeded
		result.Outcome = OutcomeSucceeded
	case model.StatusRequiresAction, model.StatusRequiresConfirmation:
		// secondary authentication needed; surfaced distinctly so the
		// shell can hand it to the widget's challenge step
		co.State = StateRequiresAction
		result.Outcome = OutcomeRequiresAction
	default:
		// unknown status is pending, not fatal
		co.State = StateAwaitingPaymentMethod
		result.Outcome = OutcomePending
	}

	s.log.Info().
		Str("checkout_id", co.ID).
		Str("status", resp.Status).
		Str("outcome", string(result.Outcome)).
		Msg("payment confirmation settled")

	return result, nil
}

// Cancel discards the client-side session. The backend is not told; a
// pending intent may be left behind server-side. RequiresAction is
// cancellable: the user can abandon an unanswered challenge and start
// over instead of being stuck with a live checkout forever.
func (s *checkoutServiceImpl) Cancel(sess client.CredentialSession, checkoutID string) error {
	co, err := s.lookup(sess, checkoutID)
	if err != nil {
		return err
	}

	co.mu.Lock()
	switch co.State {
	case StateSessionCreated, StateAwaitingPaymentMethod, StateRequiresAction:
		co.State = StateIdle
	default:
		co.mu.Unlock()
		return fmt.Errorf("%w: cancel in state %s", apperr.ErrInvalidState, co.State)
	}
	co.mu.Unlock()

	s.mu.Lock()
	delete(s.checkouts, checkoutID)
	s.mu.Unlock()

	s.log.Info().Str("checkout_id", checkoutID).Msg("checkout cancelled")
	return nil
}

// Refund requires the subscription reference recorded at checkout time.
// Without one it fails before any network call is made. The caller owns
// the blocking user confirmation and the history re-fetch afterwards.
func (s *checkoutServiceImpl) Refund(ctx context.Context, sess client.CredentialSession, subscriptionID string) (*client.RefundResult, error) {
	if subscriptionID == "" {
		return nil, apperr.ErrMissingReference
	}

	result, err := s.portalClient.RefundPayment(ctx, sess, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("refund subscription %s: %w", subscriptionID, err)
	}

	s.log.Info().
		Str("subscription_id", subscriptionID).
		Str("status", result.Status).
		Msg("refund dispatched")

	return result, nil
}

// DeriveIntentID extracts the processor transaction id from a client
// secret: the portion preceding the fixed separator.
func DeriveIntentID(clientSecret string) string {
	if i := strings.Index(clientSecret, clientSecretSeparator); i >= 0 {
		return clientSecret[:i]
	}
	return clientSecret
}
