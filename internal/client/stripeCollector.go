package client

import (
	"context"
	"errors"
	"fmt"

	"worksphere-portal/internal/apperr"
	"worksphere-portal/internal/config"
	"worksphere-portal/internal/model"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentmethod"
)

// PaymentCollector abstracts the processor's hosted payment-collection
// widget. Implementations exchange whatever the widget produced for a
// reusable payment-method token; raw card data never crosses this
// boundary.
type PaymentCollector interface {
	CollectPaymentMethod(ctx context.Context, session *model.PaymentIntentSession, instrumentRef string) (string, error)
}

type stripeCollectorImpl struct{}

func NewStripeCollector(cfg *config.Stripe) (PaymentCollector, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key required")
	}
	stripe.Key = cfg.SecretKey

	return &stripeCollectorImpl{}, nil
}

// CollectPaymentMethod resolves the payment-method reference the
// embedded element produced. Stripe performs the field-level validation
// on its side; we only verify the token exists and is usable.
func (c *stripeCollectorImpl) CollectPaymentMethod(ctx context.Context, session *model.PaymentIntentSession, instrumentRef string) (string, error) {
	if instrumentRef == "" {
		return "", fmt.Errorf("%w: empty payment method reference", apperr.ErrValidation)
	}

	params := &stripe.PaymentMethodParams{}
	params.Context = ctx

	pm, err := paymentmethod.Get(instrumentRef, params)
	if err != nil {
		return "", mapStripeError(err)
	}

	return pm.ID, nil
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeCard:
			return fmt.Errorf("%w: %s", apperr.ErrProcessor, stripeErr.Msg)
		case stripe.ErrorTypeInvalidRequest:
			return fmt.Errorf("%w: %s", apperr.ErrValidation, stripeErr.Msg)
		default:
			return fmt.Errorf("%w: %s", apperr.ErrProcessor, stripeErr.Msg)
		}
	}
	return fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
}
