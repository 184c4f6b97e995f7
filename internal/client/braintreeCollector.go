package client

import (
	"context"
	"errors"
	"fmt"

	"worksphere-portal/internal/apperr"
	"worksphere-portal/internal/config"
	"worksphere-portal/internal/model"

	"github.com/braintree-go/braintree-go"
)

// Alternate collector for deployments fronting Braintree's drop-in UI
// instead of the Stripe element. The drop-in hands the page a one-time
// nonce; vaulting it yields the reusable payment-method token the
// confirm step needs.
type braintreeCollectorImpl struct {
	gateway *braintree.Braintree
}

func NewBraintreeCollector(cfg *config.Braintree) (PaymentCollector, error) {
	if cfg.MerchantID == "" {
		return nil, errors.New("braintree merchant id required")
	}

	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeCollectorImpl{
		gateway: gateway,
	}, nil
}

func (c *braintreeCollectorImpl) CollectPaymentMethod(ctx context.Context, session *model.PaymentIntentSession, instrumentRef string) (string, error) {
	if instrumentRef == "" {
		return "", fmt.Errorf("%w: empty payment method nonce", apperr.ErrValidation)
	}

	customer, err := c.gateway.Customer().Create(ctx, &braintree.CustomerRequest{
		PaymentMethodNonce: instrumentRef,
	})
	if err != nil {
		return "", fmt.Errorf("%w: vault payment method: %v", apperr.ErrProcessor, err)
	}

	if customer.DefaultPaymentMethod() == nil {
		return "", fmt.Errorf("%w: no default payment method returned from vault", apperr.ErrProcessor)
	}

	return customer.DefaultPaymentMethod().GetToken(), nil
}
