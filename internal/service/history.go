package service

import (
	"context"
	"fmt"

	"worksphere-portal/internal/client"
	"worksphere-portal/internal/model"

	"github.com/rs/zerolog"
)

type HistoryService interface {
	// FetchHistory returns past payment events, optionally scoped by
	// type. A backend failure comes back as an error, never as an
	// empty list; the view decides between retry and empty states.
	FetchHistory(ctx context.Context, sess client.CredentialSession, filterType model.PaymentType, accountEmail string) ([]*model.PaymentHistoryItem, error)
}

type historyServiceImpl struct {
	portalClient client.PortalClient
	log          zerolog.Logger
}

func NewHistoryService(portalClient client.PortalClient, log zerolog.Logger) HistoryService {
	return &historyServiceImpl{
		portalClient: portalClient,
		log:          log,
	}
}

func (s *historyServiceImpl) FetchHistory(ctx context.Context, sess client.CredentialSession, filterType model.PaymentType, accountEmail string) ([]*model.PaymentHistoryItem, error) {
	if accountEmail == "" {
		accountEmail = sess.Credentials().UserEmail
	}
	if accountEmail == "" {
		return nil, fmt.Errorf("no account email to scope history query")
	}

	items, err := s.portalClient.GetPaymentHistory(ctx, sess, accountEmail)
	if err != nil {
		return nil, fmt.Errorf("fetch payment history: %w", err)
	}

	if filterType == "" {
		return items, nil
	}

	filtered := make([]*model.PaymentHistoryItem, 0, len(items))
	for _, item := range items {
		if item.Type == filterType {
			filtered = append(filtered, item)
		}
	}

	s.log.Debug().
		Str("filter", string(filterType)).
		Int("total", len(items)).
		Int("matched", len(filtered)).
		Msg("history reconciled")

	return filtered, nil
}
