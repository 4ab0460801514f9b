// Package billing exposes a read-only view of a company's subscription.
// Subscription fields are written by the external billing collaborator;
// this backend only derives state from them.
package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/store"
)

type Service struct {
	store store.Store
	authz *auth.Engine
}

func NewService(st store.Store, authz *auth.Engine) *Service {
	return &Service{store: st, authz: authz}
}

// Status is the subscription read-model served to members.
type Status struct {
	Active           bool       `json:"active"`
	SubscriptionID   *string    `json:"subscription_id,omitempty"`
	PriceID          *string    `json:"price_id,omitempty"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

func (s *Service) Status(ctx context.Context, userID, companyID uuid.UUID) (*Status, error) {
	member, err := s.authz.IsMember(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.NotFound("company not found or access denied")
	}

	company, err := s.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &Status{
		Active:           company.HasActiveSubscription(time.Now()),
		SubscriptionID:   company.StripeSubscriptionID,
		PriceID:          company.StripePriceID,
		CurrentPeriodEnd: company.StripeCurrentPeriodEnd,
	}, nil
}
