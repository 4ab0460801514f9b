package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant unit. Billing fields are written by the external
// billing collaborator and are read-only to this backend.
type Company struct {
	ID                     uuid.UUID  `json:"id" db:"id"`
	Name                   string     `json:"name" db:"name"`
	CreatedBy              uuid.UUID  `json:"created_by" db:"created_by"`
	StripeSubscriptionID   *string    `json:"stripe_subscription_id,omitempty" db:"stripe_subscription_id"`
	StripePriceID          *string    `json:"stripe_price_id,omitempty" db:"stripe_price_id"`
	StripeCurrentPeriodEnd *time.Time `json:"stripe_current_period_end,omitempty" db:"stripe_current_period_end"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}

// HasActiveSubscription derives subscription state from the billing fields.
func (c *Company) HasActiveSubscription(now time.Time) bool {
	return c.StripeSubscriptionID != nil &&
		c.StripeCurrentPeriodEnd != nil &&
		now.Before(*c.StripeCurrentPeriodEnd)
}

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Image     string    `json:"image,omitempty" db:"image"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
