package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hasiltani/agritrace/internal/models"
)

type userStore struct{ db querier }

const userColumns = "id, name, email, COALESCE(image, ''), created_at"

func (s *userStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Image, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get user", "user not found")
	}
	return &u, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Image, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get user by email", "user not found")
	}
	return &u, nil
}

type companyStore struct{ db querier }

const companyColumns = `id, name, created_by, stripe_subscription_id, stripe_price_id,
	 stripe_current_period_end, created_at, updated_at`

func scanCompany(row interface{ Scan(...any) error }, c *models.Company) error {
	return row.Scan(&c.ID, &c.Name, &c.CreatedBy, &c.StripeSubscriptionID, &c.StripePriceID,
		&c.StripeCurrentPeriodEnd, &c.CreatedAt, &c.UpdatedAt)
}

func (s *companyStore) Create(ctx context.Context, c *models.Company) error {
	err := scanCompany(s.db.QueryRow(ctx,
		`INSERT INTO companies (name, created_by) VALUES ($1, $2)
		 RETURNING `+companyColumns,
		c.Name, c.CreatedBy,
	), c)
	return translate(err, "create company", "company name already exists", "name")
}

func (s *companyStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var c models.Company
	err := scanCompany(s.db.QueryRow(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE id = $1", id,
	), &c)
	if err != nil {
		return nil, notFound(err, "get company", "company not found")
	}
	return &c, nil
}

func (s *companyStore) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.Company, error) {
	var c models.Company
	err := scanCompany(s.db.QueryRow(ctx,
		`UPDATE companies SET name = $2, updated_at = now() WHERE id = $1
		 RETURNING `+companyColumns,
		id, name,
	), &c)
	if err != nil {
		return nil, translate(err, "update company", "company name already exists", "name")
	}
	return &c, nil
}

func (s *companyStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM companies WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	return nil
}
