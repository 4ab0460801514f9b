package commodity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/models"
	"github.com/hasiltani/agritrace/internal/store"
)

// Service manages the commodity catalog. Commodities are shared across
// companies; access is still gated per company through the caller's
// membership there.
type Service struct {
	store store.Store
	authz *auth.Engine
	audit *audit.Service
}

func NewService(st store.Store, authz *auth.Engine, aud *audit.Service) *Service {
	return &Service{store: st, authz: authz, audit: aud}
}

func (s *Service) List(ctx context.Context, userID, companyID uuid.UUID) ([]models.Commodity, error) {
	if err := s.access(ctx, userID, companyID, auth.PermCommodityView); err != nil {
		return nil, err
	}
	commodities, err := s.store.Commodities().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list commodities: %w", err)
	}
	return commodities, nil
}

func (s *Service) Get(ctx context.Context, userID, companyID, commodityID uuid.UUID) (*models.Commodity, error) {
	if err := s.access(ctx, userID, companyID, auth.PermCommodityView); err != nil {
		return nil, err
	}
	return s.store.Commodities().GetByID(ctx, commodityID)
}

func (s *Service) Create(ctx context.Context, userID, companyID uuid.UUID, name, code string) (*models.Commodity, error) {
	if err := s.access(ctx, userID, companyID, auth.PermCommodityCreate); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required", "name")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Validation("code is required", "code")
	}

	commodity := &models.Commodity{Name: name, Code: code}
	if err := s.store.Commodities().Create(ctx, commodity); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "commodity.created",
		ResourceType: "commodity",
		ResourceID:   &commodity.ID,
		Details:      map[string]interface{}{"code": commodity.Code},
	})
	return commodity, nil
}

// Update applies a partial update; nil fields are left untouched.
func (s *Service) Update(ctx context.Context, userID, companyID, commodityID uuid.UUID, name, code *string) (*models.Commodity, error) {
	if err := s.access(ctx, userID, companyID, auth.PermCommodityUpdate); err != nil {
		return nil, err
	}

	commodity, err := s.store.Commodities().GetByID(ctx, commodityID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperr.Validation("name cannot be empty", "name")
		}
		commodity.Name = trimmed
	}
	if code != nil {
		trimmed := strings.TrimSpace(*code)
		if trimmed == "" {
			return nil, apperr.Validation("code cannot be empty", "code")
		}
		commodity.Code = trimmed
	}

	if err := s.store.Commodities().Update(ctx, commodity); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "commodity.updated",
		ResourceType: "commodity",
		ResourceID:   &commodityID,
		Details:      map[string]interface{}{"code": commodity.Code},
	})
	return commodity, nil
}

// Delete removes a commodity no batch references. Referenced commodities
// are protected.
func (s *Service) Delete(ctx context.Context, userID, companyID, commodityID uuid.UUID) error {
	if err := s.access(ctx, userID, companyID, auth.PermCommodityDelete); err != nil {
		return err
	}

	if _, err := s.store.Commodities().GetByID(ctx, commodityID); err != nil {
		return err
	}

	refs, err := s.store.Batches().CountByCommodity(ctx, commodityID)
	if err != nil {
		return fmt.Errorf("count commodity batches: %w", err)
	}
	if refs > 0 {
		return apperr.BusinessRule("cannot delete commodity with existing batches")
	}

	if err := s.store.Commodities().Delete(ctx, commodityID); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "commodity.deleted",
		ResourceType: "commodity",
		ResourceID:   &commodityID,
	})
	return nil
}

func (s *Service) access(ctx context.Context, userID, companyID uuid.UUID, perm auth.Permission) error {
	isMember, err := s.authz.IsMember(ctx, userID, companyID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperr.NotFound("company not found or access denied")
	}
	return s.authz.Authorize(ctx, userID, companyID, perm)
}
