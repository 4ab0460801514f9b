package farmer

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

// GroupInput carries a group create or full update. FarmerIDs nil leaves
// member links untouched; an empty non-nil slice clears them.
type GroupInput struct {
	Name      string
	FarmerIDs []uuid.UUID
}

func (s *Service) ListGroups(ctx context.Context, userID, companyID uuid.UUID) ([]models.FarmerGroup, error) {
	if err := s.access(ctx, userID, companyID, auth.PermMemberView); err != nil {
		return nil, err
	}
	groups, err := s.store.FarmerGroups().ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list farmer groups: %w", err)
	}
	for i := range groups {
		farmers, err := s.store.FarmerGroups().ListFarmers(ctx, groups[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list group farmers: %w", err)
		}
		groups[i].Farmers = farmers
	}
	return groups, nil
}

func (s *Service) GetGroup(ctx context.Context, userID, companyID, groupID uuid.UUID) (*models.FarmerGroup, error) {
	if err := s.access(ctx, userID, companyID, auth.PermMemberView); err != nil {
		return nil, err
	}
	group, err := s.store.FarmerGroups().GetByID(ctx, companyID, groupID)
	if err != nil {
		return nil, err
	}
	group.Farmers, err = s.store.FarmerGroups().ListFarmers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group farmers: %w", err)
	}
	return group, nil
}

func (s *Service) CreateGroup(ctx context.Context, userID, companyID uuid.UUID, in GroupInput) (*models.FarmerGroup, error) {
	if err := s.access(ctx, userID, companyID, auth.PermMemberCreate); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Validation("name is required", "name")
	}
	if err := s.checkFarmers(ctx, companyID, in.FarmerIDs); err != nil {
		return nil, err
	}

	group := &models.FarmerGroup{CompanyID: companyID, Name: in.Name}
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.FarmerGroups().Create(ctx, group); err != nil {
			return err
		}
		if len(in.FarmerIDs) > 0 {
			if err := tx.FarmerGroups().SetFarmers(ctx, group.ID, in.FarmerIDs); err != nil {
				return fmt.Errorf("link group farmers: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	group.Farmers, err = s.store.FarmerGroups().ListFarmers(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("list group farmers: %w", err)
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "farmer_group.created",
		ResourceType: "farmer_group",
		ResourceID:   &group.ID,
		Details:      map[string]interface{}{"name": group.Name},
	})
	return group, nil
}

func (s *Service) UpdateGroup(ctx context.Context, userID, companyID, groupID uuid.UUID, in GroupInput) (*models.FarmerGroup, error) {
	if err := s.access(ctx, userID, companyID, auth.PermMemberUpdate); err != nil {
		return nil, err
	}

	group, err := s.store.FarmerGroups().GetByID(ctx, companyID, groupID)
	if err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Validation("name is required", "name")
	}
	if err := s.checkFarmers(ctx, companyID, in.FarmerIDs); err != nil {
		return nil, err
	}

	group.Name = in.Name
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.FarmerGroups().Update(ctx, group); err != nil {
			return err
		}
		if in.FarmerIDs != nil {
			if err := tx.FarmerGroups().SetFarmers(ctx, groupID, in.FarmerIDs); err != nil {
				return fmt.Errorf("link group farmers: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	group.Farmers, err = s.store.FarmerGroups().ListFarmers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group farmers: %w", err)
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "farmer_group.updated",
		ResourceType: "farmer_group",
		ResourceID:   &groupID,
		Details:      map[string]interface{}{"name": group.Name},
	})
	return group, nil
}

func (s *Service) DeleteGroup(ctx context.Context, userID, companyID, groupID uuid.UUID) error {
	if err := s.access(ctx, userID, companyID, auth.PermMemberDelete); err != nil {
		return err
	}
	if _, err := s.store.FarmerGroups().GetByID(ctx, companyID, groupID); err != nil {
		return err
	}

	if err := s.store.FarmerGroups().Delete(ctx, companyID, groupID); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "farmer_group.deleted",
		ResourceType: "farmer_group",
		ResourceID:   &groupID,
	})
	return nil
}

// checkFarmers rejects links to farmers of another company.
func (s *Service) checkFarmers(ctx context.Context, companyID uuid.UUID, farmerIDs []uuid.UUID) error {
	if len(farmerIDs) == 0 {
		return nil
	}
	farmers, err := s.store.Farmers().GetByIDs(ctx, companyID, farmerIDs)
	if err != nil {
		return fmt.Errorf("load farmers: %w", err)
	}
	if len(farmers) != len(farmerIDs) {
		return apperr.Validation("one or more farmers not found or don't belong to this company", "farmer_ids")
	}
	return nil
}
