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

// Service manages farmers and farmer groups. Group links are a full
// replacement on every update: the posted set becomes the set.
type Service struct {
	store store.Store
	authz *auth.Engine
	audit *audit.Service
}

func NewService(st store.Store, authz *auth.Engine, aud *audit.Service) *Service {
	return &Service{store: st, authz: authz, audit: aud}
}

// Input carries a farmer create or full update. GroupIDs nil means leave
// links untouched; an empty non-nil slice clears them.
type Input struct {
	FirstName   string
	LastName    string
	NationalID  string
	PhoneNumber string
	Address     string
	GroupIDs    []uuid.UUID
}

func (s *Service) List(ctx context.Context, userID, companyID uuid.UUID) ([]models.Farmer, error) {
	if err := s.access(ctx, userID, companyID, auth.PermMemberView); err != nil {
		return nil, err
	}
	farmers, err := s.store.Farmers().ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list farmers: %w", err)
	}
	for i := range farmers {
		groups, err := s.store.Farmers().ListGroups(ctx, farmers[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list farmer groups: %w", err)
		}
		farmers[i].Groups = groups
	}
	return farmers, nil
}

func (s *Service) Get(ctx context.Context, userID, companyID, farmerID uuid.UUID) (*models.Farmer, error) {
	if err := s.access(ctx, userID, companyID, auth.PermMemberView); err != nil {
		return nil, err
	}
	farmer, err := s.store.Farmers().GetByID(ctx, companyID, farmerID)
	if err != nil {
		return nil, err
	}
	farmer.Groups, err = s.store.Farmers().ListGroups(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("list farmer groups: %w", err)
	}
	return farmer, nil
}

func (s *Service) Create(ctx context.Context, userID, companyID uuid.UUID, in Input) (*models.Farmer, error) {
	if err := s.access(ctx, userID, companyID, auth.PermMemberCreate); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}
	if err := s.checkGroups(ctx, companyID, in.GroupIDs); err != nil {
		return nil, err
	}

	farmer := &models.Farmer{
		CompanyID:   companyID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		NationalID:  in.NationalID,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
	}
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Farmers().Create(ctx, farmer); err != nil {
			return err
		}
		if len(in.GroupIDs) > 0 {
			if err := tx.Farmers().SetGroups(ctx, farmer.ID, in.GroupIDs); err != nil {
				return fmt.Errorf("link farmer groups: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	farmer.Groups, err = s.store.Farmers().ListGroups(ctx, farmer.ID)
	if err != nil {
		return nil, fmt.Errorf("list farmer groups: %w", err)
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "farmer.created",
		ResourceType: "farmer",
		ResourceID:   &farmer.ID,
		Details:      map[string]interface{}{"national_id": farmer.NationalID},
	})
	return farmer, nil
}

func (s *Service) Update(ctx context.Context, userID, companyID, farmerID uuid.UUID, in Input) (*models.Farmer, error) {
	if err := s.access(ctx, userID, companyID, auth.PermMemberUpdate); err != nil {
		return nil, err
	}

	farmer, err := s.store.Farmers().GetByID(ctx, companyID, farmerID)
	if err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}
	if err := s.checkGroups(ctx, companyID, in.GroupIDs); err != nil {
		return nil, err
	}

	farmer.FirstName = in.FirstName
	farmer.LastName = in.LastName
	farmer.NationalID = in.NationalID
	farmer.PhoneNumber = in.PhoneNumber
	farmer.Address = in.Address

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Farmers().Update(ctx, farmer); err != nil {
			return err
		}
		if in.GroupIDs != nil {
			if err := tx.Farmers().SetGroups(ctx, farmerID, in.GroupIDs); err != nil {
				return fmt.Errorf("link farmer groups: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	farmer.Groups, err = s.store.Farmers().ListGroups(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("list farmer groups: %w", err)
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "farmer.updated",
		ResourceType: "farmer",
		ResourceID:   &farmerID,
		Details:      map[string]interface{}{"national_id": farmer.NationalID},
	})
	return farmer, nil
}

func (s *Service) Delete(ctx context.Context, userID, companyID, farmerID uuid.UUID) error {
	if err := s.access(ctx, userID, companyID, auth.PermMemberDelete); err != nil {
		return err
	}
	if _, err := s.store.Farmers().GetByID(ctx, companyID, farmerID); err != nil {
		return err
	}

	if err := s.store.Farmers().Delete(ctx, companyID, farmerID); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "farmer.deleted",
		ResourceType: "farmer",
		ResourceID:   &farmerID,
	})
	return nil
}

func validate(in *Input) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	if in.FirstName == "" {
		return apperr.Validation("first name is required", "first_name")
	}
	in.LastName = strings.TrimSpace(in.LastName)
	if in.LastName == "" {
		return apperr.Validation("last name is required", "last_name")
	}
	in.NationalID = strings.TrimSpace(in.NationalID)
	if in.NationalID == "" {
		return apperr.Validation("national ID is required", "national_id")
	}
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.PhoneNumber == "" {
		return apperr.Validation("phone number is required", "phone_number")
	}
	in.Address = strings.TrimSpace(in.Address)
	if in.Address == "" {
		return apperr.Validation("address is required", "address")
	}
	return nil
}

// checkGroups rejects links to groups of another company.
func (s *Service) checkGroups(ctx context.Context, companyID uuid.UUID, groupIDs []uuid.UUID) error {
	if len(groupIDs) == 0 {
		return nil
	}
	groups, err := s.store.FarmerGroups().GetByIDs(ctx, companyID, groupIDs)
	if err != nil {
		return fmt.Errorf("load farmer groups: %w", err)
	}
	if len(groups) != len(groupIDs) {
		return apperr.Validation("one or more farmer groups not found or don't belong to this company", "farmer_group_ids")
	}
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
