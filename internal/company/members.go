package company

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/models"
	"github.com/hasiltani/agritrace/internal/store"
)

// AddMember grants the target user the given roles in the company. Roles
// the target already holds are filtered out; the owner role is never
// assignable.
func (s *Service) AddMember(ctx context.Context, userID, companyID, targetUserID uuid.UUID, roleIDs []uuid.UUID) error {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, userID, companyID, auth.PermMemberCreate); err != nil {
		return err
	}

	if len(roleIDs) == 0 {
		return apperr.Validation("at least one role ID is required", "role_ids")
	}

	if _, err := s.store.Users().GetByID(ctx, targetUserID); err != nil {
		return err
	}

	roles, err := s.store.Roles().GetByIDs(ctx, companyID, roleIDs)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	if len(roles) != len(roleIDs) {
		return apperr.NotFound("one or more roles not found or do not belong to this company")
	}
	for _, r := range roles {
		if r.IsOwner() {
			return apperr.BusinessRule("cannot assign owner role")
		}
	}

	existing, err := s.store.Memberships().ListByUserCompany(ctx, targetUserID, companyID)
	if err != nil {
		return fmt.Errorf("list memberships: %w", err)
	}
	held := map[uuid.UUID]bool{}
	for _, m := range existing {
		held[m.RoleID] = true
	}
	var newRoleIDs []uuid.UUID
	for _, id := range roleIDs {
		if !held[id] {
			newRoleIDs = append(newRoleIDs, id)
		}
	}
	if len(newRoleIDs) == 0 {
		return apperr.Conflict("user already has all selected roles in this company", "role_ids")
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		for _, roleID := range newRoleIDs {
			m := &models.Membership{UserID: targetUserID, CompanyID: companyID, RoleID: roleID}
			if err := tx.Memberships().Create(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.authz.Invalidate(ctx, companyID)
	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "member.added",
		ResourceType: "membership",
		ResourceID:   &targetUserID,
		Details:      map[string]interface{}{"role_count": len(newRoleIDs)},
	})
	return nil
}

// UpdateMemberRole reassigns a member's single membership to a new role.
// Memberships holding the owner role cannot be changed, and the owner role
// cannot be assigned.
func (s *Service) UpdateMemberRole(ctx context.Context, userID, companyID, targetUserID, roleID uuid.UUID) error {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, userID, companyID, auth.PermMemberUpdate); err != nil {
		return err
	}

	memberships, err := s.store.Memberships().ListByUserCompany(ctx, targetUserID, companyID)
	if err != nil {
		return fmt.Errorf("list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return apperr.NotFound("user is not a member of this company")
	}

	currentRoleIDs := make([]uuid.UUID, len(memberships))
	for i, m := range memberships {
		currentRoleIDs[i] = m.RoleID
	}
	currentRoles, err := s.store.Roles().GetByIDs(ctx, companyID, currentRoleIDs)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	for _, r := range currentRoles {
		if r.IsOwner() {
			return apperr.BusinessRule("cannot edit owner; owner role cannot be changed")
		}
	}

	newRole, err := s.store.Roles().GetByID(ctx, companyID, roleID)
	if err != nil {
		return err
	}
	if newRole.IsOwner() {
		return apperr.BusinessRule("cannot assign owner role")
	}

	if err := s.store.Memberships().UpdateRole(ctx, memberships[0].ID, roleID); err != nil {
		return err
	}

	s.authz.Invalidate(ctx, companyID)
	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "member.role_updated",
		ResourceType: "membership",
		ResourceID:   &targetUserID,
		Details:      map[string]interface{}{"role": newRole.Name},
	})
	return nil
}

// RemoveMember deletes every membership the target holds in the company.
// Owners cannot be removed. Members may remove themselves without the
// member:user:delete permission.
func (s *Service) RemoveMember(ctx context.Context, userID, companyID, targetUserID uuid.UUID) error {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return err
	}

	memberships, err := s.store.Memberships().ListByUserCompany(ctx, targetUserID, companyID)
	if err != nil {
		return fmt.Errorf("list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return apperr.NotFound("user is not a member of this company")
	}

	targetIsOwner, err := s.authz.IsOwner(ctx, targetUserID, companyID)
	if err != nil {
		return err
	}
	if targetIsOwner {
		return apperr.BusinessRule("cannot remove owner")
	}

	if targetUserID != userID {
		if err := s.authz.Authorize(ctx, userID, companyID, auth.PermMemberDelete); err != nil {
			return err
		}
	}

	if err := s.store.Memberships().DeleteByUserCompany(ctx, targetUserID, companyID); err != nil {
		return err
	}

	s.authz.Invalidate(ctx, companyID)
	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "member.removed",
		ResourceType: "membership",
		ResourceID:   &targetUserID,
	})
	return nil
}
