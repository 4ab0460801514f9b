package company

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

// RoleView is a role with the users currently holding it.
type RoleView struct {
	models.Role
	Users []MemberView `json:"users,omitempty"`
}

func (s *Service) ListRoles(ctx context.Context, userID, companyID uuid.UUID) ([]models.Role, error) {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, userID, companyID, auth.PermRoleView); err != nil {
		return nil, err
	}

	roles, err := s.store.Roles().ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	for i := range roles {
		perms, err := s.store.Roles().ListPermissions(ctx, roles[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list role permissions: %w", err)
		}
		roles[i].Permissions = perms
	}
	return roles, nil
}

func (s *Service) GetRole(ctx context.Context, userID, companyID, roleID uuid.UUID) (*RoleView, error) {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, userID, companyID, auth.PermRoleView); err != nil {
		return nil, err
	}

	role, err := s.store.Roles().GetByID(ctx, companyID, roleID)
	if err != nil {
		return nil, err
	}
	role.Permissions, err = s.store.Roles().ListPermissions(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}

	memberships, err := s.store.Memberships().ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company memberships: %w", err)
	}
	view := &RoleView{Role: *role}
	for _, m := range memberships {
		if m.RoleID != roleID {
			continue
		}
		user, err := s.store.Users().GetByID(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		view.Users = append(view.Users, MemberView{User: *user, JoinedAt: m.CreatedAt})
	}
	return view, nil
}

func (s *Service) CreateRole(ctx context.Context, userID, companyID uuid.UUID, name string, permissionIDs []string) (*models.Role, error) {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, userID, companyID, auth.PermRoleCreate); err != nil {
		return nil, err
	}

	name, err := normalizeRoleName(name)
	if err != nil {
		return nil, err
	}

	role := &models.Role{CompanyID: companyID, Name: name}
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Roles().Create(ctx, role); err != nil {
			return err
		}
		if len(permissionIDs) > 0 {
			if err := s.validatePermissionIDs(ctx, tx, permissionIDs); err != nil {
				return err
			}
			if err := tx.Roles().SetPermissions(ctx, role.ID, permissionIDs); err != nil {
				return fmt.Errorf("set role permissions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	role.Permissions, err = s.store.Roles().ListPermissions(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}

	s.authz.Invalidate(ctx, companyID)
	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "role.created",
		ResourceType: "role",
		ResourceID:   &role.ID,
		Details:      map[string]interface{}{"name": role.Name},
	})
	return role, nil
}

// UpdateRole renames a role and, when permissionIDs is non-nil, replaces
// its permission set wholesale. The owner role is immutable.
func (s *Service) UpdateRole(ctx context.Context, userID, companyID, roleID uuid.UUID, name string, permissionIDs []string) (*models.Role, error) {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, userID, companyID, auth.PermRoleUpdate); err != nil {
		return nil, err
	}

	role, err := s.store.Roles().GetByID(ctx, companyID, roleID)
	if err != nil {
		return nil, err
	}
	if role.IsOwner() {
		return nil, apperr.BusinessRule("cannot edit owner role")
	}

	name, err = normalizeRoleName(name)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Roles().UpdateName(ctx, roleID, name); err != nil {
			return err
		}
		if permissionIDs != nil {
			if err := s.validatePermissionIDs(ctx, tx, permissionIDs); err != nil {
				return err
			}
			if err := tx.Roles().SetPermissions(ctx, roleID, permissionIDs); err != nil {
				return fmt.Errorf("set role permissions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	role.Name = name
	role.Permissions, err = s.store.Roles().ListPermissions(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}

	s.authz.Invalidate(ctx, companyID)
	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "role.updated",
		ResourceType: "role",
		ResourceID:   &roleID,
		Details:      map[string]interface{}{"name": name},
	})
	return role, nil
}

// DeleteRole removes an unassigned role. The owner role and any role still
// held by a member are protected.
func (s *Service) DeleteRole(ctx context.Context, userID, companyID, roleID uuid.UUID) error {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, userID, companyID, auth.PermRoleDelete); err != nil {
		return err
	}

	role, err := s.store.Roles().GetByID(ctx, companyID, roleID)
	if err != nil {
		return err
	}
	if role.IsOwner() {
		return apperr.BusinessRule("cannot delete owner role")
	}

	assigned, err := s.store.Memberships().CountByRole(ctx, roleID)
	if err != nil {
		return fmt.Errorf("count role assignments: %w", err)
	}
	if assigned > 0 {
		return apperr.BusinessRule("cannot delete role that is assigned to users; reassign users first")
	}

	if err := s.store.Roles().Delete(ctx, companyID, roleID); err != nil {
		return err
	}

	s.authz.Invalidate(ctx, companyID)
	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "role.deleted",
		ResourceType: "role",
		ResourceID:   &roleID,
		Details:      map[string]interface{}{"name": role.Name},
	})
	return nil
}

func (s *Service) validatePermissionIDs(ctx context.Context, tx store.Store, ids []string) error {
	perms, err := tx.Permissions().GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	if len(perms) != len(ids) {
		return apperr.Validation("one or more permissions not found", "permission_ids")
	}
	return nil
}

// Role names are stored lower-cased; "owner" is reserved for the
// bootstrap role.
func normalizeRoleName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", apperr.Validation("role name is required", "name")
	}
	if name == models.OwnerRoleName {
		return "", apperr.BusinessRule("owner role is created automatically and cannot be managed")
	}
	return name, nil
}
