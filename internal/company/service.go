package company

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/models"
	"github.com/hasiltani/agritrace/internal/store"
)

// Service owns company lifecycle and the role/membership administration
// around it. Creating a company also bootstraps its owner role and the
// creator's membership in one transaction.
type Service struct {
	store store.Store
	authz *auth.Engine
	audit *audit.Service
}

func NewService(st store.Store, authz *auth.Engine, aud *audit.Service) *Service {
	return &Service{store: st, authz: authz, audit: aud}
}

// View is a company as seen by one user: the company row plus that user's
// resolved roles and permissions in it.
type View struct {
	models.Company
	IsOwner               bool     `json:"is_owner"`
	Roles                 []string `json:"roles"`
	Permissions           []string `json:"permissions"`
	HasActiveSubscription bool     `json:"has_active_subscription"`
}

type MemberView struct {
	models.User
	Roles    []models.Role `json:"roles"`
	JoinedAt time.Time     `json:"joined_at"`
}

// Create bootstraps a new company: the company row, its owner role holding
// the full permission catalog, and the creator's owner membership, all in
// one transaction.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name string) (*View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("company name is required", "name")
	}

	company := &models.Company{Name: name, CreatedBy: userID}
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Companies().Create(ctx, company); err != nil {
			return fmt.Errorf("create company: %w", err)
		}

		perms, err := tx.Permissions().List(ctx)
		if err != nil {
			return fmt.Errorf("list permissions: %w", err)
		}
		permIDs := make([]string, len(perms))
		for i, p := range perms {
			permIDs[i] = p.ID
		}

		ownerRole := &models.Role{CompanyID: company.ID, Name: models.OwnerRoleName}
		if err := tx.Roles().Create(ctx, ownerRole); err != nil {
			return fmt.Errorf("create owner role: %w", err)
		}
		if err := tx.Roles().SetPermissions(ctx, ownerRole.ID, permIDs); err != nil {
			return fmt.Errorf("grant owner permissions: %w", err)
		}

		membership := &models.Membership{
			UserID:    userID,
			CompanyID: company.ID,
			RoleID:    ownerRole.ID,
		}
		if err := tx.Memberships().Create(ctx, membership); err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    company.ID,
		Action:       "company.created",
		ResourceType: "company",
		ResourceID:   &company.ID,
		Details:      map[string]interface{}{"name": company.Name},
	})

	return &View{
		Company: *company,
		IsOwner: true,
		Roles:   []string{models.OwnerRoleName},
	}, nil
}

// ListForUser returns every company the user belongs to, with the user's
// roles and unioned permissions in each.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]View, error) {
	memberships, err := s.store.Memberships().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	byCompany := map[uuid.UUID][]models.Membership{}
	var order []uuid.UUID
	for _, m := range memberships {
		if _, seen := byCompany[m.CompanyID]; !seen {
			order = append(order, m.CompanyID)
		}
		byCompany[m.CompanyID] = append(byCompany[m.CompanyID], m)
	}

	views := make([]View, 0, len(order))
	for _, companyID := range order {
		v, err := s.buildView(ctx, companyID, byCompany[companyID])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// Get returns one company with the caller's roles and, when the caller may
// view members, the member roster. Non-members get NotFound rather than a
// confirmation that the company exists.
func (s *Service) Get(ctx context.Context, userID, companyID uuid.UUID) (*View, []MemberView, error) {
	memberships, err := s.requireMember(ctx, userID, companyID)
	if err != nil {
		return nil, nil, err
	}

	v, err := s.buildView(ctx, companyID, memberships)
	if err != nil {
		return nil, nil, err
	}

	canViewMembers, err := s.authz.HasPermission(ctx, userID, companyID, auth.PermMemberView)
	if err != nil {
		return nil, nil, err
	}
	var members []MemberView
	if canViewMembers {
		members, err = s.listMembers(ctx, companyID)
		if err != nil {
			return nil, nil, err
		}
	}
	return v, members, nil
}

// UpdateName renames a company. Owner only.
func (s *Service) UpdateName(ctx context.Context, userID, companyID uuid.UUID, name string) (*models.Company, error) {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, userID, companyID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("company name is required", "name")
	}

	company, err := s.store.Companies().UpdateName(ctx, companyID, name)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "company.updated",
		ResourceType: "company",
		ResourceID:   &companyID,
		Details:      map[string]interface{}{"name": name},
	})
	return company, nil
}

// Delete removes a company and everything scoped to it: batches with their
// sources, attributes and relations, lands, farmers, farmer groups,
// webhooks, memberships and roles, in one transaction. Owner only.
func (s *Service) Delete(ctx context.Context, userID, companyID uuid.UUID) error {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return err
	}
	if err := s.requireOwner(ctx, userID, companyID); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx store.Store) error {
		batches, err := tx.Batches().ListByCompany(ctx, companyID)
		if err != nil {
			return fmt.Errorf("list batches: %w", err)
		}
		for _, b := range batches {
			if err := tx.BatchSources().DeleteByBatch(ctx, b.ID); err != nil {
				return fmt.Errorf("delete batch sources: %w", err)
			}
			if err := tx.BatchAttributes().DeleteByBatch(ctx, b.ID); err != nil {
				return fmt.Errorf("delete batch attributes: %w", err)
			}
			if err := tx.BatchRelations().DeleteByBatch(ctx, b.ID); err != nil {
				return fmt.Errorf("delete batch relations: %w", err)
			}
		}
		if err := tx.Batches().DeleteByCompany(ctx, companyID); err != nil {
			return fmt.Errorf("delete batches: %w", err)
		}
		if err := tx.Lands().DeleteByCompany(ctx, companyID); err != nil {
			return fmt.Errorf("delete lands: %w", err)
		}
		if err := tx.Farmers().DeleteByCompany(ctx, companyID); err != nil {
			return fmt.Errorf("delete farmers: %w", err)
		}
		if err := tx.FarmerGroups().DeleteByCompany(ctx, companyID); err != nil {
			return fmt.Errorf("delete farmer groups: %w", err)
		}
		if err := tx.Webhooks().DeleteByCompany(ctx, companyID); err != nil {
			return fmt.Errorf("delete webhooks: %w", err)
		}
		if err := tx.Memberships().DeleteByCompany(ctx, companyID); err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if err := tx.Roles().DeleteByCompany(ctx, companyID); err != nil {
			return fmt.Errorf("delete roles: %w", err)
		}
		if err := tx.Companies().Delete(ctx, companyID); err != nil {
			return fmt.Errorf("delete company: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.authz.Invalidate(ctx, companyID)
	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "company.deleted",
		ResourceType: "company",
		ResourceID:   &companyID,
	})
	return nil
}

// SearchUserByEmail looks up a user by exact email, the target lookup used
// before adding a member.
func (s *Service) SearchUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.Validation("email is required", "email")
	}
	return s.store.Users().GetByEmail(ctx, email)
}

// Permissions returns the global catalog; requires membership in the
// company plus member:permission:view.
func (s *Service) Permissions(ctx context.Context, userID, companyID uuid.UUID) ([]models.Permission, error) {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, userID, companyID, auth.PermPermissionView); err != nil {
		return nil, err
	}
	perms, err := s.store.Permissions().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return perms, nil
}

func (s *Service) buildView(ctx context.Context, companyID uuid.UUID, memberships []models.Membership) (*View, error) {
	company, err := s.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	roleIDs := make([]uuid.UUID, len(memberships))
	for i, m := range memberships {
		roleIDs[i] = m.RoleID
	}
	roles, err := s.store.Roles().GetByIDs(ctx, companyID, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	v := &View{Company: *company}
	v.HasActiveSubscription = company.HasActiveSubscription(time.Now())
	seen := map[string]bool{}
	for _, r := range roles {
		v.Roles = append(v.Roles, r.Name)
		if r.IsOwner() {
			v.IsOwner = true
			continue
		}
		perms, err := s.store.Roles().ListPermissions(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("list role permissions: %w", err)
		}
		for _, p := range perms {
			if !seen[p.Name] {
				seen[p.Name] = true
				v.Permissions = append(v.Permissions, p.Name)
			}
		}
	}
	return v, nil
}

func (s *Service) listMembers(ctx context.Context, companyID uuid.UUID) ([]MemberView, error) {
	memberships, err := s.store.Memberships().ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company memberships: %w", err)
	}

	byUser := map[uuid.UUID]*MemberView{}
	var order []uuid.UUID
	for _, m := range memberships {
		mv, seen := byUser[m.UserID]
		if !seen {
			user, err := s.store.Users().GetByID(ctx, m.UserID)
			if err != nil {
				return nil, err
			}
			mv = &MemberView{User: *user, JoinedAt: m.CreatedAt}
			byUser[m.UserID] = mv
			order = append(order, m.UserID)
		}
		role, err := s.store.Roles().GetByID(ctx, companyID, m.RoleID)
		if err != nil {
			return nil, err
		}
		mv.Roles = append(mv.Roles, *role)
	}

	members := make([]MemberView, 0, len(order))
	for _, id := range order {
		members = append(members, *byUser[id])
	}
	return members, nil
}

// requireMember hides the company from non-members: they get NotFound
// instead of Unauthorized.
func (s *Service) requireMember(ctx context.Context, userID, companyID uuid.UUID) ([]models.Membership, error) {
	memberships, err := s.store.Memberships().ListByUserCompany(ctx, userID, companyID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return nil, apperr.NotFound("company not found or access denied")
	}
	return memberships, nil
}

// RequireOwner gates owner-only surfaces outside this package, such as
// the audit log listing. Non-members get NotFound, members without the
// owner role get Unauthorized.
func (s *Service) RequireOwner(ctx context.Context, userID, companyID uuid.UUID) error {
	if _, err := s.requireMember(ctx, userID, companyID); err != nil {
		return err
	}
	return s.requireOwner(ctx, userID, companyID)
}

func (s *Service) requireOwner(ctx context.Context, userID, companyID uuid.UUID) error {
	isOwner, err := s.authz.IsOwner(ctx, userID, companyID)
	if err != nil {
		return err
	}
	if !isOwner {
		return apperr.Unauthorized("only the owner can do this")
	}
	return nil
}
