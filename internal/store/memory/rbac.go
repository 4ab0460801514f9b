package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/models"
)

type userStore struct{ s *Store }

func (u *userStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	defer u.s.lock()()
	usr, ok := u.s.data.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &usr, nil
}

func (u *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer u.s.lock()()
	for _, usr := range u.s.data.users {
		if strings.EqualFold(usr.Email, email) {
			usr := usr
			return &usr, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

type companyStore struct{ s *Store }

func (c *companyStore) Create(ctx context.Context, comp *models.Company) error {
	defer c.s.lock()()
	for _, existing := range c.s.data.companies {
		if existing.Name == comp.Name {
			return apperr.Conflict("company name already exists", "name")
		}
	}
	comp.ID = uuid.New()
	comp.CreatedAt = time.Now()
	comp.UpdatedAt = comp.CreatedAt
	c.s.data.companies[comp.ID] = *comp
	c.s.data.touch(comp.ID)
	return nil
}

func (c *companyStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	defer c.s.lock()()
	comp, ok := c.s.data.companies[id]
	if !ok {
		return nil, apperr.NotFound("company not found")
	}
	return &comp, nil
}

func (c *companyStore) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.Company, error) {
	defer c.s.lock()()
	comp, ok := c.s.data.companies[id]
	if !ok {
		return nil, apperr.NotFound("company not found")
	}
	for other, existing := range c.s.data.companies {
		if other != id && existing.Name == name {
			return nil, apperr.Conflict("company name already exists", "name")
		}
	}
	comp.Name = name
	comp.UpdatedAt = time.Now()
	c.s.data.companies[id] = comp
	return &comp, nil
}

func (c *companyStore) Delete(ctx context.Context, id uuid.UUID) error {
	defer c.s.lock()()
	delete(c.s.data.companies, id)
	return nil
}

type permissionStore struct{ s *Store }

func (p *permissionStore) List(ctx context.Context) ([]models.Permission, error) {
	defer p.s.lock()()
	perms := make([]models.Permission, 0, len(p.s.data.permissions))
	for _, perm := range p.s.data.permissions {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i].Name < perms[j].Name })
	return perms, nil
}

func (p *permissionStore) GetByIDs(ctx context.Context, ids []string) ([]models.Permission, error) {
	defer p.s.lock()()
	var perms []models.Permission
	for _, id := range ids {
		if perm, ok := p.s.data.permissions[id]; ok {
			perms = append(perms, perm)
		}
	}
	return perms, nil
}

type roleStore struct{ s *Store }

func (r *roleStore) Create(ctx context.Context, role *models.Role) error {
	defer r.s.lock()()
	for _, existing := range r.s.data.roles {
		if existing.CompanyID == role.CompanyID && existing.Name == role.Name {
			return apperr.Conflict("role name already exists for this company", "name")
		}
	}
	role.ID = uuid.New()
	role.CreatedAt = time.Now()
	stored := *role
	stored.Permissions = nil
	r.s.data.roles[role.ID] = stored
	r.s.data.touch(role.ID)
	return nil
}

func (r *roleStore) GetByID(ctx context.Context, companyID, roleID uuid.UUID) (*models.Role, error) {
	defer r.s.lock()()
	role, ok := r.s.data.roles[roleID]
	if !ok || role.CompanyID != companyID {
		return nil, apperr.NotFound("role not found")
	}
	return &role, nil
}

func (r *roleStore) GetByIDs(ctx context.Context, companyID uuid.UUID, roleIDs []uuid.UUID) ([]models.Role, error) {
	defer r.s.lock()()
	var roles []models.Role
	for _, id := range roleIDs {
		if role, ok := r.s.data.roles[id]; ok && role.CompanyID == companyID {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (r *roleStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Role, error) {
	defer r.s.lock()()
	var roles []models.Role
	for _, role := range r.s.data.roles {
		if role.CompanyID == companyID {
			roles = append(roles, role)
		}
	}
	sortBySeq(r.s.data, roles, func(x models.Role) uuid.UUID { return x.ID }, false)
	return roles, nil
}

func (r *roleStore) UpdateName(ctx context.Context, roleID uuid.UUID, name string) error {
	defer r.s.lock()()
	role, ok := r.s.data.roles[roleID]
	if !ok {
		return apperr.NotFound("role not found")
	}
	for other, existing := range r.s.data.roles {
		if other != roleID && existing.CompanyID == role.CompanyID && existing.Name == name {
			return apperr.Conflict("role name already exists for this company", "name")
		}
	}
	role.Name = name
	r.s.data.roles[roleID] = role
	return nil
}

func (r *roleStore) Delete(ctx context.Context, companyID, roleID uuid.UUID) error {
	defer r.s.lock()()
	role, ok := r.s.data.roles[roleID]
	if ok && role.CompanyID == companyID {
		delete(r.s.data.roles, roleID)
		delete(r.s.data.rolePerms, roleID)
	}
	return nil
}

func (r *roleStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	defer r.s.lock()()
	for id, role := range r.s.data.roles {
		if role.CompanyID == companyID {
			delete(r.s.data.roles, id)
			delete(r.s.data.rolePerms, id)
		}
	}
	return nil
}

func (r *roleStore) SetPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []string) error {
	defer r.s.lock()()
	ids := make([]string, len(permissionIDs))
	copy(ids, permissionIDs)
	r.s.data.rolePerms[roleID] = ids
	return nil
}

func (r *roleStore) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]models.Permission, error) {
	defer r.s.lock()()
	var perms []models.Permission
	for _, id := range r.s.data.rolePerms[roleID] {
		if perm, ok := r.s.data.permissions[id]; ok {
			perms = append(perms, perm)
		}
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i].Name < perms[j].Name })
	return perms, nil
}

type membershipStore struct{ s *Store }

func (m *membershipStore) Create(ctx context.Context, mem *models.Membership) error {
	defer m.s.lock()()
	for _, existing := range m.s.data.memberships {
		if existing.UserID == mem.UserID && existing.CompanyID == mem.CompanyID && existing.RoleID == mem.RoleID {
			return apperr.Conflict("user already holds this role in this company", "role_id")
		}
	}
	mem.ID = uuid.New()
	mem.CreatedAt = time.Now()
	m.s.data.memberships[mem.ID] = *mem
	m.s.data.touch(mem.ID)
	return nil
}

func (m *membershipStore) ListByUserCompany(ctx context.Context, userID, companyID uuid.UUID) ([]models.Membership, error) {
	defer m.s.lock()()
	var ms []models.Membership
	for _, mem := range m.s.data.memberships {
		if mem.UserID == userID && mem.CompanyID == companyID {
			ms = append(ms, mem)
		}
	}
	sortBySeq(m.s.data, ms, func(x models.Membership) uuid.UUID { return x.ID }, false)
	return ms, nil
}

func (m *membershipStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	defer m.s.lock()()
	var ms []models.Membership
	for _, mem := range m.s.data.memberships {
		if mem.UserID == userID {
			ms = append(ms, mem)
		}
	}
	sortBySeq(m.s.data, ms, func(x models.Membership) uuid.UUID { return x.ID }, true)
	return ms, nil
}

func (m *membershipStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Membership, error) {
	defer m.s.lock()()
	var ms []models.Membership
	for _, mem := range m.s.data.memberships {
		if mem.CompanyID == companyID {
			ms = append(ms, mem)
		}
	}
	sortBySeq(m.s.data, ms, func(x models.Membership) uuid.UUID { return x.ID }, false)
	return ms, nil
}

func (m *membershipStore) CountByRole(ctx context.Context, roleID uuid.UUID) (int, error) {
	defer m.s.lock()()
	n := 0
	for _, mem := range m.s.data.memberships {
		if mem.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

func (m *membershipStore) UpdateRole(ctx context.Context, membershipID, roleID uuid.UUID) error {
	defer m.s.lock()()
	mem, ok := m.s.data.memberships[membershipID]
	if !ok {
		return apperr.NotFound("membership not found")
	}
	for other, existing := range m.s.data.memberships {
		if other != membershipID && existing.UserID == mem.UserID &&
			existing.CompanyID == mem.CompanyID && existing.RoleID == roleID {
			return apperr.Conflict("user already holds this role in this company", "role_id")
		}
	}
	mem.RoleID = roleID
	m.s.data.memberships[membershipID] = mem
	return nil
}

func (m *membershipStore) DeleteByUserCompany(ctx context.Context, userID, companyID uuid.UUID) error {
	defer m.s.lock()()
	for id, mem := range m.s.data.memberships {
		if mem.UserID == userID && mem.CompanyID == companyID {
			delete(m.s.data.memberships, id)
		}
	}
	return nil
}

func (m *membershipStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	defer m.s.lock()()
	for id, mem := range m.s.data.memberships {
		if mem.CompanyID == companyID {
			delete(m.s.data.memberships, id)
		}
	}
	return nil
}
