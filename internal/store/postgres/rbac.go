package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/hasiltani/agritrace/internal/models"
)

type permissionStore struct{ db querier }

func (s *permissionStore) List(ctx context.Context) ([]models.Permission, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, name, description FROM permissions ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()
	return collectPermissions(rows)
}

func (s *permissionStore) GetByIDs(ctx context.Context, ids []string) ([]models.Permission, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, name, description FROM permissions WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("get permissions: %w", err)
	}
	defer rows.Close()
	return collectPermissions(rows)
}

func collectPermissions(rows pgx.Rows) ([]models.Permission, error) {
	var perms []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

type roleStore struct{ db querier }

func (s *roleStore) Create(ctx context.Context, r *models.Role) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO roles (company_id, name) VALUES ($1, $2)
		 RETURNING id, created_at`,
		r.CompanyID, r.Name,
	).Scan(&r.ID, &r.CreatedAt)
	return translate(err, "create role", "role name already exists for this company", "name")
}

func (s *roleStore) GetByID(ctx context.Context, companyID, roleID uuid.UUID) (*models.Role, error) {
	var r models.Role
	err := s.db.QueryRow(ctx,
		`SELECT id, company_id, name, created_at FROM roles
		 WHERE id = $1 AND company_id = $2`,
		roleID, companyID,
	).Scan(&r.ID, &r.CompanyID, &r.Name, &r.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get role", "role not found")
	}
	return &r, nil
}

func (s *roleStore) GetByIDs(ctx context.Context, companyID uuid.UUID, roleIDs []uuid.UUID) ([]models.Role, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, company_id, name, created_at FROM roles
		 WHERE company_id = $1 AND id = ANY($2)`,
		companyID, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("get roles: %w", err)
	}
	defer rows.Close()
	return collectRoles(rows)
}

func (s *roleStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Role, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, company_id, name, created_at FROM roles
		 WHERE company_id = $1 ORDER BY created_at ASC`,
		companyID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	return collectRoles(rows)
}

func collectRoles(rows pgx.Rows) ([]models.Role, error) {
	var roles []models.Role
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (s *roleStore) UpdateName(ctx context.Context, roleID uuid.UUID, name string) error {
	_, err := s.db.Exec(ctx, "UPDATE roles SET name = $2 WHERE id = $1", roleID, name)
	return translate(err, "rename role", "role name already exists for this company", "name")
}

func (s *roleStore) Delete(ctx context.Context, companyID, roleID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM roles WHERE id = $1 AND company_id = $2", roleID, companyID)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

func (s *roleStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM roles WHERE company_id = $1", companyID)
	if err != nil {
		return fmt.Errorf("delete company roles: %w", err)
	}
	return nil
}

func (s *roleStore) SetPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []string) error {
	if _, err := s.db.Exec(ctx,
		"DELETE FROM role_permissions WHERE role_id = $1", roleID); err != nil {
		return fmt.Errorf("clear role permissions: %w", err)
	}
	for _, pid := range permissionIDs {
		if _, err := s.db.Exec(ctx,
			"INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)",
			roleID, pid); err != nil {
			return fmt.Errorf("connect role permission: %w", err)
		}
	}
	return nil
}

func (s *roleStore) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]models.Permission, error) {
	rows, err := s.db.Query(ctx,
		`SELECT p.id, p.name, p.description
		 FROM role_permissions rp
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = $1
		 ORDER BY p.name ASC`,
		roleID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	defer rows.Close()
	return collectPermissions(rows)
}

type membershipStore struct{ db querier }

const membershipColumns = "id, user_id, company_id, role_id, created_at"

func (s *membershipStore) Create(ctx context.Context, m *models.Membership) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO memberships (user_id, company_id, role_id) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		m.UserID, m.CompanyID, m.RoleID,
	).Scan(&m.ID, &m.CreatedAt)
	return translate(err, "create membership", "user already holds this role in this company", "role_id")
}

func (s *membershipStore) ListByUserCompany(ctx context.Context, userID, companyID uuid.UUID) ([]models.Membership, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE user_id = $1 AND company_id = $2 ORDER BY created_at ASC`,
		userID, companyID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func (s *membershipStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list user memberships: %w", err)
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func (s *membershipStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Membership, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE company_id = $1 ORDER BY created_at ASC`,
		companyID)
	if err != nil {
		return nil, fmt.Errorf("list company memberships: %w", err)
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func collectMemberships(rows pgx.Rows) ([]models.Membership, error) {
	var ms []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.CompanyID, &m.RoleID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		ms = append(ms, m)
	}
	return ms, rows.Err()
}

func (s *membershipStore) CountByRole(ctx context.Context, roleID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM memberships WHERE role_id = $1", roleID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count role memberships: %w", err)
	}
	return n, nil
}

func (s *membershipStore) UpdateRole(ctx context.Context, membershipID, roleID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"UPDATE memberships SET role_id = $2 WHERE id = $1", membershipID, roleID)
	return translate(err, "update membership role", "user already holds this role in this company", "role_id")
}

func (s *membershipStore) DeleteByUserCompany(ctx context.Context, userID, companyID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM memberships WHERE user_id = $1 AND company_id = $2", userID, companyID)
	if err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	return nil
}

func (s *membershipStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM memberships WHERE company_id = $1", companyID)
	if err != nil {
		return fmt.Errorf("delete company memberships: %w", err)
	}
	return nil
}
