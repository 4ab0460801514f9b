package models

import (
	"time"

	"github.com/google/uuid"
)

// OwnerRoleName is the reserved role created with every company. It holds
// the full permission catalog and can never be renamed, edited, or deleted.
const OwnerRoleName = "owner"

// Permission is one entry of the global catalog. IDs follow the seeded
// dotted numbering scheme (e.g. "2.1.3") and names are globally unique
// action identifiers (e.g. "batch:view").
type Permission struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"desc" db:"description"`
}

// Role belongs to exactly one company. Names are stored lower-cased and
// are unique per company.
type Role struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Permissions []Permission `json:"permissions,omitempty" db:"-"`
}

func (r *Role) IsOwner() bool { return r.Name == OwnerRoleName }

// Membership links a user to a role inside a company. A user may hold
// several roles in the same company via several rows; uniqueness is per
// (user, company, role) tuple.
type Membership struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	RoleID    uuid.UUID `json:"role_id" db:"role_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
