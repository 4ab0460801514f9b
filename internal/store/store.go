// Package store defines the relational storage port. Implementations must
// translate engine-specific uniqueness violations into apperr.Conflict and
// missing rows into apperr.NotFound so the services' error taxonomy never
// depends on the underlying engine.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hasiltani/agritrace/internal/models"
)

type Store interface {
	Users() UserStore
	Companies() CompanyStore
	Permissions() PermissionStore
	Roles() RoleStore
	Memberships() MembershipStore
	Commodities() CommodityStore
	Batches() BatchStore
	BatchSources() BatchSourceStore
	BatchAttributes() BatchAttributeStore
	BatchRelations() BatchRelationStore
	Lands() LandStore
	Farmers() FarmerStore
	FarmerGroups() FarmerGroupStore
	Webhooks() WebhookStore
	Audit() AuditStore

	// InTx runs fn against a store bound to a single transaction; all
	// writes commit together or not at all. Calling InTx on a store that
	// is already transactional reuses the open transaction.
	InTx(ctx context.Context, fn func(Store) error) error
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type CompanyStore interface {
	Create(ctx context.Context, c *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.Company, error)
	// Delete removes the company row; roles, memberships and owned
	// resources are removed by the explicit cascade in the company
	// service, not here.
	Delete(ctx context.Context, id uuid.UUID) error
}

type PermissionStore interface {
	List(ctx context.Context) ([]models.Permission, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Permission, error)
}

type RoleStore interface {
	Create(ctx context.Context, r *models.Role) error
	GetByID(ctx context.Context, companyID, roleID uuid.UUID) (*models.Role, error)
	GetByIDs(ctx context.Context, companyID uuid.UUID, roleIDs []uuid.UUID) ([]models.Role, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Role, error)
	UpdateName(ctx context.Context, roleID uuid.UUID, name string) error
	Delete(ctx context.Context, companyID, roleID uuid.UUID) error
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) error

	// SetPermissions replaces the role's permission set wholesale; the
	// previous set leaves no residue.
	SetPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []string) error
	ListPermissions(ctx context.Context, roleID uuid.UUID) ([]models.Permission, error)
}

type MembershipStore interface {
	Create(ctx context.Context, m *models.Membership) error
	ListByUserCompany(ctx context.Context, userID, companyID uuid.UUID) ([]models.Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Membership, error)
	CountByRole(ctx context.Context, roleID uuid.UUID) (int, error)
	UpdateRole(ctx context.Context, membershipID, roleID uuid.UUID) error
	DeleteByUserCompany(ctx context.Context, userID, companyID uuid.UUID) error
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) error
}

type CommodityStore interface {
	Create(ctx context.Context, c *models.Commodity) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Commodity, error)
	List(ctx context.Context) ([]models.Commodity, error)
	Update(ctx context.Context, c *models.Commodity) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type BatchStore interface {
	Create(ctx context.Context, b *models.Batch) error
	GetByID(ctx context.Context, companyID, batchID uuid.UUID) (*models.Batch, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Batch, error)
	Update(ctx context.Context, b *models.Batch) error
	UpdateTotalKg(ctx context.Context, batchID uuid.UUID, totalKg float64) error
	Delete(ctx context.Context, companyID, batchID uuid.UUID) error
	CountByCommodity(ctx context.Context, commodityID uuid.UUID) (int, error)
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) error
}

type BatchSourceStore interface {
	Create(ctx context.Context, s *models.BatchSource) error
	GetByID(ctx context.Context, batchID, sourceID uuid.UUID) (*models.BatchSource, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.BatchSource, error)
	Update(ctx context.Context, s *models.BatchSource) error
	Delete(ctx context.Context, batchID, sourceID uuid.UUID) error
	DeleteByBatch(ctx context.Context, batchID uuid.UUID) error
	SumVolumeByBatch(ctx context.Context, batchID uuid.UUID) (float64, error)
}

type BatchAttributeStore interface {
	Create(ctx context.Context, a *models.BatchAttribute) error
	GetByID(ctx context.Context, batchID, attributeID uuid.UUID) (*models.BatchAttribute, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.BatchAttribute, error)
	Update(ctx context.Context, a *models.BatchAttribute) error
	Delete(ctx context.Context, batchID, attributeID uuid.UUID) error
	DeleteByBatch(ctx context.Context, batchID uuid.UUID) error
}

type BatchRelationStore interface {
	Create(ctx context.Context, r *models.BatchRelation) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.BatchRelation, error)
	// DeleteByBatch removes every edge where the batch is parent or child.
	DeleteByBatch(ctx context.Context, batchID uuid.UUID) error
}

type LandStore interface {
	Create(ctx context.Context, l *models.Land) error
	GetByID(ctx context.Context, companyID, landID uuid.UUID) (*models.Land, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Land, error)
	Update(ctx context.Context, l *models.Land) error
	Delete(ctx context.Context, companyID, landID uuid.UUID) error
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) error
}

type FarmerStore interface {
	Create(ctx context.Context, f *models.Farmer) error
	GetByID(ctx context.Context, companyID, farmerID uuid.UUID) (*models.Farmer, error)
	GetByIDs(ctx context.Context, companyID uuid.UUID, farmerIDs []uuid.UUID) ([]models.Farmer, error)
	GetByNationalID(ctx context.Context, nationalID string) (*models.Farmer, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Farmer, error)
	Update(ctx context.Context, f *models.Farmer) error
	Delete(ctx context.Context, companyID, farmerID uuid.UUID) error
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) error

	// SetGroups replaces the farmer's group links wholesale.
	SetGroups(ctx context.Context, farmerID uuid.UUID, groupIDs []uuid.UUID) error
	ListGroups(ctx context.Context, farmerID uuid.UUID) ([]models.FarmerGroup, error)
}

type FarmerGroupStore interface {
	Create(ctx context.Context, g *models.FarmerGroup) error
	GetByID(ctx context.Context, companyID, groupID uuid.UUID) (*models.FarmerGroup, error)
	GetByIDs(ctx context.Context, companyID uuid.UUID, groupIDs []uuid.UUID) ([]models.FarmerGroup, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.FarmerGroup, error)
	Update(ctx context.Context, g *models.FarmerGroup) error
	Delete(ctx context.Context, companyID, groupID uuid.UUID) error
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) error

	// SetFarmers replaces the group's member links wholesale.
	SetFarmers(ctx context.Context, groupID uuid.UUID, farmerIDs []uuid.UUID) error
	ListFarmers(ctx context.Context, groupID uuid.UUID) ([]models.Farmer, error)
}

type WebhookStore interface {
	Create(ctx context.Context, w *models.Webhook) error
	GetByID(ctx context.Context, companyID, webhookID uuid.UUID) (*models.Webhook, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Webhook, error)
	ListActiveByEvent(ctx context.Context, companyID uuid.UUID, event string) ([]models.Webhook, error)
	Delete(ctx context.Context, companyID, webhookID uuid.UUID) error
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) error
}

type AuditStore interface {
	Insert(ctx context.Context, l *models.AuditLog) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
}
