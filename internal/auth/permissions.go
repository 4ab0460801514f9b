package auth

import "github.com/hasiltani/agritrace/internal/models"

type Permission string

const (
	PermRoleView   Permission = "member:role:view"
	PermRoleCreate Permission = "member:role:create"
	PermRoleUpdate Permission = "member:role:update"
	PermRoleDelete Permission = "member:role:delete"

	PermMemberView   Permission = "member:user:view"
	PermMemberCreate Permission = "member:user:create"
	PermMemberUpdate Permission = "member:user:update"
	PermMemberDelete Permission = "member:user:delete"

	PermPermissionView Permission = "member:permission:view"

	PermCommodityView   Permission = "commodity:view"
	PermCommodityCreate Permission = "commodity:create"
	PermCommodityUpdate Permission = "commodity:update"
	PermCommodityDelete Permission = "commodity:delete"

	PermBatchView   Permission = "batch:view"
	PermBatchCreate Permission = "batch:create"
	PermBatchUpdate Permission = "batch:update"
	PermBatchDelete Permission = "batch:delete"

	PermBatchSourceView   Permission = "batch_source:view"
	PermBatchSourceCreate Permission = "batch_source:create"
	PermBatchSourceUpdate Permission = "batch_source:update"
	PermBatchSourceDelete Permission = "batch_source:delete"

	PermBatchAttributeView   Permission = "batch_attribute:view"
	PermBatchAttributeCreate Permission = "batch_attribute:create"
	PermBatchAttributeUpdate Permission = "batch_attribute:update"
	PermBatchAttributeDelete Permission = "batch_attribute:delete"

	PermLandView   Permission = "land:view"
	PermLandCreate Permission = "land:create"
	PermLandUpdate Permission = "land:update"
	PermLandDelete Permission = "land:delete"
)

// Catalog is the global permission set every deployment seeds. The dotted
// IDs group permissions by family and survive renames.
func Catalog() []models.Permission {
	return []models.Permission{
		{ID: "1.1.1", Name: string(PermRoleView), Description: "View company roles"},
		{ID: "1.1.2", Name: string(PermRoleCreate), Description: "Create new roles"},
		{ID: "1.1.3", Name: string(PermRoleUpdate), Description: "Update existing roles"},
		{ID: "1.1.4", Name: string(PermRoleDelete), Description: "Delete roles"},
		{ID: "1.2.1", Name: string(PermMemberView), Description: "View company members"},
		{ID: "1.2.2", Name: string(PermMemberCreate), Description: "Add new members"},
		{ID: "1.2.3", Name: string(PermMemberUpdate), Description: "Change member roles"},
		{ID: "1.2.4", Name: string(PermMemberDelete), Description: "Remove members"},
		{ID: "1.3.1", Name: string(PermPermissionView), Description: "View the permission catalog"},
		{ID: "2.1.1", Name: string(PermCommodityView), Description: "View commodities"},
		{ID: "2.1.2", Name: string(PermCommodityCreate), Description: "Create commodities"},
		{ID: "2.1.3", Name: string(PermCommodityUpdate), Description: "Update commodities"},
		{ID: "2.1.4", Name: string(PermCommodityDelete), Description: "Delete commodities"},
		{ID: "2.2.1", Name: string(PermBatchView), Description: "View batches"},
		{ID: "2.2.2", Name: string(PermBatchCreate), Description: "Create batches"},
		{ID: "2.2.3", Name: string(PermBatchUpdate), Description: "Update batches"},
		{ID: "2.2.4", Name: string(PermBatchDelete), Description: "Delete batches"},
		{ID: "2.3.1", Name: string(PermBatchSourceView), Description: "View batch sources"},
		{ID: "2.3.2", Name: string(PermBatchSourceCreate), Description: "Create batch sources"},
		{ID: "2.3.3", Name: string(PermBatchSourceUpdate), Description: "Update batch sources"},
		{ID: "2.3.4", Name: string(PermBatchSourceDelete), Description: "Delete batch sources"},
		{ID: "2.4.1", Name: string(PermBatchAttributeView), Description: "View batch attributes"},
		{ID: "2.4.2", Name: string(PermBatchAttributeCreate), Description: "Create batch attributes"},
		{ID: "2.4.3", Name: string(PermBatchAttributeUpdate), Description: "Update batch attributes"},
		{ID: "2.4.4", Name: string(PermBatchAttributeDelete), Description: "Delete batch attributes"},
		{ID: "3.1.1", Name: string(PermLandView), Description: "View lands"},
		{ID: "3.1.2", Name: string(PermLandCreate), Description: "Create lands"},
		{ID: "3.1.3", Name: string(PermLandUpdate), Description: "Update lands"},
		{ID: "3.1.4", Name: string(PermLandDelete), Description: "Delete lands"},
	}
}
