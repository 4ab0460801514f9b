package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/models"
	"github.com/hasiltani/agritrace/internal/store/memory"
)

func seedCompany(t *testing.T, st *memory.Store) (*models.User, *models.Company) {
	t.Helper()
	ctx := context.Background()

	st.SeedPermissions(Catalog())
	user := models.User{Name: "Dewi", Email: "dewi@example.com"}
	st.SeedUser(user)

	users, err := st.Users().GetByEmail(ctx, user.Email)
	require.NoError(t, err)

	company := &models.Company{Name: "Koperasi Maju", CreatedBy: users.ID}
	require.NoError(t, st.Companies().Create(ctx, company))
	return users, company
}

func addMember(t *testing.T, st *memory.Store, companyID uuid.UUID, email, roleName string, permIDs []string) *models.User {
	t.Helper()
	ctx := context.Background()

	st.SeedUser(models.User{Name: email, Email: email})
	user, err := st.Users().GetByEmail(ctx, email)
	require.NoError(t, err)

	role := &models.Role{CompanyID: companyID, Name: roleName}
	require.NoError(t, st.Roles().Create(ctx, role))
	if len(permIDs) > 0 {
		require.NoError(t, st.Roles().SetPermissions(ctx, role.ID, permIDs))
	}
	require.NoError(t, st.Memberships().Create(ctx, &models.Membership{
		UserID:    user.ID,
		CompanyID: companyID,
		RoleID:    role.ID,
	}))
	return user
}

func TestAuthorizeNonMember(t *testing.T) {
	st := memory.New()
	_, company := seedCompany(t, st)
	engine := NewEngine(st, nil)

	stranger := uuid.New()
	err := engine.Authorize(context.Background(), stranger, company.ID, PermBatchView)
	require.Error(t, err)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestAuthorizeGrantedPermission(t *testing.T) {
	st := memory.New()
	_, company := seedCompany(t, st)
	engine := NewEngine(st, nil)
	ctx := context.Background()

	// 2.2.1 is batch:view
	member := addMember(t, st, company.ID, "viewer@example.com", "viewer", []string{"2.2.1"})

	require.NoError(t, engine.Authorize(ctx, member.ID, company.ID, PermBatchView))

	err := engine.Authorize(ctx, member.ID, company.ID, PermBatchDelete)
	require.Error(t, err)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestOwnerBypass(t *testing.T) {
	st := memory.New()
	_, company := seedCompany(t, st)
	engine := NewEngine(st, nil)
	ctx := context.Background()

	owner := addMember(t, st, company.ID, "owner@example.com", models.OwnerRoleName, nil)

	for _, perm := range []Permission{PermRoleDelete, PermBatchCreate, PermLandUpdate, PermMemberDelete} {
		require.NoError(t, engine.Authorize(ctx, owner.ID, company.ID, perm))
	}

	isOwner, err := engine.IsOwner(ctx, owner.ID, company.ID)
	require.NoError(t, err)
	require.True(t, isOwner)
}

func TestPermissionsUnionAcrossRoles(t *testing.T) {
	st := memory.New()
	_, company := seedCompany(t, st)
	engine := NewEngine(st, nil)
	ctx := context.Background()

	member := addMember(t, st, company.ID, "multi@example.com", "batch-viewer", []string{"2.2.1"})

	// Second role on the same member grants land:view.
	landRole := &models.Role{CompanyID: company.ID, Name: "land-viewer"}
	require.NoError(t, st.Roles().Create(ctx, landRole))
	require.NoError(t, st.Roles().SetPermissions(ctx, landRole.ID, []string{"3.1.1"}))
	require.NoError(t, st.Memberships().Create(ctx, &models.Membership{
		UserID:    member.ID,
		CompanyID: company.ID,
		RoleID:    landRole.ID,
	}))

	require.NoError(t, engine.Authorize(ctx, member.ID, company.ID, PermBatchView))
	require.NoError(t, engine.Authorize(ctx, member.ID, company.ID, PermLandView))

	err := engine.Authorize(ctx, member.ID, company.ID, PermLandDelete)
	require.Error(t, err)
}

func TestIsMember(t *testing.T) {
	st := memory.New()
	_, company := seedCompany(t, st)
	engine := NewEngine(st, nil)
	ctx := context.Background()

	member := addMember(t, st, company.ID, "plain@example.com", "bare", nil)

	ok, err := engine.IsMember(ctx, member.ID, company.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = engine.IsMember(ctx, uuid.New(), company.ID)
	require.NoError(t, err)
	require.False(t, ok)
}
