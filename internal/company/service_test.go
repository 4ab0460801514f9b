package company

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/models"
	"github.com/hasiltani/agritrace/internal/store/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	st.SeedPermissions(auth.Catalog())
	engine := auth.NewEngine(st, nil)
	return NewService(st, engine, audit.NewService(st)), st
}

func seedUser(t *testing.T, st *memory.Store, email string) *models.User {
	t.Helper()
	st.SeedUser(models.User{Name: email, Email: email})
	u, err := st.Users().GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u
}

func TestCreateCompanyBootstrap(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")

	view, err := svc.Create(ctx, owner.ID, "  Koperasi Maju  ")
	require.NoError(t, err)
	assert.Equal(t, "Koperasi Maju", view.Name)
	assert.True(t, view.IsOwner)
	assert.Equal(t, []string{models.OwnerRoleName}, view.Roles)

	// The owner role holds the full catalog.
	roles, err := st.Roles().ListByCompany(ctx, view.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	perms, err := st.Roles().ListPermissions(ctx, roles[0].ID)
	require.NoError(t, err)
	assert.Len(t, perms, len(auth.Catalog()))

	memberships, err := st.Memberships().ListByUserCompany(ctx, owner.ID, view.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
}

func TestCreateCompanyValidation(t *testing.T) {
	svc, st := newTestService(t)
	owner := seedUser(t, st, "owner@example.com")

	_, err := svc.Create(context.Background(), owner.ID, "   ")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateCompanyDuplicateName(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")

	_, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestGetCompanyHiddenFromNonMembers(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")
	stranger := seedUser(t, st, "stranger@example.com")

	view, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	_, _, err = svc.Get(ctx, stranger.ID, view.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateAndDeleteNeedOwner(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")
	member := seedUser(t, st, "member@example.com")

	view, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	role, err := svc.CreateRole(ctx, owner.ID, view.ID, "clerk", nil)
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, owner.ID, view.ID, member.ID, []uuid.UUID{role.ID}))

	_, err = svc.UpdateName(ctx, member.ID, view.ID, "Renamed")
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))

	err = svc.Delete(ctx, member.ID, view.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))

	updated, err := svc.UpdateName(ctx, owner.ID, view.ID, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestDeleteCompanyCascade(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")

	view, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	land := &models.Land{CompanyID: view.ID, Name: "Blok A", AreaHectares: 2.5}
	require.NoError(t, st.Lands().Create(ctx, land))
	group := &models.FarmerGroup{CompanyID: view.ID, Name: "Kelompok Tani"}
	require.NoError(t, st.FarmerGroups().Create(ctx, group))

	commodity := &models.Commodity{Name: "Kopi Arabika", Code: "COF-AR"}
	require.NoError(t, st.Commodities().Create(ctx, commodity))
	batch := &models.Batch{CompanyID: view.ID, CommodityID: commodity.ID, LotCode: "LOT-1"}
	require.NoError(t, st.Batches().Create(ctx, batch))
	src := &models.BatchSource{BatchID: batch.ID, FarmerGroupID: group.ID, LandID: land.ID, VolumeKg: 10}
	require.NoError(t, st.BatchSources().Create(ctx, src))

	require.NoError(t, svc.Delete(ctx, owner.ID, view.ID))

	_, err = st.Companies().GetByID(ctx, view.ID)
	assert.True(t, apperr.IsNotFound(err))

	batches, err := st.Batches().ListByCompany(ctx, view.ID)
	require.NoError(t, err)
	assert.Empty(t, batches)

	sources, err := st.BatchSources().ListByBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Empty(t, sources)

	lands, err := st.Lands().ListByCompany(ctx, view.ID)
	require.NoError(t, err)
	assert.Empty(t, lands)

	roles, err := st.Roles().ListByCompany(ctx, view.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)

	memberships, err := st.Memberships().ListByCompany(ctx, view.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships)
}

func TestRoleLifecycle(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")

	view, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	// Names are trimmed and lower-cased.
	role, err := svc.CreateRole(ctx, owner.ID, view.ID, "  Manager ", []string{"2.2.1", "2.2.2"})
	require.NoError(t, err)
	assert.Equal(t, "manager", role.Name)
	assert.Len(t, role.Permissions, 2)

	_, err = svc.CreateRole(ctx, owner.ID, view.ID, "Manager", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	_, err = svc.CreateRole(ctx, owner.ID, view.ID, "Owner", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))

	// Permission updates replace the previous set wholesale.
	updated, err := svc.UpdateRole(ctx, owner.ID, view.ID, role.ID, "manager", []string{"3.1.1"})
	require.NoError(t, err)
	require.Len(t, updated.Permissions, 1)
	assert.Equal(t, "land:view", updated.Permissions[0].Name)

	_, err = svc.UpdateRole(ctx, owner.ID, view.ID, role.ID, "manager", []string{"no-such-id"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, svc.DeleteRole(ctx, owner.ID, view.ID, role.ID))
	_, err = st.Roles().GetByID(ctx, view.ID, role.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestOwnerRoleImmutable(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")

	view, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	roles, err := st.Roles().ListByCompany(ctx, view.ID)
	require.NoError(t, err)
	ownerRole := roles[0]

	_, err = svc.UpdateRole(ctx, owner.ID, view.ID, ownerRole.ID, "boss", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))

	err = svc.DeleteRole(ctx, owner.ID, view.ID, ownerRole.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
}

func TestDeleteRoleBlockedWhileAssigned(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")
	member := seedUser(t, st, "member@example.com")

	view, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	role, err := svc.CreateRole(ctx, owner.ID, view.ID, "clerk", nil)
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, owner.ID, view.ID, member.ID, []uuid.UUID{role.ID}))

	err = svc.DeleteRole(ctx, owner.ID, view.ID, role.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))

	require.NoError(t, svc.RemoveMember(ctx, owner.ID, view.ID, member.ID))
	require.NoError(t, svc.DeleteRole(ctx, owner.ID, view.ID, role.ID))
}

func TestAddMemberFiltersHeldRoles(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")
	member := seedUser(t, st, "member@example.com")

	view, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	clerk, err := svc.CreateRole(ctx, owner.ID, view.ID, "clerk", nil)
	require.NoError(t, err)
	scout, err := svc.CreateRole(ctx, owner.ID, view.ID, "scout", nil)
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(ctx, owner.ID, view.ID, member.ID, []uuid.UUID{clerk.ID}))

	// Already-held roles are filtered; only scout gets added.
	require.NoError(t, svc.AddMember(ctx, owner.ID, view.ID, member.ID, []uuid.UUID{clerk.ID, scout.ID}))
	memberships, err := st.Memberships().ListByUserCompany(ctx, member.ID, view.ID)
	require.NoError(t, err)
	assert.Len(t, memberships, 2)

	err = svc.AddMember(ctx, owner.ID, view.ID, member.ID, []uuid.UUID{clerk.ID, scout.ID})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestOwnerRoleNeverAssignable(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")
	member := seedUser(t, st, "member@example.com")

	view, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	roles, err := st.Roles().ListByCompany(ctx, view.ID)
	require.NoError(t, err)
	ownerRole := roles[0]

	err = svc.AddMember(ctx, owner.ID, view.ID, member.ID, []uuid.UUID{ownerRole.ID})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))

	clerk, err := svc.CreateRole(ctx, owner.ID, view.ID, "clerk", nil)
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, owner.ID, view.ID, member.ID, []uuid.UUID{clerk.ID}))

	err = svc.UpdateMemberRole(ctx, owner.ID, view.ID, member.ID, ownerRole.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))

	// The owner's own membership cannot be reassigned or removed.
	err = svc.UpdateMemberRole(ctx, owner.ID, view.ID, owner.ID, clerk.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))

	err = svc.RemoveMember(ctx, owner.ID, view.ID, owner.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
}

func TestSelfRemovalWithoutPermission(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")
	member := seedUser(t, st, "member@example.com")
	other := seedUser(t, st, "other@example.com")

	view, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	clerk, err := svc.CreateRole(ctx, owner.ID, view.ID, "clerk", nil)
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, owner.ID, view.ID, member.ID, []uuid.UUID{clerk.ID}))
	require.NoError(t, svc.AddMember(ctx, owner.ID, view.ID, other.ID, []uuid.UUID{clerk.ID}))

	// A clerk has no member:user:delete, so removing someone else fails.
	err = svc.RemoveMember(ctx, member.ID, view.ID, other.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))

	// But leaving the company is always allowed.
	require.NoError(t, svc.RemoveMember(ctx, member.ID, view.ID, member.ID))
	memberships, err := st.Memberships().ListByUserCompany(ctx, member.ID, view.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships)
}

func TestPermissionCatalogGated(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")
	member := seedUser(t, st, "member@example.com")

	view, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	clerk, err := svc.CreateRole(ctx, owner.ID, view.ID, "clerk", nil)
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, owner.ID, view.ID, member.ID, []uuid.UUID{clerk.ID}))

	_, err = svc.Permissions(ctx, member.ID, view.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))

	perms, err := svc.Permissions(ctx, owner.ID, view.ID)
	require.NoError(t, err)
	assert.Len(t, perms, len(auth.Catalog()))
}

func TestListForUser(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "owner@example.com")

	_, err := svc.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner.ID, "Koperasi Baru")
	require.NoError(t, err)

	views, err := svc.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.True(t, v.IsOwner)
		assert.False(t, v.HasActiveSubscription)
	}
}

func TestSearchUserByEmail(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "dewi@example.com")

	user, err := svc.SearchUserByEmail(ctx, " dewi@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "dewi@example.com", user.Email)

	_, err = svc.SearchUserByEmail(ctx, "nobody@example.com")
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.SearchUserByEmail(ctx, "  ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
