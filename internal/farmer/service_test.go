package farmer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/company"
	"github.com/hasiltani/agritrace/internal/models"
	"github.com/hasiltani/agritrace/internal/store/memory"
)

type fixture struct {
	svc       *Service
	st        *memory.Store
	owner     *models.User
	companyID uuid.UUID
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	st := memory.New()
	st.SeedPermissions(auth.Catalog())
	engine := auth.NewEngine(st, nil)
	aud := audit.NewService(st)

	st.SeedUser(models.User{Name: "Owner", Email: "owner@example.com"})
	owner, err := st.Users().GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)

	view, err := company.NewService(st, engine, aud).Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	return fixture{
		svc:       NewService(st, engine, aud),
		st:        st,
		owner:     owner,
		companyID: view.ID,
	}
}

func input(nationalID string) Input {
	return Input{
		FirstName:   "Budi",
		LastName:    "Santoso",
		NationalID:  nationalID,
		PhoneNumber: "+62811000001",
		Address:     "Desa Sukamaju",
	}
}

func (f fixture) group(t *testing.T, name string) *models.FarmerGroup {
	t.Helper()
	g, err := f.svc.CreateGroup(context.Background(), f.owner.ID, f.companyID, GroupInput{Name: name})
	require.NoError(t, err)
	return g
}

func TestCreateFarmerWithGroups(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	g := f.group(t, "Kelompok Tani A")

	in := input("3201010101010001")
	in.GroupIDs = []uuid.UUID{g.ID}
	farmer, err := f.svc.Create(ctx, f.owner.ID, f.companyID, in)
	require.NoError(t, err)
	require.Len(t, farmer.Groups, 1)
	assert.Equal(t, g.ID, farmer.Groups[0].ID)

	loaded, err := f.svc.GetGroup(ctx, f.owner.ID, f.companyID, g.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Farmers, 1)
	assert.Equal(t, farmer.ID, loaded.Farmers[0].ID)
}

func TestNationalIDUnique(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.owner.ID, f.companyID, input("3201010101010001"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.owner.ID, f.companyID, input("3201010101010001"))
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestFarmerValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	in := input("3201010101010001")
	in.PhoneNumber = "  "
	_, err := f.svc.Create(ctx, f.owner.ID, f.companyID, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateFarmerGroupLinks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a := f.group(t, "Kelompok A")
	b := f.group(t, "Kelompok B")

	in := input("3201010101010001")
	in.GroupIDs = []uuid.UUID{a.ID}
	farmer, err := f.svc.Create(ctx, f.owner.ID, f.companyID, in)
	require.NoError(t, err)

	// nil GroupIDs leaves links untouched
	in.PhoneNumber = "+62811000002"
	in.GroupIDs = nil
	updated, err := f.svc.Update(ctx, f.owner.ID, f.companyID, farmer.ID, in)
	require.NoError(t, err)
	require.Len(t, updated.Groups, 1)
	assert.Equal(t, a.ID, updated.Groups[0].ID)

	// non-nil replaces the whole set
	in.GroupIDs = []uuid.UUID{b.ID}
	updated, err = f.svc.Update(ctx, f.owner.ID, f.companyID, farmer.ID, in)
	require.NoError(t, err)
	require.Len(t, updated.Groups, 1)
	assert.Equal(t, b.ID, updated.Groups[0].ID)

	in.GroupIDs = []uuid.UUID{}
	updated, err = f.svc.Update(ctx, f.owner.ID, f.companyID, farmer.ID, in)
	require.NoError(t, err)
	assert.Empty(t, updated.Groups)
}

func TestCrossTenantGroupRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.st.SeedUser(models.User{Name: "Other", Email: "other@example.com"})
	other, err := f.st.Users().GetByEmail(ctx, "other@example.com")
	require.NoError(t, err)

	engine := auth.NewEngine(f.st, nil)
	otherView, err := company.NewService(f.st, engine, audit.NewService(f.st)).Create(ctx, other.ID, "Koperasi Lain")
	require.NoError(t, err)

	foreign, err := f.svc.CreateGroup(ctx, other.ID, otherView.ID, GroupInput{Name: "Kelompok Asing"})
	require.NoError(t, err)

	in := input("3201010101010001")
	in.GroupIDs = []uuid.UUID{foreign.ID}
	_, err = f.svc.Create(ctx, f.owner.ID, f.companyID, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeleteFarmerPrunesLinks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	g := f.group(t, "Kelompok A")
	in := input("3201010101010001")
	in.GroupIDs = []uuid.UUID{g.ID}
	farmer, err := f.svc.Create(ctx, f.owner.ID, f.companyID, in)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.owner.ID, f.companyID, farmer.ID))

	loaded, err := f.svc.GetGroup(ctx, f.owner.ID, f.companyID, g.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Farmers)
}

func TestGroupLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	farmer, err := f.svc.Create(ctx, f.owner.ID, f.companyID, input("3201010101010001"))
	require.NoError(t, err)

	g, err := f.svc.CreateGroup(ctx, f.owner.ID, f.companyID, GroupInput{
		Name:      "  Kelompok Tani A ",
		FarmerIDs: []uuid.UUID{farmer.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Kelompok Tani A", g.Name)
	require.Len(t, g.Farmers, 1)

	g, err = f.svc.UpdateGroup(ctx, f.owner.ID, f.companyID, g.ID, GroupInput{
		Name:      "Kelompok Tani B",
		FarmerIDs: []uuid.UUID{},
	})
	require.NoError(t, err)
	assert.Equal(t, "Kelompok Tani B", g.Name)
	assert.Empty(t, g.Farmers)

	require.NoError(t, f.svc.DeleteGroup(ctx, f.owner.ID, f.companyID, g.ID))
	_, err = f.svc.GetGroup(ctx, f.owner.ID, f.companyID, g.ID)
	assert.True(t, apperr.IsNotFound(err))
}
