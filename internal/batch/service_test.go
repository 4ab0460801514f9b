package batch

import (
	"context"
	"testing"
	"time"

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
	commodity *models.Commodity
	group     *models.FarmerGroup
	land      *models.Land
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st := memory.New()
	st.SeedPermissions(auth.Catalog())
	engine := auth.NewEngine(st, nil)
	aud := audit.NewService(st)

	st.SeedUser(models.User{Name: "Owner", Email: "owner@example.com"})
	owner, err := st.Users().GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)

	companies := company.NewService(st, engine, aud)
	view, err := companies.Create(ctx, owner.ID, "Koperasi Maju")
	require.NoError(t, err)

	commodity := &models.Commodity{Name: "Kopi Arabika", Code: "COF-AR"}
	require.NoError(t, st.Commodities().Create(ctx, commodity))
	group := &models.FarmerGroup{CompanyID: view.ID, Name: "Kelompok Tani"}
	require.NoError(t, st.FarmerGroups().Create(ctx, group))
	land := &models.Land{CompanyID: view.ID, Name: "Blok A", AreaHectares: 2.5}
	require.NoError(t, st.Lands().Create(ctx, land))

	return &fixture{
		svc:       NewService(st, engine, aud, nil),
		st:        st,
		owner:     owner,
		companyID: view.ID,
		commodity: commodity,
		group:     group,
		land:      land,
	}
}

func (f *fixture) createBatch(t *testing.T, lotCode string) *models.Batch {
	t.Helper()
	b, err := f.svc.Create(context.Background(), f.owner.ID, f.companyID, f.commodity.ID, lotCode, time.Now())
	require.NoError(t, err)
	return b
}

func (f *fixture) sourceInput(volume float64) SourceInput {
	return SourceInput{
		FarmerGroupID: &f.group.ID,
		LandID:        &f.land.ID,
		VolumeKg:      &volume,
	}
}

func TestCreateBatchStartsAtZero(t *testing.T) {
	f := newFixture(t)
	b := f.createBatch(t, "LOT-1")
	assert.Equal(t, float64(0), b.TotalKg)
	assert.Equal(t, "LOT-1", b.LotCode)
}

func TestLotCodeUniquePerCompany(t *testing.T) {
	f := newFixture(t)
	f.createBatch(t, "LOT-1")

	_, err := f.svc.Create(context.Background(), f.owner.ID, f.companyID, f.commodity.ID, "LOT-1", time.Now())
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestTotalKgFollowsSources(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBatch(t, "LOT-1")

	src1, err := f.svc.CreateSource(ctx, f.owner.ID, f.companyID, b.ID, f.sourceInput(100))
	require.NoError(t, err)

	// A second source needs a distinct (group, land) combination.
	land2 := &models.Land{CompanyID: f.companyID, Name: "Blok B", AreaHectares: 1.2}
	require.NoError(t, f.st.Lands().Create(ctx, land2))
	volume := 50.0
	_, err = f.svc.CreateSource(ctx, f.owner.ID, f.companyID, b.ID, SourceInput{
		FarmerGroupID: &f.group.ID,
		LandID:        &land2.ID,
		VolumeKg:      &volume,
	})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.owner.ID, f.companyID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(150), got.TotalKg)

	require.NoError(t, f.svc.DeleteSource(ctx, f.owner.ID, f.companyID, b.ID, src1.ID))
	got, err = f.svc.Get(ctx, f.owner.ID, f.companyID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(50), got.TotalKg)
}

func TestUpdateSourceRecomputesTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBatch(t, "LOT-1")

	src, err := f.svc.CreateSource(ctx, f.owner.ID, f.companyID, b.ID, f.sourceInput(100))
	require.NoError(t, err)

	volume := 30.0
	_, err = f.svc.UpdateSource(ctx, f.owner.ID, f.companyID, b.ID, src.ID, SourceInput{VolumeKg: &volume})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.owner.ID, f.companyID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(30), got.TotalKg)
}

func TestNegativeVolumeRejected(t *testing.T) {
	f := newFixture(t)
	b := f.createBatch(t, "LOT-1")

	_, err := f.svc.CreateSource(context.Background(), f.owner.ID, f.companyID, b.ID, f.sourceInput(-1))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCrossTenantSourceRefsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBatch(t, "LOT-1")

	// A land belonging to another company must not be linkable.
	otherLand := &models.Land{CompanyID: uuid.New(), Name: "Foreign", AreaHectares: 1}
	require.NoError(t, f.st.Lands().Create(ctx, otherLand))

	volume := 10.0
	_, err := f.svc.CreateSource(ctx, f.owner.ID, f.companyID, b.ID, SourceInput{
		FarmerGroupID: &f.group.ID,
		LandID:        &otherLand.ID,
		VolumeKg:      &volume,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	otherGroup := &models.FarmerGroup{CompanyID: uuid.New(), Name: "Foreign"}
	require.NoError(t, f.st.FarmerGroups().Create(ctx, otherGroup))
	_, err = f.svc.CreateSource(ctx, f.owner.ID, f.companyID, b.ID, SourceInput{
		FarmerGroupID: &otherGroup.ID,
		LandID:        &f.land.ID,
		VolumeKg:      &volume,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestDuplicateSourceCombinationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBatch(t, "LOT-1")

	_, err := f.svc.CreateSource(ctx, f.owner.ID, f.companyID, b.ID, f.sourceInput(10))
	require.NoError(t, err)
	_, err = f.svc.CreateSource(ctx, f.owner.ID, f.companyID, b.ID, f.sourceInput(20))
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestDeleteBatchCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBatch(t, "LOT-1")
	other := f.createBatch(t, "LOT-2")

	_, err := f.svc.CreateSource(ctx, f.owner.ID, f.companyID, b.ID, f.sourceInput(10))
	require.NoError(t, err)

	key, value := "moisture", "11.5"
	_, err = f.svc.CreateAttribute(ctx, f.owner.ID, f.companyID, b.ID, AttributeInput{Key: &key, Value: &value})
	require.NoError(t, err)

	_, err = f.svc.CreateRelation(ctx, f.owner.ID, f.companyID, b.ID, other.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.owner.ID, f.companyID, b.ID))

	_, err = f.st.Batches().GetByID(ctx, f.companyID, b.ID)
	assert.True(t, apperr.IsNotFound(err))

	sources, err := f.st.BatchSources().ListByBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, sources)

	attrs, err := f.st.BatchAttributes().ListByBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, attrs)

	// Relations are gone from the surviving endpoint too.
	rels, err := f.st.BatchRelations().ListByBatch(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestAttributeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBatch(t, "LOT-1")

	empty := "  "
	value := "11.5"
	_, err := f.svc.CreateAttribute(ctx, f.owner.ID, f.companyID, b.ID, AttributeInput{Key: &empty, Value: &value})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	key := "moisture"
	unit := "%"
	attr, err := f.svc.CreateAttribute(ctx, f.owner.ID, f.companyID, b.ID, AttributeInput{Key: &key, Value: &value, Unit: &unit})
	require.NoError(t, err)
	assert.Equal(t, "moisture", attr.Key)
	require.NotNil(t, attr.Unit)
	assert.Equal(t, "%", *attr.Unit)
	assert.False(t, attr.RecordedAt.IsZero())
}

func TestSelfRelationRejected(t *testing.T) {
	f := newFixture(t)
	b := f.createBatch(t, "LOT-1")

	_, err := f.svc.CreateRelation(context.Background(), f.owner.ID, f.companyID, b.ID, b.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestBatchHiddenFromOtherCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBatch(t, "LOT-1")

	st := f.st
	st.SeedUser(models.User{Name: "Other", Email: "other@example.com"})
	other, err := st.Users().GetByEmail(ctx, "other@example.com")
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, other.ID, f.companyID, b.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestPermissionRequiredForMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A member with only batch:view cannot create batches.
	st := f.st
	st.SeedUser(models.User{Name: "Viewer", Email: "viewer@example.com"})
	viewer, err := st.Users().GetByEmail(ctx, "viewer@example.com")
	require.NoError(t, err)

	role := &models.Role{CompanyID: f.companyID, Name: "viewer"}
	require.NoError(t, st.Roles().Create(ctx, role))
	require.NoError(t, st.Roles().SetPermissions(ctx, role.ID, []string{"2.2.1"}))
	require.NoError(t, st.Memberships().Create(ctx, &models.Membership{
		UserID: viewer.ID, CompanyID: f.companyID, RoleID: role.ID,
	}))

	_, err = f.svc.List(ctx, viewer.ID, f.companyID)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, viewer.ID, f.companyID, f.commodity.ID, "LOT-9", time.Now())
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))
}
