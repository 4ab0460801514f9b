package commodity

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

func setup(t *testing.T) (*Service, *memory.Store, *models.User, uuid.UUID) {
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

	return NewService(st, engine, aud), st, owner, view.ID
}

func TestCreateCommodity(t *testing.T) {
	svc, _, owner, companyID := setup(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, owner.ID, companyID, "  Kopi Arabika ", " COF-AR ")
	require.NoError(t, err)
	assert.Equal(t, "Kopi Arabika", c.Name)
	assert.Equal(t, "COF-AR", c.Code)

	_, err = svc.Create(ctx, owner.ID, companyID, "Other", "COF-AR")
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	_, err = svc.Create(ctx, owner.ID, companyID, "", "X")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateCommodityPartial(t *testing.T) {
	svc, _, owner, companyID := setup(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, owner.ID, companyID, "Kopi Arabika", "COF-AR")
	require.NoError(t, err)

	name := "Kopi Robusta"
	updated, err := svc.Update(ctx, owner.ID, companyID, c.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Kopi Robusta", updated.Name)
	assert.Equal(t, "COF-AR", updated.Code)

	empty := " "
	_, err = svc.Update(ctx, owner.ID, companyID, c.ID, nil, &empty)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeleteCommodityBlockedByBatches(t *testing.T) {
	svc, st, owner, companyID := setup(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, owner.ID, companyID, "Kopi Arabika", "COF-AR")
	require.NoError(t, err)

	batch := &models.Batch{
		CompanyID:   companyID,
		CommodityID: c.ID,
		LotCode:     "LOT-1",
		HarvestDate: time.Now(),
	}
	require.NoError(t, st.Batches().Create(ctx, batch))

	err = svc.Delete(ctx, owner.ID, companyID, c.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))

	require.NoError(t, st.Batches().Delete(ctx, companyID, batch.ID))
	require.NoError(t, svc.Delete(ctx, owner.ID, companyID, c.ID))

	_, err = st.Commodities().GetByID(ctx, c.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCommodityAccessRequiresMembership(t *testing.T) {
	svc, st, _, companyID := setup(t)
	ctx := context.Background()

	st.SeedUser(models.User{Name: "Stranger", Email: "stranger@example.com"})
	stranger, err := st.Users().GetByEmail(ctx, "stranger@example.com")
	require.NoError(t, err)

	_, err = svc.List(ctx, stranger.ID, companyID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
