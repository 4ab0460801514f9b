package land

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

func validInput() Input {
	return Input{
		Name:                "Kebun Utara",
		AreaHectares:        2.5,
		Latitude:            -6.2,
		Longitude:           106.8,
		Location:            "Sukabumi",
		GeoPolygon:          `{"type":"Polygon","coordinates":[]}`,
		IsDeforestationFree: true,
	}
}

func TestCreateLand(t *testing.T) {
	svc, _, owner, companyID := setup(t)
	ctx := context.Background()

	land, err := svc.Create(ctx, owner.ID, companyID, validInput())
	require.NoError(t, err)
	assert.Equal(t, "Kebun Utara", land.Name)
	assert.Equal(t, companyID, land.CompanyID)
	assert.False(t, land.RecordedAt.IsZero())
}

func TestLandValidation(t *testing.T) {
	svc, _, owner, companyID := setup(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"empty name", func(in *Input) { in.Name = " " }},
		{"zero area", func(in *Input) { in.AreaHectares = 0 }},
		{"latitude out of range", func(in *Input) { in.Latitude = 91 }},
		{"longitude out of range", func(in *Input) { in.Longitude = -181 }},
		{"missing polygon", func(in *Input) { in.GeoPolygon = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Create(ctx, owner.ID, companyID, in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestUpdateLandKeepsCompanyAndRecordedAt(t *testing.T) {
	svc, _, owner, companyID := setup(t)
	ctx := context.Background()

	land, err := svc.Create(ctx, owner.ID, companyID, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Name = "Kebun Selatan"
	in.IsDeforestationFree = false
	updated, err := svc.Update(ctx, owner.ID, companyID, land.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Kebun Selatan", updated.Name)
	assert.False(t, updated.IsDeforestationFree)
	assert.Equal(t, companyID, updated.CompanyID)
	assert.Equal(t, land.RecordedAt, updated.RecordedAt)
}

func TestDeleteLand(t *testing.T) {
	svc, st, owner, companyID := setup(t)
	ctx := context.Background()

	land, err := svc.Create(ctx, owner.ID, companyID, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner.ID, companyID, land.ID))
	_, err = st.Lands().GetByID(ctx, companyID, land.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestLandHiddenFromOtherCompany(t *testing.T) {
	svc, st, owner, companyID := setup(t)
	ctx := context.Background()

	land, err := svc.Create(ctx, owner.ID, companyID, validInput())
	require.NoError(t, err)

	st.SeedUser(models.User{Name: "Other", Email: "other@example.com"})
	other, err := st.Users().GetByEmail(ctx, "other@example.com")
	require.NoError(t, err)

	engine := auth.NewEngine(st, nil)
	otherView, err := company.NewService(st, engine, audit.NewService(st)).Create(ctx, other.ID, "Koperasi Lain")
	require.NoError(t, err)

	_, err = svc.Get(ctx, other.ID, otherView.ID, land.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
