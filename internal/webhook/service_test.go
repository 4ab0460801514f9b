package webhook

import (
	"context"
	"strings"
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

func TestCreateWebhook(t *testing.T) {
	svc, _, owner, companyID := setup(t)
	ctx := context.Background()

	wh, err := svc.Create(ctx, owner.ID, companyID, CreateInput{
		URL:    "https://example.com/hooks",
		Events: []string{"batch.created", "batch_source.created"},
	})
	require.NoError(t, err)
	assert.True(t, wh.IsActive)
	assert.True(t, strings.HasPrefix(wh.Secret, "whsec_"))

	listed, err := svc.List(ctx, owner.ID, companyID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].Secret)
}

func TestCreateWebhookValidation(t *testing.T) {
	svc, _, owner, companyID := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, owner.ID, companyID, CreateInput{URL: "ftp://x", Events: []string{"batch.created"}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(ctx, owner.ID, companyID, CreateInput{URL: "https://example.com", Events: nil})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(ctx, owner.ID, companyID, CreateInput{URL: "https://example.com", Events: []string{"nope"}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestWebhookOwnerOnly(t *testing.T) {
	svc, st, owner, companyID := setup(t)
	ctx := context.Background()

	st.SeedUser(models.User{Name: "Member", Email: "member@example.com"})
	member, err := st.Users().GetByEmail(ctx, "member@example.com")
	require.NoError(t, err)

	engine := auth.NewEngine(st, nil)
	aud := audit.NewService(st)
	companySvc := company.NewService(st, engine, aud)

	role, err := companySvc.CreateRole(ctx, owner.ID, companyID, "viewer", []string{"2.2.1"})
	require.NoError(t, err)
	require.NoError(t, companySvc.AddMember(ctx, owner.ID, companyID, member.ID, []uuid.UUID{role.ID}))

	_, err = svc.List(ctx, member.ID, companyID)
	require.Error(t, err)
	assert.True(t, apperr.IsUnauthorized(err))

	st.SeedUser(models.User{Name: "Stranger", Email: "stranger@example.com"})
	stranger, err := st.Users().GetByEmail(ctx, "stranger@example.com")
	require.NoError(t, err)

	_, err = svc.List(ctx, stranger.ID, companyID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteWebhook(t *testing.T) {
	svc, st, owner, companyID := setup(t)
	ctx := context.Background()

	wh, err := svc.Create(ctx, owner.ID, companyID, CreateInput{
		URL:    "https://example.com/hooks",
		Events: []string{"batch.deleted"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner.ID, companyID, wh.ID))
	_, err = st.Webhooks().GetByID(ctx, companyID, wh.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestDispatcherSignature(t *testing.T) {
	payload := []byte(`{"event":"batch.created"}`)
	sig := sign(payload, "whsec_test")
	assert.True(t, strings.HasPrefix(sig, "sha256="))
	assert.Equal(t, sig, sign(payload, "whsec_test"))
	assert.NotEqual(t, sig, sign(payload, "whsec_other"))
}
