// Package webhook manages per-company endpoint registrations and the
// delivery of signed event payloads to them.
package webhook

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/models"
	"github.com/hasiltani/agritrace/internal/store"
)

// Events a registration may subscribe to.
var knownEvents = map[string]bool{
	"batch.created":        true,
	"batch.updated":        true,
	"batch.deleted":        true,
	"batch_source.created": true,
	"batch_source.updated": true,
	"batch_source.deleted": true,
}

type Service struct {
	store store.Store
	authz *auth.Engine
	audit *audit.Service
}

func NewService(st store.Store, authz *auth.Engine, aud *audit.Service) *Service {
	return &Service{store: st, authz: authz, audit: aud}
}

type CreateInput struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

// Create registers an endpoint. The signing secret is generated here and
// returned once; it is never listed again.
func (s *Service) Create(ctx context.Context, userID, companyID uuid.UUID, in CreateInput) (*models.Webhook, error) {
	if err := s.requireOwner(ctx, userID, companyID); err != nil {
		return nil, err
	}

	in.URL = strings.TrimSpace(in.URL)
	u, err := url.Parse(in.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.Validation("url must be a valid http(s) URL", "url")
	}
	if len(in.Events) == 0 {
		return nil, apperr.Validation("at least one event is required", "events")
	}
	for _, ev := range in.Events {
		if !knownEvents[ev] {
			return nil, apperr.Validation(fmt.Sprintf("unknown event %q", ev), "events")
		}
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	wh := &models.Webhook{
		CompanyID: companyID,
		URL:       in.URL,
		Events:    in.Events,
		Secret:    secret,
		IsActive:  true,
	}
	if err := s.store.Webhooks().Create(ctx, wh); err != nil {
		return nil, fmt.Errorf("create webhook: %w", err)
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "webhook.created",
		ResourceType: "webhook",
		ResourceID:   &wh.ID,
		Details:      map[string]interface{}{"url": wh.URL, "events": wh.Events},
	})
	return wh, nil
}

func (s *Service) List(ctx context.Context, userID, companyID uuid.UUID) ([]models.Webhook, error) {
	if err := s.requireOwner(ctx, userID, companyID); err != nil {
		return nil, err
	}
	webhooks, err := s.store.Webhooks().ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	for i := range webhooks {
		webhooks[i].Secret = ""
	}
	return webhooks, nil
}

func (s *Service) Delete(ctx context.Context, userID, companyID, webhookID uuid.UUID) error {
	if err := s.requireOwner(ctx, userID, companyID); err != nil {
		return err
	}
	if _, err := s.store.Webhooks().GetByID(ctx, companyID, webhookID); err != nil {
		return err
	}
	if err := s.store.Webhooks().Delete(ctx, companyID, webhookID); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "webhook.deleted",
		ResourceType: "webhook",
		ResourceID:   &webhookID,
	})
	return nil
}

// requireOwner hides webhook management from non-members and restricts it
// to the owner; registrations carry signing secrets.
func (s *Service) requireOwner(ctx context.Context, userID, companyID uuid.UUID) error {
	member, err := s.authz.IsMember(ctx, userID, companyID)
	if err != nil {
		return err
	}
	if !member {
		return apperr.NotFound("company not found or access denied")
	}
	owner, err := s.authz.IsOwner(ctx, userID, companyID)
	if err != nil {
		return err
	}
	if !owner {
		return apperr.Unauthorized("only the owner can manage webhooks")
	}
	return nil
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(b), nil
}
