package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/models"
	"github.com/hasiltani/agritrace/internal/store"
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

type LogEntry struct {
	CompanyID    uuid.UUID
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]interface{}
}

// Log records a mutation. Failures are logged and swallowed so an audit
// outage never fails the mutation itself.
func (s *Service) Log(ctx context.Context, entry LogEntry) {
	var userID *uuid.UUID
	if user := auth.UserFromContext(ctx); user != nil {
		userID = &user.ID
	}

	details, _ := json.Marshal(entry.Details)

	err := s.store.Audit().Insert(ctx, &models.AuditLog{
		CompanyID:    entry.CompanyID,
		UserID:       userID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      details,
	})
	if err != nil {
		slog.Warn("audit log insert failed",
			"action", entry.Action,
			"resource_type", entry.ResourceType,
			"error", err)
	}
}

func (s *Service) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	logs, err := s.store.Audit().ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
