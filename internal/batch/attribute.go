package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/models"
)

// AttributeInput carries an attribute create or update. On update, nil
// fields are left untouched.
type AttributeInput struct {
	Key        *string
	Value      *string
	Unit       *string
	RecordedAt *time.Time
}

func (s *Service) ListAttributes(ctx context.Context, userID, companyID, batchID uuid.UUID) ([]models.BatchAttribute, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchAttributeView); err != nil {
		return nil, err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, batchID); err != nil {
		return nil, err
	}
	attrs, err := s.store.BatchAttributes().ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch attributes: %w", err)
	}
	return attrs, nil
}

func (s *Service) GetAttribute(ctx context.Context, userID, companyID, batchID, attributeID uuid.UUID) (*models.BatchAttribute, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchAttributeView); err != nil {
		return nil, err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, batchID); err != nil {
		return nil, err
	}
	return s.store.BatchAttributes().GetByID(ctx, batchID, attributeID)
}

func (s *Service) CreateAttribute(ctx context.Context, userID, companyID, batchID uuid.UUID, in AttributeInput) (*models.BatchAttribute, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchAttributeCreate); err != nil {
		return nil, err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, batchID); err != nil {
		return nil, err
	}

	attr := &models.BatchAttribute{BatchID: batchID, RecordedAt: time.Now()}
	if in.Key == nil || strings.TrimSpace(*in.Key) == "" {
		return nil, apperr.Validation("key is required", "key")
	}
	attr.Key = strings.TrimSpace(*in.Key)
	if in.Value == nil || strings.TrimSpace(*in.Value) == "" {
		return nil, apperr.Validation("value is required", "value")
	}
	attr.Value = strings.TrimSpace(*in.Value)
	if in.Unit != nil {
		if unit := strings.TrimSpace(*in.Unit); unit != "" {
			attr.Unit = &unit
		}
	}
	if in.RecordedAt != nil {
		attr.RecordedAt = *in.RecordedAt
	}

	if err := s.store.BatchAttributes().Create(ctx, attr); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "batch_attribute.created",
		ResourceType: "batch_attribute",
		ResourceID:   &attr.ID,
		Details:      map[string]interface{}{"batch_id": batchID, "key": attr.Key},
	})
	return attr, nil
}

func (s *Service) UpdateAttribute(ctx context.Context, userID, companyID, batchID, attributeID uuid.UUID, in AttributeInput) (*models.BatchAttribute, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchAttributeUpdate); err != nil {
		return nil, err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, batchID); err != nil {
		return nil, err
	}

	attr, err := s.store.BatchAttributes().GetByID(ctx, batchID, attributeID)
	if err != nil {
		return nil, err
	}

	if in.Key != nil {
		key := strings.TrimSpace(*in.Key)
		if key == "" {
			return nil, apperr.Validation("key cannot be empty", "key")
		}
		attr.Key = key
	}
	if in.Value != nil {
		value := strings.TrimSpace(*in.Value)
		if value == "" {
			return nil, apperr.Validation("value cannot be empty", "value")
		}
		attr.Value = value
	}
	if in.Unit != nil {
		if unit := strings.TrimSpace(*in.Unit); unit != "" {
			attr.Unit = &unit
		} else {
			attr.Unit = nil
		}
	}
	if in.RecordedAt != nil {
		attr.RecordedAt = *in.RecordedAt
	}

	if err := s.store.BatchAttributes().Update(ctx, attr); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "batch_attribute.updated",
		ResourceType: "batch_attribute",
		ResourceID:   &attributeID,
		Details:      map[string]interface{}{"batch_id": batchID, "key": attr.Key},
	})
	return attr, nil
}

func (s *Service) DeleteAttribute(ctx context.Context, userID, companyID, batchID, attributeID uuid.UUID) error {
	if err := s.access(ctx, userID, companyID, auth.PermBatchAttributeDelete); err != nil {
		return err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, batchID); err != nil {
		return err
	}
	if _, err := s.store.BatchAttributes().GetByID(ctx, batchID, attributeID); err != nil {
		return err
	}

	if err := s.store.BatchAttributes().Delete(ctx, batchID, attributeID); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "batch_attribute.deleted",
		ResourceType: "batch_attribute",
		ResourceID:   &attributeID,
		Details:      map[string]interface{}{"batch_id": batchID},
	})
	return nil
}
