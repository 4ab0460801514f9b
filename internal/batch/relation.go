package batch

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/models"
)

// ListRelations returns every lineage edge touching the batch, as parent
// or as child.
func (s *Service) ListRelations(ctx context.Context, userID, companyID, batchID uuid.UUID) ([]models.BatchRelation, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchView); err != nil {
		return nil, err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, batchID); err != nil {
		return nil, err
	}
	rels, err := s.store.BatchRelations().ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch relations: %w", err)
	}
	return rels, nil
}

// CreateRelation records a lineage edge between two batches of the same
// company.
func (s *Service) CreateRelation(ctx context.Context, userID, companyID, parentBatchID, childBatchID uuid.UUID) (*models.BatchRelation, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchUpdate); err != nil {
		return nil, err
	}

	if parentBatchID == childBatchID {
		return nil, apperr.Validation("a batch cannot be related to itself", "child_batch_id")
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, parentBatchID); err != nil {
		return nil, err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, childBatchID); err != nil {
		return nil, err
	}

	rel := &models.BatchRelation{ParentBatchID: parentBatchID, ChildBatchID: childBatchID}
	if err := s.store.BatchRelations().Create(ctx, rel); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "batch_relation.created",
		ResourceType: "batch_relation",
		ResourceID:   &rel.ID,
		Details: map[string]interface{}{
			"parent_batch_id": parentBatchID,
			"child_batch_id":  childBatchID,
		},
	})
	return rel, nil
}
