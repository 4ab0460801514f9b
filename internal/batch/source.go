package batch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/models"
	"github.com/hasiltani/agritrace/internal/store"
)

// SourceInput carries a source create or update. On update, nil pointer
// fields are left untouched.
type SourceInput struct {
	FarmerGroupID *uuid.UUID
	LandID        *uuid.UUID
	VolumeKg      *float64
	LandSnapshot  json.RawMessage
}

func (s *Service) ListSources(ctx context.Context, userID, companyID, batchID uuid.UUID) ([]models.BatchSource, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchSourceView); err != nil {
		return nil, err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, batchID); err != nil {
		return nil, err
	}
	sources, err := s.store.BatchSources().ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch sources: %w", err)
	}
	return sources, nil
}

func (s *Service) GetSource(ctx context.Context, userID, companyID, batchID, sourceID uuid.UUID) (*models.BatchSource, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchSourceView); err != nil {
		return nil, err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, batchID); err != nil {
		return nil, err
	}
	return s.store.BatchSources().GetByID(ctx, batchID, sourceID)
}

// CreateSource attaches a source to a batch. The farmer group and land
// must belong to the batch's company; the batch total is re-summed in the
// same transaction as the insert.
func (s *Service) CreateSource(ctx context.Context, userID, companyID, batchID uuid.UUID, in SourceInput) (*models.BatchSource, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchSourceCreate); err != nil {
		return nil, err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, batchID); err != nil {
		return nil, err
	}

	if in.FarmerGroupID == nil {
		return nil, apperr.Validation("farmer group ID is required", "farmer_group_id")
	}
	if in.LandID == nil {
		return nil, apperr.Validation("land ID is required", "land_id")
	}
	if in.VolumeKg == nil {
		return nil, apperr.Validation("volume kg is required", "volume_kg")
	}
	if *in.VolumeKg < 0 {
		return nil, apperr.Validation("volume kg must be >= 0", "volume_kg")
	}

	if err := s.checkSourceRefs(ctx, companyID, *in.FarmerGroupID, *in.LandID); err != nil {
		return nil, err
	}

	snapshot := in.LandSnapshot
	if len(snapshot) == 0 {
		snapshot = json.RawMessage(`{}`)
	}

	source := &models.BatchSource{
		BatchID:       batchID,
		FarmerGroupID: *in.FarmerGroupID,
		LandID:        *in.LandID,
		VolumeKg:      *in.VolumeKg,
		LandSnapshot:  snapshot,
	}
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.BatchSources().Create(ctx, source); err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, batchID)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "batch_source.created",
		ResourceType: "batch_source",
		ResourceID:   &source.ID,
		Details:      map[string]interface{}{"batch_id": batchID, "volume_kg": source.VolumeKg},
	})
	s.notify(ctx, companyID, "batch_source.created", source)
	return source, nil
}

func (s *Service) UpdateSource(ctx context.Context, userID, companyID, batchID, sourceID uuid.UUID, in SourceInput) (*models.BatchSource, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchSourceUpdate); err != nil {
		return nil, err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, batchID); err != nil {
		return nil, err
	}

	source, err := s.store.BatchSources().GetByID(ctx, batchID, sourceID)
	if err != nil {
		return nil, err
	}

	if in.FarmerGroupID != nil {
		source.FarmerGroupID = *in.FarmerGroupID
	}
	if in.LandID != nil {
		source.LandID = *in.LandID
	}
	if in.VolumeKg != nil {
		if *in.VolumeKg < 0 {
			return nil, apperr.Validation("volume kg must be >= 0", "volume_kg")
		}
		source.VolumeKg = *in.VolumeKg
	}
	if in.LandSnapshot != nil {
		source.LandSnapshot = in.LandSnapshot
	}

	// References are re-validated even when unchanged.
	if err := s.checkSourceRefs(ctx, companyID, source.FarmerGroupID, source.LandID); err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.BatchSources().Update(ctx, source); err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, batchID)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "batch_source.updated",
		ResourceType: "batch_source",
		ResourceID:   &sourceID,
		Details:      map[string]interface{}{"batch_id": batchID, "volume_kg": source.VolumeKg},
	})
	s.notify(ctx, companyID, "batch_source.updated", source)
	return source, nil
}

func (s *Service) DeleteSource(ctx context.Context, userID, companyID, batchID, sourceID uuid.UUID) error {
	if err := s.access(ctx, userID, companyID, auth.PermBatchSourceDelete); err != nil {
		return err
	}
	if _, err := s.store.Batches().GetByID(ctx, companyID, batchID); err != nil {
		return err
	}
	if _, err := s.store.BatchSources().GetByID(ctx, batchID, sourceID); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.BatchSources().Delete(ctx, batchID, sourceID); err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, batchID)
	})
	if err != nil {
		return err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "batch_source.deleted",
		ResourceType: "batch_source",
		ResourceID:   &sourceID,
		Details:      map[string]interface{}{"batch_id": batchID},
	})
	s.notify(ctx, companyID, "batch_source.deleted", map[string]interface{}{"id": sourceID, "batch_id": batchID})
	return nil
}

// checkSourceRefs rejects cross-tenant references: the farmer group and
// land must belong to the same company as the batch.
func (s *Service) checkSourceRefs(ctx context.Context, companyID, farmerGroupID, landID uuid.UUID) error {
	if _, err := s.store.FarmerGroups().GetByID(ctx, companyID, farmerGroupID); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NotFound("farmer group not found or doesn't belong to this company")
		}
		return err
	}
	if _, err := s.store.Lands().GetByID(ctx, companyID, landID); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NotFound("land not found or doesn't belong to this company")
		}
		return err
	}
	return nil
}
