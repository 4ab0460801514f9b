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
	"github.com/hasiltani/agritrace/internal/store"
)

// Notifier delivers tenant webhook events for batch mutations. A nil
// notifier disables delivery.
type Notifier interface {
	Notify(ctx context.Context, companyID uuid.UUID, event string, payload interface{})
}

// Service manages batches and their sources, attributes and lineage
// relations. TotalKg is derived: it is re-summed from the batch's sources
// inside the same transaction as every source mutation and is never
// writable by callers.
type Service struct {
	store    store.Store
	authz    *auth.Engine
	audit    *audit.Service
	notifier Notifier
}

func NewService(st store.Store, authz *auth.Engine, aud *audit.Service, n Notifier) *Service {
	return &Service{store: st, authz: authz, audit: aud, notifier: n}
}

func (s *Service) List(ctx context.Context, userID, companyID uuid.UUID) ([]models.Batch, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchView); err != nil {
		return nil, err
	}
	batches, err := s.store.Batches().ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

func (s *Service) Get(ctx context.Context, userID, companyID, batchID uuid.UUID) (*models.Batch, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchView); err != nil {
		return nil, err
	}
	return s.store.Batches().GetByID(ctx, companyID, batchID)
}

func (s *Service) Create(ctx context.Context, userID, companyID, commodityID uuid.UUID, lotCode string, harvestDate time.Time) (*models.Batch, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchCreate); err != nil {
		return nil, err
	}

	lotCode = strings.TrimSpace(lotCode)
	if lotCode == "" {
		return nil, apperr.Validation("lot code is required", "lot_code")
	}
	if harvestDate.IsZero() {
		return nil, apperr.Validation("harvest date is required", "harvest_date")
	}
	if _, err := s.store.Commodities().GetByID(ctx, commodityID); err != nil {
		return nil, err
	}

	batch := &models.Batch{
		CompanyID:   companyID,
		CommodityID: commodityID,
		LotCode:     lotCode,
		HarvestDate: harvestDate,
	}
	if err := s.store.Batches().Create(ctx, batch); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "batch.created",
		ResourceType: "batch",
		ResourceID:   &batch.ID,
		Details:      map[string]interface{}{"lot_code": batch.LotCode},
	})
	s.notify(ctx, companyID, "batch.created", batch)
	return batch, nil
}

// Update changes the lot code and harvest date only. TotalKg is never
// client-writable.
func (s *Service) Update(ctx context.Context, userID, companyID, batchID uuid.UUID, lotCode string, harvestDate time.Time) (*models.Batch, error) {
	if err := s.access(ctx, userID, companyID, auth.PermBatchUpdate); err != nil {
		return nil, err
	}

	batch, err := s.store.Batches().GetByID(ctx, companyID, batchID)
	if err != nil {
		return nil, err
	}

	lotCode = strings.TrimSpace(lotCode)
	if lotCode == "" {
		return nil, apperr.Validation("lot code is required", "lot_code")
	}
	if harvestDate.IsZero() {
		return nil, apperr.Validation("harvest date is required", "harvest_date")
	}

	batch.LotCode = lotCode
	batch.HarvestDate = harvestDate
	if err := s.store.Batches().Update(ctx, batch); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "batch.updated",
		ResourceType: "batch",
		ResourceID:   &batchID,
		Details:      map[string]interface{}{"lot_code": batch.LotCode},
	})
	s.notify(ctx, companyID, "batch.updated", batch)
	return batch, nil
}

// Delete removes the batch and everything hanging off it in one
// transaction: sources first, then attributes, then every relation where
// the batch is parent or child, then the batch row.
func (s *Service) Delete(ctx context.Context, userID, companyID, batchID uuid.UUID) error {
	if err := s.access(ctx, userID, companyID, auth.PermBatchDelete); err != nil {
		return err
	}

	batch, err := s.store.Batches().GetByID(ctx, companyID, batchID)
	if err != nil {
		return err
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.BatchSources().DeleteByBatch(ctx, batchID); err != nil {
			return fmt.Errorf("delete batch sources: %w", err)
		}
		if err := tx.BatchAttributes().DeleteByBatch(ctx, batchID); err != nil {
			return fmt.Errorf("delete batch attributes: %w", err)
		}
		if err := tx.BatchRelations().DeleteByBatch(ctx, batchID); err != nil {
			return fmt.Errorf("delete batch relations: %w", err)
		}
		if err := tx.Batches().Delete(ctx, companyID, batchID); err != nil {
			return fmt.Errorf("delete batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "batch.deleted",
		ResourceType: "batch",
		ResourceID:   &batchID,
		Details:      map[string]interface{}{"lot_code": batch.LotCode},
	})
	s.notify(ctx, companyID, "batch.deleted", batch)
	return nil
}

func (s *Service) notify(ctx context.Context, companyID uuid.UUID, event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, companyID, event, payload)
	}
}

func (s *Service) access(ctx context.Context, userID, companyID uuid.UUID, perm auth.Permission) error {
	isMember, err := s.authz.IsMember(ctx, userID, companyID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperr.NotFound("company not found or access denied")
	}
	return s.authz.Authorize(ctx, userID, companyID, perm)
}

// recomputeTotal re-sums VolumeKg over the batch's sources and writes the
// aggregate, inside the caller's transaction.
func recomputeTotal(ctx context.Context, tx store.Store, batchID uuid.UUID) error {
	total, err := tx.BatchSources().SumVolumeByBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("sum source volumes: %w", err)
	}
	if err := tx.Batches().UpdateTotalKg(ctx, batchID, total); err != nil {
		return fmt.Errorf("update batch total: %w", err)
	}
	return nil
}
