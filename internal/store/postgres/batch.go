package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hasiltani/agritrace/internal/models"
)

type commodityStore struct{ db querier }

func (s *commodityStore) Create(ctx context.Context, c *models.Commodity) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO commodities (name, code) VALUES ($1, $2)
		 RETURNING id, created_at`,
		c.Name, c.Code,
	).Scan(&c.ID, &c.CreatedAt)
	return translate(err, "create commodity", "commodity code already exists", "code")
}

func (s *commodityStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Commodity, error) {
	var c models.Commodity
	err := s.db.QueryRow(ctx,
		"SELECT id, name, code, created_at FROM commodities WHERE id = $1", id,
	).Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get commodity", "commodity not found")
	}
	return &c, nil
}

func (s *commodityStore) List(ctx context.Context) ([]models.Commodity, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, name, code, created_at FROM commodities ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list commodities: %w", err)
	}
	defer rows.Close()

	var cs []models.Commodity
	for rows.Next() {
		var c models.Commodity
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan commodity: %w", err)
		}
		cs = append(cs, c)
	}
	return cs, rows.Err()
}

func (s *commodityStore) Update(ctx context.Context, c *models.Commodity) error {
	_, err := s.db.Exec(ctx,
		"UPDATE commodities SET name = $2, code = $3 WHERE id = $1",
		c.ID, c.Name, c.Code)
	return translate(err, "update commodity", "commodity code already exists", "code")
}

func (s *commodityStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM commodities WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete commodity: %w", err)
	}
	return nil
}

type batchStore struct{ db querier }

const batchColumns = "id, company_id, commodity_id, lot_code, harvest_date, total_kg, created_at, updated_at"

func scanBatch(row interface{ Scan(...any) error }, b *models.Batch) error {
	return row.Scan(&b.ID, &b.CompanyID, &b.CommodityID, &b.LotCode, &b.HarvestDate,
		&b.TotalKg, &b.CreatedAt, &b.UpdatedAt)
}

func (s *batchStore) Create(ctx context.Context, b *models.Batch) error {
	err := scanBatch(s.db.QueryRow(ctx,
		`INSERT INTO batches (company_id, commodity_id, lot_code, harvest_date, total_kg)
		 VALUES ($1, $2, $3, $4, 0)
		 RETURNING `+batchColumns,
		b.CompanyID, b.CommodityID, b.LotCode, b.HarvestDate,
	), b)
	return translate(err, "create batch", "lot code already exists for this company", "lot_code")
}

func (s *batchStore) GetByID(ctx context.Context, companyID, batchID uuid.UUID) (*models.Batch, error) {
	var b models.Batch
	err := scanBatch(s.db.QueryRow(ctx,
		"SELECT "+batchColumns+" FROM batches WHERE id = $1 AND company_id = $2",
		batchID, companyID,
	), &b)
	if err != nil {
		return nil, notFound(err, "get batch", "batch not found")
	}
	return &b, nil
}

func (s *batchStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Batch, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+batchColumns+" FROM batches WHERE company_id = $1 ORDER BY created_at DESC",
		companyID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var bs []models.Batch
	for rows.Next() {
		var b models.Batch
		if err := scanBatch(rows, &b); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		bs = append(bs, b)
	}
	return bs, rows.Err()
}

func (s *batchStore) Update(ctx context.Context, b *models.Batch) error {
	_, err := s.db.Exec(ctx,
		`UPDATE batches SET lot_code = $2, harvest_date = $3, updated_at = now()
		 WHERE id = $1`,
		b.ID, b.LotCode, b.HarvestDate)
	return translate(err, "update batch", "lot code already exists for this company", "lot_code")
}

func (s *batchStore) UpdateTotalKg(ctx context.Context, batchID uuid.UUID, totalKg float64) error {
	_, err := s.db.Exec(ctx,
		"UPDATE batches SET total_kg = $2, updated_at = now() WHERE id = $1",
		batchID, totalKg)
	if err != nil {
		return fmt.Errorf("update batch total: %w", err)
	}
	return nil
}

func (s *batchStore) Delete(ctx context.Context, companyID, batchID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM batches WHERE id = $1 AND company_id = $2", batchID, companyID)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

func (s *batchStore) CountByCommodity(ctx context.Context, commodityID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM batches WHERE commodity_id = $1", commodityID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count commodity batches: %w", err)
	}
	return n, nil
}

func (s *batchStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM batches WHERE company_id = $1", companyID)
	if err != nil {
		return fmt.Errorf("delete company batches: %w", err)
	}
	return nil
}

type batchSourceStore struct{ db querier }

const batchSourceColumns = "id, batch_id, farmer_group_id, land_id, volume_kg, land_snapshot, created_at"

func scanBatchSource(row interface{ Scan(...any) error }, src *models.BatchSource) error {
	return row.Scan(&src.ID, &src.BatchID, &src.FarmerGroupID, &src.LandID,
		&src.VolumeKg, &src.LandSnapshot, &src.CreatedAt)
}

func (s *batchSourceStore) Create(ctx context.Context, src *models.BatchSource) error {
	err := scanBatchSource(s.db.QueryRow(ctx,
		`INSERT INTO batch_sources (batch_id, farmer_group_id, land_id, volume_kg, land_snapshot)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+batchSourceColumns,
		src.BatchID, src.FarmerGroupID, src.LandID, src.VolumeKg, src.LandSnapshot,
	), src)
	return translate(err, "create batch source", "batch source with this combination already exists", "batch_id")
}

func (s *batchSourceStore) GetByID(ctx context.Context, batchID, sourceID uuid.UUID) (*models.BatchSource, error) {
	var src models.BatchSource
	err := scanBatchSource(s.db.QueryRow(ctx,
		"SELECT "+batchSourceColumns+" FROM batch_sources WHERE id = $1 AND batch_id = $2",
		sourceID, batchID,
	), &src)
	if err != nil {
		return nil, notFound(err, "get batch source", "batch source not found")
	}
	return &src, nil
}

func (s *batchSourceStore) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.BatchSource, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+batchSourceColumns+" FROM batch_sources WHERE batch_id = $1 ORDER BY created_at ASC",
		batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch sources: %w", err)
	}
	defer rows.Close()

	var srcs []models.BatchSource
	for rows.Next() {
		var src models.BatchSource
		if err := scanBatchSource(rows, &src); err != nil {
			return nil, fmt.Errorf("scan batch source: %w", err)
		}
		srcs = append(srcs, src)
	}
	return srcs, rows.Err()
}

func (s *batchSourceStore) Update(ctx context.Context, src *models.BatchSource) error {
	_, err := s.db.Exec(ctx,
		`UPDATE batch_sources SET farmer_group_id = $2, land_id = $3, volume_kg = $4, land_snapshot = $5
		 WHERE id = $1`,
		src.ID, src.FarmerGroupID, src.LandID, src.VolumeKg, src.LandSnapshot)
	return translate(err, "update batch source", "batch source with this combination already exists", "batch_id")
}

func (s *batchSourceStore) Delete(ctx context.Context, batchID, sourceID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM batch_sources WHERE id = $1 AND batch_id = $2", sourceID, batchID)
	if err != nil {
		return fmt.Errorf("delete batch source: %w", err)
	}
	return nil
}

func (s *batchSourceStore) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM batch_sources WHERE batch_id = $1", batchID)
	if err != nil {
		return fmt.Errorf("delete batch sources: %w", err)
	}
	return nil
}

func (s *batchSourceStore) SumVolumeByBatch(ctx context.Context, batchID uuid.UUID) (float64, error) {
	var total float64
	err := s.db.QueryRow(ctx,
		"SELECT COALESCE(SUM(volume_kg), 0) FROM batch_sources WHERE batch_id = $1",
		batchID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum batch sources: %w", err)
	}
	return total, nil
}

type batchAttributeStore struct{ db querier }

const batchAttributeColumns = "id, batch_id, key, value, unit, recorded_at"

func (s *batchAttributeStore) Create(ctx context.Context, a *models.BatchAttribute) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO batch_attributes (batch_id, key, value, unit, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		a.BatchID, a.Key, a.Value, a.Unit, a.RecordedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create batch attribute: %w", err)
	}
	return nil
}

func (s *batchAttributeStore) GetByID(ctx context.Context, batchID, attributeID uuid.UUID) (*models.BatchAttribute, error) {
	var a models.BatchAttribute
	err := s.db.QueryRow(ctx,
		"SELECT "+batchAttributeColumns+" FROM batch_attributes WHERE id = $1 AND batch_id = $2",
		attributeID, batchID,
	).Scan(&a.ID, &a.BatchID, &a.Key, &a.Value, &a.Unit, &a.RecordedAt)
	if err != nil {
		return nil, notFound(err, "get batch attribute", "batch attribute not found")
	}
	return &a, nil
}

func (s *batchAttributeStore) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.BatchAttribute, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+batchAttributeColumns+" FROM batch_attributes WHERE batch_id = $1 ORDER BY recorded_at DESC",
		batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch attributes: %w", err)
	}
	defer rows.Close()

	var attrs []models.BatchAttribute
	for rows.Next() {
		var a models.BatchAttribute
		if err := rows.Scan(&a.ID, &a.BatchID, &a.Key, &a.Value, &a.Unit, &a.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan batch attribute: %w", err)
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

func (s *batchAttributeStore) Update(ctx context.Context, a *models.BatchAttribute) error {
	_, err := s.db.Exec(ctx,
		`UPDATE batch_attributes SET key = $2, value = $3, unit = $4, recorded_at = $5
		 WHERE id = $1`,
		a.ID, a.Key, a.Value, a.Unit, a.RecordedAt)
	if err != nil {
		return fmt.Errorf("update batch attribute: %w", err)
	}
	return nil
}

func (s *batchAttributeStore) Delete(ctx context.Context, batchID, attributeID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM batch_attributes WHERE id = $1 AND batch_id = $2", attributeID, batchID)
	if err != nil {
		return fmt.Errorf("delete batch attribute: %w", err)
	}
	return nil
}

func (s *batchAttributeStore) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM batch_attributes WHERE batch_id = $1", batchID)
	if err != nil {
		return fmt.Errorf("delete batch attributes: %w", err)
	}
	return nil
}

type batchRelationStore struct{ db querier }

func (s *batchRelationStore) Create(ctx context.Context, r *models.BatchRelation) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO batch_relations (parent_batch_id, child_batch_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		r.ParentBatchID, r.ChildBatchID,
	).Scan(&r.ID, &r.CreatedAt)
	return translate(err, "create batch relation", "batch relation already exists", "parent_batch_id")
}

func (s *batchRelationStore) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.BatchRelation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, parent_batch_id, child_batch_id, created_at FROM batch_relations
		 WHERE parent_batch_id = $1 OR child_batch_id = $1
		 ORDER BY created_at ASC`,
		batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch relations: %w", err)
	}
	defer rows.Close()

	var rels []models.BatchRelation
	for rows.Next() {
		var r models.BatchRelation
		if err := rows.Scan(&r.ID, &r.ParentBatchID, &r.ChildBatchID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan batch relation: %w", err)
		}
		rels = append(rels, r)
	}
	return rels, rows.Err()
}

func (s *batchRelationStore) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM batch_relations WHERE parent_batch_id = $1 OR child_batch_id = $1",
		batchID)
	if err != nil {
		return fmt.Errorf("delete batch relations: %w", err)
	}
	return nil
}
