package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/models"
)

type commodityStore struct{ s *Store }

func (c *commodityStore) Create(ctx context.Context, com *models.Commodity) error {
	defer c.s.lock()()
	for _, existing := range c.s.data.commodities {
		if existing.Code == com.Code {
			return apperr.Conflict("commodity code already exists", "code")
		}
	}
	com.ID = uuid.New()
	com.CreatedAt = time.Now()
	c.s.data.commodities[com.ID] = *com
	c.s.data.touch(com.ID)
	return nil
}

func (c *commodityStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Commodity, error) {
	defer c.s.lock()()
	com, ok := c.s.data.commodities[id]
	if !ok {
		return nil, apperr.NotFound("commodity not found")
	}
	return &com, nil
}

func (c *commodityStore) List(ctx context.Context) ([]models.Commodity, error) {
	defer c.s.lock()()
	var cs []models.Commodity
	for _, com := range c.s.data.commodities {
		cs = append(cs, com)
	}
	sortBySeq(c.s.data, cs, func(x models.Commodity) uuid.UUID { return x.ID }, true)
	return cs, nil
}

func (c *commodityStore) Update(ctx context.Context, com *models.Commodity) error {
	defer c.s.lock()()
	if _, ok := c.s.data.commodities[com.ID]; !ok {
		return apperr.NotFound("commodity not found")
	}
	for other, existing := range c.s.data.commodities {
		if other != com.ID && existing.Code == com.Code {
			return apperr.Conflict("commodity code already exists", "code")
		}
	}
	c.s.data.commodities[com.ID] = *com
	return nil
}

func (c *commodityStore) Delete(ctx context.Context, id uuid.UUID) error {
	defer c.s.lock()()
	delete(c.s.data.commodities, id)
	return nil
}

type batchStore struct{ s *Store }

func (b *batchStore) Create(ctx context.Context, batch *models.Batch) error {
	defer b.s.lock()()
	for _, existing := range b.s.data.batches {
		if existing.CompanyID == batch.CompanyID && existing.LotCode == batch.LotCode {
			return apperr.Conflict("lot code already exists for this company", "lot_code")
		}
	}
	batch.ID = uuid.New()
	batch.TotalKg = 0
	batch.CreatedAt = time.Now()
	batch.UpdatedAt = batch.CreatedAt
	b.s.data.batches[batch.ID] = *batch
	b.s.data.touch(batch.ID)
	return nil
}

func (b *batchStore) GetByID(ctx context.Context, companyID, batchID uuid.UUID) (*models.Batch, error) {
	defer b.s.lock()()
	batch, ok := b.s.data.batches[batchID]
	if !ok || batch.CompanyID != companyID {
		return nil, apperr.NotFound("batch not found")
	}
	return &batch, nil
}

func (b *batchStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Batch, error) {
	defer b.s.lock()()
	var bs []models.Batch
	for _, batch := range b.s.data.batches {
		if batch.CompanyID == companyID {
			bs = append(bs, batch)
		}
	}
	sortBySeq(b.s.data, bs, func(x models.Batch) uuid.UUID { return x.ID }, true)
	return bs, nil
}

func (b *batchStore) Update(ctx context.Context, batch *models.Batch) error {
	defer b.s.lock()()
	stored, ok := b.s.data.batches[batch.ID]
	if !ok {
		return apperr.NotFound("batch not found")
	}
	for other, existing := range b.s.data.batches {
		if other != batch.ID && existing.CompanyID == stored.CompanyID && existing.LotCode == batch.LotCode {
			return apperr.Conflict("lot code already exists for this company", "lot_code")
		}
	}
	stored.LotCode = batch.LotCode
	stored.HarvestDate = batch.HarvestDate
	stored.UpdatedAt = time.Now()
	b.s.data.batches[batch.ID] = stored
	*batch = stored
	return nil
}

func (b *batchStore) UpdateTotalKg(ctx context.Context, batchID uuid.UUID, totalKg float64) error {
	defer b.s.lock()()
	batch, ok := b.s.data.batches[batchID]
	if !ok {
		return apperr.NotFound("batch not found")
	}
	batch.TotalKg = totalKg
	batch.UpdatedAt = time.Now()
	b.s.data.batches[batchID] = batch
	return nil
}

func (b *batchStore) Delete(ctx context.Context, companyID, batchID uuid.UUID) error {
	defer b.s.lock()()
	batch, ok := b.s.data.batches[batchID]
	if ok && batch.CompanyID == companyID {
		delete(b.s.data.batches, batchID)
	}
	return nil
}

func (b *batchStore) CountByCommodity(ctx context.Context, commodityID uuid.UUID) (int, error) {
	defer b.s.lock()()
	n := 0
	for _, batch := range b.s.data.batches {
		if batch.CommodityID == commodityID {
			n++
		}
	}
	return n, nil
}

func (b *batchStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	defer b.s.lock()()
	for id, batch := range b.s.data.batches {
		if batch.CompanyID == companyID {
			delete(b.s.data.batches, id)
		}
	}
	return nil
}

type batchSourceStore struct{ s *Store }

func (b *batchSourceStore) Create(ctx context.Context, src *models.BatchSource) error {
	defer b.s.lock()()
	for _, existing := range b.s.data.batchSources {
		if existing.BatchID == src.BatchID && existing.FarmerGroupID == src.FarmerGroupID &&
			existing.LandID == src.LandID {
			return apperr.Conflict("batch source with this combination already exists", "batch_id")
		}
	}
	src.ID = uuid.New()
	src.CreatedAt = time.Now()
	b.s.data.batchSources[src.ID] = *src
	b.s.data.touch(src.ID)
	return nil
}

func (b *batchSourceStore) GetByID(ctx context.Context, batchID, sourceID uuid.UUID) (*models.BatchSource, error) {
	defer b.s.lock()()
	src, ok := b.s.data.batchSources[sourceID]
	if !ok || src.BatchID != batchID {
		return nil, apperr.NotFound("batch source not found")
	}
	return &src, nil
}

func (b *batchSourceStore) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.BatchSource, error) {
	defer b.s.lock()()
	var srcs []models.BatchSource
	for _, src := range b.s.data.batchSources {
		if src.BatchID == batchID {
			srcs = append(srcs, src)
		}
	}
	sortBySeq(b.s.data, srcs, func(x models.BatchSource) uuid.UUID { return x.ID }, false)
	return srcs, nil
}

func (b *batchSourceStore) Update(ctx context.Context, src *models.BatchSource) error {
	defer b.s.lock()()
	stored, ok := b.s.data.batchSources[src.ID]
	if !ok {
		return apperr.NotFound("batch source not found")
	}
	for other, existing := range b.s.data.batchSources {
		if other != src.ID && existing.BatchID == stored.BatchID &&
			existing.FarmerGroupID == src.FarmerGroupID && existing.LandID == src.LandID {
			return apperr.Conflict("batch source with this combination already exists", "batch_id")
		}
	}
	stored.FarmerGroupID = src.FarmerGroupID
	stored.LandID = src.LandID
	stored.VolumeKg = src.VolumeKg
	stored.LandSnapshot = src.LandSnapshot
	b.s.data.batchSources[src.ID] = stored
	*src = stored
	return nil
}

func (b *batchSourceStore) Delete(ctx context.Context, batchID, sourceID uuid.UUID) error {
	defer b.s.lock()()
	src, ok := b.s.data.batchSources[sourceID]
	if ok && src.BatchID == batchID {
		delete(b.s.data.batchSources, sourceID)
	}
	return nil
}

func (b *batchSourceStore) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	defer b.s.lock()()
	for id, src := range b.s.data.batchSources {
		if src.BatchID == batchID {
			delete(b.s.data.batchSources, id)
		}
	}
	return nil
}

func (b *batchSourceStore) SumVolumeByBatch(ctx context.Context, batchID uuid.UUID) (float64, error) {
	defer b.s.lock()()
	var total float64
	for _, src := range b.s.data.batchSources {
		if src.BatchID == batchID {
			total += src.VolumeKg
		}
	}
	return total, nil
}

type batchAttributeStore struct{ s *Store }

func (b *batchAttributeStore) Create(ctx context.Context, a *models.BatchAttribute) error {
	defer b.s.lock()()
	a.ID = uuid.New()
	b.s.data.batchAttributes[a.ID] = *a
	b.s.data.touch(a.ID)
	return nil
}

func (b *batchAttributeStore) GetByID(ctx context.Context, batchID, attributeID uuid.UUID) (*models.BatchAttribute, error) {
	defer b.s.lock()()
	a, ok := b.s.data.batchAttributes[attributeID]
	if !ok || a.BatchID != batchID {
		return nil, apperr.NotFound("batch attribute not found")
	}
	return &a, nil
}

func (b *batchAttributeStore) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.BatchAttribute, error) {
	defer b.s.lock()()
	var attrs []models.BatchAttribute
	for _, a := range b.s.data.batchAttributes {
		if a.BatchID == batchID {
			attrs = append(attrs, a)
		}
	}
	sortBySeq(b.s.data, attrs, func(x models.BatchAttribute) uuid.UUID { return x.ID }, true)
	return attrs, nil
}

func (b *batchAttributeStore) Update(ctx context.Context, a *models.BatchAttribute) error {
	defer b.s.lock()()
	if _, ok := b.s.data.batchAttributes[a.ID]; !ok {
		return apperr.NotFound("batch attribute not found")
	}
	b.s.data.batchAttributes[a.ID] = *a
	return nil
}

func (b *batchAttributeStore) Delete(ctx context.Context, batchID, attributeID uuid.UUID) error {
	defer b.s.lock()()
	a, ok := b.s.data.batchAttributes[attributeID]
	if ok && a.BatchID == batchID {
		delete(b.s.data.batchAttributes, attributeID)
	}
	return nil
}

func (b *batchAttributeStore) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	defer b.s.lock()()
	for id, a := range b.s.data.batchAttributes {
		if a.BatchID == batchID {
			delete(b.s.data.batchAttributes, id)
		}
	}
	return nil
}

type batchRelationStore struct{ s *Store }

func (b *batchRelationStore) Create(ctx context.Context, r *models.BatchRelation) error {
	defer b.s.lock()()
	for _, existing := range b.s.data.batchRelations {
		if existing.ParentBatchID == r.ParentBatchID && existing.ChildBatchID == r.ChildBatchID {
			return apperr.Conflict("batch relation already exists", "parent_batch_id")
		}
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	b.s.data.batchRelations[r.ID] = *r
	b.s.data.touch(r.ID)
	return nil
}

func (b *batchRelationStore) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.BatchRelation, error) {
	defer b.s.lock()()
	var rels []models.BatchRelation
	for _, r := range b.s.data.batchRelations {
		if r.ParentBatchID == batchID || r.ChildBatchID == batchID {
			rels = append(rels, r)
		}
	}
	sortBySeq(b.s.data, rels, func(x models.BatchRelation) uuid.UUID { return x.ID }, false)
	return rels, nil
}

func (b *batchRelationStore) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	defer b.s.lock()()
	for id, r := range b.s.data.batchRelations {
		if r.ParentBatchID == batchID || r.ChildBatchID == batchID {
			delete(b.s.data.batchRelations, id)
		}
	}
	return nil
}
