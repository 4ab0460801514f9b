package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Commodity is part of the global catalog (no company scope); batches
// reference it. It cannot be deleted while batches reference it.
type Commodity struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Batch is a tenant-scoped production lot. TotalKg is derived from the
// batch's sources and is never client-writable.
type Batch struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CompanyID   uuid.UUID `json:"company_id" db:"company_id"`
	CommodityID uuid.UUID `json:"commodity_id" db:"commodity_id"`
	LotCode     string    `json:"lot_code" db:"lot_code"`
	HarvestDate time.Time `json:"harvest_date" db:"harvest_date"`
	TotalKg     float64   `json:"total_kg" db:"total_kg"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// BatchSource records one contribution to a batch. The farmer group and
// land must belong to the same company as the batch. LandSnapshot is an
// opaque payload frozen at record time.
type BatchSource struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	BatchID       uuid.UUID       `json:"batch_id" db:"batch_id"`
	FarmerGroupID uuid.UUID       `json:"farmer_group_id" db:"farmer_group_id"`
	LandID        uuid.UUID       `json:"land_id" db:"land_id"`
	VolumeKg      float64         `json:"volume_kg" db:"volume_kg"`
	LandSnapshot  json.RawMessage `json:"land_snapshot" db:"land_snapshot"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

type BatchAttribute struct {
	ID         uuid.UUID `json:"id" db:"id"`
	BatchID    uuid.UUID `json:"batch_id" db:"batch_id"`
	Key        string    `json:"key" db:"key"`
	Value      string    `json:"value" db:"value"`
	Unit       *string   `json:"unit,omitempty" db:"unit"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// BatchRelation is a lineage edge between two batches of the same company.
// Edges are removed when either endpoint batch is deleted.
type BatchRelation struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ParentBatchID uuid.UUID `json:"parent_batch_id" db:"parent_batch_id"`
	ChildBatchID  uuid.UUID `json:"child_batch_id" db:"child_batch_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
