package models

import (
	"time"

	"github.com/google/uuid"
)

type Land struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	CompanyID           uuid.UUID `json:"company_id" db:"company_id"`
	Name                string    `json:"name" db:"name"`
	AreaHectares        float64   `json:"area_hectares" db:"area_hectares"`
	Latitude            float64   `json:"latitude" db:"latitude"`
	Longitude           float64   `json:"longitude" db:"longitude"`
	Location            string    `json:"location" db:"location"`
	GeoPolygon          string    `json:"geo_polygon" db:"geo_polygon"`
	IsDeforestationFree bool      `json:"is_deforestation_free" db:"is_deforestation_free"`
	RecordedAt          time.Time `json:"recorded_at" db:"recorded_at"`
}

// Farmer is an individual worker. NationalID is globally unique.
type Farmer struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CompanyID   uuid.UUID `json:"company_id" db:"company_id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	NationalID  string    `json:"national_id" db:"national_id"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Address     string    `json:"address" db:"address"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Groups []FarmerGroup `json:"farmer_groups,omitempty" db:"-"`
}

type FarmerGroup struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Farmers []Farmer `json:"farmers,omitempty" db:"-"`
}
