package land

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/models"
	"github.com/hasiltani/agritrace/internal/store"
)

// Service manages company land parcels.
type Service struct {
	store store.Store
	authz *auth.Engine
	audit *audit.Service
}

func NewService(st store.Store, authz *auth.Engine, aud *audit.Service) *Service {
	return &Service{store: st, authz: authz, audit: aud}
}

// Input carries a land create or full update.
type Input struct {
	Name                string
	AreaHectares        float64
	Latitude            float64
	Longitude           float64
	Location            string
	GeoPolygon          string
	IsDeforestationFree bool
}

func (s *Service) List(ctx context.Context, userID, companyID uuid.UUID) ([]models.Land, error) {
	if err := s.access(ctx, userID, companyID, auth.PermLandView); err != nil {
		return nil, err
	}
	lands, err := s.store.Lands().ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list lands: %w", err)
	}
	return lands, nil
}

func (s *Service) Get(ctx context.Context, userID, companyID, landID uuid.UUID) (*models.Land, error) {
	if err := s.access(ctx, userID, companyID, auth.PermLandView); err != nil {
		return nil, err
	}
	return s.store.Lands().GetByID(ctx, companyID, landID)
}

func (s *Service) Create(ctx context.Context, userID, companyID uuid.UUID, in Input) (*models.Land, error) {
	if err := s.access(ctx, userID, companyID, auth.PermLandCreate); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	land := &models.Land{
		CompanyID:           companyID,
		Name:                in.Name,
		AreaHectares:        in.AreaHectares,
		Latitude:            in.Latitude,
		Longitude:           in.Longitude,
		Location:            in.Location,
		GeoPolygon:          in.GeoPolygon,
		IsDeforestationFree: in.IsDeforestationFree,
	}
	if err := s.store.Lands().Create(ctx, land); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "land.created",
		ResourceType: "land",
		ResourceID:   &land.ID,
		Details:      map[string]interface{}{"name": land.Name},
	})
	return land, nil
}

func (s *Service) Update(ctx context.Context, userID, companyID, landID uuid.UUID, in Input) (*models.Land, error) {
	if err := s.access(ctx, userID, companyID, auth.PermLandUpdate); err != nil {
		return nil, err
	}

	land, err := s.store.Lands().GetByID(ctx, companyID, landID)
	if err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	land.Name = in.Name
	land.AreaHectares = in.AreaHectares
	land.Latitude = in.Latitude
	land.Longitude = in.Longitude
	land.Location = in.Location
	land.GeoPolygon = in.GeoPolygon
	land.IsDeforestationFree = in.IsDeforestationFree
	if err := s.store.Lands().Update(ctx, land); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "land.updated",
		ResourceType: "land",
		ResourceID:   &landID,
		Details:      map[string]interface{}{"name": land.Name},
	})
	return land, nil
}

func (s *Service) Delete(ctx context.Context, userID, companyID, landID uuid.UUID) error {
	if err := s.access(ctx, userID, companyID, auth.PermLandDelete); err != nil {
		return err
	}
	if _, err := s.store.Lands().GetByID(ctx, companyID, landID); err != nil {
		return err
	}

	if err := s.store.Lands().Delete(ctx, companyID, landID); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.LogEntry{
		CompanyID:    companyID,
		Action:       "land.deleted",
		ResourceType: "land",
		ResourceID:   &landID,
	})
	return nil
}

func validate(in *Input) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperr.Validation("name is required", "name")
	}
	if in.AreaHectares <= 0 {
		return apperr.Validation("area in hectares must be a positive number", "area_hectares")
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return apperr.Validation("latitude must be between -90 and 90", "latitude")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return apperr.Validation("longitude must be between -180 and 180", "longitude")
	}
	in.Location = strings.TrimSpace(in.Location)
	if in.Location == "" {
		return apperr.Validation("location is required", "location")
	}
	in.GeoPolygon = strings.TrimSpace(in.GeoPolygon)
	if in.GeoPolygon == "" {
		return apperr.Validation("geo polygon is required", "geo_polygon")
	}
	return nil
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
