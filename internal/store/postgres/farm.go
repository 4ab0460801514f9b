package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/hasiltani/agritrace/internal/models"
)

type landStore struct{ db querier }

const landColumns = `id, company_id, name, area_hectares, latitude, longitude, location,
	 geo_polygon, is_deforestation_free, recorded_at`

func scanLand(row interface{ Scan(...any) error }, l *models.Land) error {
	return row.Scan(&l.ID, &l.CompanyID, &l.Name, &l.AreaHectares, &l.Latitude, &l.Longitude,
		&l.Location, &l.GeoPolygon, &l.IsDeforestationFree, &l.RecordedAt)
}

func (s *landStore) Create(ctx context.Context, l *models.Land) error {
	err := scanLand(s.db.QueryRow(ctx,
		`INSERT INTO lands (company_id, name, area_hectares, latitude, longitude, location,
		    geo_polygon, is_deforestation_free)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+landColumns,
		l.CompanyID, l.Name, l.AreaHectares, l.Latitude, l.Longitude, l.Location,
		l.GeoPolygon, l.IsDeforestationFree,
	), l)
	if err != nil {
		return fmt.Errorf("create land: %w", err)
	}
	return nil
}

func (s *landStore) GetByID(ctx context.Context, companyID, landID uuid.UUID) (*models.Land, error) {
	var l models.Land
	err := scanLand(s.db.QueryRow(ctx,
		"SELECT "+landColumns+" FROM lands WHERE id = $1 AND company_id = $2",
		landID, companyID,
	), &l)
	if err != nil {
		return nil, notFound(err, "get land", "land not found")
	}
	return &l, nil
}

func (s *landStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Land, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+landColumns+" FROM lands WHERE company_id = $1 ORDER BY recorded_at DESC",
		companyID)
	if err != nil {
		return nil, fmt.Errorf("list lands: %w", err)
	}
	defer rows.Close()

	var lands []models.Land
	for rows.Next() {
		var l models.Land
		if err := scanLand(rows, &l); err != nil {
			return nil, fmt.Errorf("scan land: %w", err)
		}
		lands = append(lands, l)
	}
	return lands, rows.Err()
}

func (s *landStore) Update(ctx context.Context, l *models.Land) error {
	_, err := s.db.Exec(ctx,
		`UPDATE lands SET name = $2, area_hectares = $3, latitude = $4, longitude = $5,
		    location = $6, geo_polygon = $7, is_deforestation_free = $8
		 WHERE id = $1`,
		l.ID, l.Name, l.AreaHectares, l.Latitude, l.Longitude, l.Location,
		l.GeoPolygon, l.IsDeforestationFree)
	if err != nil {
		return fmt.Errorf("update land: %w", err)
	}
	return nil
}

func (s *landStore) Delete(ctx context.Context, companyID, landID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM lands WHERE id = $1 AND company_id = $2", landID, companyID)
	if err != nil {
		return fmt.Errorf("delete land: %w", err)
	}
	return nil
}

func (s *landStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM lands WHERE company_id = $1", companyID)
	if err != nil {
		return fmt.Errorf("delete company lands: %w", err)
	}
	return nil
}

type farmerStore struct{ db querier }

const farmerColumns = "id, company_id, first_name, last_name, national_id, phone_number, address, created_at"

func scanFarmer(row interface{ Scan(...any) error }, f *models.Farmer) error {
	return row.Scan(&f.ID, &f.CompanyID, &f.FirstName, &f.LastName, &f.NationalID,
		&f.PhoneNumber, &f.Address, &f.CreatedAt)
}

func (s *farmerStore) Create(ctx context.Context, f *models.Farmer) error {
	err := scanFarmer(s.db.QueryRow(ctx,
		`INSERT INTO farmers (company_id, first_name, last_name, national_id, phone_number, address)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+farmerColumns,
		f.CompanyID, f.FirstName, f.LastName, f.NationalID, f.PhoneNumber, f.Address,
	), f)
	return translate(err, "create farmer", "farmer with this national ID already exists", "national_id")
}

func (s *farmerStore) GetByID(ctx context.Context, companyID, farmerID uuid.UUID) (*models.Farmer, error) {
	var f models.Farmer
	err := scanFarmer(s.db.QueryRow(ctx,
		"SELECT "+farmerColumns+" FROM farmers WHERE id = $1 AND company_id = $2",
		farmerID, companyID,
	), &f)
	if err != nil {
		return nil, notFound(err, "get farmer", "farmer not found")
	}
	return &f, nil
}

func (s *farmerStore) GetByIDs(ctx context.Context, companyID uuid.UUID, farmerIDs []uuid.UUID) ([]models.Farmer, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+farmerColumns+" FROM farmers WHERE company_id = $1 AND id = ANY($2)",
		companyID, farmerIDs)
	if err != nil {
		return nil, fmt.Errorf("get farmers: %w", err)
	}
	defer rows.Close()
	return collectFarmers(rows)
}

func (s *farmerStore) GetByNationalID(ctx context.Context, nationalID string) (*models.Farmer, error) {
	var f models.Farmer
	err := scanFarmer(s.db.QueryRow(ctx,
		"SELECT "+farmerColumns+" FROM farmers WHERE national_id = $1", nationalID,
	), &f)
	if err != nil {
		return nil, notFound(err, "get farmer by national ID", "farmer not found")
	}
	return &f, nil
}

func (s *farmerStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Farmer, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+farmerColumns+" FROM farmers WHERE company_id = $1 ORDER BY created_at DESC",
		companyID)
	if err != nil {
		return nil, fmt.Errorf("list farmers: %w", err)
	}
	defer rows.Close()
	return collectFarmers(rows)
}

func collectFarmers(rows pgx.Rows) ([]models.Farmer, error) {
	var fs []models.Farmer
	for rows.Next() {
		var f models.Farmer
		if err := scanFarmer(rows, &f); err != nil {
			return nil, fmt.Errorf("scan farmer: %w", err)
		}
		fs = append(fs, f)
	}
	return fs, rows.Err()
}

func (s *farmerStore) Update(ctx context.Context, f *models.Farmer) error {
	_, err := s.db.Exec(ctx,
		`UPDATE farmers SET first_name = $2, last_name = $3, national_id = $4,
		    phone_number = $5, address = $6
		 WHERE id = $1`,
		f.ID, f.FirstName, f.LastName, f.NationalID, f.PhoneNumber, f.Address)
	return translate(err, "update farmer", "farmer with this national ID already exists", "national_id")
}

func (s *farmerStore) Delete(ctx context.Context, companyID, farmerID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM farmers WHERE id = $1 AND company_id = $2", farmerID, companyID)
	if err != nil {
		return fmt.Errorf("delete farmer: %w", err)
	}
	return nil
}

func (s *farmerStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM farmers WHERE company_id = $1", companyID)
	if err != nil {
		return fmt.Errorf("delete company farmers: %w", err)
	}
	return nil
}

func (s *farmerStore) SetGroups(ctx context.Context, farmerID uuid.UUID, groupIDs []uuid.UUID) error {
	if _, err := s.db.Exec(ctx,
		"DELETE FROM farmer_group_farmers WHERE farmer_id = $1", farmerID); err != nil {
		return fmt.Errorf("clear farmer groups: %w", err)
	}
	for _, gid := range groupIDs {
		if _, err := s.db.Exec(ctx,
			"INSERT INTO farmer_group_farmers (farmer_id, farmer_group_id) VALUES ($1, $2)",
			farmerID, gid); err != nil {
			return fmt.Errorf("link farmer group: %w", err)
		}
	}
	return nil
}

func (s *farmerStore) ListGroups(ctx context.Context, farmerID uuid.UUID) ([]models.FarmerGroup, error) {
	rows, err := s.db.Query(ctx,
		`SELECT g.id, g.company_id, g.name, g.created_at
		 FROM farmer_group_farmers fgf
		 JOIN farmer_groups g ON g.id = fgf.farmer_group_id
		 WHERE fgf.farmer_id = $1
		 ORDER BY g.name ASC`,
		farmerID)
	if err != nil {
		return nil, fmt.Errorf("list farmer groups: %w", err)
	}
	defer rows.Close()
	return collectFarmerGroups(rows)
}

type farmerGroupStore struct{ db querier }

func (s *farmerGroupStore) Create(ctx context.Context, g *models.FarmerGroup) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO farmer_groups (company_id, name) VALUES ($1, $2)
		 RETURNING id, created_at`,
		g.CompanyID, g.Name,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return fmt.Errorf("create farmer group: %w", err)
	}
	return nil
}

func (s *farmerGroupStore) GetByID(ctx context.Context, companyID, groupID uuid.UUID) (*models.FarmerGroup, error) {
	var g models.FarmerGroup
	err := s.db.QueryRow(ctx,
		"SELECT id, company_id, name, created_at FROM farmer_groups WHERE id = $1 AND company_id = $2",
		groupID, companyID,
	).Scan(&g.ID, &g.CompanyID, &g.Name, &g.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get farmer group", "farmer group not found")
	}
	return &g, nil
}

func (s *farmerGroupStore) GetByIDs(ctx context.Context, companyID uuid.UUID, groupIDs []uuid.UUID) ([]models.FarmerGroup, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, company_id, name, created_at FROM farmer_groups WHERE company_id = $1 AND id = ANY($2)",
		companyID, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("get farmer groups: %w", err)
	}
	defer rows.Close()
	return collectFarmerGroups(rows)
}

func (s *farmerGroupStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.FarmerGroup, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, company_id, name, created_at FROM farmer_groups WHERE company_id = $1 ORDER BY created_at DESC",
		companyID)
	if err != nil {
		return nil, fmt.Errorf("list farmer groups: %w", err)
	}
	defer rows.Close()
	return collectFarmerGroups(rows)
}

func collectFarmerGroups(rows pgx.Rows) ([]models.FarmerGroup, error) {
	var gs []models.FarmerGroup
	for rows.Next() {
		var g models.FarmerGroup
		if err := rows.Scan(&g.ID, &g.CompanyID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan farmer group: %w", err)
		}
		gs = append(gs, g)
	}
	return gs, rows.Err()
}

func (s *farmerGroupStore) Update(ctx context.Context, g *models.FarmerGroup) error {
	_, err := s.db.Exec(ctx,
		"UPDATE farmer_groups SET name = $2 WHERE id = $1", g.ID, g.Name)
	if err != nil {
		return fmt.Errorf("update farmer group: %w", err)
	}
	return nil
}

func (s *farmerGroupStore) Delete(ctx context.Context, companyID, groupID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM farmer_groups WHERE id = $1 AND company_id = $2", groupID, companyID)
	if err != nil {
		return fmt.Errorf("delete farmer group: %w", err)
	}
	return nil
}

func (s *farmerGroupStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM farmer_groups WHERE company_id = $1", companyID)
	if err != nil {
		return fmt.Errorf("delete company farmer groups: %w", err)
	}
	return nil
}

func (s *farmerGroupStore) SetFarmers(ctx context.Context, groupID uuid.UUID, farmerIDs []uuid.UUID) error {
	if _, err := s.db.Exec(ctx,
		"DELETE FROM farmer_group_farmers WHERE farmer_group_id = $1", groupID); err != nil {
		return fmt.Errorf("clear group farmers: %w", err)
	}
	for _, fid := range farmerIDs {
		if _, err := s.db.Exec(ctx,
			"INSERT INTO farmer_group_farmers (farmer_id, farmer_group_id) VALUES ($1, $2)",
			fid, groupID); err != nil {
			return fmt.Errorf("link group farmer: %w", err)
		}
	}
	return nil
}

func (s *farmerGroupStore) ListFarmers(ctx context.Context, groupID uuid.UUID) ([]models.Farmer, error) {
	rows, err := s.db.Query(ctx,
		`SELECT f.id, f.company_id, f.first_name, f.last_name, f.national_id, f.phone_number, f.address, f.created_at
		 FROM farmer_group_farmers fgf
		 JOIN farmers f ON f.id = fgf.farmer_id
		 WHERE fgf.farmer_group_id = $1
		 ORDER BY f.last_name ASC`,
		groupID)
	if err != nil {
		return nil, fmt.Errorf("list group farmers: %w", err)
	}
	defer rows.Close()
	return collectFarmers(rows)
}
