package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/models"
)

type landStore struct{ s *Store }

func (l *landStore) Create(ctx context.Context, land *models.Land) error {
	defer l.s.lock()()
	land.ID = uuid.New()
	land.RecordedAt = time.Now()
	l.s.data.lands[land.ID] = *land
	l.s.data.touch(land.ID)
	return nil
}

func (l *landStore) GetByID(ctx context.Context, companyID, landID uuid.UUID) (*models.Land, error) {
	defer l.s.lock()()
	land, ok := l.s.data.lands[landID]
	if !ok || land.CompanyID != companyID {
		return nil, apperr.NotFound("land not found")
	}
	return &land, nil
}

func (l *landStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Land, error) {
	defer l.s.lock()()
	var lands []models.Land
	for _, land := range l.s.data.lands {
		if land.CompanyID == companyID {
			lands = append(lands, land)
		}
	}
	sortBySeq(l.s.data, lands, func(x models.Land) uuid.UUID { return x.ID }, true)
	return lands, nil
}

func (l *landStore) Update(ctx context.Context, land *models.Land) error {
	defer l.s.lock()()
	stored, ok := l.s.data.lands[land.ID]
	if !ok {
		return apperr.NotFound("land not found")
	}
	land.CompanyID = stored.CompanyID
	land.RecordedAt = stored.RecordedAt
	l.s.data.lands[land.ID] = *land
	return nil
}

func (l *landStore) Delete(ctx context.Context, companyID, landID uuid.UUID) error {
	defer l.s.lock()()
	land, ok := l.s.data.lands[landID]
	if ok && land.CompanyID == companyID {
		delete(l.s.data.lands, landID)
	}
	return nil
}

func (l *landStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	defer l.s.lock()()
	for id, land := range l.s.data.lands {
		if land.CompanyID == companyID {
			delete(l.s.data.lands, id)
		}
	}
	return nil
}

type farmerStore struct{ s *Store }

func (f *farmerStore) Create(ctx context.Context, farmer *models.Farmer) error {
	defer f.s.lock()()
	for _, existing := range f.s.data.farmers {
		if existing.NationalID == farmer.NationalID {
			return apperr.Conflict("national id already registered", "national_id")
		}
	}
	farmer.ID = uuid.New()
	farmer.CreatedAt = time.Now()
	stored := *farmer
	stored.Groups = nil
	f.s.data.farmers[farmer.ID] = stored
	f.s.data.touch(farmer.ID)
	return nil
}

func (f *farmerStore) GetByID(ctx context.Context, companyID, farmerID uuid.UUID) (*models.Farmer, error) {
	defer f.s.lock()()
	farmer, ok := f.s.data.farmers[farmerID]
	if !ok || farmer.CompanyID != companyID {
		return nil, apperr.NotFound("farmer not found")
	}
	return &farmer, nil
}

func (f *farmerStore) GetByIDs(ctx context.Context, companyID uuid.UUID, farmerIDs []uuid.UUID) ([]models.Farmer, error) {
	defer f.s.lock()()
	var fs []models.Farmer
	for _, id := range farmerIDs {
		farmer, ok := f.s.data.farmers[id]
		if ok && farmer.CompanyID == companyID {
			fs = append(fs, farmer)
		}
	}
	return fs, nil
}

func (f *farmerStore) GetByNationalID(ctx context.Context, nationalID string) (*models.Farmer, error) {
	defer f.s.lock()()
	for _, farmer := range f.s.data.farmers {
		if farmer.NationalID == nationalID {
			return &farmer, nil
		}
	}
	return nil, apperr.NotFound("farmer not found")
}

func (f *farmerStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Farmer, error) {
	defer f.s.lock()()
	var fs []models.Farmer
	for _, farmer := range f.s.data.farmers {
		if farmer.CompanyID == companyID {
			fs = append(fs, farmer)
		}
	}
	sortBySeq(f.s.data, fs, func(x models.Farmer) uuid.UUID { return x.ID }, true)
	return fs, nil
}

func (f *farmerStore) Update(ctx context.Context, farmer *models.Farmer) error {
	defer f.s.lock()()
	stored, ok := f.s.data.farmers[farmer.ID]
	if !ok {
		return apperr.NotFound("farmer not found")
	}
	for other, existing := range f.s.data.farmers {
		if other != farmer.ID && existing.NationalID == farmer.NationalID {
			return apperr.Conflict("national id already registered", "national_id")
		}
	}
	farmer.CompanyID = stored.CompanyID
	farmer.CreatedAt = stored.CreatedAt
	next := *farmer
	next.Groups = nil
	f.s.data.farmers[farmer.ID] = next
	return nil
}

func (f *farmerStore) Delete(ctx context.Context, companyID, farmerID uuid.UUID) error {
	defer f.s.lock()()
	farmer, ok := f.s.data.farmers[farmerID]
	if ok && farmer.CompanyID == companyID {
		delete(f.s.data.farmers, farmerID)
		f.s.data.fgLinks = withoutFarmerLinks(f.s.data.fgLinks, farmerID)
	}
	return nil
}

func (f *farmerStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	defer f.s.lock()()
	for id, farmer := range f.s.data.farmers {
		if farmer.CompanyID == companyID {
			delete(f.s.data.farmers, id)
			f.s.data.fgLinks = withoutFarmerLinks(f.s.data.fgLinks, id)
		}
	}
	return nil
}

func (f *farmerStore) SetGroups(ctx context.Context, farmerID uuid.UUID, groupIDs []uuid.UUID) error {
	defer f.s.lock()()
	links := withoutFarmerLinks(f.s.data.fgLinks, farmerID)
	for _, gid := range groupIDs {
		links = append(links, fgLink{FarmerID: farmerID, GroupID: gid})
	}
	f.s.data.fgLinks = links
	return nil
}

func (f *farmerStore) ListGroups(ctx context.Context, farmerID uuid.UUID) ([]models.FarmerGroup, error) {
	defer f.s.lock()()
	var groups []models.FarmerGroup
	for _, link := range f.s.data.fgLinks {
		if link.FarmerID != farmerID {
			continue
		}
		if g, ok := f.s.data.farmerGroups[link.GroupID]; ok {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

type farmerGroupStore struct{ s *Store }

func (g *farmerGroupStore) Create(ctx context.Context, group *models.FarmerGroup) error {
	defer g.s.lock()()
	group.ID = uuid.New()
	group.CreatedAt = time.Now()
	stored := *group
	stored.Farmers = nil
	g.s.data.farmerGroups[group.ID] = stored
	g.s.data.touch(group.ID)
	return nil
}

func (g *farmerGroupStore) GetByID(ctx context.Context, companyID, groupID uuid.UUID) (*models.FarmerGroup, error) {
	defer g.s.lock()()
	group, ok := g.s.data.farmerGroups[groupID]
	if !ok || group.CompanyID != companyID {
		return nil, apperr.NotFound("farmer group not found")
	}
	return &group, nil
}

func (g *farmerGroupStore) GetByIDs(ctx context.Context, companyID uuid.UUID, groupIDs []uuid.UUID) ([]models.FarmerGroup, error) {
	defer g.s.lock()()
	var gs []models.FarmerGroup
	for _, id := range groupIDs {
		group, ok := g.s.data.farmerGroups[id]
		if ok && group.CompanyID == companyID {
			gs = append(gs, group)
		}
	}
	return gs, nil
}

func (g *farmerGroupStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.FarmerGroup, error) {
	defer g.s.lock()()
	var gs []models.FarmerGroup
	for _, group := range g.s.data.farmerGroups {
		if group.CompanyID == companyID {
			gs = append(gs, group)
		}
	}
	sortBySeq(g.s.data, gs, func(x models.FarmerGroup) uuid.UUID { return x.ID }, true)
	return gs, nil
}

func (g *farmerGroupStore) Update(ctx context.Context, group *models.FarmerGroup) error {
	defer g.s.lock()()
	stored, ok := g.s.data.farmerGroups[group.ID]
	if !ok {
		return apperr.NotFound("farmer group not found")
	}
	group.CompanyID = stored.CompanyID
	group.CreatedAt = stored.CreatedAt
	next := *group
	next.Farmers = nil
	g.s.data.farmerGroups[group.ID] = next
	return nil
}

func (g *farmerGroupStore) Delete(ctx context.Context, companyID, groupID uuid.UUID) error {
	defer g.s.lock()()
	group, ok := g.s.data.farmerGroups[groupID]
	if ok && group.CompanyID == companyID {
		delete(g.s.data.farmerGroups, groupID)
		g.s.data.fgLinks = withoutGroupLinks(g.s.data.fgLinks, groupID)
	}
	return nil
}

func (g *farmerGroupStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	defer g.s.lock()()
	for id, group := range g.s.data.farmerGroups {
		if group.CompanyID == companyID {
			delete(g.s.data.farmerGroups, id)
			g.s.data.fgLinks = withoutGroupLinks(g.s.data.fgLinks, id)
		}
	}
	return nil
}

func (g *farmerGroupStore) SetFarmers(ctx context.Context, groupID uuid.UUID, farmerIDs []uuid.UUID) error {
	defer g.s.lock()()
	links := withoutGroupLinks(g.s.data.fgLinks, groupID)
	for _, fid := range farmerIDs {
		links = append(links, fgLink{FarmerID: fid, GroupID: groupID})
	}
	g.s.data.fgLinks = links
	return nil
}

func (g *farmerGroupStore) ListFarmers(ctx context.Context, groupID uuid.UUID) ([]models.Farmer, error) {
	defer g.s.lock()()
	var fs []models.Farmer
	for _, link := range g.s.data.fgLinks {
		if link.GroupID != groupID {
			continue
		}
		if f, ok := g.s.data.farmers[link.FarmerID]; ok {
			fs = append(fs, f)
		}
	}
	return fs, nil
}

func withoutFarmerLinks(links []fgLink, farmerID uuid.UUID) []fgLink {
	out := make([]fgLink, 0, len(links))
	for _, l := range links {
		if l.FarmerID != farmerID {
			out = append(out, l)
		}
	}
	return out
}

func withoutGroupLinks(links []fgLink, groupID uuid.UUID) []fgLink {
	out := make([]fgLink, 0, len(links))
	for _, l := range links {
		if l.GroupID != groupID {
			out = append(out, l)
		}
	}
	return out
}
