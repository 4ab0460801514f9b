// Package memory implements the storage port in process memory. It backs
// the service test suites and local development without a database, and
// honors the same error contract as the postgres implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/models"
	"github.com/hasiltani/agritrace/internal/store"
)

type fgLink struct {
	FarmerID uuid.UUID
	GroupID  uuid.UUID
}

// data holds every table. Mutators must replace slices and map entries
// wholesale (copy-on-write) so a transaction clone never shares mutable
// state with the committed snapshot.
type data struct {
	users           map[uuid.UUID]models.User
	companies       map[uuid.UUID]models.Company
	permissions     map[string]models.Permission
	roles           map[uuid.UUID]models.Role
	rolePerms       map[uuid.UUID][]string
	memberships     map[uuid.UUID]models.Membership
	commodities     map[uuid.UUID]models.Commodity
	batches         map[uuid.UUID]models.Batch
	batchSources    map[uuid.UUID]models.BatchSource
	batchAttributes map[uuid.UUID]models.BatchAttribute
	batchRelations  map[uuid.UUID]models.BatchRelation
	lands           map[uuid.UUID]models.Land
	farmers         map[uuid.UUID]models.Farmer
	farmerGroups    map[uuid.UUID]models.FarmerGroup
	fgLinks         []fgLink
	webhooks        map[uuid.UUID]models.Webhook
	audits          []models.AuditLog
	seq             map[uuid.UUID]int64
	nextSeq         int64
}

func newData() *data {
	return &data{
		users:           map[uuid.UUID]models.User{},
		companies:       map[uuid.UUID]models.Company{},
		permissions:     map[string]models.Permission{},
		roles:           map[uuid.UUID]models.Role{},
		rolePerms:       map[uuid.UUID][]string{},
		memberships:     map[uuid.UUID]models.Membership{},
		commodities:     map[uuid.UUID]models.Commodity{},
		batches:         map[uuid.UUID]models.Batch{},
		batchSources:    map[uuid.UUID]models.BatchSource{},
		batchAttributes: map[uuid.UUID]models.BatchAttribute{},
		batchRelations:  map[uuid.UUID]models.BatchRelation{},
		lands:           map[uuid.UUID]models.Land{},
		farmers:         map[uuid.UUID]models.Farmer{},
		farmerGroups:    map[uuid.UUID]models.FarmerGroup{},
		webhooks:        map[uuid.UUID]models.Webhook{},
		seq:             map[uuid.UUID]int64{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.companies {
		c.companies[k] = v
	}
	for k, v := range d.permissions {
		c.permissions[k] = v
	}
	for k, v := range d.roles {
		c.roles[k] = v
	}
	for k, v := range d.rolePerms {
		c.rolePerms[k] = v
	}
	for k, v := range d.memberships {
		c.memberships[k] = v
	}
	for k, v := range d.commodities {
		c.commodities[k] = v
	}
	for k, v := range d.batches {
		c.batches[k] = v
	}
	for k, v := range d.batchSources {
		c.batchSources[k] = v
	}
	for k, v := range d.batchAttributes {
		c.batchAttributes[k] = v
	}
	for k, v := range d.batchRelations {
		c.batchRelations[k] = v
	}
	for k, v := range d.lands {
		c.lands[k] = v
	}
	for k, v := range d.farmers {
		c.farmers[k] = v
	}
	for k, v := range d.farmerGroups {
		c.farmerGroups[k] = v
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	for k, v := range d.webhooks {
		c.webhooks[k] = v
	}
	c.fgLinks = append([]fgLink(nil), d.fgLinks...)
	c.audits = append([]models.AuditLog(nil), d.audits...)
	c.nextSeq = d.nextSeq
	return c
}

// touch records insertion order so listings stay deterministic even when
// two rows share a creation timestamp.
func (d *data) touch(id uuid.UUID) {
	d.nextSeq++
	d.seq[id] = d.nextSeq
}

type Store struct {
	mu   *sync.Mutex
	data *data
	inTx bool
}

func New() *Store {
	return &Store{mu: &sync.Mutex{}, data: newData()}
}

// SeedPermissions loads the permission catalog; tests and local dev call
// it in place of the SQL migration seed.
func (s *Store) SeedPermissions(perms []models.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range perms {
		s.data.permissions[p.ID] = p
	}
}

// SeedUser registers an identity; identities are issued by the external
// auth collaborator, so the store only ever reads them.
func (s *Store) SeedUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.data.users[u.ID] = u
	s.data.touch(u.ID)
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) InTx(ctx context.Context, fn func(store.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := s.data.clone()
	tx := &Store{mu: s.mu, data: clone, inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = clone
	return nil
}

func (s *Store) Users() store.UserStore                     { return &userStore{s} }
func (s *Store) Companies() store.CompanyStore              { return &companyStore{s} }
func (s *Store) Permissions() store.PermissionStore         { return &permissionStore{s} }
func (s *Store) Roles() store.RoleStore                     { return &roleStore{s} }
func (s *Store) Memberships() store.MembershipStore         { return &membershipStore{s} }
func (s *Store) Commodities() store.CommodityStore          { return &commodityStore{s} }
func (s *Store) Batches() store.BatchStore                  { return &batchStore{s} }
func (s *Store) BatchSources() store.BatchSourceStore       { return &batchSourceStore{s} }
func (s *Store) BatchAttributes() store.BatchAttributeStore { return &batchAttributeStore{s} }
func (s *Store) BatchRelations() store.BatchRelationStore   { return &batchRelationStore{s} }
func (s *Store) Lands() store.LandStore                     { return &landStore{s} }
func (s *Store) Farmers() store.FarmerStore                 { return &farmerStore{s} }
func (s *Store) FarmerGroups() store.FarmerGroupStore       { return &farmerGroupStore{s} }
func (s *Store) Webhooks() store.WebhookStore               { return &webhookStore{s} }
func (s *Store) Audit() store.AuditStore                    { return &auditStore{s} }

// sortBySeq orders ids by insertion sequence; asc matches the postgres
// "ORDER BY created_at ASC" listings, desc the newest-first ones.
func sortBySeq[T any](d *data, items []T, idOf func(T) uuid.UUID, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := d.seq[idOf(items[i])], d.seq[idOf(items[j])]
		if desc {
			return a > b
		}
		return a < b
	})
}
