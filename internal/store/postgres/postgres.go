// Package postgres implements the storage port on pgx. Unique-violation
// errors (23505) are translated into apperr.Conflict and pgx.ErrNoRows
// into apperr.NotFound at this boundary.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/store"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

func (s *Store) Users() store.UserStore                     { return &userStore{s.db} }
func (s *Store) Companies() store.CompanyStore              { return &companyStore{s.db} }
func (s *Store) Permissions() store.PermissionStore         { return &permissionStore{s.db} }
func (s *Store) Roles() store.RoleStore                     { return &roleStore{s.db} }
func (s *Store) Memberships() store.MembershipStore         { return &membershipStore{s.db} }
func (s *Store) Commodities() store.CommodityStore          { return &commodityStore{s.db} }
func (s *Store) Batches() store.BatchStore                  { return &batchStore{s.db} }
func (s *Store) BatchSources() store.BatchSourceStore       { return &batchSourceStore{s.db} }
func (s *Store) BatchAttributes() store.BatchAttributeStore { return &batchAttributeStore{s.db} }
func (s *Store) BatchRelations() store.BatchRelationStore   { return &batchRelationStore{s.db} }
func (s *Store) Lands() store.LandStore                     { return &landStore{s.db} }
func (s *Store) Farmers() store.FarmerStore                 { return &farmerStore{s.db} }
func (s *Store) FarmerGroups() store.FarmerGroupStore       { return &farmerGroupStore{s.db} }
func (s *Store) Webhooks() store.WebhookStore               { return &webhookStore{s.db} }
func (s *Store) Audit() store.AuditStore                    { return &auditStore{s.db} }

func (s *Store) InTx(ctx context.Context, fn func(store.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

// translate maps engine errors onto the shared taxonomy. conflictMsg and
// field describe the uniqueness constraint the statement can trip.
func translate(err error, op, conflictMsg, field string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict(conflictMsg, field)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(op + ": not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func notFound(err error, op, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}
