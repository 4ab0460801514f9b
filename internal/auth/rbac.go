package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/cache"
	"github.com/hasiltani/agritrace/internal/store"
)

const grantTTL = 5 * time.Minute

// grant is the resolved authorization state of one user in one company:
// the union of permissions across every role the user holds there, plus
// the owner flag that short-circuits all checks.
type grant struct {
	Member bool     `json:"member"`
	Owner  bool     `json:"owner"`
	Perms  []string `json:"perms"`
}

func (g grant) allows(perm Permission) bool {
	if g.Owner {
		return true
	}
	for _, p := range g.Perms {
		if Permission(p) == perm {
			return true
		}
	}
	return false
}

// Engine answers permission checks against the membership/role tables.
// Resolved grants are cached in redis under a per-company version; bumping
// the version on any role or membership mutation invalidates every cached
// grant for that company at once.
type Engine struct {
	store store.Store
	cache *cache.Cache
}

// NewEngine builds an authorization engine. cache may be nil, in which
// case every check resolves against storage.
func NewEngine(st store.Store, c *cache.Cache) *Engine {
	return &Engine{store: st, cache: c}
}

// Authorize returns nil when the user may perform perm in the company.
// Non-members and members without the permission get apperr.Unauthorized.
func (e *Engine) Authorize(ctx context.Context, userID, companyID uuid.UUID, perm Permission) error {
	g, err := e.resolve(ctx, userID, companyID)
	if err != nil {
		return err
	}
	if !g.Member {
		return apperr.Unauthorized("not a member of this company")
	}
	if !g.allows(perm) {
		return apperr.Unauthorized("insufficient permissions")
	}
	return nil
}

func (e *Engine) HasPermission(ctx context.Context, userID, companyID uuid.UUID, perm Permission) (bool, error) {
	g, err := e.resolve(ctx, userID, companyID)
	if err != nil {
		return false, err
	}
	return g.Member && g.allows(perm), nil
}

// IsOwner reports whether any role the user holds in the company is the
// owner role.
func (e *Engine) IsOwner(ctx context.Context, userID, companyID uuid.UUID) (bool, error) {
	g, err := e.resolve(ctx, userID, companyID)
	if err != nil {
		return false, err
	}
	return g.Owner, nil
}

// IsMember reports whether the user holds at least one membership in the
// company, regardless of permissions.
func (e *Engine) IsMember(ctx context.Context, userID, companyID uuid.UUID) (bool, error) {
	g, err := e.resolve(ctx, userID, companyID)
	if err != nil {
		return false, err
	}
	return g.Member, nil
}

// Invalidate bumps the company's grant version so stale cached grants are
// never served after a role or membership mutation.
func (e *Engine) Invalidate(ctx context.Context, companyID uuid.UUID) {
	if e.cache == nil {
		return
	}
	if _, err := e.cache.Increment(ctx, versionKey(companyID)); err != nil {
		slog.Warn("rbac cache invalidation failed", "company_id", companyID, "error", err)
	}
}

func (e *Engine) resolve(ctx context.Context, userID, companyID uuid.UUID) (grant, error) {
	key := ""
	if e.cache != nil {
		key = grantKey(companyID, userID, e.version(ctx, companyID))
		var g grant
		if err := e.cache.Get(ctx, key, &g); err == nil {
			return g, nil
		}
	}

	g, err := e.load(ctx, userID, companyID)
	if err != nil {
		return grant{}, err
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, g, grantTTL); err != nil {
			slog.Warn("rbac cache set failed", "company_id", companyID, "error", err)
		}
	}
	return g, nil
}

func (e *Engine) load(ctx context.Context, userID, companyID uuid.UUID) (grant, error) {
	memberships, err := e.store.Memberships().ListByUserCompany(ctx, userID, companyID)
	if err != nil {
		return grant{}, fmt.Errorf("list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return grant{}, nil
	}

	roleIDs := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		roleIDs = append(roleIDs, m.RoleID)
	}
	roles, err := e.store.Roles().GetByIDs(ctx, companyID, roleIDs)
	if err != nil {
		return grant{}, fmt.Errorf("load roles: %w", err)
	}

	g := grant{Member: true}
	seen := map[string]bool{}
	for _, r := range roles {
		if r.IsOwner() {
			g.Owner = true
			continue
		}
		perms, err := e.store.Roles().ListPermissions(ctx, r.ID)
		if err != nil {
			return grant{}, fmt.Errorf("list role permissions: %w", err)
		}
		for _, p := range perms {
			if !seen[p.Name] {
				seen[p.Name] = true
				g.Perms = append(g.Perms, p.Name)
			}
		}
	}
	return g, nil
}

func (e *Engine) version(ctx context.Context, companyID uuid.UUID) int64 {
	var v int64
	if err := e.cache.Get(ctx, versionKey(companyID), &v); err != nil {
		return 0
	}
	return v
}

func versionKey(companyID uuid.UUID) string {
	return "rbac:ver:" + companyID.String()
}

func grantKey(companyID, userID uuid.UUID, version int64) string {
	return fmt.Sprintf("rbac:grant:%s:%d:%s", companyID, version, userID)
}
