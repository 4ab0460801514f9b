package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hasiltani/agritrace/internal/api/handlers"
	"github.com/hasiltani/agritrace/internal/api/middleware"
	"github.com/hasiltani/agritrace/internal/audit"
	"github.com/hasiltani/agritrace/internal/auth"
	"github.com/hasiltani/agritrace/internal/batch"
	"github.com/hasiltani/agritrace/internal/billing"
	"github.com/hasiltani/agritrace/internal/cache"
	"github.com/hasiltani/agritrace/internal/commodity"
	"github.com/hasiltani/agritrace/internal/company"
	"github.com/hasiltani/agritrace/internal/config"
	"github.com/hasiltani/agritrace/internal/farmer"
	"github.com/hasiltani/agritrace/internal/land"
	"github.com/hasiltani/agritrace/internal/queue"
	"github.com/hasiltani/agritrace/internal/store"
	"github.com/hasiltani/agritrace/internal/store/postgres"
	"github.com/hasiltani/agritrace/internal/webhook"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	store store.Store
	authz *auth.Engine
	jwt   *auth.JWTMiddleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	st := postgres.New(db)
	authz := auth.NewEngine(st, cache.NewCache(rdb))
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		store: st,
		authz: authz,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret, st.Users()),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	auditSvc := audit.NewService(rt.store)
	queueClient := queue.NewClient(rt.cfg.Redis)
	emitter := webhook.NewEmitter(rt.store, queueClient)

	companySvc := company.NewService(rt.store, rt.authz, auditSvc)
	billingSvc := billing.NewService(rt.store, rt.authz)
	commoditySvc := commodity.NewService(rt.store, rt.authz, auditSvc)
	batchSvc := batch.NewService(rt.store, rt.authz, auditSvc, emitter)
	landSvc := land.NewService(rt.store, rt.authz, auditSvc)
	farmerSvc := farmer.NewService(rt.store, rt.authz, auditSvc)
	webhookSvc := webhook.NewService(rt.store, rt.authz, auditSvc)

	companyH := handlers.NewCompanyHandler(companySvc, billingSvc, auditSvc)
	roleH := handlers.NewRoleHandler(companySvc)
	memberH := handlers.NewMemberHandler(companySvc)
	commodityH := handlers.NewCommodityHandler(commoditySvc)
	batchH := handlers.NewBatchHandler(batchSvc)
	landH := handlers.NewLandHandler(landSvc)
	farmerH := handlers.NewFarmerHandler(farmerSvc)
	webhookH := handlers.NewWebhookHandler(webhookSvc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		r.Get("/me", companyH.Me)
		r.Get("/users/search", companyH.SearchUser)

		r.Route("/companies", func(r chi.Router) {
			r.Post("/", companyH.Create)
			r.Get("/", companyH.List)

			r.Route("/{companyID}", func(r chi.Router) {
				r.Get("/", companyH.Get)
				r.Patch("/", companyH.Update)
				r.Delete("/", companyH.Delete)
				r.Get("/permissions", companyH.Permissions)
				r.Get("/billing", companyH.Billing)
				r.Get("/audit", companyH.AuditLogs)

				r.Route("/roles", func(r chi.Router) {
					r.Get("/", roleH.List)
					r.Post("/", roleH.Create)
					r.Get("/{roleID}", roleH.Get)
					r.Patch("/{roleID}", roleH.Update)
					r.Delete("/{roleID}", roleH.Delete)
				})

				r.Route("/members", func(r chi.Router) {
					r.Post("/", memberH.Add)
					r.Patch("/{userID}", memberH.UpdateRole)
					r.Delete("/{userID}", memberH.Remove)
				})

				r.Route("/commodities", func(r chi.Router) {
					r.Get("/", commodityH.List)
					r.Post("/", commodityH.Create)
					r.Get("/{commodityID}", commodityH.Get)
					r.Patch("/{commodityID}", commodityH.Update)
					r.Delete("/{commodityID}", commodityH.Delete)
				})

				r.Route("/batches", func(r chi.Router) {
					r.Get("/", batchH.List)
					r.Post("/", batchH.Create)

					r.Route("/{batchID}", func(r chi.Router) {
						r.Get("/", batchH.Get)
						r.Patch("/", batchH.Update)
						r.Delete("/", batchH.Delete)

						r.Route("/sources", func(r chi.Router) {
							r.Get("/", batchH.ListSources)
							r.Post("/", batchH.CreateSource)
							r.Get("/{sourceID}", batchH.GetSource)
							r.Patch("/{sourceID}", batchH.UpdateSource)
							r.Delete("/{sourceID}", batchH.DeleteSource)
						})

						r.Route("/attributes", func(r chi.Router) {
							r.Get("/", batchH.ListAttributes)
							r.Post("/", batchH.CreateAttribute)
							r.Get("/{attributeID}", batchH.GetAttribute)
							r.Patch("/{attributeID}", batchH.UpdateAttribute)
							r.Delete("/{attributeID}", batchH.DeleteAttribute)
						})

						r.Route("/relations", func(r chi.Router) {
							r.Get("/", batchH.ListRelations)
							r.Post("/", batchH.CreateRelation)
						})
					})
				})

				r.Route("/lands", func(r chi.Router) {
					r.Get("/", landH.List)
					r.Post("/", landH.Create)
					r.Get("/{landID}", landH.Get)
					r.Put("/{landID}", landH.Update)
					r.Delete("/{landID}", landH.Delete)
				})

				r.Route("/farmers", func(r chi.Router) {
					r.Get("/", farmerH.List)
					r.Post("/", farmerH.Create)
					r.Get("/{farmerID}", farmerH.Get)
					r.Put("/{farmerID}", farmerH.Update)
					r.Delete("/{farmerID}", farmerH.Delete)
				})

				r.Route("/farmer-groups", func(r chi.Router) {
					r.Get("/", farmerH.ListGroups)
					r.Post("/", farmerH.CreateGroup)
					r.Get("/{groupID}", farmerH.GetGroup)
					r.Put("/{groupID}", farmerH.UpdateGroup)
					r.Delete("/{groupID}", farmerH.DeleteGroup)
				})

				r.Route("/webhooks", func(r chi.Router) {
					r.Get("/", webhookH.List)
					r.Post("/", webhookH.Create)
					r.Delete("/{webhookID}", webhookH.Delete)
				})
			})
		})
	})

	return r
}
