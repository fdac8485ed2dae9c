package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/directory-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/directory-backend/api/controllers/webhooks"
	"github.com/angelmondragon/directory-backend/api/middleware"
	"github.com/angelmondragon/directory-backend/internal/bookmarks"
	"github.com/angelmondragon/directory-backend/internal/jobs"
	"github.com/angelmondragon/directory-backend/internal/needs"
	"github.com/angelmondragon/directory-backend/internal/profiles"
	"github.com/angelmondragon/directory-backend/internal/projects"
	"github.com/angelmondragon/directory-backend/internal/taxonomy"
	"github.com/angelmondragon/directory-backend/internal/users"
	stripewebhook "github.com/angelmondragon/directory-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/directory-backend/pkg/config"
	"github.com/angelmondragon/directory-backend/pkg/db"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/angelmondragon/directory-backend/pkg/redis"
	"github.com/angelmondragon/directory-backend/pkg/stripe"
)

// Dependencies are the collaborators the API mounts. Nil services still
// mount their routes and answer 500 so misconfiguration is visible.
type Dependencies struct {
	DB    db.Pinger
	Redis *redis.Client
	// Gatherer backs /metrics; nil falls back to the default registry.
	Gatherer prometheus.Gatherer

	Users     users.Service
	Profiles  profiles.Service
	Projects  projects.Service
	Needs     needs.Service
	Jobs      jobs.Service
	Bookmarks bookmarks.Service
	Taxonomy  taxonomy.Service
	Reminders controllers.ReminderSweeper

	StripeClient         *stripe.Client
	StripeWebhookService *stripewebhook.Service
	StripeWebhookGuard   *stripewebhook.IdempotencyGuard
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	var idempotencyStore redis.IdempotencyStore
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
	}
	idempotent := middleware.Idempotency(idempotencyStore, middleware.DefaultIdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessChecks(deps)))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/api/v1/needs/taxonomy", controllers.NeedsTaxonomy(deps.Taxonomy, logg))

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(
			webhookService(deps.StripeWebhookService),
			eventVerifier(deps.StripeClient),
			webhookGuard(deps.StripeWebhookGuard),
			logg,
		))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Users, logg))

		r.Get("/me", controllers.Me(deps.Users, logg))

		r.Route("/profiles", func(r chi.Router) {
			r.With(idempotent).Post("/", controllers.ProfileCreate(deps.Profiles, logg))
			r.With(middleware.RequireApprovedMember(logg)).Get("/", controllers.ProfileList(deps.Profiles, logg))
			r.Get("/me", controllers.ProfileMine(deps.Profiles, logg))
			r.Put("/me", controllers.ProfileUpdate(deps.Profiles, logg))
			r.Post("/me/submit", controllers.ProfileSubmit(deps.Profiles, logg))
			r.Get("/{handle}", controllers.ProfileByHandle(deps.Profiles, logg))
		})

		r.Route("/projects", func(r chi.Router) {
			r.With(middleware.RequireApprovedMember(logg), idempotent).Post("/", controllers.ProjectCreate(deps.Projects, logg))
			r.With(middleware.RequireApprovedMember(logg)).Get("/", controllers.ProjectList(deps.Projects, logg))
			r.Get("/mine", controllers.ProjectMine(deps.Projects, logg))
			r.Route("/{projectId}", func(r chi.Router) {
				r.Get("/", controllers.ProjectDetail(deps.Projects, logg))
				r.Put("/", controllers.ProjectUpdate(deps.Projects, logg))
				r.Delete("/", controllers.ProjectDelete(deps.Projects, logg))
				r.Get("/needs", controllers.ProjectNeeds(deps.Needs, logg))
				r.Put("/needs", controllers.ProjectNeedsReplace(deps.Needs, logg))
			})
		})

		r.Route("/jobs", func(r chi.Router) {
			r.With(middleware.RequireEmployer(logg), idempotent).Post("/", controllers.JobCreate(deps.Jobs, logg))
			r.With(middleware.RequireApprovedMember(logg)).Get("/", controllers.JobList(deps.Jobs, logg))
			r.Get("/mine", controllers.JobMine(deps.Jobs, logg))
			r.Get("/{jobId}", controllers.JobDetail(deps.Jobs, logg))
			r.Put("/{jobId}", controllers.JobUpdate(deps.Jobs, logg))
			r.Delete("/{jobId}", controllers.JobDelete(deps.Jobs, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(middleware.RequireApprovedMember(logg))
			r.Get("/", controllers.FavoriteList(deps.Bookmarks, logg))
			r.Get("/{profileId}", controllers.FavoriteStatus(deps.Bookmarks, logg))
			r.Post("/{profileId}", controllers.FavoriteAdd(deps.Bookmarks, logg))
			r.Delete("/{profileId}", controllers.FavoriteRemove(deps.Bookmarks, logg))
		})

		r.Route("/follows", func(r chi.Router) {
			r.Use(middleware.RequireApprovedMember(logg))
			r.Get("/", controllers.FollowList(deps.Bookmarks, logg))
			r.Get("/{projectId}", controllers.FollowStatus(deps.Bookmarks, logg))
			r.Post("/{projectId}", controllers.FollowAdd(deps.Bookmarks, logg))
			r.Delete("/{projectId}", controllers.FollowRemove(deps.Bookmarks, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Users, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/pending", controllers.AdminPendingProfiles(deps.Profiles, logg))
			r.Get("/{profileId}", controllers.AdminProfileDetail(deps.Profiles, logg))
			r.Post("/{profileId}/approve", controllers.AdminApproveProfile(deps.Profiles, logg))
			r.Post("/{profileId}/reject", controllers.AdminRejectProfile(deps.Profiles, logg))
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(deps.Users, logg))
			r.Post("/{userId}/suspend", controllers.AdminSuspendUser(deps.Users, logg))
			r.Post("/{userId}/reinstate", controllers.AdminReinstateUser(deps.Users, logg))
		})
		r.Delete("/projects/{projectId}", controllers.AdminArchiveProject(deps.Projects, logg))
		r.Delete("/jobs/{jobId}", controllers.AdminDeactivateJob(deps.Jobs, logg))
		r.With(idempotent).Post("/tasks/send-need-reminders", controllers.AdminSendNeedReminders(deps.Reminders, logg))
		r.Post("/taxonomy/invalidate", controllers.AdminInvalidateTaxonomy(deps.Taxonomy, logg))
	})

	return r
}

func readinessChecks(deps Dependencies) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{"db": nil, "redis": nil}
	if deps.DB != nil {
		checks["db"] = deps.DB
	}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	return checks
}

// The helpers below keep typed nil pointers from becoming non-nil
// interfaces, which would bypass the controllers' nil checks.

func webhookService(svc *stripewebhook.Service) webhookcontrollers.StripeWebhookService {
	if svc == nil {
		return nil
	}
	return svc
}

func eventVerifier(client *stripe.Client) webhookcontrollers.EventVerifier {
	if client == nil {
		return nil
	}
	return client
}

func webhookGuard(guard *stripewebhook.IdempotencyGuard) webhookcontrollers.Guard {
	if guard == nil {
		return nil
	}
	return guard
}
