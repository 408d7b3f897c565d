// Package server assembles the HTTP router and the gRPC server.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	achievementhandler "psychaid/backend/internal/achievement/handler"
	achievementservice "psychaid/backend/internal/achievement/service"
	"psychaid/backend/internal/audit"
	audithandler "psychaid/backend/internal/audit/handler"
	cataloghandler "psychaid/backend/internal/catalog/handler"
	catalogservice "psychaid/backend/internal/catalog/service"
	chathandler "psychaid/backend/internal/chat/handler"
	chatservice "psychaid/backend/internal/chat/service"
	"psychaid/backend/internal/health"
	healthhandler "psychaid/backend/internal/health/handler"
	identityhandler "psychaid/backend/internal/identity/handler"
	identityservice "psychaid/backend/internal/identity/service"
	moodhandler "psychaid/backend/internal/mood/handler"
	moodservice "psychaid/backend/internal/mood/service"
	"psychaid/backend/internal/platform/rbac"
	progresshandler "psychaid/backend/internal/progress/handler"
	progressservice "psychaid/backend/internal/progress/service"
	"psychaid/backend/internal/server/middleware"
)

// ChildParam is the route parameter naming another user's id. Every route
// that carries it is gated.
const ChildParam = "childID"

// Deps holds the services the router dispatches to.
type Deps struct {
	Log          logrus.FieldLogger
	Auth         *identityservice.AuthService
	Gate         *rbac.Gate
	Mood         *moodservice.MoodService
	Progress     *progressservice.ProgressService
	Achievements *achievementservice.AchievementService
	Catalog      *catalogservice.CatalogService
	Chat         *chatservice.ChatService
	// Audit records auth events and denials. Nil disables auditing.
	Audit audit.AuditLogger
	// AuditEvents serves GET /auth/audit. Nil omits the route.
	AuditEvents audithandler.Reader
	// Health drives /readyz. Nil reports ready with no checks.
	Health *health.Checker
	// Metrics is recorded per request. Nil disables recording.
	Metrics *middleware.Metrics
	// Gatherer is served at /metrics. Nil omits the route.
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
}

// NewRouter builds the chi router for every HTTP route.
func NewRouter(d Deps) chi.Router {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	gate := d.Gate
	if gate == nil {
		gate = rbac.NewGate(nil, log)
	}
	checker := d.Health
	if checker == nil {
		checker = health.NewChecker(0)
	}

	authH := identityhandler.NewAuthHandler(d.Auth, log)
	moodH := moodhandler.NewHandler(d.Mood, log)
	progressH := progresshandler.NewHandler(d.Progress, log)
	achievementH := achievementhandler.NewHandler(d.Achievements, log)
	catalogH := cataloghandler.NewHandler(d.Catalog, log)
	chatH := chathandler.NewHandler(d.Chat, log)
	healthH := healthhandler.NewHTTP(checker)

	requireAuth := middleware.RequireAuth(d.Auth, log)
	requireChild := middleware.RequireTargetAccess(gate, ChildParam, log)

	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.Recover(log),
		middleware.RequestID,
		middleware.Instrument(d.Metrics, log),
		middleware.CORS(d.CORSOrigins),
		middleware.Audit(d.Audit),
	)

	r.Get("/healthz", healthH.Liveness)
	r.Get("/readyz", healthH.Readiness)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	// Public.
	r.Post("/auth/signup", authH.Signup)
	r.Post("/auth/login", authH.Login)
	r.Post("/auth/refresh", authH.Refresh)
	r.Get("/resources", catalogH.Resources)
	r.Get("/resources/{id}", catalogH.Resource)
	r.Get("/therapeutic-exercises", catalogH.TherapeuticExercises)
	r.Post("/chat/public", chatH.Public)

	// Caller's own data.
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/auth/logout", authH.Logout)
		r.Get("/auth/me", authH.Me)
		r.Delete("/auth/me", authH.DeleteMe)
		r.Put("/auth/password", authH.ChangePassword)
		r.Get("/auth/children", authH.Children)
		if d.AuditEvents != nil {
			r.Get("/auth/audit", audithandler.NewHandler(d.AuditEvents, log).Events)
		}

		r.Post("/mood", moodH.Record)
		r.Get("/mood/history", moodH.History)
		r.Get("/mood/latest", moodH.Latest)
		r.Delete("/mood/history", moodH.Clear)

		r.Post("/progress", progressH.Save)
		r.Get("/progress", progressH.Stats)
		r.Get("/progress/category/{category}", progressH.CategoryStats)

		r.Post("/exercises", achievementH.RecordExercise)
		r.Get("/exercises", achievementH.ListExercises)
		r.Post("/exercises/{exerciseID}/complete", achievementH.CompleteExercise)
		r.Get("/achievements", achievementH.Achievements)

		r.Post("/chat", chatH.Chat)
		r.Get("/chat/history", chatH.History)
		r.Delete("/chat/history", chatH.Clear)
	})

	// Another user's data.
	r.Group(func(r chi.Router) {
		r.Use(requireAuth, requireChild)

		r.Get("/mood/child/{childID}", moodH.ChildHistory)
		r.Get("/progress/child/{childID}", progressH.ChildSummary)
		r.Get("/progress/child/{childID}/category/{category}", progressH.ChildCategory)
		r.Get("/achievements/child/{childID}", achievementH.ChildAchievements)
	})

	return r
}

// NewHTTPHandler wraps the router with OpenTelemetry server instrumentation.
// The span starts as the method alone; Instrument renames it to the route
// pattern once chi has matched.
func NewHTTPHandler(d Deps) http.Handler {
	return otelhttp.NewHandler(NewRouter(d), "psychaid.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method
		}))
}
