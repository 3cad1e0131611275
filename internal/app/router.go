package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nimbus-hr/nimbus-hr/internal/auth"
	"github.com/nimbus-hr/nimbus-hr/internal/employees"
	"github.com/nimbus-hr/nimbus-hr/internal/observability"
	"github.com/nimbus-hr/nimbus-hr/internal/orgs"
	"github.com/nimbus-hr/nimbus-hr/internal/platform/httpx"
	"github.com/nimbus-hr/nimbus-hr/jobs"
)

// Version is stamped at build time.
var Version = "dev"

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	OrgsHandler      *orgs.Handler
	EmployeesHandler *employees.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		env := "development"
		if params.Config != nil {
			env = params.Config.AppEnv
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"version":     Version,
			"environment": env,
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(AuthRateLimit())
		params.AuthHandler.MountRoutes(r)
	})
	r.Route("/organizations", params.OrgsHandler.MountRoutes)
	r.Route("/employees", params.EmployeesHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
