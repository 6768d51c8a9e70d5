package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fieldline-erp/fieldline-erp/internal/assignment"
	"github.com/fieldline-erp/fieldline-erp/internal/attendance"
	"github.com/fieldline-erp/fieldline-erp/internal/catalog"
	"github.com/fieldline-erp/fieldline-erp/internal/masterdata/employees"
	"github.com/fieldline-erp/fieldline-erp/internal/masterdata/stores"
	"github.com/fieldline-erp/fieldline-erp/internal/observability"
	"github.com/fieldline-erp/fieldline-erp/internal/sales"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Metrics           *observability.Metrics
	CatalogHandler    *catalog.Handler
	AssignmentHandler *assignment.Handler
	EmployeesHandler  *employees.Handler
	StoresHandler     *stores.Handler
	SalesHandler      *sales.Handler
	AttendanceHandler *attendance.Handler
}

// NewRouter constructs the chi.Router with Fieldline defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.Metrics.Middleware)

	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.CatalogHandler.MountRoutes(r)
		params.AssignmentHandler.MountRoutes(r)
		params.EmployeesHandler.MountRoutes(r)
		params.StoresHandler.MountRoutes(r)
		params.SalesHandler.MountRoutes(r)
		params.AttendanceHandler.MountRoutes(r)
	})

	return r
}
