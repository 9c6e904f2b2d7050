// Package httpapi assembles the service router. It stays a thin composition
// layer: feature handlers register their own routes, and this package only
// decides middleware ordering and which routes sit behind admin auth.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"transferguard/internal/platform/middleware"
	"transferguard/pkg/platform/httputil"
)

// Registrar mounts a feature's routes on a router.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports backend liveness for the health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router composes. Admin registrars are mounted
// under /admin behind JWT auth; nil fields are skipped.
type Deps struct {
	Logger         *slog.Logger
	AdminValidator *middleware.AdminValidator
	Public         []Registrar
	Admin          []Registrar
	Health         map[string]HealthChecker
}

// NewRouter wires all endpoints with shared middleware.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestContext)
	r.Use(middleware.Logging(deps.Logger))

	r.Get("/healthz", handleHealth(deps.Health))
	r.Handle("/metrics", promhttp.Handler())

	for _, reg := range deps.Public {
		if reg != nil {
			reg.Register(r)
		}
	}

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin(deps.AdminValidator, deps.Logger))
		admin.Route("/admin", func(ar chi.Router) {
			for _, reg := range deps.Admin {
				if reg != nil {
					reg.Register(ar)
				}
			}
		})
	})

	return r
}

type healthResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends,omitempty"`
}

func handleHealth(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checkers) > 0 {
			resp.Backends = make(map[string]string, len(checkers))
			for name, checker := range checkers {
				if err := checker.Health(r.Context()); err != nil {
					resp.Backends[name] = "unhealthy"
					resp.Status = "degraded"
					status = http.StatusServiceUnavailable
					continue
				}
				resp.Backends[name] = "ok"
			}
		}
		httputil.WriteJSON(w, status, resp)
	}
}
