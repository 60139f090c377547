// Package httptransport assembles the chi router: the global middleware
// chain, the public query surface, and the signer-authenticated mutation
// surface.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authorityhandler "soulbound/internal/authority/handler"
	issuancehandler "soulbound/internal/issuance/handler"
	ledgerhandler "soulbound/internal/ledger/handler"
	"soulbound/internal/platform/metrics"
	"soulbound/internal/platform/middleware"
	registryhandler "soulbound/internal/registry/handler"
	skillshandler "soulbound/internal/skills/handler"
	"soulbound/internal/transport/http/shared"
	dErrors "soulbound/pkg/domain-errors"
)

// Handlers collects the per-domain HTTP handlers the router mounts.
type Handlers struct {
	Ledger    *ledgerhandler.Handler
	Issuance  *issuancehandler.Handler
	Skills    *skillshandler.Handler
	Authority *authorityhandler.Handler
	Registry  *registryhandler.Handler
}

// HealthCheck reports backend liveness for /healthz.
type HealthCheck func(ctx context.Context) error

// Options carries the router's cross-cutting dependencies.
type Options struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator
	Timeout   time.Duration
	Health    HealthCheck
}

// NewRouter builds the full HTTP surface. Mutation routes require a valid
// signer token; domain authorization happens below, in the services.
func NewRouter(h Handlers, opts Options) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.Timeout(opts.Timeout))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(opts.Metrics))

	r.Get("/healthz", handleHealth(opts.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(public chi.Router) {
		h.Ledger.RegisterPublic(public)
		h.Issuance.RegisterPublic(public)
		h.Skills.RegisterPublic(public)
		h.Authority.RegisterPublic(public)
		h.Registry.RegisterPublic(public)
	})

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireSigner(opts.Validator, opts.Logger))
		h.Ledger.RegisterProtected(protected)
		h.Skills.RegisterProtected(protected)
		h.Authority.RegisterProtected(protected)
		h.Registry.RegisterProtected(protected)
	})

	return r
}

func handleHealth(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "backend unhealthy"))
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
