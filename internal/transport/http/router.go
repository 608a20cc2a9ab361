// Package httptransport assembles the HTTP surface: public registration
// routes, staff routes behind bearer auth, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatepass/internal/platform/middleware"
	"gatepass/internal/transport/http/shared"
)

// StaffRegistrar mounts routes that require a staff credential.
type StaffRegistrar interface {
	RegisterStaff(r chi.Router)
}

// PublicRegistrar mounts attendee-facing routes.
type PublicRegistrar interface {
	Register(r chi.Router)
}

// Deps collects everything the router needs.
type Deps struct {
	Logger       *slog.Logger
	JWTValidator middleware.JWTValidator
	Public       []PublicRegistrar
	Staff        []StaffRegistrar
}

// NewRouter wires the full route tree.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Group(func(pub chi.Router) {
			for _, reg := range d.Public {
				reg.Register(pub)
			}
		})
		api.Group(func(staff chi.Router) {
			staff.Use(middleware.ContentTypeJSON)
			staff.Use(middleware.RequireStaff(d.JWTValidator, d.Logger))
			for _, reg := range d.Staff {
				reg.RegisterStaff(staff)
			}
		})
	})
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
