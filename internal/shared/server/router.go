package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/railmiles/rewards-service/internal/shared/dto"
)

// Version is reported by /healthz.
const Version = "v0.1.0"

// RouterOptions tunes the shared router.
type RouterOptions struct {
	Service   string
	DataStore string
	// Metrics, when set, is mounted at /metrics outside any auth group.
	Metrics http.Handler
}

// NewRouter returns a chi router pre-configured with default middleware and a health endpoint.
func NewRouter(opts RouterOptions, register func(r chi.Router)) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, dto.HealthResponse{
			Status:    "ok",
			Service:   opts.Service,
			Version:   Version,
			DataStore: opts.DataStore,
		})
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	if register != nil {
		register(r)
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
