// Package admin exposes a small chi-routed HTTP surface for operating a
// running engine instance: health, Prometheus scraping, and a status
// snapshot of the in-memory window store. It is grounded in the teacher's
// gateway/routes/router.go composition and reuses the rate-limiting
// middleware from gateway/middleware/ratelimit.go under a single route key
// ("admin"); the middleware still keeps one bucket per client identifier
// (API key header or IP address).
package admin

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loadshield/gateway/middleware"
)

// StatusProvider reports a point-in-time summary of adjudication state.
// composition.RunStats implements this.
type StatusProvider interface {
	Status() StatusSnapshot
}

// StatusSnapshot is the JSON body served at /status.
type StatusSnapshot struct {
	DistinctCustomerDays int               `json:"distinct_customer_days"`
	PrimeGateDays        map[string]uint32 `json:"prime_gate_days,omitempty"`
	RecordsAccepted      uint64            `json:"records_accepted"`
	RecordsDeclined      uint64            `json:"records_declined"`
}

// Config wires the admin server's dependencies.
type Config struct {
	Status    StatusProvider
	Logger    *log.Logger
	RateLimit middleware.RateLimit
}

// New builds the admin HTTP handler: /healthz, /metrics, /status.
func New(cfg Config) http.Handler {
	r := chi.NewRouter()

	limiter := middleware.NewRateLimiter(map[string]middleware.RateLimit{
		"admin": cfg.RateLimit,
	}, cfg.Logger)
	r.Use(limiter.Middleware("admin"))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Status == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		snapshot := cfg.Status.Status()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot)
	})

	return r
}
