package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/pprof"
	"time"

	"stroke-warning-system/internal/store"

	"go.uber.org/zap"
)

// HealthHandler answers liveness and readiness checks and optionally exposes pprof.
type HealthHandler struct {
	db           *sql.DB
	kv           store.KV
	kvName       string
	logger       *zap.Logger
	pprofEnabled bool
}

// NewHealthHandler takes the pool behind gorm and the session KV. kvName
// labels the KV in responses ("redis" or "memory").
func NewHealthHandler(db *sql.DB, kv store.KV, kvName string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		kv:     kv,
		kvName: kvName,
		logger: logger,
	}
}

func (h *HealthHandler) EnablePprof(enabled bool) {
	h.pprofEnabled = enabled
}

type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	services := make(map[string]string)

	if h.kv != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.kv.Ping(ctx); err != nil {
			status = "unhealthy"
			services[h.kvName] = "unhealthy: " + err.Error()
			h.logger.Warn("Health check failed", zap.String("service", h.kvName), zap.Error(err))
		} else {
			services[h.kvName] = "healthy"
		}
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = "unhealthy"
			services["database"] = "unhealthy: " + err.Error()
			h.logger.Warn("Health check failed", zap.String("service", "database"), zap.Error(err))
		} else {
			services["database"] = "healthy"
		}
	} else {
		services["database"] = "not configured"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, HealthCheckResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services:  services,
	})
}

// Ready requires the database; the KV counts only when configured.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ready := true
	checks := make(map[string]bool)

	if h.kv != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		checks[h.kvName] = h.kv.Ping(ctx) == nil
		ready = ready && checks[h.kvName]
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		checks["database"] = h.db.PingContext(ctx) == nil
	} else {
		checks["database"] = false
	}
	ready = ready && checks["database"]

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, map[string]interface{}{
		"ready":  ready,
		"checks": checks,
	})
}

// RegisterHealthRoutes mounts the health endpoints and, if enabled, pprof.
func (r *Router) RegisterHealthRoutes(health *HealthHandler) {
	r.Handle("/healthz", health.HealthCheck)
	r.Handle("/readyz", health.Ready)

	if health.pprofEnabled {
		r.Handle("/debug/pprof/*", pprof.Index)
		r.Handle("/debug/pprof/cmdline", pprof.Cmdline)
		r.Handle("/debug/pprof/profile", pprof.Profile)
		r.Handle("/debug/pprof/symbol", pprof.Symbol)
		r.Handle("/debug/pprof/trace", pprof.Trace)
		r.HandleHandler("/debug/pprof/goroutine", pprof.Handler("goroutine"))
		r.HandleHandler("/debug/pprof/heap", pprof.Handler("heap"))
		r.HandleHandler("/debug/pprof/allocs", pprof.Handler("allocs"))
		r.HandleHandler("/debug/pprof/block", pprof.Handler("block"))
		r.HandleHandler("/debug/pprof/mutex", pprof.Handler("mutex"))
	}
}
