package handlers

import (
	"net/http"

	"github.com/propstore/propstore/pkg/registry"
)

// MemoryReporter exposes the sweep driver's advisory memory flag to health
// reporting. Satisfied by *manager.Manager; may be nil.
type MemoryReporter interface {
	MemoryLow() bool
}

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Is the server ready to accept requests?
//   - Store health: Per-store entry counts and the memory flag
type HealthHandler struct {
	registry *registry.Registry
	memory   MemoryReporter
}

// NewHealthHandler creates a new health handler. Both parameters may be
// nil, in which case readiness reports unhealthy and the memory flag is
// omitted.
func NewHealthHandler(registry *registry.Registry, memory MemoryReporter) *HealthHandler {
	return &HealthHandler{registry: registry, memory: memory}
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK as long as the HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "propstore",
	}))
}

// Readiness handles GET /health/ready - readiness probe.
//
// Returns 200 OK once the registry is initialized. An empty registry is
// still ready: stores can be created through the API at any time.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("registry not initialized"))
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"stores": h.registry.Count(),
	}))
}

// StoreHealth is one store's health snapshot.
type StoreHealth struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Props   int    `json:"props"`
}

// Stores handles GET /health/stores - detailed store health.
func (h *HealthHandler) Stores(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("registry not initialized"))
		return
	}

	stores := h.registry.Stores()
	health := make([]StoreHealth, 0, len(stores))
	for _, s := range stores {
		health = append(health, StoreHealth{
			Name:    s.Name(),
			Entries: s.EntryCount(),
			Props:   s.PropCount(),
		})
	}

	data := map[string]any{
		"stores": health,
	}
	if h.memory != nil {
		data["memory_low"] = h.memory.MemoryLow()
	}
	writeJSON(w, http.StatusOK, healthyResponse(data))
}
