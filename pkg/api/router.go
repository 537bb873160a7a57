package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/propstore/propstore/pkg/api/handlers"
	"github.com/propstore/propstore/pkg/manager"
	"github.com/propstore/propstore/pkg/metrics"
	"github.com/propstore/propstore/pkg/registry"
)

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET    /health - Liveness probe
//   - GET    /health/ready - Readiness probe
//   - GET    /health/stores - Detailed store health
//   - GET    /api/v1/stores - List stores
//   - POST   /api/v1/stores - Create a store
//   - GET    /api/v1/stores/{store} - Store info
//   - DELETE /api/v1/stores/{store} - Remove a store
//   - POST   /api/v1/stores/{store}/clear - Clear a store
//   - POST   /api/v1/stores/{store}/keys/{key} - Create a key
//   - GET    /api/v1/stores/{store}/keys/{key} - Key existence
//   - POST   /api/v1/stores/{store}/keys/{key}/get - Lock and read props
//   - POST   /api/v1/stores/{store}/keys/{key}/put - Write props / clear locks
//   - DELETE /api/v1/stores/{store}/keys/{key} - Delete a key
//   - POST   /api/v1/stores/{store}/keys/{key}/remove - Delete and read back
func NewRouter(reg *registry.Registry, mgr *manager.Manager) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(traceRequests)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(DefaultRequestTimeout))

	var memory handlers.MemoryReporter
	if mgr != nil {
		memory = mgr
	}
	healthHandler := handlers.NewHealthHandler(reg, memory)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
		r.Get("/stores", healthHandler.Stores)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	storeHandler := handlers.NewStoreHandler(reg, metrics.NewStoreMetrics)
	keyHandler := handlers.NewKeyHandler(reg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", storeHandler.List)
			r.Post("/", storeHandler.Create)

			r.Route("/{store}", func(r chi.Router) {
				r.Get("/", storeHandler.Get)
				r.Delete("/", storeHandler.Delete)
				r.Post("/clear", storeHandler.Clear)

				r.Route("/keys/{key}", func(r chi.Router) {
					r.Post("/", keyHandler.Create)
					r.Get("/", keyHandler.Exists)
					r.Delete("/", keyHandler.Delete)
					r.Post("/get", keyHandler.Get)
					r.Post("/put", keyHandler.Put)
					r.Post("/remove", keyHandler.Remove)
				})
			})
		})
	})

	return r
}
