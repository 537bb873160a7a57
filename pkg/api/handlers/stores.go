package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/propstore/propstore/pkg/registry"
	"github.com/propstore/propstore/pkg/transient"
)

// StoreHandler manages the store lifecycle endpoints.
type StoreHandler struct {
	registry   *registry.Registry
	newMetrics func(store string) transient.StoreMetrics
}

// NewStoreHandler creates a store handler. newMetrics builds the metrics
// receiver for stores created through the API; it may be nil.
func NewStoreHandler(reg *registry.Registry, newMetrics func(string) transient.StoreMetrics) *StoreHandler {
	return &StoreHandler{registry: reg, newMetrics: newMetrics}
}

// StoreInfo describes one store.
type StoreInfo struct {
	Name        string   `json:"name"`
	ID          string   `json:"id"`
	Props       []string `json:"props"`
	Timeout     string   `json:"timeout"`
	LockTimeout string   `json:"lock_timeout"`
	Entries     int      `json:"entries"`
}

func storeInfo(s *transient.Store) StoreInfo {
	return StoreInfo{
		Name:        s.Name(),
		ID:          s.ID(),
		Props:       s.PropNames(),
		Timeout:     s.TimeOut().String(),
		LockTimeout: s.LockTimeOut().String(),
		Entries:     s.EntryCount(),
	}
}

// List handles GET /api/v1/stores.
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	stores := h.registry.Stores()
	infos := make([]StoreInfo, 0, len(stores))
	for _, s := range stores {
		infos = append(infos, storeInfo(s))
	}
	writeJSON(w, http.StatusOK, okResponse(map[string]any{"stores": infos}))
}

// CreateStoreRequest is the payload of POST /api/v1/stores.
type CreateStoreRequest struct {
	Name        string   `json:"name"`
	Props       []string `json:"props"`
	Timeout     string   `json:"timeout,omitempty"`
	LockTimeout string   `json:"lock_timeout,omitempty"`
}

// Create handles POST /api/v1/stores.
func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateStoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("store name is required"))
		return
	}

	cfg := transient.DefaultStoreConfig()
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse("invalid timeout: "+err.Error()))
			return
		}
		cfg.TimeOut = d
	}
	if req.LockTimeout != "" {
		d, err := time.ParseDuration(req.LockTimeout)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse("invalid lock_timeout: "+err.Error()))
			return
		}
		cfg.LockTimeOut = d
	}

	var metrics transient.StoreMetrics
	if h.newMetrics != nil {
		metrics = h.newMetrics(req.Name)
	}
	store, err := transient.NewStore(req.Name, req.Props, cfg, metrics)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, transient.ErrNoProps) &&
			!errors.Is(err, transient.ErrNegativeTimeout) &&
			!errors.Is(err, transient.ErrTimeoutInvariant) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse(err.Error()))
		return
	}

	if err := h.registry.Add(req.Name, store); err != nil {
		writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, okResponse(storeInfo(store)))
}

// Get handles GET /api/v1/stores/{store}.
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, okResponse(storeInfo(store)))
}

// Delete handles DELETE /api/v1/stores/{store}: unregisters and clears.
func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	store, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := h.registry.Remove(store); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, okResponse(map[string]string{"removed": store.Name()}))
}

// Clear handles POST /api/v1/stores/{store}/clear: drops every entry and
// both queues, keeping the store registered.
func (h *StoreHandler) Clear(w http.ResponseWriter, r *http.Request) {
	store, ok := h.lookup(w, r)
	if !ok {
		return
	}
	store.Clear()
	writeJSON(w, http.StatusOK, okResponse(map[string]string{"cleared": store.Name()}))
}

func (h *StoreHandler) lookup(w http.ResponseWriter, r *http.Request) (*transient.Store, bool) {
	name := chi.URLParam(r, "store")
	store, err := h.registry.Get(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		return nil, false
	}
	return store, true
}
