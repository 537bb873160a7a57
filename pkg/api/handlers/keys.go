package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/propstore/propstore/pkg/registry"
	"github.com/propstore/propstore/pkg/transient"
)

// KeyHandler implements the per-key operations.
//
// Keys travel as unpadded base64url path segments; property values travel
// as base64 strings in JSON bodies, with null meaning "no value" (clear the
// lock on Put, Create-mode suppression on Get).
type KeyHandler struct {
	registry *registry.Registry
}

// NewKeyHandler creates a key handler.
func NewKeyHandler(reg *registry.Registry) *KeyHandler {
	return &KeyHandler{registry: reg}
}

// PropRequestDTO is one lock request in a Get payload.
type PropRequestDTO struct {
	Index int    `json:"index"`
	Mode  string `json:"mode"`
}

// PropEntryDTO is one property crossing the HTTP boundary.
type PropEntryDTO struct {
	Index  int     `json:"index"`
	LockID int32   `json:"lock_id"`
	Value  *string `json:"value"`
}

// OpResult is the body of every key operation response.
type OpResult struct {
	Code    int            `json:"code"`
	Status  string         `json:"status"`
	Props   []PropEntryDTO `json:"props,omitempty"`
	Deleted *bool          `json:"deleted,omitempty"`
	Exists  *bool          `json:"exists,omitempty"`
	Seconds *int64         `json:"seconds,omitempty"`
}

func opResult(code transient.ErrorCode) OpResult {
	return OpResult{Code: int(code), Status: code.String()}
}

func propEntriesOut(props []transient.PropEntry) []PropEntryDTO {
	out := make([]PropEntryDTO, 0, len(props))
	for _, p := range props {
		dto := PropEntryDTO{Index: p.Index, LockID: p.LockID}
		if p.Value != nil {
			v := base64.StdEncoding.EncodeToString(p.Value)
			dto.Value = &v
		}
		out = append(out, dto)
	}
	return out
}

func propEntriesIn(dtos []PropEntryDTO) ([]transient.PropEntry, error) {
	props := make([]transient.PropEntry, 0, len(dtos))
	for _, dto := range dtos {
		p := transient.PropEntry{Index: dto.Index, LockID: dto.LockID}
		if dto.Value != nil {
			v, err := base64.StdEncoding.DecodeString(*dto.Value)
			if err != nil {
				return nil, err
			}
			if v == nil {
				v = []byte{}
			}
			p.Value = v
		}
		props = append(props, p)
	}
	return props, nil
}

// httpStatus maps a domain result to an HTTP status. Domain outcomes other
// than a missing key are still 200: the body carries the code.
func httpStatus(code transient.ErrorCode) int {
	if code == transient.ErrDoesNotExist {
		return http.StatusNotFound
	}
	return http.StatusOK
}

// Create handles POST /api/v1/stores/{store}/keys/{key}.
func (h *KeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	store, key, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if store.Create(key) {
		writeJSON(w, http.StatusCreated, okResponse(opResult(transient.ErrNone)))
		return
	}
	writeJSON(w, http.StatusConflict, okResponse(opResult(transient.ErrAlreadyExists)))
}

// Exists handles GET /api/v1/stores/{store}/keys/{key}.
func (h *KeyHandler) Exists(w http.ResponseWriter, r *http.Request) {
	store, key, ok := h.lookup(w, r)
	if !ok {
		return
	}
	exists, seconds := store.Exists(key)
	res := opResult(transient.ErrNone)
	res.Exists = &exists
	res.Seconds = &seconds
	writeJSON(w, http.StatusOK, okResponse(res))
}

// GetRequest is the payload of the lock-and-get operation.
type GetRequest struct {
	Requests []PropRequestDTO `json:"requests"`
	MaxWait  int64            `json:"max_wait"`
	Force    bool             `json:"force"`
}

// Get handles POST /api/v1/stores/{store}/keys/{key}/get.
func (h *KeyHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, key, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req GetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}
	requests := make([]transient.PropRequest, 0, len(req.Requests))
	for _, dto := range req.Requests {
		mode, err := transient.ParseLockMode(dto.Mode)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		requests = append(requests, transient.PropRequest{Index: dto.Index, Mode: mode})
	}

	result, err := store.Get(r.Context(), key, requests, time.Duration(req.MaxWait)*time.Second, req.Force)
	if err != nil {
		writeJSON(w, http.StatusGatewayTimeout, errorResponse(err.Error()))
		return
	}
	res := opResult(result.Status)
	res.Props = propEntriesOut(result.Props)
	writeJSON(w, httpStatus(result.Status), okResponse(res))
}

// PutRequest is the payload of the put operation.
type PutRequest struct {
	Props []PropEntryDTO `json:"props"`
}

// Put handles POST /api/v1/stores/{store}/keys/{key}/put.
func (h *KeyHandler) Put(w http.ResponseWriter, r *http.Request) {
	store, key, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req PutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}
	props, err := propEntriesIn(req.Props)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid value encoding: "+err.Error()))
		return
	}

	result, err := store.Put(r.Context(), key, props)
	if err != nil {
		writeJSON(w, http.StatusGatewayTimeout, errorResponse(err.Error()))
		return
	}
	writeJSON(w, httpStatus(result.Status), okResponse(opResult(result.Status)))
}

// Delete handles DELETE /api/v1/stores/{store}/keys/{key}.
// max_wait (seconds) and force come as query parameters.
func (h *KeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	store, key, ok := h.lookup(w, r)
	if !ok {
		return
	}
	maxWait, force, err := waitParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := store.Delete(r.Context(), key, maxWait, force)
	if err != nil {
		writeJSON(w, http.StatusGatewayTimeout, errorResponse(err.Error()))
		return
	}
	res := opResult(result.Status)
	res.Deleted = &result.Deleted
	writeJSON(w, httpStatus(result.Status), okResponse(res))
}

// RemoveRequest is the payload of the remove operation.
type RemoveRequest struct {
	MaxWait int64 `json:"max_wait"`
	Force   bool  `json:"force"`
}

// Remove handles POST /api/v1/stores/{store}/keys/{key}/remove: delete plus
// a final read of every assigned property.
func (h *KeyHandler) Remove(w http.ResponseWriter, r *http.Request) {
	store, key, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req RemoveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	result, err := store.Remove(r.Context(), key, time.Duration(req.MaxWait)*time.Second, req.Force)
	if err != nil {
		writeJSON(w, http.StatusGatewayTimeout, errorResponse(err.Error()))
		return
	}
	res := opResult(result.Status)
	res.Props = propEntriesOut(result.Props)
	writeJSON(w, httpStatus(result.Status), okResponse(res))
}

func waitParams(r *http.Request) (time.Duration, bool, error) {
	var maxWait int64
	var force bool
	if v := r.URL.Query().Get("max_wait"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false, err
		}
		maxWait = n
	}
	if v := r.URL.Query().Get("force"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return 0, false, err
		}
		force = b
	}
	return time.Duration(maxWait) * time.Second, force, nil
}

func (h *KeyHandler) lookup(w http.ResponseWriter, r *http.Request) (*transient.Store, []byte, bool) {
	name := chi.URLParam(r, "store")
	store, err := h.registry.Get(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		return nil, nil, false
	}
	key, err := DecodeKey(chi.URLParam(r, "key"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid key encoding: "+err.Error()))
		return nil, nil, false
	}
	return store, key, true
}
