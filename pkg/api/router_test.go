package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/propstore/propstore/pkg/api/handlers"
	"github.com/propstore/propstore/pkg/registry"
	"github.com/propstore/propstore/pkg/transient"
)

func testRouter(t *testing.T) (http.Handler, *registry.Registry) {
	t.Helper()
	reg := registry.NewRegistry()
	store, err := transient.NewStore("sessions", []string{"token", "state"}, transient.Config{
		TimeOut:     time.Minute,
		LockTimeOut: 10 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := reg.Add("sessions", store); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return NewRouter(reg, nil), reg
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v (%s)", err, env.Data)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := testRouter(t)

	for _, path := range []string{"/health", "/health/ready", "/health/stores"} {
		rec := doRequest(t, router, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200: %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestStoreLifecycle(t *testing.T) {
	router, _ := testRouter(t)

	// Create
	rec := doRequest(t, router, http.MethodPost, "/api/v1/stores", map[string]any{
		"name":         "carts",
		"props":        []string{"items"},
		"timeout":      "2m",
		"lock_timeout": "30s",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create store = %d: %s", rec.Code, rec.Body.String())
	}

	// Duplicate
	rec = doRequest(t, router, http.MethodPost, "/api/v1/stores", map[string]any{
		"name": "carts", "props": []string{"items"},
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate store = %d, want 409", rec.Code)
	}

	// Invalid timeouts rejected
	rec = doRequest(t, router, http.MethodPost, "/api/v1/stores", map[string]any{
		"name": "bad", "props": []string{"p"}, "timeout": "10s", "lock_timeout": "6s",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid store config = %d, want 400", rec.Code)
	}

	// List includes both stores
	rec = doRequest(t, router, http.MethodGet, "/api/v1/stores", nil)
	var list struct {
		Stores []handlers.StoreInfo `json:"stores"`
	}
	decodeData(t, rec, &list)
	if len(list.Stores) != 2 {
		t.Errorf("listed %d stores, want 2", len(list.Stores))
	}

	// Delete
	rec = doRequest(t, router, http.MethodDelete, "/api/v1/stores/carts", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete store = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, router, http.MethodGet, "/api/v1/stores/carts", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleted store lookup = %d, want 404", rec.Code)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	router, _ := testRouter(t)
	keyPath := "/api/v1/stores/sessions/keys/" + handlers.EncodeKey([]byte("user42"))

	// Create
	rec := doRequest(t, router, http.MethodPost, keyPath, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create key = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, router, http.MethodPost, keyPath, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate key = %d, want 409", rec.Code)
	}

	// Exists
	rec = doRequest(t, router, http.MethodGet, keyPath, nil)
	var existsRes handlers.OpResult
	decodeData(t, rec, &existsRes)
	if existsRes.Exists == nil || !*existsRes.Exists {
		t.Fatalf("exists = %+v", existsRes)
	}

	// Lock prop 0 for update
	rec = doRequest(t, router, http.MethodPost, keyPath+"/get", map[string]any{
		"requests": []map[string]any{{"index": 0, "mode": "update"}},
	})
	var getRes handlers.OpResult
	decodeData(t, rec, &getRes)
	if getRes.Status != "none" || len(getRes.Props) != 1 {
		t.Fatalf("get = %+v", getRes)
	}
	lockID := getRes.Props[0].LockID

	// Put a value under the granted id
	value := "aGVsbG8=" // "hello"
	rec = doRequest(t, router, http.MethodPost, keyPath+"/put", map[string]any{
		"props": []map[string]any{{"index": 0, "lock_id": lockID, "value": value}},
	})
	var putRes handlers.OpResult
	decodeData(t, rec, &putRes)
	if putRes.Status != "none" {
		t.Fatalf("put = %+v", putRes)
	}

	// Second update with no wait: the put opened the lock, so it is granted
	rec = doRequest(t, router, http.MethodPost, keyPath+"/get", map[string]any{
		"requests": []map[string]any{{"index": 0, "mode": "update"}},
	})
	decodeData(t, rec, &getRes)
	if getRes.Status != "none" {
		t.Fatalf("re-lock after put = %+v", getRes)
	}
	if getRes.Props[0].Value == nil || *getRes.Props[0].Value != value {
		t.Errorf("value = %v, want %q", getRes.Props[0].Value, value)
	}

	// Remove returns the stored props
	rec = doRequest(t, router, http.MethodPost, keyPath+"/remove", map[string]any{
		"max_wait": 0, "force": true,
	})
	var removeRes handlers.OpResult
	decodeData(t, rec, &removeRes)
	if removeRes.Status != "none" || len(removeRes.Props) != 1 {
		t.Fatalf("remove = %+v", removeRes)
	}

	// Gone now
	rec = doRequest(t, router, http.MethodGet, keyPath, nil)
	decodeData(t, rec, &existsRes)
	if existsRes.Exists != nil && *existsRes.Exists {
		t.Error("key still exists after remove")
	}
}

func TestKeyDeleteQueryParams(t *testing.T) {
	router, _ := testRouter(t)
	keyPath := "/api/v1/stores/sessions/keys/" + handlers.EncodeKey([]byte("k"))

	doRequest(t, router, http.MethodPost, keyPath, nil)

	rec := doRequest(t, router, http.MethodDelete, keyPath+"?max_wait=0&force=true", nil)
	var res handlers.OpResult
	decodeData(t, rec, &res)
	if res.Status != "none" || res.Deleted == nil || !*res.Deleted {
		t.Fatalf("delete = %+v (%s)", res, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodDelete, keyPath, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete of absent key = %d, want 404", rec.Code)
	}
}

func TestUnknownStore(t *testing.T) {
	router, _ := testRouter(t)
	path := fmt.Sprintf("/api/v1/stores/ghost/keys/%s", handlers.EncodeKey([]byte("k")))
	rec := doRequest(t, router, http.MethodGet, path, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown store = %d, want 404", rec.Code)
	}
}

func TestInvalidKeyEncoding(t *testing.T) {
	router, _ := testRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/stores/sessions/keys/!!!", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid key encoding = %d, want 400", rec.Code)
	}
}
