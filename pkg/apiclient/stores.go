package apiclient

import (
	"net/http"
	"net/url"
)

// StoreInfo describes one store as reported by the server.
type StoreInfo struct {
	Name        string   `json:"name"`
	ID          string   `json:"id"`
	Props       []string `json:"props"`
	Timeout     string   `json:"timeout"`
	LockTimeout string   `json:"lock_timeout"`
	Entries     int      `json:"entries"`
}

// CreateStoreRequest is the request to create a store.
type CreateStoreRequest struct {
	Name        string   `json:"name"`
	Props       []string `json:"props"`
	Timeout     string   `json:"timeout,omitempty"`
	LockTimeout string   `json:"lock_timeout,omitempty"`
}

// ListStores returns all registered stores.
func (c *Client) ListStores() ([]StoreInfo, error) {
	var result struct {
		Stores []StoreInfo `json:"stores"`
	}
	if err := c.do(http.MethodGet, "/api/v1/stores", nil, &result); err != nil {
		return nil, err
	}
	return result.Stores, nil
}

// CreateStore creates and registers a new store.
func (c *Client) CreateStore(req CreateStoreRequest) (*StoreInfo, error) {
	var info StoreInfo
	if err := c.do(http.MethodPost, "/api/v1/stores", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetStore returns one store's info.
func (c *Client) GetStore(name string) (*StoreInfo, error) {
	var info StoreInfo
	if err := c.do(http.MethodGet, "/api/v1/stores/"+url.PathEscape(name), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteStore unregisters and clears a store.
func (c *Client) DeleteStore(name string) error {
	return c.do(http.MethodDelete, "/api/v1/stores/"+url.PathEscape(name), nil, nil)
}

// ClearStore drops every entry of a store, keeping it registered.
func (c *Client) ClearStore(name string) error {
	return c.do(http.MethodPost, "/api/v1/stores/"+url.PathEscape(name)+"/clear", nil, nil)
}
