package apiclient

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
)

// PropRequest is one lock request in a Get call.
type PropRequest struct {
	Index int    `json:"index"`
	Mode  string `json:"mode"`
}

// PropEntry is one property crossing the API boundary. Value is base64 in
// transit; nil means "no value".
type PropEntry struct {
	Index  int     `json:"index"`
	LockID int32   `json:"lock_id"`
	Value  *string `json:"value"`
}

// DecodedValue returns the raw value bytes, or nil when no value is set.
func (p PropEntry) DecodedValue() ([]byte, error) {
	if p.Value == nil {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(*p.Value)
}

// NewPropEntry builds an entry carrying a value.
func NewPropEntry(index int, lockID int32, value []byte) PropEntry {
	v := base64.StdEncoding.EncodeToString(value)
	return PropEntry{Index: index, LockID: lockID, Value: &v}
}

// NewClearEntry builds an entry that only clears the lock.
func NewClearEntry(index int, lockID int32) PropEntry {
	return PropEntry{Index: index, LockID: lockID}
}

// OpResult is the outcome of a key operation.
type OpResult struct {
	Code    int         `json:"code"`
	Status  string      `json:"status"`
	Props   []PropEntry `json:"props,omitempty"`
	Deleted *bool       `json:"deleted,omitempty"`
	Exists  *bool       `json:"exists,omitempty"`
	Seconds *int64      `json:"seconds,omitempty"`
}

func keyPath(store string, key []byte) string {
	return fmt.Sprintf("/api/v1/stores/%s/keys/%s",
		url.PathEscape(store),
		base64.RawURLEncoding.EncodeToString(key))
}

// CreateKey inserts a fresh entry for key if absent.
func (c *Client) CreateKey(store string, key []byte) (*OpResult, error) {
	var res OpResult
	if err := c.do(http.MethodPost, keyPath(store, key), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Exists reports key presence and seconds since last touch.
func (c *Client) Exists(store string, key []byte) (*OpResult, error) {
	var res OpResult
	if err := c.do(http.MethodGet, keyPath(store, key), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Get acquires the requested property locks and reads current values.
// maxWait is in whole seconds; zero means no wait.
func (c *Client) Get(store string, key []byte, requests []PropRequest, maxWait int64, force bool) (*OpResult, error) {
	body := map[string]any{
		"requests": requests,
		"max_wait": maxWait,
		"force":    force,
	}
	var res OpResult
	if err := c.do(http.MethodPost, keyPath(store, key)+"/get", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Put writes property values (or clears locks) under granted lock ids.
func (c *Client) Put(store string, key []byte, props []PropEntry) (*OpResult, error) {
	body := map[string]any{"props": props}
	var res OpResult
	if err := c.do(http.MethodPost, keyPath(store, key)+"/put", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteKey removes the entry once no property holds a live lock.
func (c *Client) DeleteKey(store string, key []byte, maxWait int64, force bool) (*OpResult, error) {
	path := fmt.Sprintf("%s?max_wait=%d&force=%t", keyPath(store, key), maxWait, force)
	var res OpResult
	if err := c.do(http.MethodDelete, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// RemoveKey removes the entry and returns every assigned property.
func (c *Client) RemoveKey(store string, key []byte, maxWait int64, force bool) (*OpResult, error) {
	body := map[string]any{"max_wait": maxWait, "force": force}
	var res OpResult
	if err := c.do(http.MethodPost, keyPath(store, key)+"/remove", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
