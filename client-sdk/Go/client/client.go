package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// MIFile Go SDK
//
// A thin wrapper around the HTTP API of the MI-File server.
//
// All methods return *APIError when the server answers with a non-successful
// status code.
//
// Example usage:
//  client := NewClient("http://localhost:8080")
//  ok, err := client.HealthCheck()
//  ...

// Client is an HTTP client for the MI-File server.
type Client struct {
	BaseURL string
	Client  *http.Client
}

// APIError represents an error returned by the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mifile: %d %s", e.StatusCode, e.Message)
}

// NewClient creates a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type Collection struct {
	Name       string            `json:"name"`
	Dimension  int               `json:"dimension"`
	SpaceType  string            `json:"space_type"`
	Documents  int               `json:"documents"`
	IndexBuilt bool              `json:"index_built"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type Document struct {
	ID         string         `json:"id"`
	Vector     []float32      `json:"vector"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type SearchHit struct {
	ID         string         `json:"id"`
	Distance   float64        `json:"distance"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// QueryStats is reported once a collection's index is built.
type QueryStats struct {
	Pivots              int `json:"pivots"`
	PostingsRead        int `json:"postings_read"`
	Candidates          int `json:"candidates"`
	Pruned              int `json:"pruned"`
	Survivors           int `json:"survivors"`
	DistanceEvaluations int `json:"distance_evaluations"`
}

type SearchResult struct {
	Results []SearchHit `json:"results"`
	Stats   *QueryStats `json:"stats,omitempty"`
}

// ----------------- Low-level request helper -----------------
// request sends an HTTP request and decodes the response body into out.
func (c *Client) request(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

func collectionPath(name string, parts ...string) string {
	p := "/v1/collections/" + url.PathEscape(name)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// ----------------- API Methods -----------------

// HealthCheck checks if the server is healthy. Returns true if healthy.
func (c *Client) HealthCheck() (bool, error) {
	var result map[string]any
	if err := c.request(http.MethodGet, "/", nil, &result); err != nil {
		return false, err
	}
	return result["status"] == "ok", nil
}

// CreateCollection creates a new collection. An empty space selects the
// server default; parameters override index settings for the collection.
func (c *Client) CreateCollection(name string, dimension int, space string, parameters map[string]string) (*Collection, error) {
	payload := map[string]any{
		"name":       name,
		"dimension":  dimension,
		"space_type": space,
		"parameters": parameters,
	}
	var result Collection
	if err := c.request(http.MethodPost, "/v1/collections", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCollection retrieves collection information.
func (c *Client) GetCollection(name string) (*Collection, error) {
	var result Collection
	if err := c.request(http.MethodGet, collectionPath(name), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListCollections lists all collections.
func (c *Client) ListCollections() ([]Collection, error) {
	var result struct {
		Collections []Collection `json:"collections"`
	}
	if err := c.request(http.MethodGet, "/v1/collections", nil, &result); err != nil {
		return nil, err
	}
	return result.Collections, nil
}

// DeleteCollection deletes a collection.
func (c *Client) DeleteCollection(name string) error {
	return c.request(http.MethodDelete, collectionPath(name), nil, nil)
}

// BuildIndex builds the MI-File of a collection from its documents.
func (c *Client) BuildIndex(collection string) error {
	return c.request(http.MethodPost, collectionPath(collection, "buildindex"), nil, nil)
}

// UpsertDocument inserts a document. Existing IDs are rejected.
func (c *Client) UpsertDocument(collection string, doc Document) error {
	if collection == "" || doc.ID == "" || len(doc.Vector) == 0 {
		return fmt.Errorf("collection, document id, and vector must not be empty")
	}
	if err := c.request(http.MethodPost, collectionPath(collection, "documents"), doc, nil); err != nil {
		return fmt.Errorf("upsert document failed: %w", err)
	}
	return nil
}

// BatchUpsertDocuments inserts multiple documents; the server rejects the
// whole batch if any document is invalid.
func (c *Client) BatchUpsertDocuments(collection string, documents []Document) error {
	payload := map[string]any{"documents": documents}
	return c.request(http.MethodPost, collectionPath(collection, "documents", "batchupsert"), payload, nil)
}

// GetDocument retrieves a document.
func (c *Client) GetDocument(collection, docID string) (*Document, error) {
	var result Document
	if err := c.request(http.MethodGet, collectionPath(collection, "documents", url.PathEscape(docID)), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Contains reports whether a document with exactly this vector exists.
func (c *Client) Contains(collection string, vector []float32) (bool, error) {
	var result struct {
		Contains bool `json:"contains"`
	}
	payload := map[string]any{"vector": vector}
	if err := c.request(http.MethodPost, collectionPath(collection, "documents", "contains"), payload, &result); err != nil {
		return false, err
	}
	return result.Contains, nil
}

// SearchVectors returns the limit nearest documents to vector.
func (c *Client) SearchVectors(collection string, vector []float32, limit int) (*SearchResult, error) {
	payload := map[string]any{"vector": vector, "limit": limit}
	var result SearchResult
	if err := c.request(http.MethodPost, collectionPath(collection, "vectors", "search"), payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
