package server

import (
	"mifile/internal/index"
)

// CreateCollectionRequest represents the request body for creating a collection
type CreateCollectionRequest struct {
	Name       string            `json:"name" binding:"required"`
	Dimension  int               `json:"dimension" binding:"required"`
	SpaceType  string            `json:"space_type,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// GetCollectionResponse represents the response body for getting a collection
type GetCollectionResponse struct {
	Name       string            `json:"name"`
	Dimension  int               `json:"dimension"`
	SpaceType  string            `json:"space_type"`
	Documents  int               `json:"documents"`
	IndexBuilt bool              `json:"index_built"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// ListCollectionsResponse represents the response body for listing collections
type ListCollectionsResponse struct {
	Collections []GetCollectionResponse `json:"collections"`
}

// UpsertDocumentRequest represents the request body for inserting a document
type UpsertDocumentRequest struct {
	ID         string                 `json:"id" binding:"required"`
	Vector     []float32              `json:"vector" binding:"required"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

type BatchUpsertRequest struct {
	Documents []UpsertDocumentRequest `json:"documents" binding:"required"`
}

type SearchVectorRequest struct {
	Vector []float32 `json:"vector" binding:"required"`
	Limit  int       `json:"limit"`
}

// SearchResponse represents the response body for search results
type SearchResponse struct {
	Results []SearchResult    `json:"results"`
	Stats   *index.QueryStats `json:"stats,omitempty"`
}

// SearchResult represents a single search result
type SearchResult struct {
	ID         string         `json:"id"`
	Distance   float64        `json:"distance"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type ContainsRequest struct {
	Vector []float32 `json:"vector" binding:"required"`
}

type ContainsResponse struct {
	Contains bool `json:"contains"`
}
