package db

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"mifile/internal/index"
	pkgerrors "mifile/pkg/errors"
)

// Document represents a document
type Document struct {
	ID         string         `json:"id"`
	Vector     []float32      `json:"vector"`
	Parameters map[string]any `json:"parameters"`
	Dimension  int            `json:"dimension"`
}

// SearchResult holds documents ascending by distance to the query.
// Stats is nil when the search ran on the exact index.
type SearchResult struct {
	Documents []*Document
	Distances []float64
	Stats     *index.QueryStats
}

func vectorKey(d *Document) []byte {
	buf := make([]byte, 4*len(d.Vector))
	for i, v := range d.Vector {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func sameVector(a, b *Document) bool {
	if len(a.Vector) != len(b.Vector) {
		return false
	}
	for i := range a.Vector {
		if a.Vector[i] != b.Vector[i] {
			return false
		}
	}
	return true
}

func (c *Collection) validate(doc *Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document without id", pkgerrors.ErrInvalidConfig)
	}
	if len(doc.Vector) != c.Dimension {
		return fmt.Errorf("%w: document %s has %d, collection %s expects %d",
			pkgerrors.ErrInvalidDimension, doc.ID, len(doc.Vector), c.Name, c.Dimension)
	}
	return nil
}

// UpsertDocument inserts a document. Documents are insert-only: an existing
// ID is rejected.
func (db *DB) UpsertDocument(collectionName string, doc *Document) error {
	return db.BatchUpsertDocuments(context.Background(), collectionName, []*Document{doc})
}

// BatchUpsertDocuments 批量插入文档，任一文档不合法则整批拒绝
func (db *DB) BatchUpsertDocuments(ctx context.Context, collectionName string, docs []*Document) error {
	c, err := db.collection(collectionName)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if err := c.validate(doc); err != nil {
			return err
		}
		if _, exists := c.docs[doc.ID]; exists {
			return fmt.Errorf("%w: %s", pkgerrors.ErrDocumentExists, doc.ID)
		}
		if _, dup := seen[doc.ID]; dup {
			return fmt.Errorf("%w: %s repeated in batch", pkgerrors.ErrDocumentExists, doc.ID)
		}
		seen[doc.ID] = struct{}{}
		doc.Dimension = c.Dimension
	}

	if c.mifile != nil {
		if err := c.mifile.AddBatch(ctx, docs); err != nil {
			return fmt.Errorf("failed to batch update vector index: %w", err)
		}
	}
	if err := c.flat.AddBatch(ctx, docs); err != nil {
		return err
	}
	for _, doc := range docs {
		c.docs[doc.ID] = doc
	}
	return nil
}

// GetDocument gets a document
func (db *DB) GetDocument(collectionName string, id string) (*Document, error) {
	c, err := db.collection(collectionName)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, pkgerrors.ErrDocumentNotFound
	}
	return doc, nil
}

// searcher returns the index answering queries for the collection.
func (c *Collection) searcher() (index.NeighbourIndex[*Document], *index.MIFile[*Document]) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.mifile != nil {
		return c.mifile, c.mifile
	}
	return c.flat, nil
}

// SearchVectors returns the k nearest documents to vector
func (db *DB) SearchVectors(collectionName string, vector []float32, k int) (*SearchResult, error) {
	c, err := db.collection(collectionName)
	if err != nil {
		return nil, err
	}
	if len(vector) != c.Dimension {
		return nil, fmt.Errorf("%w: query has %d, collection %s expects %d",
			pkgerrors.ErrInvalidDimension, len(vector), c.Name, c.Dimension)
	}

	query := &Document{Vector: vector}
	var (
		results []index.Result[*Document]
		stats   *index.QueryStats
	)
	idx, mifile := c.searcher()
	if mifile != nil {
		var s index.QueryStats
		results, s, err = mifile.NearestNWithStats(query, k)
		stats = &s
	} else {
		results, err = idx.NearestN(query, k)
	}
	if err != nil {
		return nil, err
	}

	res := &SearchResult{
		Documents: index.MapValues(results),
		Distances: make([]float64, len(results)),
		Stats:     stats,
	}
	for i, r := range results {
		res.Distances[i] = r.Distance
	}
	return res, nil
}

// ContainsVector reports whether a document with exactly this vector exists.
// After BuildIndex the answer comes from the MI-File and may miss a document
// that is not among the candidates of its own query.
func (db *DB) ContainsVector(collectionName string, vector []float32) (bool, error) {
	c, err := db.collection(collectionName)
	if err != nil {
		return false, err
	}
	if len(vector) != c.Dimension {
		return false, fmt.Errorf("%w: query has %d, collection %s expects %d",
			pkgerrors.ErrInvalidDimension, len(vector), c.Name, c.Dimension)
	}

	query := &Document{Vector: vector}
	if _, mifile := c.searcher(); mifile != nil {
		return mifile.Contains(query)
	}
	for _, doc := range c.flat.Objects() {
		if sameVector(doc, query) {
			return true, nil
		}
	}
	return false, nil
}
