package db

import (
	"sort"
	"sync"

	"mifile/internal/config"
	pkgerrors "mifile/pkg/errors"
	"mifile/pkg/logger"
)

// DB keeps named collections in memory.
type DB struct {
	conf        *config.Config
	mu          sync.RWMutex
	collections map[string]*Collection
}

func New(conf *config.Config) (*DB, error) {
	if conf == nil {
		conf = config.Default()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &DB{
		conf:        conf,
		collections: make(map[string]*Collection),
	}, nil
}

// Close drops every collection.
func (db *DB) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()
	clear(db.collections)
	logger.Info("db closed")
}

func (db *DB) collection(name string) (*Collection, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.collections[name]
	if !ok {
		return nil, pkgerrors.ErrCollectionNotFound
	}
	return c, nil
}

// GetCollection gets a collection
func (db *DB) GetCollection(name string) (*Collection, error) {
	return db.collection(name)
}

// DeleteCollection deletes a collection with its documents and index
func (db *DB) DeleteCollection(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.collections[name]; !ok {
		return pkgerrors.ErrCollectionNotFound
	}
	delete(db.collections, name)
	logger.Info("collection deleted", "name", name)
	return nil
}

// ListCollections lists all collections ordered by name
func (db *DB) ListCollections() []*Collection {
	db.mu.RLock()
	defer db.mu.RUnlock()
	collections := make([]*Collection, 0, len(db.collections))
	for _, c := range db.collections {
		collections = append(collections, c)
	}
	sort.Slice(collections, func(i, j int) bool { return collections[i].Name < collections[j].Name })
	return collections
}
