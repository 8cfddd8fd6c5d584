package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mifile/internal/config"
	pkgerrors "mifile/pkg/errors"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	conf := config.Default()
	conf.Index.ReferenceObjects = 8
	conf.Index.Ki = 4
	conf.Index.Ks = 4
	db, err := New(conf)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestCollectionOperations(t *testing.T) {
	db := newTestDB(t)

	collection, err := db.CreateCollection(&CreateCollectionOptions{
		Name:      "test_collection",
		Dimension: 128,
		Parameters: map[string]string{
			"ki": "3",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "test_collection", collection.Name)
	assert.Equal(t, "l2", string(collection.SpaceType))
	assert.Equal(t, 3, collection.IndexConfig().Ki)
	assert.Equal(t, 4, collection.IndexConfig().Ks)

	collection2, err := db.GetCollection("test_collection")
	require.NoError(t, err)
	assert.Same(t, collection, collection2)

	_, err = db.GetCollection("non_existent")
	assert.ErrorIs(t, err, pkgerrors.ErrCollectionNotFound)

	collection4, err := db.CreateCollection(&CreateCollectionOptions{Name: "test_collection", Dimension: 2})
	assert.ErrorIs(t, err, pkgerrors.ErrCollectionExists)
	assert.Nil(t, collection4)

	_, err = db.CreateCollection(&CreateCollectionOptions{Name: "a", Dimension: 2})
	require.NoError(t, err)
	names := []string{}
	for _, c := range db.ListCollections() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"a", "test_collection"}, names)

	require.NoError(t, db.DeleteCollection("test_collection"))
	_, err = db.GetCollection("test_collection")
	assert.ErrorIs(t, err, pkgerrors.ErrCollectionNotFound)
	assert.ErrorIs(t, db.DeleteCollection("test_collection"), pkgerrors.ErrCollectionNotFound)
}

func TestCreateCollection_InvalidOptions(t *testing.T) {
	db := newTestDB(t)

	tests := []struct {
		name    string
		opts    CreateCollectionOptions
		wantErr error
	}{
		{"empty name", CreateCollectionOptions{Dimension: 3}, pkgerrors.ErrInvalidConfig},
		{"zero dimension", CreateCollectionOptions{Name: "c"}, pkgerrors.ErrInvalidDimension},
		{"unknown space", CreateCollectionOptions{Name: "c", Dimension: 3, SpaceType: "ip"}, pkgerrors.ErrUnsupportedSpace},
		{"bad parameter", CreateCollectionOptions{Name: "c", Dimension: 3, Parameters: map[string]string{"ks": "x"}}, pkgerrors.ErrInvalidConfig},
		{"ki too large", CreateCollectionOptions{Name: "c", Dimension: 3, Parameters: map[string]string{"ki": "8"}}, pkgerrors.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.CreateCollection(&tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, db.ListCollections())
}

func gridDocuments(n int) []*Document {
	docs := make([]*Document, n)
	for i := range docs {
		docs[i] = &Document{
			ID:     fmt.Sprintf("doc%d", i),
			Vector: []float32{float32(i % 10), float32(i / 10)},
		}
	}
	return docs
}

func TestBuildIndex(t *testing.T) {
	db := newTestDB(t)
	_, err := db.CreateCollection(&CreateCollectionOptions{Name: "grid", Dimension: 2})
	require.NoError(t, err)

	// fewer documents than reference objects
	require.NoError(t, db.BatchUpsertDocuments(context.Background(), "grid", gridDocuments(5)))
	assert.ErrorIs(t, db.BuildIndex(context.Background(), "grid"), pkgerrors.ErrNotEnoughObjects)

	more := gridDocuments(100)[5:]
	require.NoError(t, db.BatchUpsertDocuments(context.Background(), "grid", more))
	require.NoError(t, db.BuildIndex(context.Background(), "grid"))

	c, err := db.GetCollection("grid")
	require.NoError(t, err)
	assert.True(t, c.IndexBuilt())
	assert.Equal(t, 100, c.Size())

	assert.ErrorIs(t, db.BuildIndex(context.Background(), "grid"), pkgerrors.ErrIndexAlreadyBuilt)
	assert.ErrorIs(t, db.BuildIndex(context.Background(), "missing"), pkgerrors.ErrCollectionNotFound)
}

func TestBuildIndexMaxPosDiff(t *testing.T) {
	db := newTestDB(t)
	docs := gridDocuments(40)

	for _, tt := range []struct {
		name   string
		params map[string]string
		want   int
	}{
		{"default window is ki", nil, 4},
		{"exact rank window", map[string]string{"max_pos_diff": "0"}, 0},
		{"narrow window", map[string]string{"max_pos_diff": "2"}, 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			name := "window_" + tt.name
			_, err := db.CreateCollection(&CreateCollectionOptions{Name: name, Dimension: 2, Parameters: tt.params})
			require.NoError(t, err)
			batch := make([]*Document, len(docs))
			for i, d := range docs {
				batch[i] = &Document{ID: d.ID, Vector: d.Vector}
			}
			require.NoError(t, db.BatchUpsertDocuments(context.Background(), name, batch))
			require.NoError(t, db.BuildIndex(context.Background(), name))

			c, err := db.GetCollection(name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.mifile.MaxPosDiff())
		})
	}
}
