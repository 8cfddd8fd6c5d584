package db

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"mifile/internal/config"
	"mifile/internal/index"
	"mifile/internal/metric"
	pkgerrors "mifile/pkg/errors"
	"mifile/pkg/logger"
)

// CreateCollectionOptions describes a new collection. Parameters may
// override the configured index settings for this collection: ki, ks,
// reference_objects, max_pos_diff, amplification, seed.
type CreateCollectionOptions struct {
	Name       string
	Dimension  int
	SpaceType  string
	Parameters map[string]string
}

// Collection holds documents of one dimension compared in one space.
// Until BuildIndex it answers searches exactly; afterwards through the
// MI-File.
type Collection struct {
	Name       string
	Dimension  int
	SpaceType  metric.SpaceType
	Parameters map[string]string

	indexConf config.IndexConfig
	metric    metric.Metric[*Document]

	mu     sync.RWMutex
	docs   map[string]*Document
	flat   *index.Flat[*Document]
	mifile *index.MIFile[*Document]
}

// CreateCollection creates a new collection
func (db *DB) CreateCollection(opts *CreateCollectionOptions) (*Collection, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("%w: empty collection name", pkgerrors.ErrInvalidConfig)
	}
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("%w: %d", pkgerrors.ErrInvalidDimension, opts.Dimension)
	}
	space := metric.SpaceType(opts.SpaceType)
	if space == "" {
		space = metric.SpaceType(db.conf.Index.Space)
	}
	vm, ok := metric.ForSpace(space)
	if !ok {
		return nil, fmt.Errorf("%w: %q", pkgerrors.ErrUnsupportedSpace, space)
	}
	indexConf, err := applyParameters(db.conf.Index, opts.Parameters)
	if err != nil {
		return nil, err
	}

	docMetric := metric.MetricFunc[*Document](func(a, b *Document) float64 {
		return vm.Distance(a.Vector, b.Vector)
	})
	collection := &Collection{
		Name:       opts.Name,
		Dimension:  opts.Dimension,
		SpaceType:  space,
		Parameters: opts.Parameters,
		indexConf:  indexConf,
		metric:     docMetric,
		docs:       make(map[string]*Document),
		flat:       index.NewFlat[*Document](docMetric),
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.collections[opts.Name]; exists {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrCollectionExists, opts.Name)
	}
	db.collections[opts.Name] = collection
	logger.Info("collection created", "name", opts.Name, "dimension", opts.Dimension, "space", space)
	return collection, nil
}

// applyParameters overrides the index settings named in params and
// validates the result.
func applyParameters(base config.IndexConfig, params map[string]string) (config.IndexConfig, error) {
	conf := base
	ints := map[string]*int{
		"ki":                &conf.Ki,
		"ks":                &conf.Ks,
		"reference_objects": &conf.ReferenceObjects,
		"max_pos_diff":      &conf.MaxPosDiff,
		"amplification":     &conf.Amplification,
	}
	for key, value := range params {
		if dst, ok := ints[key]; ok {
			n, err := strconv.Atoi(value)
			if err != nil {
				return conf, fmt.Errorf("%w: parameter %s=%q", pkgerrors.ErrInvalidConfig, key, value)
			}
			*dst = n
			continue
		}
		if key == "seed" {
			seed, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return conf, fmt.Errorf("%w: parameter seed=%q", pkgerrors.ErrInvalidConfig, value)
			}
			conf.Seed = seed
		}
	}

	check := config.Default()
	check.Index = conf
	if err := check.Validate(); err != nil {
		return conf, err
	}
	return conf, nil
}

// Size returns the number of documents.
func (c *Collection) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// IndexBuilt reports whether searches go through the MI-File.
func (c *Collection) IndexBuilt() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mifile != nil
}

// IndexConfig returns the settings BuildIndex uses.
func (c *Collection) IndexConfig() config.IndexConfig {
	return c.indexConf
}

// BuildIndex samples reference objects from the stored documents and
// indexes all of them in an MI-File. Documents added later go to both
// indexes.
func (db *DB) BuildIndex(ctx context.Context, name string) error {
	c, err := db.collection(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mifile != nil {
		return pkgerrors.ErrIndexAlreadyBuilt
	}

	conf := c.indexConf
	docs := c.flat.Objects()
	refs, err := index.SelectReferenceObjects(docs, conf.ReferenceObjects, conf.Seed)
	if err != nil {
		return err
	}

	opts := []index.Option[*Document]{
		index.WithAmplification[*Document](conf.Amplification),
		index.WithBuildWorkers[*Document](db.conf.Index.BuildWorkers),
		index.WithKeyFunc(vectorKey),
		index.WithEqual(sameVector),
	}
	if conf.MaxPosDiff >= 0 {
		opts = append(opts, index.WithMaxPosDiff[*Document](conf.MaxPosDiff))
	}
	mifile, err := index.New(c.metric, refs, conf.Ki, conf.Ks, opts...)
	if err != nil {
		return err
	}
	if err := mifile.AddBatch(ctx, docs); err != nil {
		return err
	}
	c.mifile = mifile

	logger.Info("index built", "collection", name, "documents", len(docs),
		"referenceObjects", len(refs), "ki", conf.Ki, "ks", conf.Ks)
	return nil
}
