// Package persistence stores the node collection as one serialized record.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"ideaboard/application/ports"
	"ideaboard/domain/config"
	"ideaboard/domain/core/entities"
	pkgerrors "ideaboard/pkg/errors"
	"ideaboard/pkg/observability"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single load or save
const DefaultTimeout = 5 * time.Second

// Adapter implements ports.NodePersistence on top of a KeyValueStore.
// It never returns an error: the in-memory collection is authoritative for
// the session, so storage trouble is logged and counted instead.
type Adapter struct {
	store   ports.KeyValueStore
	key     string
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Collector
}

// Option configures an Adapter
type Option func(*Adapter)

// WithKey overrides the record key
func WithKey(key string) Option {
	return func(a *Adapter) {
		a.key = key
	}
}

// WithTimeout overrides the per-operation timeout
func WithTimeout(timeout time.Duration) Option {
	return func(a *Adapter) {
		a.timeout = timeout
	}
}

// WithMetrics attaches a metrics collector
func WithMetrics(metrics *observability.Collector) Option {
	return func(a *Adapter) {
		a.metrics = metrics
	}
}

// NewAdapter creates an adapter writing to the default versioned key
func NewAdapter(store ports.KeyValueStore, logger *zap.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		store:   store,
		key:     config.DefaultDomainConfig().StorageKey,
		timeout: DefaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the record key
func (a *Adapter) Key() string {
	return a.key
}

// Load reads the stored collection. A missing record, an empty value, a
// read failure or malformed JSON all yield an empty collection.
func (a *Adapter) Load(ctx context.Context) []entities.Node {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	data, err := a.store.Get(ctx, a.key)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			a.logger.Debug("No stored workspace, starting empty", zap.String("key", a.key))
			a.metrics.RecordStorage("load", nil)
			return []entities.Node{}
		}
		a.warn("load", pkgerrors.NewStorageError("load", err))
		return []entities.Node{}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		a.logger.Warn("Stored workspace is empty, starting empty", zap.String("key", a.key))
		a.metrics.RecordStorage("load", nil)
		return []entities.Node{}
	}

	var nodes []entities.Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		a.warn("load", pkgerrors.NewStorageError("decode", err))
		return []entities.Node{}
	}
	if nodes == nil {
		nodes = []entities.Node{}
	}

	a.metrics.RecordStorage("load", nil)
	a.logger.Debug("Workspace loaded", zap.String("key", a.key), zap.Int("nodes", len(nodes)))
	return nodes
}

// Save writes the collection. Failures (quota, network, closed backend) are
// logged and dropped; the next successful save replaces the stale record.
func (a *Adapter) Save(ctx context.Context, nodes []entities.Node) {
	if nodes == nil {
		nodes = []entities.Node{}
	}

	data, err := json.Marshal(nodes)
	if err != nil {
		a.fail("save", pkgerrors.NewStorageError("encode", err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.store.Set(ctx, a.key, data); err != nil {
		a.fail("save", pkgerrors.NewStorageError("save", err))
		return
	}
	a.metrics.RecordStorage("save", nil)
}

func (a *Adapter) warn(operation string, err error) {
	a.metrics.RecordStorage(operation, err)
	a.logger.Warn("Failed to load workspace, starting empty",
		zap.String("key", a.key),
		zap.Error(err),
	)
}

func (a *Adapter) fail(operation string, err error) {
	a.metrics.RecordStorage(operation, err)
	a.logger.Error("Failed to persist workspace",
		zap.String("key", a.key),
		zap.Error(err),
	)
}
