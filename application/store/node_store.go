// Package store owns the authoritative node collection and selection.
//
// Nodes are kept newest-first. Every mutation is followed by a save of the
// resulting snapshot; save failures are absorbed by the persistence port, so
// none of the operations here return storage errors.
package store

import (
	"context"
	"sync"

	"ideaboard/application/ports"
	"ideaboard/domain/config"
	"ideaboard/domain/core/entities"
	"ideaboard/domain/core/valueobjects"
	"ideaboard/pkg/observability"

	"go.uber.org/zap"
)

// NodeStore is the single source of truth for the canvas
type NodeStore struct {
	mu       sync.RWMutex
	nodes    []entities.Node
	selected *string

	persistence ports.NodePersistence
	newID       valueobjects.IDGenerator
	random      valueobjects.RandomSource
	spawn       valueobjects.SpawnRegion
	logger      *zap.Logger
	metrics     *observability.Collector
}

// Option configures a NodeStore
type Option func(*NodeStore)

// WithIDGenerator replaces the UUID generator
func WithIDGenerator(gen valueobjects.IDGenerator) Option {
	return func(s *NodeStore) {
		s.newID = gen
	}
}

// WithRandomSource replaces the spawn position source
func WithRandomSource(src valueobjects.RandomSource) Option {
	return func(s *NodeStore) {
		s.random = src
	}
}

// WithDomainConfig applies the spawn region from cfg
func WithDomainConfig(cfg *config.DomainConfig) Option {
	return func(s *NodeStore) {
		s.spawn = spawnRegion(cfg)
	}
}

// WithMetrics attaches a metrics collector
func WithMetrics(metrics *observability.Collector) Option {
	return func(s *NodeStore) {
		s.metrics = metrics
	}
}

func spawnRegion(cfg *config.DomainConfig) valueobjects.SpawnRegion {
	return valueobjects.SpawnRegion{
		MinX: cfg.SpawnMinX,
		MaxX: cfg.SpawnMaxX,
		MinY: cfg.SpawnMinY,
		MaxY: cfg.SpawnMaxY,
	}
}

// NewNodeStore creates an empty store. Call Load to initialize it from storage.
func NewNodeStore(persistence ports.NodePersistence, logger *zap.Logger, opts ...Option) *NodeStore {
	s := &NodeStore{
		nodes:       []entities.Node{},
		persistence: persistence,
		newID:       valueobjects.NewNodeID,
		random:      valueobjects.NewTimeSource(),
		spawn:       spawnRegion(config.DefaultDomainConfig()),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the stored one and clears the
// selection. It does not write back.
func (s *NodeStore) Load(ctx context.Context) {
	nodes := s.persistence.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = nodes
	s.selected = nil
	s.metrics.RecordCanvasSize(len(s.nodes))
	s.logger.Info("Workspace initialized", zap.Int("nodes", len(s.nodes)))
}

// Add creates a node from user text at a random spawn position, puts it
// first and selects it. Text that is empty after trimming is ignored and
// ok is false.
func (s *NodeStore) Add(ctx context.Context, text string) (node entities.Node, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok = entities.NewNode(s.newID(), text, s.spawn.RandomPosition(s.random))
	if !ok {
		s.logger.Debug("Ignoring add with empty text")
		return entities.Node{}, false
	}

	s.insertLocked(ctx, node)
	return node, true
}

// Insert puts a fully built node first and selects it. The node is taken
// as given; callers that build nodes from user text should use Add.
func (s *NodeStore) Insert(ctx context.Context, node entities.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertLocked(ctx, node)
}

func (s *NodeStore) insertLocked(ctx context.Context, node entities.Node) {
	nodes := make([]entities.Node, 0, len(s.nodes)+1)
	nodes = append(nodes, node)
	s.nodes = append(nodes, s.nodes...)

	id := node.ID
	s.selected = &id

	s.metrics.RecordNodeCreated(len(s.nodes))
	s.logger.Debug("Node created", zap.String("nodeID", node.ID))
	s.saveLocked(ctx)
}

// Update merges patch into the node with the given id. Unknown ids are
// ignored. Content is not validated, so an update may empty it.
func (s *NodeStore) Update(ctx context.Context, id string, patch entities.NodePatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		s.logger.Debug("Ignoring update of unknown node", zap.String("nodeID", id))
		return false
	}

	s.nodes[i] = s.nodes[i].Apply(patch)
	s.saveLocked(ctx)
	return true
}

// Remove deletes the node with the given id, clearing the selection if it
// pointed at it. Unknown ids are ignored.
func (s *NodeStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		s.logger.Debug("Ignoring remove of unknown node", zap.String("nodeID", id))
		return false
	}

	nodes := make([]entities.Node, 0, len(s.nodes)-1)
	nodes = append(nodes, s.nodes[:i]...)
	s.nodes = append(nodes, s.nodes[i+1:]...)

	if s.selected != nil && *s.selected == id {
		s.selected = nil
	}

	s.metrics.RecordNodeRemoved(len(s.nodes))
	s.saveLocked(ctx)
	return true
}

// Select sets the selection verbatim. No existence check is made; nil clears it.
func (s *NodeStore) Select(id *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == nil {
		s.selected = nil
		return
	}
	selected := *id
	s.selected = &selected
}

// ReplaceAll discards the collection and selection and substitutes nodes
// verbatim. Callers validate the document shape beforehand.
func (s *NodeStore) ReplaceAll(ctx context.Context, nodes []entities.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := make([]entities.Node, len(nodes))
	copy(replaced, nodes)
	s.nodes = replaced
	s.selected = nil

	s.metrics.RecordCanvasSize(len(s.nodes))
	s.logger.Info("Workspace replaced", zap.Int("nodes", len(s.nodes)))
	s.saveLocked(ctx)
}

// Snapshot returns a copy of the collection, newest first
func (s *NodeStore) Snapshot() []entities.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

// Selected returns a copy of the selected id, or nil
func (s *NodeStore) Selected() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == nil {
		return nil
	}
	id := *s.selected
	return &id
}

// Get returns the node with the given id
func (s *NodeStore) Get(id string) (entities.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return entities.Node{}, false
	}
	return s.nodes[i], true
}

// NewID returns a fresh id from the store's generator
func (s *NodeStore) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.newID()
}

// Len returns the number of nodes
func (s *NodeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.nodes)
}

func (s *NodeStore) indexLocked(id string) int {
	for i, n := range s.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *NodeStore) snapshotLocked() []entities.Node {
	out := make([]entities.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// saveLocked writes while the lock is held so records land in mutation order
func (s *NodeStore) saveLocked(ctx context.Context) {
	s.persistence.Save(context.WithoutCancel(ctx), s.snapshotLocked())
}
