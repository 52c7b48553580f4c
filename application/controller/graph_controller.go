// Package controller composes the node store, the expansion service and the
// import/export codec into the operations a presentation layer invokes.
package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"ideaboard/application/codec"
	"ideaboard/application/ports"
	"ideaboard/application/store"
	"ideaboard/domain/config"
	"ideaboard/domain/core/entities"
	pkgerrors "ideaboard/pkg/errors"
	"ideaboard/pkg/observability"

	"go.uber.org/zap"
)

// ExpandResult is delivered by ExpandAsync once the expansion settles.
// Node is nil when the source node was missing or the expansion failed.
type ExpandResult struct {
	Node *entities.Node
	Err  error
}

// GraphController owns no state besides the in-progress counter
type GraphController struct {
	store    *store.NodeStore
	expander ports.Expander
	notifier ports.Notifier
	cfg      *config.DomainConfig
	logger   *zap.Logger
	metrics  *observability.Collector

	inFlight atomic.Int32
}

// NewGraphController creates a controller. Nil cfg uses the defaults and a
// nil notifier logs notices.
func NewGraphController(
	nodeStore *store.NodeStore,
	expander ports.Expander,
	notifier ports.Notifier,
	cfg *config.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Collector,
) *GraphController {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &GraphController{
		store:    nodeStore,
		expander: expander,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
	}
}

// Add creates a node from user text
func (c *GraphController) Add(ctx context.Context, text string) (entities.Node, bool) {
	return c.store.Add(ctx, text)
}

// Update patches a node
func (c *GraphController) Update(ctx context.Context, id string, patch entities.NodePatch) bool {
	return c.store.Update(ctx, id, patch)
}

// Remove deletes a node
func (c *GraphController) Remove(ctx context.Context, id string) bool {
	return c.store.Remove(ctx, id)
}

// Select sets or clears the selection
func (c *GraphController) Select(id *string) {
	c.store.Select(id)
}

// Snapshot returns the current collection
func (c *GraphController) Snapshot() []entities.Node {
	return c.store.Snapshot()
}

// Selected returns the current selection
func (c *GraphController) Selected() *string {
	return c.store.Selected()
}

// Get returns a single node
func (c *GraphController) Get(id string) (entities.Node, bool) {
	return c.store.Get(id)
}

// InProgress reports whether any expansion is in flight. It is advisory;
// concurrent expansions are not prevented.
func (c *GraphController) InProgress() bool {
	return c.inFlight.Load() > 0
}

// AskExpand derives a new node from the node with the given id and inserts
// it, offset from its source, at the front of the collection.
//
// A missing source node is a no-op and returns (nil, nil). On failure no node
// is created, an error notice is sent and the error is returned.
func (c *GraphController) AskExpand(ctx context.Context, nodeID string) (*entities.Node, error) {
	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	source, ok := c.store.Get(nodeID)
	if !ok {
		c.logger.Debug("Ignoring expansion of unknown node", zap.String("nodeID", nodeID))
		return nil, nil
	}

	c.metrics.ExpansionStarted()
	start := time.Now()

	suggestion, err := c.expander.Expand(ctx, source.Content)
	outcome := observability.OutcomeSuccess
	switch {
	case errors.Is(err, ports.ErrNoSuggestion):
		suggestion = c.cfg.NoSuggestionPlaceholder
		outcome = observability.OutcomeNoSuggestion
	case err != nil:
		c.metrics.ExpansionFinished(observability.OutcomeFailure, time.Since(start))
		c.logger.Warn("Expansion failed", zap.String("nodeID", nodeID), zap.Error(err))
		c.notifier.Notify(ports.Notice{
			Level:   ports.NoticeError,
			Message: "Could not expand idea: " + expansionMessage(err),
			NodeID:  nodeID,
		})
		return nil, err
	}
	c.metrics.ExpansionFinished(outcome, time.Since(start))

	pos := source.Position().Offset(c.cfg.ExpansionOffsetX, c.cfg.ExpansionOffsetY)
	node := entities.Node{
		ID:      c.store.NewID(),
		Content: suggestion,
		X:       pos.X,
		Y:       pos.Y,
	}
	c.store.Insert(ctx, node)

	c.logger.Info("Node expanded",
		zap.String("sourceID", nodeID),
		zap.String("nodeID", node.ID),
		zap.String("outcome", outcome),
	)
	return &node, nil
}

// ExpandAsync runs AskExpand in the background. The channel receives exactly
// one result and is then closed. Cancelling ctx aborts the remote call.
func (c *GraphController) ExpandAsync(ctx context.Context, nodeID string) <-chan ExpandResult {
	// Count before returning so callers observe InProgress immediately.
	c.inFlight.Add(1)

	results := make(chan ExpandResult, 1)
	go func() {
		defer close(results)
		defer c.inFlight.Add(-1)

		node, err := c.AskExpand(ctx, nodeID)
		results <- ExpandResult{Node: node, Err: err}
	}()
	return results
}

// Export encodes the current collection
func (c *GraphController) Export() ([]byte, error) {
	return codec.Export(c.store.Snapshot())
}

// Import replaces the collection with the nodes in data. On any error the
// collection is left untouched and an error notice is sent.
func (c *GraphController) Import(ctx context.Context, data []byte) error {
	nodes, err := codec.Import(data)
	if err != nil {
		c.metrics.RecordImport(observability.OutcomeFailure)
		c.logger.Warn("Import rejected", zap.Error(err))
		c.notifier.Notify(ports.Notice{
			Level:   ports.NoticeError,
			Message: importMessage(err),
		})
		return err
	}

	c.store.ReplaceAll(ctx, nodes)
	c.metrics.RecordImport(observability.OutcomeSuccess)
	c.notifier.Notify(ports.Notice{
		Level:   ports.NoticeInfo,
		Message: "Imported ideas",
	})
	return nil
}

func expansionMessage(err error) string {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}

func importMessage(err error) string {
	switch {
	case pkgerrors.IsInvalidFormat(err):
		return "Invalid file format"
	case pkgerrors.IsParse(err):
		return "Error reading file: " + pkgerrors.GetAppError(err).Message
	default:
		return "Import failed: " + err.Error()
	}
}
