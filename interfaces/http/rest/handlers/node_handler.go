package handlers

import (
	"context"
	"errors"
	"net/http"

	"ideaboard/application/controller"
	"ideaboard/domain/core/entities"
	pkgerrors "ideaboard/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NodeHandler handles node and selection HTTP requests
type NodeHandler struct {
	controller   *controller.GraphController
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	graph *controller.GraphController,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		controller:   graph,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// CreateNodeRequest represents the request body for creating a node.
// Text is not length-checked; the body size limit is the only bound.
type CreateNodeRequest struct {
	Text string `json:"text"`
}

// UpdateNodeRequest represents the request body for patching a node
type UpdateNodeRequest struct {
	Content *string  `json:"content,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
}

// SelectionRequest sets or clears the selection. A null id clears it.
type SelectionRequest struct {
	ID *string `json:"id"`
}

// ListNodesResponse is the full canvas state
type ListNodesResponse struct {
	Nodes      []entities.Node `json:"nodes"`
	SelectedID *string         `json:"selectedId"`
	Expanding  bool            `json:"expanding"`
}

// SelectionResponse reports the current selection
type SelectionResponse struct {
	SelectedID *string `json:"selectedId"`
}

// ListNodes handles GET /nodes
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	respondJSON(h.logger, w, http.StatusOK, ListNodesResponse{
		Nodes:      h.controller.Snapshot(),
		SelectedID: h.controller.Selected(),
		Expanding:  h.controller.InProgress(),
	})
}

// CreateNode handles POST /nodes. Blank text is ignored and answered with 204.
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := decodeJSON(r, w, &req); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}

	node, ok := h.controller.Add(r.Context(), req.Text)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(h.logger, w, http.StatusCreated, node)
}

// UpdateNode handles PATCH /nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	var req UpdateNodeRequest
	if err := decodeJSON(r, w, &req); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}

	patch := entities.NodePatch{Content: req.Content, X: req.X, Y: req.Y}
	if patch.IsEmpty() {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("at least one of content, x, y is required"))
		return
	}

	if !h.controller.Update(r.Context(), nodeID, patch) {
		h.errorHandler.Handle(w, r, pkgerrors.NewNotFoundError("node"))
		return
	}

	node, _ := h.controller.Get(nodeID)
	respondJSON(h.logger, w, http.StatusOK, node)
}

// DeleteNode handles DELETE /nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if !h.controller.Remove(r.Context(), chi.URLParam(r, "nodeID")) {
		h.errorHandler.Handle(w, r, pkgerrors.NewNotFoundError("node"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExpandNode handles POST /nodes/{nodeID}/expand.
// With ?async=true the expansion runs in the background and 202 is returned;
// progress is visible through GET /status and GET /notices.
func (h *NodeHandler) ExpandNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if _, ok := h.controller.Get(nodeID); !ok {
		h.errorHandler.Handle(w, r, pkgerrors.NewNotFoundError("node"))
		return
	}

	if r.URL.Query().Get("async") == "true" {
		results := h.controller.ExpandAsync(context.WithoutCancel(r.Context()), nodeID)
		go h.drain(nodeID, results)
		respondJSON(h.logger, w, http.StatusAccepted, map[string]interface{}{
			"nodeId":    nodeID,
			"expanding": true,
		})
		return
	}

	node, err := h.controller.AskExpand(r.Context(), nodeID)
	if err != nil {
		h.errorHandler.Handle(w, r, expansionFailure(r, err))
		return
	}
	if node == nil {
		// Removed between the lookup and the expansion
		h.errorHandler.Handle(w, r, pkgerrors.NewNotFoundError("node"))
		return
	}
	respondJSON(h.logger, w, http.StatusCreated, node)
}

// expansionFailure maps an expansion error for the client: the request's own
// deadline becomes a timeout, anything else is reported as an upstream failure.
func expansionFailure(r *http.Request, err error) error {
	switch {
	case errors.Is(r.Context().Err(), context.DeadlineExceeded):
		return pkgerrors.NewTimeoutError("expand").WithCause(err)
	case !pkgerrors.IsExpansion(err):
		return pkgerrors.NewExpansionError("expansion failed", err)
	default:
		return err
	}
}

func (h *NodeHandler) drain(nodeID string, results <-chan controller.ExpandResult) {
	for result := range results {
		if result.Err != nil {
			h.logger.Debug("Background expansion failed", zap.String("nodeID", nodeID), zap.Error(result.Err))
		}
	}
}

// GetSelection handles GET /selection
func (h *NodeHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	respondJSON(h.logger, w, http.StatusOK, SelectionResponse{SelectedID: h.controller.Selected()})
}

// SetSelection handles PUT /selection. Ids are not checked for existence.
func (h *NodeHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := decodeJSON(r, w, &req); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}

	h.controller.Select(req.ID)
	respondJSON(h.logger, w, http.StatusOK, SelectionResponse{SelectedID: h.controller.Selected()})
}
