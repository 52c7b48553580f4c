package handlers

import (
	"errors"
	"net/http"

	"ideaboard/application/ports"
	"ideaboard/infrastructure/expansion"
	pkgerrors "ideaboard/pkg/errors"
	"ideaboard/pkg/utils"

	"go.uber.org/zap"
)

// ExpandHandler serves the expansion endpoint itself, so a deployment can
// act as its own suggestion source.
type ExpandHandler struct {
	expander     ports.Expander
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewExpandHandler creates a new expand handler
func NewExpandHandler(expander ports.Expander, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *ExpandHandler {
	return &ExpandHandler{
		expander:     expander,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Expand handles POST /api/expand. A missing suggestion is answered with a
// null suggestion field.
func (h *ExpandHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var req expansion.Request
	if err := decodeJSON(r, w, &req); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	suggestion, err := h.expander.Expand(r.Context(), req.Text)
	switch {
	case errors.Is(err, ports.ErrNoSuggestion):
		respondJSON(h.logger, w, http.StatusOK, expansion.Response{})
	case err != nil:
		h.errorHandler.Handle(w, r, expansionFailure(r, err))
	default:
		respondJSON(h.logger, w, http.StatusOK, expansion.Response{Suggestion: &suggestion})
	}
}
