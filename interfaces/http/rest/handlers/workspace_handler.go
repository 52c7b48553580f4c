package handlers

import (
	"fmt"
	"io"
	"net/http"

	"ideaboard/application/codec"
	"ideaboard/application/controller"
	"ideaboard/application/ports"
	pkgerrors "ideaboard/pkg/errors"

	"go.uber.org/zap"
)

// WorkspaceHandler handles whole-workspace requests: export, import, status
// and notices.
type WorkspaceHandler struct {
	controller   *controller.GraphController
	notices      *controller.NoticeLog
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(
	graph *controller.GraphController,
	notices *controller.NoticeLog,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *WorkspaceHandler {
	return &WorkspaceHandler{
		controller:   graph,
		notices:      notices,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// StatusResponse reports advisory progress state
type StatusResponse struct {
	Expanding bool `json:"expanding"`
	Nodes     int  `json:"nodes"`
}

// NoticesResponse lists recent notices, oldest first
type NoticesResponse struct {
	Notices []ports.Notice `json:"notices"`
}

// Export handles GET /export
func (h *WorkspaceHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.controller.Export()
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.Wrap(err, "export failed"))
		return
	}

	w.Header().Set("Content-Type", codec.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", codec.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write export", zap.Error(err))
	}
}

// Import handles POST /import. The body is the exported document.
func (h *WorkspaceHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("Failed to read request body: "+err.Error()))
		return
	}

	if err := h.controller.Import(r.Context(), data); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	respondJSON(h.logger, w, http.StatusOK, StatusResponse{
		Expanding: h.controller.InProgress(),
		Nodes:     len(h.controller.Snapshot()),
	})
}

// Status handles GET /status
func (h *WorkspaceHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(h.logger, w, http.StatusOK, StatusResponse{
		Expanding: h.controller.InProgress(),
		Nodes:     len(h.controller.Snapshot()),
	})
}

// Notices handles GET /notices
func (h *WorkspaceHandler) Notices(w http.ResponseWriter, r *http.Request) {
	notices := []ports.Notice{}
	if h.notices != nil {
		notices = h.notices.Recent()
	}
	respondJSON(h.logger, w, http.StatusOK, NoticesResponse{Notices: notices})
}
