package rest

import (
	"net/http"
	"time"

	"ideaboard/application/controller"
	"ideaboard/application/ports"
	"ideaboard/interfaces/http/rest/handlers"
	"ideaboard/interfaces/http/rest/middleware"
	pkgerrors "ideaboard/pkg/errors"
	"ideaboard/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Options toggles optional router features
type Options struct {
	EnableCORS     bool
	AllowedOrigins []string
	Debug          bool

	// RequestTimeout bounds each request; zero disables it
	RequestTimeout time.Duration
}

// Router creates and configures the HTTP router
type Router struct {
	controller *controller.GraphController
	notices    *controller.NoticeLog
	expander   ports.Expander
	metrics    *observability.Collector
	logger     *zap.Logger
	opts       Options
}

// NewRouter creates a new router instance. expander backs the server's own
// /api/expand endpoint; metrics may be nil.
func NewRouter(
	graph *controller.GraphController,
	notices *controller.NoticeLog,
	expander ports.Expander,
	metrics *observability.Collector,
	logger *zap.Logger,
	opts Options,
) *Router {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	return &Router{
		controller: graph,
		notices:    notices,
		expander:   expander,
		metrics:    metrics,
		logger:     logger,
		opts:       opts,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.metrics.Middleware)
	if rt.opts.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(rt.opts.RequestTimeout))
	}

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.opts.Debug)
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", rt.healthCheck)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	// The server answers its own expansion endpoint
	router.Post("/api/expand", handlers.NewExpandHandler(rt.expander, errorHandler, rt.logger).Expand)

	router.Route("/api/v1", func(r chi.Router) {
		nodeHandler := handlers.NewNodeHandler(rt.controller, errorHandler, rt.logger)
		workspaceHandler := handlers.NewWorkspaceHandler(rt.controller, rt.notices, errorHandler, rt.logger)

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", nodeHandler.ListNodes)
			r.Post("/", nodeHandler.CreateNode)
			r.Patch("/{nodeID}", nodeHandler.UpdateNode)
			r.Delete("/{nodeID}", nodeHandler.DeleteNode)
			r.Post("/{nodeID}/expand", nodeHandler.ExpandNode)
		})

		r.Get("/selection", nodeHandler.GetSelection)
		r.Put("/selection", nodeHandler.SetSelection)

		r.Get("/status", workspaceHandler.Status)
		r.Get("/notices", workspaceHandler.Notices)
		r.Get("/export", workspaceHandler.Export)
		r.Post("/import", workspaceHandler.Import)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
