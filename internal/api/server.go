// Package api exposes the profiling service over HTTP with gin.
package api

import (
	"net/http"

	"goeda/app"
	"goeda/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes caps multipart uploads when no limit is configured
const DefaultMaxUploadBytes = 32 << 20

// Server wires the HTTP routes to the profile service and workspace registry
type Server struct {
	router         *gin.Engine
	service        *app.ProfileService
	workspaces     *store.Registry
	logger         *zap.Logger
	maxUploadBytes int64
}

// Option configures a Server
type Option func(*Server)

// WithMaxUploadBytes limits the size of uploaded files
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithLogger sets the server logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer builds the gin engine and registers every route
func NewServer(service *app.ProfileService, workspaces *store.Registry, opts ...Option) *Server {
	s := &Server{
		service:        service,
		workspaces:     workspaces,
		logger:         zap.NewNop(),
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("api")

	s.router = gin.New()
	s.router.Use(requestLogger(s.logger), gin.Recovery())
	s.router.MaxMultipartMemory = s.maxUploadBytes
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Mount serves h for every path below prefix, with the prefix stripped
func (s *Server) Mount(prefix string, h http.Handler) {
	wrapped := gin.WrapH(http.StripPrefix(prefix, h))
	s.router.Any(prefix, func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, prefix+"/")
	})
	s.router.Any(prefix+"/*path", wrapped)
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/analyze", s.handleAnalyze)

	datasets := api.Group("/datasets")
	datasets.POST("", s.handleUploadDataset)
	datasets.GET("", s.handleListDatasets)
	datasets.GET("/:id", s.handleGetDataset)
	datasets.DELETE("/:id", s.handleDeleteDataset)
	datasets.GET("/:id/report", s.handleDatasetReport)

	workspaces := api.Group("/workspaces")
	workspaces.POST("", s.handleCreateWorkspace)
	workspaces.GET("/:id", s.handleGetWorkspace)
	workspaces.DELETE("/:id", s.handleDeleteWorkspace)
	workspaces.POST("/:id/filters", s.handleAddFilter)
	workspaces.DELETE("/:id/filters", s.handleClearFilters)
	workspaces.DELETE("/:id/filters/:filter", s.handleRemoveFilter)
	workspaces.POST("/:id/charts", s.handleAddChart)
	workspaces.DELETE("/:id/charts/:chart", s.handleRemoveChart)
	workspaces.POST("/:id/undo", s.handleUndo)
	workspaces.POST("/:id/redo", s.handleRedo)
	workspaces.GET("/:id/profile", s.handleWorkspaceProfile)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
