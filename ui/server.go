package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"statflow/adapters/excel"
	"statflow/internal"
	"statflow/internal/analysis"
	"statflow/internal/api"
	"statflow/internal/export"
	"statflow/ports"
)

// Deps are the collaborators the HTTP surface drives
type Deps struct {
	Screens *analysis.Manager
	Exports *export.Service
	Runs    ports.RunRepository
	Reader  *excel.Reader
	Hub     *api.SSEHub
	Logger  *internal.Logger
	// UploadMaxBytes caps request bodies of sample uploads
	UploadMaxBytes int64
	Now            func() time.Time
}

// Server is the wizard backend
type Server struct {
	router  *gin.Engine
	srv     *http.Server
	screens *analysis.Manager
	exports *export.Service
	runs    ports.RunRepository
	reader  *excel.Reader
	hub     *api.SSEHub
	log     *internal.Logger
	maxBody int64
	now     func() time.Time
}

// NewServer creates the server and registers its routes
func NewServer(deps Deps) *Server {
	s := &Server{
		router:  gin.New(),
		screens: deps.Screens,
		exports: deps.Exports,
		runs:    deps.Runs,
		reader:  deps.Reader,
		hub:     deps.Hub,
		log:     deps.Logger,
		maxBody: deps.UploadMaxBytes,
		now:     deps.Now,
	}
	if s.log == nil {
		s.log = internal.DefaultLogger
	}
	s.log = s.log.With("API")
	if s.reader == nil {
		s.reader = excel.NewReader(excel.DefaultConfig())
	}
	if s.maxBody <= 0 {
		s.maxBody = 32 << 20
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
}

func (s *Server) setupRoutes() {
	s.router.GET("/api/kinds", s.handleKinds)

	screens := s.router.Group("/api/screens")
	{
		screens.GET("", s.handleListScreens)
		screens.POST("", s.handleCreateScreen)
		screens.GET("/:id", s.handleGetScreen)
		screens.DELETE("/:id", s.handleDeleteScreen)

		screens.PUT("/:id/sample", s.handleSetSample)
		screens.PUT("/:id/selection", s.handleSetSelection)
		screens.PUT("/:id/settings", s.handleSetSettings)

		screens.POST("/:id/steps/:step", s.handleGoTo)
		screens.POST("/:id/next", s.handleNext)
		screens.POST("/:id/previous", s.handlePrevious)
		screens.POST("/:id/run", s.handleRun)

		screens.GET("/:id/export/:format", s.handleExport)
		if s.hub != nil {
			screens.GET("/:id/events", s.handleEvents)
		}
	}

	runs := s.router.Group("/api/runs")
	{
		runs.GET("", s.handleListRuns)
		runs.GET("/:id", s.handleGetRun)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("Starting statflow on http://%s", addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for handlers to finish
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			s.log.Warn("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
			return
		}
		s.log.Debug("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
