// Package http provides the HTTP adapter for the application layer. It is
// a thin translation layer: requests in, service calls, JSON envelope out.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Obsidian-Corp/Audit-sub005/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config            ServerConfig
	httpServer        *http.Server
	router            *gin.Engine
	engagementService service.EngagementService
	workflowService   service.WorkflowService
	signoffService    service.SignoffService
	logger            Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	engagementService service.EngagementService,
	workflowService service.WorkflowService,
	signoffService service.SignoffService,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:            config,
		router:            gin.New(),
		engagementService: engagementService,
		workflowService:   workflowService,
		signoffService:    signoffService,
		logger:            logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.engagementService, s.workflowService, s.signoffService, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	api.Use(identityMiddleware())
	{
		api.POST("/engagements", handlers.CreateEngagement)
		api.GET("/engagements", handlers.ListEngagements)
		api.GET("/engagements/:id", handlers.GetEngagement)
		api.PUT("/engagements/:id/checklist", handlers.UpdateChecklist)
		api.GET("/engagements/:id/actions", handlers.AvailableActions)
		api.GET("/engagements/:id/actions/:action/requirements", handlers.BlockingRequirements)
		api.POST("/engagements/:id/actions", handlers.PerformAction)
		api.GET("/engagements/:id/history", handlers.TransitionHistory)
		api.GET("/engagements/:id/workpapers", handlers.ListWorkpapers)

		api.POST("/workpapers", handlers.CreateWorkpaper)
		api.GET("/workpapers/:id", handlers.GetWorkpaper)
		api.PUT("/workpapers/:id/content", handlers.UpdateWorkpaperContent)
		api.GET("/workpapers/:id/signoffs", handlers.SignoffStatus)
		api.POST("/workpapers/:id/signoffs", handlers.CreateSignoff)

		api.DELETE("/signoffs/:id", handlers.RevokeSignoff)
	}
}

// Start starts the HTTP server and blocks until ctx is done
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
