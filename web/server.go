package web

import (
	"context"
	"net/http"

	"agent-console/config"
	"agent-console/web/handlers"
	"agent-console/web/middleware"
	"agent-console/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router   *gin.Engine
	registry *services.Registry
	logger   *zap.Logger
	config   *config.Config
}

func NewServer(registry *services.Registry, logger *zap.Logger, config *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		router:   router,
		registry: registry,
		logger:   logger,
		config:   config,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	// Serve the static console page
	s.router.Static("/static", "./web/static")
	s.router.GET("/", func(c *gin.Context) {
		c.File("./web/static/index.html")
	})

	chatHandler := handlers.NewChatHandler(s.registry, s.logger)
	connectionsHandler := handlers.NewConnectionsHandler(s.registry, s.logger)
	filesHandler := handlers.NewFilesHandler(s.registry, s.logger)
	sessionHandler := handlers.NewSessionHandler(s.registry, s.logger)

	api := s.router.Group("/api")
	api.Use(middleware.SessionMiddleware())

	api.GET("/session", sessionHandler.Info)
	api.POST("/session/reset", sessionHandler.Reset)

	api.GET("/agents", chatHandler.ListAgents)
	api.POST("/agents/:agentID/select", chatHandler.SelectAgent)
	api.POST("/chat", chatHandler.SendMessage)
	api.GET("/chat/messages", chatHandler.Transcript)
	api.POST("/chat/clear", chatHandler.ClearHistory)
	api.PUT("/chat/websearch", chatHandler.SetWebSearch)

	api.GET("/connections", connectionsHandler.List)
	api.POST("/connections", connectionsHandler.Create)
	api.POST("/connections/:connectionID/sync", connectionsHandler.Sync)
	api.PUT("/connections/:connectionID/selections", connectionsHandler.UpdateSelections)
	api.DELETE("/connections/:connectionID", connectionsHandler.Delete)
	api.POST("/connections/:connectionID/test", connectionsHandler.Test)
	api.POST("/connections/:connectionID/activate", connectionsHandler.ToggleActive)
	api.GET("/connections/status", connectionsHandler.Status)

	api.GET("/search", connectionsHandler.SearchState)
	api.PUT("/search/enabled", connectionsHandler.SetEnabled)
	api.PUT("/search/active", connectionsHandler.SetActive)

	api.POST("/files", filesHandler.Upload)
	api.GET("/files", filesHandler.Progress)
	api.DELETE("/files/:fileID", filesHandler.Remove)
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting console server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Console server failed to start", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	s.logger.Info("Shutting down console server")
	return srv.Shutdown(context.Background())
}
