package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"feedsync/internal/api/handlers"
	"feedsync/internal/api/middleware"
	"feedsync/internal/config"
	"feedsync/internal/database"
	"feedsync/internal/logger"
	"feedsync/internal/notifications"
	"feedsync/internal/syncer"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, factory syncer.Factory, publisher handlers.Publisher) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Initialize handlers
	productHandler := handlers.NewProductHandler(factory, logger)
	eventHandler := handlers.NewEventHandler(publisher, logger)
	notificationHandler := handlers.NewNotificationHandler(
		notifications.NewQueue(db.DB, cfg.NotificationDelay, logger), logger)

	s := &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}

	router.GET("/health", s.health)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Store scoped synchronization
		stores := v1.Group("/stores/:store_id")
		{
			stores.POST("/products/sync", productHandler.Sync)
			stores.POST("/products/:id/images", productHandler.SyncImages)
			stores.POST("/events", eventHandler.Publish)
		}

		// Notifications
		notes := v1.Group("/notifications")
		{
			notes.GET("", notificationHandler.List)
			notes.GET("/:id", notificationHandler.Get)
		}
	}

	return s
}

func (s *Server) health(c *gin.Context) {
	sqlDB, err := s.db.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		s.logger.Error("Health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "env": s.config.Env})
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	// Synchronizations wait on taxonomy retries and image uploads.
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Router exposes the engine for tests and embedding.
func (s *Server) Router() *gin.Engine {
	return s.router
}
