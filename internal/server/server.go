// Package server
//
// @title Wake Up Now API
// @version 1.0
// @description Video course subscription platform dev API
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wakeupnow/wakeup/internal/auth"
	"github.com/wakeupnow/wakeup/internal/billing"
	"github.com/wakeupnow/wakeup/internal/catalog"
	"github.com/wakeupnow/wakeup/internal/config"
	"github.com/wakeupnow/wakeup/internal/forms"
	"github.com/wakeupnow/wakeup/internal/models"
)

// Server represents the HTTP server
type Server struct {
	router         *gin.Engine
	db             *gorm.DB
	config         *config.Config
	logger         zerolog.Logger
	validator      *validator.Validate
	asynqClient    *asynq.Client
	catalogService *catalog.Service
	billingService *billing.Service
	version        string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	// Initialize database with production settings
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// Load or generate the JWT secret held in the AppConfig singleton
	if err := initializeAppConfig(db, zlog); err != nil {
		return nil, err
	}

	// Initialize validator
	validate := validator.New()

	// Register custom validators
	validate.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return forms.ValidCPF(fl.Field().String())
	})
	validate.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
		return catalog.ValidTheme(fl.Field().String())
	})

	// Initialize Asynq client for enqueueing tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	// Initialize domain services
	billingService := billing.NewService(db, zlog)
	catalogService := catalog.NewService(db, billingService, cfg.Uploads.Dir, zlog)

	// Seed the plan catalog
	if err := billingService.SeedPlans(); err != nil {
		return nil, err
	}

	// Create server
	server := &Server{
		db:             db,
		config:         cfg,
		logger:         zlog,
		validator:      validate,
		asynqClient:    asynqClient,
		catalogService: catalogService,
		billingService: billingService,
		version:        version,
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// initializeAppConfig loads the AppConfig singleton, creating it with a
// fresh JWT secret on first boot, and initializes JWT signing.
func initializeAppConfig(db *gorm.DB, zlog zerolog.Logger) error {
	var appConfig models.AppConfig
	err := db.First(&appConfig).Error
	if err == nil {
		auth.InitializeJWT(appConfig.JWTSecret)
		zlog.Debug().Msg("Loaded JWT secret from database")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to load app config: %w", err)
	}

	// First boot: generate JWT secret (64 hex characters = 32 bytes of randomness)
	jwtSecretBytes := make([]byte, 32)
	if _, err := rand.Read(jwtSecretBytes); err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	appConfig = models.AppConfig{
		JWTSecret:     hex.EncodeToString(jwtSecretBytes),
		SweepSchedule: "0 3 * * *", // Expire lapsed subscriptions at 3am daily
	}
	if err := db.Create(&appConfig).Error; err != nil {
		return fmt.Errorf("failed to create app config: %w", err)
	}

	auth.InitializeJWT(appConfig.JWTSecret)
	zlog.Info().Msg("Generated JWT secret on first boot")
	return nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns      = 8         // Reduced for SQLite efficiency
		maxIdleConns      = 4         // Reduced proportionally
		connMaxLifetime   = 300       // 5 minutes
		busyTimeout       = 5000      // 5 seconds
		cacheSize         = 10000     // 10MB
		mmapSize          = 134217728 // 128MB
		walAutocheckpoint = 1000      // WAL auto-checkpoint pages
	)

	// Open database connection
	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool settings
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Apply SQLite pragmas directly (connection string pragmas may not work with all drivers)
	// WAL mode must be set first for optimal concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL", // Enable WAL mode for better concurrency
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA wal_autocheckpoint=%d", walAutocheckpoint),
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		fmt.Sprintf("PRAGMA cache_size=-%d", cacheSize),
		"PRAGMA foreign_keys=1",
		"PRAGMA temp_store=2",
		fmt.Sprintf("PRAGMA mmap_size=%d", mmapSize),
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public auth endpoints (no auth required)
	s.router.POST("/api/auth/login", s.login)
	s.router.POST("/api/auth/register", s.register)
	s.router.POST("/api/auth/google", s.googleSignIn)
	s.router.POST("/api/auth/apple", s.appleSignIn)

	// Public plan listing
	s.router.GET("/api/payment/plans", s.listPlans)

	// Authenticated API routes (JWT required)
	api := s.router.Group("/api")
	api.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		api.POST("/auth/logout", s.logout)

		// Video catalog
		api.GET("/videos", s.listVideos)
		api.GET("/videos/:id", s.getVideo)

		// Upload (admin only)
		uploadRoutes := api.Group("/videos")
		uploadRoutes.Use(AdminOnlyMiddleware(s.logger))
		{
			uploadRoutes.POST("/upload", s.uploadVideo)
		}

		// Checkout
		api.POST("/payment/checkout", s.checkout)
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "wakeup-api",
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Start starts the HTTP server
func (s *Server) Start() error {
	port := ":8080"

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create HTTP server with production timeouts
	srv := &http.Server{
		Addr:    port,
		Handler: s.router,
		// Timeouts sized for multipart video uploads
		ReadTimeout:       180 * time.Second, // 3 minutes
		WriteTimeout:      180 * time.Second, // 3 minutes
		ReadHeaderTimeout: 30 * time.Second,  // 30 seconds
		IdleTimeout:       300 * time.Second, // 5 minutes
	}

	// Start server in goroutine
	go func() {
		s.logger.Info().Str("port", port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Close Asynq client
	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Asynq client")
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	return nil
}
