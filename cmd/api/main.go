package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/catalyst/backend/docs"
	"github.com/catalyst/backend/internal/auth/middleware"
	"github.com/catalyst/backend/internal/auth/service"
	"github.com/catalyst/backend/internal/config"
	"github.com/catalyst/backend/internal/email"
	"github.com/catalyst/backend/internal/handlers"
	"github.com/catalyst/backend/internal/logger"
	loggerMiddleware "github.com/catalyst/backend/internal/logger/middleware"
	sharedMiddleware "github.com/catalyst/backend/internal/middlewares"
	"github.com/catalyst/backend/internal/models"
	"github.com/catalyst/backend/internal/ratelimit"
	"github.com/catalyst/backend/internal/repositories"
	"github.com/catalyst/backend/internal/services"
	"github.com/catalyst/backend/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const maxRequestSize = 10 * 1024 * 1024 // 10MB

// @title flask-catalyst Backend API
// @version 1.0
// @description User registration, JWT login, role-gated user listing and demo utilities.

// @license.name MIT

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting backend API", zap.String("project", cfg.ProjectName))

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis backs shared rate limit counters and the email queue
	var rdb *redis.Client
	if cfg.RateLimit.Store == config.RateLimitStoreRedis {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
	}

	// File storage
	files, err := storage.New(cfg.Storage, cfg.APIKey, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	// Email delivery
	var mailer services.EmailSender
	switch cfg.Email.Delivery {
	case config.EmailDeliveryQueue:
		queueClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer queueClient.Close()
		mailer = email.NewQueueSender(queueClient)
		logger.Logger.Info("Email delivery through the worker queue", zap.String("queue", email.QueueName))
	default:
		mailer = email.NewSMTPSender(cfg.SMTP)
	}

	// Initialize JWT token generator and password hasher
	tokenGenerator := service.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	hasher := service.NewPasswordHasher(cfg.Password.BcryptCost)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenGenerator, hasher, logger.Logger)
	adminService := services.NewAdminService(userRepo, logger.Logger)
	demoService := services.NewDemoService(userRepo, hasher, files, mailer, logger.Logger)

	// Initialize access gate and rate limiters
	gate := middleware.NewGate(tokenGenerator, userRepo, logger.Logger)
	limits := ratelimit.NewFactory(rdb)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.ProjectName, db, logger.Logger)
	authHandler := handlers.NewAuthHandler(
		authService,
		limits.ByIP("login", 10, time.Minute),
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		logger.Logger,
	)
	adminHandler := handlers.NewAdminHandler(adminService, gate.RequireRole(models.RoleAdmin), logger.Logger)
	demoHandler := handlers.NewDemoHandler(demoService, gate.Authenticated, limits.ByIP("utils-demo", 5, time.Minute), logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(limits.ByIP("global", cfg.RateLimit.Requests, cfg.RateLimit.Window))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(maxRequestSize))
	r.NotFound(handlers.NotFound)

	healthHandler.RegisterRoutes(r)

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Locally stored uploads are served by the API itself
	if cfg.Storage.Backend == config.StorageLocal {
		prefix := cfg.Storage.UploadURL + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Storage.UploadDir))))
	}

	// Scope router to /api
	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		adminHandler.RegisterRoutes(r)
		demoHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Fall back to the parent directory when started from cmd/api
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
