package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/dropofflens/dropofflens/pkg/validator"

	"github.com/dropofflens/dropofflens/internal/adapter/handler"
	"github.com/dropofflens/dropofflens/internal/adapter/repository"
	"github.com/dropofflens/dropofflens/internal/infrastructure/cache"
	"github.com/dropofflens/dropofflens/internal/infrastructure/database"
	"github.com/dropofflens/dropofflens/internal/infrastructure/storage"
	"github.com/dropofflens/dropofflens/internal/usecase/analysis"
	"github.com/dropofflens/dropofflens/internal/usecase/auth"
	"github.com/dropofflens/dropofflens/internal/usecase/comment"
	"github.com/dropofflens/dropofflens/internal/usecase/report"
	"github.com/dropofflens/dropofflens/internal/usecase/team"
	pkgai "github.com/dropofflens/dropofflens/pkg/ai"
	"github.com/dropofflens/dropofflens/pkg/config"
	"github.com/dropofflens/dropofflens/pkg/jwt"
)

// @title           DropoffLens API
// @version         1.0
// @description     Customer exit feedback analysis: CSV ingestion, AI theme extraction, teams and comments

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	// Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Apply migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate in CI/CD.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("DB_AUTO_MIGRATE is enabled in production. Manage schema with sql-migrate instead.")
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; run sql-migrate in CI/CD/production")
	}

	// Results cache: Redis, or an in-process store for single-node setups
	var resultsCache cache.ResultsCache
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		resultsCache = cache.NewRedisResultsCache(redisClient, cfg.Redis.ResultTTL)
	} else {
		log.Println("📦 Redis disabled; caching results in memory")
		memStore := cache.NewMemoryStore(cfg.Redis.ResultTTL)
		defer memStore.Close()
		resultsCache = memStore
	}

	// Object storage for uploaded CSV archival (optional)
	var archive *storage.MinIOClient
	if cfg.Storage.Enabled {
		log.Println("🗄️  Connecting to object storage...")
		archive, err = storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
	} else {
		log.Println("🗄️  Object storage disabled; uploaded CSVs are not archived")
	}

	// Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// JWT manager
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// AI client
	log.Println("🤖 Initializing AI components...")
	openaiClient := pkgai.NewOpenAIClient(&cfg.OpenAI)

	// Services
	authService := auth.NewService(userRepo, jwtManager, logger)
	teamService := team.NewService(teamRepo, userRepo, logger)
	analysisService := analysis.NewService(analysisRepo, openaiClient, resultsCache, &cfg.OpenAI, logger)
	commentService := comment.NewService(commentRepo, analysisRepo, logger)
	reportService := report.NewService(analysisService)

	// Handlers
	log.Println("🚀 Initializing handlers...")
	authHandler := handler.NewAuthHandler(authService, logger)
	uploadHandler := handler.NewUploadHandler(archive, cfg.Upload.MaxFileBytes, logger)
	analysisHandler := handler.NewAnalysisHandler(analysisService, teamService, reportService, logger)
	teamHandler := handler.NewTeamHandler(teamService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)

	// Routes
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, authService, authHandler, uploadHandler, analysisHandler, teamHandler, commentHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited")
}
