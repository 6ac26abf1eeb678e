package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"cv-checker/internal/config"
	"cv-checker/internal/handlers"
	"cv-checker/internal/middleware"
	"cv-checker/internal/repositories"
	"cv-checker/internal/services"
	"cv-checker/pkg/logger"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	log.Info("database connected and migrated")

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)

	// Services
	storageService := services.NewStorageService(cfg.Storage.TempDir, log)
	if err := storageService.EnsureTempDir(); err != nil {
		log.Fatal("failed to create temp directory", zap.Error(err))
	}

	fileValidator := services.NewFileValidator(cfg.Storage.MinFileSize, cfg.Storage.MaxFileSize)
	textExtractor := services.NewTextExtractor()

	analysisEngine, err := services.NewAnalysisEngine(cfg.Gemini.APIKey, log)
	if err != nil {
		log.Fatal("failed to initialize analysis engine", zap.Error(err))
	}

	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TokenExpiry, log)
	clerkService := services.NewClerkService(userRepo, cfg.Clerk.SecretKey, cfg.Clerk.WebhookSecret, cfg.Clerk.APIBase, log)
	log.Info("services initialized")

	// Handlers
	analyzeHandler := handlers.NewAnalyzeHandler(fileValidator, storageService, textExtractor, analysisEngine, analysisRepo, log)
	authHandler := handlers.NewAuthHandler(authService, log)
	webhookHandler := handlers.NewWebhookHandler(clerkService, log)
	userHandler := handlers.NewUserHandler(clerkService, userRepo, analysisRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      "AI CV Checker API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		ErrorHandler: newErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000, http://localhost:3001",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Health
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "AI CV Checker API is running!", "status": "healthy"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "message": "API is running"})
	})

	// CV analysis
	api := app.Group("/api")
	api.Post("/analyze-cv", analyzeHandler.HandleAnalyzeCV)
	api.Get("/analysis-history/:user_id", analyzeHandler.HandleAnalysisHistory)
	api.Delete("/analysis/:analysis_id", analyzeHandler.HandleDeleteAnalysis)

	// Legacy auth
	api.Post("/register", authHandler.HandleRegister)
	api.Post("/login", authHandler.HandleLogin)
	api.Post("/logout", authHandler.HandleLogout)
	api.Post("/refresh-token", authHandler.HandleRefreshToken)
	api.Get("/me", authHandler.HandleCurrentUser)

	// Identity-provider-backed user surface
	users := api.Group("/users", middleware.ClerkAuth(clerkService, log))
	users.Get("/me", userHandler.HandleGetMe)
	users.Put("/me", userHandler.HandleUpdateMe)
	users.Get("/stats", userHandler.HandleGetStats)
	users.Delete("/me", userHandler.HandleDeleteMe)

	// Webhooks
	webhooks := app.Group("/webhooks")
	webhooks.Post("/clerk", webhookHandler.HandleClerkWebhook)
	webhooks.Get("/health", webhookHandler.HandleWebhookHealth)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

// newErrorHandler converts uncaught errors into the API's error envelope.
// Internal details are logged, never echoed to the caller.
func newErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
			message = "Internal server error"
		}

		return c.Status(code).JSON(fiber.Map{
			"error":       message,
			"status_code": code,
		})
	}
}
