package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/KrishanLala/KREIT-Score/internal/config"
	"github.com/KrishanLala/KREIT-Score/internal/database"
	"github.com/KrishanLala/KREIT-Score/internal/handlers"
	applogger "github.com/KrishanLala/KREIT-Score/internal/logger"
	"github.com/KrishanLala/KREIT-Score/internal/middleware"
	"github.com/KrishanLala/KREIT-Score/internal/services"
	"github.com/KrishanLala/KREIT-Score/internal/telemetry"
	"github.com/KrishanLala/KREIT-Score/pkg/attom"
	"github.com/KrishanLala/KREIT-Score/pkg/openai"
	"github.com/KrishanLala/KREIT-Score/pkg/stripe"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

// @title KREIT Score API
// @version 1.0.0
// @description Real-estate scoring API
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = applogger.Init()
	defer applogger.Sync()
	log := applogger.GetLogger("main")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	// Load configuration; missing provider credentials are surfaced once
	// here instead of only per request
	cfg := config.Load()
	if missing := cfg.MissingProviderKeys(); len(missing) > 0 {
		log.Warnf("Missing provider credentials: %s (affected endpoints will return errors)",
			strings.Join(missing, ", "))
	}

	// Initialize OpenTelemetry Tracer
	ctx := context.Background()
	tracerShutdown, err := telemetry.InitTracer(ctx, "kreitscore-api", cfg.SigNozEndpoint)
	if err != nil {
		log.Warnf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if tracerShutdown == nil {
			return
		}
		if err := tracerShutdown(ctx); err != nil {
			log.Warnf("Error shutting down tracer: %v", err)
		}
	}()

	// Initialize OpenTelemetry Metrics
	meterShutdown, err := telemetry.InitMeter(ctx, "kreitscore-api", cfg.SigNozEndpoint)
	if err != nil {
		log.Warnf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if meterShutdown == nil {
			return
		}
		if err := meterShutdown(ctx); err != nil {
			log.Warnf("Error shutting down metrics: %v", err)
		}
	}()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Poll connection pool stats for Prometheus
	go database.StartConnectionPoolMetricsCollector(ctx, db.DB, 15*time.Second)

	// Construct external provider clients once at startup
	var properties services.PropertyFetcher
	if c, err := attom.New(cfg.AttomBaseURL, cfg.AttomAPIKey); err == nil {
		properties = c
	}
	var ai services.ChatCompleter
	if c, err := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel); err == nil {
		ai = c
	}
	var payments services.CheckoutSessionCreator
	if c, err := stripe.New(cfg.StripeSecretKey); err == nil {
		payments = c
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "KREIT Score API",
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	}))
	app.Use(telemetry.New(telemetry.Config{
		ServiceName: "kreitscore-api",
	}))
	app.Use(middleware.PrometheusMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowHeaders:     "Accept, Accept-Encoding, Authorization, Content-Type, DNT, Origin, User-Agent, X-Requested-With",
		AllowCredentials: false,
		ExposeHeaders:    "Content-Length, Content-Type",
		MaxAge:           86400,
	}))

	// Setup routes
	setupRoutes(app, db, cfg, properties, ai, payments)

	// Start server
	port := cfg.ServerPort
	if port == "" {
		port = "3000"
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Warnf("Error shutting down server: %v", err)
		}
	}()

	log.Infof("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(
	app *fiber.App,
	db *database.DB,
	cfg *config.Config,
	properties services.PropertyFetcher,
	ai services.ChatCompleter,
	payments services.CheckoutSessionCreator,
) {
	// Health check endpoints for k8s probes
	app.Get("/healthz", handlers.HealthCheck)
	app.Get("/v1/healthz", handlers.HealthCheck)
	app.Get("/v1/readiness", handlers.ReadinessCheck(db))
	app.Get("/v1/liveness", handlers.LivenessCheck)

	// API v1 group
	v1 := app.Group("/v1")

	// Prometheus scrape endpoint
	v1.Get("/metrics", middleware.PrometheusHandler())

	// Auth routes (no auth required)
	auth := v1.Group("/auth")
	handlers.SetupAuthRoutes(auth, db, cfg)

	// Users routes (auth required)
	users := v1.Group("/users", middleware.AuthRequired(cfg))
	handlers.SetupUserRoutes(users, db)

	// Score routes (public; kreit-score applies optional auth per route)
	scoreHandler := handlers.NewScoreHandler(db, properties, ai)
	handlers.SetupScoreRoutes(v1, cfg, scoreHandler)

	// Checkout routes
	checkoutHandler := handlers.NewCheckoutHandler(payments, cfg)
	handlers.SetupCheckoutRoutes(v1, cfg, checkoutHandler)
}
