package main

import (
	"context"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/example/farm-market/config"
	"github.com/example/farm-market/modules/api"
	"github.com/example/farm-market/modules/market"
	"github.com/example/farm-market/modules/notification"
	"github.com/example/farm-market/modules/orders"
	"github.com/example/farm-market/modules/ratelimit"
	"github.com/example/farm-market/modules/storage"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Farm Market ===")

	cfg := config.Load()

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	var images fs.FS
	if cfg.ImagesDir != "" {
		images = os.DirFS(cfg.ImagesDir)
	}

	rateLimiter := ratelimit.NewModule(cfg.RedisAddr, cfg.RateLimit)
	apiModule := api.NewModule(cfg.HTTPAddr)
	apiModule.SetRateLimiter(rateLimiter)

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	app.Register(storage.NewModule(storage.Config{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		URL:    cfg.DatabaseURL,
		Debug:  cfg.DBDebug,
	}))
	app.Register(notification.NewModule()) // Consumes market events
	app.Register(orders.NewModule(orders.Config{RabbitMQURI: cfg.RabbitMQURI}))
	app.Register(rateLimiter)
	app.Register(market.NewModule(market.Config{
		SeedFile: cfg.SeedFile,
		Flags:    cfg.Flags,
		Token:    cfg.Token,
		Images:   images,
	}))
	app.Register(apiModule) // Depends on market, notification and storage

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("  Database: %s", cfg.DBDriver)
	if cfg.RedisAddr == "" {
		log.Println("  Rate limiting: disabled (set REDIS_ADDR)")
	}
	if cfg.RabbitMQURI == "" {
		log.Println("  Order dispatch: log only (set RABBITMQ_URI)")
	}
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost%s):", cfg.HTTPAddr)
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /api/v1/sessions         - Start a session and get a token")
	log.Println("  GET    /api/v1/products         - List the catalog")
	log.Println("  GET    /api/v1/notifications    - Recent market notices")
	log.Println("  GET    /api/v1/schema           - Tables created at startup")
	log.Println("  GET    /health                  - Health check")
	log.Println("")
	log.Println("  Session Endpoints (require Bearer token):")
	log.Println("  GET    /api/v1/session          - Current view")
	log.Println("  POST   /api/v1/session/intents  - Apply an intent")
	log.Println("  POST   /api/v1/session/login    - Log in")
	log.Println("  POST   /api/v1/session/signup   - Sign up")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
