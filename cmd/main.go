package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	authhttp "github.com/crstnmac/estate-broker-manager/internal/auth/adapter/http"
	"github.com/crstnmac/estate-broker-manager/internal/auth/config"
	"github.com/crstnmac/estate-broker-manager/internal/di"
	"github.com/crstnmac/estate-broker-manager/internal/shared/logger"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	CORSOrigins     string        `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RateLimit       int           `env:"RATE_LIMIT_MAX" envDefault:"300"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	log := logger.NewLogger()

	var serverCfg ServerConfig
	if err := env.Parse(&serverCfg); err != nil {
		log.Fatalf("Failed to parse server config: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container := di.NewContainer(cfg, log)
	if err := container.InitializeAuth(ctx); err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer container.Close()

	app := fiber.New(fiber.Config{
		AppName:      "estate-broker-manager",
		ErrorHandler: fiberErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(authhttp.RequestID())
	app.Use(authhttp.SecurityHeaders())
	app.Use(authhttp.CORS(serverCfg.CORSOrigins))
	app.Use(authhttp.RateLimiter(serverCfg.RateLimit, serverCfg.RateLimitWindow))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := container.HealthCheck(c.UserContext()); err != nil {
			log.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	container.AuthModule.RegisterRoutes(app.Group("/auth"))

	sweeper := container.AuthModule.Sweeper()
	sweeper.Start()
	defer sweeper.Stop()

	addr := fmt.Sprintf("%s:%d", serverCfg.Host, serverCfg.Port)
	go func() {
		log.Infof("Listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}
}

func fiberErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.WithContext(c.UserContext()).Errorf("Request failed: %v", err)
			return c.Status(code).JSON(authhttp.ErrorResponse{Error: "Internal server error"})
		}
		return c.Status(code).JSON(authhttp.ErrorResponse{Error: err.Error()})
	}
}
