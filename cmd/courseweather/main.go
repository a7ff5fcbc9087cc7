package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/rylanturner02/weather-microservice/internal/api/http"
	"github.com/rylanturner02/weather-microservice/internal/config"
	"github.com/rylanturner02/weather-microservice/internal/course"
	"github.com/rylanturner02/weather-microservice/internal/forecast"
	"github.com/rylanturner02/weather-microservice/internal/scheduler"
	"github.com/rylanturner02/weather-microservice/internal/store"
	"github.com/rylanturner02/weather-microservice/internal/weather"
)

func main() {
	// Load configuration (godotenv-aware).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Upstream clients.
	directory := course.NewDirectoryClient(httpClient, cfg.CoursesURL)
	nws := forecast.NewClient(httpClient, cfg.UserAgent, cfg.NWSBaseURL, cfg.HourlyForecastURL, cfg.Latitude, cfg.Longitude)

	// Process-lifetime forecast cache, injected rather than ambient so its
	// lifecycle stays with the wiring layer.
	cache := store.NewMemoryCache()

	// Core service orchestrating directory, schedule, forecast and cache.
	service := weather.NewService(directory, nws, cache)

	// Periodic upstream availability probe.
	probe := scheduler.New(nws, cfg.ProbeInterval)
	if err := probe.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer probe.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "course-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "course-weather",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, cache)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
