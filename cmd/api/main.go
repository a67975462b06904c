package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/useglide/glide/internal/config"
	"github.com/useglide/glide/internal/database"
	"github.com/useglide/glide/internal/handler"
	"github.com/useglide/glide/internal/middleware"
	"github.com/useglide/glide/internal/router"
	"github.com/useglide/glide/internal/service"
	"github.com/useglide/glide/pkg/canvas"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	gateway, err := canvas.New(canvas.Config{
		BaseURL: cfg.CanvasBaseURL,
		Token:   cfg.CanvasToken,
		Timeout: cfg.CanvasTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create canvas client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseService := service.NewCourseService(gateway, redisClient, cfg.CoursesCacheTTL, logger)
	analyticsService := service.NewAnalyticsService(gateway, logger)

	courseHandler := handler.NewCourseHandler(courseService, validate, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:    courseHandler,
		AnalyticsHandler: analyticsHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
