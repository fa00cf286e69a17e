package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/satriahrh/lansia/adapters"
	"github.com/satriahrh/lansia/internal/api"
	"github.com/satriahrh/lansia/internal/auth"
	"github.com/satriahrh/lansia/internal/config"
	"github.com/satriahrh/lansia/internal/websocket"
	"github.com/satriahrh/lansia/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize adapters
	generator, err := cfg.NewStructuredGenerator(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to create structured generation client", zap.Error(err))
	}
	synthesizer, err := cfg.NewSpeechSynthesizer(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to create speech generation client", zap.Error(err))
	}
	devices, err := adapters.NewSeededDeviceRepository(ctx, cfg.DeviceCredentials)
	if err != nil {
		logger.Fatal("Failed to register devices", zap.Error(err))
	}
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatal("Failed to create token manager", zap.Error(err))
	}

	// Initialize usecase services
	assistant := usecase.NewAssistantService(generator, usecase.AssistantConfig{
		TextModel:      cfg.Gemini.Model,
		MaxInputChars:  cfg.MaxInputChars,
		MaxImageBytes:  cfg.MaxImageBytes,
		RequestTimeout: cfg.RequestTimeout,
	}, logger)

	// Initialize WebSocket hub with its readback controllers
	hub := websocket.NewHub(synthesizer, websocket.HubConfig{
		PlaybackTimeout: cfg.PlaybackTimeout,
		MaxTextChars:    cfg.MaxInputChars,
	}, logger)
	go hub.Run(ctx)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(bodyLimit(cfg.MaxImageBytes)))

	// Initialize API routes
	api.InitRoutes(e, api.Dependencies{
		Assistant:     assistant,
		Synthesizer:   synthesizer,
		Devices:       devices,
		Tokens:        tokens,
		Hub:           hub,
		SpeechTimeout: cfg.PlaybackTimeout,
	}, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// bodyLimit leaves room for the base64 expansion of the largest accepted image
func bodyLimit(maxImageBytes int) string {
	kib := (maxImageBytes*4/3)/1024 + 64
	return fmt.Sprintf("%dK", kib)
}
