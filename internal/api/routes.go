package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/domain/repositories"
	"github.com/satriahrh/lansia/internal/audio"
	"github.com/satriahrh/lansia/internal/auth"
	"github.com/satriahrh/lansia/internal/websocket"
	"github.com/satriahrh/lansia/usecase"
)

const defaultSpeechTimeout = 90 * time.Second

// Dependencies are the services the routes are built on
type Dependencies struct {
	Assistant     *usecase.AssistantService
	Synthesizer   repositories.SpeechSynthesizer
	Devices       repositories.DeviceRepository
	Tokens        *auth.TokenManager
	Hub           *websocket.Hub
	SpeechTimeout time.Duration
}

type handler struct {
	Dependencies
	logger *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies, logger *zap.Logger) {
	if deps.SpeechTimeout <= 0 {
		deps.SpeechTimeout = defaultSpeechTimeout
	}
	h := &handler{Dependencies: deps, logger: logger}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "lansia-server",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.GET("/features", h.features)
	v1.POST("/clarity", h.clarity)
	v1.POST("/misinfo", h.misinfo)
	v1.POST("/meds", h.meds)
	v1.POST("/speech", h.speech)

	// Device APIs
	v1.POST("/device/auth", h.deviceAuth)

	// WebSocket endpoint with JWT validation
	e.GET("/ws", h.websocketWithAuth)
}

func (h *handler) features(c echo.Context) error {
	return c.JSON(http.StatusOK, FeaturesResponse{Features: usecase.Features()})
}

func (h *handler) clarity(c echo.Context) error {
	var req ClarityRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}

	result, err := h.Assistant.Simplify(c.Request().Context(), req.Text, req.Image)
	if err != nil {
		return h.writeError(c, err)
	}
	return h.writeResult(c, result)
}

func (h *handler) misinfo(c echo.Context) error {
	var req MisinfoRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}

	result, err := h.Assistant.CheckClaim(c.Request().Context(), req.Claim)
	if err != nil {
		return h.writeError(c, err)
	}
	return h.writeResult(c, result)
}

func (h *handler) meds(c echo.Context) error {
	var req MedsRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}

	result, err := h.Assistant.MedicationGuide(c.Request().Context(), req.Name)
	if err != nil {
		return h.writeError(c, err)
	}
	return h.writeResult(c, result)
}

func (h *handler) writeResult(c echo.Context, result entities.Result) error {
	return c.JSON(http.StatusOK, ResultResponse{
		Feature:      result.Kind(),
		Result:       result,
		Fields:       usecase.DisplayFields(result),
		ReadbackText: usecase.ReadbackText(result),
	})
}

// speech synthesizes text and decodes it before answering, so a corrupt
// payload never reaches a client
func (h *handler) speech(c echo.Context) error {
	var req SpeechRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	if err := h.Assistant.CheckText("text", req.Text); err != nil {
		return h.writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.SpeechTimeout)
	defer cancel()

	payload, err := h.Synthesizer.SynthesizeSpeech(ctx, req.Text)
	if err != nil {
		return h.writeError(c, err)
	}

	buffer, err := audio.DecodeVoicePCM(payload.Base64Audio)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, SpeechResponse{
		AudioData:  payload.Base64Audio,
		SampleRate: buffer.SampleRate(),
		Channels:   buffer.ChannelCount(),
		Frames:     buffer.FrameCount(),
		DurationMs: buffer.Duration().Milliseconds(),
	})
}

func (h *handler) deviceAuth(c echo.Context) error {
	var req DeviceAuthRequest

	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}

	if req.SerialNumber == "" || req.SecretKey == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Serial number and secret key are required",
		})
	}

	device, err := h.Devices.ValidateDevice(req.SerialNumber, req.SecretKey)
	if err != nil {
		h.logger.Warn("Device authentication failed",
			zap.String("serial_number", req.SerialNumber),
			zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid device credentials",
		})
	}

	token, expiresAt, err := h.Tokens.GenerateDeviceToken(device.ID)
	if err != nil {
		h.logger.Error("Failed to generate device token",
			zap.String("device_id", device.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	h.logger.Info("Device authenticated successfully",
		zap.String("device_id", device.ID),
		zap.String("serial_number", device.SerialNumber))

	return c.JSON(http.StatusOK, DeviceAuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		DeviceID:  device.ID,
	})
}

// websocketWithAuth handles WebSocket connections with JWT authentication
func (h *handler) websocketWithAuth(c echo.Context) error {
	token, found := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	if !found || token == "" {
		h.logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "JWT token is required in Authorization header",
		})
	}

	claims, err := h.Tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired JWT token",
		})
	}

	h.logger.Info("WebSocket connection authenticated", zap.String("device_id", claims.DeviceID))

	return websocket.HandleWebSocketWithAuth(h.Hub, c, claims.DeviceID, h.logger)
}

func (h *handler) badRequest(c echo.Context, err error) error {
	h.logger.Warn("Failed to bind request", zap.Error(err))
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request format",
	})
}

// writeError maps a pipeline failure onto its HTTP status
func (h *handler) writeError(c echo.Context, err error) error {
	status, code, message := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.String("error", code),
			zap.Error(err))
	}
	return c.JSON(status, ErrorResponse{Error: code, Message: message})
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, entities.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", "The assistant took too long to answer. Please try again."
	case errors.Is(err, entities.ErrParse):
		return http.StatusBadGateway, "parse_error", "The assistant gave an answer we could not read. Please try again; if it keeps happening, report it."
	case errors.Is(err, entities.ErrTransport):
		return http.StatusServiceUnavailable, "upstream_unavailable", "The assistant is not reachable right now. Please try again."
	case errors.Is(err, entities.ErrEmptyAudio):
		return http.StatusBadGateway, "empty_audio", "No speech was produced. Please try again."
	case errors.Is(err, entities.ErrDecode):
		return http.StatusBadGateway, "decode_error", "The speech could not be played. Please try again."
	}
	return http.StatusInternalServerError, "internal_error", "Something went wrong."
}
