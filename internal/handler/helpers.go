package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/useglide/glide/internal/analytics"
	"github.com/useglide/glide/internal/middleware"
	"github.com/useglide/glide/pkg/canvas"
)

func parseParamID(c *fiber.Ctx, key string) (int64, error) {
	value := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid identifier")
	}
	return parsed, nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// statusFromGatewayError maps engine and gateway failures onto HTTP
// statuses. The engine itself never decides status codes.
func statusFromGatewayError(err error) (int, string) {
	switch {
	case errors.Is(err, canvas.ErrNotFound):
		return fiber.StatusNotFound, "resource not found in canvas"
	case errors.Is(err, canvas.ErrUnauthorized), errors.Is(err, canvas.ErrForbidden):
		return fiber.StatusBadGateway, "canvas rejected the configured credentials"
	case errors.Is(err, analytics.ErrCourseUnavailable):
		return fiber.StatusBadGateway, "course data unavailable"
	case errors.Is(err, canvas.ErrNetwork):
		return fiber.StatusBadGateway, "canvas is unavailable"
	default:
		return fiber.StatusInternalServerError, "internal error"
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
