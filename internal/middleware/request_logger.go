package middleware

import (
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/logger"
	"eduvibe/internal/metrics"
	"eduvibe/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id, logs it once it completes and records HTTP metrics.
func RequestLogger(log *zap.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)
		c.Locals(common_models.RequestIDKey, requestID)

		err := c.Next()
		if err != nil {
			// Let the app error handler set the final status before we read it.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		path := c.Route().Path

		fields := []zap.Field{
			zap.String(logger.FieldRequestID, requestID),
			zap.String(logger.FieldIP, c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
		}
		if claims, ok := utils.ClaimsFromCtx(c); ok {
			fields = append(fields, zap.String(logger.FieldUserID, claims.UserID))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("request failed", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Debug("request completed", fields...)
		}

		m.ObserveHTTPRequest(c.Method(), path, status, elapsed)
		return nil
	}
}
