package middleware

import (
	"errors"

	"eduvibe/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders fiber and application errors as {"error": ...}.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		appErr := apperrors.FromError(err)
		if appErr.Status >= fiber.StatusInternalServerError {
			log.Error("unhandled error", zap.Error(err), zap.String("path", c.Path()))
		}
		return c.Status(appErr.Status).JSON(fiber.Map{
			"error": appErr.Message,
			"code":  appErr.Code,
		})
	}
}
