package api

import (
	"errors"
	"strconv"

	"eduvibe/pkg/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Validate runs struct tag validation and maps failures to a validation error.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return apperrors.WithMessage(apperrors.ErrValidation, first.Field()+" failed on "+first.Tag())
		}
		return apperrors.Wrap(err, apperrors.ErrValidation, "")
	}
	return nil
}

// ErrorResponse writes err as {"error": message} with the status of its typed error.
func ErrorResponse(c *fiber.Ctx, err error) error {
	appErr := apperrors.FromError(err)
	return c.Status(appErr.Status).JSON(fiber.Map{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// MaxPage bounds page so (page-1)*limit stays a valid skip.
const MaxPage = 10000

// Pagination reads page and limit query parameters.
func Pagination(c *fiber.Ctx, defaultLimit int64) (page, limit int64) {
	page, _ = strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ = strconv.ParseInt(c.Query("limit", strconv.FormatInt(defaultLimit, 10)), 10, 64)
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit
}
