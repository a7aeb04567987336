package review

import (
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReviewApi struct {
	controller *ReviewController
	config     *config.Config
}

func NewReviewApi(controller *ReviewController, config *config.Config) *ReviewApi {
	return &ReviewApi{
		controller: controller,
		config:     config,
	}
}

func (h *ReviewApi) Setup(app *fiber.App) {
	reviews := app.Group("/api/reviews", middleware.AuthMiddleware(h.config.SkipAuth))

	reviews.Post("/", middleware.RequireAccess(access.ActionCreate, access.ResourceReview), h.controller.CreateReview)
	reviews.Get("/mentor/:mentorId", middleware.RequireAccess(access.ActionList, access.ResourceReview), h.controller.ListMentorReviews)
	reviews.Delete("/:id", h.controller.DeleteReview)
	reviews.Put("/:id/moderation", middleware.RequireAccess(access.ActionModerate, access.ResourceReview), h.controller.ModerateReview)
}
