package recommendation

import (
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RecommendationApi struct {
	controller *RecommendationController
	config     *config.Config
}

func NewRecommendationApi(controller *RecommendationController, config *config.Config) *RecommendationApi {
	return &RecommendationApi{
		controller: controller,
		config:     config,
	}
}

func (h *RecommendationApi) Setup(app *fiber.App) {
	recs := app.Group("/api/recommendations", middleware.AuthMiddleware(h.config.SkipAuth))

	recs.Get("/", middleware.RequireAccess(access.ActionRead, access.ResourceRecommendation), h.controller.GetRecommendations)
	recs.Get("/popular-subjects", middleware.RequireAccess(access.ActionList, access.ResourceRecommendation), h.controller.GetPopularSubjects)
}
