package mentor

import (
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type MentorApi struct {
	controller *MentorController
	config     *config.Config
}

func NewMentorApi(controller *MentorController, config *config.Config) *MentorApi {
	return &MentorApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all mentor-related routes
func (h *MentorApi) Setup(app *fiber.App) {
	mentors := app.Group("/api/mentors", middleware.AuthMiddleware(h.config.SkipAuth))

	mentors.Get("/", middleware.RequireAccess(access.ActionList, access.ResourceMentorProfile), h.controller.ListMentors)
	mentors.Put("/me", middleware.RequireAccess(access.ActionCreate, access.ResourceMentorProfile), h.controller.UpsertMyProfile)
	mentors.Get("/:id", middleware.RequireAccess(access.ActionRead, access.ResourceMentorProfile), h.controller.GetMentor)
	mentors.Put("/:id/approval", middleware.RequireAccess(access.ActionModerate, access.ResourceMentorProfile), h.controller.ApproveMentor)
	mentors.Put("/:id/status", middleware.RequireAccess(access.ActionModerate, access.ResourceMentorProfile), h.controller.UpdateMentorStatus)
}
