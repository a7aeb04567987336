package scheduler

import (
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SchedulerApi struct {
	controller *SchedulerController
	config     *config.Config
}

func NewSchedulerApi(controller *SchedulerController, config *config.Config) *SchedulerApi {
	return &SchedulerApi{
		controller: controller,
		config:     config,
	}
}

func (h *SchedulerApi) Setup(app *fiber.App) {
	jobs := app.Group("/api/admin/jobs",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(access.RoleAdmin, access.RoleSuperAdmin),
	)

	jobs.Get("/", h.controller.ListJobs)
	jobs.Get("/runs", h.controller.ListRuns)
	jobs.Post("/:name/run", h.controller.RunJob)
}
