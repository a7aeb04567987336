package scheduler

import (
	common_api "eduvibe/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type SchedulerController struct {
	SchedulerService SchedulerService
}

func NewSchedulerController(schedulerService SchedulerService) *SchedulerController {
	return &SchedulerController{
		SchedulerService: schedulerService,
	}
}

// ListJobs godoc
// @Summary      List background jobs
// @Tags         scheduler
// @Produce      json
// @Success      200  {array} JobInfo
// @Router       /api/admin/jobs [get]
func (ctrl *SchedulerController) ListJobs(c *fiber.Ctx) error {
	return c.JSON(ctrl.SchedulerService.Jobs())
}

// ListRuns godoc
// @Summary      Recent job runs
// @Tags         scheduler
// @Param        job query string false "Job name"
// @Param        limit query int false "Max runs"
// @Router       /api/admin/jobs/runs [get]
func (ctrl *SchedulerController) ListRuns(c *fiber.Ctx) error {
	runs, err := ctrl.SchedulerService.ListRuns(c.UserContext(), c.Query("job"), int64(c.QueryInt("limit", 50)))
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(runs)
}

// RunJob godoc
// @Summary      Run a job now
// @Tags         scheduler
// @Param        name path string true "Job name"
// @Success      200  {object} JobRun
// @Router       /api/admin/jobs/{name}/run [post]
func (ctrl *SchedulerController) RunJob(c *fiber.Ctx) error {
	run, err := ctrl.SchedulerService.RunNow(c.UserContext(), c.Params("name"))
	if err != nil && run == nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(run)
}
