package audit

import (
	common_api "eduvibe/internal/common/api"
	common_models "eduvibe/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs godoc
// @Summary      List audit log entries
// @Tags         audit
// @Param        module query string false "Module"
// @Param        record_id query string false "Record ID"
// @Param        actor_id query string false "Actor ID"
// @Param        action query string false "Action"
// @Param        page query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200  {object} map[string]interface{}
// @Router       /api/audit-logs [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page, limit := common_api.Pagination(c, 20)

	filter := Filter{
		Module:   c.Query("module"),
		RecordID: c.Query("record_id"),
		ActorID:  c.Query("actor_id"),
		Action:   common_models.AuditAction(c.Query("action")),
	}

	logs, total, err := ctrl.Service.ListLogs(c.UserContext(), filter, page, limit)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"data":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
