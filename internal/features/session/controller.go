package session

import (
	"fmt"
	"time"

	common_api "eduvibe/internal/common/api"
	"eduvibe/internal/middleware"
	"eduvibe/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

type SessionController struct {
	SessionService SessionService
}

func NewSessionController(sessionService SessionService) *SessionController {
	return &SessionController{
		SessionService: sessionService,
	}
}

// BookSession godoc
// @Summary      Book a session with a mentor
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        input body BookRequest true "Booking"
// @Success      201  {object} Session
// @Failure      409  {string} string "Slot taken or mentor unavailable"
// @Router       /api/sessions [post]
func (ctrl *SessionController) BookSession(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	var req BookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	sess, err := ctrl.SessionService.Book(c.UserContext(), caller, req)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// ListMySessions godoc
// @Summary      List the caller's sessions
// @Tags         sessions
// @Param        status query string false "Status filter"
// @Param        from query string false "RFC3339 lower bound on scheduled time"
// @Param        to query string false "RFC3339 upper bound on scheduled time"
// @Router       /api/sessions/mine [get]
func (ctrl *SessionController) ListMySessions(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)
	page, limit := common_api.Pagination(c, 10)

	filter, err := parseFilter(c)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}

	sessions, total, err := ctrl.SessionService.ListMine(c.UserContext(), caller, filter, page, limit)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions, "total": total, "page": page, "limit": limit})
}

// ListSessions godoc
// @Summary      List all sessions
// @Tags         sessions
// @Param        student_id query string false "Student filter"
// @Param        mentor_id query string false "Mentor filter"
// @Router       /api/sessions [get]
func (ctrl *SessionController) ListSessions(c *fiber.Ctx) error {
	page, limit := common_api.Pagination(c, 20)

	filter, err := parseFilter(c)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	filter.StudentID = c.Query("student_id")
	filter.MentorID = c.Query("mentor_id")

	sessions, total, err := ctrl.SessionService.ListAll(c.UserContext(), filter, page, limit)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions, "total": total, "page": page, "limit": limit})
}

// GetSession godoc
// @Summary      Get a session
// @Tags         sessions
// @Param        id path string true "Session ID"
// @Router       /api/sessions/{id} [get]
func (ctrl *SessionController) GetSession(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	sess, err := ctrl.SessionService.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(sess)
}

// UpdateSessionStatus godoc
// @Summary      Confirm, reject, cancel or complete a session
// @Tags         sessions
// @Param        id path string true "Session ID"
// @Param        input body StatusUpdateRequest true "New status"
// @Failure      409  {string} string "Transition not allowed"
// @Router       /api/sessions/{id}/status [put]
func (ctrl *SessionController) UpdateSessionStatus(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	sess, err := ctrl.SessionService.UpdateStatus(c.UserContext(), caller, c.Params("id"), req)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(sess)
}

// ExportSessions godoc
// @Summary      Export sessions as XLSX
// @Tags         sessions
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router       /api/sessions/export [get]
func (ctrl *SessionController) ExportSessions(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}

	data, err := ctrl.SessionService.Export(c.UserContext(), filter)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}

	filename := fmt.Sprintf("sessions-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(data)
}

func parseFilter(c *fiber.Ctx) (ListFilter, error) {
	var filter ListFilter
	if raw := c.Query("status"); raw != "" {
		status := Status(raw)
		if _, known := knownStatuses[status]; !known {
			return filter, apperrors.WithMessage(apperrors.ErrValidation, "unknown status "+raw)
		}
		filter.Status = status
	}
	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrValidation, key+" must be an RFC3339 timestamp")
		}
		*dst = &t
	}
	return filter, nil
}

var knownStatuses = map[Status]struct{}{
	StatusPending: {}, StatusConfirmed: {}, StatusRejected: {}, StatusCancelled: {}, StatusCompleted: {},
}
