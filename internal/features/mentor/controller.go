package mentor

import (
	"strconv"

	common_api "eduvibe/internal/common/api"
	"eduvibe/internal/middleware"
	"eduvibe/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

type MentorController struct {
	MentorService MentorService
}

func NewMentorController(mentorService MentorService) *MentorController {
	return &MentorController{
		MentorService: mentorService,
	}
}

// ListMentors godoc
// @Summary      Browse mentors
// @Tags         mentors
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(12)
// @Param        subject query string false "Exact subject"
// @Param        search query string false "Name, bio or subject contains"
// @Param        include_hidden query bool false "Admins only: include unapproved and inactive"
// @Router       /api/mentors [get]
func (ctrl *MentorController) ListMentors(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)
	page, limit := common_api.Pagination(c, 12)

	filter := ListFilter{
		Subject: c.Query("subject"),
		Search:  c.Query("search"),
	}
	if raw := c.Query("include_hidden"); raw != "" {
		hidden, err := strconv.ParseBool(raw)
		if err != nil {
			return common_api.ErrorResponse(c, apperrors.WithMessage(apperrors.ErrValidation, "include_hidden must be a boolean"))
		}
		filter.IncludeHidden = hidden
	}

	mentors, total, err := ctrl.MentorService.Browse(c.UserContext(), caller, filter, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch mentors",
		})
	}

	return c.JSON(fiber.Map{
		"mentors": mentors,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// GetMentor godoc
// @Summary      Get mentor profile
// @Tags         mentors
// @Param        id path string true "Mentor ID"
// @Router       /api/mentors/{id} [get]
func (ctrl *MentorController) GetMentor(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	profile, err := ctrl.MentorService.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(profile)
}

// UpsertMyProfile godoc
// @Summary      Create or update the caller's mentor profile
// @Tags         mentors
// @Accept       json
// @Param        input body UpsertProfileRequest true "Profile"
// @Router       /api/mentors/me [put]
func (ctrl *MentorController) UpsertMyProfile(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	var req UpsertProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	profile, err := ctrl.MentorService.UpsertOwn(c.UserContext(), caller, req)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(profile)
}

// ApproveMentor godoc
// @Summary      Approve or revoke a mentor profile
// @Tags         mentors
// @Param        id path string true "Mentor ID"
// @Param        input body ApprovalRequest true "Approval"
// @Router       /api/mentors/{id}/approval [put]
func (ctrl *MentorController) ApproveMentor(c *fiber.Ctx) error {
	var req ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	if err := ctrl.MentorService.SetApproved(c.UserContext(), c.Params("id"), *req.Approved); err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Mentor approval updated"})
}

// UpdateMentorStatus godoc
// @Summary      Activate or deactivate a mentor profile
// @Tags         mentors
// @Param        id path string true "Mentor ID"
// @Param        input body StatusRequest true "Status"
// @Router       /api/mentors/{id}/status [put]
func (ctrl *MentorController) UpdateMentorStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	if err := ctrl.MentorService.SetActive(c.UserContext(), c.Params("id"), *req.IsActive); err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Mentor status updated"})
}
