package user

import (
	"strconv"

	common_api "eduvibe/internal/common/api"
	"eduvibe/internal/features/access"
	"eduvibe/internal/middleware"
	"eduvibe/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	UserService UserService
}

func NewUserController(userService UserService) *UserController {
	return &UserController{
		UserService: userService,
	}
}

// ListUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Param        role query string false "Filter by role"
// @Param        active query bool false "Filter by active flag"
// @Param        search query string false "Name or email contains"
// @Router       /api/users [get]
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	page, limit := common_api.Pagination(c, 10)

	filter := ListFilter{Search: c.Query("search")}
	if raw := c.Query("role"); raw != "" {
		role, ok := access.ParseRole(raw)
		if !ok {
			return common_api.ErrorResponse(c, apperrors.WithMessage(apperrors.ErrValidation, "unknown role"))
		}
		filter.Role = role
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return common_api.ErrorResponse(c, apperrors.WithMessage(apperrors.ErrValidation, "active must be a boolean"))
		}
		filter.Active = &active
	}

	users, total, err := ctrl.UserService.ListUsers(c.UserContext(), filter, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUser godoc
// @Summary      Get user by ID
// @Tags         users
// @Param        id path string true "User ID"
// @Router       /api/users/{id} [get]
func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	user, err := ctrl.UserService.GetUser(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(user)
}

// UpdateUserStatus godoc
// @Summary      Activate or deactivate a user
// @Tags         users
// @Param        id path string true "User ID"
// @Param        input body UpdateStatusRequest true "Status"
// @Router       /api/users/{id}/status [put]
func (ctrl *UserController) UpdateUserStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	if err := ctrl.UserService.SetActive(c.UserContext(), c.Params("id"), *req.IsActive); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "User status updated successfully",
	})
}

// UpdateUserRole godoc
// @Summary      Change a user's role
// @Tags         users
// @Param        id path string true "User ID"
// @Param        input body UpdateRoleRequest true "Role"
// @Router       /api/users/{id}/role [put]
func (ctrl *UserController) UpdateUserRole(c *fiber.Ctx) error {
	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	caller, _ := middleware.AccessContext(c)
	if err := ctrl.UserService.ChangeRole(c.UserContext(), caller, c.Params("id"), access.Role(req.Role)); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "User role updated successfully",
	})
}

// UpdateMyProfile godoc
// @Summary      Update the caller's interests, languages and name
// @Tags         users
// @Param        input body UpdateProfileRequest true "Profile"
// @Router       /api/users/me [put]
func (ctrl *UserController) UpdateMyProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	caller, _ := middleware.AccessContext(c)
	user, err := ctrl.UserService.UpdateOwnProfile(c.UserContext(), caller, req)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(user)
}
