package auth

import (
	common_api "eduvibe/internal/common/api"
	"eduvibe/pkg/apperrors"
	"eduvibe/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	AuthService AuthService
}

func NewAuthController(authService AuthService) *AuthController {
	return &AuthController{
		AuthService: authService,
	}
}

type RegisterRequest struct {
	Name      string   `json:"name" validate:"required,min=2,max=100"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8,max=72"`
	Role      string   `json:"role" validate:"required,oneof=student mentor"`
	Interests []string `json:"interests" validate:"omitempty,max=20,dive,required"`
	Languages []string `json:"languages" validate:"omitempty,max=10,dive,required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary      Register a new student or mentor
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterRequest true "Register Input"
// @Success      201  {object} user.User
// @Failure      400  {string} string "Invalid request body"
// @Failure      409  {string} string "Email already registered"
// @Router       /api/auth/register [post]
func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	created, err := ctrl.AuthService.Register(c.UserContext(), req)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginRequest true "Login Input"
// @Success      200  {object} Session
// @Failure      401  {string} string "Invalid credentials"
// @Router       /api/auth/login [post]
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	session, err := ctrl.AuthService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}

	return c.JSON(session)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Router       /api/auth/me [get]
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	claims, ok := utils.ClaimsFromCtx(c)
	if !ok {
		return common_api.ErrorResponse(c, apperrors.ErrUnauthorized)
	}

	me, err := ctrl.AuthService.Me(c.UserContext(), claims.UserID)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(me)
}
