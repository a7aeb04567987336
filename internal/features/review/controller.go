package review

import (
	common_api "eduvibe/internal/common/api"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReviewController struct {
	ReviewService ReviewService
}

func NewReviewController(reviewService ReviewService) *ReviewController {
	return &ReviewController{
		ReviewService: reviewService,
	}
}

// CreateReview godoc
// @Summary      Review a completed session
// @Tags         reviews
// @Accept       json
// @Param        input body CreateRequest true "Review"
// @Success      201  {object} Review
// @Failure      409  {string} string "Already reviewed or session not completed"
// @Router       /api/reviews [post]
func (ctrl *ReviewController) CreateReview(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	review, err := ctrl.ReviewService.Create(c.UserContext(), caller, req)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// ListMentorReviews godoc
// @Summary      List reviews of a mentor
// @Tags         reviews
// @Param        mentorId path string true "Mentor ID"
// @Router       /api/reviews/mentor/{mentorId} [get]
func (ctrl *ReviewController) ListMentorReviews(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)
	page, limit := common_api.Pagination(c, 10)

	reviews, total, err := ctrl.ReviewService.ListByMentor(c.UserContext(), caller, c.Params("mentorId"), page, limit)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"reviews": reviews, "total": total, "page": page, "limit": limit})
}

// DeleteReview godoc
// @Summary      Delete my review
// @Tags         reviews
// @Param        id path string true "Review ID"
// @Router       /api/reviews/{id} [delete]
func (ctrl *ReviewController) DeleteReview(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	if err := ctrl.ReviewService.DeleteOwn(c.UserContext(), caller, c.Params("id")); err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ModerateReview godoc
// @Summary      Hide or show a review
// @Tags         reviews
// @Param        id path string true "Review ID"
// @Param        input body ModerateRequest true "Visibility"
// @Router       /api/reviews/{id}/moderation [put]
func (ctrl *ReviewController) ModerateReview(c *fiber.Ctx) error {
	var req ModerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(c, err)
	}

	if err := ctrl.ReviewService.Moderate(c.UserContext(), c.Params("id"), *req.Hidden); err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Review updated"})
}
