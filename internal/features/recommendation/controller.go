package recommendation

import (
	"math"
	"strconv"
	"strings"

	common_api "eduvibe/internal/common/api"
	"eduvibe/internal/features/access"
	"eduvibe/pkg/apperrors"
	"eduvibe/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type RecommendationController struct {
	Service RecommendationService
}

func NewRecommendationController(service RecommendationService) *RecommendationController {
	return &RecommendationController{Service: service}
}

// GetRecommendations godoc
// @Summary      Recommend mentors
// @Description  Ranked mentor matches for the calling student. Admins may pass student_id.
// @Tags         recommendations
// @Produce      json
// @Param        subjects query string false "Comma separated subjects"
// @Param        experience_level query string false "beginner|intermediate|advanced|expert"
// @Param        min_price query number false "Minimum hourly rate"
// @Param        max_price query number false "Maximum hourly rate"
// @Param        min_rating query number false "Minimum rating 0-5"
// @Param        location query string false "Location substring"
// @Param        languages query string false "Comma separated languages"
// @Param        limit query int false "Result size, 1-50"
// @Success      200  {object} Result
// @Failure      503  {object} Result
// @Router       /api/recommendations [get]
func (ctrl *RecommendationController) GetRecommendations(c *fiber.Ctx) error {
	claims, ok := utils.ClaimsFromCtx(c)
	if !ok {
		return common_api.ErrorResponse(c, apperrors.ErrUnauthorized)
	}

	filters, err := ParseFilters(c)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}

	studentID := claims.UserID
	if other := c.Query("student_id"); other != "" && access.IsAdmin(access.Role(claims.Role)) {
		studentID = other
	}

	result := ctrl.Service.GetRecommendations(c.UserContext(), studentID, filters, filters.Limit)
	if !result.Success {
		return c.Status(fiber.StatusServiceUnavailable).JSON(result)
	}
	return c.JSON(result)
}

// GetPopularSubjects godoc
// @Summary      Most offered subjects
// @Tags         recommendations
// @Produce      json
// @Param        limit query int false "Number of subjects" default(10)
// @Router       /api/recommendations/popular-subjects [get]
func (ctrl *RecommendationController) GetPopularSubjects(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return common_api.ErrorResponse(c, apperrors.WithMessage(apperrors.ErrValidation, "limit must be an integer"))
	}

	subjects, err := ctrl.Service.GetPopularSubjects(c.UserContext(), limit)
	if err != nil {
		return common_api.ErrorResponse(c, apperrors.Wrap(err, apperrors.ErrCollaboratorUnavailable, "popular subjects are temporarily unavailable"))
	}

	return c.JSON(fiber.Map{
		"subjects": subjects,
	})
}

// ParseFilters reads recommendation filters from the query string and validates them.
func ParseFilters(c *fiber.Ctx) (Filters, error) {
	var f Filters

	f.Subjects = splitList(c.Query("subjects"))
	f.Languages = splitList(c.Query("languages"))

	if lvl := strings.ToLower(strings.TrimSpace(c.Query("experience_level"))); lvl != "" {
		level := ExperienceLevel(lvl)
		f.ExperienceLevel = &level
	}

	minPrice, hasMin, err := parseFloat(c, "min_price")
	if err != nil {
		return f, err
	}
	maxPrice, hasMax, err := parseFloat(c, "max_price")
	if err != nil {
		return f, err
	}
	if hasMin || hasMax {
		if !hasMax {
			maxPrice = math.MaxFloat64
		}
		f.PriceRange = &PriceRange{Min: minPrice, Max: maxPrice}
	}

	if rating, ok, err := parseFloat(c, "min_rating"); err != nil {
		return f, err
	} else if ok {
		f.Rating = &rating
	}

	if loc := strings.TrimSpace(c.Query("location")); loc != "" {
		f.Location = &loc
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return f, apperrors.WithMessage(apperrors.ErrValidation, "limit must be an integer")
		}
		f.Limit = limit
	}

	if err := common_api.Validate(f); err != nil {
		return f, err
	}
	return f, nil
}

func parseFloat(c *fiber.Ctx, key string) (float64, bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, apperrors.WithMessage(apperrors.ErrValidation, key+" must be a number")
	}
	return v, true, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
