package payment

import (
	"fmt"

	common_api "eduvibe/internal/common/api"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PaymentController struct {
	PaymentService PaymentService
}

func NewPaymentController(paymentService PaymentService) *PaymentController {
	return &PaymentController{
		PaymentService: paymentService,
	}
}

// CreatePayment godoc
// @Summary      Start paying for a session
// @Description  Returns the payment with the client secret the frontend confirms with Stripe.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        input body CreateRequest true "Session to pay"
// @Success      201  {object} Payment
// @Failure      503  {string} string "Payments not configured"
// @Router       /api/payments [post]
func (ctrl *PaymentController) CreatePayment(c *fiber.Ctx) error {
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

	p, err := ctrl.PaymentService.Create(c.UserContext(), caller, req)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// ListMyPayments godoc
// @Summary      List the caller's payments
// @Tags         payments
// @Router       /api/payments/mine [get]
func (ctrl *PaymentController) ListMyPayments(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)
	page, limit := common_api.Pagination(c, 10)

	payments, total, err := ctrl.PaymentService.ListMine(c.UserContext(), caller, page, limit)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"payments": payments, "total": total, "page": page, "limit": limit})
}

// DownloadReceipt godoc
// @Summary      Download a PDF receipt
// @Tags         payments
// @Produce      application/pdf
// @Param        id path string true "Payment ID"
// @Router       /api/payments/{id}/receipt [get]
func (ctrl *PaymentController) DownloadReceipt(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	pdf, p, err := ctrl.PaymentService.Receipt(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=receipt-%s.pdf", p.ID.Hex()))
	return c.Send(pdf)
}

// Webhook godoc
// @Summary      Stripe webhook
// @Tags         payments
// @Router       /api/payments/webhook [post]
func (ctrl *PaymentController) Webhook(c *fiber.Ctx) error {
	if err := ctrl.PaymentService.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature")); err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
