package payment

import (
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PaymentApi struct {
	controller *PaymentController
	config     *config.Config
}

func NewPaymentApi(controller *PaymentController, config *config.Config) *PaymentApi {
	return &PaymentApi{
		controller: controller,
		config:     config,
	}
}

func (h *PaymentApi) Setup(app *fiber.App) {
	// Stripe signs the webhook; it carries no bearer token.
	app.Post("/api/payments/webhook", h.controller.Webhook)

	payments := app.Group("/api/payments", middleware.AuthMiddleware(h.config.SkipAuth))
	payments.Post("/", middleware.RequireAccess(access.ActionCreate, access.ResourcePayment), h.controller.CreatePayment)
	payments.Get("/mine", h.controller.ListMyPayments)
	payments.Get("/:id/receipt", h.controller.DownloadReceipt)
}
