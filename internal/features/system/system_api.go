package system

import (
	"eduvibe/internal/cache"
	"eduvibe/internal/common/api"
	"eduvibe/internal/database"
	"eduvibe/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type SystemApi struct {
	health  *HealthController
	metrics *metrics.Metrics
}

func NewSystemApi(db *database.MongodbDB, cacheRepo *cache.Repository, m *metrics.Metrics) api.Route {
	return &SystemApi{
		health: NewHealthController(map[string]Pinger{
			"mongo": db,
			"redis": cacheRepo,
		}),
		metrics: m,
	}
}

func (h *SystemApi) Setup(app *fiber.App) {
	app.Get("/health", h.health.Health)
	app.Get("/metrics", adaptor.HTTPHandler(h.metrics.Handler()))
}
