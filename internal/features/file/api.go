package file

import (
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FileApi struct {
	controller *FileController
	config     *config.Config
}

func NewFileApi(controller *FileController, config *config.Config) *FileApi {
	return &FileApi{
		controller: controller,
		config:     config,
	}
}

func (h *FileApi) Setup(app *fiber.App) {
	files := app.Group("/api/files", middleware.AuthMiddleware(h.config.SkipAuth))

	files.Post("/", middleware.RequireAccess(access.ActionCreate, access.ResourceFile), h.controller.UploadFile)
	files.Get("/", middleware.RequireAccess(access.ActionList, access.ResourceFile), h.controller.ListMyFiles)
	files.Get("/:id/download", h.controller.DownloadFile)
	files.Delete("/:id", h.controller.DeleteFile)
}
