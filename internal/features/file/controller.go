package file

import (
	common_api "eduvibe/internal/common/api"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FileController struct {
	FileService FileService
}

func NewFileController(fileService FileService) *FileController {
	return &FileController{
		FileService: fileService,
	}
}

// UploadFile godoc
// @Summary Upload file
// @Description Upload an avatar or session material. Type is detected from the content.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param session_id formData string false "Related session"
// @Param description formData string false "File Description"
// @Success 201 {object} File
// @Failure 400 {object} map[string]interface{}
// @Router /api/files [post]
func (ctrl *FileController) UploadFile(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Error retrieving file",
		})
	}
	body, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Error reading file",
		})
	}
	defer body.Close()

	f, err := ctrl.FileService.Upload(c.UserContext(), caller, Upload{
		Filename:    header.Filename,
		Size:        header.Size,
		SessionID:   c.FormValue("session_id"),
		Description: c.FormValue("description"),
	}, body)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(f)
}

// ListMyFiles godoc
// @Summary List my files
// @Tags files
// @Produce json
// @Router /api/files [get]
func (ctrl *FileController) ListMyFiles(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)
	page, limit := common_api.Pagination(c, 20)

	files, total, err := ctrl.FileService.ListMine(c.UserContext(), caller, page, limit)
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"files": files, "total": total, "page": page, "limit": limit})
}

// DownloadFile godoc
// @Summary Download file
// @Tags files
// @Param id path string true "File ID"
// @Success 200 {file} file "File content"
// @Failure 404 {object} map[string]interface{}
// @Router /api/files/{id}/download [get]
func (ctrl *FileController) DownloadFile(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	f, path, err := ctrl.FileService.Open(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return common_api.ErrorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, f.MimeType)
	return c.Download(path, f.OriginalFilename)
}

// DeleteFile godoc
// @Summary Delete file
// @Tags files
// @Param id path string true "File ID"
// @Failure 403 {object} map[string]interface{}
// @Router /api/files/{id} [delete]
func (ctrl *FileController) DeleteFile(c *fiber.Ctx) error {
	caller, _ := middleware.AccessContext(c)

	if err := ctrl.FileService.Delete(c.UserContext(), caller, c.Params("id")); err != nil {
		return common_api.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "File deleted successfully",
	})
}
