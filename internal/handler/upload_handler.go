package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
	"github.com/noah-isme/hall-booking-api/pkg/response"
)

type uploadService interface {
	Save(ctx context.Context, fh *multipart.FileHeader, category string) (*models.UploadedFile, error)
	SaveBatch(ctx context.Context, files []*multipart.FileHeader, category string) ([]models.UploadedFile, error)
}

// UploadHandler accepts generic file uploads referenced later by URL.
type UploadHandler struct {
	service uploadService
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(svc uploadService) *UploadHandler {
	return &UploadHandler{service: svc}
}

// Upload godoc
// @Summary Upload files
// @Description Accepts a single "image" or "file" field, or repeated "files".
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param category formData string false "Folder for the stored files"
// @Param image formData file false "Single image"
// @Param file formData file false "Single file"
// @Param files formData file false "Multiple files"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "multipart form expected"))
		return
	}
	category := strings.TrimSpace(firstValue(form, "category"))

	if files := form.File["files"]; len(files) > 0 {
		stored, err := h.service.SaveBatch(c.Request.Context(), files, category)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, stored)
		return
	}

	single := firstFile(form, "image")
	if single == nil {
		single = firstFile(form, "file")
	}
	if single == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "no file uploaded"))
		return
	}
	stored, err := h.service.Save(c.Request.Context(), single, category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, stored)
}
