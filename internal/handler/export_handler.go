package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hall-booking-api/internal/service"
	"github.com/noah-isme/hall-booking-api/pkg/response"
)

type exportOpener interface {
	Open(token string) (*service.ExportDownload, error)
}

// ExportHandler streams previously generated exports by signed token.
type ExportHandler struct {
	exports exportOpener
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports exportOpener) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Download godoc
// @Summary Download an export
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.exports.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", download.ContentType)
	if info, statErr := download.File.Stat(); statErr == nil {
		c.DataFromReader(http.StatusOK, info.Size(), download.ContentType, download.File, nil)
		return
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, download.File)
}
