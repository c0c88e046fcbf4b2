package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
	"github.com/noah-isme/hall-booking-api/pkg/response"
)

type institutionService interface {
	List(ctx context.Context) ([]models.Institution, error)
	Get(ctx context.Context, id string) (*models.Institution, error)
	Create(ctx context.Context, req dto.InstitutionRequest) (*models.Institution, error)
	Update(ctx context.Context, id string, req dto.InstitutionRequest) (*models.Institution, error)
	Delete(ctx context.Context, id string) error
}

// InstitutionHandler exposes institution endpoints.
type InstitutionHandler struct {
	service institutionService
}

// NewInstitutionHandler constructs the handler.
func NewInstitutionHandler(svc institutionService) *InstitutionHandler {
	return &InstitutionHandler{service: svc}
}

// List godoc
// @Summary List institutions
// @Tags Institutions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /institutions [get]
func (h *InstitutionHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Get godoc
// @Summary Get institution
// @Tags Institutions
// @Produce json
// @Param id path string true "Institution ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /institutions/{id} [get]
func (h *InstitutionHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Create godoc
// @Summary Create institution
// @Tags Institutions
// @Accept json
// @Produce json
// @Param payload body dto.InstitutionRequest true "Institution"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /institutions [post]
func (h *InstitutionHandler) Create(c *gin.Context) {
	var req dto.InstitutionRequest
	if !bindJSON(c, &req, "invalid institution payload") {
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update institution
// @Tags Institutions
// @Accept json
// @Produce json
// @Param id path string true "Institution ID"
// @Param payload body dto.InstitutionRequest true "Institution"
// @Success 200 {object} response.Envelope
// @Router /institutions/{id} [put]
func (h *InstitutionHandler) Update(c *gin.Context) {
	var req dto.InstitutionRequest
	if !bindJSON(c, &req, "invalid institution payload") {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Delete godoc
// @Summary Delete institution
// @Tags Institutions
// @Param id path string true "Institution ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /institutions/{id} [delete]
func (h *InstitutionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
