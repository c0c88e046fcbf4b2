package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
	"github.com/noah-isme/hall-booking-api/pkg/response"
)

type settingService interface {
	List(ctx context.Context) ([]dto.SettingItem, error)
	Get(ctx context.Context, key string) (*dto.SettingItem, error)
	Update(ctx context.Context, actor models.Actor, key string, req dto.UpdateSettingRequest) (*dto.SettingItem, error)
}

// SettingHandler exposes allow-listed runtime settings.
type SettingHandler struct {
	service settingService
}

// NewSettingHandler constructs the handler.
func NewSettingHandler(svc settingService) *SettingHandler {
	return &SettingHandler{service: svc}
}

// List godoc
// @Summary List settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// RegistrationActive godoc
// @Summary Whether self-registration is open
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/registration_active [get]
func (h *SettingHandler) RegistrationActive(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), models.SettingRegistrationActive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"key": item.Key, "value": item.Value})
}

// Update godoc
// @Summary Update a setting
// @Tags Settings
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param payload body dto.UpdateSettingRequest true "Value"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings/{key} [put]
func (h *SettingHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateSettingRequest
	if !bindJSON(c, &req, "invalid setting payload") {
		return
	}
	item, err := h.service.Update(c.Request.Context(), actor, c.Param("key"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}
