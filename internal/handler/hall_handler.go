package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
	"github.com/noah-isme/hall-booking-api/pkg/response"
)

type hallService interface {
	List(ctx context.Context, filter models.HallFilter) ([]models.Hall, error)
	Get(ctx context.Context, id string) (*models.Hall, error)
	Create(ctx context.Context, actor models.Actor, req dto.HallRequest) (*models.Hall, error)
	Update(ctx context.Context, actor models.Actor, id string, req dto.HallRequest) (*models.Hall, error)
	Deactivate(ctx context.Context, actor models.Actor, id string) error
}

type availabilityService interface {
	Calendar(ctx context.Context, actor models.Actor, hallID, month string) (*models.HallCalendar, error)
	Slots(ctx context.Context, actor models.Actor, hallID, date string) (*models.DaySlots, error)
}

// HallHandler exposes hall management and availability endpoints.
type HallHandler struct {
	halls        hallService
	availability availabilityService
}

// NewHallHandler constructs the handler.
func NewHallHandler(halls hallService, availability availabilityService) *HallHandler {
	return &HallHandler{halls: halls, availability: availability}
}

// List godoc
// @Summary List halls
// @Tags Halls
// @Produce json
// @Param institution_id query string false "Institution filter"
// @Param active query bool false "Active filter"
// @Param search query string false "Name search"
// @Success 200 {object} response.Envelope
// @Router /halls [get]
func (h *HallHandler) List(c *gin.Context) {
	filter := models.HallFilter{
		InstitutionID: strings.TrimSpace(c.Query("institution_id")),
		Search:        strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be true or false"))
			return
		}
		filter.Active = &active
	}
	items, err := h.halls.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Get godoc
// @Summary Get hall
// @Tags Halls
// @Produce json
// @Param id path string true "Hall ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /halls/{id} [get]
func (h *HallHandler) Get(c *gin.Context) {
	item, err := h.halls.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Create godoc
// @Summary Create hall
// @Tags Halls
// @Accept json
// @Produce json
// @Param payload body dto.HallRequest true "Hall"
// @Success 201 {object} response.Envelope
// @Router /halls [post]
func (h *HallHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.HallRequest
	if !bindJSON(c, &req, "invalid hall payload") {
		return
	}
	item, err := h.halls.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update hall
// @Tags Halls
// @Accept json
// @Produce json
// @Param id path string true "Hall ID"
// @Param payload body dto.HallRequest true "Hall"
// @Success 200 {object} response.Envelope
// @Router /halls/{id} [put]
func (h *HallHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.HallRequest
	if !bindJSON(c, &req, "invalid hall payload") {
		return
	}
	item, err := h.halls.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Deactivate godoc
// @Summary Deactivate hall
// @Description Halls are never hard deleted; existing bookings keep their reference.
// @Tags Halls
// @Param id path string true "Hall ID"
// @Success 204
// @Router /halls/{id} [delete]
func (h *HallHandler) Deactivate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.halls.Deactivate(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Availability godoc
// @Summary Month availability calendar
// @Description 42 day cells starting on the Sunday on or before the first of the month
// @Tags Halls
// @Produce json
// @Param id path string true "Hall ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /halls/{id}/availability [get]
func (h *HallHandler) Availability(c *gin.Context) {
	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month is required"))
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	calendar, err := h.availability.Calendar(c.Request.Context(), actor, c.Param("id"), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, calendar)
}

// Slots godoc
// @Summary Occupied slots on one day
// @Tags Halls
// @Produce json
// @Param id path string true "Hall ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /halls/{id}/slots [get]
func (h *HallHandler) Slots(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	slots, err := h.availability.Slots(c.Request.Context(), actor, c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slots)
}
