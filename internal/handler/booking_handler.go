package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
	"github.com/noah-isme/hall-booking-api/pkg/response"
)

type bookingService interface {
	Create(ctx context.Context, actor models.Actor, req dto.CreateBookingRequest) (*models.Booking, error)
	List(ctx context.Context, actor models.Actor, query dto.BookingListQuery) ([]models.Booking, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateBookingRequest) (*models.Booking, error)
	Decide(ctx context.Context, actor models.Actor, id string, req dto.BookingStatusRequest) (*models.Booking, error)
	Delete(ctx context.Context, actor models.Actor, id string, req dto.DeleteBookingRequest) error
	History(ctx context.Context, actor models.Actor, id string) ([]models.AuditEntry, error)
	SubmitFinalDesign(ctx context.Context, actor models.Actor, id string, file *multipart.FileHeader) (*models.Booking, error)
	SetDriveLink(ctx context.Context, actor models.Actor, id string, req dto.DriveLinkRequest) (*models.Booking, error)
}

type bookingExporter interface {
	ExportBookings(ctx context.Context, actor models.Actor, format string, query dto.BookingListQuery) (*models.ExportResult, error)
}

// BookingHandler exposes the booking directory, approval and team workflows.
type BookingHandler struct {
	bookings bookingService
	exports  bookingExporter
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(bookings bookingService, exports bookingExporter) *BookingHandler {
	return &BookingHandler{bookings: bookings, exports: exports}
}

// Create godoc
// @Summary Request a hall booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateBookingRequest
	if !bindJSON(c, &req, "invalid booking payload") {
		return
	}
	booking, err := h.bookings.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// List godoc
// @Summary List bookings visible to the caller
// @Tags Bookings
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param hall_id query string false "Hall filter"
// @Param department_id query string false "Department filter"
// @Param institution_id query string false "Institution filter (super admin)"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param search query string false "Event title search"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	query, ok := bindBookingQuery(c)
	if !ok {
		return
	}
	items, pagination, err := h.bookings.List(c.Request.Context(), actor, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	booking, err := h.bookings.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// Update godoc
// @Summary Edit booking details
// @Description Admin edit of non-status fields; reason_for_change is required and audited.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.UpdateBookingRequest true "Booking"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateBookingRequest
	if !bindJSON(c, &req, "invalid booking payload") {
		return
	}
	booking, err := h.bookings.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// UpdateStatus godoc
// @Summary Approve or reject a pending booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.BookingStatusRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.BookingStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	booking, err := h.bookings.Decide(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// Delete godoc
// @Summary Delete booking
// @Description Hard delete; the reason is kept in the audit log.
// @Tags Bookings
// @Accept json
// @Param id path string true "Booking ID"
// @Param payload body dto.DeleteBookingRequest true "Reason"
// @Success 204
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.DeleteBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid delete payload"))
		return
	}
	if req.Reason == "" {
		req.Reason = c.Query("reason")
	}
	if err := h.bookings.Delete(c.Request.Context(), actor, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// History godoc
// @Summary Booking audit trail
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/history [get]
func (h *BookingHandler) History(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	entries, err := h.bookings.History(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// FinalDesign godoc
// @Summary Upload the final design for an approved booking
// @Tags Bookings
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Booking ID"
// @Param file formData file true "Design file"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/final-design [post]
func (h *BookingHandler) FinalDesign(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	booking, err := h.bookings.SubmitFinalDesign(c.Request.Context(), actor, c.Param("id"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// DriveLink godoc
// @Summary Attach the photography drive link
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.DriveLinkRequest true "Drive link"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/drive-link [patch]
func (h *BookingHandler) DriveLink(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.DriveLinkRequest
	if !bindJSON(c, &req, "invalid drive link payload") {
		return
	}
	booking, err := h.bookings.SetDriveLink(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// Export godoc
// @Summary Export bookings
// @Description Renders the filtered list and returns a signed download link.
// @Tags Bookings
// @Produce json
// @Param format query string true "csv or pdf"
// @Param status query string false "Comma separated statuses"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 201 {object} response.Envelope
// @Router /bookings/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	query, ok := bindBookingQuery(c)
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	result, err := h.exports.ExportBookings(c.Request.Context(), actor, format, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

func bindBookingQuery(c *gin.Context) (dto.BookingListQuery, bool) {
	var query dto.BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return query, false
	}
	return query, true
}
