package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
	"github.com/noah-isme/hall-booking-api/pkg/response"
)

type pressReleaseService interface {
	Submit(ctx context.Context, actor models.Actor, req dto.PressReleaseSubmission) (*models.PressRelease, error)
	ListMine(ctx context.Context, actor models.Actor) ([]models.PressRelease, error)
	AdminList(ctx context.Context, actor models.Actor, status string) ([]models.PressRelease, error)
	ListApproved(ctx context.Context) ([]models.PressRelease, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id string, req dto.PressReleaseStatusRequest) (*models.PressRelease, error)
	PendingBookings(ctx context.Context, actor models.Actor) ([]models.Booking, error)
}

type overdueNotifier interface {
	PressReleaseOverdue(ctx context.Context, actor models.Actor) ([]models.OverdueNotification, error)
}

// PressReleaseHandler exposes press release submission, review and reminders.
type PressReleaseHandler struct {
	service       pressReleaseService
	notifications overdueNotifier
}

// NewPressReleaseHandler constructs the handler.
func NewPressReleaseHandler(svc pressReleaseService, notifications overdueNotifier) *PressReleaseHandler {
	return &PressReleaseHandler{service: svc, notifications: notifications}
}

// Submit godoc
// @Summary Submit a press release for a past approved booking
// @Tags Press Releases
// @Accept multipart/form-data
// @Produce json
// @Param booking_id formData string true "Booking ID"
// @Param coordinator_name formData string true "Coordinator name"
// @Param english_writeup formData file false "English write-up"
// @Param tamil_writeup formData file false "Tamil write-up"
// @Param photo_description formData file false "Photo description"
// @Param photos formData file false "Event photos (repeatable)"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /press-releases [post]
func (h *PressReleaseHandler) Submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "multipart form expected"))
		return
	}
	req := dto.PressReleaseSubmission{
		BookingID:        strings.TrimSpace(firstValue(form, "booking_id")),
		CoordinatorName:  strings.TrimSpace(firstValue(form, "coordinator_name")),
		EnglishWriteup:   firstFile(form, "english_writeup"),
		TamilWriteup:     firstFile(form, "tamil_writeup"),
		PhotoDescription: firstFile(form, "photo_description"),
		Photos:           append(form.File["photos"], form.File["photos[]"]...),
	}
	release, err := h.service.Submit(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, release)
}

// ListMine godoc
// @Summary Caller's press release submissions
// @Tags Press Releases
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /press-releases [get]
func (h *PressReleaseHandler) ListMine(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// AdminList godoc
// @Summary Review queue of press releases
// @Tags Press Releases
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} response.Envelope
// @Router /admin/press-releases [get]
func (h *PressReleaseHandler) AdminList(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.AdminList(c.Request.Context(), actor, strings.TrimSpace(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// UpdateStatus godoc
// @Summary Review a press release
// @Tags Press Releases
// @Accept json
// @Produce json
// @Param id path string true "Press release ID"
// @Param payload body dto.PressReleaseStatusRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /admin/press-releases/{id}/status [patch]
func (h *PressReleaseHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.PressReleaseStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	release, err := h.service.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, release)
}

// ListApproved godoc
// @Summary Approved press releases for the publishing team
// @Tags Press Releases
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teams/approved-press-releases [get]
func (h *PressReleaseHandler) ListApproved(c *gin.Context) {
	items, err := h.service.ListApproved(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// PendingBookings godoc
// @Summary Past approved bookings still awaiting a press release
// @Tags Press Releases
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bookings/pending-press-release [get]
func (h *PressReleaseHandler) PendingBookings(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.PendingBookings(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Overdue godoc
// @Summary Overdue press release reminders
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/press-release-overdue [get]
func (h *PressReleaseHandler) Overdue(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.notifications.PressReleaseOverdue(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

func firstValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func firstFile(form *multipart.Form, key string) *multipart.FileHeader {
	if files := form.File[key]; len(files) > 0 {
		return files[0]
	}
	return nil
}
