package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

const dashboardCachePattern = "dashboard:*"

type bookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	Update(ctx context.Context, b *models.Booking) error
	Decide(ctx context.Context, id string, status models.BookingStatus, deciderID string, reason *string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	SetFinalDesign(ctx context.Context, id, fileURL string) error
	SetDriveLink(ctx context.Context, id, link string) error
}

type auditTrail interface {
	auditRecorder
	ListForResource(ctx context.Context, resource, resourceID string) ([]models.AuditLog, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

type decisionNotifier interface {
	BookingDecided(ctx context.Context, evt models.BookingDecidedEvent)
}

type decisionCounter interface {
	RecordBookingDecision(status models.BookingStatus)
}

type fileStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader, category string) (*models.UploadedFile, error)
	Remove(files ...models.UploadedFile)
}

// BookingService owns the booking directory, the approval state machine and
// the designing and photography single-field workflows.
type BookingService struct {
	repo        bookingRepository
	halls       hallLookup
	departments departmentFinder
	audit       auditTrail
	cache       cacheInvalidator
	notifier    decisionNotifier
	metrics     decisionCounter
	files       fileStore
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// BookingServiceParams groups constructor dependencies.
type BookingServiceParams struct {
	Repo        bookingRepository
	Halls       hallLookup
	Departments departmentFinder
	Audit       auditTrail
	Cache       cacheInvalidator
	Notifier    decisionNotifier
	Metrics     decisionCounter
	Files       fileStore
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewBookingService constructs the booking service.
func NewBookingService(params BookingServiceParams) *BookingService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &BookingService{
		repo:        params.Repo,
		halls:       params.Halls,
		departments: params.Departments,
		audit:       params.Audit,
		cache:       params.Cache,
		notifier:    params.Notifier,
		metrics:     params.Metrics,
		files:       params.Files,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// Create submits a new pending booking on behalf of the caller.
func (s *BookingService) Create(ctx context.Context, actor models.Actor, req dto.CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid booking payload")
	}

	b := &models.Booking{
		UserID:     actor.UserID,
		Status:     models.BookingStatusPending,
		WorkStatus: models.WorkStatusPending,
	}
	if err := s.applyFields(ctx, actor, b, req.BookingFields); err != nil {
		return nil, err
	}
	if b.BookingDate.Before(models.NewDate(s.now())) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "booking date is in the past")
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, internalError(err, "failed to create booking")
	}

	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionBookingCreate, models.AuditResourceBooking, b.ID, nil, auditSnapshot(b))
	s.invalidateDashboard(ctx)
	return s.reload(ctx, b), nil
}

// List returns the bookings visible to the actor.
func (s *BookingService) List(ctx context.Context, actor models.Actor, query dto.BookingListQuery) ([]models.Booking, *models.Pagination, error) {
	filter, err := ScopedBookingFilter(actor, query)
	if err != nil {
		return nil, nil, err
	}
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list bookings")
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one booking if the actor may see it.
func (s *BookingService) Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "booking not found", "failed to load booking")
	}
	if !canViewBooking(actor, b) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
	}
	return b, nil
}

// Update edits the non-status fields of a booking. The reason is kept in the audit trail.
func (s *BookingService) Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid booking payload")
	}
	reason := strings.TrimSpace(req.ReasonForChange)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason_for_change is required")
	}

	b, err := s.loadForAdmin(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := auditSnapshot(b)
	if req.DepartmentID == "" {
		req.DepartmentID = b.DepartmentID
	}
	if err := s.applyFields(ctx, actor, b, req.BookingFields); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, internalError(err, "failed to update booking")
	}

	after := auditSnapshot(b)
	after["reason_for_change"] = reason
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionBookingUpdate, models.AuditResourceBooking, b.ID, before, after)
	s.invalidateDashboard(ctx)
	return s.reload(ctx, b), nil
}

// Decide moves a pending booking to approved or rejected. Decided bookings
// never change status again.
func (s *BookingService) Decide(ctx context.Context, actor models.Actor, id string, req dto.BookingStatusRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	status := models.BookingStatus(req.Status)
	var reason *string
	if status == models.BookingStatusRejected {
		trimmed := strings.TrimSpace(req.RejectionReason)
		if trimmed == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "rejection_reason is required when rejecting")
		}
		reason = &trimmed
	}

	b, err := s.loadForAdmin(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("booking is already %s", b.Status))
	}

	decidedAt := s.now().UTC()
	changed, err := s.repo.Decide(ctx, b.ID, status, actor.UserID, reason, decidedAt)
	if err != nil {
		return nil, internalError(err, "failed to update booking status")
	}
	if !changed {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "booking has already been decided")
	}

	action := models.AuditActionBookingApprove
	if status == models.BookingStatusRejected {
		action = models.AuditActionBookingReject
	}
	writeAudit(ctx, s.audit, s.logger, actor, action, models.AuditResourceBooking, b.ID,
		map[string]interface{}{"status": b.Status},
		map[string]interface{}{"status": status, "rejection_reason": derefString(reason)})
	s.invalidateDashboard(ctx)
	if s.metrics != nil {
		s.metrics.RecordBookingDecision(status)
	}

	if s.notifier != nil {
		s.notifier.BookingDecided(ctx, models.BookingDecidedEvent{
			BookingID:       b.ID,
			Status:          status,
			EventTitle:      b.EventTitle,
			BookingDate:     b.BookingDate,
			TimeSlot:        b.TimeSlot,
			HallName:        b.HallName,
			RequesterName:   b.RequesterName,
			RequesterEmail:  b.RequesterEmail,
			DecidedBy:       actor.UserID,
			RejectionReason: derefString(reason),
			DecidedAt:       decidedAt,
		})
	}

	b.Status = status
	b.RejectionReason = reason
	if status == models.BookingStatusApproved {
		b.ApprovedBy, b.ApprovedAt = stringPtr(actor.UserID), &decidedAt
	}
	return s.reload(ctx, b), nil
}

// Delete hard-deletes a booking. The reason and the deleted row are audited.
func (s *BookingService) Delete(ctx context.Context, actor models.Actor, id string, req dto.DeleteBookingRequest) error {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return appErrors.Clone(appErrors.ErrValidation, "reason is required to delete a booking")
	}
	b, err := s.loadForAdmin(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, b.ID); err != nil {
		return lookupError(err, "booking not found", "failed to delete booking")
	}
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionBookingDelete, models.AuditResourceBooking, b.ID,
		auditSnapshot(b), map[string]string{"reason": reason})
	s.invalidateDashboard(ctx)
	return nil
}

// History returns the audit trail of a booking, oldest first.
func (s *BookingService) History(ctx context.Context, actor models.Actor, id string) ([]models.AuditEntry, error) {
	if _, err := s.loadForAdmin(ctx, actor, id); err != nil {
		return nil, err
	}
	logs, err := s.audit.ListForResource(ctx, models.AuditResourceBooking, id)
	if err != nil {
		return nil, internalError(err, "failed to load booking history")
	}
	entries := make([]models.AuditEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, models.AuditEntry{
			ID:        l.ID,
			UserID:    l.UserID,
			Action:    l.Action,
			OldValues: l.OldValues,
			NewValues: l.NewValues,
			CreatedAt: l.CreatedAt,
		})
	}
	return entries, nil
}

// SubmitFinalDesign stores the designing team's artwork on an approved
// booking. A later submission replaces the earlier file reference.
func (s *BookingService) SubmitFinalDesign(ctx context.Context, actor models.Actor, id string, file *multipart.FileHeader) (*models.Booking, error) {
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	b, err := s.loadApproved(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	stored, err := s.files.Save(ctx, file, "designs")
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetFinalDesign(ctx, b.ID, stored.URL); err != nil {
		s.files.Remove(*stored)
		return nil, internalError(err, "failed to store final design")
	}
	b.FinalFileURL = &stored.URL
	b.WorkStatus = models.WorkStatusCompleted
	return s.reload(ctx, b), nil
}

// SetDriveLink records the photography team's shared folder on an approved booking.
func (s *BookingService) SetDriveLink(ctx context.Context, actor models.Actor, id string, req dto.DriveLinkRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid drive link payload")
	}
	link := strings.TrimSpace(req.DriveLink)
	if link == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "drive_link is required")
	}
	b, err := s.loadApproved(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetDriveLink(ctx, b.ID, link); err != nil {
		return nil, internalError(err, "failed to store drive link")
	}
	b.PhotographyDriveLink = &link
	return s.reload(ctx, b), nil
}

// ScopedBookingFilter turns list query parameters into a repository filter
// restricted to the actor's visibility.
func ScopedBookingFilter(actor models.Actor, query dto.BookingListQuery) (models.BookingFilter, error) {
	filter := models.BookingFilter{
		InstitutionID: query.InstitutionID,
		DepartmentID:  query.DepartmentID,
		HallID:        query.HallID,
		Search:        query.Search,
		Page:          query.Page,
		PageSize:      query.PageSize,
		SortOrder:     query.SortOrder,
	}
	for _, raw := range strings.Split(query.Status, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		status := models.BookingStatus(raw)
		if !status.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", raw))
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if query.From != "" {
		from, err := models.ParseDate(query.From)
		if err != nil {
			return filter, validationError(err, "from must be formatted as YYYY-MM-DD")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := models.ParseDate(query.To)
		if err != nil {
			return filter, validationError(err, "to must be formatted as YYYY-MM-DD")
		}
		filter.To = &to
	}
	return scopeBookingFilter(actor, filter)
}

// applyFields copies requester-editable fields onto b after resolving the
// hall and department and checking both sit in one institution the actor may book for.
func (s *BookingService) applyFields(ctx context.Context, actor models.Actor, b *models.Booking, f dto.BookingFields) error {
	date, err := models.ParseDate(strings.TrimSpace(f.BookingDate))
	if err != nil {
		return validationError(err, "booking_date must be formatted as YYYY-MM-DD")
	}
	start, err := parseClock(f.StartTime)
	if err != nil {
		return validationError(err, "start_time must be formatted as HH:MM")
	}
	end, err := parseClock(f.EndTime)
	if err != nil {
		return validationError(err, "end_time must be formatted as HH:MM")
	}
	if end <= start {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}

	hall, err := s.halls.FindByID(ctx, f.HallID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "hall not found")
		}
		return internalError(err, "failed to load hall")
	}
	if !hall.Active {
		return appErrors.Clone(appErrors.ErrValidation, "hall is not accepting bookings")
	}

	departmentID := f.DepartmentID
	if actor.Role == models.RoleDepartmentUser {
		if departmentID != "" && departmentID != actor.DepartmentID {
			return appErrors.Clone(appErrors.ErrForbidden, "cannot book for another department")
		}
		departmentID = actor.DepartmentID
	}
	if departmentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "department_id is required")
	}
	dept, err := s.departments.FindByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "department not found")
		}
		return internalError(err, "failed to load department")
	}
	if dept.InstitutionID != hall.InstitutionID {
		return appErrors.Clone(appErrors.ErrValidation, "hall and department belong to different institutions")
	}
	if actor.Role == models.RolePrincipal && hall.InstitutionID != actor.InstitutionID {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot book halls of another institution")
	}

	b.HallID = hall.ID
	b.DepartmentID = dept.ID
	b.InstitutionID = hall.InstitutionID
	b.BookingDate = date
	b.EventTitle = strings.TrimSpace(f.EventTitle)
	b.EventDescription = strings.TrimSpace(f.EventDescription)
	b.StartTime, b.EndTime = start, end
	b.TimeSlot = strings.TrimSpace(f.TimeSlot)
	if b.TimeSlot == "" {
		b.TimeSlot = start + " - " + end
	}
	b.NeedsAC, b.NeedsFan, b.NeedsPhotography = f.NeedsAC, f.NeedsFan, f.NeedsPhotography
	b.CoordinatorNames = strings.TrimSpace(f.CoordinatorNames)
	b.ChiefGuestName = strings.TrimSpace(f.ChiefGuestName)
	b.ChiefGuestDesignation = strings.TrimSpace(f.ChiefGuestDesignation)
	b.ChiefGuestPhotoURL = f.ChiefGuestPhotoURL
	b.EventPartnerName = strings.TrimSpace(f.EventPartnerName)
	b.EventPartnerDetails = strings.TrimSpace(f.EventPartnerDetails)
	b.EventPartnerLogoURL = f.EventPartnerLogoURL
	b.ConvenorName = strings.TrimSpace(f.ConvenorName)
	b.ConvenorDesignation = strings.TrimSpace(f.ConvenorDesignation)
	b.InHouseGuest = strings.TrimSpace(f.InHouseGuest)
	b.AttachmentURLs = pq.StringArray(f.AttachmentURLs)
	if b.AttachmentURLs == nil {
		b.AttachmentURLs = pq.StringArray{}
	}
	b.HallName, b.DepartmentName, b.DepartmentShortCode = hall.Name, dept.Name, dept.ShortCode
	return nil
}

func (s *BookingService) loadForAdmin(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "booking not found", "failed to load booking")
	}
	if !canAdminister(actor, b.InstitutionID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot manage bookings of another institution")
	}
	return b, nil
}

func (s *BookingService) loadApproved(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	b, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "booking is not approved")
	}
	return b, nil
}

func (s *BookingService) reload(ctx context.Context, b *models.Booking) *models.Booking {
	fresh, err := s.repo.FindByID(ctx, b.ID)
	if err != nil {
		s.logger.Warn("failed to reload booking", zap.String("booking_id", b.ID), zap.Error(err))
		return b
	}
	return fresh
}

func (s *BookingService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// parseClock normalises "H:MM", "HH:MM" or "HH:MM:SS" to "HH:MM".
func parseClock(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("invalid time %q", raw)
}

func auditSnapshot(b *models.Booking) map[string]interface{} {
	return map[string]interface{}{
		"hall_id":       b.HallID,
		"department_id": b.DepartmentID,
		"booking_date":  b.BookingDate.String(),
		"event_title":   b.EventTitle,
		"start_time":    b.StartTime,
		"end_time":      b.EndTime,
		"status":        b.Status,
	}
}
