package service

import (
	"context"
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
	"github.com/noah-isme/hall-booking-api/internal/repository"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

const (
	defaultMaxPressReleasePhotos = 10
	pressReleaseUploadCategory   = "press-releases"
)

type pressReleaseRepository interface {
	Create(ctx context.Context, pr *models.PressRelease) error
	FindByID(ctx context.Context, id string) (*models.PressRelease, error)
	ExistsForBooking(ctx context.Context, bookingID string) (bool, error)
	List(ctx context.Context, filter models.PressReleaseFilter) ([]models.PressRelease, error)
	UpdateStatus(ctx context.Context, id string, status models.PressReleaseStatus) error
}

type pressReleaseBookings interface {
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	ListAwaitingPressRelease(ctx context.Context, userID string, onOrBefore models.Date) ([]models.Booking, error)
}

type batchFileStore interface {
	fileStore
	SaveBatch(ctx context.Context, files []*multipart.FileHeader, category string) ([]models.UploadedFile, error)
}

// PressReleaseServiceConfig tunes submission limits.
type PressReleaseServiceConfig struct {
	MaxPhotos int
}

// PressReleaseService handles the one-time post-event submission per booking
// and its admin review.
type PressReleaseService struct {
	repo      pressReleaseRepository
	bookings  pressReleaseBookings
	files     batchFileStore
	audit     auditRecorder
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PressReleaseServiceConfig
	now       func() time.Time
}

// NewPressReleaseService constructs the service.
func NewPressReleaseService(repo pressReleaseRepository, bookings pressReleaseBookings, files batchFileStore, audit auditRecorder, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger, cfg PressReleaseServiceConfig) *PressReleaseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPhotos <= 0 {
		cfg.MaxPhotos = defaultMaxPressReleasePhotos
	}
	return &PressReleaseService{
		repo:      repo,
		bookings:  bookings,
		files:     files,
		audit:     audit,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Submit stores the requester's press release for a completed approved booking.
func (s *PressReleaseService) Submit(ctx context.Context, actor models.Actor, req dto.PressReleaseSubmission) (*models.PressRelease, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid press release payload")
	}
	if len(req.Photos) > s.cfg.MaxPhotos {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d photos are allowed", s.cfg.MaxPhotos))
	}

	booking, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, lookupError(err, "booking not found", "failed to load booking")
	}
	if booking.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the requester can submit a press release for this booking")
	}
	if booking.Status != models.BookingStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "booking is not approved")
	}
	if models.NewDate(s.now()).Before(booking.BookingDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "press release can only be submitted after the event")
	}
	exists, err := s.repo.ExistsForBooking(ctx, booking.ID)
	if err != nil {
		return nil, internalError(err, "failed to check press release")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "press release already submitted for this booking")
	}

	pr := &models.PressRelease{
		BookingID:       booking.ID,
		UserID:          actor.UserID,
		DepartmentID:    booking.DepartmentID,
		InstitutionID:   booking.InstitutionID,
		CoordinatorName: strings.TrimSpace(req.CoordinatorName),
		EventTitle:      booking.EventTitle,
		EventDate:       booking.BookingDate,
		DepartmentName:  booking.DepartmentName,
		Status:          models.PressReleasePending,
	}
	// Files stored so far are removed if the submission does not complete.
	var stored []models.UploadedFile
	committed := false
	defer func() {
		if !committed && len(stored) > 0 {
			s.files.Remove(stored...)
		}
	}()

	if pr.EnglishWriteupURL, err = s.saveOptional(ctx, req.EnglishWriteup, &stored); err != nil {
		return nil, err
	}
	if pr.TamilWriteupURL, err = s.saveOptional(ctx, req.TamilWriteup, &stored); err != nil {
		return nil, err
	}
	if pr.PhotoDescriptionURL, err = s.saveOptional(ctx, req.PhotoDescription, &stored); err != nil {
		return nil, err
	}
	pr.PhotoURLs = pq.StringArray{}
	if len(req.Photos) > 0 {
		photos, err := s.files.SaveBatch(ctx, req.Photos, pressReleaseUploadCategory)
		if err != nil {
			return nil, err
		}
		stored = append(stored, photos...)
		for _, p := range photos {
			pr.PhotoURLs = append(pr.PhotoURLs, p.URL)
		}
	}

	if err := s.repo.Create(ctx, pr); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "press release already submitted for this booking")
		}
		return nil, internalError(err, "failed to create press release")
	}
	committed = true

	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionPressReleaseSubmit, models.AuditResourcePressRelease, pr.ID, nil,
		map[string]interface{}{"booking_id": pr.BookingID, "photos": len(pr.PhotoURLs)})
	s.invalidateDashboard(ctx)
	return pr, nil
}

// ListMine returns the caller's own submissions.
func (s *PressReleaseService) ListMine(ctx context.Context, actor models.Actor) ([]models.PressRelease, error) {
	return s.list(ctx, models.PressReleaseFilter{UserID: actor.UserID})
}

// AdminList returns submissions for review. Principals only see their institution.
func (s *PressReleaseService) AdminList(ctx context.Context, actor models.Actor, status string) ([]models.PressRelease, error) {
	filter := models.PressReleaseFilter{Status: models.PressReleaseStatus(status)}
	if status != "" && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
	}
	switch actor.Role {
	case models.RoleSuperAdmin:
	case models.RolePrincipal:
		if actor.InstitutionID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "principal has no institution")
		}
		filter.InstitutionID = actor.InstitutionID
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "insufficient role")
	}
	return s.list(ctx, filter)
}

// ListApproved returns approved submissions for the press release team.
func (s *PressReleaseService) ListApproved(ctx context.Context) ([]models.PressRelease, error) {
	return s.list(ctx, models.PressReleaseFilter{Status: models.PressReleaseApproved})
}

// UpdateStatus records the admin's review decision.
func (s *PressReleaseService) UpdateStatus(ctx context.Context, actor models.Actor, id string, req dto.PressReleaseStatusRequest) (*models.PressRelease, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	pr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "press release not found", "failed to load press release")
	}
	if !canAdminister(actor, pr.InstitutionID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot review press releases of another institution")
	}

	status := models.PressReleaseStatus(req.Status)
	if err := s.repo.UpdateStatus(ctx, pr.ID, status); err != nil {
		return nil, lookupError(err, "press release not found", "failed to update press release")
	}
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionPressReleaseReview, models.AuditResourcePressRelease, pr.ID,
		map[string]interface{}{"status": pr.Status}, map[string]interface{}{"status": status})
	s.invalidateDashboard(ctx)

	pr.Status = status
	pr.UpdatedAt = s.now().UTC()
	return pr, nil
}

// PendingBookings lists the caller's approved bookings, held on or before
// today, that still need a press release.
func (s *PressReleaseService) PendingBookings(ctx context.Context, actor models.Actor) ([]models.Booking, error) {
	bookings, err := s.bookings.ListAwaitingPressRelease(ctx, actor.UserID, models.NewDate(s.now()))
	if err != nil {
		return nil, internalError(err, "failed to list bookings awaiting press release")
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

func (s *PressReleaseService) list(ctx context.Context, filter models.PressReleaseFilter) ([]models.PressRelease, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list press releases")
	}
	if items == nil {
		items = []models.PressRelease{}
	}
	return items, nil
}

func (s *PressReleaseService) saveOptional(ctx context.Context, fh *multipart.FileHeader, stored *[]models.UploadedFile) (*string, error) {
	if fh == nil {
		return nil, nil
	}
	file, err := s.files.Save(ctx, fh, pressReleaseUploadCategory)
	if err != nil {
		return nil, err
	}
	*stored = append(*stored, *file)
	return &file.URL, nil
}

func (s *PressReleaseService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
