package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
	"github.com/noah-isme/hall-booking-api/internal/repository"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
	"github.com/noah-isme/hall-booking-api/pkg/export"
	"github.com/noah-isme/hall-booking-api/pkg/storage"
)

// ErrExportExpired is returned for download links past their expiry.
var ErrExportExpired = appErrors.New("EXPORT_EXPIRED", http.StatusGone, "export link has expired")

var bookingExportHeaders = []string{
	"Date", "Time", "Hall", "Department", "Event", "Requested By", "Status", "Rejection Reason", "Work Status", "Created At",
}

type bookingExportLister interface {
	ListForExport(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportDownload is a resolved export ready to stream.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
}

// ExportService renders filtered booking lists to CSV or PDF and hands out
// signed links to the stored files.
type ExportService struct {
	bookings bookingExportLister
	storage  fileStorage
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(bookings bookingExportLister, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{bookings: bookings, storage: store, signer: signer, logger: logger, cfg: cfg, now: time.Now}
}

// ExportBookings renders the bookings visible to the actor under query.
func (s *ExportService) ExportBookings(ctx context.Context, actor models.Actor, format string, query dto.BookingListQuery) (*models.ExportResult, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, validationError(err, "format must be csv or pdf")
	}
	filter, err := ScopedBookingFilter(actor, query)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListForExport(ctx, filter)
	if errors.Is(err, repository.ErrExportTooLarge) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("export matches more than %d bookings; narrow the filters", repository.MaxExportRows))
	}
	if err != nil {
		return nil, internalError(err, "failed to load bookings for export")
	}

	payload, err := export.RendererFor(f).Render(BookingDataset(bookings), "Hall Bookings")
	if err != nil {
		return nil, internalError(err, "failed to render export")
	}

	id := uuid.NewString()
	filename := fmt.Sprintf("bookings_%s%s", s.now().UTC().Format("20060102_150405"), f.Extension())
	relPath, err := s.storage.Save(path.Join(id, filename), payload)
	if err != nil {
		return nil, internalError(err, "failed to store export")
	}
	token, grant, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, internalError(err, "failed to sign export link")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}
	s.logger.Info("booking export generated", zap.String("format", string(f)), zap.Int("rows", len(bookings)), zap.String("user_id", actor.UserID))
	return &models.ExportResult{
		Format:    string(f),
		Filename:  filename,
		URL:       fmt.Sprintf("%s/exports/%s", prefix, token),
		RowCount:  len(bookings),
		ExpiresAt: grant.ExpiresAt,
	}, nil
}

// Open verifies token and opens the export it points at.
func (s *ExportService) Open(token string) (*ExportDownload, error) {
	grant, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, ErrExportExpired
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	file, err := s.storage.Open(grant.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, internalError(err, "failed to open export")
	}
	name := path.Base(grant.Path)
	format := export.FormatCSV
	if strings.HasSuffix(name, export.FormatPDF.Extension()) {
		format = export.FormatPDF
	}
	return &ExportDownload{File: file, Filename: name, ContentType: format.ContentType()}, nil
}

// Cleanup removes exports older than the configured retention.
func (s *ExportService) Cleanup() ([]string, error) {
	return s.storage.CleanupOlderThan(s.cfg.ResultTTL)
}

// RunCleanup sweeps expired exports every interval until ctx is cancelled.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.Cleanup()
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
			}
		}
	}
}

// BookingDataset turns bookings into one export row each.
func BookingDataset(bookings []models.Booking) export.Dataset {
	rows := make([]map[string]string, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, map[string]string{
			"Date":             b.BookingDate.String(),
			"Time":             b.TimeSlot,
			"Hall":             b.HallName,
			"Department":       b.DepartmentName,
			"Event":            b.EventTitle,
			"Requested By":     b.RequesterName,
			"Status":           string(b.Status),
			"Rejection Reason": derefString(b.RejectionReason),
			"Work Status":      string(b.WorkStatus),
			"Created At":       b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: bookingExportHeaders, Rows: rows}
}
