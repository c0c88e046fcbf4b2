package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hall-booking-api/internal/models"
)

const defaultPressReleaseDueDays = 2

type awaitingPressReleaseLister interface {
	ListAwaitingPressRelease(ctx context.Context, userID string, onOrBefore models.Date) ([]models.Booking, error)
}

// NotificationService derives reminders from booking state. Nothing is stored.
type NotificationService struct {
	bookings awaitingPressReleaseLister
	dueDays  int
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotificationService constructs the service. dueDays is the grace period
// after an event before its press release counts as overdue.
func NewNotificationService(bookings awaitingPressReleaseLister, dueDays int, logger *zap.Logger) *NotificationService {
	if dueDays < 0 {
		dueDays = defaultPressReleaseDueDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{bookings: bookings, dueDays: dueDays, logger: logger, now: time.Now}
}

// PressReleaseOverdue lists the caller's approved bookings whose press
// release is past due, most overdue first.
func (s *NotificationService) PressReleaseOverdue(ctx context.Context, actor models.Actor) ([]models.OverdueNotification, error) {
	today := models.NewDate(s.now())
	cutoff := today.AddDays(-(s.dueDays + 1))
	bookings, err := s.bookings.ListAwaitingPressRelease(ctx, actor.UserID, cutoff)
	if err != nil {
		return nil, internalError(err, "failed to load overdue press releases")
	}

	items := make([]models.OverdueNotification, 0, len(bookings))
	for _, b := range bookings {
		overdue := daysBetween(b.BookingDate.AddDays(s.dueDays), today)
		items = append(items, models.OverdueNotification{
			BookingID:   b.ID,
			EventTitle:  b.EventTitle,
			BookingDate: b.BookingDate,
			HallName:    b.HallName,
			DaysOverdue: overdue,
			Message:     overdueMessage(b.EventTitle, overdue),
		})
	}
	return items, nil
}

func daysBetween(from, to models.Date) int {
	return int(to.Sub(from.Time).Hours() / 24)
}

func overdueMessage(title string, days int) string {
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	return fmt.Sprintf("Press release for %q is %d %s overdue", title, days, unit)
}
