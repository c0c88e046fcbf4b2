package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

const (
	calendarCells = 42
	monthLayout   = "2006-01"
)

type hallBookingLister interface {
	ListActiveForHall(ctx context.Context, hallID string, from, to models.Date) ([]models.Booking, error)
}

type hallLookup interface {
	FindByID(ctx context.Context, id string) (*models.Hall, error)
}

// AvailabilityService projects hall bookings onto a month grid and per-day
// slot listings. Nothing is cached; every call reads current bookings.
type AvailabilityService struct {
	bookings hallBookingLister
	halls    hallLookup
	logger   *zap.Logger
	now      func() time.Time
}

// NewAvailabilityService constructs the projection service.
func NewAvailabilityService(bookings hallBookingLister, halls hallLookup, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{bookings: bookings, halls: halls, logger: logger, now: time.Now}
}

// Calendar returns the six week grid of a hall for month ("YYYY-MM",
// defaulting to the current month).
func (s *AvailabilityService) Calendar(ctx context.Context, actor models.Actor, hallID, month string) (*models.HallCalendar, error) {
	today := models.NewDate(s.now())
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	if month != "" {
		parsed, err := time.Parse(monthLayout, month)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "month must be formatted as YYYY-MM")
		}
		first = parsed
	}
	if err := s.visibleHall(ctx, actor, hallID); err != nil {
		return nil, err
	}

	start, end := gridBounds(first)
	bookings, err := s.bookings.ListActiveForHall(ctx, hallID, start, end)
	if err != nil {
		return nil, internalError(err, "failed to load hall bookings")
	}
	calendar := BuildCalendar(hallID, first, bookings, today)
	return &calendar, nil
}

// Slots lists the occupied slots of a hall on one date.
func (s *AvailabilityService) Slots(ctx context.Context, actor models.Actor, hallID, date string) (*models.DaySlots, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	if err := s.visibleHall(ctx, actor, hallID); err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListActiveForHall(ctx, hallID, day, day)
	if err != nil {
		return nil, internalError(err, "failed to load hall bookings")
	}
	slots := groupByDate(bookings)[day.String()]
	if slots == nil {
		slots = []models.OccupiedSlot{}
	}
	return &models.DaySlots{HallID: hallID, Date: day, Slots: slots}, nil
}

// visibleHall hides halls of other institutions behind a 404.
func (s *AvailabilityService) visibleHall(ctx context.Context, actor models.Actor, hallID string) error {
	hall, err := s.halls.FindByID(ctx, hallID)
	if err != nil {
		return lookupError(err, "hall not found", "failed to load hall")
	}
	if !canViewInstitution(actor, hall.InstitutionID) {
		return appErrors.Clone(appErrors.ErrNotFound, "hall not found")
	}
	return nil
}

// gridBounds returns the Sunday on or before the first of the month and the
// last of the 42 cells that follow it.
func gridBounds(first time.Time) (models.Date, models.Date) {
	start := models.NewDate(first).AddDays(-int(first.Weekday()))
	return start, start.AddDays(calendarCells - 1)
}

// groupByDate drops rejected bookings and buckets the rest by calendar date,
// each bucket sorted by start time.
func groupByDate(bookings []models.Booking) map[string][]models.OccupiedSlot {
	grouped := make(map[string][]models.OccupiedSlot)
	for _, b := range bookings {
		if b.Status == models.BookingStatusRejected {
			continue
		}
		key := b.BookingDate.String()
		grouped[key] = append(grouped[key], models.OccupiedSlot{
			BookingID:           b.ID,
			StartTime:           b.StartTime,
			EndTime:             b.EndTime,
			TimeSlot:            b.TimeSlot,
			EventTitle:          b.EventTitle,
			DepartmentName:      b.DepartmentName,
			DepartmentShortCode: b.DepartmentShortCode,
			Status:              b.Status,
		})
	}
	for key := range grouped {
		slots := grouped[key]
		sort.SliceStable(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })
	}
	return grouped
}

// BuildCalendar is the pure projection behind Calendar.
func BuildCalendar(hallID string, first time.Time, bookings []models.Booking, today models.Date) models.HallCalendar {
	start, end := gridBounds(first)
	grouped := groupByDate(bookings)

	days := make([]models.CalendarDay, 0, calendarCells)
	for i := 0; i < calendarCells; i++ {
		date := start.AddDays(i)
		slots := grouped[date.String()]
		past := date.Before(today)
		day := models.CalendarDay{
			Date:      date,
			InMonth:   date.Month() == first.Month() && date.Year() == first.Year(),
			Status:    dayStatus(slots),
			Past:      past,
			Count:     len(slots),
			Label:     dayLabel(slots),
			Slots:     slots,
		}
		day.Clickable = !(past && day.Status == models.DayAvailable)
		days = append(days, day)
	}

	return models.HallCalendar{
		HallID:    hallID,
		Month:     first.Format(monthLayout),
		StartDate: start,
		EndDate:   end,
		Days:      days,
	}
}

func dayStatus(slots []models.OccupiedSlot) models.DayStatus {
	status := models.DayAvailable
	for _, slot := range slots {
		if slot.Status == models.BookingStatusApproved {
			return models.DayBooked
		}
		if slot.Status == models.BookingStatusPending {
			status = models.DayPending
		}
	}
	return status
}

func dayLabel(slots []models.OccupiedSlot) string {
	switch len(slots) {
	case 0:
		return ""
	case 1:
		if slots[0].DepartmentShortCode != "" {
			return slots[0].DepartmentShortCode
		}
		return slots[0].DepartmentName
	}
	return fmt.Sprintf("%d Slots", len(slots))
}
