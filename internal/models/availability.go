package models

// DayStatus is the colour of a calendar cell.
type DayStatus string

const (
	DayAvailable DayStatus = "available"
	DayPending   DayStatus = "pending"
	DayBooked    DayStatus = "booked"
)

// OccupiedSlot is a non-rejected booking shown to requesters before they submit.
type OccupiedSlot struct {
	BookingID           string        `json:"booking_id"`
	StartTime           string        `json:"start_time"`
	EndTime             string        `json:"end_time"`
	TimeSlot            string        `json:"time_slot"`
	EventTitle          string        `json:"event_title"`
	DepartmentName      string        `json:"department_name"`
	DepartmentShortCode string        `json:"department_short_code"`
	Status              BookingStatus `json:"status"`
}

// CalendarDay is one cell of the six week availability grid.
type CalendarDay struct {
	Date      Date           `json:"date"`
	InMonth   bool           `json:"in_month"`
	Status    DayStatus      `json:"status"`
	Past      bool           `json:"past"`
	Clickable bool           `json:"clickable"`
	Count     int            `json:"count"`
	Label     string         `json:"label,omitempty"`
	Slots     []OccupiedSlot `json:"slots,omitempty"`
}

// HallCalendar is the availability projection of a hall for one month.
type HallCalendar struct {
	HallID    string        `json:"hall_id"`
	Month     string        `json:"month"`
	StartDate Date          `json:"start_date"`
	EndDate   Date          `json:"end_date"`
	Days      []CalendarDay `json:"days"`
}

// DaySlots is the occupied-slot listing of a hall on one date.
type DaySlots struct {
	HallID string         `json:"hall_id"`
	Date   Date           `json:"date"`
	Slots  []OccupiedSlot `json:"slots"`
}
