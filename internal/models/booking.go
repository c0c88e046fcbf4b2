package models

import (
	"time"

	"github.com/lib/pq"
)

// BookingStatus is the approval state of a booking.
type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusApproved BookingStatus = "approved"
	BookingStatusRejected BookingStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	return s == BookingStatusPending || s == BookingStatusApproved || s == BookingStatusRejected
}

// Decided reports whether s is terminal.
func (s BookingStatus) Decided() bool {
	return s == BookingStatusApproved || s == BookingStatusRejected
}

// WorkStatus tracks the designing team's post-approval work.
type WorkStatus string

const (
	WorkStatusPending   WorkStatus = "pending"
	WorkStatusCompleted WorkStatus = "completed"
)

// Booking is a hall reservation request joined with display names of its
// hall, department, requester and institution.
type Booking struct {
	ID            string `db:"id" json:"id"`
	HallID        string `db:"hall_id" json:"hall_id"`
	DepartmentID  string `db:"department_id" json:"department_id"`
	UserID        string `db:"user_id" json:"user_id"`
	InstitutionID string `db:"institution_id" json:"institution_id"`

	BookingDate      Date   `db:"booking_date" json:"booking_date"`
	EventTitle       string `db:"event_title" json:"event_title"`
	EventDescription string `db:"event_description" json:"event_description"`
	StartTime        string `db:"start_time" json:"start_time"`
	EndTime          string `db:"end_time" json:"end_time"`
	TimeSlot         string `db:"time_slot" json:"time_slot"`

	Status          BookingStatus `db:"status" json:"status"`
	RejectionReason *string       `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ApprovedBy      *string       `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time    `db:"approved_at" json:"approved_at,omitempty"`

	NeedsAC          bool `db:"needs_ac" json:"needs_ac"`
	NeedsFan         bool `db:"needs_fan" json:"needs_fan"`
	NeedsPhotography bool `db:"needs_photography" json:"needs_photography"`

	CoordinatorNames      string         `db:"coordinator_names" json:"coordinator_names"`
	ChiefGuestName        string         `db:"chief_guest_name" json:"chief_guest_name"`
	ChiefGuestDesignation string         `db:"chief_guest_designation" json:"chief_guest_designation"`
	ChiefGuestPhotoURL    *string        `db:"chief_guest_photo_url" json:"chief_guest_photo_url,omitempty"`
	EventPartnerName      string         `db:"event_partner_name" json:"event_partner_name"`
	EventPartnerDetails   string         `db:"event_partner_details" json:"event_partner_details"`
	EventPartnerLogoURL   *string        `db:"event_partner_logo_url" json:"event_partner_logo_url,omitempty"`
	ConvenorName          string         `db:"convenor_name" json:"convenor_name"`
	ConvenorDesignation   string         `db:"convenor_designation" json:"convenor_designation"`
	InHouseGuest          string         `db:"in_house_guest" json:"in_house_guest"`
	AttachmentURLs        pq.StringArray `db:"attachment_urls" json:"attachment_urls"`

	WorkStatus           WorkStatus `db:"work_status" json:"work_status"`
	FinalFileURL         *string    `db:"final_file_url" json:"final_file_url,omitempty"`
	PhotographyDriveLink *string    `db:"photography_drive_link" json:"photography_drive_link,omitempty"`

	HallName            string `db:"hall_name" json:"hall_name,omitempty"`
	DepartmentName      string `db:"department_name" json:"department_name,omitempty"`
	DepartmentShortCode string `db:"department_short_code" json:"department_short_code,omitempty"`
	RequesterName       string `db:"requester_name" json:"requester_name,omitempty"`
	RequesterEmail      string `db:"requester_email" json:"-"`
	InstitutionName     string `db:"institution_name" json:"institution_name,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BookingFilter narrows booking queries. Empty fields are ignored.
type BookingFilter struct {
	UserID        string
	InstitutionID string
	DepartmentID  string
	HallID        string
	Statuses      []BookingStatus
	From          *Date
	To            *Date
	Search        string
	Page          int
	PageSize      int
	SortOrder     string
}

// BookingDecidedEvent is published after a booking is approved or rejected.
type BookingDecidedEvent struct {
	BookingID       string        `json:"booking_id"`
	Status          BookingStatus `json:"status"`
	EventTitle      string        `json:"event_title"`
	BookingDate     Date          `json:"booking_date"`
	TimeSlot        string        `json:"time_slot"`
	HallName        string        `json:"hall_name"`
	RequesterName   string        `json:"requester_name"`
	RequesterEmail  string        `json:"requester_email"`
	DecidedBy       string        `json:"decided_by"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	DecidedAt       time.Time     `json:"decided_at"`
}
