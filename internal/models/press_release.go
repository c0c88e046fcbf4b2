package models

import (
	"time"

	"github.com/lib/pq"
)

// PressReleaseStatus is the admin review state of a submission.
type PressReleaseStatus string

const (
	PressReleasePending  PressReleaseStatus = "pending"
	PressReleaseApproved PressReleaseStatus = "approved"
	PressReleaseRejected PressReleaseStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s PressReleaseStatus) Valid() bool {
	return s == PressReleasePending || s == PressReleaseApproved || s == PressReleaseRejected
}

// PressRelease is the single post-event submission attached to a booking.
type PressRelease struct {
	ID                  string             `db:"id" json:"id"`
	BookingID           string             `db:"booking_id" json:"booking_id"`
	UserID              string             `db:"user_id" json:"user_id"`
	DepartmentID        string             `db:"department_id" json:"department_id"`
	InstitutionID       string             `db:"institution_id" json:"institution_id"`
	CoordinatorName     string             `db:"coordinator_name" json:"coordinator_name"`
	EventTitle          string             `db:"event_title" json:"event_title"`
	EventDate           Date               `db:"event_date" json:"event_date"`
	DepartmentName      string             `db:"department_name" json:"department_name"`
	EnglishWriteupURL   *string            `db:"english_writeup_url" json:"english_writeup_url,omitempty"`
	TamilWriteupURL     *string            `db:"tamil_writeup_url" json:"tamil_writeup_url,omitempty"`
	PhotoDescriptionURL *string            `db:"photo_description_url" json:"photo_description_url,omitempty"`
	PhotoURLs           pq.StringArray     `db:"photo_urls" json:"photo_urls"`
	Status              PressReleaseStatus `db:"status" json:"status"`
	SubmitterName       string             `db:"submitter_name" json:"submitter_name,omitempty"`
	CreatedAt           time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `db:"updated_at" json:"updated_at"`
}

// PressReleaseFilter narrows press release listings.
type PressReleaseFilter struct {
	UserID        string
	InstitutionID string
	Status        PressReleaseStatus
}

// OverdueNotification reminds a requester that a press release is late.
type OverdueNotification struct {
	BookingID   string `json:"booking_id"`
	EventTitle  string `json:"event_title"`
	BookingDate Date   `json:"booking_date"`
	HallName    string `json:"hall_name"`
	DaysOverdue int    `json:"days_overdue"`
	Message     string `json:"message"`
}
