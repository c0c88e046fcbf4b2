package dto

// BookingFields are the requester-editable attributes of a booking.
type BookingFields struct {
	HallID                string   `json:"hall_id" validate:"required"`
	DepartmentID          string   `json:"department_id"`
	BookingDate           string   `json:"booking_date" validate:"required"`
	EventTitle            string   `json:"event_title" validate:"required,max=200"`
	EventDescription      string   `json:"event_description" validate:"max=4000"`
	StartTime             string   `json:"start_time" validate:"required"`
	EndTime               string   `json:"end_time" validate:"required"`
	TimeSlot              string   `json:"time_slot"`
	NeedsAC               bool     `json:"needs_ac"`
	NeedsFan              bool     `json:"needs_fan"`
	NeedsPhotography      bool     `json:"needs_photography"`
	CoordinatorNames      string   `json:"coordinator_names"`
	ChiefGuestName        string   `json:"chief_guest_name"`
	ChiefGuestDesignation string   `json:"chief_guest_designation"`
	ChiefGuestPhotoURL    *string  `json:"chief_guest_photo_url"`
	EventPartnerName      string   `json:"event_partner_name"`
	EventPartnerDetails   string   `json:"event_partner_details"`
	EventPartnerLogoURL   *string  `json:"event_partner_logo_url"`
	ConvenorName          string   `json:"convenor_name"`
	ConvenorDesignation   string   `json:"convenor_designation"`
	InHouseGuest          string   `json:"in_house_guest"`
	AttachmentURLs        []string `json:"attachment_urls" validate:"max=10"`
}

// CreateBookingRequest is the payload of POST /bookings.
type CreateBookingRequest struct {
	BookingFields
}

// UpdateBookingRequest is an admin edit that must state why it was made.
type UpdateBookingRequest struct {
	BookingFields
	ReasonForChange string `json:"reason_for_change" validate:"required"`
}

// BookingStatusRequest approves or rejects a pending booking.
type BookingStatusRequest struct {
	Status          string `json:"status" validate:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejection_reason"`
}

// DeleteBookingRequest carries the mandatory delete reason.
type DeleteBookingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// DriveLinkRequest stores the photography team's shared folder link.
type DriveLinkRequest struct {
	DriveLink string `json:"drive_link" validate:"required"`
}

// BookingListQuery are the query parameters accepted by booking listings and exports.
type BookingListQuery struct {
	Status        string `form:"status"`
	HallID        string `form:"hall_id"`
	DepartmentID  string `form:"department_id"`
	InstitutionID string `form:"institution_id"`
	From          string `form:"from"`
	To            string `form:"to"`
	Search        string `form:"search"`
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size"`
	SortOrder     string `form:"sort_order"`
}
