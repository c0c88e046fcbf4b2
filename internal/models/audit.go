package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded by the services.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionRegister       = "REGISTER"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionUserCreate     = "USER_CREATE"
	AuditActionUserUpdate     = "USER_UPDATE"
	AuditActionUserDeactivate = "USER_DEACTIVATE"
	AuditActionBookingCreate  = "BOOKING_CREATE"
	AuditActionBookingUpdate  = "BOOKING_UPDATE"
	AuditActionBookingApprove = "BOOKING_APPROVE"
	AuditActionBookingReject  = "BOOKING_REJECT"
	AuditActionBookingDelete  = "BOOKING_DELETE"
	AuditActionSettingUpdate  = "SETTING_UPDATE"

	AuditActionPressReleaseSubmit = "PRESS_RELEASE_SUBMIT"
	AuditActionPressReleaseReview = "PRESS_RELEASE_REVIEW"
)

// Audit resources.
const (
	AuditResourceUser    = "user"
	AuditResourceBooking = "booking"
	AuditResourceSetting = "setting"

	AuditResourcePressRelease = "press_release"
)

// AuditLog represents an audit trail record. Edit, rejection and delete
// reasons are kept in NewValues.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AuditEntry is an audit log rendered for API consumers.
type AuditEntry struct {
	ID        string          `json:"id"`
	UserID    *string         `json:"user_id,omitempty"`
	Action    string          `json:"action"`
	OldValues json.RawMessage `json:"old_values,omitempty"`
	NewValues json.RawMessage `json:"new_values,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
