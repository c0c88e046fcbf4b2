package models

import "time"

// SettingType defines how a setting value is validated.
type SettingType string

const (
	SettingTypeString  SettingType = "STRING"
	SettingTypeBoolean SettingType = "BOOLEAN"
	SettingTypeNumber  SettingType = "NUMBER"
)

// Known setting keys.
const (
	SettingRegistrationActive     = "registration_active"
	SettingInstitutionDisplayName = "institution_display_name"
	SettingMaxUploadFiles         = "max_upload_files"
)

// Setting is a persisted key/value entry.
type Setting struct {
	Key         string      `db:"key" json:"key"`
	Value       string      `db:"value" json:"value"`
	Type        SettingType `db:"type" json:"type"`
	Description *string     `db:"description" json:"description,omitempty"`
	UpdatedBy   *string     `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}
