package models

import "time"

// Hall is a bookable venue.
type Hall struct {
	ID             string    `db:"id" json:"id"`
	InstitutionID  string    `db:"institution_id" json:"institution_id"`
	Name           string    `db:"name" json:"name"`
	Description    string    `db:"description" json:"description"`
	ImageURL       *string   `db:"image_url" json:"image_url,omitempty"`
	Capacity       int       `db:"capacity" json:"capacity"`
	StageSize      string    `db:"stage_size" json:"stage_size"`
	HallType       string    `db:"hall_type" json:"hall_type"`
	HasAC          bool      `db:"has_ac" json:"has_ac"`
	HasSoundSystem bool      `db:"has_sound_system" json:"has_sound_system"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// HallFilter narrows hall listings.
type HallFilter struct {
	InstitutionID string
	Active        *bool
	Search        string
}
