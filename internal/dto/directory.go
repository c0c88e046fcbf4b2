package dto

// InstitutionRequest creates or replaces an institution.
type InstitutionRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	ShortName string  `json:"short_name" validate:"required,max=20"`
	LogoURL   *string `json:"logo_url"`
}

// DepartmentRequest creates or replaces a department.
type DepartmentRequest struct {
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name" validate:"required,max=200"`
	ShortCode     string `json:"short_code" validate:"required,max=20"`
}

// HallRequest creates or replaces a hall.
type HallRequest struct {
	InstitutionID  string  `json:"institution_id"`
	Name           string  `json:"name" validate:"required,max=200"`
	Description    string  `json:"description"`
	ImageURL       *string `json:"image_url"`
	Capacity       int     `json:"capacity" validate:"gte=0"`
	StageSize      string  `json:"stage_size"`
	HallType       string  `json:"hall_type"`
	HasAC          bool    `json:"has_ac"`
	HasSoundSystem bool    `json:"has_sound_system"`
	Active         *bool   `json:"active"`
}
