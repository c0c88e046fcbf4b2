package models

import "time"

// Institution is the tenant boundary.
type Institution struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	ShortName string    `db:"short_name" json:"short_name"`
	LogoURL   *string   `db:"logo_url" json:"logo_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Department belongs to exactly one institution.
type Department struct {
	ID              string    `db:"id" json:"id"`
	InstitutionID   string    `db:"institution_id" json:"institution_id"`
	InstitutionName string    `db:"institution_name" json:"institution_name,omitempty"`
	Name            string    `db:"name" json:"name"`
	ShortCode       string    `db:"short_code" json:"short_code"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DepartmentFilter narrows department listings.
type DepartmentFilter struct {
	InstitutionID string
	Search        string
}
