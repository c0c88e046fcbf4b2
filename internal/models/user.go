package models

import "time"

// UserRole is one of the fixed roles of the booking system.
type UserRole string

const (
	RoleDepartmentUser   UserRole = "department_user"
	RolePrincipal        UserRole = "principal"
	RoleSuperAdmin       UserRole = "super_admin"
	RoleDesigningTeam    UserRole = "designing_team"
	RolePhotographyTeam  UserRole = "photography_team"
	RolePressReleaseTeam UserRole = "press_release_team"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleDepartmentUser, RolePrincipal, RoleSuperAdmin, RoleDesigningTeam, RolePhotographyTeam, RolePressReleaseTeam:
		return true
	}
	return false
}

// CanDecide reports whether the role may approve, reject, edit or delete bookings.
func (r UserRole) CanDecide() bool {
	return r == RolePrincipal || r == RoleSuperAdmin
}

// IsTeam reports whether r is one of the auxiliary work teams.
func (r UserRole) IsTeam() bool {
	return r == RoleDesigningTeam || r == RolePhotographyTeam || r == RolePressReleaseTeam
}

// Theme preferences accepted for a profile.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// User is a row of the users table joined with its institution and department names.
type User struct {
	ID              string     `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	FullName        string     `db:"full_name" json:"full_name"`
	Role            UserRole   `db:"role" json:"role"`
	DepartmentID    *string    `db:"department_id" json:"department_id,omitempty"`
	InstitutionID   *string    `db:"institution_id" json:"institution_id,omitempty"`
	DepartmentName  *string    `db:"department_name" json:"department_name,omitempty"`
	InstitutionName *string    `db:"institution_name" json:"institution_name,omitempty"`
	Theme           string     `db:"theme" json:"theme"`
	Active          bool       `db:"active" json:"active"`
	LastLogin       *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role          *UserRole
	Active        *bool
	InstitutionID string
	DepartmentID  string
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
