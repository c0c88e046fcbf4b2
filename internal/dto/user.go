package dto

// CreateUserRequest is an admin-created account.
type CreateUserRequest struct {
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=6"`
	FullName      string  `json:"full_name" validate:"required"`
	Role          string  `json:"role" validate:"required,oneof=department_user principal super_admin designing_team photography_team press_release_team"`
	InstitutionID *string `json:"institution_id"`
	DepartmentID  *string `json:"department_id"`
}

// UpdateUserRequest changes any subset of admin-managed user fields.
type UpdateUserRequest struct {
	Email         *string `json:"email" validate:"omitempty,email"`
	Password      *string `json:"password" validate:"omitempty,min=6"`
	FullName      *string `json:"full_name" validate:"omitempty,min=1"`
	Role          *string `json:"role" validate:"omitempty,oneof=department_user principal super_admin designing_team photography_team press_release_team"`
	InstitutionID *string `json:"institution_id"`
	DepartmentID  *string `json:"department_id"`
	Active        *bool   `json:"active"`
}

// UserListQuery are the query parameters of GET /users.
type UserListQuery struct {
	Role          string `form:"role"`
	Active        *bool  `form:"active"`
	InstitutionID string `form:"institution_id"`
	DepartmentID  string `form:"department_id"`
	Search        string `form:"search"`
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size"`
	SortBy        string `form:"sort_by"`
	SortOrder     string `form:"sort_order"`
}
