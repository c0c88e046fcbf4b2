package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hall-booking-api/internal/models"
)

const userSelect = `SELECT u.id, u.email, u.password_hash, u.full_name, u.role, u.department_id, u.institution_id,
d.name AS department_name, i.name AS institution_name, u.theme, u.active, u.last_login, u.created_at, u.updated_at
FROM users u
LEFT JOIN departments d ON d.id = u.department_id
LEFT JOIN institutions i ON i.id = u.institution_id`

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address. Lookup is case-insensitive.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := userSelect + ` WHERE LOWER(u.email) = LOWER($1) LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := userSelect + ` WHERE u.id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateProfile stores self-service profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, id, fullName, theme string) error {
	const query = `UPDATE users SET full_name = $2, theme = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, fullName, theme, time.Now().UTC()); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// List returns users based on filters with total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var args queryArgs
	var conditions []string

	if filter.Role != nil {
		conditions = append(conditions, "u.role = "+args.bind(*filter.Role))
	}
	if filter.Active != nil {
		conditions = append(conditions, "u.active = "+args.bind(*filter.Active))
	}
	if filter.InstitutionID != "" {
		conditions = append(conditions, "u.institution_id = "+args.bind(filter.InstitutionID))
	}
	if filter.DepartmentID != "" {
		conditions = append(conditions, "u.department_id = "+args.bind(filter.DepartmentID))
	}
	if filter.Search != "" {
		p := args.bind(likePattern(filter.Search))
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.email) LIKE %s OR LOWER(u.full_name) LIKE %s)", p, p))
	}

	allowedSorts := map[string]string{
		"email":      "u.email",
		"created_at": "u.created_at",
		"updated_at": "u.updated_at",
		"full_name":  "u.full_name",
		"role":       "u.role",
	}
	sortBy, ok := allowedSorts[filter.SortBy]
	if !ok {
		sortBy = "u.created_at"
	}
	sortOrder := sortDirection(filter.SortOrder, "DESC")
	_, pageSize, offset := normalizePage(filter.Page, filter.PageSize)

	listQuery := fmt.Sprintf("%s%s ORDER BY %s %s LIMIT %d OFFSET %d", userSelect, where(conditions), sortBy, sortOrder, pageSize, offset)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM users u" + where(conditions)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

// Count returns active users, optionally scoped to an institution.
func (r *UserRepository) Count(ctx context.Context, institutionID string) (int, error) {
	var args queryArgs
	conditions := []string{"u.active = TRUE"}
	if institutionID != "" {
		conditions = append(conditions, "u.institution_id = "+args.bind(institutionID))
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users u"+where(conditions), args...); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Theme == "" {
		user.Theme = models.ThemeLight
	}

	const query = `INSERT INTO users (id, email, password_hash, full_name, role, department_id, institution_id, theme, active, created_at, updated_at)
VALUES (:id, :email, :password_hash, :full_name, :role, :department_id, :institution_id, :theme, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update updates admin-managed fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET email = :email, full_name = :full_name, role = :role, department_id = :department_id,
institution_id = :institution_id, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Deactivate performs a soft delete by marking the user inactive.
func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE users SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}

// UpsertSeed creates or refreshes a user by email. Used by the seeding CLI.
func (r *UserRepository) UpsertSeed(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Theme == "" {
		user.Theme = models.ThemeLight
	}
	const query = `INSERT INTO users (id, email, password_hash, full_name, role, department_id, institution_id, theme, active, created_at, updated_at)
VALUES (:id, :email, :password_hash, :full_name, :role, :department_id, :institution_id, :theme, TRUE, :created_at, :updated_at)
ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, full_name = EXCLUDED.full_name,
role = EXCLUDED.role, department_id = EXCLUDED.department_id, institution_id = EXCLUDED.institution_id,
active = TRUE, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("upsert seed user: %w", err)
	}
	return nil
}
