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

const departmentSelect = `SELECT d.id, d.institution_id, i.name AS institution_name, d.name, d.short_code, d.created_at, d.updated_at
FROM departments d JOIN institutions i ON i.id = d.institution_id`

// DepartmentRepository persists departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns departments matching the filter ordered by name.
func (r *DepartmentRepository) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, error) {
	var args queryArgs
	var conditions []string
	if filter.InstitutionID != "" {
		conditions = append(conditions, "d.institution_id = "+args.bind(filter.InstitutionID))
	}
	if filter.Search != "" {
		p := args.bind(likePattern(filter.Search))
		conditions = append(conditions, fmt.Sprintf("(LOWER(d.name) LIKE %s OR LOWER(d.short_code) LIKE %s)", p, p))
	}
	query := departmentSelect + where(conditions) + " ORDER BY d.name ASC"
	var items []models.Department
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return items, nil
}

// FindByID fetches one department.
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	var item models.Department
	if err := r.db.GetContext(ctx, &item, departmentSelect+" WHERE d.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find department: %w", err)
	}
	return &item, nil
}

// Create inserts a department.
func (r *DepartmentRepository) Create(ctx context.Context, item *models.Department) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	const query = `INSERT INTO departments (id, institution_id, name, short_code, created_at, updated_at)
VALUES (:id, :institution_id, :name, :short_code, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// Update stores changed fields.
func (r *DepartmentRepository) Update(ctx context.Context, item *models.Department) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE departments SET name = :name, short_code = :short_code, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update department: %w", err)
	}
	return nil
}

// Delete removes a department.
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("delete department: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns departments, optionally scoped to an institution.
func (r *DepartmentRepository) Count(ctx context.Context, institutionID string) (int, error) {
	var args queryArgs
	var conditions []string
	if institutionID != "" {
		conditions = append(conditions, "d.institution_id = "+args.bind(institutionID))
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM departments d"+where(conditions), args...); err != nil {
		return 0, fmt.Errorf("count departments: %w", err)
	}
	return total, nil
}
