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

// InstitutionRepository persists tenants.
type InstitutionRepository struct {
	db *sqlx.DB
}

func NewInstitutionRepository(db *sqlx.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

// List returns all institutions ordered by name.
func (r *InstitutionRepository) List(ctx context.Context) ([]models.Institution, error) {
	const query = `SELECT id, name, short_name, logo_url, created_at, updated_at FROM institutions ORDER BY name ASC`
	var items []models.Institution
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	return items, nil
}

// FindByID fetches one institution.
func (r *InstitutionRepository) FindByID(ctx context.Context, id string) (*models.Institution, error) {
	const query = `SELECT id, name, short_name, logo_url, created_at, updated_at FROM institutions WHERE id = $1`
	var item models.Institution
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find institution: %w", err)
	}
	return &item, nil
}

// Create inserts an institution.
func (r *InstitutionRepository) Create(ctx context.Context, item *models.Institution) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	const query = `INSERT INTO institutions (id, name, short_name, logo_url, created_at, updated_at)
VALUES (:id, :name, :short_name, :logo_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create institution: %w", err)
	}
	return nil
}

// Update stores changed fields.
func (r *InstitutionRepository) Update(ctx context.Context, item *models.Institution) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE institutions SET name = :name, short_name = :short_name, logo_url = :logo_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update institution: %w", err)
	}
	return nil
}

// Delete removes an institution. Foreign keys reject removal of tenants that still own records.
func (r *InstitutionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM institutions WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("delete institution: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
