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

const hallColumns = `id, institution_id, name, description, image_url, capacity, stage_size, hall_type, has_ac, has_sound_system, active, created_at, updated_at`

// HallRepository persists halls.
type HallRepository struct {
	db *sqlx.DB
}

func NewHallRepository(db *sqlx.DB) *HallRepository {
	return &HallRepository{db: db}
}

// List returns halls matching the filter ordered by name.
func (r *HallRepository) List(ctx context.Context, filter models.HallFilter) ([]models.Hall, error) {
	var args queryArgs
	var conditions []string
	if filter.InstitutionID != "" {
		conditions = append(conditions, "institution_id = "+args.bind(filter.InstitutionID))
	}
	if filter.Active != nil {
		conditions = append(conditions, "active = "+args.bind(*filter.Active))
	}
	if filter.Search != "" {
		conditions = append(conditions, "LOWER(name) LIKE "+args.bind(likePattern(filter.Search)))
	}
	query := "SELECT " + hallColumns + " FROM halls" + where(conditions) + " ORDER BY name ASC"
	var halls []models.Hall
	if err := r.db.SelectContext(ctx, &halls, query, args...); err != nil {
		return nil, fmt.Errorf("list halls: %w", err)
	}
	return halls, nil
}

// FindByID fetches one hall.
func (r *HallRepository) FindByID(ctx context.Context, id string) (*models.Hall, error) {
	var hall models.Hall
	if err := r.db.GetContext(ctx, &hall, "SELECT "+hallColumns+" FROM halls WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find hall: %w", err)
	}
	return &hall, nil
}

// Create inserts a hall.
func (r *HallRepository) Create(ctx context.Context, hall *models.Hall) error {
	if hall.ID == "" {
		hall.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	hall.CreatedAt, hall.UpdatedAt = now, now
	const query = `INSERT INTO halls (id, institution_id, name, description, image_url, capacity, stage_size, hall_type, has_ac, has_sound_system, active, created_at, updated_at)
VALUES (:id, :institution_id, :name, :description, :image_url, :capacity, :stage_size, :hall_type, :has_ac, :has_sound_system, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hall); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create hall: %w", err)
	}
	return nil
}

// Update stores changed fields.
func (r *HallRepository) Update(ctx context.Context, hall *models.Hall) error {
	hall.UpdatedAt = time.Now().UTC()
	const query = `UPDATE halls SET name = :name, description = :description, image_url = :image_url, capacity = :capacity,
stage_size = :stage_size, hall_type = :hall_type, has_ac = :has_ac, has_sound_system = :has_sound_system,
active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, hall); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update hall: %w", err)
	}
	return nil
}

// Deactivate hides a hall from booking without deleting its history.
func (r *HallRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE halls SET active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate hall: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns active halls, optionally scoped to an institution.
func (r *HallRepository) Count(ctx context.Context, institutionID string) (int, error) {
	var args queryArgs
	conditions := []string{"active = TRUE"}
	if institutionID != "" {
		conditions = append(conditions, "institution_id = "+args.bind(institutionID))
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM halls"+where(conditions), args...); err != nil {
		return 0, fmt.Errorf("count halls: %w", err)
	}
	return total, nil
}
