package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/hall-booking-api/internal/models"
)

const pressReleaseSelect = `SELECT pr.id, pr.booking_id, pr.user_id, pr.department_id, pr.institution_id, pr.coordinator_name,
pr.event_title, pr.event_date, pr.department_name, pr.english_writeup_url, pr.tamil_writeup_url, pr.photo_description_url,
pr.photo_urls, pr.status, u.full_name AS submitter_name, pr.created_at, pr.updated_at
FROM press_releases pr JOIN users u ON u.id = pr.user_id`

// PressReleaseRepository persists press release submissions.
type PressReleaseRepository struct {
	db *sqlx.DB
}

func NewPressReleaseRepository(db *sqlx.DB) *PressReleaseRepository {
	return &PressReleaseRepository{db: db}
}

// Create inserts a submission. A second submission for the same booking
// returns ErrDuplicate.
func (r *PressReleaseRepository) Create(ctx context.Context, pr *models.PressRelease) error {
	if pr.ID == "" {
		pr.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	pr.CreatedAt, pr.UpdatedAt = now, now
	if pr.PhotoURLs == nil {
		pr.PhotoURLs = pq.StringArray{}
	}
	const query = `INSERT INTO press_releases (id, booking_id, user_id, department_id, institution_id, coordinator_name, event_title,
event_date, department_name, english_writeup_url, tamil_writeup_url, photo_description_url, photo_urls, status, created_at, updated_at)
VALUES (:id, :booking_id, :user_id, :department_id, :institution_id, :coordinator_name, :event_title,
:event_date, :department_name, :english_writeup_url, :tamil_writeup_url, :photo_description_url, :photo_urls, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pr); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create press release: %w", err)
	}
	return nil
}

// FindByID fetches one submission.
func (r *PressReleaseRepository) FindByID(ctx context.Context, id string) (*models.PressRelease, error) {
	var pr models.PressRelease
	if err := r.db.GetContext(ctx, &pr, pressReleaseSelect+" WHERE pr.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find press release: %w", err)
	}
	return &pr, nil
}

// ExistsForBooking reports whether the booking already has a submission.
func (r *PressReleaseRepository) ExistsForBooking(ctx context.Context, bookingID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM press_releases WHERE booking_id = $1)`, bookingID); err != nil {
		return false, fmt.Errorf("check press release: %w", err)
	}
	return exists, nil
}

// List returns submissions matching the filter, newest first.
func (r *PressReleaseRepository) List(ctx context.Context, filter models.PressReleaseFilter) ([]models.PressRelease, error) {
	var args queryArgs
	var conditions []string
	if filter.UserID != "" {
		conditions = append(conditions, "pr.user_id = "+args.bind(filter.UserID))
	}
	if filter.InstitutionID != "" {
		conditions = append(conditions, "pr.institution_id = "+args.bind(filter.InstitutionID))
	}
	if filter.Status != "" {
		conditions = append(conditions, "pr.status = "+args.bind(filter.Status))
	}
	query := pressReleaseSelect + where(conditions) + " ORDER BY pr.created_at DESC"
	var items []models.PressRelease
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list press releases: %w", err)
	}
	return items, nil
}

// UpdateStatus sets the review status of a submission.
func (r *PressReleaseRepository) UpdateStatus(ctx context.Context, id string, status models.PressReleaseStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE press_releases SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update press release status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountPending returns submissions awaiting review, optionally per institution.
func (r *PressReleaseRepository) CountPending(ctx context.Context, institutionID string) (int, error) {
	var args queryArgs
	conditions := []string{"status = 'pending'"}
	if institutionID != "" {
		conditions = append(conditions, "institution_id = "+args.bind(institutionID))
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM press_releases"+where(conditions), args...); err != nil {
		return 0, fmt.Errorf("count pending press releases: %w", err)
	}
	return total, nil
}
