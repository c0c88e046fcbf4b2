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
	"github.com/noah-isme/hall-booking-api/pkg/database"
)

const bookingSelect = `SELECT b.id, b.hall_id, b.department_id, b.user_id, b.institution_id, b.booking_date, b.event_title,
b.event_description, b.start_time, b.end_time, b.time_slot, b.status, b.rejection_reason, b.approved_by, b.approved_at,
b.needs_ac, b.needs_fan, b.needs_photography, b.coordinator_names, b.chief_guest_name, b.chief_guest_designation,
b.chief_guest_photo_url, b.event_partner_name, b.event_partner_details, b.event_partner_logo_url, b.convenor_name,
b.convenor_designation, b.in_house_guest, b.attachment_urls, b.work_status, b.final_file_url, b.photography_drive_link,
h.name AS hall_name, d.name AS department_name, d.short_code AS department_short_code,
u.full_name AS requester_name, u.email AS requester_email, i.name AS institution_name, b.created_at, b.updated_at
FROM bookings b
JOIN halls h ON h.id = b.hall_id
JOIN departments d ON d.id = b.department_id
JOIN users u ON u.id = b.user_id
JOIN institutions i ON i.id = b.institution_id`

// BookingRepository persists bookings and their workflow fields.
type BookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	if b.AttachmentURLs == nil {
		b.AttachmentURLs = pq.StringArray{}
	}
	const query = `INSERT INTO bookings (id, hall_id, department_id, user_id, institution_id, booking_date, event_title,
event_description, start_time, end_time, time_slot, status, needs_ac, needs_fan, needs_photography, coordinator_names,
chief_guest_name, chief_guest_designation, chief_guest_photo_url, event_partner_name, event_partner_details,
event_partner_logo_url, convenor_name, convenor_designation, in_house_guest, attachment_urls, work_status, created_at, updated_at)
VALUES (:id, :hall_id, :department_id, :user_id, :institution_id, :booking_date, :event_title,
:event_description, :start_time, :end_time, :time_slot, :status, :needs_ac, :needs_fan, :needs_photography, :coordinator_names,
:chief_guest_name, :chief_guest_designation, :chief_guest_photo_url, :event_partner_name, :event_partner_details,
:event_partner_logo_url, :convenor_name, :convenor_designation, :in_house_guest, :attachment_urls, :work_status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// FindByID fetches one booking with display names.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.GetContext(ctx, &b, bookingSelect+" WHERE b.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &b, nil
}

func bookingConditions(filter models.BookingFilter, args *queryArgs) []string {
	var conditions []string
	if filter.UserID != "" {
		conditions = append(conditions, "b.user_id = "+args.bind(filter.UserID))
	}
	if filter.InstitutionID != "" {
		conditions = append(conditions, "b.institution_id = "+args.bind(filter.InstitutionID))
	}
	if filter.DepartmentID != "" {
		conditions = append(conditions, "b.department_id = "+args.bind(filter.DepartmentID))
	}
	if filter.HallID != "" {
		conditions = append(conditions, "b.hall_id = "+args.bind(filter.HallID))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conditions = append(conditions, "b.status = ANY("+args.bind(pq.Array(statuses))+")")
	}
	if filter.From != nil {
		conditions = append(conditions, "b.booking_date >= "+args.bind(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "b.booking_date <= "+args.bind(*filter.To))
	}
	if filter.Search != "" {
		p := args.bind(likePattern(filter.Search))
		conditions = append(conditions, fmt.Sprintf("(LOWER(b.event_title) LIKE %s OR LOWER(h.name) LIKE %s OR LOWER(d.name) LIKE %s)", p, p, p))
	}
	return conditions
}

// List returns one page of bookings matching the filter and the total count.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	var args queryArgs
	conditions := bookingConditions(filter, &args)
	_, pageSize, offset := normalizePage(filter.Page, filter.PageSize)
	order := sortDirection(filter.SortOrder, "DESC")

	query := fmt.Sprintf("%s%s ORDER BY b.booking_date %s, b.start_time ASC LIMIT %d OFFSET %d", bookingSelect, where(conditions), order, pageSize, offset)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM bookings b
JOIN halls h ON h.id = b.hall_id
JOIN departments d ON d.id = b.department_id` + where(conditions)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	return bookings, total, nil
}

// ListForExport returns every booking matching the filter. It fails with
// ErrExportTooLarge rather than truncating when more than MaxExportRows match.
func (r *BookingRepository) ListForExport(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	var args queryArgs
	conditions := bookingConditions(filter, &args)
	order := sortDirection(filter.SortOrder, "ASC")
	query := fmt.Sprintf("%s%s ORDER BY b.booking_date %s, b.start_time ASC LIMIT %d", bookingSelect, where(conditions), order, MaxExportRows+1)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list bookings for export: %w", err)
	}
	if len(bookings) > MaxExportRows {
		return nil, ErrExportTooLarge
	}
	return bookings, nil
}

// ListActiveForHall returns non-rejected bookings of a hall between from and to inclusive.
func (r *BookingRepository) ListActiveForHall(ctx context.Context, hallID string, from, to models.Date) ([]models.Booking, error) {
	query := bookingSelect + ` WHERE b.hall_id = $1 AND b.status <> 'rejected' AND b.booking_date BETWEEN $2 AND $3
ORDER BY b.booking_date ASC, b.start_time ASC`
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, hallID, from, to); err != nil {
		return nil, fmt.Errorf("list hall bookings: %w", err)
	}
	return bookings, nil
}

// Update stores the editable, non-status fields of a booking.
func (r *BookingRepository) Update(ctx context.Context, b *models.Booking) error {
	b.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bookings SET hall_id = :hall_id, department_id = :department_id, booking_date = :booking_date,
event_title = :event_title, event_description = :event_description, start_time = :start_time, end_time = :end_time,
time_slot = :time_slot, needs_ac = :needs_ac, needs_fan = :needs_fan, needs_photography = :needs_photography,
coordinator_names = :coordinator_names, chief_guest_name = :chief_guest_name, chief_guest_designation = :chief_guest_designation,
chief_guest_photo_url = :chief_guest_photo_url, event_partner_name = :event_partner_name,
event_partner_details = :event_partner_details, event_partner_logo_url = :event_partner_logo_url,
convenor_name = :convenor_name, convenor_designation = :convenor_designation, in_house_guest = :in_house_guest,
attachment_urls = :attachment_urls, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

// Decide moves a pending booking to approved or rejected. It reports false
// when the booking was no longer pending, leaving the row untouched.
func (r *BookingRepository) Decide(ctx context.Context, id string, status models.BookingStatus, deciderID string, reason *string, at time.Time) (bool, error) {
	const query = `UPDATE bookings SET status = $2, approved_by = $3, approved_at = $4, rejection_reason = $5, updated_at = $6
WHERE id = $1 AND status = 'pending'`
	var approvedBy *string
	var approvedAt *time.Time
	if status == models.BookingStatusApproved {
		approvedBy, approvedAt = &deciderID, &at
	}
	res, err := r.db.ExecContext(ctx, query, id, status, approvedBy, approvedAt, reason, at)
	if err != nil {
		return false, fmt.Errorf("decide booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decide booking rows: %w", err)
	}
	return n == 1, nil
}

// Delete hard-deletes a booking together with its press release submission.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM press_releases WHERE booking_id = $1`, id); err != nil {
			return fmt.Errorf("delete booking press release: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete booking: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

// SetFinalDesign records the designing team's file and completes the work status.
func (r *BookingRepository) SetFinalDesign(ctx context.Context, id, fileURL string) error {
	const query = `UPDATE bookings SET final_file_url = $2, work_status = 'completed', updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, fileURL, time.Now().UTC()); err != nil {
		return fmt.Errorf("set final design: %w", err)
	}
	return nil
}

// SetDriveLink records the photography team's drive link.
func (r *BookingRepository) SetDriveLink(ctx context.Context, id, link string) error {
	const query = `UPDATE bookings SET photography_drive_link = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, link, time.Now().UTC()); err != nil {
		return fmt.Errorf("set drive link: %w", err)
	}
	return nil
}

// ListAwaitingPressRelease returns approved bookings of a user dated on or
// before the given day that have no press release yet.
func (r *BookingRepository) ListAwaitingPressRelease(ctx context.Context, userID string, onOrBefore models.Date) ([]models.Booking, error) {
	query := bookingSelect + ` WHERE b.user_id = $1 AND b.status = 'approved' AND b.booking_date <= $2
AND NOT EXISTS (SELECT 1 FROM press_releases pr WHERE pr.booking_id = b.id)
ORDER BY b.booking_date ASC`
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, userID, onOrBefore); err != nil {
		return nil, fmt.Errorf("list bookings awaiting press release: %w", err)
	}
	return bookings, nil
}

// CountByStatus aggregates bookings matching the filter. Upcoming counts
// non-rejected bookings dated today or later.
func (r *BookingRepository) CountByStatus(ctx context.Context, filter models.BookingFilter, today models.Date) (models.BookingCounts, error) {
	var args queryArgs
	conditions := bookingConditions(filter, &args)
	todayArg := args.bind(today)
	query := `SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE b.status = 'pending') AS pending,
COUNT(*) FILTER (WHERE b.status = 'approved') AS approved,
COUNT(*) FILTER (WHERE b.status = 'rejected') AS rejected,
COUNT(*) FILTER (WHERE b.status <> 'rejected' AND b.booking_date >= ` + todayArg + `) AS upcoming
FROM bookings b
JOIN halls h ON h.id = b.hall_id
JOIN departments d ON d.id = b.department_id` + where(conditions)
	var counts models.BookingCounts
	if err := r.db.GetContext(ctx, &counts, query, args...); err != nil {
		return models.BookingCounts{}, fmt.Errorf("count bookings by status: %w", err)
	}
	return counts, nil
}
