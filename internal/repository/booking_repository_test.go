package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hall-booking-api/internal/models"
)

var bookingTestColumns = []string{"id", "hall_id", "department_id", "user_id", "institution_id", "booking_date", "event_title", "start_time", "end_time", "time_slot", "status", "attachment_urls", "work_status", "hall_name", "department_short_code", "created_at", "updated_at"}

func bookingRow(rows *sqlmock.Rows, id string, date time.Time, status models.BookingStatus) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "h1", "d1", "u1", "i1", date, "Event "+id, "10:00", "12:00", "10:00 - 12:00", string(status), "{a.pdf,b.pdf}", "pending", "Main Hall", "CSE", now, now)
}

func TestBookingListBuildsFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	from, _ := models.ParseDate("2024-05-01")
	rows := bookingRow(sqlmock.NewRows(bookingTestColumns), "b1", from.Time, models.BookingStatusApproved)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.institution_id = $1 AND b.status = ANY($2) AND b.booking_date >= $3 ORDER BY b.booking_date DESC, b.start_time ASC LIMIT 20 OFFSET 0")).
		WithArgs("i1", sqlmock.AnyArg(), "2024-05-01").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings b")).
		WithArgs("i1", sqlmock.AnyArg(), "2024-05-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	bookings, total, err := repo.List(context.Background(), models.BookingFilter{
		InstitutionID: "i1",
		Statuses:      []models.BookingStatus{models.BookingStatusApproved},
		From:          &from,
	})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "2024-05-01", bookings[0].BookingDate.String())
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, []string(bookings[0].AttachmentURLs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingListActiveForHallExcludesRejected(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	from, _ := models.ParseDate("2024-04-28")
	to, _ := models.ParseDate("2024-06-08")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.hall_id = $1 AND b.status <> 'rejected' AND b.booking_date BETWEEN $2 AND $3")).
		WithArgs("h1", "2024-04-28", "2024-06-08").
		WillReturnRows(sqlmock.NewRows(bookingTestColumns))

	bookings, err := repo.ListActiveForHall(context.Background(), "h1", from, to)
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingDecideOnlyFromPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'pending'")).
		WithArgs("b1", models.BookingStatusApproved, "admin", at, nil, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.Decide(context.Background(), "b1", models.BookingStatusApproved, "admin", nil, at)
	require.NoError(t, err)
	assert.True(t, ok)

	reason := "hall under maintenance"
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'pending'")).
		WithArgs("b2", models.BookingStatusRejected, nil, nil, reason, at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.Decide(context.Background(), "b2", models.BookingStatusRejected, "admin", &reason, at)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM press_releases WHERE booking_id = $1")).WithArgs("nope").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = $1")).WithArgs("nope").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	err := repo.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingDeleteRemovesPressReleaseInSameTx(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM press_releases WHERE booking_id = $1")).WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = $1")).WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Delete(context.Background(), "b1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingListForExportRejectsOverflow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	date, _ := models.ParseDate("2024-05-01")
	full := sqlmock.NewRows(bookingTestColumns)
	for i := 0; i < MaxExportRows; i++ {
		bookingRow(full, "b", date.Time, models.BookingStatusApproved)
	}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY b.booking_date ASC, b.start_time ASC LIMIT 5001")).WillReturnRows(full)
	bookings, err := repo.ListForExport(context.Background(), models.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, bookings, MaxExportRows)

	over := sqlmock.NewRows(bookingTestColumns)
	for i := 0; i <= MaxExportRows; i++ {
		bookingRow(over, "b", date.Time, models.BookingStatusApproved)
	}
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 5001")).WillReturnRows(over)
	_, err = repo.ListForExport(context.Background(), models.BookingFilter{})
	assert.ErrorIs(t, err, ErrExportTooLarge)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingSetFinalDesignCompletesWork(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SET final_file_url = $2, work_status = 'completed'")).
		WithArgs("b1", "/uploads/design.png", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetFinalDesign(context.Background(), "b1", "/uploads/design.png"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCountByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	today, _ := models.ParseDate("2026-10-18")
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE b.status = 'pending') AS pending")).
		WithArgs("u1", "2026-10-18").
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "approved", "rejected", "upcoming"}).AddRow(6, 2, 3, 1, 4))

	counts, err := repo.CountByStatus(context.Background(), models.BookingFilter{UserID: "u1"}, today)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCounts{Total: 6, Pending: 2, Approved: 3, Rejected: 1, Upcoming: 4}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingAwaitingPressRelease(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	day, _ := models.ParseDate("2026-10-18")
	rows := bookingRow(sqlmock.NewRows(bookingTestColumns), "b1", day.Time.AddDate(0, 0, -3), models.BookingStatusApproved)
	mock.ExpectQuery(regexp.QuoteMeta("NOT EXISTS (SELECT 1 FROM press_releases pr WHERE pr.booking_id = b.id)")).
		WithArgs("u1", "2026-10-18").
		WillReturnRows(rows)

	bookings, err := repo.ListAwaitingPressRelease(context.Background(), "u1", day)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "2026-10-15", bookings[0].BookingDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
