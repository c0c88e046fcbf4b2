package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hall-booking-api/internal/models"
)

func TestPressReleaseCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPressReleaseRepository(db)

	mock.ExpectExec("INSERT INTO press_releases").WillReturnError(&pq.Error{Code: "23505", Constraint: "press_releases_booking_id_key"})

	err := repo.Create(context.Background(), &models.PressRelease{BookingID: "b1", Status: models.PressReleasePending})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPressReleaseListByInstitutionAndStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPressReleaseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "booking_id", "user_id", "event_title", "event_date", "photo_urls", "status", "submitter_name", "created_at", "updated_at"}).
		AddRow("pr1", "b1", "u1", "Science Fair", now, "{/uploads/p1.jpg}", "pending", "Asha", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE pr.institution_id = $1 AND pr.status = $2 ORDER BY pr.created_at DESC")).
		WithArgs("i1", models.PressReleasePending).
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), models.PressReleaseFilter{InstitutionID: "i1", Status: models.PressReleasePending})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"/uploads/p1.jpg"}, []string(items[0].PhotoURLs))
	assert.Equal(t, "Asha", items[0].SubmitterName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPressReleaseExistsForBooking(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPressReleaseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("b1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForBooking(context.Background(), "b1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPressReleaseUpdateStatusMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPressReleaseRepository(db)

	mock.ExpectExec("UPDATE press_releases SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.Error(t, repo.UpdateStatus(context.Background(), "missing", models.PressReleaseApproved))
	assert.NoError(t, mock.ExpectationsWereMet())
}
