package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hall-booking-api/internal/models"
)

func TestHallListActiveForInstitution(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHallRepository(db)

	now := time.Now()
	active := true
	rows := sqlmock.NewRows([]string{"id", "institution_id", "name", "description", "image_url", "capacity", "stage_size", "hall_type", "has_ac", "has_sound_system", "active", "created_at", "updated_at"}).
		AddRow("h1", "i1", "Main Auditorium", "", nil, 500, "40x20", "auditorium", true, true, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM halls WHERE institution_id = $1 AND active = $2 ORDER BY name ASC")).
		WithArgs("i1", true).
		WillReturnRows(rows)

	halls, err := repo.List(context.Background(), models.HallFilter{InstitutionID: "i1", Active: &active})
	require.NoError(t, err)
	require.Len(t, halls, 1)
	assert.Equal(t, 500, halls[0].Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHallDeactivate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHallRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE halls SET active = FALSE")).WithArgs("h1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Deactivate(context.Background(), "h1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentListByInstitution(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "institution_id", "institution_name", "name", "short_code", "created_at", "updated_at"}).
		AddRow("d1", "i1", "City College", "Computer Science", "CSE", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE d.institution_id = $1 ORDER BY d.name ASC")).WithArgs("i1").WillReturnRows(rows)

	items, err := repo.List(context.Background(), models.DepartmentFilter{InstitutionID: "i1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "CSE", items[0].ShortCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstitutionCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInstitutionRepository(db)

	mock.ExpectExec("INSERT INTO institutions").WillReturnResult(sqlmock.NewResult(1, 1))
	item := &models.Institution{Name: "City College", ShortName: "CC"}
	require.NoError(t, repo.Create(context.Background(), item))
	assert.NotEmpty(t, item.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingGetAndUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM settings WHERE key = $1")).
		WithArgs(models.SettingRegistrationActive).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "type", "description", "updated_by", "updated_at"}).
			AddRow(models.SettingRegistrationActive, "true", "BOOLEAN", nil, nil, now))
	item, err := repo.Get(context.Background(), models.SettingRegistrationActive)
	require.NoError(t, err)
	assert.Equal(t, "true", item.Value)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (key)")).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Upsert(context.Background(), &models.Setting{Key: models.SettingRegistrationActive, Value: "false", Type: models.SettingTypeBoolean}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
