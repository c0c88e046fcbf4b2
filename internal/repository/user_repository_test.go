package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hall-booking-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var userColumns = []string{"id", "email", "password_hash", "full_name", "role", "department_id", "institution_id", "department_name", "institution_name", "theme", "active", "last_login", "created_at", "updated_at"}

func TestFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumns).
		AddRow("1", "user@example.edu", "hash", "User", string(models.RoleDepartmentUser), "d1", "i1", "Computer Science", "City College", "dark", true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(u.email) = LOWER($1) LIMIT 1")).
		WithArgs("User@Example.edu").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "User@Example.edu")
	require.NoError(t, err)
	assert.Equal(t, "user@example.edu", user.Email)
	require.NotNil(t, user.DepartmentName)
	assert.Equal(t, "Computer Science", *user.DepartmentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersScopedToInstitution(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	role := models.RolePrincipal
	listRows := sqlmock.NewRows(userColumns).
		AddRow("1", "p@example.edu", "hash", "P", string(role), nil, "i1", nil, "City College", "light", true, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE u.role = $1 AND u.institution_id = $2 ORDER BY u.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(role, "i1").
		WillReturnRows(listRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users u WHERE u.role = $1 AND u.institution_id = $2")).
		WithArgs(role, "i1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role, InstitutionID: "i1"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.Nil(t, users[0].DepartmentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.User{Email: "dup@example.edu", Role: models.RoleDepartmentUser})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDefaultsTheme(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "new@example.edu", Role: models.RoleDepartmentUser}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.ThemeLight, user.Theme)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditLog{Action: models.AuditActionBookingDelete, Resource: models.AuditResourceBooking, NewValues: []byte(`{"reason":"duplicate"}`)}
	require.NoError(t, repo.CreateAuditLog(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
