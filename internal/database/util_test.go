package database

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jobportal-backend/internal/apperror"
	m "jobportal-backend/internal/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gdb, mock
}

func TestTranslateError_mockedDriver(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{
			name:    "unique violation",
			dbErr:   &pgconn.PgError{Code: "23505", ConstraintName: "employer_admins_pkey"},
			wantErr: apperror.ErrDuplicateEntry,
		},
		{
			name:    "foreign key violation",
			dbErr:   &pgconn.PgError{Code: "23503", ConstraintName: "employer_admins_user_id_fkey"},
			wantErr: apperror.ErrInvalidReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb, mock := newMockDB(t)
			mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "employer_admins"`)).WillReturnError(tt.dbErr)

			err := gdb.Create(&m.EmployerAdmin{EmployerID: uuid.New(), UserID: uuid.New()}).Error
			assert.ErrorIs(t, TranslateError(err, "employer admin"), tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTranslateError_passThrough(t *testing.T) {
	assert.NoError(t, TranslateError(nil, "x"))

	assert.ErrorIs(t, TranslateError(gorm.ErrRecordNotFound, "job"), apperror.ErrNotFoundOrForbidden)

	appErr := apperror.Validation("bad")
	assert.Same(t, appErr, TranslateError(appErr, "job"))

	raw := errors.New("connection reset")
	translated := TranslateError(raw, "job")
	assert.ErrorIs(t, translated, raw)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(translated))
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "uq_employer_owner"}

	assert.True(t, IsUniqueViolation(err, "uq_employer_owner"))
	assert.True(t, IsUniqueViolation(err, ""))
	assert.False(t, IsUniqueViolation(err, "uq_job_slug"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("x"), ""))
}
