package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classtap-api/internal/models"
)

func recordRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "enrollment_id", "date", "status", "override_status",
		"last_arrival", "last_leave", "duration_seconds", "created_at",
	})
}

func TestAttendanceRecordRepositoryFindByEnrollmentAndDate(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewAttendanceRecordRepository(db)

	rows := recordRows().
		AddRow("rec-1", "enr-1", "2025-03-10", "LATE", "EXCUSED", "2025-03-10 09:20", "2025-03-10 10:14", int64(3200), time.Now())
	mock.ExpectQuery("SELECT id, enrollment_id, date").
		WithArgs("enr-1", "2025-03-10").
		WillReturnRows(rows)

	rec, err := repo.FindByEnrollmentAndDate(context.Background(), "enr-1", "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusLate, rec.Status)
	require.NotNil(t, rec.OverrideStatus)
	assert.Equal(t, models.StatusExcused, *rec.OverrideStatus)
	assert.Equal(t, models.StatusExcused, rec.EffectiveStatus())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRecordRepositoryFindMissingIsNil(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewAttendanceRecordRepository(db)

	mock.ExpectQuery("SELECT id, enrollment_id, date").
		WithArgs("enr-1", "2025-03-11").
		WillReturnRows(recordRows())

	rec, err := repo.FindByEnrollmentAndDate(context.Background(), "enr-1", "2025-03-11")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRecordRepositoryReplaceForDate(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewAttendanceRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance_records").
		WithArgs(sqlmock.AnyArg(), "enr-1", "2025-03-10", models.StatusOnTime, nil,
			sqlmock.AnyArg(), sqlmock.AnyArg(), int64(4100), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO attendance_records").
		WithArgs(sqlmock.AnyArg(), "enr-2", "2025-03-10", models.StatusAbsent, nil,
			nil, nil, int64(0), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	arrival := "2025-03-10 09:02"
	leave := "2025-03-10 10:14"
	records := []models.AttendanceRecord{
		{EnrollmentID: "enr-1", Date: "2025-03-10", Status: models.StatusOnTime, LastArrival: &arrival, LastLeave: &leave, DurationSeconds: 4100},
		{EnrollmentID: "enr-2", Date: "2025-03-10", Status: models.StatusAbsent},
	}
	err := repo.ReplaceForDate(context.Background(), records)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRecordRepositoryReplaceForDateEmpty(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewAttendanceRecordRepository(db)

	err := repo.ReplaceForDate(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
