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

func TestStudentRepositoryListWithSearch(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "uid", "full_name", "email", "active", "created_at", "updated_at"}).
		AddRow("stu-1", "04A1B2", "Ada Lovelace", nil, true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, uid, full_name").WithArgs("%ada%").WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students`).WithArgs("%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "ada"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, students, 1)
	assert.Equal(t, "04A1B2", students[0].UID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByUID(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "uid", "full_name", "email", "active", "created_at", "updated_at"}).
		AddRow("stu-1", "04A1B2", "Ada Lovelace", nil, true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, uid, full_name").WithArgs("04A1B2").WillReturnRows(rows)

	student, err := repo.FindByUID(context.Background(), "04A1B2")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", student.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "04A1B2", "Ada Lovelace", nil, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	student := &models.Student{UID: "04A1B2", FullName: "Ada Lovelace", Active: true}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
