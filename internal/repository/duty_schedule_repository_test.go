package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

func TestDutyScheduleRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDutyScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "date", "student_id", "user_id", "student_name", "student_group"}).
		AddRow(int64(3), time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), int64(8), int64(2), "Ann", "G-1")
	mock.ExpectQuery(regexp.QuoteMeta("FROM duty_schedules d JOIN students st ON st.id = d.student_id WHERE d.id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	duty, err := repo.FindByID(context.Background(), models.SystemScope(), 3)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", duty.Date.String())
	require.NotNil(t, duty.Student)
	assert.Equal(t, models.StudentRef{ID: 8, Name: "Ann", Group: "G-1"}, *duty.Student)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDutyScheduleRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDutyScheduleRepository(db)

	date := models.NewDate(2024, time.April, 2)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE duty_schedules SET date = $1, student_id = $2 WHERE id = $3 AND user_id = $4")).
		WithArgs("2024-04-02", int64(8), int64(3), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), models.Scope{AccountID: 2}, &models.DutySchedule{ID: 3, Date: date, StudentID: 8})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
