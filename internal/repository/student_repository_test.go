package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

var studentRowColumns = []string{"id", "name", "group_name", "room_id", "user_id", "room_number"}

func TestStudentRepositoryListResolvesRooms(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows(studentRowColumns).
		AddRow(int64(1), "Ann", "G-1", int64(3), int64(2), "101").
		AddRow(int64(2), "Bob", "G-2", nil, int64(2), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students s LEFT JOIN rooms r ON r.id = s.room_id WHERE 1=1 ORDER BY s.id")).
		WillReturnRows(rows)

	students, err := repo.List(context.Background(), models.SystemScope())
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.NotNil(t, students[0].Room)
	assert.Equal(t, "101", students[0].Room.Number)
	assert.Equal(t, int64(3), students[0].Room.ID)
	assert.Nil(t, students[1].Room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDScoped(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.id = $1 AND s.user_id = $2")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow(int64(1), "Ann", "G-1", int64(3), int64(2), "101"))

	student, err := repo.FindByID(context.Background(), models.Scope{AccountID: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, "G-1", student.Group)
	assert.Equal(t, int64(2), student.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithoutRoom(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO students (name, group_name, room_id, user_id)")).
		WithArgs("Ann", "G-1", nil, int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

	student := &models.Student{Name: "Ann", Group: "G-1"}
	require.NoError(t, repo.Create(context.Background(), 2, student))
	assert.Equal(t, int64(10), student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListForExport(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id, s.name, s.group_name, r.number AS room_number FROM students s")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "group_name", "room_number"}).
			AddRow(int64(1), "Ann", "G-1", "101").
			AddRow(int64(2), "Bob", "G-2", nil))

	rows, err := repo.ListForExport(context.Background(), models.SystemScope())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].RoomNumber)
	assert.Equal(t, "101", *rows[0].RoomNumber)
	assert.Nil(t, rows[1].RoomNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}
