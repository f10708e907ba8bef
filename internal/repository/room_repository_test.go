package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-admin-api/internal/models"
	"github.com/noah-isme/dorm-admin-api/pkg/database"
)

func TestRoomRepositoryListScoped(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "number", "user_id"}).
		AddRow(int64(1), "101", int64(5)).
		AddRow(int64(4), "204", int64(5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, number, user_id FROM rooms WHERE 1=1 AND user_id = $1 ORDER BY id")).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	rooms, err := repo.List(context.Background(), models.Scope{AccountID: 5})
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "204", rooms[1].Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryFindByIDOutsideScope(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, number, user_id FROM rooms WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(9), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "user_id"}))

	room, err := repo.FindByID(context.Background(), models.Scope{AccountID: 5}, 9)
	assert.Nil(t, room)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO rooms (number, user_id) VALUES ($1, $2) RETURNING id")).
		WithArgs("101", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	room := &models.Room{Number: "101"}
	require.NoError(t, repo.Create(context.Background(), 3, room))
	assert.Equal(t, int64(12), room.ID)
	assert.Equal(t, int64(3), room.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET number = $1 WHERE id = $2 AND user_id = $3")).
		WithArgs("102", int64(4), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), models.Scope{AccountID: 3}, &models.Room{ID: 4, Number: "102"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), models.SystemScope(), 4))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(5), int64(3)).
		WillReturnError(&pq.Error{Code: "23503"})
	err := repo.Delete(context.Background(), models.Scope{AccountID: 3}, 5)
	require.Error(t, err)
	assert.True(t, database.IsForeignKeyViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
