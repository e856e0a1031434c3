package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoomRepoMock(t *testing.T) (*RoomRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRoomRepo(db), mock
}

func TestRoomDeleteBlockedByBookings(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	// Any booking row referencing the room blocks deletion, cancelled
	// ones included.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE room_id=\?`).
		WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	err := repo.Delete(context.Background(), "r-1")
	assert.ErrorIs(t, err, ErrRoomHasBookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomDeleteNotFound(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE room_id=\?`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM rooms WHERE id=\?`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomDeleteUnreferenced(t *testing.T) {
	repo, mock := newRoomRepoMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE room_id=\?`).
		WithArgs("r-2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM rooms WHERE id=\?`).
		WithArgs("r-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "r-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
