package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingRepoMock(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func TestUpdateStatusRecancelSucceeds(t *testing.T) {
	repo, mock := newBookingRepoMock(t)

	// MySQL reports zero affected rows when the status is unchanged;
	// cancelling an already-cancelled booking must still succeed.
	mock.ExpectExec(`UPDATE bookings SET status=\? WHERE id=\?`).
		WithArgs(BookingStatusCancelled, "b-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "b-1", BookingStatusCancelled)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
