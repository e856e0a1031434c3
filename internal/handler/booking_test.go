package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/uniraum/room-booking/internal/repository"
)

// postJSON runs a handler against a JSON body with an authenticated
// context.  These tests exercise the validation paths that reject a
// request before any repository call is made.
func postJSON(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u-1")
	c.Set("role", "student")
	require.NoError(t, h(c))
	return rec
}

func TestCreateBookingMissingFields(t *testing.T) {
	h := NewBookingHandler(nil, nil, nil, zap.NewNop())

	rec := postJSON(t, h.Create, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.Create, `{"roomId":"r-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.Create, `{"startTime":"2025-03-01T09:00:00","endTime":"2025-03-01T10:00:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingResponsibilityRequired(t *testing.T) {
	h := NewBookingHandler(nil, nil, nil, zap.NewNop())

	rec := postJSON(t, h.Create, `{
		"roomId":"r-1",
		"startTime":"2025-03-01T09:00:00",
		"endTime":"2025-03-01T10:00:00",
		"responsibilityAccepted":false
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "responsibility")
}

func TestCreateBookingInvalidInterval(t *testing.T) {
	h := NewBookingHandler(nil, nil, nil, zap.NewNop())

	// end before start
	rec := postJSON(t, h.Create, `{
		"roomId":"r-1",
		"startTime":"2025-03-01T10:00:00",
		"endTime":"2025-03-01T09:00:00",
		"responsibilityAccepted":true
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unparseable timestamps
	rec = postJSON(t, h.Create, `{
		"roomId":"r-1",
		"startTime":"not-a-date",
		"endTime":"2025-03-01T10:00:00",
		"responsibilityAccepted":true
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// A failed last-used stamp must not fail the booking; it is logged and
// the booking is still returned.
func TestCreateBookingStampFailureLogged(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	core, logs := observer.New(zap.WarnLevel)
	h := NewBookingHandler(
		repository.NewRoomRepo(db),
		repository.NewBookingRepo(db),
		repository.NewUserRepo(db),
		zap.New(core),
	)

	now := time.Now().UTC()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM rooms WHERE id = \?`).
		WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "building", "floor", "capacity", "type",
			"has_computers", "has_projector", "description",
			"last_user_id", "last_used_at", "created_at", "updated_at",
		}).AddRow("r-1", "Lab 1", "Tech", 2, 30, "lab", true, false, nil, nil, nil, now, now))
	mock.ExpectQuery(`SELECT start_time, end_time FROM bookings WHERE user_id = \? AND status = \?`).
		WithArgs("u-1", repository.BookingStatusConfirmed).
		WillReturnRows(sqlmock.NewRows([]string{"start_time", "end_time"}))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM bookings WHERE id = \?`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "room_id", "user_id", "start_time", "end_time", "purpose",
			"status", "responsibility_accepted", "created_at", "updated_at",
		}).AddRow("b-1", "r-1", "u-1", start, end, nil,
			repository.BookingStatusConfirmed, true, now, now))
	mock.ExpectExec(`UPDATE rooms SET last_user_id=\?, last_used_at=\? WHERE id=\?`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery(`FROM users WHERE id=\? LIMIT 1`).
		WithArgs("u-1").
		WillReturnError(sql.ErrNoRows)

	rec := postJSON(t, h.Create, `{
		"roomId":"r-1",
		"startTime":"2025-03-01T09:00:00",
		"endTime":"2025-03-01T10:00:00",
		"responsibilityAccepted":true
	}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("stamp last used failed").Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}
