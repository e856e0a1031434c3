package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/uniraum/room-booking/internal/config"
	"github.com/uniraum/room-booking/internal/repository"
)

// putJSON runs a handler against a JSON body as the given caller,
// optionally with an :id path param.
func putJSON(t *testing.T, h echo.HandlerFunc, uid, role, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uid)
	c.Set("role", role)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	require.NoError(t, h(c))
	return rec
}

// newUserHandlerMock backs a UserHandler with a mocked DB so the full
// read-patch-write flow can be exercised.
func newUserHandlerMock(t *testing.T) (*UserHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{EmailDomain: "ostfalia.de", BcryptCost: bcrypt.MinCost}
	return NewUserHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func userRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "role",
		"profile_picture", "created_at", "updated_at",
	}).AddRow("u-1", "anna", "anna@ostfalia.de", "$2a$04$x", "student", nil, now, now)
}

func TestAdminUpdateUserRejectsEmptyUsername(t *testing.T) {
	h := NewUserHandler(config.Config{EmailDomain: "ostfalia.de"}, nil, nil)

	rec := putJSON(t, h.UpdateUser, "admin-1", "admin", "u-1", `{"username":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "username")

	rec = putJSON(t, h.UpdateUser, "admin-1", "admin", "u-1", `{"username":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProfilePasswordChangeRevokesSessions(t *testing.T) {
	h, mock := newUserHandlerMock(t)

	mock.ExpectQuery(`FROM users WHERE id=\? LIMIT 1`).
		WithArgs("u-1").WillReturnRows(userRow())
	mock.ExpectExec(`UPDATE users SET password_hash=\? WHERE id=\?`).
		WithArgs(sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at=NOW\(\) WHERE user_id=\? AND revoked_at IS NULL`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`FROM users WHERE id=\? LIMIT 1`).
		WithArgs("u-1").WillReturnRows(userRow())

	rec := putJSON(t, h.UpdateProfile, "u-1", "student", "", `{"password":"newpass123"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminPasswordChangeRevokesSessions(t *testing.T) {
	h, mock := newUserHandlerMock(t)

	mock.ExpectQuery(`FROM users WHERE id=\? LIMIT 1`).
		WithArgs("u-1").WillReturnRows(userRow())
	mock.ExpectExec(`UPDATE users SET password_hash=\? WHERE id=\?`).
		WithArgs(sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at=NOW\(\) WHERE user_id=\? AND revoked_at IS NULL`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM users WHERE id=\? LIMIT 1`).
		WithArgs("u-1").WillReturnRows(userRow())

	rec := putJSON(t, h.UpdateUser, "admin-1", "admin", "u-1", `{"password":"reset-by-admin"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
