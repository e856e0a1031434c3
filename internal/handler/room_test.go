package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getWithQuery(t *testing.T, h echo.HandlerFunc, query string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func TestAvailableRequiresWindow(t *testing.T) {
	h := NewRoomHandler(nil, nil)

	rec := getWithQuery(t, h.Available, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = getWithQuery(t, h.Available, "startTime=2025-03-01T09:00:00")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailableRejectsBadTimestamps(t *testing.T) {
	h := NewRoomHandler(nil, nil)

	rec := getWithQuery(t, h.Available, "startTime=garbage&endTime=2025-03-01T10:00:00")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid time range")

	// start after end is rejected too
	rec = getWithQuery(t, h.Available, "startTime=2025-03-01T11:00:00&endTime=2025-03-01T10:00:00")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilterFromQuery(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/?capacity=25&type=lab&building=Tech&hasComputers=true&hasProjector=false", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	f, err := filterFromQuery(c)
	require.NoError(t, err)
	require.NotNil(t, f.MinCapacity)
	assert.Equal(t, 25, *f.MinCapacity)
	assert.Equal(t, "lab", *f.Type)
	assert.Equal(t, "Tech", *f.Building)
	assert.True(t, *f.HasComputers)
	assert.False(t, *f.HasProjector)
}

func TestFilterFromQueryEmpty(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	f, err := filterFromQuery(c)
	require.NoError(t, err)
	assert.Nil(t, f.MinCapacity)
	assert.Nil(t, f.Type)
	assert.Nil(t, f.Building)
	assert.Nil(t, f.HasComputers)
	assert.Nil(t, f.HasProjector)
}

func TestFilterFromQueryBadCapacity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?capacity=lots", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	_, err := filterFromQuery(c)
	assert.Error(t, err)
}
