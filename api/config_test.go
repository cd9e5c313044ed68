package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/aid-map/internal/pkg/env"
	"github.com/FACorreiaa/aid-map/pkg/logger"
)

func TestHandler(t *testing.T) {
	t.Setenv("MAPBOX_ACCESS_TOKEN", "abc123")

	w := httptest.NewRecorder()
	Handler(w, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"MAPBOX_ACCESS_TOKEN":"abc123"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	Handler(w, httptest.NewRequest(http.MethodPost, "/api/config", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewConfigHandler_UsesSharedLogger(t *testing.T) {
	h := newConfigHandler(env.Map{"LOG_LEVEL": "debug", "MAPBOX_ACCESS_TOKEN": "pk.map"})
	require.NotNil(t, h)
	require.NotNil(t, logger.Log)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	assert.JSONEq(t, `{"MAPBOX_ACCESS_TOKEN":"pk.map"}`, w.Body.String())
}
