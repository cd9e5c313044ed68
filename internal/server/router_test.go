package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/aid-map/internal/pkg/config"
	"github.com/FACorreiaa/aid-map/internal/pkg/env"
	"github.com/FACorreiaa/aid-map/internal/routes"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.FromEnv("test")
	require.NoError(t, err)
	return cfg
}

func newTestRouter(t *testing.T, lookup env.Lookup) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	return SetupRouter(testConfig(t), routes.NewAppHandlers(lookup, logger), logger)
}

func TestSetupRouter_Config(t *testing.T) {
	r := newTestRouter(t, env.Map{"MAPBOX_ACCESS_TOKEN": "pk.public"})

	t.Run("GET", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, routes.ConfigPath, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"MAPBOX_ACCESS_TOKEN":"pk.public"}`, w.Body.String())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("OPTIONS", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, routes.ConfigPath, nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("PUT", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, routes.ConfigPath, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestSetupRouter_Health(t *testing.T) {
	r := newTestRouter(t, env.Map{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","env":"test"}`, w.Body.String())
}

func TestHTTPServer(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg, zap.NewNop())
	s.SetRouter(http.NotFoundHandler())

	srv := s.HTTPServer()
	assert.Equal(t, ":"+cfg.ServerPort, srv.Addr)
	assert.NotNil(t, srv.Handler)
	assert.Equal(t, 10*time.Second, srv.ReadTimeout)
	assert.Same(t, cfg, s.GetConfig())
}

func TestGracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: http.NotFoundHandler()}
	go func() { _ = srv.Serve(ln) }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go GracefulShutdown(ctx, srv, zap.NewNop(), done)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * shutdownTimeout):
		t.Fatal("shutdown did not complete")
	}

	_, err = http.Get("http://" + ln.Addr().String())
	assert.Error(t, err)
}

func TestStartPprofServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := StartPprofServer("127.0.0.1:0", zap.NewNop())
	t.Cleanup(func() { _ = srv.Close() })

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
