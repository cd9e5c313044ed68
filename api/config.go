// Package api holds serverless entry points. Platforms that build Go functions
// from an api/ directory (Vercel, for one) invoke the exported Handler.
package api

import (
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/FACorreiaa/aid-map/internal/app/domain/mapconfig"
	"github.com/FACorreiaa/aid-map/internal/pkg/env"
	"github.com/FACorreiaa/aid-map/pkg/logger"
)

var (
	configHandler *mapconfig.Handler
	initOnce      sync.Once
)

// Handler serves GET /api/config.
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(func() {
		configHandler = newConfigHandler(env.OS{})
	})
	configHandler.ServeHTTP(w, r)
}

func newConfigHandler(lookup env.Lookup) *mapconfig.Handler {
	level := logger.ParseLevel(env.GetOrDefault(lookup, "LOG_LEVEL", "info"))
	// A failed Init leaves logger.Log nil; NewHandler falls back to a no-op logger.
	_ = logger.Init(level, zap.String("service", "aid-map-api"))
	return mapconfig.NewHandler(lookup, logger.Log)
}
