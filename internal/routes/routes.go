package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/aid-map/internal/app/domain/mapconfig"
	"github.com/FACorreiaa/aid-map/internal/pkg/config"
	"github.com/FACorreiaa/aid-map/internal/pkg/env"
)

const ConfigPath = "/api/config"

type AppHandlers struct {
	MapConfig *mapconfig.Handler
}

func NewAppHandlers(lookup env.Lookup, logger *zap.Logger) *AppHandlers {
	return &AppHandlers{
		MapConfig: mapconfig.NewHandler(lookup, logger),
	}
}

// Setup registers every route on r.
func Setup(r *gin.Engine, cfg *config.Config, h *AppHandlers, logger *zap.Logger) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"env":    cfg.AppEnv,
		})
	})

	// Every method reaches the handler so non-GET callers get the JSON 405.
	r.Any(ConfigPath, h.MapConfig.HandleConfig)

	logger.Debug("Routes registered", zap.String("config_path", ConfigPath))
}
