package server

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/middleware"
	"github.com/tallyapp/tally/internal/pkg/config"
	"github.com/tallyapp/tally/internal/routes"
)

// SetupRouter configures and returns the Gin router with all middleware and
// routes.
func SetupRouter(dbPool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.OTELGin("tally"))
	r.Use(middleware.RequestMetrics())
	r.Use(middleware.CORS())
	r.Use(middleware.Security())

	routes.Setup(r, dbPool, cfg, logger)

	return r
}
