package api

import (
	"context"
	"net/http"
	"time"

	"github.com/arencloud/sitedeploy/internal/config"
	"github.com/arencloud/sitedeploy/internal/logging"
	"github.com/arencloud/sitedeploy/internal/middleware"
	"github.com/arencloud/sitedeploy/internal/models"
	"github.com/arencloud/sitedeploy/internal/version"

	"github.com/gin-contrib/requestid"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
)

// History is the read side of the deployment history.
type History interface {
	List(ctx context.Context, limit int) ([]models.Deployment, error)
	Get(ctx context.Context, id uint) (*models.Deployment, error)
}

func Router(cfg *config.Config, logger logging.Logger, history History) http.Handler {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(requestid.New())
	r.Use(ginzap.Ginzap(logging.Zap(logger), time.RFC3339, true))
	r.Use(middleware.Recoverer(logger))

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "sitedeploy", "version": version.Version})
	})

	v1 := r.Group("/api/v1")
	registerDeployments(v1, history)
	registerLogs(v1)
	return r
}
