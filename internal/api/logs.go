package api

import (
	"net/http"
	"strconv"

	"github.com/arencloud/sitedeploy/internal/logging"
	"github.com/gin-gonic/gin"
)

func registerLogs(r *gin.RouterGroup) {
	r.GET("/logs", logsRecent)
	r.GET("/logs/level", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"level": logging.GetLevel()})
	})
}

// logsRecent returns recent structured logs, newest first, optionally filtered by level.
func logsRecent(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	limit := 200
	if v := c.Query("limit"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil || i <= 0 {
			respondError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = i
	}
	level := c.Query("level")
	out := make([]*logging.Entry, 0, limit)
	for _, e := range logging.Recent(0) {
		if len(out) == limit {
			break
		}
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	c.JSON(http.StatusOK, out)
}
