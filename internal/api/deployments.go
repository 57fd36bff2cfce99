package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/arencloud/sitedeploy/internal/db"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

const maxListLimit = 500

func registerDeployments(r *gin.RouterGroup, h History) {
	r.GET("/deployments", listDeployments(h))
	r.GET("/deployments/:id", getDeployment(h))
}

func listDeployments(h History) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		limit := 50
		if v := c.Query("limit"); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil || i <= 0 {
				respondError(c, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = min(i, maxListLimit)
		}
		rows, err := h.List(c.Request.Context(), limit)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func getDeployment(h History) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			respondError(c, http.StatusBadRequest, "invalid deployment id")
			return
		}
		row, err := h.Get(c.Request.Context(), uint(id))
		if errors.Is(err, db.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

// respondError writes a JSON error carrying the request id.
func respondError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg, "requestId": requestid.Get(c)})
}
