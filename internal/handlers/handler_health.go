package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/dto"
	"github.com/gin-gonic/gin"
)

// registerHealthRoutes registers the liveness probe.
func registerHealthRoutes(rg *gin.RouterGroup, loc *time.Location) {
	rg.GET("/health", getHealth(loc))
}

// getHealth godoc
// @Summary Show the status of server.
// @Description Reports liveness and the server time in the configured zone.
// @Tags root
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func getHealth(loc *time.Location) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{
			Status: "ok",
			Time:   time.Now().In(loc).Format(time.RFC3339),
		})
	}
}
