package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/services"
	"github.com/SscSPs/fx_rate_dashboard/internal/dto"
	"github.com/SscSPs/fx_rate_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

type userRateHandler struct {
	userRateService portssvc.UserRateSvc
}

func registerUserRateRoutes(rg *gin.RouterGroup, userRateService portssvc.UserRateSvc) {
	h := &userRateHandler{userRateService: userRateService}
	rg.GET("/user_exchange_rates", h.proxyUserRates)
}

// proxyUserRates godoc
// @Summary Get the user-defined rates
// @Description Proxies the user-defined rates upstream with the server's credentials. Successful answers are passed through unchanged.
// @Tags exchange rates
// @Produce  json
// @Success 200 {object} map[string]interface{} "Upstream payload"
// @Failure 400 {object} dto.ErrorResponse "Upstream rejected the request"
// @Failure 500 {object} dto.ErrorResponse "Upstream unreachable"
// @Router /user_exchange_rates [get]
func (h *userRateHandler) proxyUserRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	resp, err := h.userRateService.FetchUserRates(c.Request.Context())
	if err != nil {
		logger.Error("User rate proxy failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(err.Error()))
		return
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		logger.Error("User rate upstream failed", slog.Int("upstream_status", resp.StatusCode))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(fmt.Sprintf("upstream answered %d", resp.StatusCode)))
	case resp.StatusCode >= http.StatusBadRequest:
		c.JSON(resp.StatusCode, dto.NewErrorResponse(strings.TrimSpace(string(resp.Body))))
	default:
		contentType := resp.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		c.Data(resp.StatusCode, contentType, resp.Body)
	}
}
