package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/apperrors"
	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
	"github.com/SscSPs/fx_rate_dashboard/internal/dto"
	"github.com/SscSPs/fx_rate_dashboard/internal/middleware"
	"github.com/SscSPs/fx_rate_dashboard/internal/ratetable"
	"github.com/gin-gonic/gin"
)

// dateQuery is the optional ?date= parameter shared by the rate endpoints.
type dateQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// resolveDate binds ?date= and falls back to today in loc.
func resolveDate(c *gin.Context, loc *time.Location) (time.Time, bool) {
	var q dateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Invalid date parameter", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(bindingErrorMessage(err)))
		return time.Time{}, false
	}
	if q.Date == "" {
		return todayIn(loc), true
	}
	// The binding already checked the layout.
	d, _ := time.Parse(time.DateOnly, q.Date)
	return d, true
}

// todayIn is the calendar date in loc.
func todayIn(loc *time.Location) time.Time {
	return domain.DateOnly(time.Now().In(loc))
}

// statusFor maps service and engine errors to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ratetable.ErrUnknownTable):
		return http.StatusNotFound
	case errors.Is(err, ratetable.ErrRowOutOfRange):
		return http.StatusBadRequest
	default:
		return apperrors.StatusCode(err)
	}
}

// respondError logs err and answers with the failure envelope. Server-side
// failures hide their details behind publicMsg.
func respondError(c *gin.Context, err error, publicMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error(publicMsg, slog.String("error", err.Error()))
		msg = publicMsg
	} else {
		logger.Warn(publicMsg, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, dto.NewErrorResponse(msg))
}
