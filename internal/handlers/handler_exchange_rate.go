package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/services"
	"github.com/SscSPs/fx_rate_dashboard/internal/dto"
	"github.com/SscSPs/fx_rate_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to the stored daily rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
	loc                 *time.Location
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade, loc *time.Location) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
		loc:                 loc,
	}
}

// registerExchangeRateRoutes registers the public read route and the two
// protected ingest triggers.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade, loc *time.Location, adminSecret, cronKey string) {
	h := newExchangeRateHandler(exchangeRateService, loc)

	rg.GET("/daily_exchange_rates", h.getDailyRates)

	admin := rg.Group("/admin", middleware.AdminJWTMiddleware(adminSecret))
	admin.POST("/refresh_daily", h.refreshDaily)

	cron := rg.Group("/internal/cron", middleware.CronKeyMiddleware(cronKey))
	cron.POST("/fetch-daily", h.cronFetchDaily)
}

// getDailyRates godoc
// @Summary Get the daily rates
// @Description Returns the stored daily rates for a date, today in the configured zone by default
// @Tags exchange rates
// @Produce  json
// @Param   date query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.DailyRatesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve exchange rates"
// @Router /daily_exchange_rates [get]
func (h *exchangeRateHandler) getDailyRates(c *gin.Context) {
	date, ok := resolveDate(c, h.loc)
	if !ok {
		return
	}
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("date", date.Format(time.DateOnly)))

	rates, err := h.exchangeRateService.GetRatesForDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, err, "Failed to retrieve exchange rates")
		return
	}

	// Every row carries the requested date, whatever the stored row says.
	data := dto.ToListExchangeRateResponse(rates)
	for i := range data {
		data[i].Date = date.Format(time.DateOnly)
	}

	logger.Info("Daily rates retrieved", slog.Int("rows", len(data)))
	c.JSON(http.StatusOK, dto.DailyRatesResponse{Status: 1, Data: data})
}

// refreshDaily godoc
// @Summary Re-ingest the daily rates
// @Description Pulls the rates from the upstream feeds and replaces the stored rates of a date
// @Tags admin
// @Produce  json
// @Param   date query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.RefreshResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 502 {object} dto.ErrorResponse "Every rate source failed"
// @Security BearerAuth
// @Router /admin/refresh_daily [post]
func (h *exchangeRateHandler) refreshDaily(c *gin.Context) {
	date, ok := resolveDate(c, h.loc)
	if !ok {
		return
	}
	h.ingest(c, date)
}

// cronFetchDaily godoc
// @Summary Scheduled ingest trigger
// @Description Ingests today's rates. Requires the X-CRON-KEY header.
// @Tags admin
// @Produce  json
// @Param   X-CRON-KEY header string true "Cron key"
// @Success 200 {object} dto.RefreshResponse
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 502 {object} dto.ErrorResponse "Every rate source failed"
// @Router /internal/cron/fetch-daily [post]
func (h *exchangeRateHandler) cronFetchDaily(c *gin.Context) {
	h.ingest(c, todayIn(h.loc))
}

func (h *exchangeRateHandler) ingest(c *gin.Context, date time.Time) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("date", date.Format(time.DateOnly)))
	logger.Info("Received request to ingest daily rates")

	count, err := h.exchangeRateService.IngestForDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, err, "Failed to ingest exchange rates")
		return
	}

	logger.Info("Daily rates ingested", slog.Int("rows", count))
	c.JSON(http.StatusOK, dto.RefreshResponse{Status: 1, Date: date.Format(time.DateOnly), Count: count})
}
