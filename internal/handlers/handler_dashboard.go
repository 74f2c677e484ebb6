package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/dashboard"
	"github.com/SscSPs/fx_rate_dashboard/internal/dto"
	"github.com/SscSPs/fx_rate_dashboard/internal/middleware"
	"github.com/SscSPs/fx_rate_dashboard/internal/ratetable"
	"github.com/gin-gonic/gin"
)

type sessionURI struct {
	SessionID string `uri:"sessionID" binding:"required,uuid"`
}

type tableURI struct {
	SessionID string `uri:"sessionID" binding:"required,uuid"`
	Table     string `uri:"table" binding:"required,oneof=daily user"`
}

type rowURI struct {
	SessionID string `uri:"sessionID" binding:"required,uuid"`
	Table     string `uri:"table" binding:"required,oneof=daily user"`
	Row       int    `uri:"row" binding:"min=0"`
}

// dashboardHandler exposes server-side rate table sessions.
type dashboardHandler struct {
	sessions *dashboard.Manager
	loc      *time.Location
}

func registerDashboardRoutes(rg *gin.RouterGroup, sessions *dashboard.Manager, loc *time.Location) {
	h := &dashboardHandler{sessions: sessions, loc: loc}

	s := rg.Group("/dashboard/sessions")
	{
		s.POST("", h.createSession)
		s.GET("/:sessionID", h.getSession)
		s.DELETE("/:sessionID", h.deleteSession)
		s.POST("/:sessionID/tabs/:table", h.activateTab)
		s.POST("/:sessionID/tables/:table/reload", h.reloadTable)
		s.PUT("/:sessionID/tables/:table/search", h.searchTable)
		s.PUT("/:sessionID/tables/:table/rows/:row/amount", h.setAmount)
	}
}

func toSessionResponse(snap dashboard.Snapshot) dto.SessionResponse {
	return dto.SessionResponse{ID: snap.ID, Active: snap.Active, Tables: snap.Tables}
}

// bindURI binds path parameters into dst, answering 400 on failure.
func bindURI(c *gin.Context, dst any) bool {
	if err := c.ShouldBindUri(dst); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(bindingErrorMessage(err)))
		return false
	}
	return true
}

func (h *dashboardHandler) session(c *gin.Context, id string) (*dashboard.Session, bool) {
	sess, err := h.sessions.Get(id)
	if err != nil {
		respondError(c, err, "Dashboard session not found")
		return nil, false
	}
	return sess, true
}

// createSession godoc
// @Summary Open a dashboard session
// @Description Creates a session holding both rate tables and loads the daily table
// @Tags dashboard
// @Accept  json
// @Produce  json
// @Param   session body dto.CreateSessionRequest false "Initial date"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Router /dashboard/sessions [post]
func (h *dashboardHandler) createSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for CreateSession", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(bindingErrorMessage(err)))
			return
		}
	}

	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse(time.DateOnly, req.Date)
	}

	sess, err := h.sessions.Create(c.Request.Context(), date)
	if err != nil {
		respondError(c, err, "Failed to create dashboard session")
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(sess.Snapshot()))
}

// getSession godoc
// @Summary Get a dashboard session
// @Description Returns the render model of both tables
// @Tags dashboard
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /dashboard/sessions/{sessionID} [get]
func (h *dashboardHandler) getSession(c *gin.Context) {
	var uri sessionURI
	if !bindURI(c, &uri) {
		return
	}
	sess, ok := h.session(c, uri.SessionID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(sess.Snapshot()))
}

// deleteSession godoc
// @Summary Close a dashboard session
// @Tags dashboard
// @Param   sessionID path string true "Session ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /dashboard/sessions/{sessionID} [delete]
func (h *dashboardHandler) deleteSession(c *gin.Context) {
	var uri sessionURI
	if !bindURI(c, &uri) {
		return
	}
	if !h.sessions.Delete(uri.SessionID) {
		respondError(c, dashboard.ErrSessionNotFound, "Dashboard session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// activateTab godoc
// @Summary Switch the visible table
// @Description Activates a table, fetching it when it was never loaded or marked stale
// @Tags dashboard
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   table path string true "Table" Enums(daily, user)
// @Success 200 {object} dto.ActivateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /dashboard/sessions/{sessionID}/tabs/{table} [post]
func (h *dashboardHandler) activateTab(c *gin.Context) {
	var uri tableURI
	if !bindURI(c, &uri) {
		return
	}
	sess, ok := h.session(c, uri.SessionID)
	if !ok {
		return
	}

	act, view, err := sess.Activate(c.Request.Context(), ratetable.TableID(uri.Table))
	if err != nil {
		respondError(c, err, "Failed to activate table")
		return
	}
	c.JSON(http.StatusOK, dto.ActivateResponse{
		Table:    act.Table,
		Previous: act.Previous,
		Changed:  act.Changed,
		Fetched:  act.NeedsFetch,
		View:     view,
	})
}

// reloadTable godoc
// @Summary Refetch a table
// @Description Refetches a table. Fetch failures are reported in the returned view.
// @Tags dashboard
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   table path string true "Table" Enums(daily, user)
// @Param   date query string false "Date (YYYY-MM-DD), daily table only"
// @Success 200 {object} ratetable.TableView
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /dashboard/sessions/{sessionID}/tables/{table}/reload [post]
func (h *dashboardHandler) reloadTable(c *gin.Context) {
	var uri tableURI
	if !bindURI(c, &uri) {
		return
	}
	date, ok := resolveDate(c, h.loc)
	if !ok {
		return
	}
	sess, ok := h.session(c, uri.SessionID)
	if !ok {
		return
	}

	view, err := sess.Reload(c.Request.Context(), ratetable.TableID(uri.Table), date)
	if err != nil {
		respondError(c, err, "Failed to reload table")
		return
	}
	c.JSON(http.StatusOK, view)
}

// searchTable godoc
// @Summary Filter a table
// @Description Shows only rows whose currency codes contain the query
// @Tags dashboard
// @Accept  json
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   table path string true "Table" Enums(daily, user)
// @Param   search body dto.SearchRequest true "Query"
// @Success 200 {object} ratetable.TableView
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /dashboard/sessions/{sessionID}/tables/{table}/search [put]
func (h *dashboardHandler) searchTable(c *gin.Context) {
	var uri tableURI
	if !bindURI(c, &uri) {
		return
	}
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(bindingErrorMessage(err)))
		return
	}
	sess, ok := h.session(c, uri.SessionID)
	if !ok {
		return
	}

	view, err := sess.Search(ratetable.TableID(uri.Table), req.Query)
	if err != nil {
		respondError(c, err, "Failed to search table")
		return
	}
	c.JSON(http.StatusOK, view)
}

// setAmount godoc
// @Summary Enter an amount in a row
// @Description Stores the amount typed into a visible row and returns only that row, re-rendered
// @Tags dashboard
// @Accept  json
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   table path string true "Table" Enums(daily, user)
// @Param   row path int true "Visible row index"
// @Param   amount body dto.AmountRequest true "Amount"
// @Success 200 {object} ratetable.RowView
// @Failure 400 {object} dto.ErrorResponse "Invalid input or row out of range"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /dashboard/sessions/{sessionID}/tables/{table}/rows/{row}/amount [put]
func (h *dashboardHandler) setAmount(c *gin.Context) {
	var uri rowURI
	if !bindURI(c, &uri) {
		return
	}
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(bindingErrorMessage(err)))
		return
	}
	sess, ok := h.session(c, uri.SessionID)
	if !ok {
		return
	}

	row, err := sess.Amount(ratetable.TableID(uri.Table), uri.Row, *req.Value)
	if err != nil {
		respondError(c, err, "Failed to update row")
		return
	}
	c.JSON(http.StatusOK, row)
}
