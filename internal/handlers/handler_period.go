package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// periodHandler handles HTTP requests for fiscal periods.
type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

func newPeriodHandler(ps portssvc.PeriodSvcFacade) *periodHandler {
	return &periodHandler{
		periodService: ps,
	}
}

// RegisterPeriodRoutes registers fiscal period routes under an org group.
// Reopening requires the ledger admin role.
func RegisterPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := newPeriodHandler(periodService)

	periods := rg.Group("/periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/by-date", h.getPeriodForDate)
		periods.GET("/:period_id", h.getPeriod)
		periods.GET("/:period_id/audit", h.listPeriodAudit)
		periods.POST("/:period_id/close", h.closePeriod)
		periods.POST("/:period_id/lock", h.lockPeriod)
		periods.POST("/:period_id/reopen", middleware.RequireRole(middleware.RoleLedgerAdmin), h.reopenPeriod)
	}
}

// createPeriod godoc
// @Summary Create a fiscal period
// @Description Creates an OPEN fiscal period that must not overlap existing periods
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   period body dto.CreatePeriodRequest true "Period details"
// @Success 201 {object} dto.PeriodResponse
// @Failure 400 {object} map[string]string "Invalid input or date range"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Period overlaps an existing period"
// @Failure 500 {object} map[string]string "Failed to create period"
// @Security BearerAuth
// @Router /orgs/{org_id}/periods [post]
func (h *periodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "request format")
		return
	}

	logger.Info("Received request to create period",
		slog.String("org_id", orgID),
		slog.String("name", req.Name),
		slog.String("starts_at", req.StartsAt.Format(dto.DateLayout)),
		slog.String("ends_at", req.EndsAt.Format(dto.DateLayout)))

	period, err := h.periodService.CreatePeriod(c.Request.Context(), orgID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to create period")
		return
	}

	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

// listPeriods godoc
// @Summary List fiscal periods
// @Description Returns the organization's fiscal periods ordered by start date
// @Tags periods
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Success 200 {array} dto.PeriodResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list periods"
// @Security BearerAuth
// @Router /orgs/{org_id}/periods [get]
func (h *periodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	periods, err := h.periodService.ListPeriods(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, logger, err, "Failed to list periods")
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodResponses(periods))
}

// getPeriodForDate answers 404 when no period covers the date.
// @Summary Find the period for a date
// @Description Returns the fiscal period covering the given date
// @Tags periods
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.PeriodResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No period covers the date"
// @Failure 500 {object} map[string]string "Failed to resolve period for date"
// @Security BearerAuth
// @Router /orgs/{org_id}/periods/by-date [get]
func (h *periodHandler) getPeriodForDate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	date, err := dto.ParseDate(c.Query("date"))
	if err != nil {
		respondBindError(c, logger, err, "query parameters")
		return
	}

	period, err := h.periodService.GetPeriodForDate(c.Request.Context(), orgID, date.Time)
	if err != nil {
		respondError(c, logger, err, "Failed to resolve period for date")
		return
	}
	if period == nil {
		respondError(c, logger, apperrors.ErrPeriodNotFound, "No period covers date")
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// getPeriod godoc
// @Summary Get a fiscal period
// @Description Retrieves a fiscal period by its ID
// @Tags periods
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   period_id path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 500 {object} map[string]string "Failed to get period"
// @Security BearerAuth
// @Router /orgs/{org_id}/periods/{period_id} [get]
func (h *periodHandler) getPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	period, err := h.periodService.GetPeriod(c.Request.Context(), orgID, c.Param("period_id"))
	if err != nil {
		respondError(c, logger, err, "Failed to get period")
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// listPeriodAudit godoc
// @Summary List period audit records
// @Description Returns the status transitions recorded for a fiscal period, oldest first
// @Tags periods
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   period_id path string true "Period ID"
// @Success 200 {array} dto.PeriodAuditResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 500 {object} map[string]string "Failed to list period audit"
// @Security BearerAuth
// @Router /orgs/{org_id}/periods/{period_id}/audit [get]
func (h *periodHandler) listPeriodAudit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	records, err := h.periodService.ListPeriodAudit(c.Request.Context(), orgID, c.Param("period_id"))
	if err != nil {
		respondError(c, logger, err, "Failed to list period audit")
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodAuditResponses(records))
}

// closePeriod godoc
// @Summary Close a fiscal period
// @Description Moves an OPEN period to CLOSED
// @Tags periods
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   period_id path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Invalid status transition"
// @Failure 500 {object} map[string]string "Failed to close period"
// @Security BearerAuth
// @Router /orgs/{org_id}/periods/{period_id}/close [post]
func (h *periodHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	period, err := h.periodService.ClosePeriod(c.Request.Context(), orgID, c.Param("period_id"), actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to close period")
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// lockPeriod godoc
// @Summary Lock a fiscal period
// @Description Moves an OPEN or CLOSED period to LOCKED
// @Tags periods
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   period_id path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Invalid status transition"
// @Failure 500 {object} map[string]string "Failed to lock period"
// @Security BearerAuth
// @Router /orgs/{org_id}/periods/{period_id}/lock [post]
func (h *periodHandler) lockPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	period, err := h.periodService.LockPeriod(c.Request.Context(), orgID, c.Param("period_id"), actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to lock period")
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// reopenPeriod returns a CLOSED or LOCKED period to OPEN with an audited reason.
// @Summary Reopen a fiscal period
// @Description Returns a CLOSED or LOCKED period to OPEN. Requires the ledger admin role and a reason
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   period_id path string true "Period ID"
// @Param   reopen body dto.ReopenPeriodRequest true "Reason for reopening"
// @Success 200 {object} dto.PeriodResponse
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Ledger admin role required"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Invalid status transition"
// @Failure 500 {object} map[string]string "Failed to reopen period"
// @Security BearerAuth
// @Router /orgs/{org_id}/periods/{period_id}/reopen [post]
func (h *periodHandler) reopenPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	periodID := c.Param("period_id")

	var req dto.ReopenPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "request format")
		return
	}

	logger.Info("Received request to reopen period",
		slog.String("org_id", orgID),
		slog.String("period_id", periodID),
		slog.String("actor_id", actorID))

	period, err := h.periodService.ReopenPeriod(c.Request.Context(), orgID, periodID, actorID, req.Reason)
	if err != nil {
		respondError(c, logger, err, "Failed to reopen period")
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}
