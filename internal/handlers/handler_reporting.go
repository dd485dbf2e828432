package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// RegisterReportingRoutes registers routes related to financial reports
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/profit-and-loss", h.getProfitAndLoss)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
	}
}

// asOfFromQuery reads the asOf query param, defaulting to today (UTC).
func asOfFromQuery(c *gin.Context) (time.Time, error) {
	asOfStr := c.DefaultQuery("asOf", time.Now().UTC().Format(dto.DateLayout))
	asOf, err := dto.ParseDate(asOfStr)
	if err != nil {
		return time.Time{}, err
	}
	return asOf.Time, nil
}

// getTrialBalance godoc
// @Summary Get trial balance
// @Description Lists every account with its committed debit and credit totals up to a date
// @Tags reports
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   asOf query string false "As-of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate trial balance report"
// @Security BearerAuth
// @Router /orgs/{org_id}/reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	asOf, err := asOfFromQuery(c)
	if err != nil {
		respondBindError(c, logger, err, "asOf date")
		return
	}

	logger = logger.With(
		slog.String("org_id", orgID),
		slog.String("asOf", asOf.Format(dto.DateLayout)),
	)
	logger.Info("Received request to generate trial balance report")

	report, err := h.reportingService.TrialBalance(c.Request.Context(), orgID, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance report")
		return
	}

	logger.Info("Trial balance report generated successfully", slog.Int("row_count", len(report.Rows)))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(report))
}

// getProfitAndLoss requires both fromDate and toDate.
// @Summary Get profit and loss
// @Description Summarizes revenue, COGS and expenses over an inclusive date range
// @Tags reports
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   fromDate query string true "Start date (YYYY-MM-DD)"
// @Param   toDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.ProfitAndLossResponse
// @Failure 400 {object} map[string]string "Missing or invalid date range"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate profit and loss report"
// @Security BearerAuth
// @Router /orgs/{org_id}/reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	from, err := dto.ParseDate(c.Query("fromDate"))
	if err != nil {
		respondBindError(c, logger, err, "fromDate")
		return
	}
	to, err := dto.ParseDate(c.Query("toDate"))
	if err != nil {
		respondBindError(c, logger, err, "toDate")
		return
	}

	logger = logger.With(
		slog.String("org_id", orgID),
		slog.String("fromDate", from.Format(dto.DateLayout)),
		slog.String("toDate", to.Format(dto.DateLayout)),
	)
	logger.Info("Received request to generate profit and loss report")

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), orgID, from.Time, to.Time)
	if err != nil {
		respondError(c, logger, err, "Failed to generate profit and loss report")
		return
	}

	logger.Info("Profit and loss report generated successfully",
		slog.Int("revenue_accounts", len(report.Revenue.Accounts)),
		slog.Int("expense_accounts", len(report.Expenses.Accounts)))
	c.JSON(http.StatusOK, dto.ToProfitAndLossResponse(report))
}

// getBalanceSheet godoc
// @Summary Get balance sheet
// @Description Reports assets, liabilities and equity as of a date, including current earnings
// @Tags reports
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   asOf query string false "As-of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate balance sheet report"
// @Security BearerAuth
// @Router /orgs/{org_id}/reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	asOf, err := asOfFromQuery(c)
	if err != nil {
		respondBindError(c, logger, err, "asOf date")
		return
	}

	logger = logger.With(
		slog.String("org_id", orgID),
		slog.String("asOf", asOf.Format(dto.DateLayout)),
	)
	logger.Info("Received request to generate balance sheet report")

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), orgID, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet report")
		return
	}

	logger.Info("Balance sheet report generated successfully",
		slog.Int("asset_accounts", len(report.Assets.Accounts)),
		slog.Int("liability_accounts", len(report.Liabilities.Accounts)),
		slog.Int("equity_accounts", len(report.Equity.Accounts)))
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(report))
}
