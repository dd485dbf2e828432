package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// entryHandler handles HTTP requests for journal entries and their lifecycle.
type entryHandler struct {
	journalService portssvc.JournalSvcFacade
	postingService portssvc.PostingSvc
}

func newEntryHandler(js portssvc.JournalSvcFacade, ps portssvc.PostingSvc) *entryHandler {
	return &entryHandler{
		journalService: js,
		postingService: ps,
	}
}

// RegisterEntryRoutes registers journal entry routes under an org group.
func RegisterEntryRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade, postingService portssvc.PostingSvc) {
	h := newEntryHandler(journalService, postingService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createDraft)
		entries.GET("", h.listEntries)
		entries.GET("/:entry_id", h.getEntry)
		entries.PUT("/:entry_id", h.updateDraft)
		entries.DELETE("/:entry_id", h.deleteDraft)
		entries.POST("/:entry_id/post", h.postEntry)
		entries.POST("/:entry_id/reverse", h.reverseEntry)
	}
}

// createDraft godoc
// @Summary Create a draft entry
// @Description Creates a DRAFT journal entry; posting happens separately
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   entry body dto.CreateEntryRequest true "Entry details"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input, unbalanced lines or unknown account"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create draft entry"
// @Security BearerAuth
// @Router /orgs/{org_id}/entries [post]
func (h *entryHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "request format")
		return
	}

	logger = logger.With(slog.String("org_id", orgID))
	logger.Info("Received request to create draft entry",
		slog.String("source", string(req.Source)),
		slog.Int("line_count", len(req.Lines)))

	entry, err := h.journalService.CreateDraftEntry(c.Request.Context(), orgID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to create draft entry")
		return
	}

	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// parseEntryFilter turns already validated query params into a filter.
func parseEntryFilter(params dto.ListEntriesParams) (domain.EntryFilter, error) {
	filter := domain.EntryFilter{
		Status:    domain.EntryStatus(params.Status),
		Source:    domain.EntrySource(params.Source),
		SourceID:  params.SourceID,
		AccountID: params.AccountID,
	}
	if params.FromDate != "" {
		from, err := dto.ParseDate(params.FromDate)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &from.Time
	}
	if params.ToDate != "" {
		to, err := dto.ParseDate(params.ToDate)
		if err != nil {
			return filter, err
		}
		filter.ToDate = &to.Time
	}
	return filter, nil
}

// listEntries returns one page of entries in (date, creation) order.
// @Summary List entries
// @Description Returns one page of journal entries ordered by entry date then creation time
// @Tags entries
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   status query string false "DRAFT, POSTED or REVERSED"
// @Param   source query string false "Entry source"
// @Param   sourceId query string false "Source reference"
// @Param   accountId query string false "Only entries with a line on this account"
// @Param   fromDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param   toDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Param   limit query int false "Page size (1-500)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Security BearerAuth
// @Router /orgs/{org_id}/entries [get]
func (h *entryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err, "query parameters")
		return
	}
	filter, err := parseEntryFilter(params)
	if err != nil {
		respondBindError(c, logger, err, "query parameters")
		return
	}

	entries, next, err := h.journalService.ListEntries(c.Request.Context(), orgID, filter, params.Limit, params.NextToken)
	if err != nil {
		respondError(c, logger, err, "Failed to list entries")
		return
	}

	c.JSON(http.StatusOK, dto.ToListEntriesResponse(entries, next))
}

// getEntry godoc
// @Summary Get an entry
// @Description Retrieves a journal entry with its lines
// @Tags entries
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to get entry"
// @Security BearerAuth
// @Router /orgs/{org_id}/entries/{entry_id} [get]
func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.GetEntry(c.Request.Context(), orgID, c.Param("entry_id"))
	if err != nil {
		respondError(c, logger, err, "Failed to get entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// updateDraft replaces the full line set of a draft.
// @Summary Update a draft entry
// @Description Replaces the header fields and the full line set of a DRAFT entry
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   entry_id path string true "Entry ID"
// @Param   entry body dto.UpdateEntryRequest true "Updated entry"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input or unbalanced lines"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 500 {object} map[string]string "Failed to update draft entry"
// @Security BearerAuth
// @Router /orgs/{org_id}/entries/{entry_id} [put]
func (h *entryHandler) updateDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "request format")
		return
	}

	entry, err := h.journalService.UpdateDraftEntry(c.Request.Context(), orgID, c.Param("entry_id"), req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to update draft entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// deleteDraft godoc
// @Summary Delete a draft entry
// @Description Deletes a DRAFT entry; posted entries can only be reversed
// @Tags entries
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   entry_id path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 500 {object} map[string]string "Failed to delete draft entry"
// @Security BearerAuth
// @Router /orgs/{org_id}/entries/{entry_id} [delete]
func (h *entryHandler) deleteDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	if err := h.journalService.DeleteDraftEntry(c.Request.Context(), orgID, c.Param("entry_id"), actorID); err != nil {
		respondError(c, logger, err, "Failed to delete draft entry")
		return
	}

	c.Status(http.StatusNoContent)
}

// postEntry moves a draft to POSTED.
// @Summary Post an entry
// @Description Moves a DRAFT entry to POSTED so it counts in reports
// @Tags entries
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Inactive or unknown account"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 422 {object} map[string]string "Entry date falls in a closed or locked period"
// @Failure 500 {object} map[string]string "Failed to post entry"
// @Security BearerAuth
// @Router /orgs/{org_id}/entries/{entry_id}/post [post]
func (h *entryHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	entryID := c.Param("entry_id")

	logger.Info("Received request to post entry", slog.String("org_id", orgID), slog.String("entry_id", entryID))

	entry, err := h.postingService.Post(c.Request.Context(), orgID, entryID, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to post entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseEntry posts the offsetting entry and returns it. Without a body the
// reversal is dated today (UTC).
// @Summary Reverse an entry
// @Description Posts an offsetting entry for a POSTED entry. Without a body the reversal is dated today (UTC)
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   entry_id path string true "Entry ID"
// @Param   reversal body dto.ReverseEntryRequest false "Reversal date"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not posted, already reversed or is itself a reversal"
// @Failure 422 {object} map[string]string "Reversal date falls in a closed or locked period"
// @Failure 500 {object} map[string]string "Failed to reverse entry"
// @Security BearerAuth
// @Router /orgs/{org_id}/entries/{entry_id}/reverse [post]
func (h *entryHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	entryID := c.Param("entry_id")

	// The body is optional; an empty one, chunked or not, means "reverse today".
	var req dto.ReverseEntryRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondBindError(c, logger, err, "request format")
			return
		}
	}
	reversalDate := req.ReversalDate.Time
	if reversalDate.IsZero() {
		reversalDate = time.Now().UTC()
	}

	logger.Info("Received request to reverse entry",
		slog.String("org_id", orgID),
		slog.String("entry_id", entryID),
		slog.String("reversal_date", reversalDate.Format(dto.DateLayout)))

	reversal, err := h.postingService.Reverse(c.Request.Context(), orgID, entryID, actorID, reversalDate)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse entry")
		return
	}

	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}
