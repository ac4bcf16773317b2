package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vndesk/helpdesk/internal/core/domain"
	redisclient "github.com/vndesk/helpdesk/internal/infra/redis"
	"github.com/vndesk/helpdesk/internal/metrics"
	"github.com/vndesk/helpdesk/internal/report"
)

const dateFormat = "2006-01-02"

// createTicketRequest mirrors the input form. Timestamps arrive as RFC 3339;
// the date/time split lives in the frontend, the API takes the combined
// instant.
type createTicketRequest struct {
	Company     string     `json:"company"`
	ContractNo  string     `json:"contract_no"`
	RootCause   string     `json:"root_cause"`
	Status      string     `json:"status"`
	Resolution  string     `json:"resolution"`
	OccurredAt  time.Time  `json:"occurred_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Technician  string     `json:"technician"`
}

func (s *Server) handleCreateTicket(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Company:     req.Company,
		ContractNo:  req.ContractNo,
		RootCause:   req.RootCause,
		Status:      domain.Status(req.Status),
		Resolution:  req.Resolution,
		OccurredAt:  req.OccurredAt,
		CompletedAt: req.CompletedAt,
		Technician:  req.Technician,
		CreatedAt:   time.Now().UTC(),
	}
	ticket.Normalize()

	if err := ticket.Validate(); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "missing": verr.Fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Tickets().Append(c.Request.Context(), ticket); err != nil {
		s.logStoreError(c, "append_ticket", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to save ticket: " + err.Error()})
		return
	}

	metrics.TicketsCreated.Inc()
	c.JSON(http.StatusCreated, ticket)
}

// reportFilter resolves the report query params. Dates are local calendar
// days; the default window is the last 7 days through tomorrow, same as the
// report screen always defaulted to.
func (s *Server) reportFilter(c *gin.Context) (report.Filter, error) {
	now := time.Now().In(s.cfg.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)

	from := today.AddDate(0, 0, -7)
	to := today.AddDate(0, 0, 1)

	if v := c.Query("from"); v != "" {
		d, err := time.ParseInLocation(dateFormat, v, s.cfg.Location)
		if err != nil {
			return report.Filter{}, err
		}
		from = d
	}
	if v := c.Query("to"); v != "" {
		d, err := time.ParseInLocation(dateFormat, v, s.cfg.Location)
		if err != nil {
			return report.Filter{}, err
		}
		to = d
	}

	return report.Filter{
		From:       from.UTC(),
		To:         to.UTC(),
		Company:    c.Query("company"),
		Technician: c.Query("technician"),
	}, nil
}

func (s *Server) buildReport(c *gin.Context) (*report.Report, bool) {
	filter, err := s.reportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad date filter: " + err.Error()})
		return nil, false
	}

	tickets, err := s.store.Tickets().List(c.Request.Context())
	if err != nil {
		s.logStoreError(c, "read_tickets", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read tickets: " + err.Error()})
		return nil, false
	}

	return report.Build(tickets, filter), true
}

func (s *Server) handleListTickets(c *gin.Context) {
	rep, ok := s.buildReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) handleExport(c *gin.Context) {
	rep, ok := s.buildReport(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		if err := report.WriteCSV(&buf, rep, s.cfg.Location); err != nil {
			s.logStoreError(c, "export", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="helpdesk_report.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	case "xlsx":
		if err := report.WriteExcel(&buf, rep, s.cfg.Location); err != nil {
			s.logStoreError(c, "export", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="helpdesk_report.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format: " + format})
	}
}

func (s *Server) handleErrorLog(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad limit"})
			return
		}
		limit = n
	}

	entries, err := s.store.ErrorLog().Tail(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []*domain.ErrorEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// -----------------------------------------------------------------------------
// Drafts
// -----------------------------------------------------------------------------

func (s *Server) handleLoadDraft(c *gin.Context) {
	draft, err := s.drafts.Load(c.Request.Context(), c.Param("session"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if draft == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no draft"})
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (s *Server) handleSaveDraft(c *gin.Context) {
	var draft redisclient.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.drafts.Save(c.Request.Context(), c.Param("session"), &draft); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (s *Server) handleResetDraft(c *gin.Context) {
	if err := s.drafts.Reset(c.Request.Context(), c.Param("session")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// logStoreError appends to the operational error log. Best effort: a broken
// error log must never mask the original failure.
func (s *Server) logStoreError(c *gin.Context, operation string, err error) {
	s.log.Error("remote store operation failed", "operation", operation, "error", err)
	entry := &domain.ErrorEntry{
		Time:      time.Now().UTC(),
		Operation: operation,
		Message:   err.Error(),
	}
	if logErr := s.store.ErrorLog().Append(c.Request.Context(), entry); logErr != nil {
		s.log.Warn("failed to append error log entry", "error", logErr)
	}
}
