package api

import (
	"time"

	models "MarketMind/internal/domain/models"
	domsvc "MarketMind/internal/domain/service"
	"MarketMind/internal/usecase"
	xhttp "MarketMind/pkg/http"
	xlogger "MarketMind/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IntelligenceEchoHandler exposes the assessment engine over HTTP.
type IntelligenceEchoHandler struct {
	logger    *xlogger.Logger
	engine    *usecase.IntelligenceEngine
	sched     *usecase.Scheduler
	evaluator domsvc.SessionEvaluator
}

func NewIntelligenceEchoHandler(logger *xlogger.Logger, engine *usecase.IntelligenceEngine, sched *usecase.Scheduler, evaluator domsvc.SessionEvaluator) *IntelligenceEchoHandler {
	return &IntelligenceEchoHandler{logger: logger, engine: engine, sched: sched, evaluator: evaluator}
}

func (h *IntelligenceEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/intelligence", h.Intelligence)
	g.GET("/intelligence/events", h.Events)
	g.GET("/intelligence/session", h.Session)
	g.GET("/history/similar", h.SimilarDays)
	g.GET("/history/momentum", h.Momentum)
	g.POST("/history/outcome", h.Outcome)
	g.GET("/scheduler/status", h.SchedulerStatus)
	g.POST("/scheduler/positions", h.Positions)
	e.GET("/healthz", h.Health)
}

func (h *IntelligenceEchoHandler) Health(c echo.Context) error {
	st := h.evaluator.SessionState(time.Now())
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":      "ok",
		"market_open": st.Open,
		"scheduler":   h.sched.Status(),
	})
}

// Intelligence returns the current assessment, cached within the TTL unless
// refresh=true forces a fresh cycle.
func (h *IntelligenceEchoHandler) Intelligence(c echo.Context) error {
	req := &models.IntelligenceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.engine.Analyze(c.Request().Context(), req.Refresh)
	if err != nil {
		h.logger.Error("intelligence usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *IntelligenceEchoHandler) Events(c echo.Context) error {
	events := h.evaluator.DetectEvents(time.Now())
	return xhttp.SuccessResponse(c, events)
}

func (h *IntelligenceEchoHandler) Session(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.evaluator.SessionState(time.Now()))
}

// SimilarDays ranks historical days resembling the latest conditions.
func (h *IntelligenceEchoHandler) SimilarDays(c echo.Context) error {
	req := &models.SimilarDaysRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	latest := h.engine.Latest()
	if latest == nil || latest.Conditions == nil {
		return xhttp.NotFoundResponse(c, "no assessment yet")
	}
	days := h.engine.History().FindSimilar(latest.Conditions, req.Lookback)
	return xhttp.SuccessResponse(c, days)
}

func (h *IntelligenceEchoHandler) Momentum(c echo.Context) error {
	req := &models.MomentumRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	summary := h.engine.History().MomentumSummary(req.Lookback)
	if summary == nil {
		return xhttp.NotFoundResponse(c, "not enough history")
	}
	return xhttp.SuccessResponse(c, summary)
}

// Outcome records a realized P&L against a past day's snapshot.
func (h *IntelligenceEchoHandler) Outcome(c echo.Context) error {
	req := &models.OutcomeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		// fall back to RFC3339 or unix seconds
		t, ok := xhttp.ParseTime(req.Date)
		if !ok {
			return xhttp.BadRequestResponse(c, "date must be YYYY-MM-DD, RFC3339 or unix seconds")
		}
		date = t
	}
	h.engine.History().RecordOutcome(c.Request().Context(), date, req.PnL)
	return xhttp.NoContentResponse(c)
}

func (h *IntelligenceEchoHandler) SchedulerStatus(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.sched.Status())
}

// Positions updates the open-position count feeding the interval rules.
func (h *IntelligenceEchoHandler) Positions(c echo.Context) error {
	req := &models.PositionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	h.sched.SetActivePositions(req.Count)
	return xhttp.SuccessResponse(c, h.sched.Status())
}
