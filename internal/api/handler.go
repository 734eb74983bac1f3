package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"QuantAI/internal/model"
	"QuantAI/internal/pipeline"
	"QuantAI/internal/recorder"
)

const defaultHistoryLimit = 20

// Service is the analysis surface exposed over HTTP. Satisfied by *pipeline.Service.
type Service interface {
	Analyze(ctx context.Context, ticker string, holdingCost *float64) (*model.Report, error)
	History(ctx context.Context, ticker string, limit int) ([]model.Report, error)
}

// Options configures the router.
type Options struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	Gatherer        prometheus.Gatherer // nil disables /metrics
	Logger          zerolog.Logger
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	StockCode   string   `json:"stock_code"`
	HoldingCost *float64 `json:"holding_cost"`
}

type handler struct {
	svc    Service
	logger zerolog.Logger
}

// NewRouter builds the gin engine serving the analysis API.
func NewRouter(svc Service, opts Options) *gin.Engine {
	logger := opts.Logger.With().Str("component", "api").Logger()
	h := &handler{svc: svc, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), RequestLogger(logger))

	r.GET("/health", h.health)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	v1.Use(RateLimitMiddleware(opts.RateLimitPerSec, opts.RateLimitBurst, logger))
	v1.POST("/analyze", h.analyze)
	v1.GET("/history/:ticker", h.history)
	return r
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	rep, err := h.svc.Analyze(c.Request.Context(), req.StockCode, req.HoldingCost)
	if err != nil {
		h.fail(c, statusFor(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *handler) history(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > recorder.MaxHistory {
			h.fail(c, http.StatusBadRequest, "limit must be an integer between 1 and "+strconv.Itoa(recorder.MaxHistory))
			return
		}
		limit = n
	}
	reports, err := h.svc.History(c.Request.Context(), c.Param("ticker"), limit)
	if err != nil {
		h.fail(c, statusFor(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": c.Param("ticker"), "reports": reports})
}

func (h *handler) fail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail, "request_id": c.GetString(requestIDKey)})
}

// statusFor maps an analysis error onto an HTTP status.
func statusFor(err error) int {
	switch pipeline.ErrorKind(err) {
	case pipeline.KindValidation:
		return http.StatusBadRequest
	case pipeline.KindNoData:
		return http.StatusNotFound
	case pipeline.KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
