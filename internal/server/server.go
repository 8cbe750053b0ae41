// Package server is the HTTP face of textjson: it turns requests from the
// page into converter calls and converter results into render-ready JSON.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mcncl/textjson/internal/config"
	"github.com/mcncl/textjson/internal/converter"
	"github.com/mcncl/textjson/internal/errors"
	"github.com/mcncl/textjson/internal/formatter"
	"github.com/mcncl/textjson/internal/metrics"
	"github.com/mcncl/textjson/internal/models"
	"github.com/mcncl/textjson/internal/notify"
	"github.com/mcncl/textjson/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ConvertRequest is the body of POST /api/convert. Omitted switches fall
// back to the configured defaults.
type ConvertRequest struct {
	Text          string `json:"text"`
	PrettyPrint   *bool  `json:"pretty_print"`
	CombineArrays *bool  `json:"combine_arrays"`
	Repair        *bool  `json:"repair"`
}

// ConvertResponse carries everything the page needs to render a result
type ConvertResponse struct {
	JSON         string              `json:"json"`
	Highlighted  string              `json:"highlighted"`
	Count        int                 `json:"count"`
	Size         int                 `json:"size"`
	SizeLabel    string              `json:"size_label"`
	Summary      string              `json:"summary"`
	SkippedLines int                 `json:"skipped_lines"`
	Repaired     bool                `json:"repaired"`
	Notification notify.Notification `json:"notification"`
}

// ErrorResponse is returned for rejected conversions
type ErrorResponse struct {
	Error        string               `json:"error"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// PreviewRequest is the body of POST /api/preview
type PreviewRequest struct {
	Text string `json:"text"`
}

// PreviewResponse is the live feedback while typing
type PreviewResponse struct {
	OK         bool   `json:"ok"`
	Waiting    bool   `json:"waiting"`
	Preview    string `json:"preview"`
	Characters string `json:"characters"`
}

// Server wires the converter to HTTP
type Server struct {
	cfg       *config.Config
	converter *converter.Converter
	formatter *formatter.Formatter
	notifier  *notify.Notifier
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	log       *zap.Logger
}

// New creates a Server from configuration
func New(cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	conv := converter.NewConverter(log)
	conv.PreviewLength = cfg.PreviewLength

	notifier := notify.NewNotifier()
	notifier.Timeout = cfg.Notifications.Timeout
	notifier.ErrorTimeout = cfg.Notifications.ErrorTimeout

	registry := prometheus.NewRegistry()

	return &Server{
		cfg:       cfg,
		converter: conv,
		formatter: formatter.NewFormatter(),
		notifier:  notifier,
		metrics:   metrics.New(registry),
		registry:  registry,
		log:       log,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	if !s.cfg.Dev.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.POST("/convert", s.handleConvert)
	api.POST("/preview", s.handlePreview)
	api.GET("/notifications", s.handleListNotifications)
	api.DELETE("/notifications/:id", s.handleDismissNotification)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting server", zap.String("addr", s.cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.NewServerError("failed to run server", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	defer s.notifier.Close()

	s.log.Info("Shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.NewServerError("failed to shut down server", err)
	}
	return nil
}

func (s *Server) options(req ConvertRequest) models.Options {
	opts := models.Options{
		PrettyPrint:   s.cfg.PrettyPrint,
		CombineArrays: s.cfg.CombineArrays,
		Repair:        s.cfg.Repair,
	}
	if req.PrettyPrint != nil {
		opts.PrettyPrint = *req.PrettyPrint
	}
	if req.CombineArrays != nil {
		opts.CombineArrays = *req.CombineArrays
	}
	if req.Repair != nil {
		opts.Repair = *req.Repair
	}
	return opts
}

func (s *Server) handleConvert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.converter.ConvertAfter(c.Request.Context(), s.cfg.Server.Delay, req.Text, s.options(req))
	if err != nil {
		s.respondConvertError(c, err)
		return
	}

	size := stats.ByteSize(result.Serialized)
	s.metrics.ObserveSuccess(result.ElementCount, size, len(result.SkippedLines))
	note := s.notifier.Success(stats.ConvertedMessage(result.ElementCount))

	c.JSON(http.StatusOK, ConvertResponse{
		JSON:         result.Serialized,
		Highlighted:  s.formatter.HTML(result.Serialized),
		Count:        result.ElementCount,
		Size:         size,
		SizeLabel:    stats.FormatKB(size),
		Summary:      stats.ProcessedSummary(result.ElementCount),
		SkippedLines: len(result.SkippedLines),
		Repaired:     result.Repaired,
		Notification: note,
	})
}

func (s *Server) respondConvertError(c *gin.Context, err error) {
	message := errors.UserFriendlyError(err)

	switch {
	case errors.IsEmptyInput(err):
		s.metrics.ObserveFailure(metrics.OutcomeEmptyInput)
		note := s.notifier.Warning(message)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Notification: &note})
	case errors.IsParseError(err):
		s.metrics.ObserveFailure(metrics.OutcomeParseError)
		s.log.Error("Conversion error", zap.Error(err))
		note := s.notifier.Error(message)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Notification: &note})
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		s.log.Debug("Conversion abandoned by client", zap.Error(err))
		c.Status(http.StatusRequestTimeout)
	default:
		s.metrics.ObserveFailure(metrics.OutcomeError)
		s.log.Error("Conversion error", zap.Error(err))
		note := s.notifier.Error(message)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message, Notification: &note})
	}
}

func (s *Server) handlePreview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	p := s.converter.Preview(req.Text)
	c.JSON(http.StatusOK, PreviewResponse{
		OK:         p.OK,
		Waiting:    p.Waiting,
		Preview:    p.Text,
		Characters: stats.CharactersLabel(req.Text),
	})
}

func (s *Server) handleListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, s.notifier.Active())
}

func (s *Server) handleDismissNotification(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification id"})
		return
	}
	if !s.notifier.Dismiss(id) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
