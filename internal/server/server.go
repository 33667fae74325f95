// Package server is the inbound webhook listener. One POST endpoint, always
// answered 200 with an empty body: the monitoring platform fires and
// forgets, so availability always wins over delivery reporting.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/alertbridge/alertbridge/internal/alert"
	"github.com/alertbridge/alertbridge/internal/alerter"
	"github.com/alertbridge/alertbridge/internal/metrics"
	"github.com/alertbridge/alertbridge/internal/notifier"
	"github.com/alertbridge/alertbridge/internal/parser"
	"github.com/alertbridge/alertbridge/internal/version"
)

// Server wires the webhook route to the parse/filter/debounce pipeline and a
// concrete backend.
type Server struct {
	log       zerolog.Logger
	engine    *gin.Engine
	pipeline  *alerter.Pipeline
	notifier  notifier.Notifier
	parseOpts parser.Options
	port      int
	srv       *http.Server
}

// New builds the listener. parseOpts is the process-lifetime rendering
// configuration resolved at startup.
func New(n notifier.Notifier, pipe *alerter.Pipeline, parseOpts parser.Options, port int, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		log:       log.With().Str("component", "server").Logger(),
		pipeline:  pipe,
		notifier:  n,
		parseOpts: parseOpts,
		port:      port,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.POST("/", s.handleAlert)
	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine = engine
	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start blocks serving the webhook listener.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.engine,
	}
	s.log.Info().Int("port", s.port).Str("backend", s.notifier.Name()).Msg("listening for alerts")
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting requests and cancels pending debounce timers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.pipeline.Stop()
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleAlert(c *gin.Context) {
	reqID := c.GetHeader("X-Request-Id")
	if reqID == "" {
		reqID = uuid.NewString()
	}
	log := s.log.With().Str("request_id", reqID).Logger()

	metrics.AlertsReceived.Inc()
	log.Info().Msgf("received data from %s...", c.Request.Host)

	// The platform treats this webhook as at-most-once fire-and-forget and
	// does not interpret the response, so every path below answers 200.
	defer c.Status(http.StatusOK)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Error().Err(err).Msg("failed to read request body")
		return
	}

	var a alert.Alert
	if err := json.Unmarshal(body, &a); err != nil {
		log.Error().Err(err).Msg("failed to decode alert")
		log.Debug().RawJSON("payload", sanitizeRaw(body)).Msg("alert payload")
		metrics.AlertsSuppressed.WithLabelValues(metrics.ReasonParse).Inc()
		return
	}

	data, err := parser.Parse(&a, s.parseOpts, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse alert")
		log.Debug().RawJSON("payload", sanitizeRaw(body)).Msg("alert payload")
		metrics.AlertsSuppressed.WithLabelValues(metrics.ReasonParse).Inc()
		return
	}

	// Detached on purpose: the decision and any resulting backend push run
	// off the request path. Failures are logged, never joined or surfaced.
	go s.pipeline.Dispatch(&a, func(al *alert.Alert) {
		s.push(al, data, log)
	})
}

func (s *Server) push(a *alert.Alert, data parser.CommonAlert, log zerolog.Logger) {
	if err := s.notifier.Push(context.Background(), a, data); err != nil {
		log.Error().Err(err).Str("alert", a.Identity()).
			Msgf("failed to push alert to %s", s.notifier.Name())
		metrics.PushFailures.WithLabelValues(s.notifier.Name()).Inc()
		return
	}
	log.Info().Str("alert", a.Identity()).Msgf("pushed alert to %s", s.notifier.Name())
	metrics.AlertsForwarded.WithLabelValues(s.notifier.Name()).Inc()
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"backend":        s.notifier.Name(),
		"version":        version.Version,
		"pending_timers": s.pipeline.PendingCount(),
	})
}

// sanitizeRaw guards RawJSON against bodies that were not valid JSON.
func sanitizeRaw(body []byte) []byte {
	if json.Valid(body) {
		return body
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
