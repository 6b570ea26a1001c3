// Package server exposes the polyroot tool interface over HTTP.
//
// Routes:
//
//	POST /tool    execute a tool call (polyroot.ToolRequest)
//	POST /roots   typed root finding request
//	GET  /schema  tool schema for agent registration
//	GET  /health  liveness check
//	GET  /metrics Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"reflect"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/njchilds90/polyroot"
	"github.com/njchilds90/polyroot/internal/config"
)

const (
	// RequestIDHeader carries the request id in both directions. An incoming
	// value is kept when it is a valid UUID.
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
)

// RootsRequest is the body of POST /roots.
type RootsRequest struct {
	Coefficients []float64 `json:"coefficients" validate:"required,min=2"`
	Epsilon      *float64  `json:"epsilon,omitempty" validate:"omitempty,gt=0"`
}

// RootsResponse reports the roots and their residuals |P(r)| against the
// submitted polynomial.
type RootsResponse struct {
	RequestID  string    `json:"request_id"`
	Polynomial string    `json:"polynomial"`
	Degree     int       `json:"degree"`
	Roots      []float64 `json:"roots"`
	Residuals  []float64 `json:"residuals"`
}

type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	opts     []polyroot.Option
	validate *validator.Validate
	tracer   trace.Tracer
	engine   *gin.Engine
}

// New wires the routes. Solver options come from cfg.Solver and apply to
// every request.
func New(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		opts:     append(cfg.Solver.Options(), polyroot.WithLogger(logger)),
		validate: newValidator(),
		tracer:   otel.Tracer("github.com/njchilds90/polyroot/internal/server"),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), s.accessLog(), s.recoverer(), otelgin.Middleware(s.cfg.Tracing.ServiceName))

	r.POST("/tool", s.handleTool)
	r.POST("/roots", s.handleRoots)
	r.GET("/schema", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(polyroot.MCPToolSpec()))
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	sc := s.cfg.Server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", sc.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: sc.ReadHeaderTimeout,
		ReadTimeout:       sc.ReadTimeout,
		WriteTimeout:      sc.WriteTimeout,
		IdleTimeout:       sc.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("polyroot tool server listening", "addr", srv.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down", "timeout", sc.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleTool(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxBodyBytes)

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	var req polyroot.ToolRequest
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if dec.More() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: trailing data"})
		return
	}

	_, span := s.tracer.Start(c.Request.Context(), "polyroot.tool_call",
		trace.WithAttributes(attribute.String("polyroot.tool", req.Tool)))
	resp := polyroot.HandleToolCall(req, s.opts...)
	if resp.Error != "" {
		span.SetStatus(codes.Error, resp.Error)
	}
	span.End()

	RecordToolCall(req.Tool, resp.Error != "")
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRoots(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxBodyBytes)

	var req RootsRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	opts := s.opts
	eps := s.cfg.Solver.Epsilon
	if req.Epsilon != nil {
		eps = *req.Epsilon
		opts = append(append([]polyroot.Option(nil), s.opts...), polyroot.WithEpsilon(eps))
	}

	_, span := s.tracer.Start(c.Request.Context(), "polyroot.find_all_roots",
		trace.WithAttributes(
			attribute.Int("polyroot.degree", len(req.Coefficients)-1),
			attribute.Float64("polyroot.epsilon", eps)))
	defer span.End()

	start := time.Now()
	roots, err := polyroot.FindAllRoots(req.Coefficients, opts...)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		RecordSolve("invalid", elapsed, 0, 0)
		code := http.StatusInternalServerError
		if errors.Is(err, polyroot.ErrInvalidArgument) {
			code = http.StatusBadRequest
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	degree := len(req.Coefficients) - 1
	for _, r := range roots {
		if math.IsInf(r, 0) || math.IsNaN(r) {
			span.SetStatus(codes.Error, "non-finite root")
			RecordSolve("non_finite", elapsed, 0, 0)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "polynomial has a root outside the float64 range"})
			return
		}
	}
	span.SetAttributes(attribute.Int("polyroot.roots", len(roots)))
	RecordSolve("ok", elapsed, degree, len(roots))

	residuals := make([]float64, len(roots))
	for i, r := range roots {
		v := math.Abs(polyroot.Eval(req.Coefficients, r))
		// json has no inf
		if math.IsInf(v, 0) || math.IsNaN(v) {
			v = math.MaxFloat64
		}
		residuals[i] = v
	}
	c.JSON(http.StatusOK, RootsResponse{
		RequestID:  c.GetString(requestIDKey),
		Polynomial: polyroot.MustPoly(req.Coefficients...).String(),
		Degree:     degree,
		Roots:      roots,
		Residuals:  residuals,
	})
}

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
}

// =============================================================================
// Middleware
// =============================================================================

func (s *Server) recoverer() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler", "path", c.Request.URL.Path, "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		RecordRequest(route, status)
		s.logger.Info("request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", float64(time.Since(start).Microseconds())/1000,
			"request_id", c.GetString(requestIDKey))
	}
}
