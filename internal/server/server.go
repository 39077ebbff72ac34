package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/ByLCY/justify/binding"
	"github.com/ByLCY/justify/internal/cache"
	"github.com/ByLCY/justify/internal/metrics"
	"github.com/ByLCY/justify/layout"
)

// Options configures the HTTP adapter. Zero values fall back to sensible
// defaults; Cache and Metrics may be nil.
type Options struct {
	Defaults layout.Options
	Cache    cache.Cache
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	MaxBody  int64
	RPS      float64 // 0 关闭限流
	Burst    int
}

// Server exposes layout.Build over HTTP.
type Server struct {
	defaults layout.Options
	cache    cache.Cache
	metrics  *metrics.Metrics
	logger   *slog.Logger
	maxBody  int64
	limiter  *rate.Limiter
}

const defaultMaxBody = 1 << 20

// New creates a server. It does not listen; see Handler and Serve.
func New(opts Options) *Server {
	s := &Server{
		defaults: opts.Defaults,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		maxBody:  opts.MaxBody,
	}
	if s.defaults.Width <= 0 {
		s.defaults = layout.DefaultOptions(40)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.maxBody <= 0 {
		s.maxBody = defaultMaxBody
	}
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(opts.RPS) + 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/v1/justify", s.justify)
	})
	return r
}

// Serve 在 ln 上提供服务，ctx 取消后优雅关闭，最多等待 10 秒。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("http server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭 HTTP 服务失败: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

type justifyRequest struct {
	Text      string         `json:"text"`
	Data      map[string]any `json:"data,omitempty"`
	Width     *int           `json:"width,omitempty"`
	Exponent  *int           `json:"exponent,omitempty"`
	Algorithm *string        `json:"algorithm,omitempty"`
	Hyphenate *bool          `json:"hyphenate,omitempty"`
	Penalty   *int64         `json:"penalty,omitempty"`
	Marker    *string        `json:"marker,omitempty"`
}

type justifyResponse struct {
	Lines        []string         `json:"lines"`
	Badness      layout.Cost      `json:"badness"`
	Algorithm    layout.Algorithm `json:"algorithm"`
	Width        int              `json:"width"`
	Hyphenations int              `json:"hyphenations"`
	Cached       bool             `json:"cached"`
}

type errorResponse struct {
	Error string `json:"error"`
	Token string `json:"token,omitempty"`
	Index *int   `json:"index,omitempty"`
}

func (s *Server) options(req justifyRequest) layout.Options {
	opts := s.defaults
	opts.Debug = layout.DebugOptions{}
	if req.Width != nil {
		opts.Width = *req.Width
	}
	if req.Exponent != nil {
		opts.Exponent = *req.Exponent
	}
	if req.Algorithm != nil {
		opts.Algorithm = layout.Algorithm(*req.Algorithm)
	}
	if req.Hyphenate != nil {
		opts.Hyphenate = *req.Hyphenate
	}
	if req.Penalty != nil {
		opts.HyphenPenalty = layout.Cost(*req.Penalty)
	}
	if req.Marker != nil {
		opts.Marker = *req.Marker
	}
	return opts
}

func (s *Server) justify(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With("request_id", RequestIDFrom(r.Context()))

	var req justifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "请求体过大"})
			return
		}
		logger.Warn("justify: invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("请求体无效: %v", err)})
		return
	}

	text := req.Text
	if req.Data != nil {
		text = binding.Interpolate(text, req.Data)
	}
	opts := s.options(req)
	if err := opts.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	opts.Algorithm, _ = layout.ParseAlgorithm(string(opts.Algorithm))

	key := cache.Key(text, opts)
	if s.cache != nil {
		res, ok, err := s.cache.Get(r.Context(), key)
		if err != nil {
			logger.Warn("justify: cache get failed", "error", err)
		}
		s.metrics.CacheLookup(ok)
		if ok {
			writeJSON(w, http.StatusOK, response(res, true))
			return
		}
	}

	start := time.Now()
	res, err := layout.Build(text, opts)
	s.metrics.ObserveBreak(opts.Algorithm, time.Since(start), res, err)
	if err != nil {
		var infeasible *layout.InfeasibleError
		switch {
		case errors.As(err, &infeasible):
			idx := infeasible.Index
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error: err.Error(),
				Token: string(infeasible.Token),
				Index: &idx,
			})
		case errors.Is(err, layout.ErrInfeasible):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return
	}
	logger.Debug("justify: built", "tokens", res.Tokens, "lines", len(res.Lines), "badness", res.Badness.String(), "elapsed", time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(r.Context(), key, res); err != nil {
			logger.Warn("justify: cache set failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, response(res, false))
}

func response(res *layout.Result, cached bool) justifyResponse {
	lines := res.Rendered
	if lines == nil {
		lines = []string{}
	}
	return justifyResponse{
		Lines:        lines,
		Badness:      res.Badness,
		Algorithm:    res.Algorithm,
		Width:        res.Width,
		Hyphenations: res.Hyphenations,
		Cached:       cached,
	}
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if g, ok := s.cache.(interface{ State() string }); ok {
		body["cache"] = g.State()
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
