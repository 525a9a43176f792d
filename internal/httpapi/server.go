// Package httpapi serves the dashboard payload over HTTP: file upload, demo
// series, the sample file, health and Prometheus metrics.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/KaramelBytes/tickerloom-cli/internal/dashboard"
	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
	"github.com/KaramelBytes/tickerloom-cli/internal/recorder"
	"github.com/KaramelBytes/tickerloom-cli/internal/source"
	"github.com/KaramelBytes/tickerloom-cli/internal/synth"
)

// Config tunes request handling.
type Config struct {
	MaxBytes   int64
	SampleRows int
	// Seed for overlays when the request carries none; 0 uses the clock.
	Seed uint64
	// DemoDays is the default length of demo series.
	DemoDays int
}

// Server holds handler dependencies.
type Server struct {
	cfg     Config
	rec     recorder.Recorder
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
	router  chi.Router
}

// New builds a Server. A nil rec disables history.
func New(cfg Config, rec recorder.Recorder, logger *slog.Logger) *Server {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = source.DefaultMaxBytes
	}
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = ingest.DefaultSampleRows
	}
	if cfg.DemoDays <= 0 {
		cfg.DemoDays = 30
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Server{
		cfg:     cfg,
		rec:     rec,
		logger:  logger.With(slog.String("component", "httpapi")),
		metrics: NewMetrics(),
		now:     time.Now,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/upload", s.handleUpload)
		r.Get("/demo/{symbol}", s.handleDemo)
		r.Get("/sample", s.handleSample)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

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
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= 500 {
		s.logger.ErrorContext(r.Context(), "request failed",
			"error", err.Error(),
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
		)
	}
	_ = render.Render(w, r, &errorResponse{Success: false, Error: apiErr})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sample-stock-data.csv"`)
	_, _ = io.WriteString(w, ingest.SampleCSV)
}

// handleUpload accepts a multipart "file" field or a raw body. Raw bodies are
// treated as CSV unless ?name= says otherwise.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	seed, err := s.seed(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name, body, err := s.uploadBody(w, r)
	if err != nil {
		s.metrics.observeIngestion("rejected", 0)
		if name == "" {
			name = "upload"
		}
		s.record(r.Context(), recorder.FromError(name, err))
		s.fail(w, r, err)
		return
	}
	defer body.Close()

	text, err := source.Read(name, body, source.Options{MaxBytes: s.cfg.MaxBytes, Sheet: r.URL.Query().Get("sheet")})
	if err != nil {
		s.metrics.observeIngestion("rejected", 0)
		s.record(r.Context(), recorder.FromError(name, err))
		s.fail(w, r, err)
		return
	}
	res, err := ingest.Parse(text, ingest.Options{SampleRows: s.cfg.SampleRows})
	if err != nil {
		s.metrics.observeIngestion("invalid", 0)
		s.record(r.Context(), recorder.FromError(name, err))
		s.fail(w, r, err)
		return
	}
	s.metrics.observeIngestion("ok", res.Series.Len())
	s.record(r.Context(), recorder.FromResult(name, res))
	s.logger.DebugContext(r.Context(), "ingested",
		"file", name,
		"points", res.Series.Len(),
		"dropped", res.Series.Dropped,
		"coerced", res.Series.Coerced,
	)
	render.JSON(w, r, dashboard.Build(res, synth.New(seed)))
}

func (s *Server) uploadBody(w http.ResponseWriter, r *http.Request) (string, io.ReadCloser, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "multipart/form-data" {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload.csv"
		}
		return name, r.Body, nil
	}
	// Leave headroom for multipart framing; source.Read enforces the file limit.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBytes+1<<20)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, err
		}
		return "", nil, &APIError{
			StatusCode: http.StatusBadRequest,
			ErrorCode:  CodeBadRequest,
			Message:    "multipart field \"file\" is required",
		}
	}
	return hdr.Filename, f, nil
}

func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if symbol == "" {
		s.fail(w, r, &APIError{StatusCode: http.StatusBadRequest, ErrorCode: CodeBadRequest, Message: "symbol is required"})
		return
	}
	days := s.cfg.DemoDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < ingest.MinSeriesPoints || n > 365 {
			s.fail(w, r, &APIError{
				StatusCode: http.StatusBadRequest,
				ErrorCode:  CodeBadRequest,
				Message:    fmt.Sprintf("days must be between %d and 365", ingest.MinSeriesPoints),
			})
			return
		}
		days = n
	}
	seed, err := s.seed(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := dashboard.Demo(symbol, days, s.now(), synth.New(seed))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, p)
}

func (s *Server) seed(r *http.Request) (uint64, error) {
	if v := r.URL.Query().Get("seed"); v != "" {
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, &APIError{StatusCode: http.StatusBadRequest, ErrorCode: CodeBadRequest, Message: "seed must be an unsigned integer"}
		}
		return u, nil
	}
	if s.cfg.Seed != 0 {
		return s.cfg.Seed, nil
	}
	return uint64(s.now().UnixNano()), nil
}

func (s *Server) record(ctx context.Context, e recorder.Entry) {
	if err := s.rec.RecordIngestion(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "record ingestion", "error", err.Error())
	}
}
