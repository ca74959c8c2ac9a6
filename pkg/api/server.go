package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ndorder/pkg/buildinfo"
	"github.com/matzehuels/ndorder/pkg/config"
	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/graph"
	"github.com/matzehuels/ndorder/pkg/httputil"
	pkgio "github.com/matzehuels/ndorder/pkg/io"
	"github.com/matzehuels/ndorder/pkg/observability"
	"github.com/matzehuels/ndorder/pkg/pipeline"
)

// Default limits.
const (
	DefaultMaxBodyBytes   = 64 << 20
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxDim         = 1 << 22
)

// Options configures a Server.
type Options struct {
	// MaxNNZ bounds the number of pattern entries per request; zero means
	// no limit.
	MaxNNZ int

	// MaxDim bounds nrow and ncol of a request matrix; zero selects
	// DefaultMaxDim.
	MaxDim int

	// MaxBodyBytes bounds the request body size.
	MaxBodyBytes int64

	// RequestTimeout cancels requests that run longer.
	RequestTimeout time.Duration

	// Defaults are applied before the parameters of each request.
	Defaults config.Ordering
}

// Server is the HTTP ordering service.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
}

// New creates a server that orders through runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	if opts.MaxDim <= 0 {
		opts.MaxDim = DefaultMaxDim
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	return &Server{runner: runner, logger: logger, opts: opts}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
		r.Post("/order", s.handleOrder)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/tree", s.handleTree)
	})
	return r
}

// observe logs every request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if httputil.StatusCode(err) == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "err", err)
	}
	httputil.WriteError(w, err)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, buildinfo.Get())
}

// execute decodes an OrderRequest and runs the pipeline on it.
func (s *Server) execute(r *http.Request) (*pipeline.Result, OrderRequest, error) {
	var req OrderRequest
	if err := httputil.DecodeJSON(r.Body, s.opts.MaxBodyBytes, &req); err != nil {
		return nil, req, err
	}
	p, err := req.Pattern(s.opts.MaxNNZ, s.opts.MaxDim)
	if err != nil {
		return nil, req, err
	}
	opts := pipeline.Options{Pattern: p}
	s.opts.Defaults.Apply(&opts)
	if err := req.apply(&opts); err != nil {
		return nil, req, err
	}
	res, err := s.runner.Execute(r.Context(), opts)
	return res, req, err
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	res, req, err := s.execute(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc := pkgio.NewOrdering(res.Ordering, res.Mode.String(), req.OneBased)
	doc.RunID = res.RunID
	doc.Fill, doc.Baseline = res.Fill, res.Baseline
	w.Header().Set("X-Run-ID", res.RunID)
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := httputil.DecodeJSON(r.Body, s.opts.MaxBodyBytes, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := req.Pattern(s.opts.MaxNNZ, s.opts.MaxDim)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	mode, err := graph.ParseMode(req.Mode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := graph.Build(p, mode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	perm := req.Perm
	if req.OneBased {
		perm = make([]int, len(req.Perm))
		for i, v := range req.Perm {
			perm[i] = v - 1
		}
	}
	if len(perm) != g.NodeCount() {
		s.fail(w, r, errs.New(errs.ErrCodeInvalidInput, "permutation has %d entries, graph has %d vertices", len(perm), g.NodeCount()))
		return
	}

	hash := pipeline.PatternHash(p)
	fill, _, err := s.runner.AnalyzeWithCacheInfo(r.Context(), g, hash, perm)
	if err != nil {
		// The graph is valid, so a failure means perm is not a permutation.
		s.fail(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "permutation"))
		return
	}
	baseline, _, err := s.runner.AnalyzeWithCacheInfo(r.Context(), g, hash, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := AnalyzeResponse{Fill: fill, Baseline: baseline, FillRatio: fill.FillRatio(), Reduction: 1}
	if fill.NNZL > 0 {
		resp.Reduction = float64(baseline.NNZL) / float64(fill.NNZL)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "dot"
	}
	if format != "dot" && format != "svg" {
		s.fail(w, r, errs.New(errs.ErrCodeInvalidInput, "format must be dot or svg, got %q", format))
		return
	}

	res, req, err := s.execute(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	labels := vertexLabels(len(res.Ordering.Perm), req.OneBased)
	tree := res.Ordering.Tree

	w.Header().Set("X-Run-ID", res.RunID)
	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(tree.ToDOT(labels)))
		return
	}
	svg, err := tree.RenderSVG(r.Context(), labels)
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "render tree"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}
