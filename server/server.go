// Package server exposes the analysis pipeline over HTTP: spec generation,
// documentation coverage badges, and cached per-package spec retrieval.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/gorilla/schema"

	"github.com/ryanwaits/openpkg"
	"github.com/ryanwaits/openpkg/provider"
	"github.com/ryanwaits/openpkg/resolve"
	"github.com/ryanwaits/openpkg/spec"
)

var (
	validate     = validator.New()
	queryDecoder = schema.NewDecoder()
)

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
}

// Loader resolves a package pattern into a Resolver. The default loader uses
// the go/packages provider; tests substitute fixtures.
type Loader func(ctx context.Context, pkg, dir string) (resolve.Resolver, error)

// Config configures the HTTP server.
type Config struct {
	// CacheTTL bounds how long analysis results are reused. Zero disables
	// the cache.
	CacheTTL time.Duration
	// CoverageThreshold is the score at or above which the badge renders
	// green. Defaults to 80.
	CoverageThreshold int
}

// Server serves the analysis API. All state is constructor-injected; one
// Server handles concurrent requests.
type Server struct {
	analyzer  *openpkg.Analyzer
	loader    Loader
	cache     *specCache
	threshold int
	log       *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLoader replaces the package loader.
func WithLoader(l Loader) ServerOption {
	return func(s *Server) { s.loader = l }
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// New creates a Server around an Analyzer.
func New(analyzer *openpkg.Analyzer, cfg Config, opts ...ServerOption) *Server {
	threshold := cfg.CoverageThreshold
	if threshold == 0 {
		threshold = 80
	}
	s := &Server{
		analyzer: analyzer,
		loader: func(ctx context.Context, pkg, dir string) (resolve.Resolver, error) {
			return provider.Load(ctx, provider.Options{Patterns: []string{pkg}, Dir: dir})
		},
		cache:     newSpecCache(cfg.CacheTTL),
		threshold: threshold,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with all routes and middleware attached.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /v1/badge", s.handleBadge)
	mux.HandleFunc("GET /v1/spec/{pkg...}", s.handleSpec)
	return withLogging(s.log, mux)
}

// analyzeRequest is the POST /v1/analyze body.
type analyzeRequest struct {
	Packages []string `json:"packages" validate:"required,min=1,dive,required"`
	Dir      string   `json:"dir"`
}

// analyzeResponse maps package pattern to its generated spec.
type analyzeResponse struct {
	Packages map[string]*spec.PackageSpec `json:"packages"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, Errorf(CodeInvalidArgument, "decoding request body: %v", err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, fromValidation(err))
		return
	}

	out := make(map[string]*spec.PackageSpec, len(req.Packages))
	pending := make(map[string]resolve.Resolver)
	for _, pkg := range req.Packages {
		key := cacheKey(pkg, req.Dir)
		if ps, ok := s.cache.get(key); ok {
			out[pkg] = ps
			continue
		}
		res, err := s.loader(r.Context(), pkg, req.Dir)
		if err != nil {
			writeError(w, Errorf(CodeInvalidArgument, "loading %s: %v", pkg, err))
			return
		}
		pending[pkg] = res
	}

	if len(pending) > 0 {
		analyzed, err := s.analyzer.AnalyzePackages(r.Context(), pending)
		if err != nil {
			writeError(w, Errorf(CodeInternal, "analyzing: %v", err))
			return
		}
		for pkg, ps := range analyzed {
			s.cache.put(cacheKey(pkg, req.Dir), ps)
			out[pkg] = ps
		}
	}

	writeResult(w, http.StatusOK, analyzeResponse{Packages: out})
}

// badgeQuery is the GET /v1/badge query string.
type badgeQuery struct {
	Pkg string `schema:"pkg" validate:"required"`
	Dir string `schema:"dir"`
}

// badge is the shields.io endpoint-JSON format.
// https://shields.io/badges/endpoint-badge
type badge struct {
	SchemaVersion int    `json:"schemaVersion"`
	Label         string `json:"label"`
	Message       string `json:"message"`
	Color         string `json:"color"`
}

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	var q badgeQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, Errorf(CodeInvalidArgument, "decoding query: %v", err))
		return
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, fromValidation(err))
		return
	}

	ps, err := s.analyzed(r.Context(), q.Pkg, q.Dir)
	if err != nil {
		writeError(w, err)
		return
	}

	score := 0
	if ps.Docs != nil {
		score = ps.Docs.CoverageScore
	}
	color := "red"
	switch {
	case score >= s.threshold:
		color = "brightgreen"
	case score >= s.threshold/2:
		color = "yellow"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(badge{ //nolint:errcheck
		SchemaVersion: 1,
		Label:         "docs",
		Message:       fmt.Sprintf("%d%%", score),
		Color:         color,
	})
}

func (s *Server) handleSpec(w http.ResponseWriter, r *http.Request) {
	pkg := r.PathValue("pkg")
	if pkg == "" {
		writeError(w, NewError(CodeInvalidArgument, "missing package path"))
		return
	}
	ps, err := s.analyzed(r.Context(), pkg, "")
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, ps)
}

// analyzed returns the cached spec for a package, loading and analyzing on
// miss. Load failures surface as not_found: the common cause is a package
// pattern that matches nothing.
func (s *Server) analyzed(ctx context.Context, pkg, dir string) (*spec.PackageSpec, *Error) {
	key := cacheKey(pkg, dir)
	if ps, ok := s.cache.get(key); ok {
		return ps, nil
	}
	res, err := s.loader(ctx, pkg, dir)
	if err != nil {
		return nil, Errorf(CodeNotFound, "loading %s: %v", pkg, err)
	}
	ps, err := s.analyzer.Analyze(ctx, res)
	if err != nil {
		return nil, Errorf(CodeInternal, "analyzing %s: %v", pkg, err)
	}
	s.cache.put(key, ps)
	return ps, nil
}

func cacheKey(pkg, dir string) string {
	return pkg + "\x00" + dir
}
