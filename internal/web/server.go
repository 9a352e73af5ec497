package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	log "github.com/sirupsen/logrus"

	"latencyrank/internal/models"
	"latencyrank/internal/report"
)

//go:embed static/*
var staticFiles embed.FS

// Server handles web requests
type Server struct {
	httpServer *http.Server
	runner     models.Runner
	topN       int
	metrics    http.Handler
	staticFS   fs.FS
}

// New creates a new web server. metrics may be nil to leave /metrics unrouted.
func New(addr string, runner models.Runner, topN int, metrics http.Handler) *Server {
	if topN <= 0 {
		topN = report.DefaultTopN
	}
	staticFS, _ := fs.Sub(staticFiles, "static")

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{Addr: addr, Handler: mux},
		runner:     runner,
		topN:       topN,
		metrics:    metrics,
		staticFS:   staticFS,
	}
	s.registerRoutes(mux)
	return s
}

// Handler returns the router, for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run blocks and serves HTTP traffic
func (s *Server) Run() error {
	log.Infof("Web interface listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts the server down
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.Handle("/", http.FileServer(http.FS(s.staticFS)))

	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/run", s.handleRun)
	mux.HandleFunc("/api/cancel", s.handleCancel)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/leaderboard.png", s.handleLeaderboard)
	mux.HandleFunc("/ws", s.handleWS)

	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
}
