// Package server exposes the dashboard pages and JSON API.
package server

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"rms-dashboard-go/internal/chart"
	"rms-dashboard-go/internal/config"
	"rms-dashboard-go/internal/navigation"
	"rms-dashboard-go/internal/processor"
	"rms-dashboard-go/internal/types"
)

//go:embed web
var webFS embed.FS

// Dashboard is the service the handlers read from and load into.
type Dashboard interface {
	Loaded() bool
	View(region string) (types.DashboardView, error)
	RegionCards(regions []string) ([]types.StatCard, error)
	Rows(q navigation.Query) (types.Grid, error)
	Upload(ctx context.Context, name string, data []byte) (processor.LoadResult, error)
	SoundMuted(ctx context.Context) (bool, error)
	SetSoundMuted(ctx context.Context, muted bool) error
}

// Server wraps an HTTP server and route handlers.
type Server struct {
	httpServer *http.Server
	dash       Dashboard
	renderer   chart.Renderer
	regions    []string
	maxUpload  int64
	pages      *template.Template
	static     fs.FS
}

// NewServer wires the routes for dash. A nil renderer uses the PNG renderer.
func NewServer(cfg config.Config, dash Dashboard, renderer chart.Renderer) (*Server, error) {
	if renderer == nil {
		renderer = chart.PNGRenderer{}
	}
	static, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, err
	}
	pages, err := template.ParseFS(static, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		dash:      dash,
		renderer:  renderer,
		regions:   cfg.Regions,
		maxUpload: cfg.MaxUploadBytes,
		pages:     pages,
		static:    static,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 16 << 20
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.dashboardPage)
	mux.HandleFunc("GET /regions/{region}", s.regionPage)
	mux.HandleFunc("GET /table_view.html", s.staticFile("table_view.html"))
	mux.HandleFunc("GET /assets/{file}", s.assetHandler)
	mux.HandleFunc("GET /healthz", healthHandler)

	mux.HandleFunc("GET /api/analysis", s.analysisHandler)
	mux.HandleFunc("POST /api/upload", s.uploadHandler)
	mux.HandleFunc("GET /api/table", s.tableHandler)
	mux.HandleFunc("GET /api/charts/{name}", s.chartHandler)
	mux.HandleFunc("GET /api/preferences/sound", s.getSoundHandler)
	mux.HandleFunc("PUT /api/preferences/sound", s.putSoundHandler)
	mux.HandleFunc("GET /api/regions", s.regionsHandler)

	return loggingMiddleware(corsMiddleware(mux))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
