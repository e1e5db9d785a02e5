package server

import (
	"bytes"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"rms-dashboard-go/internal/actionable"
	"rms-dashboard-go/internal/dataset"
	"rms-dashboard-go/internal/logger"
)

// contentTypes is the MIME table for embedded assets.
var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".wav":  "audio/wav",
	".mp4":  "video/mp4",
	".woff": "application/font-woff",
	".ttf":  "application/font-ttf",
	".eot":  "application/vnd.ms-fontobject",
	".otf":  "application/font-otf",
	".wasm": "application/wasm",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func contentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

type pageData struct {
	Title    string
	Region   string
	Regions  []string
	ChartIDs []string
	Loaded   bool
}

func (s *Server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, pageData{Title: "RMS Offline Dashboard"})
}

func (s *Server) regionPage(w http.ResponseWriter, r *http.Request) {
	region := strings.TrimSpace(r.PathValue("region"))
	known := ""
	for _, cfg := range s.regions {
		if dataset.RegionMatches(region, cfg) {
			known = cfg
			break
		}
	}
	if known == "" {
		s.notFound(w)
		return
	}
	s.renderPage(w, r, pageData{Title: known + " RMS Offline Dashboard", Region: known})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, d pageData) {
	d.Regions = s.regions
	d.ChartIDs = actionable.ChartIDs
	d.Loaded = s.dash.Loaded()

	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "dashboard.html", d); err != nil {
		logger.Component("server").WithRequest(r).WithError(err).Error("template render failed")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypes[".html"])
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) staticFile(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serveStatic(w, name)
	}
}

func (s *Server) assetHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if name == "" || strings.Contains(name, "..") {
		s.notFound(w)
		return
	}
	s.serveStatic(w, "assets/"+name)
}

func (s *Server) serveStatic(w http.ResponseWriter, name string) {
	content, err := fs.ReadFile(s.static, name)
	if err != nil {
		s.notFound(w)
		return
	}
	w.Header().Set("Content-Type", contentType(name))
	_, _ = w.Write(content)
}

func (s *Server) notFound(w http.ResponseWriter) {
	content, err := fs.ReadFile(s.static, "404.html")
	if err != nil {
		http.NotFound(w, nil)
		return
	}
	w.Header().Set("Content-Type", contentTypes[".html"])
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(content)
}
