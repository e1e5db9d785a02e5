package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rms-dashboard-go/internal/chart"
	"rms-dashboard-go/internal/dataset"
	"rms-dashboard-go/internal/logger"
	"rms-dashboard-go/internal/navigation"
	"rms-dashboard-go/internal/processor"
	"rms-dashboard-go/internal/types"
)

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

type analysisResponse struct {
	types.DashboardView
	RegionCards []types.StatCard `json:"region_cards,omitempty"`
}

func (s *Server) analysisHandler(w http.ResponseWriter, r *http.Request) {
	region := strings.TrimSpace(r.URL.Query().Get("region"))
	view, err := s.dash.View(region)
	if err != nil {
		s.readError(w, r, err)
		return
	}
	resp := analysisResponse{DashboardView: view}
	if region == "" {
		if resp.RegionCards, err = s.dash.RegionCards(s.regions); err != nil {
			s.readError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.Component("server").WithRequest(r).WithField("handler", "upload")

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.WithError(err).Warn("failed to read upload")
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	res, err := s.dash.Upload(r.Context(), hdr.Filename, data)
	switch {
	case errors.Is(err, dataset.ErrUnsupportedFile),
		errors.Is(err, dataset.ErrUnreadable),
		errors.Is(err, dataset.ErrEmptySheet):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.WithError(err).Error("upload failed")
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type tableResponse struct {
	Query  string      `json:"query"`
	Header types.Row   `json:"header"`
	Rows   []types.Row `json:"rows"`
	Count  int         `json:"count"`
}

func (s *Server) tableHandler(w http.ResponseWriter, r *http.Request) {
	q, err := navigation.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	grid, err := s.dash.Rows(q)
	if err != nil {
		s.readError(w, r, err)
		return
	}
	resp := tableResponse{Query: q.Encode(), Rows: []types.Row{}}
	if len(grid) > 0 {
		resp.Header = grid[0]
		resp.Rows = append(resp.Rows, grid[1:]...)
	}
	resp.Count = len(resp.Rows)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) chartHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(r.PathValue("name"), ".png")
	view, err := s.dash.View(strings.TrimSpace(r.URL.Query().Get("region")))
	if err != nil {
		s.readError(w, r, err)
		return
	}
	m, ok := view.Chart(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown chart "+id)
		return
	}
	img, err := chart.Bytes(s.renderer, m)
	if errors.Is(err, chart.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		logger.Component("server").WithRequest(r).WithField("chart", id).WithError(err).Error("chart render failed")
		writeError(w, http.StatusInternalServerError, "chart render failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img)
}

type soundPreference struct {
	Muted bool `json:"muted"`
}

func (s *Server) getSoundHandler(w http.ResponseWriter, r *http.Request) {
	muted, err := s.dash.SoundMuted(r.Context())
	if err != nil {
		logger.Component("server").WithRequest(r).WithError(err).Error("read sound preference")
		writeError(w, http.StatusInternalServerError, "could not read preference")
		return
	}
	writeJSON(w, http.StatusOK, soundPreference{Muted: muted})
}

func (s *Server) putSoundHandler(w http.ResponseWriter, r *http.Request) {
	var p soundPreference
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<10)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "body must be {\"muted\": bool}")
		return
	}
	if err := s.dash.SetSoundMuted(r.Context(), p.Muted); err != nil {
		logger.Component("server").WithRequest(r).WithError(err).Error("save sound preference")
		writeError(w, http.StatusInternalServerError, "could not save preference")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type regionLink struct {
	Name string `json:"name"`
	Page string `json:"page"`
}

func (s *Server) regionsHandler(w http.ResponseWriter, _ *http.Request) {
	out := make([]regionLink, 0, len(s.regions))
	for _, r := range s.regions {
		out = append(out, regionLink{Name: r, Page: "/regions/" + url.PathEscape(r)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"regions": out})
}

// readError maps dashboard read failures to responses.
func (s *Server) readError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, processor.ErrNoData) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	logger.Component("server").WithRequest(r).WithError(err).Error("dashboard read failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}
