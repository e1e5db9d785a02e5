package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rms-dashboard-go/internal/config"
	"rms-dashboard-go/internal/logger"
	"rms-dashboard-go/internal/processor"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func workbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"Site", "Name", "Zone", "Region", "E", "F", "G", "H", "Aging", "J", "Reason", "Domain"},
		{"S1", "", "", "Jacobabad", "", "", "", "", "6-15 Days", "", "Power Failure", "ENFRA Offline"},
		{"S2", "", "", "Larkana", "", "", "", "", "1-05 Days", "", "Theft", "SMS LD"},
		{"S3", "", "", "Larkana", "", "", "", "", "6-15 Days", "", "Power Failure", "ENFRA"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newTestServer(t *testing.T, maxUpload int64) (*Server, *processor.Dashboard) {
	t.Helper()
	dash := processor.New(nil, nil)
	cfg := config.Config{
		Port:           "0",
		Regions:        []string{"Jacob Abad", "Larkana", "Sukkur"},
		MaxUploadBytes: maxUpload,
	}
	s, err := NewServer(cfg, dash, nil)
	require.NoError(t, err)
	return s, dash
}

func uploadRequest(t *testing.T, name string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rr := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode(t, rr)["status"])
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rr := serve(s, httptest.NewRequest(http.MethodOptions, "/api/upload", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestAnalysisBeforeUpload(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rr := serve(s, httptest.NewRequest(http.MethodGet, "/api/analysis", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NotNil(t, decode(t, rr)["error"])
}

func TestUploadThenAnalyze(t *testing.T) {
	s, _ := newTestServer(t, 0)

	rr := serve(s, uploadRequest(t, "DB.xlsx", workbook(t)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, float64(3), decode(t, rr)["rows"])

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/api/analysis?region=Larkana", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var view struct {
		Analysis struct {
			Summary map[string]int `json:"summary"`
		} `json:"analysis"`
		Cards []struct {
			URL string `json:"url"`
		} `json:"cards"`
		Charts      []map[string]any `json:"charts"`
		RegionCards []any            `json:"region_cards"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, 1, view.Analysis.Summary["enfra"])
	assert.Equal(t, 1, view.Analysis.Summary["smsLd"])
	assert.Equal(t, "table_view.html?type=card&domain=enfra&region=Larkana", view.Cards[0].URL)
	assert.Len(t, view.Charts, 4)
	assert.Empty(t, view.RegionCards)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/api/analysis", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Len(t, view.RegionCards, 6)
}

func TestUploadRejections(t *testing.T) {
	s, dash := newTestServer(t, 0)

	rr := serve(s, uploadRequest(t, "notes.txt", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(s, uploadRequest(t, "broken.xlsx", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("plain"))
	rr = serve(s, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.False(t, dash.Loaded())
}

func TestUploadTooLarge(t *testing.T) {
	s, _ := newTestServer(t, 512)
	rr := serve(s, uploadRequest(t, "DB.xlsx", workbook(t)))
	assert.Contains(t, []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest}, rr.Code)
}

func TestTableView(t *testing.T) {
	s, _ := newTestServer(t, 0)
	require.Equal(t, http.StatusOK, serve(s, uploadRequest(t, "DB.xlsx", workbook(t))).Code)

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/api/table?type=aging&aging=6-15%20Days&domain=enfra&region=Jacob%20Abad", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, "type=aging&aging=6-15%20Days&domain=enfra&region=Jacob%20Abad", body["query"])

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/api/table?type=reason&reason=Power%20Failure", nil))
	assert.Equal(t, float64(2), decode(t, rr)["count"])

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/api/table?type=card&domain=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestChartPNG(t *testing.T) {
	s, _ := newTestServer(t, 0)

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/api/charts/pie.png", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	require.Equal(t, http.StatusOK, serve(s, uploadRequest(t, "DB.xlsx", workbook(t))).Code)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/api/charts/pie.png", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/api/charts/smsld-aging.png?region=Jacob%20Abad", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/api/charts/radar.png", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSoundPreference(t *testing.T) {
	s, _ := newTestServer(t, 0)

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/api/preferences/sound", nil))
	assert.Equal(t, false, decode(t, rr)["muted"])

	rr = serve(s, httptest.NewRequest(http.MethodPut, "/api/preferences/sound", strings.NewReader(`{"muted":true}`)))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/api/preferences/sound", nil))
	assert.Equal(t, true, decode(t, rr)["muted"])

	rr = serve(s, httptest.NewRequest(http.MethodPut, "/api/preferences/sound", strings.NewReader(`nope`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegionsAndPages(t *testing.T) {
	s, _ := newTestServer(t, 0)

	rr := serve(s, httptest.NewRequest(http.MethodGet, "/api/regions", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"/regions/Jacob%20Abad"`)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "chart-enfra-aging")
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/regions/Jacobabad", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `data-region="Jacob Abad"`)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/regions/Atlantis", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/table_view.html?type=card&domain=all", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dataTable")

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/assets/dashboard.js", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/javascript; charset=utf-8", rr.Header().Get("Content-Type"))

	rr = serve(s, httptest.NewRequest(http.MethodGet, "/assets/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/svg+xml", contentType("logo.SVG"))
	assert.Equal(t, "application/octet-stream", contentType("blob"))
}
