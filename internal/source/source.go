// Package source locates the default dataset: a workbook on disk or one
// published at a URL.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"rms-dashboard-go/internal/dataset"
	"rms-dashboard-go/internal/logger"
)

// ErrNotFound means no default dataset exists. Callers treat it as
// "no data yet", not as a failure.
var ErrNotFound = errors.New("default dataset not found")

const (
	DefaultName     = "DB.xlsx"
	defaultMaxBytes = 64 << 20
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Payload is a fetched workbook.
type Payload struct {
	Name string
	Data []byte
}

// Source reads Path first and falls back to URL when the file is absent.
type Source struct {
	Path   string
	URL    string
	Client *http.Client

	// MaxElapsed bounds the whole retry loop. InitialInterval is the first
	// backoff step; tests shrink it.
	MaxElapsed      time.Duration
	InitialInterval time.Duration
	MaxBytes        int64
}

func New(path, rawURL string, maxElapsed time.Duration) *Source {
	return &Source{Path: path, URL: rawURL, MaxElapsed: maxElapsed}
}

// Fetch returns the default workbook bytes.
func (s *Source) Fetch(ctx context.Context) (Payload, error) {
	log := logger.Component("source")

	if s.Path != "" {
		data, err := os.ReadFile(s.Path)
		switch {
		case err == nil:
			log.WithField("path", s.Path).Info("loaded default dataset from disk")
			return Payload{Name: filepath.Base(s.Path), Data: data}, nil
		case !errors.Is(err, os.ErrNotExist):
			return Payload{}, fmt.Errorf("read %s: %w", s.Path, err)
		}
	}
	if s.URL == "" {
		return Payload{}, ErrNotFound
	}

	data, err := s.download(ctx)
	if err != nil {
		return Payload{}, err
	}
	log.WithField("url", s.URL).WithField("bytes", len(data)).Info("downloaded default dataset")
	return Payload{Name: nameFromURL(s.URL), Data: data}, nil
}

func (s *Source) download(ctx context.Context) ([]byte, error) {
	log := logger.Component("source")

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 12 * time.Second
	if s.MaxElapsed > 0 {
		bo.MaxElapsedTime = s.MaxElapsed
	}
	if s.InitialInterval > 0 {
		bo.InitialInterval = s.InitialInterval
	}

	client := s.Client
	if client == nil {
		client = httpClient
	}
	limit := s.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}

	var body []byte
	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("dataset download failed, retrying")
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			lastErr = ErrNotFound
			return backoff.Permanent(lastErr)
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error: %s", resp.Status)
			return lastErr
		case resp.StatusCode >= 300:
			lastErr = fmt.Errorf("unexpected status: %s", resp.Status)
			return backoff.Permanent(lastErr)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
		if err != nil {
			lastErr = err
			return err
		}
		if int64(len(data)) > limit {
			lastErr = fmt.Errorf("dataset exceeds %d bytes", limit)
			return backoff.Permanent(lastErr)
		}
		body = data
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, lastErr
	}
	return body, nil
}

// nameFromURL keeps the URL's file name when it is a workbook so the
// reader picks the right format.
func nameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return DefaultName
	}
	name := path.Base(u.Path)
	if !dataset.Supported(name) {
		return DefaultName
	}
	return name
}
