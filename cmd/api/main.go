package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rms-dashboard-go/internal/chart"
	"rms-dashboard-go/internal/config"
	"rms-dashboard-go/internal/logger"
	"rms-dashboard-go/internal/processor"
	"rms-dashboard-go/internal/server"
	"rms-dashboard-go/internal/source"
	"rms-dashboard-go/internal/store"
)

func main() {
	cfg := config.Load() // loads .env

	log := logger.New()
	log.WithField("service", "rms-dashboard-go").Info("starting service")

	st, err := store.Open(cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.StoreDriver).Fatal("failed to open state store")
	}
	defer st.Close()

	src := source.New(cfg.DatasetPath, cfg.DatasetURL, cfg.DatasetFetchTimeout)
	dash := processor.New(st, src)

	// restore persisted data or fall back to the default workbook
	log.WithField("dataset_path", cfg.DatasetPath).WithField("dataset_url", cfg.DatasetURL).Info("loading dataset")
	startCtx, cancel := context.WithTimeout(context.Background(), cfg.DatasetFetchTimeout+5*time.Second)
	if err := dash.Start(startCtx); err != nil {
		log.WithError(err).Warn("no dataset at startup, waiting for upload")
	}
	cancel()
	log.WithField("loaded", dash.Loaded()).Info("dataset state ready")

	srv, err := server.NewServer(cfg, dash, chart.PNGRenderer{})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize server")
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr()).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Fatal("server terminated")
		}
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}
}
