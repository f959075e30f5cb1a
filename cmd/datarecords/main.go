package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/radio-aktywne/datarecords/internal/clock"
	"github.com/radio-aktywne/datarecords/internal/config"
	"github.com/radio-aktywne/datarecords/internal/credentials"
	"github.com/radio-aktywne/datarecords/internal/httpapi"
	xglog "github.com/radio-aktywne/datarecords/internal/log"
	"github.com/radio-aktywne/datarecords/internal/objectstore"
	"github.com/radio-aktywne/datarecords/internal/pipeline"
	"github.com/radio-aktywne/datarecords/internal/portpool"
	"github.com/radio-aktywne/datarecords/internal/recorder"
	"github.com/radio-aktywne/datarecords/internal/records"
	"github.com/radio-aktywne/datarecords/internal/scheduleclient"
)

var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	xglog.Configure(xglog.Config{Level: "info", Service: "datarecords", Version: version})
	logger := xglog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: "datarecords", Version: version})
	logger = xglog.WithComponent("main")

	store, err := objectstore.New(ctx, objectstore.Config{
		Secure:   cfg.S3.Secure,
		Host:     cfg.S3.Host,
		Port:     cfg.S3.Port,
		User:     cfg.S3.User,
		Password: cfg.S3.Password,
		Bucket:   cfg.S3.Bucket,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build object store client")
	}

	emishowsBase := &url.URL{
		Scheme: cfg.Emishows.HTTP.Scheme,
		Host:   fmt.Sprintf("%s:%d", cfg.Emishows.HTTP.Host, cfg.Emishows.HTTP.Port),
		Path:   cfg.Emishows.HTTP.Path,
	}
	schedule := scheduleclient.New(emishowsBase, scheduleclient.Options{})

	clk := clock.Real{}
	minter := credentials.NewMinter(clk, cfg.Recorder.Timeout)
	ports := portpool.New(cfg.Server.Ports.SRT)
	pipelines := pipeline.NewFFmpegFactory(cfg.Recorder.FFmpegPath, store, cfg.Recorder.GraceKill)

	rec := recorder.New(clk, cfg.Recorder.Window, schedule, minter, ports, pipelines)
	cat := records.New(schedule, store)

	router := httpapi.NewRouter(rec, cat)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Ports.HTTP),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}
	if err := rec.CloseAndWait(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("recorder shutdown error")
	}

	logger.Info().Msg("server exiting")
}
