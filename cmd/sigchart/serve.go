package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/sigchart/internal/api"
	"github.com/newthinker/sigchart/internal/logger"
	"github.com/newthinker/sigchart/internal/metrics"
	"github.com/newthinker/sigchart/internal/pipeline"
	"github.com/newthinker/sigchart/internal/session"
	"github.com/newthinker/sigchart/internal/storage/source"
	"github.com/newthinker/sigchart/internal/trace"
)

var templatesDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chart server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&templatesDir, "templates", "", "load page templates from this directory instead of the embedded ones")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if cfg.Server.Mode == "debug" && !debug {
		log = logger.Must(cfg.Server.Mode, debug)
	}

	if err := trace.Init(cfg.Tracing.Enabled, Version); err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer trace.Shutdown(context.Background())

	src, err := source.New(cfg.Data)
	if err != nil {
		return fmt.Errorf("creating data source: %w", err)
	}

	log.Info("starting sigchart server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("data_source", cfg.Data.Source),
		zap.Bool("tracing", trace.Enabled()),
	)

	reg := metrics.NewRegistry()
	server, err := api.NewServer(api.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		TemplatesDir:   templatesDir,
		StaticDir:      cfg.Static.Dir,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		UploadRate:     cfg.Upload.RatePerSecond,
		UploadBurst:    cfg.Upload.Burst,
		OverlayEnabled: cfg.Overlay.Enabled,
		OHLCVFile:      cfg.Data.OHLCVFile,
		TradesFile:     cfg.Data.TradesFile,
	}, api.Dependencies{
		Processor: pipeline.New(log, reg),
		Store:     session.NewStore(),
		Source:    src,
		Metrics:   reg,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("shutting down sigchart server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
