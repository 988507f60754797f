// Package main is the entry point for the insights API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kinolearn/insights/internal/api"
	"github.com/kinolearn/insights/internal/config"
	"github.com/kinolearn/insights/internal/insights"
	"github.com/kinolearn/insights/internal/lesson"
	"github.com/kinolearn/insights/internal/middleware"
	"github.com/kinolearn/insights/internal/tracing"
	"github.com/kinolearn/insights/internal/voice"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("KinoLearn Insights API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "summary", cfg.LogSummary())

	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "kinolearn-insights",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.TracingSampleRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down tracer provider", "error", err)
		}
	}()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	store := lesson.NewPostgresStore(db)

	// Prometheus registry and per-package metrics
	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	insightMetrics := insights.NewMetrics()
	voiceMetrics := voice.NewMetrics()
	for _, register := range []func(prometheus.Registerer) error{
		httpMetrics.Register,
		insightMetrics.Register,
		voiceMetrics.Register,
	} {
		if err := register(registry); err != nil {
			logger.Error("failed to register metrics", "error", err)
			os.Exit(1)
		}
	}

	service := insights.NewService(store, insightMetrics)

	var source voice.LogSource
	if cfg.UseS3Telemetry() {
		source, err = voice.NewS3Source(voice.S3SourceConfig{
			Bucket:          cfg.TelemetryS3Bucket,
			Prefix:          cfg.TelemetryS3Prefix,
			Region:          cfg.TelemetryS3Region,
			AccessKeyID:     cfg.TelemetryS3AccessKey,
			SecretAccessKey: cfg.TelemetryS3SecretKey,
			Endpoint:        cfg.TelemetryS3Endpoint,
		})
		if err != nil {
			logger.Error("failed to create telemetry source", "error", err)
			os.Exit(1)
		}
		logger.Info("reading voice telemetry from object storage", "bucket", cfg.TelemetryS3Bucket)
	} else {
		source = voice.NewDirSource(cfg.TelemetryDir)
		logger.Info("reading voice telemetry from directory", "dir", cfg.TelemetryDir)
	}
	reader := voice.NewReader(source, voiceMetrics)

	insightsHandlers := api.NewInsightsHandlers(service)
	voiceHandlers := api.NewVoiceHandlers(reader)
	healthHandlers := api.NewHealthHandlers(store)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandlers.Health)
	mux.HandleFunc("GET /ready", healthHandlers.Ready)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /api/workspaces/{workspace}/insights", insightsHandlers.GetWorkspaceInsights)
	mux.HandleFunc("GET /api/workspaces/{workspace}/insights/export", insightsHandlers.ExportWorkspaceInsights)
	mux.HandleFunc("GET /api/workspaces/{workspace}/lessons/{lesson}/insights", insightsHandlers.GetLessonInsights)
	mux.HandleFunc("GET /api/workspaces/{workspace}/lessons/{lesson}/insights/export", insightsHandlers.ExportLessonInsights)

	mux.HandleFunc("GET /api/voice/analytics", voiceHandlers.GetVoiceAnalytics)
	mux.HandleFunc("GET /api/voice/analytics/export", voiceHandlers.ExportVoiceAnalytics)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"kinolearn-insights","version":"0.1.0"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	// Middleware chain: RequestID -> CORS -> Tracing -> HTTPMetrics -> Logging
	handler := middleware.RequestID(
		middleware.CORS(cfg.CORSOrigins)(
			middleware.Tracing("kinolearn-insights")(
				middleware.HTTPMetrics(httpMetrics)(
					middleware.Logging(logger)(mux)))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
