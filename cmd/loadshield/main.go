// Command loadshield is the entrypoint that wires configuration, adapters,
// and the composition root into a single adjudication run, following the
// single-function composition style of cmd/nhb/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"loadshield/adapters"
	"loadshield/audit"
	"loadshield/composition"
	"loadshield/config"
	gatewaymw "loadshield/gateway/middleware"
	"loadshield/observability/admin"
	"loadshield/observability/logging"
	"loadshield/observability/metrics"
	"loadshield/observability/otel"
	"loadshield/pipeline"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the engine's TOML configuration file")
	inputPath := flag.String("input", "", "path to the NDJSON input file (required)")
	tracingFlag := flag.Bool("tracing", false, "override observability.tracing.enabled")
	tracePathFlag := flag.String("trace-path", "", "override observability.tracing.path")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("LOADSHIELD_ENV"))
	logger := logging.Setup("loadshield", env)

	if strings.TrimSpace(*inputPath) == "" {
		logger.Error("missing required --input flag")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if *tracingFlag {
		cfg.TracingEnabled = true
	}
	if strings.TrimSpace(*tracePathFlag) != "" {
		cfg.TracePath = *tracePathFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OtelEnabled {
		shutdown, err := otel.Init(ctx, otel.Config{
			ServiceName: "loadshield",
			Environment: env,
			Endpoint:    cfg.OtelEndpoint,
			Insecure:    cfg.OtelInsecure,
			Traces:      true,
			Metrics:     cfg.MetricsEnabled,
		})
		if err != nil {
			logger.Error("failed to initialize telemetry", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	var auditLog *audit.Log
	if cfg.AuditEnabled {
		auditLog, err = audit.Open(cfg.AuditDatabasePath)
		if err != nil {
			logger.Error("failed to open audit database", slog.Any("error", err))
			os.Exit(1)
		}
		defer auditLog.Close()
	}

	sink, err := adapters.NewNDJSONWriter(cfg.OutputFilePath, cfg.OutputAtomicMode)
	if err != nil {
		logger.Error("failed to open output sink", slog.Any("error", err))
		os.Exit(1)
	}

	engine, err := composition.Build(cfg, sink, auditLog, logger)
	if err != nil {
		logger.Error("failed to build engine", slog.Any("error", err))
		sink.Abort()
		os.Exit(1)
	}

	if cfg.AdminEnabled {
		go runAdminServer(cfg, engine, logger)
	}

	tracer, closeTracer := buildTracer(cfg)
	if closeTracer != nil {
		defer closeTracer()
	}

	runnerOpts := []pipeline.Option{pipeline.WithTracer(tracer)}
	if cfg.MetricsEnabled {
		runnerOpts = append(runnerOpts, pipeline.WithMetrics(metrics.Decision()))
	}
	if cfg.OtelEnabled {
		runnerOpts = append(runnerOpts, pipeline.WithOtelTracing())
	}
	runner := pipeline.NewRunner(engine.Scenario, runnerOpts...)

	if err := run(*inputPath, runner); err != nil {
		logger.Error("adjudication run aborted", slog.Any("error", err))
		sink.Abort()
		os.Exit(1)
	}

	if err := sink.Close(); err != nil {
		logger.Error("failed to finalize output", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.AuditEnabled && cfg.AuditReportDir != "" {
		csvPath, parquetPath, err := auditLog.ExportReports(cfg.AuditReportDir)
		if err != nil {
			logger.Error("failed to export audit reports", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("wrote audit reports", slog.String("csv", csvPath), slog.String("parquet", parquetPath))
	}

	status := engine.RunStats.Status()
	logger.Info("run complete",
		slog.Uint64("accepted", status.RecordsAccepted),
		slog.Uint64("declined", status.RecordsDeclined),
	)
}

// run streams every line of the input file through the runner, synchronously
// and in order (spec.md §4.1, §5): input N+1 never begins until input N's
// Process call has returned.
func run(inputPath string, runner *pipeline.Runner) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	reader := adapters.NewLineReader(f)
	for {
		line, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if _, err := runner.Process(line, line.LineNo); err != nil {
			return err
		}
	}
}

// buildTracer constructs the configured trace sink, if tracing is enabled,
// returning a close function the caller must defer.
func buildTracer(cfg *config.Config) (pipeline.Tracer, func()) {
	if !cfg.TracingEnabled {
		return pipeline.NoopTracer{}, nil
	}
	if strings.TrimSpace(cfg.TracePath) == "" {
		return adapters.StdoutTraceSink{}, nil
	}
	sink := adapters.NewFileTraceSink(cfg.TracePath)
	return sink, func() { _ = sink.Close() }
}

// runAdminServer serves the admin HTTP surface until the process exits. It
// runs in its own goroutine; a failure here never aborts the adjudication
// run (SPEC_FULL.md supplemented feature: admin HTTP surface).
func runAdminServer(cfg *config.Config, engine *composition.Engine, logger *slog.Logger) {
	handler := admin.New(admin.Config{
		Status: engine.RunStats,
		Logger: nil,
		RateLimit: gatewaymw.RateLimit{
			RatePerSecond: cfg.AdminRatePerSecond,
			Burst:         cfg.AdminBurst,
		},
	})
	logger.Info("admin server listening", slog.String("address", cfg.AdminListenAddress))
	if err := http.ListenAndServe(cfg.AdminListenAddress, handler); err != nil {
		logger.Error("admin server stopped", slog.Any("error", err))
	}
}
