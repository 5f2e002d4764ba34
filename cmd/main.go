package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angeloszaimis/cluster-monitor/config"
	"github.com/angeloszaimis/cluster-monitor/internal/cluster"
	"github.com/angeloszaimis/cluster-monitor/internal/httpserver"
	"github.com/angeloszaimis/cluster-monitor/internal/metrics"
	"github.com/angeloszaimis/cluster-monitor/internal/monitor"
	"github.com/angeloszaimis/cluster-monitor/internal/probe"
	"github.com/angeloszaimis/cluster-monitor/internal/retry"
	"github.com/angeloszaimis/cluster-monitor/pkg/logger"
)

const eventBufferSize = 256

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Environment)
	logStartup(log, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, log)
	cancel()

	os.Exit(code)
}

// logStartup prints the banner and the resolved options. Credentials appear
// only as a boolean.
func logStartup(log *slog.Logger, cfg *config.Config) {
	log.Info("Starting Connection Monitor",
		slog.String("banner", cfg.Banner()),
		slog.Any("options", cfg))
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) int {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// The collector outlives the signal so shutdown events are still recorded.
	collectorCtx, stopCollector := context.WithCancel(context.WithoutCancel(ctx))
	collector := metrics.NewCollector(eventBufferSize, registry, log)
	collector.Start(collectorCtx)
	defer func() {
		stopCollector()
		<-collector.Done()
	}()

	client, err := cluster.NewClient(clusterOptions(cfg), log)
	if err != nil {
		log.Error("Unrecoverable error", slog.String("error", err.Error()))
		return 1
	}

	mon := monitor.New(client, monitorOptions(cfg), collector.EventChannel(), log)

	if cfg.StatusAddress != "" {
		srv, err := httpserver.New(cfg.StatusAddress, setupRouter(mon, collector, registry), log)
		if err != nil {
			log.Error("Failed to create status server", slog.Any("err", err))
			return 1
		}

		srvCtx, stopServer := context.WithCancel(ctx)
		srvDone := make(chan struct{})
		go func() {
			defer close(srvDone)
			srv.Run(srvCtx)
		}()
		defer func() {
			stopServer()
			<-srvDone
		}()
	}

	if err := mon.Start(ctx); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			mon.Shutdown()
			return 0
		}

		log.Error("Unrecoverable error", slog.String("error", err.Error()))
		mon.Shutdown()
		return 1
	}

	<-ctx.Done()
	mon.Shutdown()

	return 0
}

func clusterOptions(cfg *config.Config) cluster.Options {
	opts := cluster.DefaultOptions(cfg.Hosts...)
	opts.Port = cfg.Port
	opts.Pooling = cluster.NewPoolingOptions(cfg.CoreConn, cfg.MaxConn, cfg.HeartbeatPeriod())
	opts.Credentials = cluster.NewCredentials(cfg.Username, cfg.Password)
	opts.HostSelection = cfg.HostSelection
	opts.LocalDC = cfg.LocalDC
	return opts
}

func monitorOptions(cfg *config.Config) monitor.Options {
	return monitor.Options{
		Retry: retry.Fixed(cfg.ConnectRetryPeriod()).WithMaxAttempts(cfg.ConnectMaxAttempts),
		Probe: probe.Config{
			Interval:      cfg.QueryPeriod(),
			Timeout:       cluster.DefaultReadTimeout,
			DownThreshold: cfg.DownThreshold,
		},
	}
}
