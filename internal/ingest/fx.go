package ingest

import (
	"context"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/orwelltherazer/statelec/internal/config"
	"github.com/orwelltherazer/statelec/internal/observability/tracing"
	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
)

var Module = fx.Module("ingest",
	fx.Provide(newCollector),
	fx.Provide(newWorker),
	fx.Invoke(runWorker),
)

func newCollector(
	log *zap.Logger,
	cfg config.Config,
	readings readingdomain.Repository,
	settings settingsdomain.Service,
) *Collector {
	client := tracing.WrapHTTPClient(&http.Client{Timeout: cfg.Telemetry.FetchTimeout})
	return NewCollector(log, client, readings, settings, cfg.Telemetry.FeedURL, cfg.Telemetry.FetchCount)
}

func newWorker(log *zap.Logger, collector *Collector, cfg config.Config) *Worker {
	return NewWorker(log, collector, cfg.Telemetry.PollInterval, cfg.Telemetry.FetchTimeout)
}

func runWorker(lc fx.Lifecycle, worker *Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
