package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/orwelltherazer/statelec/internal/alert"
	alertdomain "github.com/orwelltherazer/statelec/internal/alert/domain"
	"github.com/orwelltherazer/statelec/internal/clock"
	"github.com/orwelltherazer/statelec/internal/config"
	"github.com/orwelltherazer/statelec/internal/indicator"
	"github.com/orwelltherazer/statelec/internal/ingest"
	"github.com/orwelltherazer/statelec/internal/observability/logger"
	"github.com/orwelltherazer/statelec/internal/observability/tracing"
	"github.com/orwelltherazer/statelec/internal/reading"
	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
	"github.com/orwelltherazer/statelec/internal/server"
	"github.com/orwelltherazer/statelec/internal/settings"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
	"github.com/orwelltherazer/statelec/pkg/db"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		fx.Provide(newTracingConfig),
		fx.Invoke(tracing.NewProvider),
		db.Module,
		fx.Invoke(migrate),
		reading.Module,
		settings.Module,
		indicator.Module,
		alert.Module,
		ingest.Module,
		server.Module,
	)
	app.Run()
}

func newTracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.Tracing.Enabled,
		ServiceName:      "statelec",
		ServiceVersion:   version,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.Tracing.ExporterEndpoint,
		ExporterProtocol: cfg.Tracing.ExporterProtocol,
		SamplingRatio:    cfg.Tracing.SamplingRatio,
	}
}

func migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&readingdomain.Reading{},
		&settingsdomain.Setting{},
		&alertdomain.Alert{},
	)
}
