package alert

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/orwelltherazer/statelec/internal/alert/evaluator"
	"github.com/orwelltherazer/statelec/internal/alert/notify"
	"github.com/orwelltherazer/statelec/internal/alert/repository"
	"github.com/orwelltherazer/statelec/internal/config"
)

var Module = fx.Module("alert",
	fx.Provide(repository.NewRepository),
	fx.Provide(newNotifier),
	fx.Provide(evaluator.NewEvaluator),
	fx.Invoke(runEvaluator),
)

func newNotifier(cfg config.Config, log *zap.Logger) notify.Notifier {
	if cfg.Alerts.SMTPAddr == "" {
		return notify.NoopNotifier{}
	}
	return notify.NewSMTPNotifier(cfg.Alerts.SMTPAddr, cfg.Alerts.SMTPFrom, log)
}

func runEvaluator(lc fx.Lifecycle, ev *evaluator.Evaluator) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go ev.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
