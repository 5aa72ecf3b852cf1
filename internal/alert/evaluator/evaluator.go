// Package evaluator runs the periodic alert checks against the reading
// store and writes triggered alerts to the log.
package evaluator

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	alertdomain "github.com/orwelltherazer/statelec/internal/alert/domain"
	"github.com/orwelltherazer/statelec/internal/alert/notify"
	"github.com/orwelltherazer/statelec/internal/clock"
	"github.com/orwelltherazer/statelec/internal/config"
	"github.com/orwelltherazer/statelec/internal/indicator/energy"
	"github.com/orwelltherazer/statelec/internal/observability/metrics"
	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
)

const (
	powerLookback = time.Hour
	powerDedup    = time.Hour
	dailyDedup    = 24 * time.Hour
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Alerts   alertdomain.Repository
	Readings readingdomain.Repository
	Settings settingsdomain.Service
	Notifier notify.Notifier
	Node     *snowflake.Node
	Clock    clock.Clock
	Cfg      config.Config
}

type Evaluator struct {
	log      *zap.Logger
	alerts   alertdomain.Repository
	readings readingdomain.Repository
	settings settingsdomain.Service
	notifier notify.Notifier
	node     *snowflake.Node
	clk      clock.Clock
	loc      *time.Location
	interval time.Duration
	metrics  *metrics.Metrics

	mu sync.Mutex
}

func NewEvaluator(p Params) *Evaluator {
	loc, err := time.LoadLocation(p.Cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	interval := p.Cfg.Alerts.CheckInterval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Evaluator{
		log:      p.Log.Named("alert.evaluator"),
		alerts:   p.Alerts,
		readings: p.Readings,
		settings: p.Settings,
		notifier: p.Notifier,
		node:     p.Node,
		clk:      p.Clock,
		loc:      loc,
		interval: interval,
		metrics:  metrics.Default(),
	}
}

func (e *Evaluator) RunForever(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		if err := e.RunOnce(ctx); err != nil {
			e.log.Warn("alert check run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs one evaluation cycle. Overlapping runs are skipped, not
// queued: a slow cycle must never stack a second one behind it.
func (e *Evaluator) RunOnce(ctx context.Context) error {
	if !e.mu.TryLock() {
		e.log.Debug("alert check already running, skipping cycle")
		return nil
	}
	defer e.mu.Unlock()

	cfg := e.settings.Alerts(ctx)
	now := e.clk.Now()

	if err := e.checkPower(ctx, cfg, now); err != nil {
		return fmt.Errorf("power check: %w", err)
	}
	if err := e.checkDaily(ctx, cfg, now); err != nil {
		return fmt.Errorf("daily check: %w", err)
	}
	return nil
}

// checkPower scans the last hour for readings above the instant power
// threshold. The dedup key is the exact reading value, so a sustained
// plateau at one wattage produces a single alert per window.
func (e *Evaluator) checkPower(ctx context.Context, cfg settingsdomain.AlertSettings, now time.Time) error {
	if cfg.PowerThresholdWatts <= 0 {
		return nil
	}

	since := readingdomain.FormatTime(now.Add(-powerLookback))
	rows, err := e.readings.ListExceeding(ctx, since, cfg.PowerThresholdWatts)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, row := range rows {
		key := strconv.Itoa(row.Papp)
		if seen[key] {
			continue
		}
		seen[key] = true

		duplicate, err := e.alerts.ExistsRecent(ctx, alertdomain.TypePower, key, now.Add(-powerDedup))
		if err != nil {
			return err
		}
		if duplicate {
			continue
		}

		alert := alertdomain.Alert{
			ID:       e.node.Generate().Int64(),
			Type:     alertdomain.TypePower,
			Severity: alertdomain.SeverityHigh,
			Title:    "Dépassement de puissance",
			Message: fmt.Sprintf("Puissance de %d W relevée le %s (seuil %d W)",
				row.Papp, row.Timestamp, cfg.PowerThresholdWatts),
			Value:     float64(row.Papp),
			Threshold: float64(cfg.PowerThresholdWatts),
			DedupKey:  key,
			CreatedAt: now.UTC(),
		}
		e.emit(ctx, cfg, alert)
	}
	return nil
}

// checkDaily compares yesterday's total energy against the daily threshold.
func (e *Evaluator) checkDaily(ctx context.Context, cfg settingsdomain.AlertSettings, now time.Time) error {
	if cfg.DailyThresholdKWh <= 0 {
		return nil
	}

	local := now.In(e.loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, e.loc).AddDate(0, 0, -1)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Second)

	first, err := e.readings.FirstInRange(ctx,
		readingdomain.FormatTime(dayStart), readingdomain.FormatTime(dayEnd))
	if err != nil {
		return err
	}
	last, err := e.readings.LastInRange(ctx,
		readingdomain.FormatTime(dayStart), readingdomain.FormatTime(dayEnd))
	if err != nil {
		return err
	}

	delta := energy.FromEdges(first, last)
	if delta.Total <= cfg.DailyThresholdKWh {
		return nil
	}

	// The dedup key is the date, not the total: a backfilled reading that
	// changes yesterday's total must not trigger a second alert for the
	// same day.
	day := dayStart.Format("2006-01-02")
	duplicate, err := e.alerts.ExistsRecent(ctx, alertdomain.TypeDaily, day, now.Add(-dailyDedup))
	if err != nil {
		return err
	}
	if duplicate {
		return nil
	}

	alert := alertdomain.Alert{
		ID:       e.node.Generate().Int64(),
		Type:     alertdomain.TypeDaily,
		Severity: alertdomain.SeverityCritical,
		Title:    "Consommation journalière élevée",
		Message: fmt.Sprintf("Consommation de %.2f kWh le %s (seuil %.2f kWh)",
			delta.Total, day, cfg.DailyThresholdKWh),
		Value:     delta.Total,
		Threshold: cfg.DailyThresholdKWh,
		DedupKey:  day,
		CreatedAt: now.UTC(),
	}
	e.emit(ctx, cfg, alert)
	return nil
}

// emit notifies then persists. A failed notification is logged but never
// blocks the log entry: the record of the condition matters more than the
// delivery of the mail.
func (e *Evaluator) emit(ctx context.Context, cfg settingsdomain.AlertSettings, alert alertdomain.Alert) {
	if cfg.EmailEnabled {
		if err := e.notifier.Notify(ctx, cfg.EmailRecipient, alert); err != nil {
			e.log.Warn("alert notification failed",
				zap.String("type", alert.Type),
				zap.Error(err),
			)
		}
	}

	if err := e.alerts.Insert(ctx, &alert); err != nil {
		e.log.Error("alert persistence failed",
			zap.String("type", alert.Type),
			zap.Error(err),
		)
		return
	}

	e.metrics.IncAlertEmitted(alert.Type)
	e.log.Info("alert emitted",
		zap.String("type", alert.Type),
		zap.Float64("value", alert.Value),
		zap.Float64("threshold", alert.Threshold),
	)
}
