package ingest

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Worker drives the collector on a fixed poll interval. A cycle always runs
// to completion; overlapping ticks are skipped.
type Worker struct {
	log       *zap.Logger
	collector *Collector
	interval  time.Duration
	timeout   time.Duration

	mu sync.Mutex
}

func NewWorker(log *zap.Logger, collector *Collector, interval, timeout time.Duration) *Worker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Worker{
		log:       log.Named("ingest.worker"),
		collector: collector,
		interval:  interval,
		timeout:   timeout,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("feed poll failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) error {
	if !w.mu.TryLock() {
		w.log.Debug("feed poll already running, skipping cycle")
		return nil
	}
	defer w.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	_, err := w.collector.Fetch(ctx)
	return err
}
