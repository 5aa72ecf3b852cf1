// Package events scans ordered reading sequences for power jumps, sustained
// high-load intervals and threshold anomalies. Events are derived fresh on
// every request and never persisted.
package events

import (
	"time"

	indicatordomain "github.com/orwelltherazer/statelec/internal/indicator/domain"
	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
)

const (
	maxJumps     = 20
	maxAnomalies = 10
)

// Detector runs the three scans with configured thresholds.
type Detector struct {
	thresholds settingsdomain.DetectionThresholds
	loc        *time.Location
}

// NewDetector builds a detector. Zero threshold fields fall back to the
// documented defaults.
func NewDetector(thresholds settingsdomain.DetectionThresholds, loc *time.Location) *Detector {
	defaults := settingsdomain.DefaultDetectionThresholds()
	if thresholds.JumpWatts <= 0 {
		thresholds.JumpWatts = defaults.JumpWatts
	}
	if thresholds.HighLoadWatts <= 0 {
		thresholds.HighLoadWatts = defaults.HighLoadWatts
	}
	if thresholds.HighLoadMinMinutes <= 0 {
		thresholds.HighLoadMinMinutes = defaults.HighLoadMinMinutes
	}
	if thresholds.CriticalWatts <= 0 {
		thresholds.CriticalWatts = defaults.CriticalWatts
	}
	if thresholds.NightWatts <= 0 {
		thresholds.NightWatts = defaults.NightWatts
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Detector{thresholds: thresholds, loc: loc}
}

// Scan runs all detectors over an ascending sequence.
func (d *Detector) Scan(readings []readingdomain.Reading) indicatordomain.EventReport {
	return indicatordomain.EventReport{
		PowerJumps: d.PowerJumps(readings),
		HighLoad:   d.HighLoadIntervals(readings),
		Anomalies:  d.Anomalies(readings),
	}
}

// PowerJumps emits one event per adjacent pair whose absolute papp delta
// reaches the jump threshold. Newest first, capped.
func (d *Detector) PowerJumps(readings []readingdomain.Reading) []indicatordomain.PowerJump {
	jumps := make([]indicatordomain.PowerJump, 0)
	for i := 1; i < len(readings); i++ {
		prev := readings[i-1].Papp
		curr := readings[i].Papp
		delta := curr - prev
		if abs(delta) < d.thresholds.JumpWatts {
			continue
		}
		direction := indicatordomain.JumpUp
		if delta < 0 {
			direction = indicatordomain.JumpDown
		}
		jumps = append(jumps, indicatordomain.PowerJump{
			Timestamp: readings[i].Timestamp,
			Direction: direction,
			Delta:     delta,
			Before:    prev,
			After:     curr,
		})
	}
	reverse(jumps)
	if len(jumps) > maxJumps {
		jumps = jumps[:maxJumps]
	}
	return jumps
}

// HighLoadIntervals reports contiguous runs at or above the high-load
// threshold lasting at least the configured minimum. The recorded average
// is the true mean power over the run. Newest first.
func (d *Detector) HighLoadIntervals(readings []readingdomain.Reading) []indicatordomain.HighLoadInterval {
	intervals := make([]indicatordomain.HighLoadInterval, 0)

	runStart := -1
	for i := 0; i < len(readings); i++ {
		if readings[i].Papp >= d.thresholds.HighLoadWatts {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 {
			d.closeRun(&intervals, readings[runStart:i])
			runStart = -1
		}
	}
	if runStart >= 0 {
		d.closeRun(&intervals, readings[runStart:])
	}

	reverse(intervals)
	return intervals
}

func (d *Detector) closeRun(intervals *[]indicatordomain.HighLoadInterval, run []readingdomain.Reading) {
	if len(run) == 0 {
		return
	}
	first := run[0]
	last := run[len(run)-1]

	startTime, err := first.Time()
	if err != nil {
		return
	}
	endTime, err := last.Time()
	if err != nil {
		return
	}

	minutes := int(endTime.Sub(startTime).Round(time.Minute) / time.Minute)
	if minutes < d.thresholds.HighLoadMinMinutes {
		return
	}

	sum := 0
	for _, r := range run {
		sum += r.Papp
	}

	*intervals = append(*intervals, indicatordomain.HighLoadInterval{
		Start:           first.Timestamp,
		End:             last.Timestamp,
		DurationMinutes: minutes,
		AvgPower:        sum / len(run),
	})
}

// Anomalies flags critical peaks and abnormal nighttime consumption
// (local hours 2-4). Newest first, capped.
func (d *Detector) Anomalies(readings []readingdomain.Reading) []indicatordomain.Anomaly {
	anomalies := make([]indicatordomain.Anomaly, 0)
	for _, r := range readings {
		if r.Papp >= d.thresholds.CriticalWatts {
			anomalies = append(anomalies, indicatordomain.Anomaly{
				Timestamp: r.Timestamp,
				Kind:      indicatordomain.AnomalyCriticalPeak,
				Value:     r.Papp,
				Threshold: d.thresholds.CriticalWatts,
			})
		}

		at, err := r.Time()
		if err != nil {
			continue
		}
		hour := at.In(d.loc).Hour()
		if hour >= 2 && hour < 5 && r.Papp > d.thresholds.NightWatts {
			anomalies = append(anomalies, indicatordomain.Anomaly{
				Timestamp: r.Timestamp,
				Kind:      indicatordomain.AnomalyNightUsage,
				Value:     r.Papp,
				Threshold: d.thresholds.NightWatts,
			})
		}
	}
	reverse(anomalies)
	if len(anomalies) > maxAnomalies {
		anomalies = anomalies[:maxAnomalies]
	}
	return anomalies
}

func abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
