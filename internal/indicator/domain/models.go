// Package domain defines the composite indicator structures served to the
// dashboard and API layers.
package domain

import (
	"time"

	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
)

// Period tokens. The French names are the public API vocabulary.
const (
	PeriodDay   = "jour"
	PeriodWeek  = "semaine"
	PeriodMonth = "mois"
)

// Period is a resolved aggregation window in UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

// EnergyDelta is consumption inferred from the cumulative HC/HP indices over
// a window: last reading minus first reading, per index. Regression is set
// when a counter decreased inside the window, which signals a meter reset or
// clock skew; deltas are never clamped.
type EnergyDelta struct {
	HC         float64 `json:"hc_kwh"`
	HP         float64 `json:"hp_kwh"`
	Total      float64 `json:"total_kwh"`
	Regression bool    `json:"regression_detected,omitempty"`
}

// CurvePoint is one chart sample, possibly a downsampled bucket average.
type CurvePoint struct {
	Timestamp string `json:"timestamp"`
	Papp      int    `json:"papp"`
}

// HourlyLoad is one local-hour bucket of the daily load profile.
type HourlyLoad struct {
	Hour     int `json:"hour"`
	AvgPower int `json:"avg_power"`
	MaxPower int `json:"max_power"`
	MinPower int `json:"min_power"`
}

// PeakHours lists the three local hours with the highest and lowest average
// power.
type PeakHours struct {
	Peak    []int `json:"peak"`
	OffPeak []int `json:"offpeak"`
}

// Comparison compares the current period's energy with the calendar-aligned
// preceding one. VariationPercent is 0 when the previous period had no
// consumption.
type Comparison struct {
	VariationPercent float64 `json:"variation_percent"`
	Current          float64 `json:"current_kwh"`
	Previous         float64 `json:"previous_kwh"`
}

// RawMeasures groups the direct electrical readings.
type RawMeasures struct {
	InstantPower  int                    `json:"instant_power"`
	LastTimestamp string                 `json:"last_timestamp,omitempty"`
	MaxPower      map[string]int         `json:"max_power"`
	Energy        map[string]EnergyDelta `json:"energy"`
	Curve         []CurvePoint           `json:"curve"`
}

// TemporalStats groups the time-structured statistics.
type TemporalStats struct {
	NightAvgPower int          `json:"night_avg_power"`
	DailyProfile  []HourlyLoad `json:"daily_profile"`
	PeakHours     PeakHours    `json:"peak_hours"`
	Comparison    Comparison   `json:"comparison"`
}

// Jump directions.
const (
	JumpUp   = "montée"
	JumpDown = "descente"
)

// PowerJump is a step change between two adjacent readings.
type PowerJump struct {
	Timestamp string `json:"timestamp"`
	Direction string `json:"direction"`
	Delta     int    `json:"delta_watts"`
	Before    int    `json:"before_watts"`
	After     int    `json:"after_watts"`
}

// HighLoadInterval is a contiguous run of readings at or above the high-load
// threshold lasting at least the configured minimum.
type HighLoadInterval struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
	AvgPower        int    `json:"avg_power"`
}

// Anomaly kinds.
const (
	AnomalyCriticalPeak = "pic_critique"
	AnomalyNightUsage   = "conso_nuit"
)

// Anomaly is a per-reading threshold violation.
type Anomaly struct {
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Value     int    `json:"value_watts"`
	Threshold int    `json:"threshold_watts"`
}

// EventReport groups the detected events, newest first.
type EventReport struct {
	PowerJumps []PowerJump        `json:"power_jumps"`
	HighLoad   []HighLoadInterval `json:"high_load"`
	Anomalies  []Anomaly          `json:"anomalies"`
}

// WeekendGap compares weekday and weekend average power over the rolling
// last 30 days. GapPercent is nil when either side has no data.
type WeekendGap struct {
	WeekdayAvg int      `json:"weekday_avg"`
	WeekendAvg int      `json:"weekend_avg"`
	GapPercent *float64 `json:"gap_percent"`
}

// Wastage groups the standby and baseline indicators.
type Wastage struct {
	StandbyFloor int        `json:"standby_floor"`
	NightBase    int        `json:"night_base"`
	WeekendGap   WeekendGap `json:"weekend_gap"`
}

// CostPoint is one day of the cumulative month cost curve.
type CostPoint struct {
	Day        int     `json:"day"`
	Cost       float64 `json:"cost"`
	Cumulative float64 `json:"cumulative"`
}

// CostReport groups the monetary indicators.
type CostReport struct {
	Periods        map[string]float64          `json:"periods"`
	ProjectedMonth float64                     `json:"projected_month"`
	Curve          []CostPoint                 `json:"curve"`
	Tariffs        settingsdomain.TariffConfig `json:"tariffs"`
}

// Indicators is the composite dashboard payload.
type Indicators struct {
	RawMeasures   RawMeasures   `json:"raw_measures"`
	TemporalStats TemporalStats `json:"temporal_stats"`
	Events        EventReport   `json:"events"`
	Wastage       Wastage       `json:"wastage"`
	Cost          CostReport    `json:"cost"`
}

// DailyCostRow is one local day of the full cost report.
type DailyCostRow struct {
	Date    string  `json:"date"`
	HC      float64 `json:"hc_kwh"`
	HP      float64 `json:"hp_kwh"`
	Total   float64 `json:"total_kwh"`
	Cost    float64 `json:"cost"`
}

// DailyCostReport is the full per-day cost table over the stored series.
type DailyCostReport struct {
	Rows             []DailyCostRow `json:"rows"`
	TotalCost        float64        `json:"total_cost"`
	AverageDailyCost float64        `json:"average_daily_cost"`
}

// Empty returns the documented all-zero payload used when the store is
// unavailable. Tariff defaults are still populated so the dashboard can
// render its pricing panel.
func Empty() Indicators {
	return Indicators{
		RawMeasures: RawMeasures{
			MaxPower: map[string]int{PeriodDay: 0, PeriodWeek: 0, PeriodMonth: 0},
			Energy: map[string]EnergyDelta{
				PeriodDay:   {},
				PeriodWeek:  {},
				PeriodMonth: {},
			},
			Curve: []CurvePoint{},
		},
		TemporalStats: TemporalStats{
			DailyProfile: []HourlyLoad{},
			PeakHours:    PeakHours{Peak: []int{}, OffPeak: []int{}},
		},
		Events: EventReport{
			PowerJumps: []PowerJump{},
			HighLoad:   []HighLoadInterval{},
			Anomalies:  []Anomaly{},
		},
		Wastage: Wastage{},
		Cost: CostReport{
			Periods: map[string]float64{PeriodDay: 0, PeriodWeek: 0, PeriodMonth: 0},
			Curve:   []CostPoint{},
			Tariffs: settingsdomain.DefaultTariffs(),
		},
	}
}
