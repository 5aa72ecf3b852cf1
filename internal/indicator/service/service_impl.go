// Package service implements the indicator façade: it orchestrates the
// period, energy, events and cost units over the reading store into the
// composite dashboard payload.
package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/orwelltherazer/statelec/internal/clock"
	"github.com/orwelltherazer/statelec/internal/config"
	costengine "github.com/orwelltherazer/statelec/internal/indicator/cost"
	indicatordomain "github.com/orwelltherazer/statelec/internal/indicator/domain"
	"github.com/orwelltherazer/statelec/internal/indicator/energy"
	"github.com/orwelltherazer/statelec/internal/indicator/events"
	"github.com/orwelltherazer/statelec/internal/indicator/period"
	"github.com/orwelltherazer/statelec/internal/observability/metrics"
	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
)

var periodTokens = []string{
	indicatordomain.PeriodDay,
	indicatordomain.PeriodWeek,
	indicatordomain.PeriodMonth,
}

type Service struct {
	log      *zap.Logger
	readings readingdomain.Repository
	settings settingsdomain.Service
	clk      clock.Clock
	loc      *time.Location
	metrics  *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	Readings readingdomain.Repository
	Settings settingsdomain.Service
	Clock    clock.Clock
	Cfg      config.Config
}

func NewService(p ServiceParam) indicatordomain.Service {
	log := p.Log.Named("indicator.service")
	loc, err := time.LoadLocation(p.Cfg.Timezone)
	if err != nil {
		log.Warn("unknown timezone, falling back to UTC", zap.String("timezone", p.Cfg.Timezone))
		loc = time.UTC
	}
	return &Service{
		log:      log,
		readings: p.Readings,
		settings: p.Settings,
		clk:      p.Clock,
		loc:      loc,
		metrics:  metrics.Default(),
	}
}

// GetAllIndicators assembles the composite payload. Every section degrades
// independently to its empty default on store failure; the substitution is
// explicit here, not hidden in the sub-computations.
func (s *Service) GetAllIndicators(ctx context.Context, periodToken string) indicatordomain.Indicators {
	token := normalizeToken(periodToken)
	now := s.clk.Now()
	started := time.Now()
	defer func() {
		s.metrics.ObserveIndicatorDuration(token, time.Since(started))
	}()

	result := indicatordomain.Empty()

	window := period.Resolve(token, now, s.loc)
	rows, err := s.readings.QueryRange(ctx,
		readingdomain.FormatTime(window.Start),
		readingdomain.FormatTime(window.End),
	)
	if err != nil {
		s.degrade("readings", err)
		rows = nil
	}

	if raw, err := s.rawMeasures(ctx, rows, window, now); err != nil {
		s.degrade("raw_measures", err)
	} else {
		result.RawMeasures = raw
	}

	if stats, err := s.temporalStats(ctx, rows, token, now); err != nil {
		s.degrade("temporal_stats", err)
	} else {
		result.TemporalStats = stats
	}

	detector := events.NewDetector(s.settings.Detection(ctx), s.loc)
	result.Events = detector.Scan(rows)

	if wastage, err := s.wastage(ctx, rows, now); err != nil {
		s.degrade("wastage", err)
	} else {
		result.Wastage = wastage
	}

	if cost, err := s.costReport(ctx, now); err != nil {
		s.degrade("cost", err)
	} else {
		result.Cost = cost
	}

	return result
}

func (s *Service) degrade(section string, err error) {
	s.log.Warn("indicator section degraded to empty default",
		zap.String("section", section),
		zap.Error(err),
	)
	s.metrics.IncIndicatorDegraded(section)
}

func (s *Service) rawMeasures(
	ctx context.Context,
	rows []readingdomain.Reading,
	window indicatordomain.Period,
	now time.Time,
) (indicatordomain.RawMeasures, error) {
	raw := indicatordomain.RawMeasures{
		MaxPower: make(map[string]int, len(periodTokens)),
		Energy:   make(map[string]indicatordomain.EnergyDelta, len(periodTokens)),
		Curve:    buildCurve(rows, window),
	}

	latest, err := s.readings.Latest(ctx)
	if err != nil {
		return indicatordomain.RawMeasures{}, err
	}
	if latest != nil {
		raw.InstantPower = latest.Papp
		raw.LastTimestamp = latest.Timestamp
	}

	for _, token := range periodTokens {
		p := period.Resolve(token, now, s.loc)
		start := readingdomain.FormatTime(p.Start)
		end := readingdomain.FormatTime(p.End)

		max, err := s.readings.MaxPapp(ctx, start, end)
		if err != nil {
			return indicatordomain.RawMeasures{}, err
		}
		raw.MaxPower[token] = max

		delta, err := s.energyForRange(ctx, start, end)
		if err != nil {
			return indicatordomain.RawMeasures{}, err
		}
		if delta.Regression {
			s.log.Warn("counter regression in energy window",
				zap.String("period", token),
				zap.Float64("hc_kwh", delta.HC),
				zap.Float64("hp_kwh", delta.HP),
			)
		}
		raw.Energy[token] = delta
	}

	return raw, nil
}

func (s *Service) energyForRange(ctx context.Context, start, end string) (indicatordomain.EnergyDelta, error) {
	first, err := s.readings.FirstInRange(ctx, start, end)
	if err != nil {
		return indicatordomain.EnergyDelta{}, err
	}
	last, err := s.readings.LastInRange(ctx, start, end)
	if err != nil {
		return indicatordomain.EnergyDelta{}, err
	}
	return energy.FromEdges(first, last), nil
}

func (s *Service) temporalStats(
	ctx context.Context,
	rows []readingdomain.Reading,
	token string,
	now time.Time,
) (indicatordomain.TemporalStats, error) {
	profile := s.buildProfile(rows)

	comparison, err := s.comparePeriods(ctx, token, now)
	if err != nil {
		return indicatordomain.TemporalStats{}, err
	}

	return indicatordomain.TemporalStats{
		NightAvgPower: s.avgForLocalHours(rows, 0, 6),
		DailyProfile:  profile,
		PeakHours:     peakHours(profile),
		Comparison:    comparison,
	}, nil
}

// buildProfile regroups readings into 24 local-hour buckets. The conversion
// happens per row: each reading's full UTC timestamp is converted to local
// time before its hour is extracted, so buckets line up with the household
// clock across any UTC offset.
func (s *Service) buildProfile(rows []readingdomain.Reading) []indicatordomain.HourlyLoad {
	type bucket struct {
		count int
		sum   int
		max   int
		min   int
	}
	var buckets [24]bucket

	for _, row := range rows {
		at, err := row.Time()
		if err != nil {
			continue
		}
		hour := at.In(s.loc).Hour()
		b := &buckets[hour]
		if b.count == 0 || row.Papp > b.max {
			b.max = row.Papp
		}
		if b.count == 0 || row.Papp < b.min {
			b.min = row.Papp
		}
		b.count++
		b.sum += row.Papp
	}

	profile := make([]indicatordomain.HourlyLoad, 24)
	for hour := range buckets {
		b := buckets[hour]
		load := indicatordomain.HourlyLoad{Hour: hour}
		if b.count > 0 {
			load.AvgPower = int(math.Round(float64(b.sum) / float64(b.count)))
			load.MaxPower = b.max
			load.MinPower = b.min
		}
		profile[hour] = load
	}
	return profile
}

// peakHours picks the three local hours with the highest and lowest average
// power. The sort is stable so ties keep their original hour order.
func peakHours(profile []indicatordomain.HourlyLoad) indicatordomain.PeakHours {
	if len(profile) == 0 {
		return indicatordomain.PeakHours{Peak: []int{}, OffPeak: []int{}}
	}

	sorted := make([]indicatordomain.HourlyLoad, len(profile))
	copy(sorted, profile)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgPower > sorted[j].AvgPower
	})

	take := 3
	if take > len(sorted) {
		take = len(sorted)
	}

	peak := make([]int, 0, take)
	for _, load := range sorted[:take] {
		peak = append(peak, load.Hour)
	}
	offpeak := make([]int, 0, take)
	for _, load := range sorted[len(sorted)-take:] {
		offpeak = append(offpeak, load.Hour)
	}

	return indicatordomain.PeakHours{Peak: peak, OffPeak: offpeak}
}

func (s *Service) comparePeriods(ctx context.Context, token string, now time.Time) (indicatordomain.Comparison, error) {
	current := period.Resolve(token, now, s.loc)
	previous := period.Previous(token, now, s.loc)

	currentDelta, err := s.energyForRange(ctx,
		readingdomain.FormatTime(current.Start),
		readingdomain.FormatTime(current.End),
	)
	if err != nil {
		return indicatordomain.Comparison{}, err
	}
	previousDelta, err := s.energyForRange(ctx,
		readingdomain.FormatTime(previous.Start),
		readingdomain.FormatTime(previous.End),
	)
	if err != nil {
		return indicatordomain.Comparison{}, err
	}

	comparison := indicatordomain.Comparison{
		Current:  currentDelta.Total,
		Previous: previousDelta.Total,
	}
	if previousDelta.Total > 0 {
		variation := (currentDelta.Total - previousDelta.Total) / previousDelta.Total * 100
		comparison.VariationPercent = round1(variation)
	}
	return comparison, nil
}

func (s *Service) wastage(ctx context.Context, rows []readingdomain.Reading, now time.Time) (indicatordomain.Wastage, error) {
	gap, err := s.weekendGap(ctx, now)
	if err != nil {
		return indicatordomain.Wastage{}, err
	}

	return indicatordomain.Wastage{
		StandbyFloor: standbyFloor(s.buildProfile(rows)),
		NightBase:    s.avgForLocalHours(rows, 2, 5),
		WeekendGap:   gap,
	}, nil
}

// standbyFloor is the lowest non-zero hourly average: a proxy for the
// permanent standby draw of the household.
func standbyFloor(profile []indicatordomain.HourlyLoad) int {
	floor := 0
	for _, load := range profile {
		if load.AvgPower <= 0 {
			continue
		}
		if floor == 0 || load.AvgPower < floor {
			floor = load.AvgPower
		}
	}
	return floor
}

func (s *Service) avgForLocalHours(rows []readingdomain.Reading, fromHour, toHour int) int {
	sum := 0
	count := 0
	for _, row := range rows {
		at, err := row.Time()
		if err != nil {
			continue
		}
		hour := at.In(s.loc).Hour()
		if hour >= fromHour && hour < toHour {
			sum += row.Papp
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

// weekendGap compares weekday and weekend averages over the rolling last 30
// local days, which keeps the comparison meaningful early in a month.
func (s *Service) weekendGap(ctx context.Context, now time.Time) (indicatordomain.WeekendGap, error) {
	local := now.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, -30)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 0, s.loc)

	rows, err := s.readings.QueryRange(ctx,
		readingdomain.FormatTime(start),
		readingdomain.FormatTime(end),
	)
	if err != nil {
		return indicatordomain.WeekendGap{}, err
	}

	var weekdaySum, weekdayCount, weekendSum, weekendCount int
	for _, row := range rows {
		at, err := row.Time()
		if err != nil {
			continue
		}
		switch at.In(s.loc).Weekday() {
		case time.Saturday, time.Sunday:
			weekendSum += row.Papp
			weekendCount++
		default:
			weekdaySum += row.Papp
			weekdayCount++
		}
	}

	gap := indicatordomain.WeekendGap{}
	if weekdayCount > 0 {
		gap.WeekdayAvg = int(math.Round(float64(weekdaySum) / float64(weekdayCount)))
	}
	if weekendCount > 0 {
		gap.WeekendAvg = int(math.Round(float64(weekendSum) / float64(weekendCount)))
	}
	if gap.WeekdayAvg > 0 && gap.WeekendAvg > 0 {
		percent := round1(float64(gap.WeekendAvg-gap.WeekdayAvg) / float64(gap.WeekdayAvg) * 100)
		gap.GapPercent = &percent
	}
	return gap, nil
}

func (s *Service) costReport(ctx context.Context, now time.Time) (indicatordomain.CostReport, error) {
	tariffs := s.settings.Tariffs(ctx)
	engine := costengine.NewEngine(tariffs, s.loc)

	report := indicatordomain.CostReport{
		Periods: make(map[string]float64, len(periodTokens)),
		Tariffs: tariffs,
	}

	for _, token := range periodTokens {
		p := period.Resolve(token, now, s.loc)
		delta, err := s.energyForRange(ctx,
			readingdomain.FormatTime(p.Start),
			readingdomain.FormatTime(p.End),
		)
		if err != nil {
			return indicatordomain.CostReport{}, err
		}
		report.Periods[token] = engine.PeriodCost(delta, period.Days(token, now, s.loc), now)
	}

	local := now.In(s.loc)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.loc)
	monthToDate, err := s.energyForRange(ctx,
		readingdomain.FormatTime(monthStart),
		readingdomain.FormatTime(now),
	)
	if err != nil {
		return indicatordomain.CostReport{}, err
	}
	report.ProjectedMonth = engine.ProjectedMonthCost(engine.EnergyCost(monthToDate), now)

	deltas := make([]indicatordomain.EnergyDelta, 0, local.Day())
	for day := 1; day <= local.Day(); day++ {
		dayWindow := period.Day(local.Year(), local.Month(), day, s.loc)
		delta, err := s.energyForRange(ctx,
			readingdomain.FormatTime(dayWindow.Start),
			readingdomain.FormatTime(dayWindow.End),
		)
		if err != nil {
			return indicatordomain.CostReport{}, err
		}
		deltas = append(deltas, delta)
	}
	report.Curve = engine.CumulativeCurve(deltas, now)

	return report, nil
}

// DailyCostReport builds the per-day cost table over the full stored series.
func (s *Service) DailyCostReport(ctx context.Context) indicatordomain.DailyCostReport {
	empty := indicatordomain.DailyCostReport{Rows: []indicatordomain.DailyCostRow{}}

	rows, err := s.readings.All(ctx)
	if err != nil {
		s.degrade("daily_cost", err)
		return empty
	}
	if len(rows) == 0 {
		return empty
	}

	now := s.clk.Now()
	engine := costengine.NewEngine(s.settings.Tariffs(ctx), s.loc)
	dailySubscription := engine.DailySubscriptionCost(now)

	type edges struct {
		first readingdomain.Reading
		last  readingdomain.Reading
	}
	order := make([]string, 0)
	days := make(map[string]*edges)
	for _, row := range rows {
		at, err := row.Time()
		if err != nil {
			continue
		}
		date := at.In(s.loc).Format("2006-01-02")
		if entry, ok := days[date]; ok {
			entry.last = row
		} else {
			days[date] = &edges{first: row, last: row}
			order = append(order, date)
		}
	}

	report := indicatordomain.DailyCostReport{
		Rows: make([]indicatordomain.DailyCostRow, 0, len(order)),
	}
	for _, date := range order {
		entry := days[date]
		delta := energy.Delta(entry.first, entry.last)
		costOfDay := round2(engine.EnergyCost(delta) + dailySubscription)
		report.TotalCost += costOfDay
		report.Rows = append(report.Rows, indicatordomain.DailyCostRow{
			Date:  date,
			HC:    delta.HC,
			HP:    delta.HP,
			Total: delta.Total,
			Cost:  costOfDay,
		})
	}
	report.TotalCost = round2(report.TotalCost)
	if len(report.Rows) > 0 {
		report.AverageDailyCost = round2(report.TotalCost / float64(len(report.Rows)))
	}
	return report
}

// buildCurve downsamples the period's readings for charting. Long windows
// get coarser buckets so a month never ships tens of thousands of points.
func buildCurve(rows []readingdomain.Reading, window indicatordomain.Period) []indicatordomain.CurvePoint {
	interval := curveInterval(window.End.Sub(window.Start))
	if interval == 0 {
		points := make([]indicatordomain.CurvePoint, 0, len(rows))
		for _, row := range rows {
			points = append(points, indicatordomain.CurvePoint{
				Timestamp: row.Timestamp,
				Papp:      row.Papp,
			})
		}
		return points
	}

	type bucket struct {
		start time.Time
		sum   int
		count int
	}
	buckets := make([]*bucket, 0)
	var current *bucket
	for _, row := range rows {
		at, err := row.Time()
		if err != nil {
			continue
		}
		slot := at.Truncate(interval)
		if current == nil || !current.start.Equal(slot) {
			current = &bucket{start: slot}
			buckets = append(buckets, current)
		}
		current.sum += row.Papp
		current.count++
	}

	points := make([]indicatordomain.CurvePoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, indicatordomain.CurvePoint{
			Timestamp: readingdomain.FormatTime(b.start),
			Papp:      int(math.Round(float64(b.sum) / float64(b.count))),
		})
	}
	return points
}

// curveInterval picks the sampling interval for a window span. Zero means
// every reading is kept.
func curveInterval(span time.Duration) time.Duration {
	switch {
	case span > 7*24*time.Hour:
		return time.Hour
	case span > 24*time.Hour:
		return 15 * time.Minute
	case span > 6*time.Hour:
		return 5 * time.Minute
	default:
		return 0
	}
}

func normalizeToken(token string) string {
	switch token {
	case indicatordomain.PeriodWeek, indicatordomain.PeriodMonth:
		return token
	default:
		return indicatordomain.PeriodDay
	}
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
