// Package cost converts energy deltas into monetary amounts using the
// configured tariffs.
package cost

import (
	"math"
	"time"

	indicatordomain "github.com/orwelltherazer/statelec/internal/indicator/domain"
	"github.com/orwelltherazer/statelec/internal/indicator/period"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
)

// Engine prices consumption for one tariff configuration. Subscription
// proration uses the days-in-month rate: monthly price divided by the length
// of the current local month. The annualized price*12/365 shortcut is not
// used anywhere so all cost figures agree with the monthly invoice.
type Engine struct {
	tariffs settingsdomain.TariffConfig
	loc     *time.Location
}

func NewEngine(tariffs settingsdomain.TariffConfig, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{tariffs: tariffs, loc: loc}
}

// DailySubscriptionCost returns the subscription share of one day in now's
// month.
func (e *Engine) DailySubscriptionCost(now time.Time) float64 {
	days := period.DaysInMonth(now, e.loc)
	if days == 0 {
		return 0
	}
	return e.tariffs.SubscriptionPrice / float64(days)
}

// EnergyCost prices a consumption delta according to the subscription plan:
// flat rate on the total for "base", split HC/HP rates otherwise.
func (e *Engine) EnergyCost(delta indicatordomain.EnergyDelta) float64 {
	if e.tariffs.SubscriptionType == settingsdomain.SubscriptionBase {
		return round2(delta.Total * e.tariffs.PriceBase)
	}
	return round2(delta.HC*e.tariffs.PriceHC + delta.HP*e.tariffs.PriceHP)
}

// PeriodCost prices a period: energy cost plus the subscription share for
// the number of days the period spans.
func (e *Engine) PeriodCost(delta indicatordomain.EnergyDelta, days int, now time.Time) float64 {
	return round2(e.EnergyCost(delta) + e.DailySubscriptionCost(now)*float64(days))
}

// ProjectedMonthCost extrapolates the month-to-date energy cost linearly to
// the end of the month and adds the full monthly subscription.
func (e *Engine) ProjectedMonthCost(costSoFar float64, now time.Time) float64 {
	local := now.In(e.loc)
	dayOfMonth := local.Day()
	if dayOfMonth == 0 {
		return 0
	}
	daysTotal := period.DaysInMonth(now, e.loc)
	projected := (costSoFar / float64(dayOfMonth)) * float64(daysTotal)
	return round2(projected + e.tariffs.SubscriptionPrice)
}

// CumulativeCurve builds the month-to-date cost curve from per-day deltas,
// one entry per day starting at day 1. Each day carries its energy cost plus
// the daily subscription share; Cumulative is the running sum.
func (e *Engine) CumulativeCurve(dayDeltas []indicatordomain.EnergyDelta, now time.Time) []indicatordomain.CostPoint {
	dailySubscription := e.DailySubscriptionCost(now)

	curve := make([]indicatordomain.CostPoint, 0, len(dayDeltas))
	cumulative := 0.0
	for i, delta := range dayDeltas {
		dayCost := e.EnergyCost(delta) + dailySubscription
		cumulative += dayCost
		curve = append(curve, indicatordomain.CostPoint{
			Day:        i + 1,
			Cost:       round2(dayCost),
			Cumulative: round2(cumulative),
		})
	}
	return curve
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
