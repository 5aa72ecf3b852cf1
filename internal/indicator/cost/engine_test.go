package cost

import (
	"testing"
	"time"

	indicatordomain "github.com/orwelltherazer/statelec/internal/indicator/domain"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
)

func hcHpTariffs() settingsdomain.TariffConfig {
	return settingsdomain.TariffConfig{
		PriceHC:          0.18,
		PriceHP:          0.25,
		PriceBase:        0.20,
		SubscriptionType: settingsdomain.SubscriptionHCHP,
	}
}

func TestEnergyCostHCHP(t *testing.T) {
	engine := NewEngine(hcHpTariffs(), time.UTC)
	delta := indicatordomain.EnergyDelta{HC: 3, HP: 2, Total: 5}

	// 3*0.18 + 2*0.25 = 1.04
	if got := engine.EnergyCost(delta); got != 1.04 {
		t.Fatalf("cost = %v, want 1.04", got)
	}
}

func TestEnergyCostBasePlanIgnoresSplit(t *testing.T) {
	tariffs := hcHpTariffs()
	tariffs.SubscriptionType = settingsdomain.SubscriptionBase
	engine := NewEngine(tariffs, time.UTC)
	delta := indicatordomain.EnergyDelta{HC: 3, HP: 2, Total: 5}

	if got := engine.EnergyCost(delta); got != 1.0 {
		t.Fatalf("cost = %v, want 1.00", got)
	}
}

func TestDailySubscriptionCostUsesMonthLength(t *testing.T) {
	tariffs := hcHpTariffs()
	tariffs.SubscriptionPrice = 15.0
	engine := NewEngine(tariffs, time.UTC)

	april := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	if got := engine.DailySubscriptionCost(april); got != 0.5 {
		t.Fatalf("april daily subscription = %v, want 0.5", got)
	}
}

func TestPeriodCostAddsSubscriptionShare(t *testing.T) {
	tariffs := hcHpTariffs()
	tariffs.SubscriptionPrice = 15.0
	engine := NewEngine(tariffs, time.UTC)
	delta := indicatordomain.EnergyDelta{HC: 3, HP: 2, Total: 5}

	april := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	// 1.04 energy + 7 days * 0.5 subscription.
	if got := engine.PeriodCost(delta, 7, april); got != 4.54 {
		t.Fatalf("week cost = %v, want 4.54", got)
	}
}

func TestProjectedMonthCost(t *testing.T) {
	tariffs := hcHpTariffs()
	tariffs.SubscriptionPrice = 10.0
	engine := NewEngine(tariffs, time.UTC)

	// Day 10 of a 30-day month: 6.00 so far extrapolates to 18.00.
	april := time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)
	if got := engine.ProjectedMonthCost(6.0, april); got != 28.0 {
		t.Fatalf("projected = %v, want 28.0", got)
	}
}

func TestCumulativeCurve(t *testing.T) {
	engine := NewEngine(hcHpTariffs(), time.UTC)
	now := time.Date(2025, time.April, 3, 12, 0, 0, 0, time.UTC)

	deltas := []indicatordomain.EnergyDelta{
		{HC: 1, HP: 1, Total: 2},
		{HC: 2, HP: 0, Total: 2},
		{HC: 0, HP: 2, Total: 2},
	}
	curve := engine.CumulativeCurve(deltas, now)

	if len(curve) != 3 {
		t.Fatalf("curve length = %d, want 3", len(curve))
	}
	// 0.43, 0.36, 0.50 running to 1.29.
	if curve[0].Day != 1 || curve[0].Cost != 0.43 {
		t.Fatalf("day 1 = %+v", curve[0])
	}
	if curve[2].Cumulative != 1.29 {
		t.Fatalf("cumulative = %v, want 1.29", curve[2].Cumulative)
	}
}
