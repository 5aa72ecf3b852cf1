package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orwelltherazer/statelec/internal/cache"
	"github.com/orwelltherazer/statelec/internal/clock"
	"github.com/orwelltherazer/statelec/internal/config"
	indicatordomain "github.com/orwelltherazer/statelec/internal/indicator/domain"
	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
	readingrepository "github.com/orwelltherazer/statelec/internal/reading/repository"
	settingsdomain "github.com/orwelltherazer/statelec/internal/settings/domain"
	settingsservice "github.com/orwelltherazer/statelec/internal/settings/service"
)

type fixture struct {
	svc      indicatordomain.Service
	readings readingdomain.Repository
	db       *gorm.DB
	now      time.Time
}

// Wednesday 2025-01-15 noon.
var testNow = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&readingdomain.Reading{}, &settingsdomain.Setting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	readings := readingrepository.NewRepository(readingrepository.RepositoryParam{DB: db, Log: zap.NewNop()})
	settings := settingsservice.NewService(settingsservice.ServiceParam{
		DB:          db,
		Log:         zap.NewNop(),
		TariffCache: cache.NewTTLCache[string, settingsdomain.TariffConfig](),
	})

	svc := NewService(ServiceParam{
		Log:      zap.NewNop(),
		Readings: readings,
		Settings: settings,
		Clock:    clock.Fixed(testNow),
		Cfg:      config.Config{Timezone: "UTC"},
	})

	return &fixture{svc: svc, readings: readings, db: db, now: testNow}
}

func (f *fixture) insert(t *testing.T, at time.Time, papp int, hchc, hchp float64) {
	t.Helper()
	err := f.readings.Upsert(context.Background(), &readingdomain.Reading{
		Timestamp: readingdomain.FormatTime(at),
		Papp:      papp,
		Hchc:      hchc,
		Hchp:      hchp,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestGetAllIndicatorsDay(t *testing.T) {
	f := setup(t)
	f.insert(t, f.now.Add(-2*time.Hour), 1000, 100, 200)
	f.insert(t, f.now.Add(-115*time.Minute), 2000, 101, 202)

	got := f.svc.GetAllIndicators(context.Background(), indicatordomain.PeriodDay)

	if got.RawMeasures.InstantPower != 2000 {
		t.Fatalf("instant power = %d, want 2000", got.RawMeasures.InstantPower)
	}
	if got.RawMeasures.MaxPower[indicatordomain.PeriodDay] != 2000 {
		t.Fatalf("day max = %d, want 2000", got.RawMeasures.MaxPower[indicatordomain.PeriodDay])
	}

	energy := got.RawMeasures.Energy[indicatordomain.PeriodDay]
	if energy.HC != 1 || energy.HP != 2 || energy.Total != 3 {
		t.Fatalf("day energy = %+v, want 1/2/3", energy)
	}
	if energy.Regression {
		t.Fatal("unexpected regression")
	}

	// Two readings five minutes apart fall into distinct 5-minute buckets.
	if len(got.RawMeasures.Curve) != 2 {
		t.Fatalf("curve points = %d, want 2", len(got.RawMeasures.Curve))
	}

	if len(got.Events.PowerJumps) != 1 {
		t.Fatalf("jumps = %d, want 1", len(got.Events.PowerJumps))
	}
	if got.Events.PowerJumps[0].Delta != 1000 {
		t.Fatalf("jump delta = %d, want 1000", got.Events.PowerJumps[0].Delta)
	}

	// Both readings sit in hour 10: the only loaded hour of the profile.
	profile := got.TemporalStats.DailyProfile
	if len(profile) != 24 {
		t.Fatalf("profile hours = %d, want 24", len(profile))
	}
	if profile[10].AvgPower != 1500 || profile[10].MaxPower != 2000 || profile[10].MinPower != 1000 {
		t.Fatalf("hour 10 = %+v", profile[10])
	}
	if len(got.TemporalStats.PeakHours.Peak) != 3 || got.TemporalStats.PeakHours.Peak[0] != 10 {
		t.Fatalf("peak hours = %v, want hour 10 first", got.TemporalStats.PeakHours.Peak)
	}

	if got.TemporalStats.Comparison.Current != 3 || got.TemporalStats.Comparison.VariationPercent != 0 {
		t.Fatalf("comparison = %+v, want current 3, variation 0 without history", got.TemporalStats.Comparison)
	}

	if got.Wastage.StandbyFloor != 1500 {
		t.Fatalf("standby floor = %d, want 1500", got.Wastage.StandbyFloor)
	}
	if got.Wastage.WeekendGap.GapPercent != nil {
		t.Fatal("gap percent must be nil without weekend data")
	}

	// 1 kWh HC + 2 kWh HP at default tariffs.
	if got.Cost.Periods[indicatordomain.PeriodDay] != 0.67 {
		t.Fatalf("day cost = %v, want 0.67", got.Cost.Periods[indicatordomain.PeriodDay])
	}
	if got.Cost.Tariffs.PriceHC != 0.1821 {
		t.Fatalf("tariffs = %+v, want defaults", got.Cost.Tariffs)
	}
	if len(got.Cost.Curve) != 15 {
		t.Fatalf("cost curve days = %d, want 15 (day of month)", len(got.Cost.Curve))
	}
}

func TestGetAllIndicatorsUnknownTokenFallsBackToDay(t *testing.T) {
	f := setup(t)
	f.insert(t, f.now.Add(-1*time.Hour), 1000, 100, 200)
	f.insert(t, f.now.Add(-30*time.Minute), 1000, 101, 201)

	got := f.svc.GetAllIndicators(context.Background(), "annee")

	if got.RawMeasures.Energy[indicatordomain.PeriodDay].Total != 2 {
		t.Fatalf("day energy = %+v", got.RawMeasures.Energy[indicatordomain.PeriodDay])
	}
}

func TestGetAllIndicatorsEmptyStore(t *testing.T) {
	f := setup(t)

	got := f.svc.GetAllIndicators(context.Background(), indicatordomain.PeriodDay)

	if got.RawMeasures.InstantPower != 0 || got.RawMeasures.LastTimestamp != "" {
		t.Fatalf("raw measures = %+v, want zeros", got.RawMeasures)
	}
	if got.RawMeasures.Energy[indicatordomain.PeriodMonth].Total != 0 {
		t.Fatal("month energy must be zero")
	}
	if got.Cost.Tariffs != settingsdomain.DefaultTariffs() {
		t.Fatalf("tariffs = %+v, want defaults", got.Cost.Tariffs)
	}
}

func TestGetAllIndicatorsDegradesWhenStoreUnavailable(t *testing.T) {
	f := setup(t)
	sqlDB, err := f.db.DB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := f.svc.GetAllIndicators(context.Background(), indicatordomain.PeriodDay)

	want := indicatordomain.Empty()
	if got.RawMeasures.InstantPower != want.RawMeasures.InstantPower {
		t.Fatalf("instant power = %d, want empty default", got.RawMeasures.InstantPower)
	}
	if len(got.RawMeasures.Curve) != 0 {
		t.Fatalf("curve = %d points, want 0", len(got.RawMeasures.Curve))
	}
	if got.Cost.Tariffs != settingsdomain.DefaultTariffs() {
		t.Fatalf("tariffs = %+v, want defaults survive degradation", got.Cost.Tariffs)
	}
}

func TestRegressionFlagSurfaces(t *testing.T) {
	f := setup(t)
	f.insert(t, f.now.Add(-2*time.Hour), 1000, 100, 200)
	f.insert(t, f.now.Add(-1*time.Hour), 1000, 95, 201)

	got := f.svc.GetAllIndicators(context.Background(), indicatordomain.PeriodDay)

	energy := got.RawMeasures.Energy[indicatordomain.PeriodDay]
	if !energy.Regression {
		t.Fatal("expected regression flag")
	}
	if energy.HC != -5 {
		t.Fatalf("hc = %v, want -5 (signed, not clamped)", energy.HC)
	}
}

func TestDailyCostReport(t *testing.T) {
	f := setup(t)
	day1 := time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, time.January, 14, 0, 0, 0, 0, time.UTC)

	f.insert(t, day1.Add(8*time.Hour), 1000, 100, 200)
	f.insert(t, day1.Add(20*time.Hour), 1000, 101, 202)
	f.insert(t, day2.Add(8*time.Hour), 1000, 101, 202)
	f.insert(t, day2.Add(20*time.Hour), 1000, 103, 203)

	report := f.svc.DailyCostReport(context.Background())

	if len(report.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(report.Rows))
	}
	if report.Rows[0].Date != "2025-01-13" || report.Rows[1].Date != "2025-01-14" {
		t.Fatalf("dates = %s, %s", report.Rows[0].Date, report.Rows[1].Date)
	}
	if report.Rows[0].Total != 3 {
		t.Fatalf("day 1 total = %v, want 3", report.Rows[0].Total)
	}
	if report.Rows[1].HC != 2 || report.Rows[1].HP != 1 {
		t.Fatalf("day 2 split = %v/%v, want 2/1", report.Rows[1].HC, report.Rows[1].HP)
	}
	if report.TotalCost <= 0 || report.AverageDailyCost <= 0 {
		t.Fatalf("totals = %v / %v, want positive", report.TotalCost, report.AverageDailyCost)
	}
}

func TestDailyCostReportEmptyStore(t *testing.T) {
	f := setup(t)

	report := f.svc.DailyCostReport(context.Background())

	if len(report.Rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(report.Rows))
	}
	if report.TotalCost != 0 {
		t.Fatalf("total = %v, want 0", report.TotalCost)
	}
}
