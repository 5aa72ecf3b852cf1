package period

import (
	"testing"
	"time"

	indicatordomain "github.com/orwelltherazer/statelec/internal/indicator/domain"
)

func TestResolveDayCrossesUTCBoundary(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	// 23:30 UTC on Jan 14 is already Jan 15 local.
	now := time.Date(2025, time.January, 14, 23, 30, 0, 0, time.UTC)

	p := Resolve(indicatordomain.PeriodDay, now, loc)

	wantStart := time.Date(2025, time.January, 14, 23, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.January, 15, 22, 59, 59, 0, time.UTC)
	if !p.Start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", p.Start, wantStart)
	}
	if !p.End.Equal(wantEnd) {
		t.Fatalf("end = %v, want %v", p.End, wantEnd)
	}
}

func TestResolveWeekStartsMonday(t *testing.T) {
	// Wednesday.
	now := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

	p := Resolve(indicatordomain.PeriodWeek, now, time.UTC)

	wantStart := time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.January, 19, 23, 59, 59, 0, time.UTC)
	if !p.Start.Equal(wantStart) || !p.End.Equal(wantEnd) {
		t.Fatalf("week = [%v, %v], want [%v, %v]", p.Start, p.End, wantStart, wantEnd)
	}
	if p.Start.Weekday() != time.Monday {
		t.Fatalf("week starts on %v, want Monday", p.Start.Weekday())
	}
}

func TestResolveWeekOnSunday(t *testing.T) {
	// A Sunday must still belong to the week that started the previous Monday.
	now := time.Date(2025, time.January, 19, 8, 0, 0, 0, time.UTC)

	p := Resolve(indicatordomain.PeriodWeek, now, time.UTC)

	wantStart := time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC)
	if !p.Start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", p.Start, wantStart)
	}
}

func TestResolveMonthCoversFullMonth(t *testing.T) {
	now := time.Date(2024, time.February, 10, 12, 0, 0, 0, time.UTC)

	p := Resolve(indicatordomain.PeriodMonth, now, time.UTC)

	wantEnd := time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)
	if !p.End.Equal(wantEnd) {
		t.Fatalf("leap february end = %v, want %v", p.End, wantEnd)
	}
}

func TestResolveUnknownTokenDefaultsToDay(t *testing.T) {
	now := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

	got := Resolve("annee", now, time.UTC)
	want := Resolve(indicatordomain.PeriodDay, now, time.UTC)
	if !got.Start.Equal(want.Start) || !got.End.Equal(want.End) {
		t.Fatalf("unknown token window = [%v, %v], want day window", got.Start, got.End)
	}
}

func TestPreviousMonthFromShortMonth(t *testing.T) {
	// March 31 minus one calendar month must land in February, not skip it.
	now := time.Date(2025, time.March, 31, 12, 0, 0, 0, time.UTC)

	p := Previous(indicatordomain.PeriodMonth, now, time.UTC)

	wantStart := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.February, 28, 23, 59, 59, 0, time.UTC)
	if !p.Start.Equal(wantStart) || !p.End.Equal(wantEnd) {
		t.Fatalf("previous month = [%v, %v], want february", p.Start, p.End)
	}
}

func TestDays(t *testing.T) {
	now := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)

	if got := Days(indicatordomain.PeriodDay, now, time.UTC); got != 1 {
		t.Fatalf("day = %d, want 1", got)
	}
	if got := Days(indicatordomain.PeriodWeek, now, time.UTC); got != 7 {
		t.Fatalf("week = %d, want 7", got)
	}
	if got := Days(indicatordomain.PeriodMonth, now, time.UTC); got != 30 {
		t.Fatalf("april = %d, want 30", got)
	}
}
