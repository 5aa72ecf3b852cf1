package energy

import (
	"testing"

	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
)

func reading(ts string, hchc, hchp float64) readingdomain.Reading {
	return readingdomain.Reading{Timestamp: ts, Hchc: hchc, Hchp: hchp}
}

func TestDelta(t *testing.T) {
	first := reading("2025-01-14T00:00:10Z", 1000.0, 2000.0)
	last := reading("2025-01-14T23:59:50Z", 1003.5, 2002.25)

	got := Delta(first, last)

	if got.HC != 3.5 {
		t.Fatalf("hc = %v, want 3.5", got.HC)
	}
	if got.HP != 2.25 {
		t.Fatalf("hp = %v, want 2.25", got.HP)
	}
	if got.Total != 5.75 {
		t.Fatalf("total = %v, want 5.75", got.Total)
	}
	if got.Regression {
		t.Fatal("unexpected regression flag")
	}
}

func TestDeltaRegressionIsSignedNotClamped(t *testing.T) {
	first := reading("2025-01-14T00:00:10Z", 1000.0, 2000.0)
	last := reading("2025-01-14T23:59:50Z", 998.0, 2004.0)

	got := Delta(first, last)

	if got.HC != -2.0 {
		t.Fatalf("hc = %v, want -2.0", got.HC)
	}
	if got.Total != 2.0 {
		t.Fatalf("total = %v, want 2.0", got.Total)
	}
	if !got.Regression {
		t.Fatal("expected regression flag")
	}
}

func TestFromReadingsNeedsTwo(t *testing.T) {
	if got := FromReadings(nil); got.Total != 0 {
		t.Fatalf("empty series total = %v, want 0", got.Total)
	}
	single := []readingdomain.Reading{reading("2025-01-14T12:00:00Z", 5, 5)}
	if got := FromReadings(single); got.Total != 0 {
		t.Fatalf("single reading total = %v, want 0", got.Total)
	}
}

func TestFromEdges(t *testing.T) {
	first := reading("2025-01-14T00:00:10Z", 10, 20)
	last := reading("2025-01-14T12:00:00Z", 11, 22)

	got := FromEdges(&first, &last)
	if got.Total != 3 {
		t.Fatalf("total = %v, want 3", got.Total)
	}

	if got := FromEdges(nil, &last); got.Total != 0 {
		t.Fatalf("nil first total = %v, want 0", got.Total)
	}

	same := FromEdges(&first, &first)
	if same.Total != 0 {
		t.Fatalf("single-point window total = %v, want 0", same.Total)
	}
}
