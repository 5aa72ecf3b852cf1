// Package energy computes consumption deltas from the cumulative HC/HP
// meter indices.
package energy

import (
	"math"

	indicatordomain "github.com/orwelltherazer/statelec/internal/indicator/domain"
	readingdomain "github.com/orwelltherazer/statelec/internal/reading/domain"
)

// Delta returns the consumption between two readings of the same meter.
// The delta is the true signed difference: a negative component marks a
// counter regression and sets the Regression flag instead of being clamped,
// leaving the policy to the caller.
func Delta(first, last readingdomain.Reading) indicatordomain.EnergyDelta {
	hc := round2(last.Hchc - first.Hchc)
	hp := round2(last.Hchp - first.Hchp)
	return indicatordomain.EnergyDelta{
		HC:         hc,
		HP:         hp,
		Total:      round2(hc + hp),
		Regression: hc < 0 || hp < 0,
	}
}

// FromReadings computes the delta over an ordered sequence. Zero or one
// reading yields an all-zero delta; consumption is never inferred from
// outside the window.
func FromReadings(readings []readingdomain.Reading) indicatordomain.EnergyDelta {
	if len(readings) < 2 {
		return indicatordomain.EnergyDelta{}
	}
	return Delta(readings[0], readings[len(readings)-1])
}

// FromEdges computes the delta from the first and last reading of a range
// query. Either edge missing yields an all-zero delta.
func FromEdges(first, last *readingdomain.Reading) indicatordomain.EnergyDelta {
	if first == nil || last == nil {
		return indicatordomain.EnergyDelta{}
	}
	if first.Timestamp == last.Timestamp {
		return indicatordomain.EnergyDelta{}
	}
	return Delta(*first, *last)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
