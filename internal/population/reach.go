package population

import (
	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/physics"
)

// Window is the received-frequency band and the cosmic history a run covers.
type Window struct {
	FLow, FHigh float64 // received GW frequency, Hz
	MaxZ        float64
	MaxTime     float64 // Myr available since MaxZ
}

// CanContribute reports whether b can ever emit inside w. Received
// frequencies lie between emitted/(1+MaxZ) and emitted.
func (w Window) CanContribute(b BinarySystem) bool {
	if b.T0 >= w.MaxTime {
		return false
	}
	if b.ContactFrequency() < w.FLow {
		return false
	}
	if b.BirthFrequency()/(1+w.MaxZ) >= w.FHigh {
		return false
	}
	if f := b.BirthFrequency(); f < w.FLow {
		if b.T0+physics.InspiralTime(f, w.FLow, b.K) >= w.MaxTime {
			return false
		}
	}
	return true
}

// Reachable keeps the systems that can contribute to w and returns how many
// were dropped. Order is preserved.
func Reachable(systems []BinarySystem, w Window, workers int) ([]BinarySystem, int) {
	keep := make([]bool, len(systems))
	dynamo.ParallelFor(len(systems), workers, 1024, func(start, end int) {
		for i := start; i < end; i++ {
			keep[i] = w.CanContribute(systems[i])
		}
	})

	out := make([]BinarySystem, 0, len(systems))
	for i, k := range keep {
		if k {
			out = append(out, systems[i])
		}
	}
	return out, len(systems) - len(out)
}
