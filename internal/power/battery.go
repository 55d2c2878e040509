package power

import "math"

const (
	// DefaultLowBatteryMillivolts is the cutoff below which the device shows
	// the low-battery warning and refuses to spend charge on a refresh.
	DefaultLowBatteryMillivolts = 3200

	chargingVolts = 4.35
	fullVolts     = 4.20
	emptyVolts    = 3.20
)

// BatteryPercent maps a Li-ion cell voltage in millivolts to a charge
// percentage. Between the empty and full cutoffs the estimate follows a
// quartic fit of the typical discharge curve, which tracks the plateau far
// better than linear interpolation.
func BatteryPercent(millivolts int) int {
	v := float64(millivolts) / 1000.0
	if v >= fullVolts {
		return 100
	}
	if v <= emptyVolts {
		return 0
	}
	p := 2836.9625*math.Pow(v, 4) - 43987.4889*math.Pow(v, 3) +
		255233.8134*math.Pow(v, 2) - 656689.7123*v + 632041.7303
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return int(p)
}

// Charging reports whether the measured voltage can only be explained by an
// attached charger.
func Charging(millivolts int) bool {
	return float64(millivolts)/1000.0 > chargingVolts
}
