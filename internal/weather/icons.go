package weather

import "strings"

// Icon is an OpenWeatherMap-style icon code: two digits plus a "d"/"n"
// day/night suffix, e.g. "01d" or "10n".
type Icon string

// Base icon codes. Overcast deliberately reuses the broken-clouds code; there
// is no distinct asset for it.
const (
	iconClear     = "01"
	iconFew       = "02"
	iconScattered = "03"
	iconBroken    = "04"
	iconShower    = "09"
	iconRain      = "10"
	iconThunder   = "11"
	iconSnow      = "13"
	iconMist      = "50"
)

// Night reports whether the icon carries the night suffix.
func (i Icon) Night() bool {
	return strings.HasSuffix(string(i), "n")
}

// Base returns the two-digit code without the day/night suffix.
func (i Icon) Base() string {
	s := string(i)
	if len(s) < 2 {
		return s
	}
	return s[:2]
}

// conditionStats carries the aggregated inputs of the icon decision.
type conditionStats struct {
	CloudCover float64
	MaxPop     float64
	Rainfall   float64
	Snowfall   float64
}

// iconRule pairs a predicate with the base code it selects. Rules are
// evaluated in priority order and the first match wins.
type iconRule struct {
	match func(s conditionStats) bool
	code  string
}

var iconRules = []iconRule{
	{func(s conditionStats) bool { return s.Snowfall > 0.5 }, iconSnow},
	{func(s conditionStats) bool { return s.MaxPop > 0.5 || s.Rainfall > 2.0 }, iconThunder},
	{func(s conditionStats) bool { return s.MaxPop > 0.3 || s.Rainfall > 0.5 }, iconRain},
	{func(s conditionStats) bool { return s.CloudCover <= 10 }, iconClear},
	{func(s conditionStats) bool { return s.CloudCover <= 25 }, iconFew},
	{func(s conditionStats) bool { return s.CloudCover <= 50 }, iconScattered},
	{func(s conditionStats) bool { return s.CloudCover <= 75 }, iconBroken},
	{func(s conditionStats) bool { return true }, iconBroken},
}

// ClassifyIcon maps aggregated day statistics to an icon code. Snow wins over
// everything, then thunderstorm, then rain, then the cloud-cover buckets.
func ClassifyIcon(cloudCover, maxPop, rainfall, snowfall float64, isDay bool) Icon {
	s := conditionStats{
		CloudCover: cloudCover,
		MaxPop:     maxPop,
		Rainfall:   rainfall,
		Snowfall:   snowfall,
	}
	suffix := "n"
	if isDay {
		suffix = "d"
	}
	for _, r := range iconRules {
		if r.match(s) {
			return Icon(r.code + suffix)
		}
	}
	return Icon(iconBroken + suffix)
}

// IsDayHour reports whether a local hour gets day icons: [6,18).
func IsDayHour(hour int) bool {
	return hour >= 6 && hour < 18
}

// windOrdinals lists the 16 compass labels clockwise from north.
var windOrdinals = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindOrdinal converts a wind direction in degrees to its 16-sector compass
// label. Sectors are 22.5 degrees wide and centred on the labels, so north
// spans [348.75, 11.25).
func WindOrdinal(deg float64) string {
	if deg < 0 || deg >= 360 {
		deg = deg - 360*float64(int(deg/360))
		if deg < 0 {
			deg += 360
		}
	}
	if deg >= 348.75 {
		return windOrdinals[0]
	}
	idx := int((deg + 11.25) / 22.5)
	if idx < 0 || idx >= len(windOrdinals) {
		return windOrdinals[0]
	}
	return windOrdinals[idx]
}
