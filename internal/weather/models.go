package weather

// Capacities of the fixed-size forecast collections. Decoding silently drops
// source entries beyond these bounds.
const (
	MaxHourly = 48
	MaxDaily  = 8
)

// Units selects the measurement system used for API requests and display
// formatting.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Imperial reports whether 12-hour time and imperial measures apply.
func (u Units) Imperial() bool {
	return u == UnitsImperial
}

// PressureTrend is a three-valued indicator derived from comparing today's
// and tomorrow's aggregate pressure.
type PressureTrend string

const (
	TrendUnknown PressureTrend = ""
	TrendRising  PressureTrend = "rising"
	TrendFalling PressureTrend = "falling"
	TrendStable  PressureTrend = "stable"
)

// ForecastRecord is one observation or forecast period. Hourly records carry
// the instantaneous temperature in both High and Low; callers must not assume
// the two differ. Sunrise/Sunset are set on daily and current records only;
// TimezoneOffset and Trend only on the current record.
type ForecastRecord struct {
	Timestamp  int64
	Temp       float64
	FeelsLike  float64
	High       float64
	Low        float64
	Humidity   float64
	Pressure   float64
	CloudCover float64
	Visibility float64
	WindSpeed  float64
	WindDeg    float64
	Pop        float64
	Rainfall   float64
	Snowfall   float64
	Icon       Icon

	Sunrise int64
	Sunset  int64

	TimezoneOffset int
	Trend          PressureTrend
}

// ForecastData owns the three fixed-capacity collections. All three are
// overwritten wholesale on each successful fetch; no history is retained
// across wake cycles.
type ForecastData struct {
	Current ForecastRecord
	Hourly  []ForecastRecord // chronological, at most MaxHourly
	Daily   []ForecastRecord // chronological, at most MaxDaily
}

// ComputeTrend derives the pressure trend from the first two daily records.
// The delta is rounded to one decimal before classification; fewer than two
// records yields TrendUnknown so the caller leaves any prior value alone.
func ComputeTrend(daily []ForecastRecord) PressureTrend {
	if len(daily) < 2 {
		return TrendUnknown
	}
	delta := round1(daily[0].Pressure - daily[1].Pressure)
	switch {
	case delta > 0:
		return TrendRising
	case delta < 0:
		return TrendFalling
	default:
		return TrendStable
	}
}

func round1(v float64) float64 {
	if v < 0 {
		return float64(int64(v*10-0.5)) / 10
	}
	return float64(int64(v*10+0.5)) / 10
}
