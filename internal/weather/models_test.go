package weather

import "testing"

func TestComputeTrend(t *testing.T) {
	cases := []struct {
		name string
		day0 float64
		day1 float64
		want PressureTrend
	}{
		{"rising", 1012.3, 1010.0, TrendRising},
		{"falling", 1008.0, 1010.0, TrendFalling},
		{"stable", 1010.0, 1010.0, TrendStable},
		{"sub-decimal delta rounds to stable", 1010.04, 1010.0, TrendStable},
		{"decimal delta rises", 1010.1, 1010.0, TrendRising},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			daily := []ForecastRecord{
				{Pressure: tc.day0},
				{Pressure: tc.day1},
			}
			if got := ComputeTrend(daily); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestComputeTrendNeedsTwoDays(t *testing.T) {
	if got := ComputeTrend([]ForecastRecord{{Pressure: 1010}}); got != TrendUnknown {
		t.Errorf("expected unknown trend with one record, got %q", got)
	}
	if got := ComputeTrend(nil); got != TrendUnknown {
		t.Errorf("expected unknown trend with no records, got %q", got)
	}
}

func TestUnitsImperial(t *testing.T) {
	if UnitsMetric.Imperial() {
		t.Error("metric must not report imperial")
	}
	if !UnitsImperial.Imperial() {
		t.Error("imperial must report imperial")
	}
}
