package weather

import "testing"

func TestClassifyIconPriority(t *testing.T) {
	cases := []struct {
		name       string
		cloudCover float64
		maxPop     float64
		rainfall   float64
		snowfall   float64
		isDay      bool
		want       Icon
	}{
		{"snow wins over clear sky", 5, 0.1, 0, 0.6, true, "13d"},
		{"snow at night", 90, 0.9, 5, 1.2, false, "13n"},
		{"thunderstorm by pop", 30, 0.6, 0, 0, true, "11d"},
		{"thunderstorm by heavy rain", 30, 0.1, 2.5, 0, true, "11d"},
		{"rain by pop", 30, 0.4, 0, 0, true, "10d"},
		{"rain by light rain", 30, 0.1, 0.6, 0, false, "10n"},
		{"clear", 10, 0.1, 0, 0, true, "01d"},
		{"few clouds", 25, 0, 0, 0, true, "02d"},
		{"scattered clouds", 50, 0, 0, 0, true, "03d"},
		{"broken clouds", 75, 0, 0, 0, true, "04d"},
		{"overcast reuses broken clouds", 100, 0, 0, 0, true, "04d"},
		{"overcast at night", 100, 0, 0, 0, false, "04n"},
		{"snowfall at threshold is not snow", 5, 0, 0, 0.5, true, "01d"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyIcon(tc.cloudCover, tc.maxPop, tc.rainfall, tc.snowfall, tc.isDay)
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestIsDayHour(t *testing.T) {
	if IsDayHour(5) {
		t.Error("5:00 should be night")
	}
	if !IsDayHour(6) {
		t.Error("6:00 should be day")
	}
	if !IsDayHour(17) {
		t.Error("17:00 should be day")
	}
	if IsDayHour(18) {
		t.Error("18:00 should be night")
	}
}

func TestIconHelpers(t *testing.T) {
	if !Icon("01n").Night() {
		t.Error("01n should be a night icon")
	}
	if Icon("01d").Night() {
		t.Error("01d should be a day icon")
	}
	if Icon("13d").Base() != "13" {
		t.Errorf("expected base 13, got %q", Icon("13d").Base())
	}
}

func TestWindOrdinal(t *testing.T) {
	cases := []struct {
		deg  float64
		want string
	}{
		{0, "N"},
		{11.24, "N"},
		{11.25, "NNE"},
		{45, "NE"},
		{90, "E"},
		{180, "S"},
		{270, "W"},
		{326.25, "NNW"},
		{348.74, "NNW"},
		{348.75, "N"},
		{359.9, "N"},
	}
	for _, tc := range cases {
		if got := WindOrdinal(tc.deg); got != tc.want {
			t.Errorf("deg %v: expected %q, got %q", tc.deg, tc.want, got)
		}
	}
}
