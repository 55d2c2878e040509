package render

import (
	"testing"

	"github.com/inkwx/epaper-weather/internal/weather"
)

func hourlyRecords(start int64, temps []float64) []weather.ForecastRecord {
	recs := make([]weather.ForecastRecord, len(temps))
	for i, temp := range temps {
		recs[i] = weather.ForecastRecord{
			Timestamp: start + int64(i)*3600,
			Temp:      temp,
			High:      temp,
			Low:       temp,
		}
	}
	return recs
}

func TestColumnPartition(t *testing.T) {
	for _, n := range []int{1, 5, 23, 24} {
		total := 0
		prevRight := graphX
		for i := 0; i < n; i++ {
			left := columnLeft(i, n)
			right := columnLeft(i+1, n)
			if left != prevRight {
				t.Errorf("n=%d: column %d starts at %d, previous ended at %d", n, i, left, prevRight)
			}
			if right <= left {
				t.Errorf("n=%d: column %d has non-positive width", n, i)
			}
			total += right - left
			prevRight = right
		}
		if total != graphWidth {
			t.Errorf("n=%d: columns cover %d pixels, want %d", n, total, graphWidth)
		}
		if prevRight != graphX+graphWidth {
			t.Errorf("n=%d: last column ends at %d, want %d", n, prevRight, graphX+graphWidth)
		}
	}
}

func TestSelectGraphHours(t *testing.T) {
	now := int64(1700000000)

	t.Run("keeps entries inside the window", func(t *testing.T) {
		recs := []weather.ForecastRecord{
			{Timestamp: now - 7200}, // too old
			{Timestamp: now - 3600}, // exactly one hour back
			{Timestamp: now},
			{Timestamp: now + 24*3600},     // exactly at the cutoff
			{Timestamp: now + 24*3600 + 1}, // past the cutoff
		}
		idx := selectGraphHours(recs, now)
		want := []int{1, 2, 3}
		if len(idx) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(idx))
		}
		for i := range want {
			if idx[i] != want[i] {
				t.Errorf("index %d: expected %d, got %d", i, want[i], idx[i])
			}
		}
	})

	t.Run("caps at 24 entries", func(t *testing.T) {
		recs := hourlyRecords(now, make([]float64, 48))
		idx := selectGraphHours(recs, now)
		if len(idx) != graphHours {
			t.Errorf("expected %d entries, got %d", graphHours, len(idx))
		}
	})

	t.Run("falls back to the first entry", func(t *testing.T) {
		recs := []weather.ForecastRecord{
			{Timestamp: now + 100000},
			{Timestamp: now + 200000},
		}
		idx := selectGraphHours(recs, now)
		if len(idx) != 1 || idx[0] != 0 {
			t.Errorf("expected fallback to index 0, got %v", idx)
		}
	})

	t.Run("empty input yields nothing", func(t *testing.T) {
		if idx := selectGraphHours(nil, now); len(idx) != 0 {
			t.Errorf("expected no entries, got %v", idx)
		}
	})
}

func TestGraphTempBounds(t *testing.T) {
	t.Run("pads by a tenth of the range", func(t *testing.T) {
		recs := hourlyRecords(0, []float64{10, 12, 15})
		lo, hi := graphTempBounds(recs, []int{0, 1, 2})
		if lo != 9.5 || hi != 15.5 {
			t.Errorf("expected bounds 9.5..15.5, got %v..%v", lo, hi)
		}
	})

	t.Run("flat series widens to a fixed pad", func(t *testing.T) {
		recs := hourlyRecords(0, []float64{20, 20, 20})
		lo, hi := graphTempBounds(recs, []int{0, 1, 2})
		if lo != 19.0 || hi != 21.0 {
			t.Errorf("expected bounds 19..21, got %v..%v", lo, hi)
		}
	})
}
