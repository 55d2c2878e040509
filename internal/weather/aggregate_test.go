package weather

import (
	"testing"
	"time"
)

// hourlySpan builds n consecutive hourly records starting at start, with
// temperatures cycling through temps.
func hourlySpan(start time.Time, n int, temps []float64) []ForecastRecord {
	records := make([]ForecastRecord, 0, n)
	for i := 0; i < n; i++ {
		temp := temps[i%len(temps)]
		records = append(records, ForecastRecord{
			Timestamp: start.Add(time.Duration(i) * time.Hour).Unix(),
			Temp:      temp,
			High:      temp,
			Low:       temp,
		})
	}
	return records
}

func TestAggregateDailyThreeDays(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	temps := []float64{3, 7, 12, 9, 5, -1}
	records := hourlySpan(start, 72, temps)

	days := AggregateDaily(time.UTC, records)
	if len(days) != 3 {
		t.Fatalf("expected 3 buckets for 3 distinct days, got %d", len(days))
	}

	// Each bucket's high/low must bound every source temperature of its day.
	for i, d := range days {
		for j := i * 24; j < (i+1)*24; j++ {
			if records[j].Temp > d.High {
				t.Errorf("day %d: high %v below source temp %v", i, d.High, records[j].Temp)
			}
			if records[j].Temp < d.Low {
				t.Errorf("day %d: low %v above source temp %v", i, d.Low, records[j].Temp)
			}
		}
	}
}

func TestAggregateDailyStopsAtLimit(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	records := hourlySpan(start, 8*24, []float64{10})

	days := AggregateDaily(time.UTC, records)
	if len(days) != MaxForecastDays {
		t.Fatalf("expected %d buckets, got %d", MaxForecastDays, len(days))
	}
}

func TestAggregateDailyStats(t *testing.T) {
	start := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)
	records := []ForecastRecord{
		{Timestamp: start.Unix(), High: 5, Low: 2, CloudCover: 20, Pop: 0.1, Rainfall: 0.2, Snowfall: 0},
		{Timestamp: start.Add(time.Hour).Unix(), High: 8, Low: 1, CloudCover: 40, Pop: 0.6, Rainfall: 0.3, Snowfall: 0.1},
		{Timestamp: start.Add(2 * time.Hour).Unix(), High: 6, Low: 3, CloudCover: 60, Pop: 0.4, Rainfall: 0, Snowfall: 0},
	}

	days := AggregateDaily(time.UTC, records)
	if len(days) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(days))
	}

	d := days[0]
	if d.High != 8 || d.Low != 1 {
		t.Errorf("expected high 8 low 1, got high %v low %v", d.High, d.Low)
	}
	if d.CloudCover != 40 {
		t.Errorf("expected mean cloud cover 40, got %v", d.CloudCover)
	}
	if d.MaxPop != 0.6 {
		t.Errorf("expected max pop 0.6, got %v", d.MaxPop)
	}
	if d.Rainfall != 0.5 {
		t.Errorf("expected summed rainfall 0.5, got %v", d.Rainfall)
	}
	if d.Snowfall != 0.1 {
		t.Errorf("expected summed snowfall 0.1, got %v", d.Snowfall)
	}
	if d.Timestamp != start.Unix() {
		t.Errorf("expected first-period timestamp, got %d", d.Timestamp)
	}
}

func TestAggregateDailyYearBoundary(t *testing.T) {
	// Dec 31 to Jan 1: the day-of-year changes, so two buckets must come out
	// even though the month and year both roll over.
	start := time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)
	records := hourlySpan(start, 8, []float64{0})

	days := AggregateDaily(time.UTC, records)
	if len(days) != 2 {
		t.Fatalf("expected 2 buckets across the year boundary, got %d", len(days))
	}
	if days[0].DayOfYear == days[1].DayOfYear {
		t.Errorf("expected distinct day-of-year values, got %d twice", days[0].DayOfYear)
	}
}

func TestAggregateDailyLocalDaySplit(t *testing.T) {
	// 22:00 and 23:30 UTC fall on the next local day at +3h; the bucket split
	// must follow local time, not UTC.
	loc := time.FixedZone("UTC+3", 3*3600)
	records := []ForecastRecord{
		{Timestamp: time.Date(2024, 3, 10, 19, 0, 0, 0, time.UTC).Unix(), High: 1, Low: 1},
		{Timestamp: time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC).Unix(), High: 2, Low: 2},
		{Timestamp: time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC).Unix(), High: 3, Low: 3},
	}

	days := AggregateDaily(loc, records)
	if len(days) != 2 {
		t.Fatalf("expected 2 local-day buckets, got %d", len(days))
	}
	if days[1].High != 3 || days[1].Low != 2 {
		t.Errorf("unexpected second bucket stats: %+v", days[1])
	}
}
