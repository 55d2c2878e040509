package weather

import "time"

// MaxForecastDays bounds the number of calendar-day summaries produced for
// the forecast strip.
const MaxForecastDays = 5

// DailyAggregate is a per-calendar-day summary derived fresh on each render
// pass; it is never persisted.
type DailyAggregate struct {
	High       float64
	Low        float64
	CloudCover float64 // mean over the day's periods
	MaxPop     float64
	Rainfall   float64 // summed
	Snowfall   float64 // summed
	Timestamp  int64   // first period of the day
	DayOfYear  int
	count      int
	cloudSum   float64
}

// AggregateDaily groups an ordered sequence of forecast periods into at most
// MaxForecastDays calendar-day summaries. Grouping is by local day-of-year
// rather than calendar date so month and year boundaries cannot split or join
// days incorrectly. Input beyond the day limit is ignored, not an error.
func AggregateDaily(loc *time.Location, periods []ForecastRecord) []DailyAggregate {
	if loc == nil {
		loc = time.UTC
	}

	var days []DailyAggregate
	lastDayOfYear := -1

	for i := range periods {
		p := &periods[i]
		yday := time.Unix(p.Timestamp, 0).In(loc).YearDay()

		if yday != lastDayOfYear {
			if len(days) >= MaxForecastDays {
				break
			}
			days = append(days, DailyAggregate{
				High:      p.High,
				Low:       p.Low,
				MaxPop:    p.Pop,
				Rainfall:  p.Rainfall,
				Snowfall:  p.Snowfall,
				Timestamp: p.Timestamp,
				DayOfYear: yday,
				count:     1,
				cloudSum:  p.CloudCover,
			})
			lastDayOfYear = yday
			continue
		}

		d := &days[len(days)-1]
		if p.High > d.High {
			d.High = p.High
		}
		if p.Low < d.Low {
			d.Low = p.Low
		}
		if p.Pop > d.MaxPop {
			d.MaxPop = p.Pop
		}
		d.Rainfall += p.Rainfall
		d.Snowfall += p.Snowfall
		d.cloudSum += p.CloudCover
		d.count++
	}

	for i := range days {
		if days[i].count > 0 {
			days[i].CloudCover = days[i].cloudSum / float64(days[i].count)
		}
	}

	return days
}
