package render

import (
	"fmt"

	"github.com/inkwx/epaper-weather/internal/weather"
)

// Outlook graph geometry. The chart sits below the forecast strip and spans
// the right-hand side of the panel.
const (
	graphX      = 240
	graphY      = 255
	graphWidth  = 665
	graphHeight = 230
	graphHours  = 24

	graphBarShade uint8 = 0xDD
)

// selectGraphHours returns the indices of hourly entries falling inside the
// graph window: one hour in the past (so the running hour keeps its column)
// through 24 hours ahead, capped at 24 entries. If nothing qualifies but the
// collection is non-empty, the first entry alone is kept so the chart
// degenerates to a single column instead of vanishing.
func selectGraphHours(hourly []weather.ForecastRecord, now int64) []int {
	cutoff := now + graphHours*3600
	var idx []int
	for i := range hourly {
		if len(idx) >= graphHours {
			break
		}
		ts := hourly[i].Timestamp
		if ts >= now-3600 && ts <= cutoff {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 && len(hourly) > 0 {
		idx = []int{0}
	}
	return idx
}

// graphTempBounds computes the padded vertical scale for the temperature
// line. A raw span under one degree is widened to a fixed ten-degree span so
// a flat day does not produce a degenerate axis.
func graphTempBounds(hourly []weather.ForecastRecord, idx []int) (float64, float64) {
	tempMin := hourly[idx[0]].Temp
	tempMax := tempMin
	for _, i := range idx {
		if hourly[i].Temp < tempMin {
			tempMin = hourly[i].Temp
		}
		if hourly[i].Temp > tempMax {
			tempMax = hourly[i].Temp
		}
	}

	tempRange := tempMax - tempMin
	if tempRange < 1.0 {
		tempRange = 10.0
	}
	tempMin -= tempRange * 0.1
	tempMax += tempRange * 0.1
	return tempMin, tempMax
}

// columnLeft returns the left pixel edge of column i when n columns partition
// the graph width. Column i ends where column i+1 begins, and the edge of
// column n is the right border of the chart, so the columns tile the full
// width with no gap or overlap.
func columnLeft(i, n int) int {
	if i >= n {
		return graphX + graphWidth
	}
	return graphX + i*graphWidth/n
}

// drawOutlookGraph renders the 24-hour chart: precipitation-probability bars
// on a fixed 0-100% right axis underneath a temperature line on a padded
// left axis. Nothing is drawn when the hourly collection is empty.
func (cp *Composer) drawOutlookGraph(hourly []weather.ForecastRecord, now int64) {
	cv := cp.canvas

	idx := selectGraphHours(hourly, now)
	if len(idx) == 0 {
		return
	}
	n := len(idx)

	tempMin, tempMax := graphTempBounds(hourly, idx)

	// Top and bottom borders only; vertical axis lines are omitted.
	cv.DrawHLine(graphX, graphY, graphWidth, Black)
	cv.DrawHLine(graphX, graphY+graphHeight, graphWidth, Black)

	// Left axis: temperature labels with full-width gridlines.
	const numTicks = 5
	unitLabel := "°C"
	if cp.units.Imperial() {
		unitLabel = "°F"
	}
	for i := 0; i <= numTicks; i++ {
		val := tempMin + (tempMax-tempMin)*float64(i)/numTicks
		y := graphY + graphHeight - i*graphHeight/numTicks
		cv.DrawString(graphX-15, y, fmt.Sprintf("%.0f%s", val, unitLabel), cp.fonts.Size8, AlignRight, Black)
		cv.DrawHLine(graphX, y, graphWidth, Grey)
	}

	// Right axis: precipitation percentage labels, no gridlines of their own.
	for i := 0; i <= numTicks; i++ {
		y := graphY + graphHeight - i*graphHeight/numTicks
		cv.DrawString(graphX+graphWidth+15, y, fmt.Sprintf("%d%%", 100*i/numTicks), cp.fonts.Size8, AlignLeft, Black)
	}

	// Bars first so the temperature line stays on top.
	for i, id := range idx {
		pct := hourly[id].Pop * 100
		if pct > 100 {
			pct = 100
		}
		if pct < 0 {
			pct = 0
		}
		barX := columnLeft(i, n)
		barWidth := columnLeft(i+1, n) - barX
		barHeight := int(pct / 100 * graphHeight)
		if barHeight > 0 {
			cv.FillRect(barX, graphY+graphHeight-barHeight, barWidth, barHeight, graphBarShade)
		}
	}

	// Temperature line, 2px thick via a twin line shifted right by one.
	if n > 1 {
		for i := 0; i < n-1; i++ {
			x1 := columnLeft(i, n)
			y1 := graphY + graphHeight - int((hourly[idx[i]].Temp-tempMin)/(tempMax-tempMin)*graphHeight)
			x2 := columnLeft(i+1, n)
			y2 := graphY + graphHeight - int((hourly[idx[i+1]].Temp-tempMin)/(tempMax-tempMin)*graphHeight)
			cv.DrawLine(x1, y1, x2, y2, Black)
			cv.DrawLine(x1+1, y1, x2+1, y2, Black)
		}
	}

	// Time-of-day labels along the bottom, roughly every six hours.
	interval := n / 4
	if interval < 1 {
		interval = 1
	}
	for i := 0; i < n; i += interval {
		x := columnLeft(i, n)
		label := cp.clk.FormatHour(hourly[idx[i]].Timestamp, cp.units.Imperial())
		cv.DrawString(x, graphY+graphHeight+15, label, cp.fonts.Size8, AlignCenter, Black)
	}
}
