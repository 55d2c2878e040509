package render

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/inkwx/epaper-weather/internal/clock"
	"github.com/inkwx/epaper-weather/internal/weather"
)

// Composer lays the weather sections out on a shared canvas: current
// conditions on the left, the five-day strip top right, the 24-hour outlook
// graph below it and the status bar along the bottom edge. A Composer owns
// its canvas exclusively; frames are rendered one at a time and the returned
// image is only valid until the next frame is requested.
type Composer struct {
	canvas *Canvas
	fonts  *FontSet
	clk    *clock.Clock

	// Per-frame view state, assigned at the top of WeatherFrame.
	units weather.Units
	city  string
}

func NewComposer(fonts *FontSet, clk *clock.Clock) *Composer {
	return &Composer{
		canvas: NewCanvas(),
		fonts:  fonts,
		clk:    clk,
	}
}

// WeatherFrame renders a complete forecast frame. The refreshedAt timestamp
// feeds the status bar; rssi and batteryMV may be zero when the respective
// reading is unavailable.
func (cp *Composer) WeatherFrame(data *weather.ForecastData, units weather.Units, location string, refreshedAt int64, rssi, batteryMV int) *image.Gray {
	cp.units = units
	cp.city = cityFromLocation(location)
	cp.canvas.Clear()

	now := cp.clk.Now().Unix()

	cp.drawCurrentConditions(&data.Current)
	cp.drawForecastStrip(data.Daily)
	cp.drawLocationDate(now)
	cp.drawOutlookGraph(data.Hourly, now)

	refreshed := "Refreshed " + cp.clk.FormatTimeOfDay(refreshedAt, cp.units.Imperial())
	cp.drawStatusBar(refreshed, rssi, batteryMV)

	return cp.canvas.Image()
}

// cityFromLocation trims a "City,State,Country" string down to the city for
// the header line.
func cityFromLocation(location string) string {
	if i := strings.Index(location, ","); i >= 0 {
		return location[:i]
	}
	return location
}

func (cp *Composer) tempUnitLabel() string {
	if cp.units.Imperial() {
		return "°F"
	}
	return "°C"
}

// drawCurrentConditions renders the large icon, the observed and feels-like
// temperatures and the details column on the left side of the panel.
func (cp *Composer) drawCurrentConditions(cur *weather.ForecastRecord) {
	cv := cp.canvas
	imperial := cp.units.Imperial()

	cp.DrawConditionIcon(122, 117, cur.Icon, true)

	tempX, tempY := 240, 50
	unitStr := cp.tempUnitLabel()

	tempStr := fmt.Sprintf("%d", int(math.Round(cur.Temp)))
	cv.DrawString(tempX, tempY, tempStr, cp.fonts.Size24, AlignLeft, Black)
	cv.DrawString(tempX+StringWidth(cp.fonts.Size24, tempStr)+30, tempY-5, unitStr, cp.fonts.Size12, AlignLeft, Black)

	cv.DrawString(tempX, tempY+40, txtFeelsLike, cp.fonts.Size12, AlignLeft, Black)
	feelsStr := fmt.Sprintf("%d", int(math.Round(cur.FeelsLike)))
	cv.DrawString(tempX, tempY+70, feelsStr, cp.fonts.Size24, AlignLeft, Black)
	cv.DrawString(tempX+StringWidth(cp.fonts.Size24, feelsStr)+30, tempY+65, unitStr, cp.fonts.Size12, AlignLeft, Black)

	detailsX := 5
	gridY := 180
	const rowHeight = 65

	cv.DrawString(detailsX, gridY+12, txtSunrise, cp.fonts.Size12, AlignLeft, Black)
	cv.DrawString(detailsX, gridY+38, cp.clk.FormatTimeOfDay(cur.Sunrise, imperial), cp.fonts.Size18, AlignLeft, Black)

	gridY += rowHeight
	cv.DrawString(detailsX, gridY+12, txtSunset, cp.fonts.Size12, AlignLeft, Black)
	cv.DrawString(detailsX, gridY+38, cp.clk.FormatTimeOfDay(cur.Sunset, imperial), cp.fonts.Size18, AlignLeft, Black)

	gridY += rowHeight
	cv.DrawString(detailsX, gridY+12, txtHumidity, cp.fonts.Size12, AlignLeft, Black)
	cv.DrawString(detailsX, gridY+41, fmt.Sprintf("%d%%", int(math.Round(cur.Humidity))), cp.fonts.Size18, AlignLeft, Black)

	gridY += rowHeight
	cv.DrawString(detailsX, gridY+12, txtPressure, cp.fonts.Size12, AlignLeft, Black)
	var pressureStr string
	if imperial {
		pressureStr = fmt.Sprintf("%.1f in", cur.Pressure*0.02953)
	} else {
		pressureStr = fmt.Sprintf("%d hPa", int(math.Round(cur.Pressure)))
	}
	cv.DrawString(detailsX, gridY+38, pressureStr, cp.fonts.Size18, AlignLeft, Black)
	cp.drawTrendArrow(detailsX+StringWidth(cp.fonts.Size18, pressureStr)+15, gridY+42, cur.Trend)

	gridY += rowHeight
	cv.DrawString(detailsX, gridY+12, txtWind, cp.fonts.Size12, AlignLeft, Black)
	var windStr string
	if imperial {
		windStr = fmt.Sprintf("%d mph", int(math.Round(cur.WindSpeed)))
	} else {
		windStr = fmt.Sprintf("%d m/s", int(math.Round(cur.WindSpeed)))
	}
	cv.DrawString(detailsX, gridY+28, windStr, cp.fonts.Size18, AlignLeft, Black)
}

// drawTrendArrow marks the pressure trend beside the reading: a solid
// triangle pointing up for rising, down for falling, nothing for stable.
func (cp *Composer) drawTrendArrow(x, y int, trend weather.PressureTrend) {
	cv := cp.canvas
	switch trend {
	case weather.TrendRising:
		cv.FillTriangle(x, y+14, x+14, y+14, x+7, y, Black)
	case weather.TrendFalling:
		cv.FillTriangle(x, y, x+14, y, x+7, y+14, Black)
	}
}

// drawForecastStrip renders up to five day columns: weekday, classified
// icon, and the high|low pair.
func (cp *Composer) drawForecastStrip(daily []weather.ForecastRecord) {
	cv := cp.canvas
	const (
		forecastXStart = 385
		forecastWidth  = 115
		forecastY      = 200
	)

	days := weather.AggregateDaily(cp.clk.Location(), daily)
	for i := range days {
		d := &days[i]
		x := forecastXStart + i*forecastWidth

		f := cp.clk.LocalFields(d.Timestamp)
		cv.DrawString(x+forecastWidth/2, forecastY-110, weekdayNames[f.Weekday], cp.fonts.Size12, AlignCenter, Black)

		icon := weather.ClassifyIcon(d.CloudCover, d.MaxPop, d.Rainfall, d.Snowfall, weather.IsDayHour(f.Hour))
		cp.DrawConditionIcon(x+forecastWidth/2, forecastY-40, icon, false)

		hi := int(math.Round(d.High))
		lo := int(math.Round(d.Low))
		cv.DrawString(x+forecastWidth/2, forecastY+15, fmt.Sprintf("%d°|%d°", hi, lo), cp.fonts.Size10, AlignCenter, Black)
	}
}

// drawLocationDate renders the city and date in the top right corner.
func (cp *Composer) drawLocationDate(now int64) {
	cv := cp.canvas
	f := cp.clk.LocalFields(now)
	date := fmt.Sprintf("%s %02d %s %d", weekdayNames[f.Weekday], f.Day, monthNames[f.Month-1], f.Year)

	cv.DrawString(Width-7, 0, cp.city, cp.fonts.Size18, AlignRight, Black)
	cv.DrawString(Width-7, 42, date, cp.fonts.Size12, AlignRight, Black)
}

// LowBatteryFrame renders the warning shown before the device refuses to
// spend further charge.
func (cp *Composer) LowBatteryFrame() *image.Gray {
	return cp.centeredMessageFrame("Low Battery")
}

// ConnectionErrorFrame renders the screen shown when the network is
// unreachable.
func (cp *Composer) ConnectionErrorFrame() *image.Gray {
	return cp.centeredMessageFrame("Wifi Connection Failed")
}

func (cp *Composer) centeredMessageFrame(message string) *image.Gray {
	cp.canvas.Clear()
	cp.canvas.DrawString(Width/2, Height/2, message, cp.fonts.Size24, AlignCenter, Black)
	return cp.canvas.Image()
}

// SetupFrame renders the provisioning instructions, vertically centered.
func (cp *Composer) SetupFrame(configURL string) *image.Gray {
	cp.canvas.Clear()
	cv := cp.canvas
	centerX, centerY := Width/2, Height/2

	title := "Setup Mode"
	titleHeight := StringHeight(cp.fonts.Size24, title)

	line1 := "Connect to the same network as this device"
	line2 := fmt.Sprintf("and go to \"%s\" to configure.", configURL)
	line3 := "Or restart the device to cancel."

	lineHeight := StringHeight(cp.fonts.Size18, line1)
	lineSpacing := lineHeight + 10

	totalHeight := titleHeight + 20 + lineHeight*3 + lineSpacing*2
	startY := centerY - totalHeight/2

	cv.DrawString(centerX, startY, title, cp.fonts.Size24, AlignCenter, Black)

	lineStartY := startY + titleHeight + 20
	cv.DrawString(centerX, lineStartY, line1, cp.fonts.Size18, AlignCenter, Black)
	cv.DrawString(centerX, lineStartY+lineSpacing, line2, cp.fonts.Size18, AlignCenter, Black)
	cv.DrawString(centerX, lineStartY+lineSpacing*2+4, line3, cp.fonts.Size18, AlignCenter, Black)

	return cp.canvas.Image()
}

// InvalidLocationFrame directs the user back to setup when geocoding cannot
// resolve the configured location.
func (cp *Composer) InvalidLocationFrame() *image.Gray {
	return cp.titledMessageFrame("Invalid Location String", "Go into setup mode to correct.")
}

// InvalidKeyFrame directs the user back to setup when the API rejects the
// configured key.
func (cp *Composer) InvalidKeyFrame() *image.Gray {
	return cp.titledMessageFrame("OpenWeatherMap API Key Invalid", "Enter setup mode to enter a correct API key.")
}

// DataErrorFrame covers fetch or decode failures that exhausted the cycle's
// retry budget.
func (cp *Composer) DataErrorFrame() *image.Gray {
	return cp.titledMessageFrame("Weather Data Unavailable", "Will retry at the next scheduled refresh.")
}

func (cp *Composer) titledMessageFrame(title, body string) *image.Gray {
	cp.canvas.Clear()
	cv := cp.canvas
	centerX := Width / 2
	startY := Height / 4

	titleHeight := StringHeight(cp.fonts.Size24, title)
	cv.DrawString(centerX, startY, title, cp.fonts.Size24, AlignCenter, Black)
	cv.DrawString(centerX, startY+titleHeight+30, body, cp.fonts.Size18, AlignCenter, Black)

	return cp.canvas.Image()
}
