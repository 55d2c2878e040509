package render

import (
	"fmt"

	"github.com/inkwx/epaper-weather/internal/power"
)

const statusBarShade uint8 = 0xEE

// drawStatusBar renders the bottom strip: WiFi signal on the left, the
// refresh timestamp centered, battery state on the right. A zero rssi means
// the signal reading is unavailable; zero millivolts means no battery sensor.
func (cp *Composer) drawStatusBar(refreshed string, rssi, batteryMV int) {
	cv := cp.canvas
	barY := Height - 25

	cv.FillRect(0, barY, Width, Height-barY, statusBarShade)
	cv.DrawLine(0, barY, Width, barY, Black)

	cp.drawWifiSignal(2, barY+20, rssi)

	percentage := 100
	voltage := 0.0
	if batteryMV > 0 {
		voltage = float64(batteryMV) / 1000.0
		percentage = power.BatteryPercent(batteryMV)
	}

	cv.DrawString(Width/2, barY+5, refreshed, cp.fonts.Size8, AlignCenter, Black)

	// Right-align the battery block: icon begins at x+25, text ends at
	// x+85 plus its width.
	var batStr string
	if power.Charging(batteryMV) {
		batStr = fmt.Sprintf("Charging  %.1fv", voltage)
	} else {
		batStr = fmt.Sprintf("%d%%  %.1fv", percentage, voltage)
	}
	totalWidth := 85 + StringWidth(cp.fonts.Size8, batStr)
	batteryX := Width - 2 - totalWidth
	batteryY := barY + 17

	cp.drawBatteryIcon(batteryX, batteryY, percentage, voltage)
}

// drawWifiSignal draws up to five signal bars, one per 20 dB of strength,
// with the numeric reading beside them. With no reading at all the bars are
// outlined instead of filled and marked with an x.
func (cp *Composer) drawWifiSignal(x, y, rssi int) {
	cv := cp.canvas
	height := 0
	xpos := 1
	for level := -100; level <= rssi; level += 20 {
		if level <= -20 {
			height = 20
		}
		if level <= -40 {
			height = 16
		}
		if level <= -60 {
			height = 12
		}
		if level <= -80 {
			height = 8
		}
		if level <= -100 {
			height = 4
		}
		if rssi != 0 {
			cv.FillRect(x+xpos*8, y-height, 6, height, Black)
		} else {
			cv.DrawRect(x+xpos*8, y-height, 6, height, Black)
		}
		xpos++
	}
	if rssi == 0 {
		cv.DrawString(x+28, y-18, "x", cp.fonts.Size8, AlignLeft, Black)
	} else {
		cv.DrawString(x+50, y-14, fmt.Sprintf("%d dB", rssi), cp.fonts.Size8, AlignLeft, Black)
	}
}

// drawBatteryIcon draws the battery outline, terminal, proportional fill and
// the percentage/voltage text. Above 4.2V the fill shows full regardless of
// the estimated percentage.
func (cp *Composer) drawBatteryIcon(x, y, percentage int, voltage float64) {
	cv := cp.canvas
	const (
		batWidth       = 40
		batHeight      = 15
		terminalWidth  = 4
		terminalHeight = 7
	)

	cv.DrawRect(x+25, y-14, batWidth, batHeight, Black)
	cv.FillRect(x+25+batWidth, y-14+(batHeight-terminalHeight)/2, terminalWidth, terminalHeight, Black)

	displayPct := percentage
	if voltage > 4.2 {
		displayPct = 100
	}
	if displayPct > 0 {
		fillWidth := (batWidth - 2) * displayPct / 100
		if fillWidth > 0 {
			cv.FillRect(x+27, y-12, fillWidth, batHeight-2, Black)
		}
	}

	if voltage > 4.35 {
		cv.DrawString(x+85, y-17, fmt.Sprintf("Charging  %.1fv", voltage), cp.fonts.Size8, AlignLeft, Black)
	} else {
		cv.DrawString(x+85, y-13, fmt.Sprintf("%d%%  %.1fv", percentage, voltage), cp.fonts.Size8, AlignLeft, Black)
	}
}
