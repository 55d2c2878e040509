package render

import (
	"github.com/inkwx/epaper-weather/internal/weather"
)

// Icon scale constants: large for current conditions, small for the
// forecast strip.
const (
	iconLarge = 25
	iconSmall = 15
)

// DrawConditionIcon draws the composed icon for an OpenWeatherMap icon code
// centered around (x, y). Unknown codes fall back to a question mark.
func (cp *Composer) DrawConditionIcon(x, y int, icon weather.Icon, large bool) {
	night := icon.Night()
	switch icon.Base() {
	case "01":
		cp.iconClearSky(x, y, large, night)
	case "02":
		cp.iconFewClouds(x, y, large, night)
	case "03":
		cp.iconScatteredClouds(x, y, large, night)
	case "04":
		cp.iconBrokenClouds(x, y, large, night)
	case "09":
		cp.iconChanceRain(x, y, large, night)
	case "10":
		cp.iconRain(x, y, large, night)
	case "11":
		cp.iconThunderstorms(x, y, large, night)
	case "13":
		cp.iconSnow(x, y, large, night)
	case "50":
		cp.iconMist(x, y, large, night)
	default:
		cp.iconNoData(x, y, large)
	}
}

func iconScale(large bool) int {
	if large {
		return iconLarge
	}
	return iconSmall
}

// The icon building blocks below compose filled and cleared primitives the
// same way the panel's shape routines stack them, so coordinates are kept as
// floats until the final pixel position.

func (cp *Composer) addCloud(x, y, scale, linesize int) {
	cv := cp.canvas
	xf, yf, s := float64(x), float64(y), float64(scale)

	cv.FillCircle(x-scale*3, y, scale, Black)
	cv.FillCircle(x+scale*3, y, scale, Black)
	cv.FillCircle(x-scale, y-scale, int(s*1.4), Black)
	cv.FillCircle(int(xf+s*1.5), int(yf-s*1.3), int(s*1.75), Black)
	cv.FillRect(x-scale*3-1, y-scale, scale*6, scale*2+1, Black)
	cv.FillCircle(x-scale*3, y, scale-linesize, White)
	cv.FillCircle(x+scale*3, y, scale-linesize, White)
	cv.FillCircle(x-scale, y-scale, int(s*1.4-float64(linesize)), White)
	cv.FillCircle(int(xf+s*1.5), int(yf-s*1.3), int(s*1.75-float64(linesize)), White)
	cv.FillRect(x-scale*3+2, y-scale+linesize-1, int(s*5.9), scale*2-linesize*2+2, White)
}

func (cp *Composer) addRain(x, y int, large bool) {
	if large {
		cp.canvas.DrawString(x-60, y+25, "///////", cp.fonts.Size18, AlignLeft, Black)
	} else {
		cp.canvas.DrawString(x-25, y+12, "///////", cp.fonts.Size8, AlignLeft, Black)
	}
}

func (cp *Composer) addSnow(x, y int, large bool) {
	if large {
		cp.canvas.DrawString(x-60, y+30, "* * * *", cp.fonts.Size18, AlignLeft, Black)
	} else {
		cp.canvas.DrawString(x-25, y+15, "* * * *", cp.fonts.Size8, AlignLeft, Black)
	}
}

func (cp *Composer) addThunderstorm(x, y, scale int) {
	cv := cp.canvas
	y += scale / 2
	xf, yf, s := float64(x), float64(y), float64(scale)

	for i := 1; i < 5; i++ {
		fi := float64(i)
		for k := 0; k < 3; k++ {
			cv.DrawLine(int(xf-s*4+s*fi*1.5)+k, int(yf+s*1.5),
				int(xf-s*3.5+s*fi*1.5)+k, y+scale, Black)
		}
		for k := 0; k < 3; k++ {
			cv.DrawLine(int(xf-s*4+s*fi*1.5), int(yf+s*1.5)+k,
				int(xf-s*3+s*fi*1.5), int(yf+s*1.5)+k, Black)
		}
		for k := 0; k < 3; k++ {
			cv.DrawLine(int(xf-s*3.5+s*fi*1.4)+k, int(yf+s*2.5),
				int(xf-s*3+s*fi*1.5)+k, int(yf+s*1.5), Black)
		}
	}
}

func (cp *Composer) addSun(x, y, scale int) {
	cv := cp.canvas
	const linesize = 5
	xf, yf, s := float64(x), float64(y), float64(scale)

	cv.FillRect(x-scale*2, y, scale*4, linesize, Black)
	cv.FillRect(x, y-scale*2, linesize, scale*4, Black)
	cv.DrawAngledLine(int(xf+s*1.4), int(yf+s*1.4), int(xf-s*1.4), int(yf-s*1.4), linesize*3/2, Black)
	cv.DrawAngledLine(int(xf-s*1.4), int(yf+s*1.4), int(xf+s*1.4), int(yf-s*1.4), linesize*3/2, Black)
	cv.FillCircle(x, y, int(s*1.3), White)
	cv.FillCircle(x, y, scale, Black)
	cv.FillCircle(x, y, scale-linesize, White)
}

func (cp *Composer) addFog(x, y, scale, linesize int, large bool) {
	cv := cp.canvas
	if !large {
		linesize = 3
	}
	yf, s := float64(y), float64(scale)

	cv.FillRect(x-scale*3, int(yf+s*1.5), scale*6, linesize, Black)
	cv.FillRect(x-scale*3, int(yf+s*2.0), scale*6, linesize, Black)
	cv.FillRect(x-scale*3, int(yf+s*2.5), scale*6, linesize, Black)
}

func (cp *Composer) addMoon(x, y int, large bool) {
	cv := cp.canvas
	xOffset, yOffset := 65, 12
	if large {
		xOffset, yOffset = 130, -40
	}
	cv.FillCircle(x-28+xOffset, y-37+yOffset, iconSmall, Black)
	cv.FillCircle(x-16+xOffset, y-37+yOffset, int(float64(iconSmall)*1.6), White)
}

func (cp *Composer) iconClearSky(x, y int, large, night bool) {
	if night {
		cp.addMoon(x, y, large)
	}
	scale := iconScale(large)
	if !large {
		y += 10
	}
	mult := 1.2
	if large {
		mult = 1.7
	}
	cp.addSun(x, y, int(float64(scale)*mult))
}

func (cp *Composer) iconFewClouds(x, y int, large, night bool) {
	if night {
		cp.addMoon(x, y, large)
	}
	y += 15
	scale := iconScale(large)
	s := float64(scale)
	dx, mult := 0, 0.8
	if large {
		dx, mult = 10, 0.9
	}
	cp.addCloud(x+dx, y, int(s*mult), 5)
	cp.addSun(int(float64(x+dx)-s*1.8), int(float64(y)-s*1.6), scale)
}

func (cp *Composer) iconScatteredClouds(x, y int, large, night bool) {
	if night {
		cp.addMoon(x, y, large)
	}
	y += 15
	scale := iconScale(large)
	offX, yMult := 0, 0.93
	if large {
		offX, yMult = 35, 0.75
	}
	cp.addCloud(x-offX, int(float64(y)*yMult), scale/2, 5)
	cp.addCloud(x, y, int(float64(scale)*0.9), 5)
}

func (cp *Composer) iconBrokenClouds(x, y int, large, night bool) {
	if night {
		cp.addMoon(x, y, large)
	}
	y += 15
	scale := iconScale(large)
	s := float64(scale)
	mult := 0.75
	if large {
		mult = 1
	}
	cp.addSun(int(float64(x)-s*1.8), int(float64(y)-s*1.8), scale)
	cp.addCloud(x, y, int(s*mult), 5)
}

func (cp *Composer) iconChanceRain(x, y int, large, night bool) {
	if night {
		cp.addMoon(x, y, large)
	}
	scale := iconScale(large)
	s := float64(scale)
	y += 15
	mult := 0.65
	if large {
		mult = 1
	}
	cp.addSun(int(float64(x)-s*1.8), int(float64(y)-s*1.8), scale)
	cp.addCloud(x, y, int(s*mult), 5)
	cp.addRain(x, y, large)
}

func (cp *Composer) iconRain(x, y int, large, night bool) {
	if night {
		cp.addMoon(x, y, large)
	}
	y += 15
	scale := iconScale(large)
	mult := 0.75
	if large {
		mult = 1
	}
	cp.addCloud(x, y, int(float64(scale)*mult), 5)
	cp.addRain(x, y, large)
}

func (cp *Composer) iconThunderstorms(x, y int, large, night bool) {
	if night {
		cp.addMoon(x, y, large)
	}
	scale := iconScale(large)
	y += 5
	mult := 0.75
	if large {
		mult = 1
	}
	cp.addCloud(x, y, int(float64(scale)*mult), 5)
	cp.addThunderstorm(x, y, scale)
}

func (cp *Composer) iconSnow(x, y int, large, night bool) {
	if night {
		cp.addMoon(x, y, large)
	}
	scale := iconScale(large)
	mult := 0.75
	if large {
		mult = 1
	}
	cp.addCloud(x, y, int(float64(scale)*mult), 5)
	cp.addSnow(x, y, large)
}

func (cp *Composer) iconMist(x, y int, large, night bool) {
	if night {
		cp.addMoon(x, y, large)
	}
	scale := iconScale(large)
	mult := 0.75
	if large {
		mult = 1
	}
	cp.addSun(x, y, int(float64(scale)*mult))
	cp.addFog(x, y, scale, 5, large)
}

func (cp *Composer) iconNoData(x, y int, large bool) {
	face := cp.fonts.Size12
	if large {
		face = cp.fonts.Size24
	}
	cp.canvas.DrawString(x-3, y-10, "?", face, AlignCenter, Black)
}
