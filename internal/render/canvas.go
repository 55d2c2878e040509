package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Display dimensions in pixels, landscape orientation.
const (
	Width  = 960
	Height = 540
)

// Grayscale palette. The panel renders 0x00 as black and 0xFF as white.
const (
	White     uint8 = 0xFF
	LightGrey uint8 = 0xBB
	Grey      uint8 = 0x88
	DarkGrey  uint8 = 0x44
	Black     uint8 = 0x00
)

// Canvas is the shared framebuffer a render pass draws into. It is owned
// exclusively by the rendering pipeline for the duration of a pass and reset
// to white at the start of every full redraw.
type Canvas struct {
	img *image.Gray
}

func NewCanvas() *Canvas {
	c := &Canvas{img: image.NewGray(image.Rect(0, 0, Width, Height))}
	c.Clear()
	return c
}

// Image exposes the backing framebuffer for transfer to a display device.
func (c *Canvas) Image() *image.Gray {
	return c.img
}

// Clear resets every pixel to white.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Rect, &image.Uniform{color.Gray{Y: White}}, image.Point{}, draw.Src)
}

func (c *Canvas) SetPixel(x, y int, shade uint8) {
	if image.Pt(x, y).In(c.img.Rect) {
		c.img.SetGray(x, y, color.Gray{Y: shade})
	}
}

// DrawLine draws a 1px line between two points using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, shade uint8) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.SetPixel(x0, y0, shade)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) DrawHLine(x, y, length int, shade uint8) {
	c.FillRect(x, y, length, 1, shade)
}

func (c *Canvas) DrawVLine(x, y, length int, shade uint8) {
	c.FillRect(x, y, 1, length, shade)
}

// FillRect fills a w by h rectangle whose top-left corner is at (x, y).
func (c *Canvas) FillRect(x, y, w, h int, shade uint8) {
	r := image.Rect(x, y, x+w, y+h).Intersect(c.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, &image.Uniform{color.Gray{Y: shade}}, image.Point{}, draw.Src)
}

// DrawRect outlines a w by h rectangle whose top-left corner is at (x, y).
func (c *Canvas) DrawRect(x, y, w, h int, shade uint8) {
	c.DrawHLine(x, y, w, shade)
	c.DrawHLine(x, y+h-1, w, shade)
	c.DrawVLine(x, y, h, shade)
	c.DrawVLine(x+w-1, y, h, shade)
}

func (c *Canvas) FillCircle(cx, cy, r int, shade uint8) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				c.SetPixel(cx+x, cy+y, shade)
			}
		}
	}
}

func (c *Canvas) DrawCircle(cx, cy, r int, shade uint8) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			d := x*x + y*y
			if d >= (r-1)*(r-1) && d <= r*r {
				c.SetPixel(cx+x, cy+y, shade)
			}
		}
	}
}

// FillTriangle fills the triangle spanned by the three points.
func (c *Canvas) FillTriangle(x0, y0, x1, y1, x2, y2 int, shade uint8) {
	minX := min(x0, x1, x2)
	maxX := max(x0, x1, x2)
	minY := min(y0, y1, y2)
	maxY := max(y0, y1, y2)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d0 := edgeSide(x, y, x0, y0, x1, y1)
			d1 := edgeSide(x, y, x1, y1, x2, y2)
			d2 := edgeSide(x, y, x2, y2, x0, y0)

			hasNeg := d0 < 0 || d1 < 0 || d2 < 0
			hasPos := d0 > 0 || d1 > 0 || d2 > 0
			if !(hasNeg && hasPos) {
				c.SetPixel(x, y, shade)
			}
		}
	}
}

// DrawAngledLine draws a thick line as two filled triangles perpendicular to
// the line direction.
func (c *Canvas) DrawAngledLine(x, y, x1, y1, size int, shade uint8) {
	dist := math.Sqrt(float64((x-x1)*(x-x1) + (y-y1)*(y-y1)))
	if dist == 0 {
		return
	}
	dx := int(float64(size) / 2.0 * float64(x-x1) / dist)
	dy := int(float64(size) / 2.0 * float64(y-y1) / dist)
	c.FillTriangle(x+dx, y-dy, x-dx, y+dy, x1+dx, y1-dy, shade)
	c.FillTriangle(x-dx, y+dy, x1-dx, y1+dy, x1+dx, y1-dy, shade)
}

func edgeSide(px, py, ax, ay, bx, by int) int {
	return (px-bx)*(ay-by) - (ax-bx)*(py-by)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
