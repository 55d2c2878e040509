package display

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"
	"periph.io/x/host/v3"
)

// EPD drives a Waveshare e-paper HAT over SPI. Frames are composed at the
// full 960x540 target resolution; Push scales them down to whatever panel is
// attached and rotates into the portrait framebuffer the controller scans.
type EPD struct {
	dev      *waveshare2in13v4.Dev
	port     spi.PortCloser
	sleeping bool
}

// NewEPD opens the default SPI bus and initializes the panel.
func NewEPD() (*EPD, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}
	port, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open spi: %w", err)
	}
	opts := waveshare2in13v4.EPD2in13v4
	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("init panel: %w", err)
	}
	e := &EPD{dev: dev, port: port}
	if err := e.Init(); err != nil {
		port.Close()
		return nil, err
	}
	return e, nil
}

// Init wakes the panel from deep sleep and reloads the refresh waveform.
func (e *EPD) Init() error {
	if err := e.dev.Init(); err != nil {
		return fmt.Errorf("wake panel: %w", err)
	}
	e.sleeping = false
	return nil
}

// Push scales the frame to the panel and performs a full refresh. A sleeping
// panel is woken first; the controller ignores writes in deep sleep.
func (e *EPD) Push(img *image.Gray) error {
	if e.sleeping {
		if err := e.Init(); err != nil {
			return err
		}
	}

	bounds := e.dev.Bounds()
	portraitW, portraitH := bounds.Dx(), bounds.Dy()

	// The panel is wired portrait but the frame is landscape, so the scale
	// target swaps the axes and the rotation below swaps them back.
	scaled := image.NewGray(image.Rect(0, 0, portraitH, portraitW))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	portrait := image.NewGray(bounds)
	for y := 0; y < portraitH; y++ {
		for x := 0; x < portraitW; x++ {
			portrait.SetGray(x, y, scaled.GrayAt(y, portraitW-1-x))
		}
	}

	buf := image1bit.NewVerticalLSB(bounds)
	draw.Draw(buf, buf.Bounds(), portrait, image.Point{}, draw.Src)
	if err := e.dev.Draw(bounds, buf, image.Point{}); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

// Sleep puts the panel into deep sleep. Leaving the panel powered with the
// waveform loaded causes ghosting and drains the battery.
func (e *EPD) Sleep() error {
	if e.sleeping {
		return nil
	}
	if err := e.dev.Sleep(); err != nil {
		return fmt.Errorf("panel sleep: %w", err)
	}
	e.sleeping = true
	return nil
}

// Close halts the panel and releases the SPI port.
func (e *EPD) Close() error {
	if err := e.dev.Halt(); err != nil {
		e.port.Close()
		return fmt.Errorf("halt panel: %w", err)
	}
	return e.port.Close()
}
