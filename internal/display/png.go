package display

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSink writes frames to a PNG file instead of panel hardware. It is the
// default sink on machines without an SPI bus.
type PNGSink struct {
	Path string
}

// NewPNGSink returns a sink writing frames to path.
func NewPNGSink(path string) *PNGSink {
	return &PNGSink{Path: path}
}

// Init is a no-op for the file sink.
func (s *PNGSink) Init() error { return nil }

// Push encodes the frame and atomically replaces the target file, so a viewer
// polling the path never reads a half-written image.
func (s *PNGSink) Push(img *image.Gray) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".frame-*.png")
	if err != nil {
		return fmt.Errorf("create temp frame: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp frame: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace frame: %w", err)
	}
	return nil
}

// Sleep is a no-op for the file sink.
func (s *PNGSink) Sleep() error { return nil }

// Close is a no-op for the file sink.
func (s *PNGSink) Close() error { return nil }
