// Package display abstracts the e-paper panel so the agent can run against
// real hardware or a PNG file on a development machine.
package display

import "image"

// Device is a push-model frame sink. Every Push is a full refresh; the
// greyscale panels this targets have no usable partial update mode.
type Device interface {
	// Init powers the panel on and loads the refresh waveform.
	Init() error
	// Push writes one full frame to the panel.
	Push(img *image.Gray) error
	// Sleep puts the panel into deep sleep between refreshes.
	Sleep() error
	// Close releases the underlying bus.
	Close() error
}
