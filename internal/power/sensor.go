package power

import (
	"fmt"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// BatterySensor reads the voltage of the battery feeding the board.
type BatterySensor interface {
	// ReadMillivolts returns the battery voltage in millivolts. Boards
	// without a sensor report 0, which disables battery handling.
	ReadMillivolts() (int, error)
}

// NoSensor is the sensor used on mains-powered boards.
type NoSensor struct{}

// ReadMillivolts always reports 0.
func (NoSensor) ReadMillivolts() (int, error) { return 0, nil }

// ADS1115Sensor samples the battery through an ADS1115 ADC on channel 0.
type ADS1115Sensor struct {
	pin   ads1x15.PinADC
	scale float64
}

// NewADS1115Sensor opens the default I2C bus and configures channel 0 for
// single-shot reads. scale compensates for an external voltage divider; pass
// 1 when the ADC pin sees the battery directly.
func NewADS1115Sensor(scale float64) (*ADS1115Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("init ads1115: %w", err)
	}
	pin, err := adc.PinForChannel(ads1x15.Channel0, 5*physic.Volt, 1*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		return nil, fmt.Errorf("configure adc channel: %w", err)
	}
	if scale <= 0 {
		scale = 1
	}
	return &ADS1115Sensor{pin: pin, scale: scale}, nil
}

// ReadMillivolts performs one conversion and applies the divider scale.
func (s *ADS1115Sensor) ReadMillivolts() (int, error) {
	sample, err := s.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("read adc: %w", err)
	}
	mv := float64(sample.V) / float64(physic.MilliVolt) * s.scale
	return int(mv), nil
}
