/*
The package serial opens the serial port of a radio or a receiver that emits its PDU trace as text lines.
*/
package serial

import (
	"errors"
	"io"

	"github.com/jacobsa/go-serial/serial"
)

var (
	NoTracePortFound = errors.New("no serial port with a PDU trace found")
)

// DefaultDescription is matched against the USB description of the serial ports when looking for a trace port.
const DefaultDescription = "tetra_pei_interface"

// Options of a serial trace port.
type Options struct {
	PortName string
	BaudRate uint
	// RTSCTS enables hardware flow control.
	RTSCTS bool
}

// DefaultOptions returns the settings used by most radios.
func DefaultOptions(portName string) Options {
	return Options{
		PortName: portName,
		BaudRate: 38400,
		RTSCTS:   true,
	}
}

// Open the serial port with the given options.
func Open(options Options) (io.ReadWriteCloser, error) {
	if options.PortName == "" {
		return nil, errors.New("no serial port name")
	}
	baudRate := options.BaudRate
	if baudRate == 0 {
		baudRate = 38400
	}
	portConfig := serial.OpenOptions{
		PortName:              options.PortName,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		RTSCTSFlowControl:     options.RTSCTS,
		MinimumReadSize:       4,
		InterCharacterTimeout: 100,
	}

	return serial.Open(portConfig)
}
