// Package serial is the host-side link to a board running the firmware
// build, used by the monitor to read gesture and debug traffic.
package serial

import (
	"errors"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is the byte stream a monitor runs on.
type Port interface {
	io.ReadWriteCloser
}

// Config holds the link parameters.
type Config struct {
	// Device path (e.g. "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate; USB CDC links ignore it
	Baud int

	// ReadTimeout of zero means blocking reads
	ReadTimeout time.Duration
}

// DefaultConfig returns the settings for a USB CDC console.
func DefaultConfig(device string) *Config {
	return &Config{
		Device: device,
		Baud:   115200,
	}
}

type nativePort struct {
	port *serial.Port
}

// Open opens the device described by cfg.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("nil serial config")
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &nativePort{port: p}, nil
}

func (p *nativePort) Read(b []byte) (int, error)  { return p.port.Read(b) }
func (p *nativePort) Write(b []byte) (int, error) { return p.port.Write(b) }
func (p *nativePort) Close() error                { return p.port.Close() }
