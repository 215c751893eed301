package run

import (
	"errors"
	"time"

	"go.uber.org/multierr"
)

// Defaults matching the TS series manuals and the usual bench setup.
const (
	DefaultBaudRate    = 19200
	DefaultStabilize   = 20 * time.Second
	DefaultReadTimeout = 5 * time.Second
)

// Config is the immutable description of one acquisition run. Validate
// it before starting; nothing may mutate it once the run is under way.
type Config struct {
	Port           string        // serial device, e.g. /dev/ttyUSB0
	BaudRate       int           // zero falls back to DefaultBaudRate
	StartDelay     time.Duration // settle time after opening the port
	VoltageLimit   float64       // compliance limit in volts
	TargetCurrent  float64       // sourced current in amps
	SampleInterval time.Duration // pause between measurements
	SampleCount    int
	Stabilize      time.Duration // wait before the first sample
	ReadTimeout    time.Duration // per-reply timeout; zero falls back to DefaultReadTimeout
	Destination    string        // export target (.csv or .xlsx)
}

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}

// Validate rejects configurations that must not reach the port. All
// problems are reported, not just the first.
func (c Config) Validate() error {
	var err error
	if c.Port == "" {
		err = multierr.Append(err, errors.New("port must not be empty"))
	}
	if c.BaudRate < 0 {
		err = multierr.Append(err, errors.New("baud rate must not be negative"))
	}
	if c.StartDelay < 0 {
		err = multierr.Append(err, errors.New("start delay must not be negative"))
	}
	if c.Stabilize < 0 {
		err = multierr.Append(err, errors.New("stabilize wait must not be negative"))
	}
	if c.SampleInterval < 0 {
		err = multierr.Append(err, errors.New("sample interval must not be negative"))
	}
	if c.SampleCount <= 0 {
		err = multierr.Append(err, errors.New("sample count must be positive"))
	}
	if c.TargetCurrent < 0 {
		err = multierr.Append(err, errors.New("target current must not be negative"))
	}
	if c.VoltageLimit <= 0 {
		err = multierr.Append(err, errors.New("voltage limit must be positive"))
	}
	if c.Destination == "" {
		err = multierr.Append(err, errors.New("destination path must not be empty"))
	}
	return err
}
