// Copyright (c) 2024–2026 The magnadc developers. All rights reserved.
// Project site: https://github.com/gotmc/magnadc
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package magnadc controls a Magna-Power TS series programmable DC
// power supply over its newline-terminated SCPI command set.
package magnadc

import (
	"errors"
	"strconv"

	"github.com/gotmc/query"
)

// Instrument drives a Magna-Power TS series supply over a line
// transport. Each method is a thin composition of Port calls.
type Instrument struct {
	port Port
}

// NewInstrument creates an Instrument on the given transport.
func NewInstrument(p Port) *Instrument {
	return &Instrument{port: p}
}

// Command sends a fire-and-forget SCPI line. A transport failure is
// reported as a *CommError.
func (ins *Instrument) Command(c Command) error {
	if err := ins.port.WriteLine(c.Wire()); err != nil {
		return &CommError{Op: c.Wire(), Err: err}
	}
	return nil
}

// Query sends the line and reads exactly one reply. It satisfies
// query.Queryer so the typed helpers in github.com/gotmc/query can run
// against the supply.
func (ins *Instrument) Query(s string) (string, error) {
	if err := ins.port.WriteLine(s); err != nil {
		return "", &CommError{Op: s, Err: err}
	}
	reply, err := ins.port.ReadLine()
	if err != nil {
		return "", &CommError{Op: s, Err: err}
	}
	return reply, nil
}

// Identify asks the supply for its identity string. Any reply line is
// acceptable.
func (ins *Instrument) Identify() (string, error) {
	return query.String(ins, IdentifyCmd().Wire())
}

// SetLocalControl selects setpoint control mode 0.
func (ins *Instrument) SetLocalControl() error {
	return ins.Command(SetpointModeCmd(0))
}

// SetCurrent sets the output current setpoint in amps.
func (ins *Instrument) SetCurrent(amps float64) error {
	return ins.Command(SetCurrentCmd(amps))
}

// SetVoltageLimit sets the compliance voltage limit in volts.
func (ins *Instrument) SetVoltageLimit(volts float64) error {
	return ins.Command(SetVoltageCmd(volts))
}

// EnableOutput enables the DC output. Callers are responsible for
// zeroing the current setpoint and setting the compliance limit first.
func (ins *Instrument) EnableOutput() error {
	return ins.Command(OutputStartCmd())
}

// DisableOutput disables the DC output.
func (ins *Instrument) DisableOutput() error {
	return ins.Command(OutputStopCmd())
}

// MeasureVoltage reads the measured output voltage in volts.
func (ins *Instrument) MeasureVoltage() (float64, error) {
	return ins.measure(MeasureVoltageCmd())
}

// MeasureCurrent reads the measured output current in amps.
func (ins *Instrument) MeasureCurrent() (float64, error) {
	return ins.measure(MeasureCurrentCmd())
}

// measure queries one decimal reading. A transport failure surfaces as a
// *CommError; a reply that is not a decimal surfaces as a *ParseError
// carrying the raw reply.
func (ins *Instrument) measure(c Command) (float64, error) {
	v, err := query.Float64(ins, c.Wire())
	if err != nil {
		var ce *CommError
		if errors.As(err, &ce) {
			return 0, err
		}
		raw := ""
		var ne *strconv.NumError
		if errors.As(err, &ne) {
			raw = ne.Num
		}
		return 0, &ParseError{Op: c.Wire(), Reply: raw, Err: err}
	}
	return v, nil
}
