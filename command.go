// Copyright (c) 2024–2026 The magnadc developers. All rights reserved.
// Project site: https://github.com/gotmc/magnadc
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package magnadc

import "strconv"

// CommandKind enumerates the SCPI commands and queries used by the TS
// series command set.
type CommandKind int

const (
	CmdIdentify       CommandKind = iota // *IDN?
	CmdSetpointMode                      // CONF:SETPT
	CmdSetCurrent                        // CURR
	CmdSetVoltage                        // VOLT
	CmdOutputStart                       // OUTP:START
	CmdOutputStop                        // OUTP:STOP
	CmdMeasureVoltage                    // MEAS:VOLT?
	CmdMeasureCurrent                    // MEAS:CURR?
)

var cmdMnemonics = map[CommandKind]string{
	CmdIdentify:       "*IDN?",
	CmdSetpointMode:   "CONF:SETPT",
	CmdSetCurrent:     "CURR",
	CmdSetVoltage:     "VOLT",
	CmdOutputStart:    "OUTP:START",
	CmdOutputStop:     "OUTP:STOP",
	CmdMeasureVoltage: "MEAS:VOLT?",
	CmdMeasureCurrent: "MEAS:CURR?",
}

// Command is one outbound SCPI line: a kind plus its rendered argument
// when the kind takes one. Building lines from kinds instead of ad hoc
// format strings keeps malformed wire text away from the transport.
type Command struct {
	kind CommandKind
	arg  string
}

// IdentifyCmd asks the supply to identify itself.
func IdentifyCmd() Command { return Command{kind: CmdIdentify} }

// SetpointModeCmd selects the setpoint control mode. Mode 0 is local
// control.
func SetpointModeCmd(mode int) Command {
	return Command{kind: CmdSetpointMode, arg: strconv.Itoa(mode)}
}

// SetCurrentCmd sets the output current setpoint in amps.
func SetCurrentCmd(amps float64) Command {
	return Command{kind: CmdSetCurrent, arg: formatNum(amps)}
}

// SetVoltageCmd sets the compliance voltage limit in volts.
func SetVoltageCmd(volts float64) Command {
	return Command{kind: CmdSetVoltage, arg: formatNum(volts)}
}

// OutputStartCmd enables the DC output.
func OutputStartCmd() Command { return Command{kind: CmdOutputStart} }

// OutputStopCmd disables the DC output.
func OutputStopCmd() Command { return Command{kind: CmdOutputStop} }

// MeasureVoltageCmd queries the measured output voltage.
func MeasureVoltageCmd() Command { return Command{kind: CmdMeasureVoltage} }

// MeasureCurrentCmd queries the measured output current.
func MeasureCurrentCmd() Command { return Command{kind: CmdMeasureCurrent} }

// Kind returns the command's kind.
func (c Command) Kind() CommandKind { return c.kind }

// IsQuery reports whether the command expects exactly one reply line.
func (c Command) IsQuery() bool {
	switch c.kind {
	case CmdIdentify, CmdMeasureVoltage, CmdMeasureCurrent:
		return true
	}
	return false
}

// Wire renders the SCPI text for the line, without the terminator.
func (c Command) Wire() string {
	m := cmdMnemonics[c.kind]
	if c.arg == "" {
		return m
	}
	return m + " " + c.arg
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
