// Copyright (c) 2024–2026 The magnadc developers. All rights reserved.
// Project site: https://github.com/gotmc/magnadc
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package magnadc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandWire(t *testing.T) {
	tests := []struct {
		cmd   Command
		wire  string
		query bool
	}{
		{IdentifyCmd(), "*IDN?", true},
		{SetpointModeCmd(0), "CONF:SETPT 0", false},
		{SetCurrentCmd(0), "CURR 0", false},
		{SetCurrentCmd(580), "CURR 580", false},
		{SetCurrentCmd(5.5), "CURR 5.5", false},
		{SetVoltageCmd(9), "VOLT 9", false},
		{SetVoltageCmd(9.25), "VOLT 9.25", false},
		{OutputStartCmd(), "OUTP:START", false},
		{OutputStopCmd(), "OUTP:STOP", false},
		{MeasureVoltageCmd(), "MEAS:VOLT?", true},
		{MeasureCurrentCmd(), "MEAS:CURR?", true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.wire, tt.cmd.Wire())
		require.Equal(t, tt.query, tt.cmd.IsQuery(), tt.wire)
	}
}

func TestCommandNoExponentFormatting(t *testing.T) {
	// Setpoints must never render in scientific notation.
	require.Equal(t, "CURR 0.0001", SetCurrentCmd(0.0001).Wire())
	require.Equal(t, "CURR 120000", SetCurrentCmd(120000).Wire())
}
