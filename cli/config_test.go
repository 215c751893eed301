package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gotmc/magnadc/lib/run"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const runFile = `
port: /dev/ttyUSB0
baud_rate: 9600
start_delay: 10s
voltage_limit: 9.5
target_current: 580
sample_interval: 1m
sample_count: 480
stabilize: 30s
destination: magnatest1.xlsx
`

func loadRunFile(t *testing.T) *viper.Viper {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(runFile), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return v
}

func TestMergeFileFillsUnsetFlags(t *testing.T) {
	v := loadRunFile(t)
	noneSet := func(string) bool { return false }

	cfg := mergeFile(run.Config{}, v, noneSet)
	require.Equal(t, run.Config{
		Port:           "/dev/ttyUSB0",
		BaudRate:       9600,
		StartDelay:     10 * time.Second,
		VoltageLimit:   9.5,
		TargetCurrent:  580,
		SampleInterval: time.Minute,
		SampleCount:    480,
		Stabilize:      30 * time.Second,
		Destination:    "magnatest1.xlsx",
	}, cfg)
}

func TestMergeFileFlagsWin(t *testing.T) {
	v := loadRunFile(t)
	explicit := map[string]bool{"current": true, "output": true}

	cfg := run.Config{TargetCurrent: 5, Destination: "override.csv"}
	cfg = mergeFile(cfg, v, func(flag string) bool { return explicit[flag] })

	require.Equal(t, 5.0, cfg.TargetCurrent)
	require.Equal(t, "override.csv", cfg.Destination)
	// Everything else still comes from the file.
	require.Equal(t, "/dev/ttyUSB0", cfg.Port)
	require.Equal(t, 480, cfg.SampleCount)
}

func TestMergeFilePartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sample_count: 12\n"), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg := run.Config{Port: "/dev/ttyS0", SampleCount: 5}
	cfg = mergeFile(cfg, v, func(string) bool { return false })

	require.Equal(t, 12, cfg.SampleCount)
	require.Equal(t, "/dev/ttyS0", cfg.Port)
}
