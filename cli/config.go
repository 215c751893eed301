package cli

import (
	"fmt"

	"github.com/gotmc/magnadc/lib/find"
	"github.com/gotmc/magnadc/lib/run"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

// loadConfig assembles the run configuration: flag values first, then a
// YAML run file (if given) for anything the user did not set on the
// command line, then port discovery if no port was named.
func loadConfig(c *cli.Context) (run.Config, error) {
	cfg := run.Config{
		Port:           c.String("port"),
		BaudRate:       c.Int("baud"),
		StartDelay:     c.Duration("start-delay"),
		VoltageLimit:   c.Float64("voltage-limit"),
		TargetCurrent:  c.Float64("current"),
		SampleInterval: c.Duration("interval"),
		SampleCount:    c.Int("samples"),
		Stabilize:      c.Duration("stabilize"),
		Destination:    c.String("output"),
	}

	if path := c.String("config"); path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return run.Config{}, fmt.Errorf("read run file: %w", err)
		}
		cfg = mergeFile(cfg, v, c.IsSet)
	}

	if cfg.Port == "" {
		if serialno := c.String("usb-serial"); serialno != "" {
			port, err := find.Find(find.BySerial(serialno))
			if err != nil {
				return run.Config{}, fmt.Errorf("locate adapter %s: %w", serialno, err)
			}
			cfg.Port = port
		}
	}
	return cfg, nil
}

// mergeFile overlays run-file values onto cfg for every key the user
// did not set explicitly on the command line.
func mergeFile(cfg run.Config, v *viper.Viper, isSet func(string) bool) run.Config {
	use := func(key, flag string) bool { return v.IsSet(key) && !isSet(flag) }

	if use("port", "port") {
		cfg.Port = v.GetString("port")
	}
	if use("baud_rate", "baud") {
		cfg.BaudRate = v.GetInt("baud_rate")
	}
	if use("start_delay", "start-delay") {
		cfg.StartDelay = v.GetDuration("start_delay")
	}
	if use("voltage_limit", "voltage-limit") {
		cfg.VoltageLimit = v.GetFloat64("voltage_limit")
	}
	if use("target_current", "current") {
		cfg.TargetCurrent = v.GetFloat64("target_current")
	}
	if use("sample_interval", "interval") {
		cfg.SampleInterval = v.GetDuration("sample_interval")
	}
	if use("sample_count", "samples") {
		cfg.SampleCount = v.GetInt("sample_count")
	}
	if use("stabilize", "stabilize") {
		cfg.Stabilize = v.GetDuration("stabilize")
	}
	if use("destination", "output") {
		cfg.Destination = v.GetString("destination")
	}
	return cfg
}
