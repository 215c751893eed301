package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gotmc/magnadc/lib/export"
	"github.com/gotmc/magnadc/lib/run"
	"github.com/gotmc/magnadc/lib/sink"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
)

func (a *App) runCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Run a timed voltage/current acquisition",
		Action: a.runAcquisition,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML run file; explicit flags override its values",
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "Serial port of the supply (e.g. /dev/ttyUSB0)",
			},
			&cli.StringFlag{
				Name:  "usb-serial",
				Usage: "Pick the port by USB adapter serial number instead of --port",
			},
			&cli.IntFlag{
				Name:  "baud",
				Value: run.DefaultBaudRate,
				Usage: "Baud rate of the serial link",
			},
			&cli.DurationFlag{
				Name:  "start-delay",
				Value: 5 * time.Second,
				Usage: "Settling time after opening the port",
			},
			&cli.Float64Flag{
				Name:  "voltage-limit",
				Value: 9.0,
				Usage: "Compliance voltage limit in volts",
			},
			&cli.Float64Flag{
				Name:  "current",
				Value: 5.0,
				Usage: "Current to source in amps (constant-current mode)",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: 5 * time.Second,
				Usage: "Pause between measurements",
			},
			&cli.IntFlag{
				Name:  "samples",
				Value: 5,
				Usage: "Number of measurements to take",
			},
			&cli.DurationFlag{
				Name:  "stabilize",
				Value: run.DefaultStabilize,
				Usage: "Settling wait after the setpoint before the first sample",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Destination file for the samples (.csv or .xlsx)",
			},
		},
	}
}

func (a *App) runAcquisition(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ctrl-C is a stop request, not an abort: the run still walks its
	// shutdown sequence before the process exits.
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	snk := sink.NewMemory()
	r := run.New(cfg, snk, run.WithLogger(a.logger))
	events, err := r.Start(ctx)
	if err != nil {
		return err
	}

	var runErr error
	for e := range events {
		renderEvent(e)
		if e.Kind == run.KindDone {
			runErr = e.Err
		}
	}

	if snk.Len() == 0 {
		a.logger.Warn().Msg("no samples collected, skipping export")
		return runErr
	}
	a.logger.Info().
		Str("path", cfg.Destination).
		Int("samples", snk.Len()).
		Msg("writing samples")
	if err := export.WriteFile(cfg.Destination, snk.All()); err != nil {
		runErr = multierr.Append(runErr, err)
	}
	return runErr
}
