package cli

import (
	"fmt"
	"time"

	"github.com/gotmc/magnadc"
	"github.com/gotmc/magnadc/lib/run"
	"github.com/urfave/cli/v2"
)

func (a *App) identifyCommand() *cli.Command {
	return &cli.Command{
		Name:   "identify",
		Usage:  "Query *IDN? and print the supply's identity (cabling check)",
		Action: a.identify,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "port",
				Usage:    "Serial port of the supply",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "baud",
				Value: run.DefaultBaudRate,
				Usage: "Baud rate of the serial link",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: magnadc.DefaultReadTimeout,
				Usage: "Reply timeout",
			},
		},
	}
}

func (a *App) identify(c *cli.Context) error {
	t, err := magnadc.Open(c.String("port"), c.Int("baud"), c.Duration("timeout"))
	if err != nil {
		return err
	}
	defer t.Close()

	// Give a freshly-powered supply a moment before talking to it.
	time.Sleep(time.Second)

	idn, err := magnadc.NewInstrument(t).Identify()
	if err != nil {
		return err
	}
	fmt.Println(idn)
	return nil
}
