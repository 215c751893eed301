package cli

import (
	"fmt"

	"github.com/gotmc/magnadc/lib/find"
	"github.com/urfave/cli/v2"
	"go.bug.st/serial"
)

func (a *App) portsCommand() *cli.Command {
	return &cli.Command{
		Name:   "ports",
		Usage:  "List attached serial ports",
		Action: a.listPorts,
	}
}

func (a *App) listPorts(c *cli.Context) error {
	devs, err := find.All()
	if err == nil && len(devs) > 0 {
		for _, d := range devs {
			fmt.Println(d.String())
		}
		return nil
	}
	if err != nil {
		a.logger.Debug().Err(err).Msg("no sysfs view, falling back to port enumeration")
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no serial ports found")
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}
