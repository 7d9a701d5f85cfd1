// Command patchram resets a Broadcom Bluetooth controller on a serial line,
// downloads a patchram image to it, configures it and optionally hands the
// line to the kernel Bluetooth stack.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/patchram"
	"github.com/rigado/patchram/hcd"
	"github.com/rigado/patchram/linux"
	"github.com/rigado/patchram/linux/hci"
	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// errors with an exit code have already exited
		os.Exit(patchram.ExitUsage)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "patchram"
	app.Usage = "bring up a Broadcom Bluetooth controller"
	app.ArgsUsage = "<uart device>"
	app.Version = "1.0.0"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "d", Usage: "trace every frame"},
		cli.StringFlag{Name: patchram.SettingPatchram.String(), Usage: "patchram `FILE` (.hcd) to download"},
		cli.StringFlag{Name: patchram.SettingBaudRate.String(), Usage: "operational baud `RATE`"},
		cli.StringFlag{Name: patchram.SettingBDAddr.String(), Usage: "device `ADDRESS` XX:XX:XX:XX:XX:XX"},
		cli.StringFlag{Name: "bd_addr_path", Usage: "read the device address from `FILE`", EnvVar: "BT_BDADDR_PATH"},
		cli.BoolFlag{Name: patchram.SettingEnableLPM.String(), Usage: "enable UART low power mode"},
		cli.BoolFlag{Name: patchram.SettingEnableH4.String(), Usage: "hand the line to the kernel as H4"},
		cli.BoolFlag{Name: patchram.SettingEnableH5.String(), Usage: "establish the 3-wire link and hand the line to the kernel as H5"},
		cli.BoolFlag{Name: patchram.SettingUseBaudRateForDownload.String(), Usage: "download at the operational baud rate"},
		cli.StringFlag{Name: patchram.SettingSCOPCM.String(), Usage: "SCO/PCM `PARAMS`: routing,rate,frame,sync,clock,lsb,fill_bits,fill_method,fill_num,justify"},
		cli.StringFlag{Name: patchram.SettingI2S.String(), Usage: "I2S `PARAMS`: enable,master,sample_rate,clock_rate"},
		cli.BoolFlag{Name: patchram.SettingNo2Bytes.String(), Usage: "don't wait for the two bytes after the minidriver download"},
		cli.StringFlag{Name: patchram.SettingToSleep.String(), Usage: "sleep `MICROSECONDS` before the first patch record"},
		cli.StringFlag{Name: "tcp", Usage: "reach the controller through a TCP serial bridge at `HOST:PORT`"},
		cli.StringFlag{Name: "profile", Usage: "load saved settings for the device from `FILE`"},
		cli.BoolFlag{Name: "save-profile", Usage: "save the settings for the device to the profile file"},
	}
	app.Action = run
	return app
}

func run(c *cli.Context) error {
	if c.Bool("d") {
		patchram.SetLogLevelDebug()
	}
	logger := patchram.ComponentLogger("patchram")

	t, device, err := transport(c)
	if err != nil {
		cli.ShowAppHelp(c)
		return exitError(err)
	}

	settings, err := collectSettings(c, device)
	if err != nil {
		return exitError(err)
	}

	cfg, err := patchram.NewConfigFromSettings(settings)
	if err != nil {
		return exitError(err)
	}
	if t.Socket != nil && cfg.Transport() != patchram.TransportNone {
		return exitError(&patchram.ConfigError{
			Code: patchram.ExitUsage,
			Err:  errors.Errorf("%v can't be enabled over tcp", cfg.Transport()),
		})
	}

	var opts []linux.Option
	if cfg.Patchram != "" {
		f, err := hcd.Open(cfg.Patchram)
		if err != nil {
			return exitError(err)
		}
		defer f.Close()
		opts = append(opts, linux.OptImage(f))
	}

	if c.Bool("save-profile") {
		if err := saveProfile(c.String("profile"), device, settings); err != nil {
			return exitError(err)
		}
	}

	port, err := hci.OpenTransport(t)
	if err != nil {
		return exitError(err)
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := linux.NewBringup(cfg, port, opts...).Run(ctx); err != nil {
		return exitError(err)
	}
	logger.Infof("%s ready after %v", device, time.Since(start).Round(time.Millisecond))

	if cfg.Transport() != patchram.TransportNone {
		// the kernel keeps the line discipline for as long as the port is open
		logger.Infof("holding %s", device)
		<-ctx.Done()
	}
	return nil
}

func transport(c *cli.Context) (hci.Transport, string, error) {
	addr := c.String("tcp")
	switch {
	case addr != "" && c.NArg() > 0:
		return hci.Transport{}, "", usageErrorf("give either a uart device or --tcp")
	case addr != "":
		return hci.Transport{Socket: &hci.TransportSocket{Addr: addr}}, addr, nil
	case c.NArg() == 1:
		path := c.Args().First()
		return hci.Transport{UART: &hci.TransportUART{Path: path}}, path, nil
	default:
		return hci.Transport{}, "", usageErrorf("expected one uart device, got %d arguments", c.NArg())
	}
}

func usageErrorf(format string, args ...interface{}) error {
	return &patchram.ConfigError{Code: patchram.ExitUsage, Err: errors.Errorf(format, args...)}
}

func exitError(err error) error {
	return cli.NewExitError(err.Error(), patchram.ExitCode(err))
}
