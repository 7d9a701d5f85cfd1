package main

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/rigado/patchram"
	"github.com/rigado/patchram/profile"
	"github.com/urfave/cli"
)

// collectSettings returns the settings for device in the order they apply:
// the saved profile, the address file, then the command line.
func collectSettings(c *cli.Context, device string) ([]patchram.Setting, error) {
	logger := patchram.ComponentLogger("patchram")
	var settings []patchram.Setting

	if fn := c.String("profile"); fn != "" {
		p, err := profile.New(fn).Load(device)
		switch {
		case errors.Cause(err) == profile.ErrNotFound:
			logger.Debugf("no profile for %s in %s", device, fn)
		case err != nil:
			return nil, &patchram.ConfigError{Code: patchram.ExitUsage, Err: err}
		default:
			settings = append(settings, p.Settings...)
		}
	}

	if path := c.String("bd_addr_path"); path != "" {
		// a missing or bad address file leaves the address unset
		a, err := readBDAddrFile(path)
		if err != nil {
			logger.Warnf("%v", err)
		} else {
			logger.Debugf("read default bdaddr of %v", a)
			settings = append(settings, patchram.Setting{Kind: patchram.SettingBDAddr, Arg: a.String()})
		}
	}

	for _, k := range patchram.SettingKinds {
		if !c.IsSet(k.String()) {
			continue
		}
		s := patchram.Setting{Kind: k}
		if k.HasArg() {
			s.Arg = c.String(k.String())
		}
		logger.Debugf("option %v %s", k, s.Arg)
		settings = append(settings, s)
	}
	return settings, nil
}

func readBDAddrFile(path string) (patchram.BDAddr, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return patchram.BDAddr{}, errors.Wrap(err, "can't read bd_addr file")
	}
	return patchram.ParseBDAddr(string(b))
}

func saveProfile(fn, device string, settings []patchram.Setting) error {
	if fn == "" {
		return &patchram.ConfigError{Code: patchram.ExitUsage, Err: errors.New("--save-profile needs --profile")}
	}
	if err := profile.New(fn).Store(device, patchram.Profile{Settings: settings}, true); err != nil {
		return &patchram.ConfigError{Code: patchram.ExitUsage, Err: errors.Wrap(err, "can't save profile")}
	}
	return nil
}
