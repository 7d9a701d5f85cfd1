package patchram

import (
	"github.com/pkg/errors"
)

// Process exit statuses for configuration errors.
const (
	ExitUsage         = 1
	ExitPortOpen      = 2
	ExitNoExtension   = 3
	ExitNotHCD        = 4
	ExitPatchramOpen  = 5
	ExitProtocolError = 6
)

// ConfigError is a configuration problem detected before any protocol activity.
// Code is the process exit status for it.
type ConfigError struct {
	Code int
	Err  error
}

func (e *ConfigError) Error() string {
	return e.Err.Error()
}

func (e *ConfigError) Cause() error {
	return e.Err
}

// ExitCode returns the status the process exits with for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	for err != nil {
		if ce, ok := err.(*ConfigError); ok {
			return ce.Code
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = c.Cause()
	}
	return ExitProtocolError
}

func configErrorf(code int, format string, args ...interface{}) error {
	return &ConfigError{Code: code, Err: errors.Errorf(format, args...)}
}

func usageError(err error, format string, args ...interface{}) error {
	return &ConfigError{Code: ExitUsage, Err: errors.Wrapf(err, format, args...)}
}
