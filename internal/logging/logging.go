// Package logging configures the shared go-logging backend.
// Other packages obtain their logger with logging.MustGetLogger directly.
package logging

import (
	"os"

	"github.com/op/go-logging"
)

// Init receives the log level as a string, parses it, and installs a
// formatted, leveled backend writing to stderr. An unknown level string
// returns an error and leaves the default backend untouched.
func Init(logLevel string) error {
	baseBackend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s} %{module}: %{message}`,
	)
	backendFormatter := logging.NewBackendFormatter(baseBackend, format)

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	logLevelCode, err := logging.LogLevel(logLevel)
	if err != nil {
		return err
	}
	backendLeveled.SetLevel(logLevelCode, "")

	logging.SetBackend(backendLeveled)
	return nil
}
