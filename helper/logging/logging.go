// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// validLevels are the names accepted by NewLogger.
var validLevels = []string{"trace", "debug", "info", "warn", "error", "off"}

// ValidateLevel returns an error if level is not a known log level.
func ValidateLevel(level string) error {
	if hclog.LevelFromString(level) == hclog.NoLevel {
		return fmt.Errorf("invalid log level %q, must be one of %s", level, strings.Join(validLevels, ", "))
	}
	return nil
}

// NewLogger creates the root logger for a command, writing to out.
func NewLogger(name, level string, jsonFormat bool, out io.Writer) (hclog.Logger, error) {
	if err := ValidateLevel(level); err != nil {
		return nil, err
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		Output:     out,
		JSONFormat: jsonFormat,
	}), nil
}

// NewUILogger creates the JSON logger that HcLogUI writes command output
// through. It logs at Info regardless of the diagnostic log level so that
// output is never filtered.
func NewUILogger(name string, out io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.Info,
		Output:     out,
		JSONFormat: true,
	})
}

// HcLogUI is an implementation of Ui that takes a hclogger
// and uses it to Log the output. It is intended for write only
// use cases and the Ask/AskSecret methods are not implemented.
type HcLogUI struct {
	Log hclog.Logger
}

func (l *HcLogUI) Ask(query string) (string, error) {
	return "", fmt.Errorf("Ask is not supported in this implementation")
}

func (l *HcLogUI) AskSecret(query string) (string, error) {
	return "", fmt.Errorf("AskSecret is not supported in this implementation")
}

func (l *HcLogUI) Output(message string) {
	l.Log.Info(message)
}

func (l *HcLogUI) Info(message string) {
	l.Log.Info(message)
}

func (l *HcLogUI) Error(message string) {
	l.Log.Error(message)
}

func (l *HcLogUI) Warn(message string) {
	l.Log.Warn(message)
}
