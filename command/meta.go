// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"flag"
	"io"
	"os"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/go-acpi/helper/logging"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/colorstring"
	"github.com/posener/complete"
)

const (
	// EnvConfigPath names a config file to use when -config is not given.
	EnvConfigPath = "ACPI_SRAT_CONFIG"

	// EnvCLINoColor is an env var that toggles colored UI output.
	EnvCLINoColor = "ACPI_SRAT_CLI_NO_COLOR"
)

// FlagSetFlags is an enum to define what flags are present in the
// default FlagSet returned by Meta.FlagSet.
type FlagSetFlags uint

const (
	FlagSetNone  FlagSetFlags = 0
	FlagSetTable FlagSetFlags = 1 << iota
)

// Meta contains the meta-options and functionality that nearly every
// command inherits.
type Meta struct {
	Ui cli.Ui

	// LogOutput receives log lines; os.Stderr when nil.
	LogOutput io.Writer

	// shared flags
	configPath     string
	logLevel       string
	logJSON        bool
	noColor        bool
	verifyChecksum bool
	includeUnknown bool
}

// FlagSet returns a FlagSet with the common flags that every command
// implements. The exact behavior of FlagSet can be configured using the
// flags as the second parameter.
func (m *Meta) FlagSet(n string, fs FlagSetFlags) *flag.FlagSet {
	f := flag.NewFlagSet(n, flag.ContinueOnError)

	if fs&FlagSetTable != 0 {
		f.StringVar(&m.configPath, "config", os.Getenv(EnvConfigPath), "")
		f.StringVar(&m.logLevel, "log-level", "", "")
		f.BoolVar(&m.logJSON, "log-json", false, "")
		f.BoolVar(&m.noColor, "no-color", false, "")
		f.BoolVar(&m.verifyChecksum, "verify-checksum", false, "")
	}

	f.SetOutput(&uiErrorWriter{ui: m.Ui})

	return f
}

// AutocompleteFlags returns a set of flag completions for the given flag set.
func (m *Meta) AutocompleteFlags(fs FlagSetFlags) complete.Flags {
	if fs&FlagSetTable == 0 {
		return nil
	}

	return complete.Flags{
		"-config":          complete.PredictFiles("*.hcl"),
		"-log-level":       complete.PredictSet("trace", "debug", "info", "warn", "error", "off"),
		"-log-json":        complete.PredictNothing,
		"-no-color":        complete.PredictNothing,
		"-verify-checksum": complete.PredictNothing,
	}
}

// Config assembles the effective configuration: defaults, then the config
// file, then any flag explicitly given on the command line, then the table
// path argument if one was given.
func (m *Meta) Config(flags *flag.FlagSet, tablePath string) (*Config, error) {
	cfg := DefaultConfig()

	if m.configPath != "" {
		fileCfg, err := LoadConfig(m.configPath)
		if err != nil {
			return nil, err
		}
		cfg = cfg.Merge(fileCfg)
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevel = m.logLevel
		case "verify-checksum":
			cfg.VerifyChecksum = m.verifyChecksum
		case "all":
			cfg.IncludeUnknown = m.includeUnknown
		}
	})

	if tablePath != "" {
		cfg.TablePath = tablePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Logger builds the command logger from cfg. When -log-json is set the
// command's Ui is also routed through a JSON logger so that every line of
// output is structured. That logger ignores cfg.LogLevel.
func (m *Meta) Logger(cfg *Config) (hclog.Logger, error) {
	out := m.LogOutput
	if out == nil {
		out = os.Stderr
	}

	logger, err := logging.NewLogger("acpi-srat", cfg.LogLevel, m.logJSON, out)
	if err != nil {
		return nil, err
	}

	if m.logJSON {
		m.Ui = &logging.HcLogUI{Log: logging.NewUILogger("acpi-srat", out)}
	}
	return logger, nil
}

// Colorize returns the colorizer for command output, disabled when the Ui is
// not colored or the user asked for plain output.
func (m *Meta) Colorize() *colorstring.Colorize {
	_, coloredUi := m.Ui.(*cli.ColoredUi)
	noColor := m.noColor || !coloredUi || os.Getenv(EnvCLINoColor) != ""

	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: noColor,
		Reset:   true,
	}
}
