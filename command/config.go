// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"fmt"

	"github.com/hashicorp/go-acpi/helper/logging"
	"github.com/hashicorp/go-acpi/lib/numalib"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/mitchellh/go-homedir"
)

// Config is the configuration shared by all commands. It is read from an HCL
// (or JSON) file such as:
//
//	table_path      = "/sys/firmware/acpi/tables/SRAT"
//	log_level       = "debug"
//	verify_checksum = true
//	include_unknown = false
type Config struct {
	// TablePath is the table to decode when no path argument is given.
	TablePath string `hcl:"table_path,optional"`

	// LogLevel is one of trace, debug, info, warn, error, or off.
	LogLevel string `hcl:"log_level,optional"`

	// VerifyChecksum rejects tables whose checksum does not validate.
	VerifyChecksum bool `hcl:"verify_checksum,optional"`

	// IncludeUnknown lists reserved and OEM entries alongside decoded ones.
	IncludeUnknown bool `hcl:"include_unknown,optional"`
}

// DefaultConfig returns the built in configuration.
func DefaultConfig() *Config {
	return &Config{
		TablePath: numalib.DefaultTablePath,
		LogLevel:  "warn",
	}
}

// LoadConfig reads the config file at path. The format is chosen by the file
// extension, .hcl or .json. A leading ~ in path or table_path is expanded to
// the user's home directory.
func LoadConfig(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	var c Config
	if err := hclsimple.DecodeFile(path, nil, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if c.TablePath, err = homedir.Expand(c.TablePath); err != nil {
		return nil, fmt.Errorf("failed to expand table_path: %w", err)
	}
	return &c, nil
}

// Merge returns a new Config with the non-zero values of b applied over c.
func (c *Config) Merge(b *Config) *Config {
	result := *c
	if b == nil {
		return &result
	}

	if b.TablePath != "" {
		result.TablePath = b.TablePath
	}
	if b.LogLevel != "" {
		result.LogLevel = b.LogLevel
	}
	if b.VerifyChecksum {
		result.VerifyChecksum = true
	}
	if b.IncludeUnknown {
		result.IncludeUnknown = true
	}
	return &result
}

// Validate returns every problem with the config.
func (c *Config) Validate() error {
	var mErr *multierror.Error
	if c.TablePath == "" {
		mErr = multierror.Append(mErr, fmt.Errorf("table_path must not be empty"))
	}
	if err := logging.ValidateLevel(c.LogLevel); err != nil {
		mErr = multierror.Append(mErr, err)
	}
	return mErr.ErrorOrNil()
}
