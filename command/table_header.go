// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/hashicorp/go-acpi/acpi/sdt"
	"github.com/posener/complete"
)

type HeaderCommand struct {
	Meta
}

func (c *HeaderCommand) Help() string {
	helpText := `
Usage: acpi-srat header [options] [path]

  Display the System Description Table header of an SRAT and check it for
  consistency. The path defaults to the table_path configuration value,
  normally /sys/firmware/acpi/tables/SRAT.

  The command exits with status 1 if the signature, length, or (when
  requested) checksum do not validate.

Header Options:

  -config=<path>
    Read configuration from the given HCL or JSON file.

  -log-level=<level>
    Log level: trace, debug, info, warn, error, or off.

  -log-json
    Emit logs, and all command output, as JSON log lines.

  -no-color
    Disable colored output.

  -verify-checksum
    Fail if the bytes of the table do not sum to zero.
`
	return strings.TrimSpace(helpText)
}

func (c *HeaderCommand) Synopsis() string {
	return "Display and validate the table header"
}

func (c *HeaderCommand) AutocompleteFlags() complete.Flags {
	return c.Meta.AutocompleteFlags(FlagSetTable)
}

func (c *HeaderCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictFiles("*")
}

func (c *HeaderCommand) Name() string { return "header" }

func (c *HeaderCommand) Run(args []string) int {
	flags := c.Meta.FlagSet(c.Name(), FlagSetTable)
	flags.Usage = func() { c.Ui.Output(c.Help()) }

	if err := flags.Parse(args); err != nil {
		return 1
	}

	args = flags.Args()
	if len(args) > 1 {
		c.Ui.Error("This command takes at most one argument: [path]")
		c.Ui.Error(commandErrorText(c))
		return 1
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}

	cfg, err := c.Meta.Config(flags, path)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error loading configuration: %s", err))
		return 1
	}

	logger, err := c.Meta.Logger(cfg)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error setting up logging: %s", err))
		return 1
	}

	table, err := readTable(cfg.TablePath)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	logger.Debug("read table", "path", cfg.TablePath, "length", table.Header.Length)

	h := table.Header
	oemID, oemTableID := h.OEM()
	sum := sdt.Checksum(table.Bytes())

	checksum := fmt.Sprintf("%#x", h.Checksum)
	if sum != 0 {
		checksum += " (mismatch)"
	}

	var creator [4]byte
	binary.LittleEndian.PutUint32(creator[:], h.CreatorID)

	c.Ui.Output(formatKV([]string{
		fmt.Sprintf("Signature|%s", h.SignatureString()),
		fmt.Sprintf("Length|%d", h.Length),
		fmt.Sprintf("Revision|%d", h.Revision),
		fmt.Sprintf("Checksum|%s", checksum),
		fmt.Sprintf("OEM ID|%s", oemID),
		fmt.Sprintf("OEM Table ID|%s", oemTableID),
		fmt.Sprintf("OEM Revision|%#x", h.OEMRevision),
		fmt.Sprintf("Creator ID|%s", strings.TrimRight(string(creator[:]), " \x00")),
		fmt.Sprintf("Creator Revision|%#x", h.CreatorRevision),
		fmt.Sprintf("Table Revision|%d", table.TableRevision()),
		fmt.Sprintf("Entries Length|%d", table.TrailingLength()),
	}))

	if sum != 0 && !cfg.VerifyChecksum {
		c.Ui.Warn("")
		c.Ui.Warn(wrapAtLength("WARNING: the table checksum does not validate. " +
			"Pass -verify-checksum to treat this as an error."))
	}

	if err := h.Validate(table.Bytes(), sdt.SignatureSRAT, cfg.VerifyChecksum); err != nil {
		c.Ui.Error("")
		c.Ui.Error(fmt.Sprintf("Table header is invalid: %s", err))
		return 1
	}

	return 0
}
