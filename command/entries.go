// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-acpi/acpi/sdt"
	"github.com/hashicorp/go-acpi/acpi/srat"
	"github.com/hashicorp/go-acpi/lib/numalib"
	"github.com/posener/complete"
)

type EntriesCommand struct {
	Meta
}

func (c *EntriesCommand) Help() string {
	helpText := `
Usage: acpi-srat entries [options] [path]

  List the entries of an SRAT in table order. Processor entries show the
  local APIC or x2APIC ID of the processor; memory entries show the physical
  address range. Entry types that are reserved or OEM specific are skipped
  unless -all is given.

Entries Options:

  -all
    Also list reserved and OEM entries, showing their raw payload.

  -json
    Output the entries in JSON format.

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

func (c *EntriesCommand) Synopsis() string {
	return "List the affinity entries of the table"
}

func (c *EntriesCommand) AutocompleteFlags() complete.Flags {
	return mergeAutocompleteFlags(c.Meta.AutocompleteFlags(FlagSetTable),
		complete.Flags{
			"-all":  complete.PredictNothing,
			"-json": complete.PredictNothing,
		})
}

func (c *EntriesCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictFiles("*")
}

func (c *EntriesCommand) Name() string { return "entries" }

// entryStub is the JSON rendering of one entry.
type entryStub struct {
	Type         string
	TypeID       uint8
	Length       uint8
	Domain       *uint32 `json:",omitempty"`
	APICID       *uint32 `json:",omitempty"`
	X2APIC       bool    `json:",omitempty"`
	SAPICEID     *uint8  `json:",omitempty"`
	ClockDomain  *uint32 `json:",omitempty"`
	Base         *uint64 `json:",omitempty"`
	Size         *uint64 `json:",omitempty"`
	Flags        uint32
	Enabled      bool
	HotPluggable bool   `json:",omitempty"`
	NonVolatile  bool   `json:",omitempty"`
	Payload      string `json:",omitempty"`
}

func newEntryStub(e srat.Entry) *entryStub {
	s := &entryStub{
		Type:   e.Type().String(),
		TypeID: uint8(e.Type()),
		Length: e.Header().Length,
	}

	switch e := e.(type) {
	case srat.ProcessorLocalAPICAffinity:
		domain, id, sapic, clock := e.ProximityDomain(), uint32(e.APICID()), e.SAPICEID(), e.ClockDomain()
		s.Domain, s.APICID, s.SAPICEID, s.ClockDomain = &domain, &id, &sapic, &clock
		s.Flags, s.Enabled = e.Flags(), e.Enabled()
	case srat.ProcessorLocalX2APICAffinity:
		domain, id, clock := e.ProximityDomain(), e.X2APICID(), e.ClockDomain()
		s.Domain, s.APICID, s.ClockDomain = &domain, &id, &clock
		s.X2APIC = true
		s.Flags, s.Enabled = e.Flags(), e.Enabled()
	case srat.MemoryAffinity:
		domain, base, size := e.ProximityDomain(), e.Base(), e.Length()
		s.Domain, s.Base, s.Size = &domain, &base, &size
		s.Flags, s.Enabled = e.Flags(), e.Enabled()
		s.HotPluggable, s.NonVolatile = e.HotPluggable(), e.NonVolatile()
	case srat.Unknown:
		s.Payload = hex.EncodeToString(e.Payload())
	}
	return s
}

// row renders the stub as a formatList row.
func (s *entryStub) row(i int) string {
	domain, id, details := "", "", ""

	if s.Domain != nil {
		domain = fmt.Sprintf("%d", *s.Domain)
	}
	if s.APICID != nil {
		id = fmt.Sprintf("%d", *s.APICID)
	}

	switch {
	case s.Base != nil:
		var attrs []string
		if s.HotPluggable {
			attrs = append(attrs, "hot-pluggable")
		}
		if s.NonVolatile {
			attrs = append(attrs, "non-volatile")
		}
		end := numalib.MemoryRange{Base: *s.Base, Length: *s.Size}.End()
		details = fmt.Sprintf("%#x-%#x %s %s", *s.Base, end, humanize.IBytes(*s.Size), strings.Join(attrs, ","))
	case s.ClockDomain != nil:
		details = fmt.Sprintf("clock-domain=%d", *s.ClockDomain)
		if s.SAPICEID != nil {
			details += fmt.Sprintf(" sapic-eid=%d", *s.SAPICEID)
		}
	default:
		details = s.Payload
	}

	return fmt.Sprintf("%d|%s|%s|%s|%v|%s", i, s.Type, domain, id, s.Enabled, strings.TrimSpace(details))
}

func (c *EntriesCommand) Run(args []string) int {
	var json bool

	flags := c.Meta.FlagSet(c.Name(), FlagSetTable)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.BoolVar(&c.Meta.includeUnknown, "all", false, "")
	flags.BoolVar(&json, "json", false, "")

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

	if cfg.VerifyChecksum {
		if err := table.Header.Validate(table.Bytes(), sdt.SignatureSRAT, true); err != nil {
			c.Ui.Error(fmt.Sprintf("Table header is invalid: %s", err))
			return 1
		}
	}

	it := table.Entries()
	if cfg.IncludeUnknown {
		it = table.Records()
	}

	entries, err := srat.Collect(it)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error decoding entries: %s", err))
		return 1
	}
	logger.Debug("decoded entries", "path", cfg.TablePath, "count", len(entries))

	stubs := make([]*entryStub, 0, len(entries))
	for _, e := range entries {
		stubs = append(stubs, newEntryStub(e))
	}

	if json {
		out, err := formatJSON(stubs)
		if err != nil {
			c.Ui.Error(err.Error())
			return 1
		}
		c.Ui.Output(out)
		return 0
	}

	if len(stubs) == 0 {
		c.Ui.Output("No entries found")
		return 0
	}

	rows := make([]string, 0, len(stubs)+1)
	rows = append(rows, "#|Type|Domain|ID|Enabled|Details")
	for i, s := range stubs {
		rows = append(rows, s.row(i))
	}
	c.Ui.Output(formatList(rows))
	return 0
}
