// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-acpi/lib/idset"
	"github.com/hashicorp/go-acpi/lib/numalib"
	"github.com/hashicorp/go-acpi/lib/numalib/hw"
	"github.com/posener/complete"
)

type TopologyCommand struct {
	Meta
}

func (c *TopologyCommand) Help() string {
	helpText := `
Usage: acpi-srat topology [options] [path]

  Summarize the NUMA topology described by an SRAT: the processors and
  memory attached to each proximity domain. Entries marked disabled by
  firmware are not counted. If the table cannot be read the topology of the
  running system is shown as a single node.

Topology Options:

  -nodes=<list>
    Only show the given nodes, as a list such as "0,2-3".

  -verbose
    Show each memory range of every node.

  -config=<path>
    Read configuration from the given HCL or JSON file.

  -log-level=<level>
    Log level: trace, debug, info, warn, error, or off.

  -log-json
    Emit logs, and all command output, as JSON log lines.

  -no-color
    Disable colored output.

  -verify-checksum
    Ignore the table if its bytes do not sum to zero.
`
	return strings.TrimSpace(helpText)
}

func (c *TopologyCommand) Synopsis() string {
	return "Summarize processors and memory per NUMA node"
}

func (c *TopologyCommand) AutocompleteFlags() complete.Flags {
	return mergeAutocompleteFlags(c.Meta.AutocompleteFlags(FlagSetTable),
		complete.Flags{
			"-nodes":   complete.PredictAnything,
			"-verbose": complete.PredictNothing,
		})
}

func (c *TopologyCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictFiles("*")
}

func (c *TopologyCommand) Name() string { return "topology" }

func (c *TopologyCommand) Run(args []string) int {
	var nodesFilter string
	var verbose bool

	flags := c.Meta.FlagSet(c.Name(), FlagSetTable)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.StringVar(&nodesFilter, "nodes", "", "")
	flags.BoolVar(&verbose, "verbose", false, "")

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

	var only *idset.Set[hw.NodeID]
	if nodesFilter != "" {
		only, err = idset.Parse[hw.NodeID](nodesFilter)
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Invalid -nodes value: %s", err))
			return 1
		}
	}

	top := numalib.Scan(logger, numalib.PlatformScanners(logger, cfg.TablePath, cfg.VerifyChecksum))

	colorize := c.Meta.Colorize()
	rows := []string{"Node|Cores|Processors|Memory"}
	for _, node := range top.Nodes {
		if only != nil && !only.Contains(node) {
			continue
		}
		cores := top.CoresOf(node)
		rows = append(rows, fmt.Sprintf("%d|%d|%s|%s",
			node, cores.Size(), cores.String(), humanize.IBytes(top.NodeMemory(node))))
	}

	c.Ui.Output(colorize.Color("[bold]Nodes[reset]"))
	c.Ui.Output(formatList(rows))

	if verbose {
		ranges := []string{"Node|Base|End|Size|Attributes"}
		for _, node := range top.Nodes {
			if only != nil && !only.Contains(node) {
				continue
			}
			for _, r := range top.MemoryOf(node) {
				var attrs []string
				if r.HotPluggable {
					attrs = append(attrs, "hot-pluggable")
				}
				if r.NonVolatile {
					attrs = append(attrs, "non-volatile")
				}
				ranges = append(ranges, fmt.Sprintf("%d|%#x|%#x|%s|%s",
					node, r.Base, r.End(), humanize.IBytes(r.Length), strings.Join(attrs, ",")))
			}
		}
		c.Ui.Output("")
		c.Ui.Output(colorize.Color("[bold]Memory Ranges[reset]"))
		c.Ui.Output(formatList(ranges))
	}

	c.Ui.Output("")
	c.Ui.Output(fmt.Sprintf("Total: %d cores, %s", top.NumCores(), humanize.IBytes(top.TotalMemory())))
	return 0
}
