// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/go-acpi/command"
	"github.com/hashicorp/go-acpi/version"
	colorable "github.com/mattn/go-colorable"
)

func main() {
	os.Exit(Run(os.Args[1:]))
}

// Run executes the CLI with args and returns the exit status.
func Run(args []string) int {
	ui := newUi()

	commands := command.Commands(&command.Meta{Ui: ui})
	cli := &cli.CLI{
		Name:                       "acpi-srat",
		Version:                    version.GetVersion().FullVersionNumber(false),
		Args:                       args,
		Commands:                   commands,
		HelpFunc:                   helpFunc(commands),
		HelpWriter:                 os.Stdout,
		Autocomplete:               true,
		AutocompleteInstall:        "autocomplete-install",
		AutocompleteUninstall:      "autocomplete-uninstall",
		AutocompleteNoDefaultFlags: true,
	}

	exitCode, err := cli.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err.Error())
		return 1
	}

	return exitCode
}

func newUi() cli.Ui {
	basic := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      colorable.NewColorableStdout(),
		ErrorWriter: colorable.NewColorableStderr(),
	}

	if os.Getenv(command.EnvCLINoColor) != "" {
		return basic
	}

	return &cli.ColoredUi{
		ErrorColor: cli.UiColorRed,
		WarnColor:  cli.UiColorYellow,
		Ui:         basic,
	}
}

func helpFunc(commands map[string]cli.CommandFactory) cli.HelpFunc {
	return func(map[string]cli.CommandFactory) string {
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)

		var b strings.Builder
		b.WriteString("Usage: acpi-srat [-version] [-help] [-autocomplete-(un)install] <command> [args]\n\n")
		b.WriteString("Decode the ACPI System Resource Affinity Table.\n\n")
		b.WriteString("Commands:\n")

		for _, name := range names {
			cmd, err := commands[name]()
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "    %-10s %s\n", name, cmd.Synopsis())
		}
		return b.String()
	}
}
