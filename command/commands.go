// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"os"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/go-acpi/version"
	colorable "github.com/mattn/go-colorable"
)

// Commands returns the mapping of CLI commands. The meta parameter lets you
// set meta options for all commands.
func Commands(metaPtr *Meta) map[string]cli.CommandFactory {
	if metaPtr == nil {
		metaPtr = new(Meta)
	}

	meta := *metaPtr
	if meta.Ui == nil {
		meta.Ui = &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      colorable.NewColorableStdout(),
			ErrorWriter: colorable.NewColorableStderr(),
		}
	}

	all := map[string]cli.CommandFactory{
		"entries": func() (cli.Command, error) {
			return &EntriesCommand{
				Meta: meta,
			}, nil
		},
		"header": func() (cli.Command, error) {
			return &HeaderCommand{
				Meta: meta,
			}, nil
		},
		"topology": func() (cli.Command, error) {
			return &TopologyCommand{
				Meta: meta,
			}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{
				Version: version.GetVersion(),
				Ui:      meta.Ui,
			}, nil
		},
	}

	return all
}
