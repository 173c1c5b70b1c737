// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/go-acpi/acpi/srat"
	"github.com/hashicorp/go-acpi/acpi/srat/srattest"
	"github.com/shoenig/test/must"
)

// testTable writes a two node table to a temporary file and returns its path.
func testTable(t *testing.T) string {
	t.Helper()
	const gib = uint64(1) << 30
	b := srattest.New().
		ProcessorAPIC(srattest.ProcessorAPIC{Domain: 0, APICID: 0, Flags: srat.ProcessorEnabled}).
		ProcessorAPIC(srattest.ProcessorAPIC{Domain: 0, APICID: 1, Flags: srat.ProcessorEnabled}).
		ProcessorX2APIC(srattest.ProcessorX2APIC{Domain: 1, X2APICID: 0x100, Flags: srat.ProcessorEnabled, ClockDomain: 1}).
		Reserved(0x90, 6).
		Memory(srattest.Memory{Domain: 0, Base: 0, Length: 4 * gib, Flags: srat.MemoryEnabled}).
		Memory(srattest.Memory{Domain: 1, Base: 4 * gib, Length: 8 * gib, Flags: srat.MemoryEnabled | srat.MemoryHotPluggable}).
		Bytes()
	return writeFile(t, "SRAT", b)
}

func writeFile(t *testing.T, name string, b []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	must.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func testMeta(ui cli.Ui) Meta {
	return Meta{Ui: ui, LogOutput: io.Discard}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	must.NoError(t, err)
	return b
}
