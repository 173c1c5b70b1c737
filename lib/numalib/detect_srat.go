// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package numalib

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-acpi/acpi/sdt"
	"github.com/hashicorp/go-acpi/acpi/srat"
	"github.com/hashicorp/go-acpi/lib/numalib/hw"
	"github.com/hashicorp/go-hclog"
)

// DefaultTablePath is where Linux exposes the firmware SRAT.
const DefaultTablePath = "/sys/firmware/acpi/tables/SRAT"

// pathReaderFn is a path reader function, injected into scanners to ease
// testing.
type pathReaderFn func(string) ([]byte, error)

// Srat implements SystemScanner by decoding the ACPI System Resource Affinity
// Table. Processors and memory ranges not marked enabled by firmware are
// ignored.
type Srat struct {
	Logger hclog.Logger

	// Path of the table; DefaultTablePath when empty.
	Path string

	// VerifyChecksum rejects tables whose bytes do not sum to zero.
	VerifyChecksum bool

	reader pathReaderFn
}

// NewSrat returns a scanner reading the table at path.
func NewSrat(logger hclog.Logger, path string, verifyChecksum bool) *Srat {
	return &Srat{
		Logger:         logger.Named("srat"),
		Path:           path,
		VerifyChecksum: verifyChecksum,
		reader:         os.ReadFile,
	}
}

func (s *Srat) logger() hclog.Logger {
	if s.Logger == nil {
		return hclog.NewNullLogger()
	}
	return s.Logger
}

func (s *Srat) path() string {
	if s.Path == "" {
		return DefaultTablePath
	}
	return s.Path
}

func (s *Srat) ScanSystem(top *Topology) {
	read := s.reader
	if read == nil {
		read = os.ReadFile
	}

	b, err := read(s.path())
	if err != nil {
		s.logger().Debug("srat not available", "path", s.path(), "error", err)
		return
	}

	if err := s.scan(top, b); err != nil {
		s.logger().Warn("failed to decode srat", "path", s.path(), "error", err)
	}
}

// scan decodes b into a scratch topology so that a table that fails part way
// through leaves top untouched.
func (s *Srat) scan(top *Topology, b []byte) error {
	table, err := srat.Parse(b)
	if err != nil {
		return err
	}
	if err := table.Header.Validate(table.Bytes(), sdt.SignatureSRAT, s.VerifyChecksum); err != nil {
		return err
	}

	scratch := NewTopology()
	skipped := 0

	it := table.Records()
	for it.Next() {
		switch e := it.Entry().(type) {
		case srat.ProcessorLocalAPICAffinity:
			if !e.Enabled() {
				continue
			}
			scratch.insertCore(Core{
				Node:        hw.NodeID(e.ProximityDomain()),
				ID:          hw.APICID(e.APICID()),
				ClockDomain: hw.ClockDomainID(e.ClockDomain()),
			})
		case srat.ProcessorLocalX2APICAffinity:
			if !e.Enabled() {
				continue
			}
			scratch.insertCore(Core{
				Node:        hw.NodeID(e.ProximityDomain()),
				ID:          hw.APICID(e.X2APICID()),
				ClockDomain: hw.ClockDomainID(e.ClockDomain()),
				X2APIC:      true,
			})
		case srat.MemoryAffinity:
			if !e.Enabled() || e.Length() == 0 {
				continue
			}
			scratch.insertMemory(MemoryRange{
				Node:         hw.NodeID(e.ProximityDomain()),
				Base:         e.Base(),
				Length:       e.Length(),
				HotPluggable: e.HotPluggable(),
				NonVolatile:  e.NonVolatile(),
			})
		case srat.Unknown:
			skipped++
			s.logger().Trace("skipping srat entry", "type", e.Type(), "length", e.Header().Length)
		}
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("failed to read srat entries: %w", err)
	}

	top.reset()
	for _, core := range scratch.Cores {
		top.insertCore(core)
	}
	for _, r := range scratch.Memory {
		top.insertMemory(r)
	}

	s.logger().Debug("decoded srat", "nodes", top.NodeIDs.String(), "cores", top.NumCores(), "ranges", len(top.Memory), "skipped", skipped)
	return nil
}
