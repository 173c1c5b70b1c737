// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package srat

import (
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-acpi/acpi/record"
)

// EntryType is the type tag in an entry's record.Header.
type EntryType uint8

const (
	TypeProcessorLocalAPICAffinity   EntryType = 0x0
	TypeMemoryAffinity               EntryType = 0x1
	TypeProcessorLocalX2APICAffinity EntryType = 0x2

	// types up to 0x7f are defined by (or reserved for) the ACPI standard,
	// the rest are reserved for OEM use
	oemTypeStart EntryType = 0x80
)

// Minimum encoded sizes of the recognized entry types.
const (
	ProcessorLocalAPICAffinitySize   = 16
	MemoryAffinitySize               = 40
	ProcessorLocalX2APICAffinitySize = 24
)

func (t EntryType) String() string {
	switch t {
	case TypeProcessorLocalAPICAffinity:
		return "processor-local-apic-affinity"
	case TypeMemoryAffinity:
		return "memory-affinity"
	case TypeProcessorLocalX2APICAffinity:
		return "processor-local-x2apic-affinity"
	}
	if t.OEM() {
		return fmt.Sprintf("oem(%#x)", uint8(t))
	}
	return fmt.Sprintf("reserved(%#x)", uint8(t))
}

// OEM reports whether t is in the range reserved for OEM use.
func (t EntryType) OEM() bool {
	return t >= oemTypeStart
}

// Known reports whether t is decoded into a typed entry.
func (t EntryType) Known() bool {
	_, ok := t.size()
	return ok
}

func (t EntryType) size() (int, bool) {
	switch t {
	case TypeProcessorLocalAPICAffinity:
		return ProcessorLocalAPICAffinitySize, true
	case TypeMemoryAffinity:
		return MemoryAffinitySize, true
	case TypeProcessorLocalX2APICAffinity:
		return ProcessorLocalX2APICAffinitySize, true
	}
	return 0, false
}

// An Entry is one record of the table. The concrete type is one of
// ProcessorLocalAPICAffinity, MemoryAffinity, ProcessorLocalX2APICAffinity or
// Unknown.
type Entry interface {
	// Type returns the entry's type tag.
	Type() EntryType

	// Header returns the entry's record header.
	Header() record.Header

	// Bytes returns the raw entry, including the header. The slice aliases
	// the table buffer.
	Bytes() []byte

	isEntry()
}

type view struct {
	raw []byte
}

func (v view) Type() EntryType { return EntryType(v.raw[0]) }

func (v view) Header() record.Header {
	return record.Header{Type: v.raw[0], Length: v.raw[1]}
}

func (v view) Bytes() []byte { return v.raw }

func (view) isEntry() {}

func (v view) u32(off int) uint32 {
	return binary.LittleEndian.Uint32(v.raw[off : off+4])
}

// Flag bits of the processor affinity entries.
const (
	ProcessorEnabled uint32 = 1 << 0
)

// Flag bits of the memory affinity entry.
const (
	MemoryEnabled      uint32 = 1 << 0
	MemoryHotPluggable uint32 = 1 << 1
	MemoryNonVolatile  uint32 = 1 << 2
)

// ProcessorLocalAPICAffinity associates a processor, identified by its local
// APIC ID and local SAPIC EID, with a proximity domain.
type ProcessorLocalAPICAffinity struct{ view }

// ProximityDomain assembles the 32-bit domain from bits [7:0] at offset 2 and
// bits [31:8] at offsets 9 through 11.
func (e ProcessorLocalAPICAffinity) ProximityDomain() uint32 {
	return uint32(e.raw[2]) |
		uint32(e.raw[9])<<8 |
		uint32(e.raw[10])<<16 |
		uint32(e.raw[11])<<24
}

func (e ProcessorLocalAPICAffinity) APICID() uint8 { return e.raw[3] }

func (e ProcessorLocalAPICAffinity) Flags() uint32 { return e.u32(4) }

func (e ProcessorLocalAPICAffinity) Enabled() bool { return e.Flags()&ProcessorEnabled != 0 }

func (e ProcessorLocalAPICAffinity) SAPICEID() uint8 { return e.raw[8] }

func (e ProcessorLocalAPICAffinity) ClockDomain() uint32 { return e.u32(12) }

// MemoryAffinity associates a range of physical memory with a proximity
// domain.
type MemoryAffinity struct{ view }

func (e MemoryAffinity) ProximityDomain() uint32 { return e.u32(2) }

// Base is the physical address at which the range starts.
func (e MemoryAffinity) Base() uint64 {
	return uint64(e.u32(12))<<32 | uint64(e.u32(8))
}

// Length is the size of the range in bytes.
func (e MemoryAffinity) Length() uint64 {
	return uint64(e.u32(20))<<32 | uint64(e.u32(16))
}

func (e MemoryAffinity) Flags() uint32 { return e.u32(28) }

func (e MemoryAffinity) Enabled() bool { return e.Flags()&MemoryEnabled != 0 }

func (e MemoryAffinity) HotPluggable() bool { return e.Flags()&MemoryHotPluggable != 0 }

func (e MemoryAffinity) NonVolatile() bool { return e.Flags()&MemoryNonVolatile != 0 }

// ProcessorLocalX2APICAffinity associates a processor, identified by its
// x2APIC ID, with a proximity domain.
type ProcessorLocalX2APICAffinity struct{ view }

func (e ProcessorLocalX2APICAffinity) ProximityDomain() uint32 { return e.u32(4) }

func (e ProcessorLocalX2APICAffinity) X2APICID() uint32 { return e.u32(8) }

func (e ProcessorLocalX2APICAffinity) Flags() uint32 { return e.u32(12) }

func (e ProcessorLocalX2APICAffinity) Enabled() bool { return e.Flags()&ProcessorEnabled != 0 }

func (e ProcessorLocalX2APICAffinity) ClockDomain() uint32 { return e.u32(16) }

// Unknown is an entry of a type this package does not decode: a type defined
// by a later revision of the standard, or an OEM private record.
type Unknown struct{ view }

// Payload returns the entry's bytes following its header.
func (e Unknown) Payload() []byte {
	return e.raw[record.HeaderSize:]
}
