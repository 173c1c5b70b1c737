// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package srattest builds encoded SRAT tables for tests and examples.
package srattest

import (
	"encoding/binary"

	"github.com/hashicorp/go-acpi/acpi/record"
	"github.com/hashicorp/go-acpi/acpi/sdt"
	"github.com/hashicorp/go-acpi/acpi/srat"
)

// ProcessorAPIC describes a processor local APIC affinity entry.
type ProcessorAPIC struct {
	Domain      uint32
	APICID      uint8
	Flags       uint32
	SAPICEID    uint8
	ClockDomain uint32
}

// Memory describes a memory affinity entry.
type Memory struct {
	Domain uint32
	Base   uint64
	Length uint64
	Flags  uint32
}

// ProcessorX2APIC describes a processor local x2APIC affinity entry.
type ProcessorX2APIC struct {
	Domain      uint32
	X2APICID    uint32
	Flags       uint32
	ClockDomain uint32
}

// A Builder accumulates entries and encodes them into a table.
type Builder struct {
	entries []byte
}

// New returns an empty Builder.
func New() *Builder {
	return new(Builder)
}

// ProcessorAPIC appends a type 0 entry.
func (b *Builder) ProcessorAPIC(p ProcessorAPIC) *Builder {
	e := make([]byte, srat.ProcessorLocalAPICAffinitySize)
	record.Header{Type: uint8(srat.TypeProcessorLocalAPICAffinity), Length: uint8(len(e))}.Put(e)
	e[2] = uint8(p.Domain)
	e[3] = p.APICID
	binary.LittleEndian.PutUint32(e[4:], p.Flags)
	e[8] = p.SAPICEID
	e[9] = uint8(p.Domain >> 8)
	e[10] = uint8(p.Domain >> 16)
	e[11] = uint8(p.Domain >> 24)
	binary.LittleEndian.PutUint32(e[12:], p.ClockDomain)
	b.entries = append(b.entries, e...)
	return b
}

// Memory appends a type 1 entry.
func (b *Builder) Memory(m Memory) *Builder {
	e := make([]byte, srat.MemoryAffinitySize)
	record.Header{Type: uint8(srat.TypeMemoryAffinity), Length: uint8(len(e))}.Put(e)
	binary.LittleEndian.PutUint32(e[2:], m.Domain)
	binary.LittleEndian.PutUint32(e[8:], uint32(m.Base))
	binary.LittleEndian.PutUint32(e[12:], uint32(m.Base>>32))
	binary.LittleEndian.PutUint32(e[16:], uint32(m.Length))
	binary.LittleEndian.PutUint32(e[20:], uint32(m.Length>>32))
	binary.LittleEndian.PutUint32(e[28:], m.Flags)
	b.entries = append(b.entries, e...)
	return b
}

// ProcessorX2APIC appends a type 2 entry.
func (b *Builder) ProcessorX2APIC(p ProcessorX2APIC) *Builder {
	e := make([]byte, srat.ProcessorLocalX2APICAffinitySize)
	record.Header{Type: uint8(srat.TypeProcessorLocalX2APICAffinity), Length: uint8(len(e))}.Put(e)
	binary.LittleEndian.PutUint32(e[4:], p.Domain)
	binary.LittleEndian.PutUint32(e[8:], p.X2APICID)
	binary.LittleEndian.PutUint32(e[12:], p.Flags)
	binary.LittleEndian.PutUint32(e[16:], p.ClockDomain)
	b.entries = append(b.entries, e...)
	return b
}

// Raw appends a header with the given type and length followed by payload,
// without checking that length matches. Use it to encode reserved types and
// malformed entries.
func (b *Builder) Raw(typ, length uint8, payload []byte) *Builder {
	b.entries = append(b.entries, typ, length)
	b.entries = append(b.entries, payload...)
	return b
}

// Reserved appends a well formed entry of the given type with a zeroed
// payload of size bytes.
func (b *Builder) Reserved(typ uint8, size int) *Builder {
	return b.Raw(typ, uint8(record.HeaderSize+size), make([]byte, size))
}

// Truncate drops the last n bytes of the entry stream.
func (b *Builder) Truncate(n int) *Builder {
	b.entries = b.entries[:max(0, len(b.entries)-n)]
	return b
}

// Entries returns the encoded entry stream.
func (b *Builder) Entries() []byte {
	return append([]byte(nil), b.entries...)
}

// Bytes returns a complete table with a valid header and checksum.
func (b *Builder) Bytes() []byte {
	length := srat.TableHeaderSize + len(b.entries)
	buf := make([]byte, length)

	h := sdt.Header{
		Length:          uint32(length),
		Revision:        3,
		OEMRevision:     1,
		CreatorID:       0x4c544e49,
		CreatorRevision: 0x20200925,
	}
	copy(h.Signature[:], sdt.SignatureSRAT)
	copy(h.OEMID[:], "HCORP ")
	copy(h.OEMTableID[:], "SRATTEST")
	h.Encode(buf)

	// table revision
	binary.LittleEndian.PutUint32(buf[sdt.HeaderSize:], 1)
	copy(buf[srat.TableHeaderSize:], b.entries)

	buf[9] = -sdt.Checksum(buf)
	return buf
}
