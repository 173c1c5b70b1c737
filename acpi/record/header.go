// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package record provides the two byte header found at the start of every
// entry in the variable length ACPI tables (MADT, SRAT, ...).
package record

// HeaderSize is the size in bytes of an encoded Header.
const HeaderSize = 2

// A Header describes one entry of a firmware table. Length counts the whole
// entry, including the header itself.
type Header struct {
	Type   uint8
	Length uint8
}

// Read interprets the first two bytes of b as a Header. No validation of the
// decoded values is performed; ok is false only when b is too short.
func Read(b []byte) (h Header, ok bool) {
	if len(b) < HeaderSize {
		return Header{}, false
	}
	return Header{Type: b[0], Length: b[1]}, true
}

// Put encodes h into the first two bytes of b.
func (h Header) Put(b []byte) {
	_ = b[1]
	b[0] = h.Type
	b[1] = h.Length
}

// Valid reports whether the header allows a cursor to make forward progress.
func (h Header) Valid() bool {
	return h.Length >= HeaderSize
}
