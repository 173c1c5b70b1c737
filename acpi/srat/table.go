// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package srat

import (
	"encoding/binary"
	"fmt"
	"iter"

	"github.com/hashicorp/go-acpi/acpi/sdt"
)

const (
	// bodySize is the table revision (4 bytes) plus 8 reserved bytes that sit
	// between the SDT header and the first entry.
	bodySize = 12

	// TableHeaderSize is the offset of the first entry within the table.
	TableHeaderSize = sdt.HeaderSize + bodySize
)

// A Table is a view over an SRAT held in memory.
type Table struct {
	Header sdt.Header

	// buf is exactly Header.Length bytes
	buf []byte
}

// Parse creates a Table over b. Only the fields needed to bound decoding are
// checked; signature and checksum validation belong to sdt.Header.Validate.
// The returned Table and its entries reference b directly.
func Parse(b []byte) (*Table, error) {
	if len(b) < TableHeaderSize {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortTable, len(b), TableHeaderSize)
	}

	h, err := sdt.Decode(b)
	if err != nil {
		return nil, err
	}

	switch {
	case h.Length < TableHeaderSize:
		return nil, fmt.Errorf("%w: declared length %d", ErrShortTable, h.Length)
	case uint64(h.Length) > uint64(len(b)):
		return nil, fmt.Errorf("%w: declared length %d, have %d bytes", ErrTruncatedTable, h.Length, len(b))
	}

	return &Table{
		Header: h,
		buf:    b[:h.Length:h.Length],
	}, nil
}

// Bytes returns the raw table, including the header.
func (t *Table) Bytes() []byte {
	return t.buf
}

// TableRevision returns the SRAT specific revision field, which is 1 for
// every published version of the table.
func (t *Table) TableRevision() uint32 {
	return binary.LittleEndian.Uint32(t.buf[sdt.HeaderSize:])
}

// TrailingLength is the number of bytes of entries following the header.
func (t *Table) TrailingLength() uint32 {
	return t.Header.Length - TableHeaderSize
}

// Entries returns an iterator over the recognized entries of the table.
func (t *Table) Entries() *Iterator {
	return newIterator(t.buf[TableHeaderSize:], TableHeaderSize, false)
}

// Records returns an iterator over every entry of the table, yielding
// Unknown for entry types this package does not decode.
func (t *Table) Records() *Iterator {
	return newIterator(t.buf[TableHeaderSize:], TableHeaderSize, true)
}

// All is a range-over-func form of Entries. A decode error is yielded once
// with a nil Entry, after which the sequence ends.
func (t *Table) All() iter.Seq2[Entry, error] {
	return t.Entries().Seq()
}
