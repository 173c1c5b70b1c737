// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package srat

import (
	"fmt"
	"iter"
	"math"

	"github.com/hashicorp/go-acpi/acpi/record"
)

// An Iterator walks the entry stream of a table one record at a time.
//
// Use it like a bufio.Scanner:
//
//	it := table.Entries()
//	for it.Next() {
//		switch e := it.Entry().(type) {
//		case srat.MemoryAffinity:
//			...
//		}
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
//
// An Iterator is not safe for concurrent use, though any number of iterators
// may read the same table at once.
type Iterator struct {
	buf       []byte
	off       int
	remaining uint32

	// base is the offset of buf within the table, for error messages
	base int

	unknown bool
	entry   Entry
	err     error
}

// NewIterator returns an iterator over a bare entry stream, such as the bytes
// following the SRAT header. If unknown is set the iterator yields Unknown
// entries instead of skipping them.
func NewIterator(b []byte, unknown bool) *Iterator {
	return newIterator(b, 0, unknown)
}

func newIterator(b []byte, base int, unknown bool) *Iterator {
	it := &Iterator{
		buf:     b,
		base:    base,
		unknown: unknown,
	}
	if uint64(len(b)) > math.MaxUint32 {
		it.err = fmt.Errorf("%w: entry stream of %d bytes", ErrTruncatedTable, len(b))
		return it
	}
	it.remaining = uint32(len(b))
	return it
}

// Next advances to the next entry, which is then available through Entry. It
// returns false when the stream is exhausted or an error occurred.
func (it *Iterator) Next() bool {
	it.entry = nil
	if it.err != nil {
		return false
	}

	for it.remaining > 0 {
		start := it.off

		h, ok := record.Read(it.buf[start:])
		if !ok {
			it.err = fmt.Errorf("%w: %d trailing bytes at offset %d", ErrTruncatedTable, it.remaining, it.base+start)
			return false
		}
		if !h.Valid() {
			it.err = fmt.Errorf("%w: type %#x has length %d at offset %d", ErrMalformedEntry, h.Type, h.Length, it.base+start)
			return false
		}
		if uint32(h.Length) > it.remaining {
			it.err = fmt.Errorf("%w: type %#x has length %d at offset %d, only %d bytes remain",
				ErrTruncatedTable, h.Type, h.Length, it.base+start, it.remaining)
			return false
		}

		it.off += int(h.Length)
		it.remaining -= uint32(h.Length)

		entry, err := decode(h, it.buf[start:it.off:it.off])
		if err != nil {
			it.err = fmt.Errorf("%w at offset %d", err, it.base+start)
			return false
		}

		if _, skip := entry.(Unknown); skip && !it.unknown {
			continue
		}

		it.entry = entry
		return true
	}

	return false
}

// Entry returns the entry produced by the most recent call to Next.
func (it *Iterator) Entry() Entry {
	return it.entry
}

// Err returns the error that stopped iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Remaining is the number of bytes not yet consumed.
func (it *Iterator) Remaining() uint32 {
	return it.remaining
}

// Seq adapts the iterator for use with range. A decode error is yielded once
// with a nil Entry, after which the sequence ends.
func (it *Iterator) Seq() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for it.Next() {
			if !yield(it.Entry(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Collect drains it, returning every entry or the first error.
func Collect(it *Iterator) ([]Entry, error) {
	var entries []Entry
	for it.Next() {
		entries = append(entries, it.Entry())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// decode builds the Entry for a record whose bounds are already verified.
func decode(h record.Header, raw []byte) (Entry, error) {
	typ := EntryType(h.Type)
	if size, ok := typ.size(); ok && len(raw) < size {
		return nil, fmt.Errorf("%w: %s has length %d, need %d", ErrMalformedEntry, typ, len(raw), size)
	}

	v := view{raw: raw}
	switch typ {
	case TypeProcessorLocalAPICAffinity:
		return ProcessorLocalAPICAffinity{v}, nil
	case TypeMemoryAffinity:
		return MemoryAffinity{v}, nil
	case TypeProcessorLocalX2APICAffinity:
		return ProcessorLocalX2APICAffinity{v}, nil
	default:
		return Unknown{v}, nil
	}
}
