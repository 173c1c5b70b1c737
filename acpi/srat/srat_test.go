// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package srat_test

import (
	"sync"
	"testing"

	"github.com/hashicorp/go-acpi/acpi/sdt"
	"github.com/hashicorp/go-acpi/acpi/srat"
	"github.com/hashicorp/go-acpi/acpi/srat/srattest"
	"github.com/shoenig/test/must"
)

// decoded is a comparable rendering of an Entry.
type decoded struct {
	Type     srat.EntryType
	Length   uint8
	Domain   uint32
	ID       uint32
	Flags    uint32
	Clock    uint32
	SAPICEID uint8
	Base     uint64
	Size     uint64
	Payload  []byte
}

func decode(e srat.Entry) decoded {
	d := decoded{Type: e.Type(), Length: e.Header().Length}
	switch e := e.(type) {
	case srat.ProcessorLocalAPICAffinity:
		d.Domain = e.ProximityDomain()
		d.ID = uint32(e.APICID())
		d.Flags = e.Flags()
		d.Clock = e.ClockDomain()
		d.SAPICEID = e.SAPICEID()
	case srat.MemoryAffinity:
		d.Domain = e.ProximityDomain()
		d.Base = e.Base()
		d.Size = e.Length()
		d.Flags = e.Flags()
	case srat.ProcessorLocalX2APICAffinity:
		d.Domain = e.ProximityDomain()
		d.ID = e.X2APICID()
		d.Flags = e.Flags()
		d.Clock = e.ClockDomain()
	case srat.Unknown:
		d.Payload = e.Payload()
	}
	return d
}

func decodeAll(t *testing.T, it *srat.Iterator) []decoded {
	t.Helper()
	entries, err := srat.Collect(it)
	must.NoError(t, err)
	result := make([]decoded, 0, len(entries))
	for _, e := range entries {
		result = append(result, decode(e))
	}
	return result
}

func TestParse(t *testing.T) {
	good := srattest.New().
		Memory(srattest.Memory{Domain: 0, Base: 0, Length: 0xa0000, Flags: srat.MemoryEnabled}).
		Bytes()

	t.Run("ok", func(t *testing.T) {
		table, err := srat.Parse(good)
		must.NoError(t, err)
		must.Eq(t, "SRAT", table.Header.SignatureString())
		must.Eq(t, uint32(1), table.TableRevision())
		must.Eq(t, uint32(srat.MemoryAffinitySize), table.TrailingLength())
		must.Eq(t, len(good), len(table.Bytes()))
	})

	t.Run("buffer longer than table", func(t *testing.T) {
		padded := append(append([]byte(nil), good...), 0xff, 0xff, 0xff)
		table, err := srat.Parse(padded)
		must.NoError(t, err)
		must.Eq(t, len(good), len(table.Bytes()))
		must.Len(t, 1, decodeAll(t, table.Entries()))
	})

	t.Run("too short for header", func(t *testing.T) {
		_, err := srat.Parse(good[:srat.TableHeaderSize-1])
		must.ErrorIs(t, err, srat.ErrShortTable)
	})

	t.Run("declared length too short", func(t *testing.T) {
		b := append([]byte(nil), good...)
		h, err := sdt.Decode(b)
		must.NoError(t, err)
		h.Length = srat.TableHeaderSize - 1
		h.Encode(b)
		_, err = srat.Parse(b)
		must.ErrorIs(t, err, srat.ErrShortTable)
	})

	t.Run("declared length exceeds buffer", func(t *testing.T) {
		_, err := srat.Parse(good[:len(good)-1])
		must.ErrorIs(t, err, srat.ErrTruncatedTable)
	})

	t.Run("checksum", func(t *testing.T) {
		table, err := srat.Parse(good)
		must.NoError(t, err)
		must.NoError(t, table.Header.Validate(table.Bytes(), sdt.SignatureSRAT, true))
	})
}

func TestEntries_recognizedOnly(t *testing.T) {
	b := srattest.New().
		ProcessorAPIC(srattest.ProcessorAPIC{Domain: 0x01020304, APICID: 7, Flags: srat.ProcessorEnabled, SAPICEID: 9, ClockDomain: 3}).
		Memory(srattest.Memory{Domain: 1, Base: 0x1_0000_0000, Length: 0x2_8000_0000, Flags: srat.MemoryEnabled | srat.MemoryHotPluggable}).
		ProcessorX2APIC(srattest.ProcessorX2APIC{Domain: 2, X2APICID: 0x100, Flags: srat.ProcessorEnabled, ClockDomain: 5}).
		Bytes()

	table, err := srat.Parse(b)
	must.NoError(t, err)

	must.Eq(t, []decoded{
		{Type: srat.TypeProcessorLocalAPICAffinity, Length: 16, Domain: 0x01020304, ID: 7, Flags: 1, Clock: 3, SAPICEID: 9},
		{Type: srat.TypeMemoryAffinity, Length: 40, Domain: 1, Base: 0x1_0000_0000, Size: 0x2_8000_0000, Flags: 3},
		{Type: srat.TypeProcessorLocalX2APICAffinity, Length: 24, Domain: 2, ID: 0x100, Flags: 1, Clock: 5},
	}, decodeAll(t, table.Entries()))
}

func TestEntries_skipsReserved(t *testing.T) {
	b := srattest.New().
		Memory(srattest.Memory{Domain: 4, Base: 0x100000, Length: 0x1000}).
		Reserved(0x5, 30).
		ProcessorAPIC(srattest.ProcessorAPIC{Domain: 4, APICID: 2}).
		Raw(0x90, 6, []byte{0xde, 0xad, 0xbe, 0xef}).
		Bytes()

	table, err := srat.Parse(b)
	must.NoError(t, err)

	must.Eq(t, []decoded{
		{Type: srat.TypeMemoryAffinity, Length: 40, Domain: 4, Base: 0x100000, Size: 0x1000},
		{Type: srat.TypeProcessorLocalAPICAffinity, Length: 16, Domain: 4, ID: 2},
	}, decodeAll(t, table.Entries()))
}

func TestRecords_includesUnknown(t *testing.T) {
	b := srattest.New().
		Raw(0x3, 4, []byte{0xaa, 0xbb}).
		ProcessorX2APIC(srattest.ProcessorX2APIC{Domain: 1, X2APICID: 3}).
		Raw(0xff, 2, nil).
		Bytes()

	table, err := srat.Parse(b)
	must.NoError(t, err)

	result := decodeAll(t, table.Records())
	must.Eq(t, []decoded{
		{Type: 0x3, Length: 4, Payload: []byte{0xaa, 0xbb}},
		{Type: srat.TypeProcessorLocalX2APICAffinity, Length: 24, Domain: 1, ID: 3},
		{Type: 0xff, Length: 2, Payload: []byte{}},
	}, result)

	must.Eq(t, "reserved(0x3)", srat.EntryType(0x3).String())
	must.Eq(t, "oem(0xff)", srat.EntryType(0xff).String())
}

func TestIterator_terminates(t *testing.T) {
	b := srattest.New().
		ProcessorAPIC(srattest.ProcessorAPIC{Domain: 0}).
		Reserved(0x7f, 0).
		Bytes()

	table, err := srat.Parse(b)
	must.NoError(t, err)

	it := table.Entries()
	must.True(t, it.Next())
	must.Eq(t, srat.TypeProcessorLocalAPICAffinity, it.Entry().Type())

	// the trailing reserved entry is consumed without being yielded
	must.False(t, it.Next())
	must.Nil(t, it.Entry())
	must.NoError(t, it.Err())
	must.Eq(t, uint32(0), it.Remaining())

	// further calls keep yielding nothing
	must.False(t, it.Next())
	must.False(t, it.Next())
	must.NoError(t, it.Err())
}

func TestIterator_empty(t *testing.T) {
	table, err := srat.Parse(srattest.New().Bytes())
	must.NoError(t, err)
	must.Eq(t, uint32(0), table.TrailingLength())
	must.False(t, table.Entries().Next())
	must.False(t, table.Records().Next())
}

func TestIterator_errors(t *testing.T) {
	cases := []struct {
		name    string
		builder *srattest.Builder
		exp     error
		before  int
		msg     string
	}{
		{
			name:    "zero length",
			builder: srattest.New().Raw(0x1, 0, make([]byte, 38)),
			exp:     srat.ErrMalformedEntry,
			msg:     "type 0x1 has length 0 at offset 48",
		},
		{
			name:    "length smaller than header",
			builder: srattest.New().Raw(0x90, 1, []byte{0}),
			exp:     srat.ErrMalformedEntry,
		},
		{
			name:    "zero length after valid entry",
			builder: srattest.New().ProcessorAPIC(srattest.ProcessorAPIC{}).Raw(0x0, 0, make([]byte, 14)),
			exp:     srat.ErrMalformedEntry,
			before:  1,
		},
		{
			name:    "length exceeds remaining",
			builder: srattest.New().Raw(0x1, 40, make([]byte, 10)),
			exp:     srat.ErrTruncatedTable,
			msg:     "type 0x1 has length 40 at offset 48, only 12 bytes remain",
		},
		{
			name:    "reserved length exceeds remaining",
			builder: srattest.New().Memory(srattest.Memory{}).Raw(0x42, 200, make([]byte, 4)),
			exp:     srat.ErrTruncatedTable,
			before:  1,
		},
		{
			name:    "single trailing byte",
			builder: srattest.New().ProcessorX2APIC(srattest.ProcessorX2APIC{}).Raw(0x2, 0, nil).Truncate(1),
			exp:     srat.ErrTruncatedTable,
			before:  1,
		},
		{
			name:    "recognized type shorter than layout",
			builder: srattest.New().Raw(0x2, 8, make([]byte, 6)),
			exp:     srat.ErrMalformedEntry,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table, err := srat.Parse(tc.builder.Bytes())
			must.NoError(t, err)

			it := table.Entries()
			count := 0
			for it.Next() {
				count++
			}
			must.Eq(t, tc.before, count)
			must.ErrorIs(t, it.Err(), tc.exp)
			if tc.msg != "" {
				must.ErrorContains(t, it.Err(), tc.msg)
			}

			// a failed iterator stays failed
			must.False(t, it.Next())
			must.ErrorIs(t, it.Err(), tc.exp)

			_, err = srat.Collect(table.Records())
			must.ErrorIs(t, err, tc.exp)
		})
	}
}

func TestTable_All(t *testing.T) {
	b := srattest.New().
		ProcessorAPIC(srattest.ProcessorAPIC{Domain: 0, APICID: 0}).
		Reserved(0x10, 4).
		ProcessorAPIC(srattest.ProcessorAPIC{Domain: 0, APICID: 1}).
		ProcessorAPIC(srattest.ProcessorAPIC{Domain: 1, APICID: 2}).
		Bytes()

	table, err := srat.Parse(b)
	must.NoError(t, err)

	var ids []uint8
	for e, err := range table.All() {
		must.NoError(t, err)
		ids = append(ids, e.(srat.ProcessorLocalAPICAffinity).APICID())
	}
	must.Eq(t, []uint8{0, 1, 2}, ids)

	t.Run("break early", func(t *testing.T) {
		n := 0
		for range table.All() {
			n++
			break
		}
		must.Eq(t, 1, n)
	})

	t.Run("error", func(t *testing.T) {
		bad, err := srat.Parse(srattest.New().ProcessorAPIC(srattest.ProcessorAPIC{}).Raw(0x1, 0, nil).Bytes())
		must.NoError(t, err)

		var errs []error
		n := 0
		for e, err := range bad.All() {
			if err != nil {
				must.Nil(t, e)
				errs = append(errs, err)
				continue
			}
			n++
		}
		must.Eq(t, 1, n)
		must.Len(t, 1, errs)
		must.ErrorIs(t, errs[0], srat.ErrMalformedEntry)
	})
}

func TestTable_concurrentIterators(t *testing.T) {
	builder := srattest.New()
	for i := 0; i < 64; i++ {
		builder.ProcessorX2APIC(srattest.ProcessorX2APIC{Domain: uint32(i % 4), X2APICID: uint32(i)})
	}
	table, err := srat.Parse(builder.Bytes())
	must.NoError(t, err)

	var wg sync.WaitGroup
	counts := make([]int, 8)
	for i := range counts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			it := table.Entries()
			for it.Next() {
				counts[i]++
			}
		}()
	}
	wg.Wait()

	for _, c := range counts {
		must.Eq(t, 64, c)
	}
}

func TestEntries_zeroCopy(t *testing.T) {
	b := srattest.New().Memory(srattest.Memory{Domain: 1}).Bytes()
	table, err := srat.Parse(b)
	must.NoError(t, err)

	it := table.Entries()
	must.True(t, it.Next())
	mem := it.Entry().(srat.MemoryAffinity)
	must.Eq(t, uint32(1), mem.ProximityDomain())

	// entries alias the caller's buffer
	b[srat.TableHeaderSize+2] = 9
	must.Eq(t, uint32(9), mem.ProximityDomain())
	must.Eq(t, srat.MemoryAffinitySize, cap(mem.Bytes()))
}
