// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package srat_test

import (
	"testing"

	"github.com/hashicorp/go-acpi/acpi/srat"
	"github.com/hashicorp/go-acpi/acpi/srat/srattest"
	"github.com/shoenig/test/must"
	"pgregory.net/rapid"
)

// genEntry appends one random entry to b and returns its expected decoding,
// or false if the entry is of a type that Entries skips.
func genEntry(t *rapid.T, b *srattest.Builder) (decoded, bool) {
	kind := rapid.IntRange(0, 3).Draw(t, "kind")
	switch kind {
	case 0:
		p := srattest.ProcessorAPIC{
			Domain:      rapid.Uint32().Draw(t, "domain"),
			APICID:      rapid.Uint8().Draw(t, "apic"),
			Flags:       rapid.Uint32().Draw(t, "flags"),
			SAPICEID:    rapid.Uint8().Draw(t, "sapic"),
			ClockDomain: rapid.Uint32().Draw(t, "clock"),
		}
		b.ProcessorAPIC(p)
		return decoded{
			Type: srat.TypeProcessorLocalAPICAffinity, Length: srat.ProcessorLocalAPICAffinitySize,
			Domain: p.Domain, ID: uint32(p.APICID), Flags: p.Flags, Clock: p.ClockDomain, SAPICEID: p.SAPICEID,
		}, true
	case 1:
		m := srattest.Memory{
			Domain: rapid.Uint32().Draw(t, "domain"),
			Base:   rapid.Uint64().Draw(t, "base"),
			Length: rapid.Uint64().Draw(t, "length"),
			Flags:  rapid.Uint32().Draw(t, "flags"),
		}
		b.Memory(m)
		return decoded{
			Type: srat.TypeMemoryAffinity, Length: srat.MemoryAffinitySize,
			Domain: m.Domain, Base: m.Base, Size: m.Length, Flags: m.Flags,
		}, true
	case 2:
		p := srattest.ProcessorX2APIC{
			Domain:      rapid.Uint32().Draw(t, "domain"),
			X2APICID:    rapid.Uint32().Draw(t, "x2apic"),
			Flags:       rapid.Uint32().Draw(t, "flags"),
			ClockDomain: rapid.Uint32().Draw(t, "clock"),
		}
		b.ProcessorX2APIC(p)
		return decoded{
			Type: srat.TypeProcessorLocalX2APICAffinity, Length: srat.ProcessorLocalX2APICAffinitySize,
			Domain: p.Domain, ID: p.X2APICID, Flags: p.Flags, Clock: p.ClockDomain,
		}, true
	default:
		typ := uint8(rapid.IntRange(0x3, 0xff).Draw(t, "type"))
		size := rapid.IntRange(0, 64).Draw(t, "size")
		b.Reserved(typ, size)
		return decoded{}, false
	}
}

func TestEntries_roundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := srattest.New()
		var exp []decoded
		n := rapid.IntRange(0, 32).Draw(t, "n")
		for i := 0; i < n; i++ {
			if d, ok := genEntry(t, b); ok {
				exp = append(exp, d)
			}
		}

		table, err := srat.Parse(b.Bytes())
		must.NoError(t, err)

		it := table.Entries()
		var got []decoded
		for it.Next() {
			got = append(got, decode(it.Entry()))
		}
		must.NoError(t, it.Err())
		must.Eq(t, exp, got)
		must.Eq(t, uint32(0), it.Remaining())
	})
}

func TestRecords_neverHangs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stream := rapid.SliceOfN(rapid.Byte(), 0, 512).Draw(t, "stream")

		it := srat.NewIterator(stream, true)
		steps := 0
		consumed := 0
		for it.Next() {
			steps++
			consumed += len(it.Entry().Bytes())
			must.LessEq(t, len(stream), steps*2)
		}

		if it.Err() == nil {
			must.Eq(t, len(stream), consumed)
		} else {
			must.Less(t, len(stream), consumed)
		}
	})
}
