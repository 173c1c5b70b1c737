// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package numalib provides information regarding the system NUMA topology as
// described by firmware: which processors and which ranges of physical memory
// belong to each proximity domain.
//
// https://docs.kernel.org/mm/numa.html
package numalib

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-acpi/lib/idset"
	"github.com/hashicorp/go-acpi/lib/numalib/hw"
	"github.com/hashicorp/go-hclog"
)

// A SystemScanner represents one methodology of detecting topology
// information. Scanners run in order and may add to or replace what earlier
// scanners found.
type SystemScanner interface {
	ScanSystem(*Topology)
}

// Scan runs each scanner against a fresh Topology.
func Scan(logger hclog.Logger, scanners []SystemScanner) *Topology {
	top := NewTopology()
	for _, scanner := range scanners {
		scanner.ScanSystem(top)
	}
	logger.Debug("scanned numa topology", "nodes", top.NodeIDs.String(), "cores", top.NumCores(), "memory", top.TotalMemory())
	return top
}

// A Topology provides a bird-eye view of the system NUMA topology.
type Topology struct {
	NodeIDs *idset.Set[hw.NodeID]
	Nodes   []hw.NodeID
	Cores   []Core
	Memory  []MemoryRange
}

// NewTopology returns an empty Topology.
func NewTopology() *Topology {
	return &Topology{
		NodeIDs: idset.Empty[hw.NodeID](),
	}
}

// A Core is one logical processor.
type Core struct {
	Node        hw.NodeID
	ID          hw.APICID
	ClockDomain hw.ClockDomainID

	// X2APIC is set when ID is an x2APIC ID rather than an 8-bit local APIC
	// ID.
	X2APIC bool
}

func (c Core) String() string {
	kind := "apic"
	if c.X2APIC {
		kind = "x2apic"
	}
	return fmt.Sprintf("(%d %s:%d %d)", c.Node, kind, c.ID, c.ClockDomain)
}

// A MemoryRange is a span of physical memory attached to a node.
type MemoryRange struct {
	Node         hw.NodeID
	Base         uint64
	Length       uint64
	HotPluggable bool
	NonVolatile  bool
}

// End returns the first address past the range, saturating at the top of the
// 64-bit address space.
func (r MemoryRange) End() uint64 {
	end := r.Base + r.Length
	if end < r.Base {
		return math.MaxUint64
	}
	return end
}

func (r MemoryRange) String() string {
	return fmt.Sprintf("(%d %#x-%#x %s)", r.Node, r.Base, r.End(), humanize.IBytes(r.Length))
}

func (st *Topology) addNode(node hw.NodeID) {
	if st.NodeIDs.Contains(node) {
		return
	}
	st.NodeIDs.Insert(node)
	st.Nodes = st.NodeIDs.Slice()
}

func (st *Topology) insertCore(core Core) {
	st.addNode(core.Node)
	st.Cores = append(st.Cores, core)
}

func (st *Topology) insertMemory(r MemoryRange) {
	st.addNode(r.Node)
	st.Memory = append(st.Memory, r)
}

func (st *Topology) reset() {
	st.NodeIDs = idset.Empty[hw.NodeID]()
	st.Nodes = nil
	st.Cores = nil
	st.Memory = nil
}

func (st *Topology) String() string {
	var sb strings.Builder
	for _, core := range st.Cores {
		sb.WriteString(core.String())
	}
	for _, r := range st.Memory {
		sb.WriteString(r.String())
	}
	return sb.String()
}

// NumCores returns the number of logical processors across all nodes.
func (st *Topology) NumCores() int {
	return len(st.Cores)
}

// CoresOf returns the set of processor IDs belonging to node.
func (st *Topology) CoresOf(node hw.NodeID) *idset.Set[hw.APICID] {
	ids := idset.Empty[hw.APICID]()
	for _, core := range st.Cores {
		if core.Node == node {
			ids.Insert(core.ID)
		}
	}
	return ids
}

// MemoryOf returns the memory ranges of node ordered by base address.
func (st *Topology) MemoryOf(node hw.NodeID) []MemoryRange {
	var ranges []MemoryRange
	for _, r := range st.Memory {
		if r.Node == node {
			ranges = append(ranges, r)
		}
	}
	slices.SortFunc(ranges, func(a, b MemoryRange) int {
		return cmp.Compare(a.Base, b.Base)
	})
	return ranges
}

// NodeMemory returns the bytes of memory attached to node.
func (st *Topology) NodeMemory(node hw.NodeID) uint64 {
	var total uint64
	for _, r := range st.MemoryOf(node) {
		total += r.Length
	}
	return total
}

// TotalMemory returns the bytes of memory across all nodes.
func (st *Topology) TotalMemory() uint64 {
	var total uint64
	for _, r := range st.Memory {
		total += r.Length
	}
	return total
}
