// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package numalib

import (
	"context"
	"time"

	"github.com/hashicorp/go-acpi/lib/numalib/hw"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	genericNode = hw.NodeID(0)
)

// Generic implements SystemScanner for systems where no firmware topology is
// available. Everything is placed on a single node.
type Generic struct{}

func (g *Generic) ScanSystem(top *Topology) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	top.addNode(genericNode)

	if count, err := cpu.CountsWithContext(ctx, true); err == nil {
		for i := 0; i < count; i++ {
			top.insertCore(Core{Node: genericNode, ID: hw.APICID(i)})
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm.Total > 0 {
		top.insertMemory(MemoryRange{Node: genericNode, Length: vm.Total})
	}
}

// Fallback detects if the firmware scanner was unable to construct a valid
// model of the system. This will be common in containers, virtual machines
// without a virtual SRAT, or without root.
type Fallback struct{}

func (s *Fallback) ScanSystem(top *Topology) {
	broken := false

	switch {
	case top.NodeIDs.Empty():
		broken = true
	case top.NumCores() <= 0:
		broken = true
	case top.TotalMemory() == 0:
		broken = true
	}

	if !broken {
		return
	}

	// we have a broken topology; reset it and fallback to the generic scanner
	top.reset()
	new(Generic).ScanSystem(top)
}
