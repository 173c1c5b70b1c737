// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package hw provides types for identifying hardware.
//
// This is a separate "leaf" package that is easy to import from many other
// packages without creating circular imports.
package hw

type (
	// A NodeID represents a NUMA node, which firmware describes as a
	// proximity domain. The SRAT encodes domains in 32 bits.
	NodeID uint32

	// An APICID identifies one logical processor by its local APIC or
	// x2APIC ID.
	APICID uint32

	// A ClockDomainID groups processors that share a clock source.
	ClockDomainID uint32
)
