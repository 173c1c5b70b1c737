// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package srat decodes the ACPI System Resource Affinity Table.
//
// The SRAT associates processors (by local APIC or x2APIC ID) and physical
// memory ranges with proximity domains, which the operating system maps onto
// NUMA nodes. The table is a 48 byte prefix followed by a stream of variable
// length entries, each starting with a record.Header.
//
// Decoding never copies the table: every Entry is a view over a sub-slice of
// the buffer passed to Parse, and the buffer must not be modified while
// entries are in use. Entry types this package does not recognize are skipped
// by Entries and surfaced as Unknown by Records, so tables from newer
// firmware decode without error.
//
// https://uefi.org/specs/ACPI/6.5/05_ACPI_Software_Programming_Model.html#system-resource-affinity-table-srat
package srat
