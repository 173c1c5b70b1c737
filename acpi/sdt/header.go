// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package sdt decodes the System Description Table header that prefixes every
// ACPI table other than the RSDP and FACS.
package sdt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// HeaderSize is the size in bytes of an encoded Header.
const HeaderSize = 36

// Well known table signatures.
const (
	SignatureSRAT = "SRAT"
	SignatureMADT = "APIC"
)

var (
	ErrShortHeader       = errors.New("buffer too short for table header")
	ErrSignatureMismatch = errors.New("table signature mismatch")
	ErrLengthMismatch    = errors.New("table length exceeds buffer")
	ErrChecksum          = errors.New("table checksum invalid")
)

// Header is the common ACPI table header.
type Header struct {
	Signature       [4]byte
	Length          uint32
	Revision        uint8
	Checksum        uint8
	OEMID           [6]byte
	OEMTableID      [8]byte
	OEMRevision     uint32
	CreatorID       uint32
	CreatorRevision uint32
}

// Decode reads a Header from the start of b.
func Decode(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: have %d bytes, need %d", ErrShortHeader, len(b), HeaderSize)
	}

	var h Header
	copy(h.Signature[:], b[0:4])
	h.Length = binary.LittleEndian.Uint32(b[4:8])
	h.Revision = b[8]
	h.Checksum = b[9]
	copy(h.OEMID[:], b[10:16])
	copy(h.OEMTableID[:], b[16:24])
	h.OEMRevision = binary.LittleEndian.Uint32(b[24:28])
	h.CreatorID = binary.LittleEndian.Uint32(b[28:32])
	h.CreatorRevision = binary.LittleEndian.Uint32(b[32:36])
	return h, nil
}

// Encode writes h into the first HeaderSize bytes of b.
func (h Header) Encode(b []byte) {
	_ = b[HeaderSize-1]
	copy(b[0:4], h.Signature[:])
	binary.LittleEndian.PutUint32(b[4:8], h.Length)
	b[8] = h.Revision
	b[9] = h.Checksum
	copy(b[10:16], h.OEMID[:])
	copy(b[16:24], h.OEMTableID[:])
	binary.LittleEndian.PutUint32(b[24:28], h.OEMRevision)
	binary.LittleEndian.PutUint32(b[28:32], h.CreatorID)
	binary.LittleEndian.PutUint32(b[32:36], h.CreatorRevision)
}

// SignatureString returns the table signature as a string.
func (h Header) SignatureString() string {
	return string(h.Signature[:])
}

// OEM returns the OEM ID and OEM table ID with padding removed.
func (h Header) OEM() (string, string) {
	trim := func(b []byte) string {
		return strings.TrimRight(string(b), " \x00")
	}
	return trim(h.OEMID[:]), trim(h.OEMTableID[:])
}

// Validate checks the header against the table bytes in b. The checksum is
// only verified when verifyChecksum is set, since some firmware ships tables
// with a stale checksum that the kernel accepts anyway.
func (h Header) Validate(b []byte, signature string, verifyChecksum bool) error {
	var mErr *multierror.Error

	if got := h.SignatureString(); got != signature {
		mErr = multierror.Append(mErr, fmt.Errorf("%w: got %q, want %q", ErrSignatureMismatch, got, signature))
	}

	lengthOK := uint64(h.Length) <= uint64(len(b))
	if !lengthOK {
		mErr = multierror.Append(mErr, fmt.Errorf("%w: declared %d, have %d", ErrLengthMismatch, h.Length, len(b)))
	}

	if verifyChecksum && lengthOK {
		if sum := Checksum(b[:h.Length]); sum != 0 {
			mErr = multierror.Append(mErr, fmt.Errorf("%w: sum is %#x", ErrChecksum, sum))
		}
	}

	return mErr.ErrorOrNil()
}

// Checksum returns the 8-bit sum of b. A well formed table sums to zero.
func Checksum(b []byte) uint8 {
	var sum uint8
	for _, c := range b {
		sum += c
	}
	return sum
}
