// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package srat

import "errors"

var (
	// ErrMalformedEntry indicates an entry whose length is smaller than its
	// own header, or smaller than the fixed layout of its recognized type.
	ErrMalformedEntry = errors.New("malformed srat entry")

	// ErrTruncatedTable indicates an entry or table that extends beyond the
	// bytes available to it.
	ErrTruncatedTable = errors.New("truncated srat table")

	// ErrShortTable indicates a table whose declared length cannot hold the
	// fixed SRAT prefix.
	ErrShortTable = errors.New("srat table shorter than its header")
)
