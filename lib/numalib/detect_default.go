// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

//go:build !linux

package numalib

import (
	"github.com/hashicorp/go-hclog"
)

// PlatformScanners returns the set of SystemScanner for systems without a
// firmware table interface. An explicit path still lets the SRAT scanner
// decode a table dumped from another machine.
func PlatformScanners(logger hclog.Logger, path string, verifyChecksum bool) []SystemScanner {
	if path == "" {
		return []SystemScanner{new(Generic)}
	}
	return []SystemScanner{
		NewSrat(logger, path, verifyChecksum),
		new(Fallback),
	}
}
