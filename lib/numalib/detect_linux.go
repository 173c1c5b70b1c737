// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

//go:build linux

package numalib

import (
	"github.com/hashicorp/go-hclog"
)

// PlatformScanners returns the set of SystemScanner for Linux.
func PlatformScanners(logger hclog.Logger, path string, verifyChecksum bool) []SystemScanner {
	return []SystemScanner{
		NewSrat(logger, path, verifyChecksum),
		new(Fallback),
	}
}
