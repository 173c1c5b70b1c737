// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package testlog creates loggers backed by testing.T to ease logging in
// tests.
package testlog

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// envLogLevel overrides the level used by HCLogger.
const envLogLevel = "ACPI_TEST_LOG_LEVEL"

// Logger is the methods of testing.T (or testing.B) needed by the test
// logger.
type Logger interface {
	Logf(format string, args ...interface{})
	Helper()
}

// Writer implements io.Writer on top of a Logger.
type Writer struct {
	t Logger
}

// Write to an underlying Logger. Never returns an error.
func (w *Writer) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Logf("%s", p)
	return len(p), nil
}

// HCLogger returns a new test hc-logger at Trace level, or the level named
// by ACPI_TEST_LOG_LEVEL.
func HCLogger(t Logger) hclog.InterceptLogger {
	level := hclog.Trace
	if envLevel := os.Getenv(envLogLevel); envLevel != "" {
		level = hclog.LevelFromString(envLevel)
	}
	return hclog.NewInterceptLogger(&hclog.LoggerOptions{
		Level:           level,
		Output:          &Writer{t},
		IncludeLocation: true,
	})
}
