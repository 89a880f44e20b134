// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/coreforge/btccore/blockchain"
	"github.com/coreforge/btccore/bloom"
	"github.com/coreforge/btccore/txscript"
	"github.com/coreforge/btccore/wire"
)

// logRotator is one of the logging outputs. It should be closed on
// application shutdown.
var logRotator *rotator.Rotator

var backendLog = btclog.NewBackend(logWriter{})

var (
	verifyLog = backendLog.Logger("VRFY")
)

// logWriter implements an io.Writer that outputs to both standard output and
// the log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// initLogRotator initializes the logging rotator to write logs to logFile
// and create roll files in the same directory. It must be called before
// the package-global log rotator variables are used.
func initLogRotator(logFile string) {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		os.Stderr.WriteString("failed to create log directory: " + err.Error() + "\n")
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, defaultMaxLogFiles)
	if err != nil {
		os.Stderr.WriteString("failed to create file rotator: " + err.Error() + "\n")
		os.Exit(1)
	}
	logRotator = r
}

// setLogLevels sets the logging level for the verifier and every library
// subsystem it calls into.
func setLogLevels(level string) {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		lvl = btclog.LevelInfo
	}

	subsystemLogger := func(tag string) btclog.Logger {
		l := backendLog.Logger(tag)
		l.SetLevel(lvl)
		return l
	}

	verifyLog.SetLevel(lvl)
	blockchain.UseLogger(subsystemLogger("CHAN"))
	wire.UseLogger(subsystemLogger("WIRE"))
	txscript.UseLogger(subsystemLogger("SCRP"))
	bloom.UseLogger(subsystemLogger("BLOM"))
}
