// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/toole-brendan/keri/event"
	"github.com/toole-brendan/keri/eventdb"
	"github.com/toole-brendan/keri/processor"
)

// logRotator rotates the log file kerid writes to, the same rotating-file
// backend the teacher wires its btcd-style daemons through.
var logRotator *rotator.Rotator

// subsystemLoggers maps each package's logging subsystem tag to its
// logger, mirroring btcd's per-package log-level configuration.
var subsystemLoggers = map[string]*btclog.Logger{
	"EVNT": &eventLog,
	"EDB ": &eventdbLog,
	"PROC": &processorLog,
}

var (
	backendLog   = btclog.NewBackend(logWriter{})
	eventLog     = backendLog.Logger("EVNT")
	eventdbLog   = backendLog.Logger("EDB ")
	processorLog = backendLog.Logger("PROC")
)

func init() {
	event.UseLogger(eventLog)
	eventdb.UseLogger(eventdbLog)
	processor.UseLogger(processorLog)
}

// logWriter implements io.Writer and writes marshaled log records to both
// standard output and the rotating log file.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// initLogRotator initializes the rotating file logger under logDir,
// matching the teacher's daemon log setup.
func initLogRotator(logDir string) error {
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return err
	}
	logFile := filepath.Join(logDir, "kerid.log")
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return err
	}
	logRotator = r
	return nil
}

// setLogLevels sets every subsystem logger to the given level ("trace",
// "debug", "info", "warn", "error", "critical", or "off").
func setLogLevels(levelStr string) {
	level, ok := btclog.LevelFromString(levelStr)
	if !ok {
		return
	}
	for _, l := range subsystemLoggers {
		(*l).SetLevel(level)
	}
}
