// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command kerid is a thin local operator entry point wiring
// eventdb.LevelDB to processor.Processor: it opens (or creates) an event
// database and, when given --import, ingests a KEL byte stream from disk
// message by message, logging the outcome of each. It is not a
// protocol-facing peer daemon (spec.md §1's CLI/network Non-goal); it is
// the same kind of local ops harness the teacher ships around its own
// chain database.
package main

import (
	"fmt"
	"os"

	"github.com/toole-brendan/keri/eventdb"
	"github.com/toole-brendan/keri/parser"
	"github.com/toole-brendan/keri/processor"
)

func kerdMain() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	if err := initLogRotator(cfg.LogDir); err != nil {
		return fmt.Errorf("init log rotator: %w", err)
	}
	setLogLevels(cfg.DebugLevel)

	db, err := eventdb.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open event database: %w", err)
	}
	defer db.Close()

	proc := processor.New(db)

	if cfg.Import == "" {
		processorLog.Info("kerid: no --import path given, nothing to do")
		return nil
	}

	raw, err := os.ReadFile(cfg.Import)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	messages, rest := parser.SignedEventStream(raw)
	processorLog.Infof("kerid: decoded %d signed event message(s) from %s", len(messages), cfg.Import)
	if len(rest) > 0 {
		processorLog.Warnf("kerid: %d trailing byte(s) in %s did not parse as a message", len(rest), cfg.Import)
	}

	var failed int
	for _, m := range messages {
		if err := proc.Process(m.Serialize()); err != nil {
			processorLog.Warnf("kerid: %s/%d: %v", m.EventMessage.Event.Prefix, m.EventMessage.Event.Sn, err)
			failed++
		}
	}
	processorLog.Infof("kerid: ingested %d event(s), %d failed", len(messages)-failed, failed)
	return nil
}

func main() {
	if err := kerdMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
