// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDataDirname = "data"
	defaultLogDirname  = "logs"
	defaultLogLevel    = "info"
	defaultFormat      = "JSON"
)

// config defines the kerid configuration options, parsed from the
// command line via go-flags, the same option-struct-plus-tag idiom the
// teacher's daemon configuration uses.
type config struct {
	AppDataDir string `short:"A" long:"appdata" description:"Directory to store KEL data and logs"`
	DataDir    string `long:"datadir" description:"Directory to store the event database"`
	LogDir     string `long:"logdir" description:"Directory to log output"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level: trace, debug, info, warn, error, critical"`
	Format     string `short:"f" long:"format" description:"Default wire format for minted messages: JSON or CBOR"`
	Import     string `long:"import" description:"Path to a KEL byte stream to ingest on startup, then exit"`
}

func defaultAppDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".kerid")
}

// loadConfig parses the command line into a config, filling in defaults
// for anything left unset, per the teacher's loadConfig flow (minus the
// network/peer options this module's Non-goals exclude).
func loadConfig() (*config, []string, error) {
	cfg := config{
		AppDataDir: defaultAppDataDir(),
		DebugLevel: defaultLogLevel,
		Format:     defaultFormat,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	remaining, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(cfg.AppDataDir, defaultDataDirname)
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.AppDataDir, defaultLogDirname)
	}

	return &cfg, remaining, nil
}
