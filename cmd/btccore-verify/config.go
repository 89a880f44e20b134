// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultLogFilename    = "btccore-verify.log"
	defaultVerdictDbDirname = "verdictdb"
	defaultMaxLogFiles    = 3
	defaultLogLevel       = "info"
)

var (
	defaultHomeDir   = filepath.Join(os.Getenv("HOME"), ".btccore-verify")
	defaultLogDir    = filepath.Join(defaultHomeDir, "logs")
	defaultVerdictDb = filepath.Join(defaultHomeDir, defaultVerdictDbDirname)
)

// config defines the configuration options for btccore-verify.
//
// See loadConfig for details on the configuration load process.
type config struct {
	HomeDir     string `short:"b" long:"homedir" description:"Directory to store data"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	VerdictDb   string `long:"verdictdb" description:"Path to the verdict cache database"`
	LogLevel    string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	NoCache     bool   `long:"nocache" description:"Disable the verdict cache entirely"`
	BlockFile   string `long:"blockfile" description:"Path to a raw serialized block to verify" required:"true"`
	Height      int32  `long:"height" description:"Chain height the block is being verified at"`
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		path = filepath.Join(defaultHomeDir, path[1:])
	}
	return filepath.Clean(os.ExpandEnv(path))
}

// loadConfig parses command line options, applying defaults for anything not
// explicitly specified.
func loadConfig() (*config, []string, error) {
	cfg := config{
		HomeDir:   defaultHomeDir,
		LogDir:    defaultLogDir,
		VerdictDb: defaultVerdictDb,
		LogLevel:  defaultLogLevel,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, nil, err
	}

	cfg.HomeDir = cleanAndExpandPath(cfg.HomeDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.VerdictDb = cleanAndExpandPath(cfg.VerdictDb)

	if err := os.MkdirAll(cfg.HomeDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("unable to create home directory: %w", err)
	}

	return &cfg, remainingArgs, nil
}
