// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// semgate classifies semantic changes between two versions of source
// files and decides whether the edit requires tests.
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/semgate/pkg/logging"
)

const version = "0.3.0"

// errTestsRequired trips the gate exit code without printing a second
// error message.
var errTestsRequired = errors.New("tests required")

var (
	flagLogLevel string
	flagLogFile  bool
	flagQuiet    bool

	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:     "semgate",
	Short:   "Semantic-change classifier for code review gates",
	Long:    "semgate diffs two versions of a source file, classifies behavior-relevant changes, and drives a tests-required decision in CI.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logging.ParseLevel(flagLogLevel)
		cfg := logging.Config{
			Level:   level,
			Service: "semgate",
			Quiet:   flagQuiet,
		}
		if flagLogFile {
			cfg.LogDir = "~/.semgate/logs"
		}
		logger = logging.New(cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagLogFile, "log-file", false, "also write JSON logs under ~/.semgate/logs")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress stderr logging")
	rootCmd.AddCommand(newCheckCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errTestsRequired) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
