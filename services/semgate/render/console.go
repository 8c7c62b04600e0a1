// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/semgate/services/semgate/detect"
	"github.com/AleutianAI/semgate/services/semgate/orchestrate"
)

// ConsoleOption configures the console renderer.
type ConsoleOption func(*consoleConfig)

type consoleConfig struct {
	forceColor   bool
	disableColor bool
}

// WithColor forces colored output regardless of TTY detection.
func WithColor() ConsoleOption {
	return func(c *consoleConfig) { c.forceColor = true }
}

// WithoutColor disables colored output.
func WithoutColor() ConsoleOption {
	return func(c *consoleConfig) { c.disableColor = true }
}

// Console writes the human-readable summary: per-file records colored
// by severity, then a gate verdict.
func Console(w io.Writer, run Run, opts ...ConsoleOption) error {
	var cfg consoleConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	useColor := cfg.forceColor
	if !cfg.forceColor && !cfg.disableColor {
		if f, ok := w.(*os.File); ok {
			useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}

	high := color.New(color.FgRed, color.Bold)
	medium := color.New(color.FgYellow)
	low := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	if !useColor {
		for _, c := range []*color.Color{high, medium, low, dim} {
			c.DisableColor()
		}
	}

	total := 0
	for _, res := range run.Results {
		if res.Status == orchestrate.StatusError {
			if _, err := high.Fprintf(w, "%s: error: %s\n", res.FilePath, res.Error); err != nil {
				return err
			}
			continue
		}
		if len(res.Changes) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", res.FilePath); err != nil {
			return err
		}
		for _, rec := range res.Changes {
			painter := low
			switch rec.Severity {
			case detect.SeverityHigh:
				painter = high
			case detect.SeverityMedium:
				painter = medium
			}
			if _, err := painter.Fprintf(w, "  %-6s", rec.Severity); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, " %s  %s", rec.Kind, rec.Detail); err != nil {
				return err
			}
			if _, err := dim.Fprintf(w, "  (%d:%d)\n", rec.StartLine, rec.StartCol); err != nil {
				return err
			}
			total++
		}
	}

	if _, err := fmt.Fprintf(w, "\n%d change(s) across %d file(s)", total, len(run.Results)); err != nil {
		return err
	}
	if run.ErrorCount > 0 {
		if _, err := fmt.Fprintf(w, ", %d error(s)", run.ErrorCount); err != nil {
			return err
		}
	}
	verdict := "tests not required"
	if run.TestsRequired {
		verdict = "tests required"
	}
	_, err := fmt.Fprintf(w, "\nverdict: %s\n", verdict)
	return err
}
