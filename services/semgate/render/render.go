// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package render turns an orchestrated run into console text, JSON, a
// line-oriented machine format, or CI inline annotations. Every
// renderer is a pure function of the run result.
package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/AleutianAI/semgate/services/semgate/orchestrate"
)

// Format names one output renderer.
type Format string

const (
	// FormatConsole is the human-readable colored summary.
	FormatConsole Format = "console"

	// FormatJSON dumps the full run result as JSON.
	FormatJSON Format = "json"

	// FormatLines emits one colon-delimited line per record.
	FormatLines Format = "lines"

	// FormatGitHub emits GitHub workflow inline annotations.
	FormatGitHub Format = "github"
)

// ErrUnknownFormat is returned for an unrecognized format name.
var ErrUnknownFormat = fmt.Errorf("unknown output format")

// Run is the renderer-facing view of one orchestrated batch.
type Run struct {
	// Results holds per-file results in file-path order.
	Results []orchestrate.Result

	// TestsRequired is true when any file tripped the gate.
	TestsRequired bool

	// ErrorCount is the number of failed tasks.
	ErrorCount int
}

// BuildRun flattens the orchestrator's keyed results into the sorted,
// summarized view renderers consume.
func BuildRun(results map[string]orchestrate.Result) Run {
	run := Run{Results: make([]orchestrate.Result, 0, len(results))}
	for _, res := range results {
		run.Results = append(run.Results, res)
		if res.Status == orchestrate.StatusError {
			run.ErrorCount++
		}
		if res.TestsRequired {
			run.TestsRequired = true
		}
	}
	sort.Slice(run.Results, func(i, j int) bool {
		return run.Results[i].FilePath < run.Results[j].FilePath
	})
	return run
}

// Render writes the run in the named format.
func Render(w io.Writer, format Format, run Run, opts ...ConsoleOption) error {
	switch format {
	case FormatConsole:
		return Console(w, run, opts...)
	case FormatJSON:
		return JSON(w, run)
	case FormatLines:
		return Lines(w, run)
	case FormatGitHub:
		return GitHub(w, run)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
