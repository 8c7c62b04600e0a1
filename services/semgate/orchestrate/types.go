// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orchestrate runs one full semantic diff per candidate file in
// a bounded worker pool with per-task timeouts and crash isolation.
//
// Design principles:
//   - No task failure aborts the batch; failures become error results
//   - A timed-out task is abandoned: its goroutine may finish but its
//     result is discarded
//   - Output ordering is owned by the aggregator, never by completion
//     order: results are keyed by file, not sequenced
package orchestrate

import (
	"github.com/AleutianAI/semgate/services/semgate/detect"
)

// Task is one unit of work: a single file diffed between two refs.
type Task struct {
	FilePath string
	BaseRef  string
	HeadRef  string
}

// Status reports how a task ended.
type Status int

const (
	// StatusSuccess means the diff completed and Changes is valid.
	StatusSuccess Status = iota

	// StatusError means the task failed, timed out, or panicked;
	// Error carries the message.
	StatusError
)

// String returns "success" or "error".
func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "error"
}

// Result is the uniform per-task envelope.
type Result struct {
	// TaskID is a short unique identifier for log correlation.
	TaskID   string
	FilePath string
	Status   Status

	// Changes is the final aggregated record list (success only).
	Changes []detect.ChangeRecord

	// TestsRequired is the per-file gate decision (success only).
	TestsRequired bool

	// Error is the failure message (error status only).
	Error string
}
