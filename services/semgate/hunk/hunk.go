// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package hunk parses unified-diff patch text into explicit line ranges
// used to scope change records to the literal edited regions.
//
// Parsing never fails the caller: malformed or absent patch text falls
// back to a whole-file set that keeps every record.
package hunk

import (
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// Range is a 1-indexed inclusive line range. Start <= End always holds
// for ranges built by this package.
type Range struct {
	Start int
	End   int
}

// Contains reports whether line falls inside the range.
func (r Range) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// Hunk is one contiguous edited region of a file.
type Hunk struct {
	File      string
	BaseRange Range
	HeadRange Range

	// AddedLines and RemovedLines are the exact head/base line numbers
	// carrying '+' and '-' content.
	AddedLines   []int
	RemovedLines []int
}

// Set is every hunk of one file's patch.
type Set struct {
	File  string
	Hunks []Hunk

	// WholeFile is true when no hunks could be parsed and the set keeps
	// every record regardless of position.
	WholeFile bool
}

// Parse builds a Set from unified-diff patch text for one file.
//
// Empty patch text, unparseable text, and a parse yielding zero hunks
// all fall back to the whole-file set.
func Parse(filePath, patch string) Set {
	if strings.TrimSpace(patch) == "" {
		return wholeFile(filePath)
	}

	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(patch)).ReadAllFiles()
	if err != nil || len(fileDiffs) == 0 {
		return wholeFile(filePath)
	}

	set := Set{File: filePath}
	for _, fd := range fileDiffs {
		for _, h := range fd.Hunks {
			set.Hunks = append(set.Hunks, buildHunk(filePath, h))
		}
	}
	if len(set.Hunks) == 0 {
		return wholeFile(filePath)
	}
	return set
}

func wholeFile(filePath string) Set {
	return Set{File: filePath, WholeFile: true}
}

// buildHunk converts one parsed hunk, walking its body to recover the
// exact added and removed line numbers.
func buildHunk(filePath string, h *diff.Hunk) Hunk {
	out := Hunk{
		File:      filePath,
		BaseRange: lineRange(int(h.OrigStartLine), int(h.OrigLines)),
		HeadRange: lineRange(int(h.NewStartLine), int(h.NewLines)),
	}

	baseLine := int(h.OrigStartLine)
	headLine := int(h.NewStartLine)
	for _, line := range strings.Split(string(h.Body), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			out.AddedLines = append(out.AddedLines, headLine)
			headLine++
		case strings.HasPrefix(line, "-"):
			out.RemovedLines = append(out.RemovedLines, baseLine)
			baseLine++
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file" advances neither side.
		default:
			baseLine++
			headLine++
		}
	}
	return out
}

// lineRange converts a start+length hunk header pair into an inclusive
// range. A zero-length side (pure insertion or deletion) collapses to
// the single anchor line.
func lineRange(start, length int) Range {
	if length <= 0 {
		return Range{Start: start, End: start}
	}
	return Range{Start: start, End: start + length - 1}
}

// KeepsHead reports whether a head-anchored record at line survives
// scoping against the set.
func (s Set) KeepsHead(line int) bool {
	if s.WholeFile {
		return true
	}
	for _, h := range s.Hunks {
		if h.HeadRange.Contains(line) {
			return true
		}
	}
	return false
}

// KeepsBase reports whether a base-anchored record at line survives
// scoping against the set.
func (s Set) KeepsBase(line int) bool {
	if s.WholeFile {
		return true
	}
	for _, h := range s.Hunks {
		if h.BaseRange.Contains(line) {
			return true
		}
	}
	return false
}
