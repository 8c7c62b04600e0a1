// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policy

import (
	"path/filepath"
	"strings"
)

// Matcher matches file paths against include/exclude glob patterns.
//
// Patterns use glob syntax with ** for recursive matching:
//   - *  matches any sequence of non-separator characters
//   - ** matches any sequence of characters including separators
//   - ?  matches any single non-separator character
//
// Thread Safety: Matcher is safe for concurrent use after creation.
type Matcher struct {
	includes []string
	excludes []string
}

// NewMatcher creates a matcher. Empty includes means everything not
// excluded matches; empty excludes excludes nothing.
func NewMatcher(includes, excludes []string) *Matcher {
	return &Matcher{includes: includes, excludes: excludes}
}

// Match reports whether path is selected: not excluded, and matching at
// least one include pattern (or includes is empty). Paths are compared
// with forward slashes.
func (m *Matcher) Match(path string) bool {
	path = filepath.ToSlash(path)

	for _, pattern := range m.excludes {
		if matchGlob(pattern, path) {
			return false
		}
	}
	if len(m.includes) == 0 {
		return true
	}
	for _, pattern := range m.includes {
		if matchGlob(pattern, path) {
			return true
		}
	}
	return false
}

// MatchAny reports whether path matches any of patterns, with no
// include/exclude semantics. Used for side-effect callee patterns and
// tests-required file lists.
func MatchAny(patterns []string, path string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range patterns {
		if matchGlob(pattern, path) {
			return true
		}
	}
	return false
}

// matchGlob matches one pattern, routing ** patterns to the recursive
// matcher and falling back to a bare-filename match for plain patterns.
func matchGlob(pattern, path string) bool {
	if strings.Contains(pattern, "**") {
		return matchRecursive(pattern, path)
	}
	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}
	matched, _ := filepath.Match(pattern, filepath.Base(path))
	return matched
}

// matchRecursive handles patterns containing **.
func matchRecursive(pattern, path string) bool {
	parts := strings.Split(pattern, "**")

	if len(parts) == 2 {
		prefix := strings.TrimSuffix(parts[0], "/")
		suffix := strings.TrimPrefix(parts[1], "/")

		if prefix != "" {
			if !strings.HasPrefix(path, prefix+"/") && path != prefix {
				return false
			}
			path = strings.TrimPrefix(path, prefix+"/")
		}
		if suffix != "" {
			return matchTail(suffix, path)
		}
		return true
	}

	// Multiple **: require the literal parts to appear in order.
	pathIdx := 0
	for i, part := range parts {
		part = strings.Trim(part, "/")
		if part == "" {
			continue
		}
		idx := strings.Index(path[pathIdx:], part)
		if idx == -1 {
			return false
		}
		if i == 0 && !strings.HasPrefix(pattern, "**") && idx != 0 {
			return false
		}
		pathIdx += idx + len(part)
	}
	if !strings.HasSuffix(pattern, "**") && pathIdx != len(path) {
		return false
	}
	return true
}

// matchTail matches a suffix pattern against every path tail.
func matchTail(suffix, path string) bool {
	if strings.ContainsAny(suffix, "*?[") {
		segments := strings.Split(path, "/")
		for i := range segments {
			tail := strings.Join(segments[i:], "/")
			if matched, _ := filepath.Match(suffix, tail); matched {
				return true
			}
		}
		return false
	}
	return strings.HasSuffix(path, suffix) || strings.Contains(path, suffix+"/") || path == suffix
}
