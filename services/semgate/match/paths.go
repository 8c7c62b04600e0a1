// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package match

import "strings"

// NormalizePath canonicalizes a member-access expression into a plain
// dotted path so equivalent access idioms compare equal:
//
//	obj?.m        -> obj.m
//	obj["m"]      -> obj.m
//	obj?.["m"]    -> obj.m
//	obj.m?.(args) -> obj.m   (call parens are not part of the path)
//
// Bracket access with a non-literal index is preserved as written
// (normalized whitespace aside), since it is not a static member path.
func NormalizePath(expr string) string {
	var b strings.Builder
	b.Grow(len(expr))

	i := 0
	n := len(expr)
	for i < n {
		c := expr[i]
		switch {
		case c == '?' && i+1 < n && expr[i+1] == '.':
			// `?.` -> `.` unless followed by `(`: the optional-call
			// form `f?.()` contributes nothing to the path.
			if i+2 < n && expr[i+2] == '(' {
				i += 2
				continue
			}
			// `?.[` bracket access: drop the `?.` and let the bracket
			// handling below run.
			b.WriteByte('.')
			i += 2
			// Skip a `.` the bracket rewrite would add twice.
			if i < n && expr[i] == '[' {
				lit, end, ok := bracketLiteral(expr, i)
				if ok {
					b.WriteString(lit)
					i = end
					continue
				}
			}
			continue
		case c == '[':
			lit, end, ok := bracketLiteral(expr, i)
			if ok {
				b.WriteByte('.')
				b.WriteString(lit)
				i = end
				continue
			}
			b.WriteByte(c)
			i++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}

	// A leading `.` can appear when the expression started with a
	// bracket rewrite; strip it.
	return strings.TrimPrefix(b.String(), ".")
}

// bracketLiteral reads a `["name"]` or `['name']` access starting at the
// opening bracket and returns the inner identifier.
func bracketLiteral(expr string, open int) (lit string, end int, ok bool) {
	i := open + 1
	n := len(expr)
	for i < n && (expr[i] == ' ' || expr[i] == '\t') {
		i++
	}
	if i >= n || (expr[i] != '"' && expr[i] != '\'') {
		return "", 0, false
	}
	quote := expr[i]
	i++
	start := i
	for i < n && expr[i] != quote {
		if expr[i] == '\\' {
			return "", 0, false
		}
		i++
	}
	if i >= n {
		return "", 0, false
	}
	lit = expr[start:i]
	i++
	for i < n && (expr[i] == ' ' || expr[i] == '\t') {
		i++
	}
	if i >= n || expr[i] != ']' {
		return "", 0, false
	}
	return lit, i + 1, true
}

// PathSuffix returns the path minus its leading segment, or "" when the
// path has a single segment. Used for renamed-receiver tolerance.
func PathSuffix(path string) string {
	idx := strings.IndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return path[idx+1:]
}
