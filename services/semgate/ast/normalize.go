// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"sort"
	"strings"
)

// commutativeWrappers are utility types whose nested composition is
// order-insensitive: Readonly<Partial<T>> and Partial<Readonly<T>> are
// mutually assignable, so both canonicalize to the same string.
var commutativeWrappers = map[string]bool{
	"Partial":  true,
	"Required": true,
	"Readonly": true,
}

// NormalizeText collapses whitespace and strips comments, so formatting
// edits never register as changes.
func NormalizeText(s string) string {
	s = stripComments(s)
	return collapseWhitespace(s)
}

// stripComments removes // line comments and /* */ block comments while
// preserving string and template literal contents.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	i := 0
	n := len(s)
	for i < n {
		c := s[i]
		switch {
		case c == '/' && i+1 < n && s[i+1] == '/':
			for i < n && s[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && s[i+1] == '*':
			i += 2
			for i+1 < n && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i += 2
			if i > n {
				i = n
			}
		case c == '"' || c == '\'' || c == '`':
			quote := c
			b.WriteByte(c)
			i++
			for i < n {
				b.WriteByte(s[i])
				if s[i] == '\\' && i+1 < n {
					i++
					b.WriteByte(s[i])
					i++
					continue
				}
				if s[i] == quote {
					i++
					break
				}
				i++
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// collapseWhitespace reduces runs of whitespace to a single space and
// drops spaces adjacent to punctuation so layout never matters.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			lastSpace = true
			continue
		}
		if lastSpace && b.Len() > 0 {
			prev := b.String()[b.Len()-1]
			if !isPunct(prev) && !isPunct(byte(r)) {
				b.WriteByte(' ')
			}
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func isPunct(c byte) bool {
	switch c {
	case '{', '}', '(', ')', '[', ']', '<', '>', ',', ';', ':', '|', '&', '=', '?', '.':
		return true
	}
	return false
}

// CanonicalType rewrites a type expression into one canonical string so
// that semantically equal idioms compare equal:
//
//   - Array<T> and T[] collapse to T[]
//   - ReadonlyArray<T> collapses to readonly T[]
//   - commutative utility wrappers (Partial/Required/Readonly) are
//     applied in sorted order
//   - top-level union members are sorted
func CanonicalType(s string) string {
	s = NormalizeText(s)
	s = rewriteListIdioms(s)
	s = sortCommutativeWrappers(s)
	s = sortUnionMembers(s)
	return s
}

// rewriteListIdioms collapses the generic list-wrapper form into the
// array-suffix form, recursively.
func rewriteListIdioms(s string) string {
	for {
		next := rewriteOneListIdiom(s)
		if next == s {
			return s
		}
		s = next
	}
}

func rewriteOneListIdiom(s string) string {
	for _, prefix := range []string{"ReadonlyArray<", "Array<"} {
		idx := findWrapperStart(s, prefix, 0)
		if idx < 0 {
			continue
		}
		open := idx + len(prefix) - 1
		close := matchAngle(s, open)
		if close < 0 {
			continue
		}
		inner := strings.TrimSpace(s[open+1 : close])
		if needsParens(inner) {
			inner = "(" + inner + ")"
		}
		var repl string
		if strings.HasPrefix(prefix, "Readonly") {
			repl = "readonly " + inner + "[]"
		} else {
			repl = inner + "[]"
		}
		return s[:idx] + repl + s[close+1:]
	}
	return s
}

// findWrapperStart locates prefix at an identifier boundary, searching
// from the given offset.
func findWrapperStart(s, prefix string, from int) int {
	for {
		idx := strings.Index(s[from:], prefix)
		if idx < 0 {
			return -1
		}
		idx += from
		if idx == 0 || !isIdentByte(s[idx-1]) {
			return idx
		}
		from = idx + 1
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// matchAngle returns the index of the '>' matching the '<' at open.
func matchAngle(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// needsParens reports whether inner must be parenthesized when given an
// array suffix.
func needsParens(inner string) bool {
	depth := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			depth--
		case '|', '&':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// sortCommutativeWrappers canonicalizes nested commutative utility-type
// applications: Readonly<Partial<T>> becomes Partial<Readonly<T>>
// (wrapper names sorted lexicographically).
func sortCommutativeWrappers(s string) string {
	// Wrapper chains start at identifier boundaries. Every occurrence of
	// every wrapper name is tried, since an unreorderable occurrence may
	// precede a reorderable one; recursion handles the rewritten string.
	for name := range commutativeWrappers {
		for from := 0; ; {
			idx := findWrapperStart(s, name+"<", from)
			if idx < 0 {
				break
			}
			chain, payload, end := readWrapperChain(s, idx)
			if len(chain) < 2 {
				from = idx + 1
				continue
			}
			sorted := append([]string(nil), chain...)
			sort.Strings(sorted)
			if equalStrings(sorted, chain) {
				from = idx + 1
				continue
			}
			var b strings.Builder
			b.WriteString(s[:idx])
			for _, w := range sorted {
				b.WriteString(w)
				b.WriteByte('<')
			}
			b.WriteString(payload)
			b.WriteString(strings.Repeat(">", len(sorted)))
			b.WriteString(s[end:])
			return sortCommutativeWrappers(b.String())
		}
	}
	return s
}

// readWrapperChain reads a maximal chain of commutative wrappers starting
// at idx, returning the wrapper names, the innermost payload, and the
// index just past the chain.
func readWrapperChain(s string, idx int) (chain []string, payload string, end int) {
	pos := idx
	for {
		matched := ""
		for name := range commutativeWrappers {
			if strings.HasPrefix(s[pos:], name+"<") {
				matched = name
				break
			}
		}
		if matched == "" {
			break
		}
		chain = append(chain, matched)
		pos += len(matched) + 1
	}
	if len(chain) == 0 {
		return nil, "", idx
	}
	// pos is just past the innermost '<'. Find the matching close of the
	// outermost wrapper.
	outerOpen := idx + len(chain[0])
	outerClose := matchAngle(s, outerOpen)
	if outerClose < 0 {
		return nil, "", idx
	}
	// Reordering is only sound for a pure chain: each wrapper's argument
	// is exactly the next wrapper, so the closers sit back to back. A
	// wrapper covering only part of the payload (Readonly<Partial<T> | U>)
	// is not commutative with its inner wrapper.
	for i := outerClose - len(chain) + 1; i <= outerClose; i++ {
		if i < pos || s[i] != '>' {
			return nil, "", idx
		}
	}
	payload = strings.TrimSpace(s[pos : outerClose-len(chain)+1])
	return chain, payload, outerClose + 1
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sortUnionMembers sorts top-level `|` members so reordering a union is
// a no-op. Nested unions inside generics or parens are left alone.
func sortUnionMembers(s string) string {
	members := SplitTopLevel(s, '|')
	if len(members) < 2 {
		return s
	}
	for i := range members {
		members[i] = strings.TrimSpace(members[i])
	}
	sort.Strings(members)
	return strings.Join(members, " | ")
}

// SplitTopLevel splits s on sep occurrences at bracket depth zero.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}
