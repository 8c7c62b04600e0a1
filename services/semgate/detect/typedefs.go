// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package detect

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/semgate/services/semgate/ast"
	"github.com/AleutianAI/semgate/services/semgate/match"
)

// DiffTypes compares type definitions by name.
//
// Additions are low: a new type cannot break existing users. Removals
// are deliberately not reported here; a removed type surfaces through
// the function, call, and import analyzers of its users, and the bare
// removal has no runtime effect. A changed canonical definition is
// medium, elevated to high when the change appears to break mutual
// assignability between the two versions.
func DiffTypes(base, head *ast.StructuralModel, params Params) []ChangeRecord {
	var out []ChangeRecord

	pairs, pool := match.PairByUniqueKey(
		typePtrs(base.Types), typePtrs(head.Types),
		func(t *ast.TypeSite) string { return t.IdentityKey() },
	)

	for _, p := range pairs {
		if p.Base.Definition == p.Head.Definition {
			continue
		}
		kind, sev := KindTypeDefinitionChanged, SeverityMedium
		if assignabilityBroken(p.Base.Definition, p.Head.Definition) {
			kind, sev = KindTypeAssignabilityBroke, SeverityHigh
		}
		rec := record(kind, sev, params, p.Head.Span, AnchorHead,
			p.Head.Name, fmt.Sprintf("%s %q definition changed", p.Head.Kind, p.Head.Name))
		rec.Context = p.Base.Definition + " -> " + p.Head.Definition
		out = append(out, rec)
	}

	for _, t := range pool.Head {
		out = append(out, record(KindTypeAdded, SeverityLow, params, t.Span, AnchorHead,
			t.Name, fmt.Sprintf("%s %q added", t.Kind, t.Name)))
	}
	return out
}

func typePtrs(types []ast.TypeSite) []*ast.TypeSite {
	out := make([]*ast.TypeSite, len(types))
	for i := range types {
		out[i] = &types[i]
	}
	return out
}

// typeMember is one parsed object-type member.
type typeMember struct {
	value    string
	required bool
	literal  bool
}

// assignabilityBroken applies two conservative rules to a changed
// definition: a required member present on exactly one side, or a
// changed literal member value (a discriminant). Anything subtler stays
// at the medium severity of the plain definition change.
func assignabilityBroken(baseDef, headDef string) bool {
	baseMembers := parseObjectMembers(baseDef)
	headMembers := parseObjectMembers(headDef)
	if len(baseMembers) == 0 && len(headMembers) == 0 {
		return false
	}

	for name, bm := range baseMembers {
		hm, ok := headMembers[name]
		if !ok {
			if bm.required {
				return true
			}
			continue
		}
		if bm.literal && hm.literal && bm.value != hm.value {
			return true
		}
	}
	for name, hm := range headMembers {
		if _, ok := baseMembers[name]; !ok && hm.required {
			return true
		}
	}
	return false
}

// parseObjectMembers extracts `name: type` members from the outermost
// brace block of a canonical definition. Definitions without an object
// body yield an empty map.
func parseObjectMembers(def string) map[string]typeMember {
	body, ok := outerBraceBody(def)
	if !ok {
		return nil
	}
	members := make(map[string]typeMember)
	for _, part := range splitMembers(body) {
		idx := topLevelColon(part)
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(part[:idx])
		value := strings.TrimSpace(part[idx+1:])
		if name == "" || strings.ContainsAny(name, "({[<") {
			continue
		}
		required := !strings.HasSuffix(name, "?")
		name = strings.TrimSuffix(name, "?")
		name = strings.TrimPrefix(name, "readonly ")
		members[name] = typeMember{
			value:    value,
			required: required,
			literal:  isLiteralValue(value),
		}
	}
	return members
}

// outerBraceBody returns the contents of the first top-level brace block.
func outerBraceBody(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start+1 : i], true
			}
		}
	}
	return "", false
}

// splitMembers splits an object body on top-level ';' and ','.
func splitMembers(body string) []string {
	var out []string
	for _, chunk := range ast.SplitTopLevel(body, ';') {
		out = append(out, ast.SplitTopLevel(chunk, ',')...)
	}
	return out
}

// topLevelColon finds the member name/type separator, skipping nested
// brackets and `?:` of conditional types.
func topLevelColon(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '(', '[', '<':
			depth++
		case '}', ')', ']', '>':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isLiteralValue(v string) bool {
	if v == "" {
		return false
	}
	c := v[0]
	return c == '"' || c == '\'' || c == '`' || (c >= '0' && c <= '9') || c == '-' ||
		v == "true" || v == "false"
}
