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

	"github.com/AleutianAI/semgate/services/semgate/ast"
	"github.com/AleutianAI/semgate/services/semgate/match"
)

// DiffShapes compares the externally visible shape of classes,
// interfaces, and module-level variables.
//
// Member removals break consumers (high); additions widen the shape
// (medium). Classes and interfaces appearing or disappearing wholesale
// surface through their members and types; only variables are reported
// as whole declarations here.
func DiffShapes(base, head *ast.StructuralModel, params Params) []ChangeRecord {
	var out []ChangeRecord

	pairs, pool := match.PairByUniqueKey(
		shapePtrs(base.Shapes), shapePtrs(head.Shapes),
		func(s *ast.ShapeSite) string { return s.Kind.String() + "|" + s.Name },
	)

	for _, p := range pairs {
		switch p.Head.Kind {
		case ast.ShapeVariable:
			out = append(out, diffVariableShape(p.Base, p.Head, params)...)
		default:
			out = append(out, diffMemberShape(p.Base, p.Head, params)...)
		}
	}

	for _, s := range pool.Base {
		if s.Kind == ast.ShapeVariable {
			out = append(out, record(KindVariableRemoved, SeverityMedium, params, s.Span, AnchorBase,
				s.Name, fmt.Sprintf("module variable %q removed", s.Name)))
		}
	}
	for _, s := range pool.Head {
		if s.Kind == ast.ShapeVariable {
			out = append(out, record(KindVariableAdded, SeverityLow, params, s.Span, AnchorHead,
				s.Name, fmt.Sprintf("module variable %q added", s.Name)))
		}
	}
	return out
}

func shapePtrs(shapes []ast.ShapeSite) []*ast.ShapeSite {
	out := make([]*ast.ShapeSite, len(shapes))
	for i := range shapes {
		out[i] = &shapes[i]
	}
	return out
}

// diffMemberShape diffs the member multisets of a class or interface.
func diffMemberShape(base, head *ast.ShapeSite, params Params) []ChangeRecord {
	if match.MultisetEqual(base.Members, head.Members) {
		return nil
	}

	removedKind, addedKind := KindClassMemberRemoved, KindClassMemberAdded
	noun := "class"
	if head.Kind == ast.ShapeInterface {
		removedKind, addedKind = KindInterfaceMemberRemoved, KindInterfaceMemberAdded
		noun = "interface"
	}

	var out []ChangeRecord
	headCounts := countStrings(head.Members)
	for _, m := range base.Members {
		if headCounts[m] > 0 {
			headCounts[m]--
			continue
		}
		out = append(out, record(removedKind, SeverityHigh, params, head.Span, AnchorHead,
			head.Name, fmt.Sprintf("%s %q member %q removed", noun, head.Name, m)))
	}
	baseCounts := countStrings(base.Members)
	for _, m := range head.Members {
		if baseCounts[m] > 0 {
			baseCounts[m]--
			continue
		}
		out = append(out, record(addedKind, SeverityMedium, params, head.Span, AnchorHead,
			head.Name, fmt.Sprintf("%s %q member %q added", noun, head.Name, m)))
	}
	return out
}

func countStrings(items []string) map[string]int {
	counts := make(map[string]int, len(items))
	for _, s := range items {
		counts[s]++
	}
	return counts
}

// diffVariableShape checks declaration kind and initializer of one
// module-level variable.
func diffVariableShape(base, head *ast.ShapeSite, params Params) []ChangeRecord {
	var out []ChangeRecord

	if base.DeclKind != head.DeclKind {
		rec := record(KindVariableKindChanged, SeverityMedium, params, head.Span, AnchorHead,
			head.Name, fmt.Sprintf("variable %q declaration changed: %s -> %s", head.Name, base.DeclKind, head.DeclKind))
		rec.Context = base.DeclKind + " -> " + head.DeclKind
		out = append(out, rec)
	}
	if base.Initializer != head.Initializer {
		rec := record(KindVariableInitializerChanged, SeverityMedium, params, head.Span, AnchorHead,
			head.Name, fmt.Sprintf("initializer of %q changed", head.Name))
		rec.Context = base.Initializer + " -> " + head.Initializer
		out = append(out, rec)
	}
	return out
}
