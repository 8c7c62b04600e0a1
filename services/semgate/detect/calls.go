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

// DiffCalls pairs call sites across versions via a three-pass cascade
// and checks each paired call independently.
//
// The cascade claims each call with the first matching pass:
//
//  1. unique callee-text pairing: exactly one call of that text exists
//     on each side
//  2. optional-chaining equivalence: `?.` and bracket/string access
//     normalize to one dotted path before pairing
//  3. suffix-path tolerance: the path minus its leading segment matches
//     and the argument texts are identical (renamed receiver)
//
// Leftovers are reported as removed or added (medium).
func DiffCalls(base, head *ast.StructuralModel, params Params) []ChangeRecord {
	var out []ChangeRecord

	// Pass 1: unique raw callee text.
	pairs, pool := match.PairByUniqueKey(
		callPtrs(base.Calls), callPtrs(head.Calls),
		func(c *ast.CallSite) string { return c.Callee },
	)

	// Pass 2: normalized path equivalence.
	p2, pool := match.PairWhere(pool, func(b, h *ast.CallSite) bool {
		return match.NormalizePath(b.Callee) == match.NormalizePath(h.Callee)
	})
	pairs = append(pairs, p2...)

	// Pass 3: suffix-path tolerance with identical arguments.
	p3, pool := match.PairWhere(pool, func(b, h *ast.CallSite) bool {
		bs := match.PathSuffix(match.NormalizePath(b.Callee))
		hs := match.PathSuffix(match.NormalizePath(h.Callee))
		return bs != "" && bs == hs && match.OrderedEqual(b.Args, h.Args)
	})
	pairs = append(pairs, p3...)

	for _, p := range pairs {
		out = append(out, diffCallPair(p.Base, p.Head, params)...)
	}

	for _, c := range pool.Base {
		out = append(out, record(KindCallRemoved, SeverityMedium, params, c.Span, AnchorBase,
			c.Callee, fmt.Sprintf("call to %q removed", c.Callee)))
	}
	for _, c := range pool.Head {
		out = append(out, record(KindCallAdded, SeverityMedium, params, c.Span, AnchorHead,
			c.Callee, fmt.Sprintf("call to %q added", c.Callee)))
	}
	return out
}

func callPtrs(calls []ast.CallSite) []*ast.CallSite {
	out := make([]*ast.CallSite, len(calls))
	for i := range calls {
		out[i] = &calls[i]
	}
	return out
}

// diffCallPair runs the independent per-pair checks.
func diffCallPair(base, head *ast.CallSite, params Params) []ChangeRecord {
	var out []ChangeRecord

	if base.IsNew != head.IsNew {
		out = append(out, record(KindConstructorCallFlip, SeverityHigh, params, head.Span, AnchorHead,
			head.Callee, constructorFlipDetail(base, head)))
	}

	if base.TemplateText != head.TemplateText {
		rec := record(KindTaggedTemplateChanged, SeverityMedium, params, head.Span, AnchorHead,
			head.Callee, fmt.Sprintf("tagged template content of %q changed", head.Callee))
		rec.Context = base.TemplateText + " -> " + head.TemplateText
		out = append(out, rec)
	}

	out = append(out, diffCallArgs(base, head, params)...)
	out = append(out, diffHookDeps(base, head, params)...)
	return out
}

func constructorFlipDetail(base, head *ast.CallSite) string {
	if head.IsNew {
		return fmt.Sprintf("%q is now invoked as a constructor", head.Callee)
	}
	return fmt.Sprintf("%q is no longer invoked as a constructor", head.Callee)
}

// diffCallArgs compares argument lists of one paired call.
func diffCallArgs(base, head *ast.CallSite, params Params) []ChangeRecord {
	switch {
	case len(base.Args) == len(head.Args):
		if match.OrderedEqual(base.Args, head.Args) {
			return nil
		}
		if match.MultisetEqual(base.Args, head.Args) {
			return []ChangeRecord{record(KindArgumentOrderChanged, SeverityLow, params, head.Span, AnchorHead,
				head.Callee, fmt.Sprintf("argument order of %q changed", head.Callee))}
		}
		return nil

	case len(base.Args) > len(head.Args):
		// Removing a trailing run of literal undefined is a runtime
		// no-op and must not flag.
		if isTrailingUndefinedRemoval(base.Args, head.Args) {
			return nil
		}
		return []ChangeRecord{record(KindArgumentsRemoved, SeverityHigh, params, head.Span, AnchorHead,
			head.Callee, fmt.Sprintf("call to %q lost arguments (%d -> %d)", head.Callee, len(base.Args), len(head.Args)))}

	default:
		return []ChangeRecord{record(KindArgumentsAdded, SeverityMedium, params, head.Span, AnchorHead,
			head.Callee, fmt.Sprintf("call to %q gained arguments (%d -> %d)", head.Callee, len(base.Args), len(head.Args)))}
	}
}

// isTrailingUndefinedRemoval reports whether base equals head plus a
// trailing run of literal-undefined arguments.
func isTrailingUndefinedRemoval(baseArgs, headArgs []string) bool {
	if !match.OrderedEqual(baseArgs[:len(headArgs)], headArgs) {
		return false
	}
	for _, arg := range baseArgs[len(headArgs):] {
		if !isUndefinedLiteral(arg) {
			return false
		}
	}
	return true
}

func isUndefinedLiteral(arg string) bool {
	arg = strings.TrimSpace(arg)
	return arg == "undefined" || arg == "void 0" || arg == "void(0)"
}

// diffHookDeps compares resolved dependency lists of a paired
// hook-pattern call. Any difference in the flattened list is high risk:
// a stale or over-eager dependency array changes when effects re-run.
func diffHookDeps(base, head *ast.CallSite, params Params) []ChangeRecord {
	if !base.IsHook && !head.IsHook {
		return nil
	}
	if !base.HasDeps && !head.HasDeps {
		return nil
	}
	if match.OrderedEqual(base.Deps, head.Deps) && base.HasDeps == head.HasDeps {
		return nil
	}
	rec := record(KindHookDepsChanged, SeverityHigh, params, head.Span, AnchorHead,
		head.Callee, fmt.Sprintf("dependency list of %q changed: [%s] -> [%s]",
			head.Callee, strings.Join(base.Deps, ", "), strings.Join(head.Deps, ", ")))
	rec.Context = "[" + strings.Join(base.Deps, ", ") + "] -> [" + strings.Join(head.Deps, ", ") + "]"
	return []ChangeRecord{rec}
}
