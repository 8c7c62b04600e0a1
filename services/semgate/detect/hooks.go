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

// DiffHooks reports hook-pattern calls appearing or disappearing.
//
// Hook calls are bucketed by normalized callee path within their
// enclosing function; matched occurrences pop off, leftovers are added
// or removed. A removed hook is high risk (lost state or effect); an
// added hook is medium.
func DiffHooks(base, head *ast.StructuralModel, params Params) []ChangeRecord {
	var out []ChangeRecord

	_, pool := match.PairByUniqueKey(
		hookCalls(base.Calls), hookCalls(head.Calls),
		func(c *ast.CallSite) string {
			return c.EnclosingFunc + "|" + match.NormalizePath(c.Callee)
		},
	)

	// Bucketed pop-on-match for the duplicated keys.
	_, pool = match.PairWhere(pool, func(b, h *ast.CallSite) bool {
		return b.EnclosingFunc == h.EnclosingFunc &&
			match.NormalizePath(b.Callee) == match.NormalizePath(h.Callee)
	})

	for _, c := range pool.Base {
		out = append(out, record(KindHookRemoved, SeverityHigh, params, c.Span, AnchorBase,
			c.Callee, fmt.Sprintf("hook call %q removed from %s", c.Callee, locationLabel(c.EnclosingFunc))))
	}
	for _, c := range pool.Head {
		out = append(out, record(KindHookAdded, SeverityMedium, params, c.Span, AnchorHead,
			c.Callee, fmt.Sprintf("hook call %q added in %s", c.Callee, locationLabel(c.EnclosingFunc))))
	}
	return out
}

func hookCalls(calls []ast.CallSite) []*ast.CallSite {
	var out []*ast.CallSite
	for i := range calls {
		if calls[i].IsHook {
			out = append(out, &calls[i])
		}
	}
	return out
}

func locationLabel(enclosing string) string {
	if enclosing == "" {
		return "module scope"
	}
	return fmt.Sprintf("function %q", enclosing)
}
