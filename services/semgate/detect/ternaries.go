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

// DiffTernaries compares conditional expressions.
//
// Exact triples (condition, both branches, location) pop silently.
// Remaining ternaries pair by branch pair to surface condition edits,
// then by condition to catch swapped branches, which invert the logic
// and are high risk. Leftovers are whole-ternary changes.
func DiffTernaries(base, head *ast.StructuralModel, params Params) []ChangeRecord {
	var out []ChangeRecord

	_, pool := match.PairByUniqueKey(
		ternaryPtrs(base.Ternaries), ternaryPtrs(head.Ternaries),
		ternaryKey,
	)
	_, pool = match.PairWhere(pool, func(b, h *ast.TernarySite) bool {
		return ternaryKey(b) == ternaryKey(h)
	})

	// Same branches, different condition.
	condPairs, pool := match.PairWhere(pool, func(b, h *ast.TernarySite) bool {
		return b.EnclosingFunc == h.EnclosingFunc &&
			b.WhenTrue == h.WhenTrue && b.WhenFalse == h.WhenFalse
	})
	for _, p := range condPairs {
		rec := record(KindTernaryConditionChanged, SeverityMedium, params, p.Head.Span, AnchorHead,
			p.Head.Condition, "ternary condition changed")
		rec.Context = p.Base.Condition + " -> " + p.Head.Condition
		out = append(out, rec)
	}

	// Same condition, branches swapped.
	swapPairs, pool := match.PairWhere(pool, func(b, h *ast.TernarySite) bool {
		return b.EnclosingFunc == h.EnclosingFunc && b.Condition == h.Condition &&
			b.WhenTrue == h.WhenFalse && b.WhenFalse == h.WhenTrue
	})
	for _, p := range swapPairs {
		rec := record(KindTernaryBranchesSwapped, SeverityHigh, params, p.Head.Span, AnchorHead,
			p.Head.Condition, fmt.Sprintf("ternary branches swapped for condition %q", p.Head.Condition))
		rec.Context = p.Base.WhenTrue + " : " + p.Base.WhenFalse + " -> " + p.Head.WhenTrue + " : " + p.Head.WhenFalse
		out = append(out, rec)
	}

	for _, t := range pool.Base {
		out = append(out, record(KindTernaryRemoved, SeverityMedium, params, t.Span, AnchorBase,
			t.Condition, fmt.Sprintf("ternary on %q removed", t.Condition)))
	}
	for _, t := range pool.Head {
		out = append(out, record(KindTernaryAdded, SeverityLow, params, t.Span, AnchorHead,
			t.Condition, fmt.Sprintf("ternary on %q added", t.Condition)))
	}
	return out
}

func ternaryPtrs(sites []ast.TernarySite) []*ast.TernarySite {
	out := make([]*ast.TernarySite, len(sites))
	for i := range sites {
		out[i] = &sites[i]
	}
	return out
}

func ternaryKey(t *ast.TernarySite) string {
	return t.Condition + "?" + t.WhenTrue + ":" + t.WhenFalse + "|" + t.EnclosingFunc
}
