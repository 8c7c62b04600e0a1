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

// DiffMutations compares in-place mutation sites.
//
// Mutations are bucketed by target path, operator, and enclosing
// function; matched occurrences pop off and leftovers are reported.
// Both directions are medium: a new mutation introduces state change,
// a removed one drops it.
func DiffMutations(base, head *ast.StructuralModel, params Params) []ChangeRecord {
	var out []ChangeRecord

	_, pool := match.PairByUniqueKey(
		mutationPtrs(base.Mutations), mutationPtrs(head.Mutations),
		mutationKey,
	)
	_, pool = match.PairWhere(pool, func(b, h *ast.MutationSite) bool {
		return mutationKey(b) == mutationKey(h)
	})

	for _, m := range pool.Base {
		out = append(out, record(KindMutationRemoved, SeverityMedium, params, m.Span, AnchorBase,
			m.Target, fmt.Sprintf("mutation of %q (%s) removed", m.Target, m.Op)))
	}
	for _, m := range pool.Head {
		out = append(out, record(KindMutationAdded, SeverityMedium, params, m.Span, AnchorHead,
			m.Target, fmt.Sprintf("mutation of %q (%s) added", m.Target, m.Op)))
	}
	return out
}

func mutationPtrs(muts []ast.MutationSite) []*ast.MutationSite {
	out := make([]*ast.MutationSite, len(muts))
	for i := range muts {
		out[i] = &muts[i]
	}
	return out
}

func mutationKey(m *ast.MutationSite) string {
	return match.NormalizePath(m.Target) + "|" + m.Op + "|" + m.EnclosingFunc
}
